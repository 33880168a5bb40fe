package pattern

import (
	"context"

	"github.com/devicelab-dev/replaykit/pkg/core"
	"github.com/devicelab-dev/replaykit/pkg/logger"
	"github.com/devicelab-dev/replaykit/pkg/selector"
	"github.com/devicelab-dev/replaykit/pkg/ui"
)

// defaultLookaheadDepth is how many queued events lookahead scans when
// the context does not say otherwise.
const defaultLookaheadDepth = 3

// Lookahead skips ahead when several recorded taps collapse to one
// reachable state on the playee: the current view carries no text and
// every one of the next few queued events already resolves to a visible
// playee view.
type Lookahead struct {
	base
	foundN int
}

func (p *Lookahead) Name() string { return "Lookahead" }

func (p *Lookahead) Match(ctx context.Context, c *Context) (bool, error) {
	if c.View == nil || c.View.Text != "" {
		return false, nil
	}
	depth := c.LookaheadDepth
	if depth <= 0 {
		depth = defaultLookaheadDepth
	}
	if depth > c.Queue.Len() {
		depth = c.Queue.Len()
	}
	if depth == 0 {
		return false, nil
	}

	for i := 0; i < depth; i++ {
		next := c.Queue.Peek(i)
		if next.Target.Empty() {
			return false, nil
		}
		d, err := c.Sel.Select(ctx, selector.Query{
			Text:        next.Target.Text,
			Description: next.Target.Description,
			ResourceID:  next.Target.ResourceID,
		}, true)
		if err != nil {
			if core.CategoryOf(err) == core.ErrCategoryTransport {
				return false, err
			}
			return false, nil
		}
		if d == nil {
			return false, nil
		}
	}
	p.foundN = depth
	p.ok()
	return true, nil
}

// Apply drops the intervening events so the next replayed event is the
// last one lookahead verified as reachable.
func (p *Lookahead) Apply(ctx context.Context, c *Context) (Outcome, error) {
	if err := p.guard(); err != nil {
		return NotConsumed, err
	}
	if p.foundN > 1 {
		c.Queue.PopN(p.foundN - 1)
	}
	logger.Debug("lookahead skipped %d queued events", p.foundN-1)
	return Consumed, nil
}

// Invisible substitutes a tap on the nearest accessibility-important
// visible ancestor when the recorded view itself is not visible.
type Invisible struct {
	base
	ancestor *ui.View
}

func (p *Invisible) Name() string { return "Invisible" }

func (p *Invisible) Match(ctx context.Context, c *Context) (bool, error) {
	if c.View == nil || c.View.Visible {
		return false, nil
	}
	a := c.View.NearestImportantVisibleAncestor()
	if a == nil {
		return false, nil
	}
	p.ancestor = a
	p.ok()
	return true, nil
}

func (p *Invisible) Apply(ctx context.Context, c *Context) (Outcome, error) {
	if err := p.guard(); err != nil {
		return NotConsumed, err
	}
	if p.ancestor.HasIdentity() {
		d, err := c.Sel.Select(ctx, selector.FromView(p.ancestor), true)
		if err != nil {
			return NotConsumed, err
		}
		if d != nil {
			return Consumed, c.performAt(ctx, d.Bounds)
		}
	}
	// No playee-side resolution: fall back to scaled recordee geometry.
	b := p.ancestor.Bounds
	scaled := core.Bounds{
		X: c.ScaleX(b.X), Y: c.ScaleY(b.Y),
		Width: c.ScaleX(b.Width), Height: c.ScaleY(b.Height),
	}
	return Consumed, c.performAt(ctx, scaled)
}
