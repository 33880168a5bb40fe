// Package pattern recognizes why a recorded view is not directly
// actionable on the playee device and synthesizes the corrective
// actions. Patterns are stateful match/apply pairs evaluated in a fixed
// catalog order; the orchestrator special-cases lookahead and
// invisibility before falling back to segmentation and matching.
package pattern

import (
	"context"

	"github.com/devicelab-dev/replaykit/pkg/core"
	"github.com/devicelab-dev/replaykit/pkg/event"
	"github.com/devicelab-dev/replaykit/pkg/logger"
	"github.com/devicelab-dev/replaykit/pkg/segment"
	"github.com/devicelab-dev/replaykit/pkg/selector"
	"github.com/devicelab-dev/replaykit/pkg/ui"
)

// Outcome is the result of applying a pattern.
type Outcome int

const (
	// NotConsumed means the pattern performed a corrective action but the
	// recorded event still needs to be replayed; the next pattern in the
	// list should run.
	NotConsumed Outcome = iota
	// Consumed means the recorded event has been fully handled.
	Consumed
)

func (o Outcome) String() string {
	if o == Consumed {
		return "consumed"
	}
	return "not-consumed"
}

// Pattern is one detection and remedy strategy. Match must succeed
// before Apply; calling Apply on an unmatched pattern is a contract
// violation.
type Pattern interface {
	Name() string
	Match(ctx context.Context, c *Context) (bool, error)
	Apply(ctx context.Context, c *Context) (Outcome, error)
}

// Side bundles everything known about one device in a synthesis attempt.
type Side struct {
	Device    core.Device
	Info      *core.DeviceInfo
	UI        *ui.Tree
	Segments  *segment.Tree
	Segment   segment.ID
	Fragments ui.FragmentManager
}

// Context is the per-event synthesis state shared by all patterns. It is
// built fresh for every recorded event and never reused.
type Context struct {
	Event *event.Event
	View  *ui.View
	Queue *event.Queue

	Recordee Side
	Playee   Side

	// Sel resolves recordee identities on the playee device.
	Sel *selector.Selector

	// Match is the segment correspondence, set by Synthesize.
	Match *segment.MatchResult

	// LookaheadDepth caps how many queued events lookahead scans.
	LookaheadDepth int
}

// base carries the matched flag every pattern needs for its apply guard.
type base struct {
	matched bool
}

func (b *base) ok() { b.matched = true }

func (b *base) guard() error {
	if !b.matched {
		return core.ErrApplyBeforeMatch
	}
	return nil
}

// catalog returns fresh pattern instances in the fixed evaluation order.
func catalog() []Pattern {
	return []Pattern{
		// Transform
		&NavigationUp{},
		// Expand
		&VagueText{}, &VagueTextExt{}, &VagueTextDesc{}, &Scroll{},
		// Reveal
		&MoreOptions{}, &DrawerMenu{},
		&TabHostTab{}, &TabHostContent{}, &TabHost{},
		&DoubleSideViewPager{}, &SingleSideViewPager{},
		// Merge
		&NewButton{},
		&DualFragmentGotoDescriptive{}, &DualFragmentGotoDetailed{},
	}
}

// Synthesize produces the ordered pattern list for one recorded event.
// Lookahead and invisibility short-circuit the pipeline; otherwise both
// UIs are segmented and matched and every matching catalog pattern is
// collected, not just the first.
func Synthesize(ctx context.Context, c *Context) ([]Pattern, error) {
	la := &Lookahead{}
	if ok, err := la.Match(ctx, c); err != nil {
		return nil, err
	} else if ok {
		return []Pattern{la}, nil
	}

	inv := &Invisible{}
	if ok, err := inv.Match(ctx, c); err != nil {
		return nil, err
	} else if ok {
		return []Pattern{inv}, nil
	}

	if err := c.resolveSegments(); err != nil {
		return nil, err
	}

	var out []Pattern
	for _, p := range catalog() {
		ok, err := p.Match(ctx, c)
		if err != nil {
			return nil, err
		}
		if ok {
			logger.Debug("pattern %s matched", p.Name())
			out = append(out, p)
		}
	}
	return out, nil
}

// resolveSegments segments both UIs, matches the segment sequences, and
// pins the segment pair the current view belongs to. A missing perfect
// match degrades to the first best match; a total miss leaves the playee
// segment at None and patterns fall back to whole-tree searches.
func (c *Context) resolveSegments() error {
	var err error
	if c.Recordee.Segments == nil {
		if c.Recordee.Segments, err = segment.Build(c.Recordee.UI); err != nil {
			return err
		}
	}
	if c.Playee.Segments == nil {
		if c.Playee.Segments, err = segment.Build(c.Playee.UI); err != nil {
			return err
		}
	}

	c.Recordee.Segment = c.Recordee.Segments.FindContaining(c.View)

	res, err := segment.Match(
		c.Recordee.Segments, c.Recordee.Segments.Final,
		c.Playee.Segments, c.Playee.Segments.Final,
		segment.DocumentOptions{},
	)
	if err != nil {
		return err
	}
	c.Match = res
	if res == nil || c.Recordee.Segment == segment.None {
		c.Playee.Segment = segment.None
		return nil
	}

	if id := res.PerfectMatch(c.Recordee.Segment); id != segment.None {
		c.Playee.Segment = id
		return nil
	}
	if best := res.BestMatches(c.Recordee.Segment); len(best) > 0 {
		c.Playee.Segment = best[0]
		return nil
	}
	c.Playee.Segment = segment.None
	return nil
}
