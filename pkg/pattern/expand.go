package pattern

import (
	"context"
	"strings"

	"github.com/devicelab-dev/replaykit/pkg/core"
	"github.com/devicelab-dev/replaykit/pkg/selector"
	"github.com/devicelab-dev/replaykit/pkg/ui"
)

// expands reports the text direction: a wider playee screen tends to
// show longer, unabbreviated labels than the recordee captured.
func (c *Context) expands() bool {
	return c.Playee.Info.ScreenWidth > c.Recordee.Info.ScreenWidth
}

// vagueMatch reports whether cand is a plausible rendering of want in
// the given direction: the shorter string must be a prefix or suffix of
// the longer one.
func vagueMatch(want, cand string, expand bool) bool {
	if cand == "" || cand == want {
		return false
	}
	if expand {
		return strings.HasPrefix(cand, want) || strings.HasSuffix(cand, want)
	}
	return strings.HasPrefix(want, cand) || strings.HasSuffix(want, cand)
}

// closestByLength picks the hit whose text length is nearest to want's.
func closestByLength(want string, hits []*ui.View, text func(*ui.View) string) *ui.View {
	var top *ui.View
	topDiff := 0
	for _, h := range hits {
		diff := len(text(h)) - len(want)
		if diff < 0 {
			diff = -diff
		}
		if top == nil || diff < topDiff {
			top, topDiff = h, diff
		}
	}
	return top
}

// VagueText finds a playee view whose text is an expanded or shrunken
// rendering of the recorded text within the matched segment.
type VagueText struct {
	base
	found *ui.View
}

func (p *VagueText) Name() string { return "VagueText" }

func (p *VagueText) Match(ctx context.Context, c *Context) (bool, error) {
	if c.View.Text == "" {
		return false, nil
	}
	expand := c.expands()
	var hits []*ui.View
	for _, r := range c.playeeRoots() {
		r.Walk(func(v *ui.View) bool {
			if v.Visible && vagueMatch(c.View.Text, v.Text, expand) {
				hits = append(hits, v)
			}
			return true
		})
	}
	if len(hits) == 0 {
		return false, nil
	}
	p.found = closestByLength(c.View.Text, hits, func(v *ui.View) string { return v.Text })
	p.ok()
	return true, nil
}

func (p *VagueText) Apply(ctx context.Context, c *Context) (Outcome, error) {
	if err := p.guard(); err != nil {
		return NotConsumed, err
	}
	return Consumed, c.performAt(ctx, p.found.Bounds)
}

// VagueTextExt widens the VagueText search bottom-up through the
// segment's ancestors when the matched segment itself has no hit.
type VagueTextExt struct {
	base
	found *ui.View
}

func (p *VagueTextExt) Name() string { return "VagueTextExt" }

func (p *VagueTextExt) Match(ctx context.Context, c *Context) (bool, error) {
	if c.View.Text == "" {
		return false, nil
	}
	expand := c.expands()
	v := c.findPlayeeBottomUp(func(v *ui.View) bool {
		return v.Visible && vagueMatch(c.View.Text, v.Text, expand)
	})
	if v == nil {
		return false, nil
	}
	p.found = v
	p.ok()
	return true, nil
}

func (p *VagueTextExt) Apply(ctx context.Context, c *Context) (Outcome, error) {
	if err := p.guard(); err != nil {
		return NotConsumed, err
	}
	return Consumed, c.performAt(ctx, p.found.Bounds)
}

// VagueTextDesc is VagueText over the description field, for icon-only
// views whose accessible label got truncated or expanded.
type VagueTextDesc struct {
	base
	found *ui.View
}

func (p *VagueTextDesc) Name() string { return "VagueTextDesc" }

func (p *VagueTextDesc) Match(ctx context.Context, c *Context) (bool, error) {
	if c.View.Description == "" {
		return false, nil
	}
	expand := c.expands()
	var hits []*ui.View
	for _, r := range c.playeeRoots() {
		r.Walk(func(v *ui.View) bool {
			if v.Visible && vagueMatch(c.View.Description, v.Description, expand) {
				hits = append(hits, v)
			}
			return true
		})
	}
	if len(hits) == 0 {
		return false, nil
	}
	p.found = closestByLength(c.View.Description, hits,
		func(v *ui.View) string { return v.Description })
	p.ok()
	return true, nil
}

func (p *VagueTextDesc) Apply(ctx context.Context, c *Context) (Outcome, error) {
	if err := p.guard(); err != nil {
		return NotConsumed, err
	}
	return Consumed, c.performAt(ctx, p.found.Bounds)
}

// Scroll budget: swiping reverses direction when the page stops moving
// and gives up after this many reversals.
const maxDirectionChanges = 3

// maxScrollSwipes bounds the whole attempt independent of reversals.
const maxScrollSwipes = 30

// Scroll brings the target into view by swiping the corresponding
// scrollable container on the playee, re-querying after every swipe.
type Scroll struct {
	base
	horizontal bool
	container  core.Bounds
}

func (p *Scroll) Name() string { return "Scroll" }

func (p *Scroll) Match(ctx context.Context, c *Context) (bool, error) {
	hAnc := c.View.ScrollableAncestor(true)
	vAnc := c.View.ScrollableAncestor(false)
	if hAnc != nil && vAnc != nil {
		return false, core.ErrBothAxesScrollable.WithDetails(map[string]interface{}{
			"view": c.View.Class,
		})
	}
	anc := vAnc
	p.horizontal = false
	if hAnc != nil {
		anc = hAnc
		p.horizontal = true
	}
	if anc == nil {
		return false, nil
	}

	// Locate the corresponding container on the playee, by identity when
	// the recordee container has one, else by class and axis.
	if anc.HasIdentity() {
		d, err := c.Sel.Select(ctx, selector.FromView(anc), true)
		if err != nil {
			return false, err
		}
		if d != nil {
			p.container = d.Bounds
			p.ok()
			return true, nil
		}
	}
	cls := anc.Class
	horizontal := p.horizontal
	v := c.findPlayeeBottomUp(func(v *ui.View) bool {
		if !v.Visible || !v.Scrollable || !classContains(v, simpleClass(cls)) {
			return false
		}
		h, vert := v.ScrollAxes()
		return (horizontal && h) || (!horizontal && vert)
	})
	if v == nil {
		return false, nil
	}
	p.container = v.Bounds
	p.ok()
	return true, nil
}

func (p *Scroll) Apply(ctx context.Context, c *Context) (Outcome, error) {
	if err := p.guard(); err != nil {
		return NotConsumed, err
	}

	dev := c.Playee.Device
	cx, cy := p.container.Center()
	forward := true
	changes := 0
	lastSource := ""

	for i := 0; i < maxScrollSwipes; i++ {
		d, err := c.Sel.Select(ctx, selector.FromView(c.View), true)
		if err != nil {
			return NotConsumed, err
		}
		if d != nil {
			return Consumed, c.performAt(ctx, d.Bounds)
		}

		dx, dy := 0, 0
		if p.horizontal {
			dx = -p.container.Width / 2
		} else {
			dy = -p.container.Height / 2
		}
		if !forward {
			dx, dy = -dx, -dy
		}
		if err := dev.Swipe(ctx, cx, cy, dx, dy, 300); err != nil {
			return NotConsumed, err
		}

		src, err := dev.PageSource(ctx)
		if err != nil {
			return NotConsumed, err
		}
		if src == lastSource {
			// The container stopped moving: this direction is exhausted.
			forward = !forward
			changes++
			if changes > maxDirectionChanges {
				return NotConsumed, core.ErrScrollExhausted.WithDetails(map[string]interface{}{
					"target": c.View.Text,
				})
			}
		}
		lastSource = src
	}
	return NotConsumed, core.ErrScrollExhausted.WithDetails(map[string]interface{}{
		"target": c.View.Text,
	})
}

// simpleClass strips the package prefix off a widget class name.
func simpleClass(cls string) string {
	if i := strings.LastIndexByte(cls, '.'); i >= 0 {
		return cls[i+1:]
	}
	return cls
}
