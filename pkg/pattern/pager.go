package pattern

import (
	"context"
	"strings"

	"github.com/devicelab-dev/replaykit/pkg/core"
	"github.com/devicelab-dev/replaykit/pkg/selector"
	"github.com/devicelab-dev/replaykit/pkg/ui"
)

// pagerAncestor returns the nearest pager ancestor of v, or nil.
func pagerAncestor(v *ui.View) *ui.View {
	for p := v.Parent; p != nil; p = p.Parent {
		if classContains(p, "Pager") {
			return p
		}
	}
	return nil
}

// equivalent reports whether v renders the same element want does,
// judged by any shared identity field.
func equivalent(want, v *ui.View) bool {
	if want.Text != "" && strings.EqualFold(v.Text, want.Text) {
		return true
	}
	if e := want.ResourceEntry(); e != "" && v.ResourceEntry() == e {
		return true
	}
	if want.Description != "" && strings.EqualFold(v.Description, want.Description) {
		return true
	}
	return false
}

// DoubleSideViewPager handles pagers present on both devices: the page
// of the matched playee pager holding an equivalent of the target is
// located and the equivalent is tapped directly.
type DoubleSideViewPager struct {
	base
	pager *ui.View
}

func (p *DoubleSideViewPager) Name() string { return "DoubleSideViewPager" }

func (p *DoubleSideViewPager) Match(ctx context.Context, c *Context) (bool, error) {
	rec := pagerAncestor(c.View)
	if rec == nil {
		return false, nil
	}

	var found *ui.View
	if rec.HasIdentity() {
		entry := rec.ResourceEntry()
		found = c.findPlayeeBottomUp(func(v *ui.View) bool {
			if !classContains(v, "Pager") {
				return false
			}
			if entry != "" && v.ResourceEntry() == entry {
				return true
			}
			return equivalent(rec, v)
		})
	}
	if found == nil {
		found = c.findPlayeeBottomUp(func(v *ui.View) bool {
			return v.Visible && classContains(v, "Pager")
		})
	}
	if found == nil {
		return false, nil
	}
	p.pager = found
	p.ok()
	return true, nil
}

func (p *DoubleSideViewPager) Apply(ctx context.Context, c *Context) (Outcome, error) {
	if err := p.guard(); err != nil {
		return NotConsumed, err
	}
	want := c.View
	for _, page := range p.pager.Children {
		target := page.FindFirst(func(v *ui.View) bool { return equivalent(want, v) })
		if target != nil {
			return Consumed, c.performAt(ctx, target.Bounds)
		}
	}
	return NotConsumed, core.ErrNoPageContainsTarget.WithDetails(map[string]interface{}{
		"target": want.Text + want.Description,
	})
}

// maxPagerPages bounds the single-side brute force.
const maxPagerPages = 10

// SingleSideViewPager handles a pager that exists only on the playee:
// pages are flipped through until the selector resolves the target.
type SingleSideViewPager struct {
	base
	pager *ui.View
}

func (p *SingleSideViewPager) Name() string { return "SingleSideViewPager" }

func (p *SingleSideViewPager) Match(ctx context.Context, c *Context) (bool, error) {
	if pagerAncestor(c.View) != nil {
		return false, nil
	}
	found := c.findPlayeeBottomUp(func(v *ui.View) bool {
		return v.Visible && classContains(v, "Pager")
	})
	if found == nil {
		return false, nil
	}
	p.pager = found
	p.ok()
	return true, nil
}

func (p *SingleSideViewPager) Apply(ctx context.Context, c *Context) (Outcome, error) {
	if err := p.guard(); err != nil {
		return NotConsumed, err
	}
	dev := c.Playee.Device
	cx, cy := p.pager.Bounds.Center()
	lastSource := ""
	for i := 0; i < maxPagerPages; i++ {
		d, err := c.Sel.Select(ctx, selector.FromView(c.View), true)
		if err != nil {
			return NotConsumed, err
		}
		if d != nil {
			return Consumed, c.performAt(ctx, d.Bounds)
		}
		if err := dev.Swipe(ctx, cx, cy, -p.pager.Bounds.Width/2, 0, 300); err != nil {
			return NotConsumed, err
		}
		src, err := dev.PageSource(ctx)
		if err != nil {
			return NotConsumed, err
		}
		if src == lastSource {
			break
		}
		lastSource = src
	}
	return NotConsumed, core.ErrNoPageContainsTarget.WithDetails(map[string]interface{}{
		"target": c.View.Text + c.View.Description,
	})
}
