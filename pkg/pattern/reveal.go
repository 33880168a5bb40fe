package pattern

import (
	"context"
	"strings"

	"github.com/devicelab-dev/replaykit/pkg/core"
	"github.com/devicelab-dev/replaykit/pkg/selector"
	"github.com/devicelab-dev/replaykit/pkg/ui"
)

// moreOptionsDesc is the stock description of the overflow menu button.
const moreOptionsDesc = "More options"

// drawerOpenDescs are the stock descriptions of a closed drawer's toggle.
var drawerOpenDescs = []string{
	"Open navigation drawer",
	"Open drawer",
	"Navigation menu",
}

// MoreOptions reveals an overflow menu: the target moved into the "more
// options" popup on the playee, so the popup button is tapped first and
// the recorded event is retried afterwards.
type MoreOptions struct {
	base
	found *ui.View
}

func (p *MoreOptions) Name() string { return "MoreOptions" }

func (p *MoreOptions) Match(ctx context.Context, c *Context) (bool, error) {
	v := findInRoots(c.playeeRoots(), func(v *ui.View) bool {
		return actionable(v) && descEquals(v, moreOptionsDesc)
	})
	if v == nil {
		return false, nil
	}
	p.found = v
	p.ok()
	return true, nil
}

func (p *MoreOptions) Apply(ctx context.Context, c *Context) (Outcome, error) {
	if err := p.guard(); err != nil {
		return NotConsumed, err
	}
	x, y := p.found.Bounds.Center()
	return NotConsumed, c.Playee.Device.Tap(ctx, x, y)
}

// DrawerMenu opens a navigation drawer that hides the target on the
// playee. The recordee must show the same closed-state toggle, otherwise
// a drawer on the playee alone is no evidence the target lives in it.
type DrawerMenu struct {
	base
	found *ui.View
}

func (p *DrawerMenu) Name() string { return "DrawerMenu" }

func (p *DrawerMenu) Match(ctx context.Context, c *Context) (bool, error) {
	isToggle := func(v *ui.View) bool {
		for _, d := range drawerOpenDescs {
			if descEquals(v, d) {
				return true
			}
		}
		return false
	}
	v := findInRoots(c.playeeRoots(), func(v *ui.View) bool {
		return actionable(v) && isToggle(v)
	})
	if v == nil {
		return false, nil
	}
	if c.Recordee.UI == nil || c.Recordee.UI.Root.FindFirst(isToggle) == nil {
		return false, nil
	}
	p.found = v
	p.ok()
	return true, nil
}

func (p *DrawerMenu) Apply(ctx context.Context, c *Context) (Outcome, error) {
	if err := p.guard(); err != nil {
		return NotConsumed, err
	}
	x, y := p.found.Bounds.Center()
	return NotConsumed, c.Playee.Device.Tap(ctx, x, y)
}

// tabStrip returns the tab container ancestor of v, or nil. Both the
// framework strip (android:id/tabs) and TabWidget/TabLayout classes
// count.
func tabStrip(v *ui.View) *ui.View {
	for p := v.Parent; p != nil; p = p.Parent {
		if p.ResourceEntry() == "tabs" ||
			classContains(p, "TabWidget") || classContains(p, "TabLayout") {
			return p
		}
	}
	return nil
}

// ownTab returns the direct child of strip whose subtree contains v.
func ownTab(strip, v *ui.View) *ui.View {
	for _, child := range strip.Children {
		if v.IsDescendantOf(child) {
			return child
		}
	}
	return nil
}

// siblingTabTexts enumerates the labels of every tab in the strip except
// the one containing v.
func siblingTabTexts(strip, v *ui.View) []string {
	own := ownTab(strip, v)
	var out []string
	for _, child := range strip.Children {
		if child == own {
			continue
		}
		if t := child.FirstText(); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// TabHostTab handles a recorded tap on a tab that the playee renders
// elsewhere: sibling tab labels are extracted on the recordee and
// searched bottom-up in the playee segment tree.
type TabHostTab struct {
	base
	found *ui.View
}

func (p *TabHostTab) Name() string { return "TabHostTab" }

func (p *TabHostTab) Match(ctx context.Context, c *Context) (bool, error) {
	strip := tabStrip(c.View)
	if strip == nil {
		return false, nil
	}
	for _, text := range siblingTabTexts(strip, c.View) {
		want := text
		v := c.findPlayeeBottomUp(func(v *ui.View) bool {
			return v.Visible && strings.EqualFold(v.Text, want)
		})
		if v != nil {
			p.found = v
			p.ok()
			return true, nil
		}
	}
	return false, nil
}

func (p *TabHostTab) Apply(ctx context.Context, c *Context) (Outcome, error) {
	if err := p.guard(); err != nil {
		return NotConsumed, err
	}
	x, y := p.found.Bounds.Center()
	return NotConsumed, c.Playee.Device.Tap(ctx, x, y)
}

// selectedTab returns the strip child carrying the selected flag.
func selectedTab(strip *ui.View) *ui.View {
	for _, child := range strip.Children {
		if child.Selected {
			return child
		}
		if s := child.FindFirst(func(v *ui.View) bool { return v.Selected }); s != nil {
			return child
		}
	}
	return nil
}

// TabHostContent re-selects the recordee's current tab on the playee
// before replaying an event that targets tab content.
type TabHostContent struct {
	base
	label string
	found *ui.View
}

func (p *TabHostContent) Name() string { return "TabHostContent" }

func (p *TabHostContent) Match(ctx context.Context, c *Context) (bool, error) {
	// The view lives in tab content, not in the strip itself.
	if tabStrip(c.View) != nil {
		return false, nil
	}
	var host *ui.View
	for a := c.View.Parent; a != nil; a = a.Parent {
		if classContains(a, "TabHost") || a.ResourceEntry() == "tabcontent" {
			host = a
			break
		}
	}
	if host == nil {
		return false, nil
	}
	strip := host.Root().FindFirst(func(v *ui.View) bool {
		return v.ResourceEntry() == "tabs" ||
			classContains(v, "TabWidget") || classContains(v, "TabLayout")
	})
	if strip == nil {
		return false, nil
	}
	sel := selectedTab(strip)
	if sel == nil {
		return false, nil
	}
	label := sel.FirstText()
	if label == "" {
		return false, nil
	}
	v := c.findPlayeeBottomUp(func(v *ui.View) bool {
		return v.Visible && strings.EqualFold(v.Text, label)
	})
	if v == nil {
		return false, nil
	}
	p.label = label
	p.found = v
	p.ok()
	return true, nil
}

func (p *TabHostContent) Apply(ctx context.Context, c *Context) (Outcome, error) {
	if err := p.guard(); err != nil {
		return NotConsumed, err
	}
	x, y := p.found.Bounds.Center()
	if err := c.Playee.Device.Tap(ctx, x, y); err != nil {
		return NotConsumed, err
	}
	// The tab may have moved under the tap. Re-resolve by label and tap
	// again unless the first tap already landed on the selected tab.
	d, err := c.Sel.Select(ctx, selector.Query{Text: p.label}, true)
	if err != nil {
		return NotConsumed, err
	}
	if d != nil && !d.Selected {
		x, y = d.Bounds.Center()
		if err := c.Playee.Device.Tap(ctx, x, y); err != nil {
			return NotConsumed, err
		}
	}
	return NotConsumed, nil
}

// TabHost handles custom tab hosts with no framework strip: the playee
// must expose exactly one host, whose tab matching the recordee's
// selected label is tapped.
type TabHost struct {
	base
	label string
}

func (p *TabHost) Name() string { return "TabHost" }

func (p *TabHost) Match(ctx context.Context, c *Context) (bool, error) {
	var host *ui.View
	for a := c.View.Parent; a != nil; a = a.Parent {
		if classContains(a, "TabHost") {
			host = a
			break
		}
	}
	if host == nil {
		return false, nil
	}
	sel := host.FindFirst(func(v *ui.View) bool { return v.Selected && v.FirstText() != "" })
	if sel == nil {
		return false, nil
	}
	p.label = sel.FirstText()
	p.ok()
	return true, nil
}

func (p *TabHost) Apply(ctx context.Context, c *Context) (Outcome, error) {
	if err := p.guard(); err != nil {
		return NotConsumed, err
	}
	if c.Playee.UI == nil {
		return NotConsumed, core.ErrNoTabHost
	}
	var hosts []*ui.View
	c.Playee.UI.Root.Walk(func(v *ui.View) bool {
		if classContains(v, "TabHost") && v.Visible {
			hosts = append(hosts, v)
			return false // do not descend into nested hosts
		}
		return true
	})
	switch {
	case len(hosts) == 0:
		return NotConsumed, core.ErrNoTabHost
	case len(hosts) > 1:
		return NotConsumed, core.ErrMultipleTabHosts.WithDetails(map[string]interface{}{
			"count": len(hosts),
		})
	}
	label := p.label
	tab := hosts[0].FindFirst(func(v *ui.View) bool {
		return v.Visible && strings.EqualFold(v.Text, label)
	})
	if tab == nil {
		return NotConsumed, core.ErrNoTabHost.WithDetails(map[string]interface{}{
			"label": label,
		})
	}
	x, y := tab.Bounds.Center()
	return NotConsumed, c.Playee.Device.Tap(ctx, x, y)
}
