package pattern

import (
	"context"
	"strings"

	"github.com/devicelab-dev/replaykit/pkg/ui"
)

// creationVerbs mark buttons that start a "create something" flow.
var creationVerbs = []string{"New", "Create", "Add"}

// startsWithVerb reports whether s begins with a creation verb as a
// whole word.
func startsWithVerb(s string) bool {
	s = strings.TrimSpace(s)
	for _, verb := range creationVerbs {
		if len(s) < len(verb) || !strings.EqualFold(s[:len(verb)], verb) {
			continue
		}
		if len(s) == len(verb) || s[len(verb)] == ' ' {
			return true
		}
	}
	return false
}

// NewButton maps a specific creation button on the recordee onto the
// playee's merged generic one, e.g. "New event" onto a lone "+ Add".
type NewButton struct {
	base
	found *ui.View
}

func (p *NewButton) Name() string { return "NewButton" }

func (p *NewButton) Match(ctx context.Context, c *Context) (bool, error) {
	if !startsWithVerb(c.View.Text) && !startsWithVerb(c.View.Description) {
		return false, nil
	}
	v := c.findPlayeeBottomUp(func(v *ui.View) bool {
		return actionable(v) && (startsWithVerb(v.Text) || startsWithVerb(v.Description))
	})
	if v == nil {
		return false, nil
	}
	p.found = v
	p.ok()
	return true, nil
}

func (p *NewButton) Apply(ctx context.Context, c *Context) (Outcome, error) {
	if err := p.guard(); err != nil {
		return NotConsumed, err
	}
	return Consumed, c.performAt(ctx, p.found.Bounds)
}

// listClass reports whether v is a list-like container.
func listClass(v *ui.View) bool {
	return classContains(v, "ListView") || classContains(v, "RecyclerView") ||
		classContains(v, "GridView")
}

// descriptivePreview returns the list descendant of the fragment's view
// that contains a visible selected item, or nil. That shape marks the
// master pane of a master/detail pair.
func descriptivePreview(f *ui.Fragment) *ui.View {
	if f == nil || f.View == nil || !f.Showing() {
		return nil
	}
	return f.View.FindFirst(func(v *ui.View) bool {
		if !listClass(v) {
			return false
		}
		return v.FindFirst(func(w *ui.View) bool { return w.Visible && w.Selected }) != nil
	})
}

// fragmentContaining returns the fragment whose view subtree holds v.
func fragmentContaining(m ui.FragmentManager, v *ui.View) *ui.Fragment {
	if m == nil {
		return nil
	}
	frags := m.ByPredicate(func(f *ui.Fragment) bool {
		return f.View != nil && v.IsDescendantOf(f.View)
	})
	if len(frags) == 0 {
		return nil
	}
	return frags[0]
}

// DualFragmentGotoDescriptive recognizes an event inside the detail pane
// of a recordee master/detail pair. A playee too small for both panes
// shows the detail alone, so pressing back returns to the master list
// before the event is retried.
type DualFragmentGotoDescriptive struct {
	base
}

func (p *DualFragmentGotoDescriptive) Name() string { return "DualFragmentGotoDescriptive" }

func (p *DualFragmentGotoDescriptive) Match(ctx context.Context, c *Context) (bool, error) {
	m := c.Recordee.Fragments
	detail := fragmentContaining(m, c.View)
	if detail == nil || descriptivePreview(detail) != nil {
		return false, nil
	}
	for _, f := range m.Active() {
		if f != detail && descriptivePreview(f) != nil {
			p.ok()
			return true, nil
		}
	}
	return false, nil
}

func (p *DualFragmentGotoDescriptive) Apply(ctx context.Context, c *Context) (Outcome, error) {
	if err := p.guard(); err != nil {
		return NotConsumed, err
	}
	return NotConsumed, c.Playee.Device.PressBack(ctx)
}

// DualFragmentGotoDetailed recognizes an event inside the master list of
// a recordee master/detail pair: the selected item's label is derived
// and the matching item is tapped in the playee's content container.
type DualFragmentGotoDetailed struct {
	base
	found *ui.View
}

func (p *DualFragmentGotoDetailed) Name() string { return "DualFragmentGotoDetailed" }

func (p *DualFragmentGotoDetailed) Match(ctx context.Context, c *Context) (bool, error) {
	m := c.Recordee.Fragments
	frag := fragmentContaining(m, c.View)
	if frag == nil {
		return false, nil
	}
	list := descriptivePreview(frag)
	if list == nil {
		return false, nil
	}
	label := selectedItemLabel(list)
	if label == "" {
		return false, nil
	}

	container := p.playeeContainer(c, frag)
	if container == nil {
		return false, nil
	}
	item := container.FindFirst(func(v *ui.View) bool {
		return v.Visible && strings.EqualFold(v.Text, label)
	})
	if item == nil {
		return false, nil
	}
	p.found = item
	p.ok()
	return true, nil
}

// playeeContainer resolves the playee-side content container by view id,
// then fragment id, then fragment class.
func (p *DualFragmentGotoDetailed) playeeContainer(c *Context, frag *ui.Fragment) *ui.View {
	if c.Playee.UI == nil {
		return nil
	}
	if frag.View != nil {
		if entry := frag.View.ResourceEntry(); entry != "" {
			if v := c.Playee.UI.Root.FindFirst(func(v *ui.View) bool {
				return v.ResourceEntry() == entry
			}); v != nil {
				return v
			}
		}
	}
	if c.Playee.Fragments != nil {
		if f := c.Playee.Fragments.ByID(frag.ID); f != nil && f.View != nil {
			return f.View
		}
		same := c.Playee.Fragments.ByPredicate(func(f *ui.Fragment) bool {
			return f.Class == frag.Class && f.View != nil
		})
		if len(same) > 0 {
			return same[0].View
		}
	}
	return nil
}

func (p *DualFragmentGotoDetailed) Apply(ctx context.Context, c *Context) (Outcome, error) {
	if err := p.guard(); err != nil {
		return NotConsumed, err
	}
	x, y := p.found.Bounds.Center()
	return NotConsumed, c.Playee.Device.Tap(ctx, x, y)
}

// selectedItemLabel derives a label identifying the selected list item:
// a text unique among the sibling items, else the longest text.
func selectedItemLabel(list *ui.View) string {
	var selected *ui.View
	for _, item := range list.Children {
		if item.Selected || item.FindFirst(func(v *ui.View) bool { return v.Selected }) != nil {
			selected = item
			break
		}
	}
	if selected == nil {
		return ""
	}

	siblingTexts := map[string]bool{}
	for _, item := range list.Children {
		if item == selected {
			continue
		}
		item.Walk(func(v *ui.View) bool {
			if v.Text != "" {
				siblingTexts[v.Text] = true
			}
			return true
		})
	}

	longest := ""
	var unique string
	selected.Walk(func(v *ui.View) bool {
		if v.Text == "" {
			return true
		}
		if !siblingTexts[v.Text] && unique == "" {
			unique = v.Text
		}
		if len(v.Text) > len(longest) {
			longest = v.Text
		}
		return true
	})
	if unique != "" {
		return unique
	}
	return longest
}
