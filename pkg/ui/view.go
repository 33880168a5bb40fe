// Package ui models the device UI hierarchy consumed by the replay core:
// a read-only view tree parsed from a UIAutomator2 page-source dump, with
// the geometric and identity helpers segmentation and matching need.
package ui

import (
	"strings"

	"github.com/devicelab-dev/replaykit/pkg/core"
)

// Background describes a view's background drawable.
type Background struct {
	Class string // drawable class, e.g. ColorDrawable, RippleDrawable
	Color string // resolved color, e.g. #ffffff; empty when unknown
}

// Inherited reports whether the background is effectively the parent's.
// Ripples drawn over a color are treated as inherited, not different.
func (b Background) Inherited() bool {
	if b.Class == "" && b.Color == "" {
		return true
	}
	return strings.Contains(b.Class, "Ripple")
}

// View is a node of the UI hierarchy. The replay core reads it, never
// writes it.
type View struct {
	Class       string
	Text        string
	Description string
	ResourceID  string
	Tag         string
	Tooltip     string
	Hint        string

	Bounds core.Bounds

	Visible                bool
	Enabled                bool
	Clickable              bool
	LongClickable          bool
	Scrollable             bool
	Selected               bool
	Focused                bool
	AccessibilityImportant bool

	Background   Background
	DrawingOrder int

	Parent   *View
	Children []*View

	level int // drawing level band, assigned per tree
}

// DrawingLevel returns the non-overlapping z-order band of the view.
func (v *View) DrawingLevel() int { return v.level }

// IsLeaf reports whether the view has no children.
func (v *View) IsLeaf() bool { return len(v.Children) == 0 }

// ResourceEntry returns the entry part of the resource id (after '/').
func (v *View) ResourceEntry() string {
	if i := strings.LastIndexByte(v.ResourceID, '/'); i >= 0 {
		return v.ResourceID[i+1:]
	}
	return v.ResourceID
}

// Textual reports whether the view carries visible text.
func (v *View) Textual() bool { return v.Text != "" }

// Informative reports whether any identity field is set.
func (v *View) Informative() bool {
	return v.Text != "" || v.Description != "" || v.ResourceID != "" || v.Hint != ""
}

// HighlyInformative reports whether at least two identity fields are set.
func (v *View) HighlyInformative() bool {
	n := 0
	for _, s := range []string{v.Text, v.Description, v.ResourceID, v.Hint} {
		if s != "" {
			n++
		}
	}
	return n >= 2
}

// HasIdentity reports whether the view can be selected on another device.
func (v *View) HasIdentity() bool {
	return v.Text != "" || v.ResourceID != "" || v.Description != ""
}

// Degenerate reports whether the view covers a near-zero area.
func (v *View) Degenerate() bool {
	return v.Bounds.Width <= 1 || v.Bounds.Height <= 1
}

// Ancestors returns the chain of ancestors from parent to root.
func (v *View) Ancestors() []*View {
	var out []*View
	for p := v.Parent; p != nil; p = p.Parent {
		out = append(out, p)
	}
	return out
}

// Root returns the tree root the view belongs to.
func (v *View) Root() *View {
	r := v
	for r.Parent != nil {
		r = r.Parent
	}
	return r
}

// IsDescendantOf reports whether v is in the subtree rooted at a.
func (v *View) IsDescendantOf(a *View) bool {
	for p := v; p != nil; p = p.Parent {
		if p == a {
			return true
		}
	}
	return false
}

// ScrollAxes reports whether the view scrolls horizontally or vertically,
// derived from the scrollable flag and the widget class.
func (v *View) ScrollAxes() (horizontal, vertical bool) {
	if !v.Scrollable {
		return false, false
	}
	cls := v.Class
	switch {
	case strings.Contains(cls, "HorizontalScrollView"),
		strings.Contains(cls, "ViewPager"),
		strings.Contains(cls, "HorizontalGridView"):
		return true, false
	case strings.Contains(cls, "ScrollView"),
		strings.Contains(cls, "ListView"),
		strings.Contains(cls, "RecyclerView"),
		strings.Contains(cls, "GridView"):
		return false, true
	}
	// unknown scrollable container: assume vertical, the common case
	return false, true
}

// ScrollableAncestor returns the nearest ancestor scrollable on the given
// axis, or nil.
func (v *View) ScrollableAncestor(horizontal bool) *View {
	for p := v.Parent; p != nil; p = p.Parent {
		h, vert := p.ScrollAxes()
		if horizontal && h {
			return p
		}
		if !horizontal && vert {
			return p
		}
	}
	return nil
}

// NearestImportantVisibleAncestor returns the closest ancestor that is
// both visible and important for accessibility, or nil.
func (v *View) NearestImportantVisibleAncestor() *View {
	for p := v.Parent; p != nil; p = p.Parent {
		if p.Visible && p.AccessibilityImportant {
			return p
		}
	}
	return nil
}

// SubtreeImportant reports whether any view in the subtree rooted at v is
// important for accessibility.
func (v *View) SubtreeImportant() bool {
	if v.AccessibilityImportant {
		return true
	}
	for _, c := range v.Children {
		if c.SubtreeImportant() {
			return true
		}
	}
	return false
}

// Walk visits v and its subtree depth-first. Returning false from fn
// prunes the subtree below the current view.
func (v *View) Walk(fn func(*View) bool) {
	if !fn(v) {
		return
	}
	for _, c := range v.Children {
		c.Walk(fn)
	}
}

// FindFirst returns the first view in DFS order matching pred, or nil.
func (v *View) FindFirst(pred func(*View) bool) *View {
	var found *View
	v.Walk(func(w *View) bool {
		if found != nil {
			return false
		}
		if pred(w) {
			found = w
			return false
		}
		return true
	})
	return found
}

// FirstText returns the text of the first textual descendant (including
// v itself) in DFS order, or "".
func (v *View) FirstText() string {
	if w := v.FindFirst(func(w *View) bool { return w.Textual() }); w != nil {
		return w.Text
	}
	return ""
}

// Descriptor converts the view into a transport descriptor.
func (v *View) Descriptor() core.Descriptor {
	return core.Descriptor{
		Text:        v.Text,
		Description: v.Description,
		ResourceID:  v.ResourceID,
		Class:       v.Class,
		Bounds:      v.Bounds,
		Visible:     v.Visible,
		Clickable:   v.Clickable,
		Selected:    v.Selected,
		Scrollable:  v.Scrollable,
	}
}

// Tree is a parsed UI hierarchy.
type Tree struct {
	Root *View
}

// Views returns every view of the tree in DFS order.
func (t *Tree) Views() []*View {
	var out []*View
	if t.Root != nil {
		t.Root.Walk(func(v *View) bool {
			out = append(out, v)
			return true
		})
	}
	return out
}

// WindowBounds returns the bounds of the root view.
func (t *Tree) WindowBounds() core.Bounds {
	if t.Root == nil {
		return core.Bounds{}
	}
	return t.Root.Bounds
}

// ViewAt returns the topmost deepest visible view containing the point,
// or nil. Later siblings draw over earlier ones, so the last hit wins at
// equal depth.
func (t *Tree) ViewAt(x, y int) *View {
	if t.Root == nil {
		return nil
	}
	var best *View
	bestLevel, bestDepth := -1, -1
	var walk func(v *View, depth int)
	walk = func(v *View, depth int) {
		if !v.Visible || !v.Bounds.Contains(x, y) {
			return
		}
		if v.level > bestLevel || (v.level == bestLevel && depth >= bestDepth) {
			best, bestLevel, bestDepth = v, v.level, depth
		}
		for _, c := range v.Children {
			walk(c, depth+1)
		}
	}
	walk(t.Root, 0)
	return best
}
