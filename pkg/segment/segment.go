// Package segment partitions a view tree into visually coherent regions
// and matches regions across devices. Segments are the unit of
// cross-device comparison during replay.
package segment

import (
	"github.com/devicelab-dev/replaykit/pkg/core"
	"github.com/devicelab-dev/replaykit/pkg/interval"
	"github.com/devicelab-dev/replaykit/pkg/ui"
)

// ID addresses a segment inside its Tree arena.
type ID int

// None is the null segment id, also used as the NO_MATCH sentinel when
// matching segment sequences of unequal length.
const None ID = -1

// Direction of a split separator.
type Direction int

const (
	// DirH is a horizontal separator line splitting top from bottom.
	DirH Direction = iota
	// DirV is a vertical separator line splitting left from right.
	DirV
	// DirE is an elevated separator splitting a floating drawing level
	// from the content below it.
	DirE
)

func (d Direction) String() string {
	switch d {
	case DirH:
		return "H"
	case DirV:
		return "V"
	case DirE:
		return "E"
	}
	return "?"
}

// Kind distinguishes split separators from shrink separators.
type Kind int

const (
	// KindSplit divides a segment into two children along a gap or a
	// drawing-level boundary.
	KindSplit Kind = iota
	// KindShrink re-roots a segment on its pooled views without
	// producing a geometric split; used when the rule pass pooled some
	// but not all views, indicating hidden or overlapping structure.
	KindShrink
)

// Separator is the division chosen for a segment. For KindSplit, SideA
// and SideB hold the root views of the two children and XSpan/YSpan the
// separator geometry; for KindShrink, ShrinkRoots holds the new root set.
// Child ids are filled in by Tree.SetSep.
type Separator struct {
	Kind      Kind
	Score     int
	Direction Direction
	XSpan     interval.Interval
	YSpan     interval.Interval

	SideA []*ui.View
	SideB []*ui.View

	ShrinkRoots []*ui.View

	First  ID
	Second ID
	Child  ID
}

// Segment is a rectangular region of the UI grouping one or more view
// subtrees. A segment begins accepted (a leaf candidate) and becomes
// non-accepted the moment a separator is attached.
type Segment struct {
	Bounds core.Bounds
	Roots  []*ui.View
	Level  int // max drawing level of the roots

	Parent   ID
	Sep      *Separator
	Accepted bool
}

// Tree is an arena of segments. Parent and child links are ids, never
// raw references; the tree is retained after segmentation for bottom-up
// pattern lookups.
type Tree struct {
	segs []*Segment

	// Root is the initial whole-window segment.
	Root ID
	// Final lists the accepted segments retained after segmentation.
	Final []ID
}

// NewTree returns an empty segment arena.
func NewTree() *Tree {
	return &Tree{Root: None}
}

// Add creates a segment from the given roots under parent (None for the
// tree root). Bounds are the merged bounds of the roots and the level is
// the maximum root drawing level.
func (t *Tree) Add(parent ID, roots []*ui.View) (ID, error) {
	if len(roots) == 0 {
		return None, core.ErrEmptySegmentRoots
	}
	seg := &Segment{
		Bounds:   roots[0].Bounds,
		Level:    roots[0].DrawingLevel(),
		Parent:   parent,
		Accepted: true,
	}
	seg.Roots = append(seg.Roots, roots...)
	for _, r := range roots[1:] {
		seg.Bounds = seg.Bounds.Union(r.Bounds)
		if r.DrawingLevel() > seg.Level {
			seg.Level = r.DrawingLevel()
		}
	}
	id := ID(len(t.segs))
	t.segs = append(t.segs, seg)
	if parent == None && t.Root == None {
		t.Root = id
	}
	return id, nil
}

// Get returns the segment for id. It panics on a stale id, which is a
// programming error.
func (t *Tree) Get(id ID) *Segment {
	return t.segs[id]
}

// Len returns the number of segments in the arena.
func (t *Tree) Len() int { return len(t.segs) }

// SetSep attaches the separator to the segment, materializes its child
// segments, and flips the segment to non-accepted. The children start
// accepted.
func (t *Tree) SetSep(id ID, sep *Separator) error {
	seg := t.Get(id)
	if sep.Kind == KindShrink {
		child, err := t.Add(id, sep.ShrinkRoots)
		if err != nil {
			return err
		}
		sep.Child = child
		sep.First, sep.Second = None, None
	} else {
		first, err := t.Add(id, sep.SideA)
		if err != nil {
			return err
		}
		second, err := t.Add(id, sep.SideB)
		if err != nil {
			return err
		}
		sep.First, sep.Second = first, second
		sep.Child = None
	}
	seg.Sep = sep
	seg.Accepted = false
	return nil
}

// DelSep detaches the segment's separator, reverting it to an accepted
// leaf. The orphaned children stay in the arena but lose acceptance.
func (t *Tree) DelSep(id ID) {
	seg := t.Get(id)
	if seg.Sep == nil {
		return
	}
	for _, c := range []ID{seg.Sep.First, seg.Sep.Second, seg.Sep.Child} {
		if c != None {
			t.Get(c).Accepted = false
		}
	}
	seg.Sep = nil
	seg.Accepted = true
}

// Children returns the child ids of the segment, if any.
func (t *Tree) Children(id ID) []ID {
	sep := t.Get(id).Sep
	if sep == nil {
		return nil
	}
	if sep.Kind == KindShrink {
		return []ID{sep.Child}
	}
	return []ID{sep.First, sep.Second}
}

// Ancestors returns the parent chain of id from its parent to the root.
func (t *Tree) Ancestors(id ID) []ID {
	var out []ID
	for p := t.Get(id).Parent; p != None; p = t.Get(p).Parent {
		out = append(out, p)
	}
	return out
}

// FindContaining returns the retained accepted segment whose root
// subtrees contain v, or None.
func (t *Tree) FindContaining(v *ui.View) ID {
	for _, id := range t.Final {
		for _, r := range t.Get(id).Roots {
			if v.IsDescendantOf(r) {
				return id
			}
		}
	}
	return None
}

// ContainsView reports whether v belongs to a root subtree of id.
func (t *Tree) ContainsView(id ID, v *ui.View) bool {
	for _, r := range t.Get(id).Roots {
		if v.IsDescendantOf(r) {
			return true
		}
	}
	return false
}
