package segment

import (
	"github.com/devicelab-dev/replaykit/pkg/logger"
	"github.com/devicelab-dev/replaykit/pkg/ui"
)

// maxSplitSeparators caps how many H/V separators a single segmentation
// accepts; elevated separators are exempt.
const maxSplitSeparators = 5

// Build partitions the UI into a segment tree. The returned tree keeps
// every segment ever created (for bottom-up lookups) and lists the
// retained accepted segments in Final.
func Build(u *ui.Tree) (*Tree, error) {
	t := NewTree()
	root, err := t.Add(None, []*ui.View{u.Root})
	if err != nil {
		return nil, err
	}
	screen := u.WindowBounds()

	worklist := []ID{root}
	splits := 0
	for len(worklist) > 0 {
		id := worklist[0]
		worklist = worklist[1:]

		pooled, err := t.pool(id, screen)
		if err != nil {
			return nil, err
		}

		elevated, gaps, err := t.discover(id, pooled)
		if err != nil {
			return nil, err
		}

		// Elevated separators trump geometric ones entirely.
		if sep := best(elevated); sep != nil {
			if err := t.SetSep(id, sep); err != nil {
				return nil, err
			}
			worklist = append(worklist, sep.First, sep.Second)
			continue
		}

		if sep := best(gaps); sep != nil {
			if sep.Score < acceptThreshold || splits >= maxSplitSeparators {
				// A candidate split below the threshold (or past the split
				// cap) ends refinement: the segment stays a final accepted
				// leaf.
				continue
			}
			splits++
			if err := t.SetSep(id, sep); err != nil {
				return nil, err
			}
			worklist = append(worklist, sep.First, sep.Second)
			continue
		}

		// No separator found at all. A pool differing from the roots
		// signals hidden structure: re-root on the pool and retry ahead of
		// older work.
		if len(pooled) > 0 && !sameViews(pooled, t.Get(id).Roots) {
			shrink := &Separator{Kind: KindShrink, ShrinkRoots: pooled}
			if err := t.SetSep(id, shrink); err != nil {
				return nil, err
			}
			worklist = append([]ID{shrink.Child}, worklist...)
			continue
		}
		// Final accepted leaf.
	}

	t.retainImportant()
	t.enlargeRoots()
	logger.Debug("segmented ui into %d segments, %d retained", t.Len(), len(t.Final))
	return t, nil
}

// best returns the highest-scoring separator, first seen winning ties.
func best(seps []*Separator) *Separator {
	var top *Separator
	for _, s := range seps {
		if top == nil || s.Score > top.Score {
			top = s
		}
	}
	return top
}

// sameViews compares two view slices as sets.
func sameViews(a, b []*ui.View) bool {
	if len(a) != len(b) {
		return false
	}
	in := make(map[*ui.View]bool, len(a))
	for _, v := range a {
		in[v] = true
	}
	for _, v := range b {
		if !in[v] {
			return false
		}
	}
	return true
}

// retainImportant drops accepted leaves whose view sub-hierarchy carries
// nothing important for accessibility.
func (t *Tree) retainImportant() {
	t.Final = t.Final[:0]
	for id, seg := range t.segs {
		if !seg.Accepted {
			continue
		}
		keep := false
		for _, r := range seg.Roots {
			if r.SubtreeImportant() {
				keep = true
				break
			}
		}
		if keep {
			t.Final = append(t.Final, ID(id))
		}
	}
}

// enlargeRoots walks each retained segment's roots upward while the
// parent has identical bounds, enlarging the matched subtree without
// changing segment geometry.
func (t *Tree) enlargeRoots() {
	for _, id := range t.Final {
		seg := t.Get(id)
		seen := make(map[*ui.View]bool, len(seg.Roots))
		var roots []*ui.View
		for _, r := range seg.Roots {
			for r.Parent != nil && r.Parent.Bounds == r.Bounds {
				r = r.Parent
			}
			if !seen[r] {
				seen[r] = true
				roots = append(roots, r)
			}
		}
		seg.Roots = roots
	}
}
