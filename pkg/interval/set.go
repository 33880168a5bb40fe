package interval

import "sort"

// Set is an ordered collection of disjoint intervals supporting removal.
// The segmenter seeds a set with a segment's span and removes every pooled
// view's projection; what remains are the candidate separator gaps.
type Set struct {
	items []Interval
}

// NewSet returns a set holding the given intervals. Zero-width intervals
// are dropped; the rest are kept as provided (callers add disjoint spans).
func NewSet(items ...Interval) *Set {
	s := &Set{}
	for _, iv := range items {
		s.Add(iv)
	}
	return s
}

// Add inserts an interval. Zero-width intervals are ignored.
func (s *Set) Add(iv Interval) {
	if iv.Width() <= 0 {
		return
	}
	s.items = append(s.items, iv)
	sort.Slice(s.items, func(a, b int) bool { return s.items[a].Low < s.items[b].Low })
}

// Remove subtracts iv from every member so that the remaining union equals
// the original union minus iv. Members are split, truncated, or deleted as
// needed. A removal that only touches a member's boundary leaves it whole.
func (s *Set) Remove(iv Interval) {
	if iv.Width() <= 0 {
		return
	}
	var out []Interval
	for _, m := range s.items {
		if _, ok := m.Overlap(iv); !ok {
			out = append(out, m)
			continue
		}
		switch m.CoverOf(iv) {
		case CoverIdentical:
			// fully removed
		case CoverStrict:
			out = append(out, Interval{Low: m.Low, High: iv.Low}, Interval{Low: iv.High, High: m.High})
		case CoverSameLow:
			out = append(out, Interval{Low: iv.High, High: m.High})
		case CoverSameHigh:
			out = append(out, Interval{Low: m.Low, High: iv.Low})
		default:
			// iv is not contained: it straddles one or both boundaries.
			switch m.CrossOf(iv) {
			case CrossBoth:
				// member entirely consumed
			case CrossLow:
				out = append(out, Interval{Low: iv.High, High: m.High})
			case CrossHigh:
				out = append(out, Interval{Low: m.Low, High: iv.Low})
			}
		}
	}
	// drop zero-width leftovers produced by exact-edge removals
	s.items = out[:0]
	for _, m := range out {
		if m.Width() > 0 {
			s.items = append(s.items, m)
		}
	}
}

// Items returns the remaining intervals in ascending order.
func (s *Set) Items() []Interval {
	res := make([]Interval, len(s.items))
	copy(res, s.items)
	return res
}

// Len returns the number of intervals in the set.
func (s *Set) Len() int { return len(s.items) }
