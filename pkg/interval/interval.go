// Package interval implements one-dimensional interval arithmetic and an
// interval tree, composed into a two-dimensional variant for rectangle
// overlap queries. The segmenter uses it to discover separator gaps.
package interval

// Interval is a one-dimensional range [Low, High]. A zero-width interval
// (Low == High) is permitted but never overlaps anything.
type Interval struct {
	Low  int
	High int
}

// New returns the interval [low, high], swapping the endpoints when they
// arrive reversed.
func New(low, high int) Interval {
	if low > high {
		low, high = high, low
	}
	return Interval{Low: low, High: high}
}

// Width returns High - Low.
func (i Interval) Width() int { return i.High - i.Low }

// Merge returns the smallest interval covering both i and o.
func (i Interval) Merge(o Interval) Interval {
	r := i
	if o.Low < r.Low {
		r.Low = o.Low
	}
	if o.High > r.High {
		r.High = o.High
	}
	return r
}

// Overlap returns the overlapping sub-interval of i and o. The second
// result is false when the intervals share no positive-width range;
// boundary-touching intervals do not overlap.
func (i Interval) Overlap(o Interval) (Interval, bool) {
	low := i.Low
	if o.Low > low {
		low = o.Low
	}
	high := i.High
	if o.High < high {
		high = o.High
	}
	if low >= high {
		return Interval{}, false
	}
	return Interval{Low: low, High: high}, true
}

// Cover classifies how i covers o.
type Cover int

const (
	// CoverNone: i does not fully contain o.
	CoverNone Cover = iota
	// CoverSameLow: i contains o and they share the low endpoint.
	CoverSameLow
	// CoverSameHigh: i contains o and they share the high endpoint.
	CoverSameHigh
	// CoverIdentical: i equals o.
	CoverIdentical
	// CoverStrict: o lies strictly inside i.
	CoverStrict
)

// CoverOf classifies the containment of o within i.
func (i Interval) CoverOf(o Interval) Cover {
	if o.Low < i.Low || o.High > i.High {
		return CoverNone
	}
	sameLow := o.Low == i.Low
	sameHigh := o.High == i.High
	switch {
	case sameLow && sameHigh:
		return CoverIdentical
	case sameLow:
		return CoverSameLow
	case sameHigh:
		return CoverSameHigh
	default:
		return CoverStrict
	}
}

// Crossing classifies how o straddles the boundaries of i.
type Crossing int

const (
	// CrossNone: o straddles neither boundary of i.
	CrossNone Crossing = iota
	// CrossLow: o straddles the low boundary of i.
	CrossLow
	// CrossHigh: o straddles the high boundary of i.
	CrossHigh
	// CrossBoth: o straddles both boundaries (o strictly contains i).
	CrossBoth
)

// CrossOf classifies the boundary straddling of o relative to i.
func (i Interval) CrossOf(o Interval) Crossing {
	low := o.Low < i.Low && o.High > i.Low
	high := o.Low < i.High && o.High > i.High
	switch {
	case low && high:
		return CrossBoth
	case low:
		return CrossLow
	case high:
		return CrossHigh
	default:
		return CrossNone
	}
}
