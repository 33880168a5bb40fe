package interval

import "github.com/devicelab-dev/replaykit/pkg/core"

// XYTree answers 2-D rectangle overlap queries by composing two
// independent 1-D trees, one per axis, and intersecting their result sets
// by payload identity.
type XYTree[T comparable] struct {
	x *Tree[T]
	y *Tree[T]
}

// NewXYTree returns an empty 2-D interval tree.
func NewXYTree[T comparable]() *XYTree[T] {
	return &XYTree[T]{x: NewTree[T](), y: NewTree[T]()}
}

// Insert stores the rectangle with its payload.
func (t *XYTree[T]) Insert(b core.Bounds, data T) {
	t.x.Insert(Interval{Low: b.X, High: b.Right()}, data)
	t.y.Insert(Interval{Low: b.Y, High: b.Bottom()}, data)
}

// Len returns the number of stored rectangles.
func (t *XYTree[T]) Len() int { return t.x.Len() }

// Query returns the payloads of every stored rectangle overlapping b.
// A rectangle overlaps only when both axis projections overlap.
func (t *XYTree[T]) Query(b core.Bounds) []T {
	xs := t.x.Query(Interval{Low: b.X, High: b.Right()})
	if len(xs) == 0 {
		return nil
	}
	ys := t.y.Query(Interval{Low: b.Y, High: b.Bottom()})
	if len(ys) == 0 {
		return nil
	}
	inY := make(map[T]bool, len(ys))
	for _, e := range ys {
		inY[e.Data] = true
	}
	var out []T
	seen := make(map[T]bool, len(xs))
	for _, e := range xs {
		if inY[e.Data] && !seen[e.Data] {
			seen[e.Data] = true
			out = append(out, e.Data)
		}
	}
	return out
}
