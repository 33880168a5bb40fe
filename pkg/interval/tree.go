package interval

// Entry pairs a stored interval with its payload.
type Entry[T comparable] struct {
	Interval Interval
	Data     T
}

// Tree is an interval tree over one axis. Nodes carry a center point
// chosen lazily from the first interval reaching them; intervals that
// straddle the center stay at the node, the rest descend left or right.
// Insert is O(log n) amortized, Query O(k + log n) for k results.
type Tree[T comparable] struct {
	root *treeNode[T]
	size int
}

type treeNode[T comparable] struct {
	center  int
	entries []Entry[T]
	left    *treeNode[T]
	right   *treeNode[T]
}

// NewTree returns an empty interval tree.
func NewTree[T comparable]() *Tree[T] {
	return &Tree[T]{}
}

// Len returns the number of stored intervals.
func (t *Tree[T]) Len() int { return t.size }

// Insert stores the interval with its payload.
func (t *Tree[T]) Insert(iv Interval, data T) {
	t.size++
	e := Entry[T]{Interval: iv, Data: data}
	if t.root == nil {
		t.root = newTreeNode(e)
		return
	}
	n := t.root
	for {
		switch {
		case iv.High <= n.center:
			if n.left == nil {
				n.left = newTreeNode(e)
				return
			}
			n = n.left
		case iv.Low >= n.center:
			if n.right == nil {
				n.right = newTreeNode(e)
				return
			}
			n = n.right
		default:
			n.entries = append(n.entries, e)
			return
		}
	}
}

func newTreeNode[T comparable](e Entry[T]) *treeNode[T] {
	n := &treeNode[T]{center: e.Interval.Low + e.Interval.Width()/2}
	n.entries = append(n.entries, e)
	return n
}

// Query returns every stored entry whose interval overlaps q. Results come
// back in insertion order within each node; order across nodes follows the
// tree walk and is deterministic for a fixed insertion sequence.
func (t *Tree[T]) Query(q Interval) []Entry[T] {
	var out []Entry[T]
	t.query(t.root, q, &out)
	return out
}

func (t *Tree[T]) query(n *treeNode[T], q Interval, out *[]Entry[T]) {
	if n == nil {
		return
	}
	for _, e := range n.entries {
		if _, ok := e.Interval.Overlap(q); ok {
			*out = append(*out, e)
		}
	}
	if q.Low < n.center {
		t.query(n.left, q, out)
	}
	if q.High > n.center {
		t.query(n.right, q, out)
	}
}
