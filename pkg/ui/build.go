package ui

// NewTree wires parent links for a hand-built hierarchy, assigns drawing
// levels, and returns the tree. Hosts that construct view trees directly
// (and tests) use this instead of Parse.
func NewTree(root *View) *Tree {
	var link func(v *View)
	link = func(v *View) {
		for _, c := range v.Children {
			c.Parent = v
			link(c)
		}
	}
	link(root)
	t := &Tree{Root: root}
	assignDrawingLevels(t)
	return t
}
