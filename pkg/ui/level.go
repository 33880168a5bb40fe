package ui

// assignDrawingLevels assigns every view to a z-order band such that two
// views in the same band never overlap. Views are visited in draw order
// (parents before children, siblings by drawing order); each view lands
// one band above the highest band it overlaps.
func assignDrawingLevels(t *Tree) {
	if t.Root == nil {
		return
	}

	var done []*View

	var visit func(v *View)
	visit = func(v *View) {
		level := 0
		if !v.Bounds.Empty() {
			for _, p := range done {
				if p.Bounds.Overlaps(v.Bounds) && p.level >= level {
					// parents always overlap their children; they share
					// a band instead of stacking
					if v.IsDescendantOf(p) {
						if p.level > level {
							level = p.level
						}
						continue
					}
					level = p.level + 1
				}
			}
		}
		v.level = level
		done = append(done, v)

		children := make([]*View, len(v.Children))
		copy(children, v.Children)
		// stable ordering by drawing order, preserving declaration order
		for i := 1; i < len(children); i++ {
			for j := i; j > 0 && children[j-1].DrawingOrder > children[j].DrawingOrder; j-- {
				children[j-1], children[j] = children[j], children[j-1]
			}
		}
		for _, c := range children {
			visit(c)
		}
	}
	visit(t.Root)
}
