// Package core holds the shared data types and interfaces of the replay
// engine: geometry, the device transport contract, and the error taxonomy.
package core

// Bounds represents an element's position and size in screen pixels.
type Bounds struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Center returns the center point of the bounds.
func (b Bounds) Center() (int, int) {
	return b.X + b.Width/2, b.Y + b.Height/2
}

// Right returns the exclusive right edge.
func (b Bounds) Right() int { return b.X + b.Width }

// Bottom returns the exclusive bottom edge.
func (b Bounds) Bottom() int { return b.Y + b.Height }

// Area returns the covered area in square pixels.
func (b Bounds) Area() int { return b.Width * b.Height }

// Contains reports whether the point lies within the bounds.
func (b Bounds) Contains(x, y int) bool {
	return x >= b.X && x < b.Right() && y >= b.Y && y < b.Bottom()
}

// ContainsBounds reports whether o lies entirely within b.
func (b Bounds) ContainsBounds(o Bounds) bool {
	return o.X >= b.X && o.Y >= b.Y && o.Right() <= b.Right() && o.Bottom() <= b.Bottom()
}

// Overlaps reports whether b and o share any area.
func (b Bounds) Overlaps(o Bounds) bool {
	return b.X < o.Right() && o.X < b.Right() && b.Y < o.Bottom() && o.Y < b.Bottom()
}

// Union returns the smallest bounds covering both b and o.
func (b Bounds) Union(o Bounds) Bounds {
	x := min(b.X, o.X)
	y := min(b.Y, o.Y)
	r := max(b.Right(), o.Right())
	bt := max(b.Bottom(), o.Bottom())
	return Bounds{X: x, Y: y, Width: r - x, Height: bt - y}
}

// Empty reports whether the bounds cover no area.
func (b Bounds) Empty() bool { return b.Width <= 0 || b.Height <= 0 }
