package pattern

import (
	"context"
	"strings"

	"github.com/devicelab-dev/replaykit/pkg/core"
	"github.com/devicelab-dev/replaykit/pkg/event"
	"github.com/devicelab-dev/replaykit/pkg/segment"
	"github.com/devicelab-dev/replaykit/pkg/ui"
)

// ScaleX maps a recordee x coordinate or delta into playee pixels.
func (c *Context) ScaleX(x int) int {
	rw := c.Recordee.Info.ScreenWidth
	if rw == 0 {
		return x
	}
	return x * c.Playee.Info.ScreenWidth / rw
}

// ScaleY maps a recordee y coordinate or delta into playee pixels.
func (c *Context) ScaleY(y int) int {
	rh := c.Recordee.Info.ScreenHeight
	if rh == 0 {
		return y
	}
	return y * c.Playee.Info.ScreenHeight / rh
}

// performAt replays the recorded gesture against playee-side bounds:
// taps land on the center, swipes start there with deltas scaled per
// axis, text input taps first to focus.
func (c *Context) performAt(ctx context.Context, b core.Bounds) error {
	dev := c.Playee.Device
	x, y := b.Center()
	switch c.Event.Kind {
	case event.KindDoubleTap:
		return dev.DoubleTap(ctx, x, y)
	case event.KindLongTap:
		return dev.LongTap(ctx, x, y)
	case event.KindSwipe:
		return dev.Swipe(ctx, x, y, c.ScaleX(c.Event.DX), c.ScaleY(c.Event.DY), c.Event.DurationMs)
	case event.KindText:
		if err := dev.Tap(ctx, x, y); err != nil {
			return err
		}
		return dev.InputText(ctx, c.Event.Input)
	default:
		return dev.Tap(ctx, x, y)
	}
}

// playeeRoots returns the root views of the matched playee segment, or
// the whole playee tree when no segment was resolved.
func (c *Context) playeeRoots() []*ui.View {
	if c.Playee.Segments != nil && c.Playee.Segment != segment.None {
		return c.Playee.Segments.Get(c.Playee.Segment).Roots
	}
	if c.Playee.UI != nil {
		return []*ui.View{c.Playee.UI.Root}
	}
	return nil
}

// findInRoots returns the first view under any root satisfying pred.
func findInRoots(roots []*ui.View, pred func(*ui.View) bool) *ui.View {
	for _, r := range roots {
		if v := r.FindFirst(pred); v != nil {
			return v
		}
	}
	return nil
}

// findBottomUp searches the segment's roots and then each ancestor
// segment's roots until pred matches or the arena root is passed.
func findBottomUp(t *segment.Tree, id segment.ID, pred func(*ui.View) bool) *ui.View {
	if t == nil || id == segment.None {
		return nil
	}
	for cur := id; cur != segment.None; cur = t.Get(cur).Parent {
		if v := findInRoots(t.Get(cur).Roots, pred); v != nil {
			return v
		}
	}
	return nil
}

// findPlayeeBottomUp is findBottomUp over the matched playee segment,
// degrading to a whole-tree search when no segment was resolved.
func (c *Context) findPlayeeBottomUp(pred func(*ui.View) bool) *ui.View {
	if c.Playee.Segments != nil && c.Playee.Segment != segment.None {
		if v := findBottomUp(c.Playee.Segments, c.Playee.Segment, pred); v != nil {
			return v
		}
		return nil
	}
	return findInRoots(c.playeeRoots(), pred)
}

// actionable reports whether the view can receive a tap.
func actionable(v *ui.View) bool {
	return v.Visible && v.Enabled && v.Clickable
}

// descEquals does a trimmed case-insensitive description comparison.
func descEquals(v *ui.View, want string) bool {
	return strings.EqualFold(strings.TrimSpace(v.Description), want)
}

// classContains matches widget classes by simple name fragment.
func classContains(v *ui.View, fragment string) bool {
	return strings.Contains(v.Class, fragment)
}
