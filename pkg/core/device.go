package core

import "context"

// Criteria describes a view selection query sent to a device. Empty fields
// are not constrained. Exact requests exact text matching; the default is
// case-insensitive equality at the transport's discretion.
type Criteria struct {
	Text        string
	Description string
	ResourceID  string
	Class       string
	Exact       bool
	VisibleOnly bool
}

// Empty reports whether the criteria constrain nothing.
func (c Criteria) Empty() bool {
	return c.Text == "" && c.Description == "" && c.ResourceID == "" && c.Class == ""
}

// Descriptor is a read-only snapshot of a view returned by a selection
// query. Identity fields mirror what the recording captured; position
// fields are current playee-side geometry.
type Descriptor struct {
	Text        string `json:"text,omitempty"`
	Description string `json:"description,omitempty"`
	ResourceID  string `json:"resourceId,omitempty"`
	Class       string `json:"class,omitempty"`
	Bounds      Bounds `json:"bounds"`
	Visible     bool   `json:"visible"`
	Clickable   bool   `json:"clickable"`
	Selected    bool   `json:"selected,omitempty"`
	Scrollable  bool   `json:"scrollable,omitempty"`
}

// ResourceEntry returns the entry part of the resource id, i.e. the text
// after the last '/', or the whole id when no slash is present.
func (d Descriptor) ResourceEntry() string {
	for i := len(d.ResourceID) - 1; i >= 0; i-- {
		if d.ResourceID[i] == '/' {
			return d.ResourceID[i+1:]
		}
	}
	return d.ResourceID
}

// DeviceInfo describes a connected device.
type DeviceInfo struct {
	Serial       string `json:"serial"`
	Model        string `json:"model,omitempty"`
	SDK          string `json:"sdk,omitempty"`
	ScreenWidth  int    `json:"screenWidth"`
	ScreenHeight int    `json:"screenHeight"`
	Density      int    `json:"density,omitempty"`
}

// Device is the automation transport the replay core drives. Every call
// may block on device I/O; failures surface as transport-category errors
// and are propagated, never retried, by the core.
type Device interface {
	// Select returns descriptors of views matching the criteria.
	// An empty result is a soft miss, not an error.
	Select(ctx context.Context, c Criteria) ([]Descriptor, error)

	// Tap, DoubleTap and LongTap inject touches at screen coordinates.
	Tap(ctx context.Context, x, y int) error
	DoubleTap(ctx context.Context, x, y int) error
	LongTap(ctx context.Context, x, y int) error

	// Swipe injects a drag from (x, y) by (dx, dy) over durationMs.
	Swipe(ctx context.Context, x, y, dx, dy, durationMs int) error

	// InputText types the string into the focused element.
	InputText(ctx context.Context, text string) error

	// PressBack presses the back navigation control.
	PressBack(ctx context.Context) error

	// PageSource returns the current UI hierarchy as XML.
	PageSource(ctx context.Context) (string, error)

	// Info returns device identity and screen geometry.
	Info(ctx context.Context) (*DeviceInfo, error)
}
