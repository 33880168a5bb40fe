// Package mock provides a scripted device for tests and dry runs.
package mock

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/devicelab-dev/replaykit/pkg/core"
	"github.com/devicelab-dev/replaykit/pkg/ui"
)

// Config configures mock behavior.
type Config struct {
	// PageSources are served in order by PageSource/Select; the last one
	// repeats once the script runs out.
	PageSources []string
	// FailOnCall makes the N-th device call fail (1-indexed). 0 = never.
	FailOnCall int
	// Info is the reported device identity.
	Info core.DeviceInfo
}

// Call is one recorded device invocation.
type Call struct {
	Op   string
	Args []int
	Text string
}

// Device is a scripted core.Device that records every call.
type Device struct {
	mu    sync.Mutex
	cfg   Config
	calls []Call
	n     int
	page  int
}

var _ core.Device = (*Device)(nil)

// New creates a mock device.
func New(cfg Config) *Device {
	if cfg.Info.Serial == "" {
		cfg.Info.Serial = "mock-device"
	}
	if cfg.Info.ScreenWidth == 0 {
		cfg.Info.ScreenWidth = 1080
	}
	if cfg.Info.ScreenHeight == 0 {
		cfg.Info.ScreenHeight = 1920
	}
	return &Device{cfg: cfg}
}

// Calls returns a copy of the recorded call log.
func (d *Device) Calls() []Call {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Call, len(d.calls))
	copy(out, d.calls)
	return out
}

// CallsOf returns the recorded calls for one operation.
func (d *Device) CallsOf(op string) []Call {
	var out []Call
	for _, c := range d.Calls() {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// AdvancePage moves the page-source script forward, simulating a UI
// change triggered outside the recorded calls.
func (d *Device) AdvancePage() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.page < len(d.cfg.PageSources)-1 {
		d.page++
	}
}

// record logs the call and returns the scripted failure, if due.
func (d *Device) record(op string, text string, args ...int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.n++
	d.calls = append(d.calls, Call{Op: op, Args: args, Text: text})
	if d.cfg.FailOnCall > 0 && d.n == d.cfg.FailOnCall {
		return core.ErrTransport.WithMessage("mock failure on call %d (%s)", d.n, op)
	}
	return nil
}

func (d *Device) currentSource() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.cfg.PageSources) == 0 {
		return `<hierarchy><node class="android.widget.FrameLayout" bounds="[0,0][1080,1920]" displayed="true"/></hierarchy>`
	}
	return d.cfg.PageSources[d.page]
}

func (d *Device) Tap(_ context.Context, x, y int) error {
	return d.record("tap", "", x, y)
}

func (d *Device) DoubleTap(_ context.Context, x, y int) error {
	return d.record("doubleTap", "", x, y)
}

func (d *Device) LongTap(_ context.Context, x, y int) error {
	return d.record("longTap", "", x, y)
}

// Swipe records the gesture and advances the page-source script, so a
// scripted scroll reveals the next page.
func (d *Device) Swipe(_ context.Context, x, y, dx, dy, durationMs int) error {
	if err := d.record("swipe", "", x, y, dx, dy, durationMs); err != nil {
		return err
	}
	d.AdvancePage()
	return nil
}

func (d *Device) InputText(_ context.Context, text string) error {
	return d.record("inputText", text)
}

func (d *Device) PressBack(_ context.Context) error {
	return d.record("pressBack", "")
}

func (d *Device) PageSource(_ context.Context) (string, error) {
	if err := d.record("pageSource", ""); err != nil {
		return "", err
	}
	return d.currentSource(), nil
}

func (d *Device) Info(_ context.Context) (*core.DeviceInfo, error) {
	info := d.cfg.Info
	return &info, nil
}

// Select parses the current scripted page source and filters it.
func (d *Device) Select(ctx context.Context, crit core.Criteria) ([]core.Descriptor, error) {
	if err := d.record("select", describeCriteria(crit)); err != nil {
		return nil, err
	}
	tree, err := ui.Parse(d.currentSource())
	if err != nil {
		return nil, err
	}
	var out []core.Descriptor
	tree.Root.Walk(func(v *ui.View) bool {
		if matches(v, crit) {
			out = append(out, v.Descriptor())
		}
		return true
	})
	return out, nil
}

func matches(v *ui.View, c core.Criteria) bool {
	if c.Text != "" {
		if c.Exact {
			if v.Text != c.Text {
				return false
			}
		} else if !strings.EqualFold(v.Text, c.Text) {
			return false
		}
	}
	if c.Description != "" {
		if c.Exact {
			if v.Description != c.Description {
				return false
			}
		} else if !strings.Contains(strings.ToLower(v.Description), strings.ToLower(c.Description)) {
			return false
		}
	}
	if c.ResourceID != "" && v.ResourceID != c.ResourceID && v.ResourceEntry() != c.ResourceID {
		return false
	}
	if c.Class != "" && !strings.Contains(v.Class, c.Class) {
		return false
	}
	if c.VisibleOnly && !v.Visible {
		return false
	}
	return true
}

func describeCriteria(c core.Criteria) string {
	var parts []string
	if c.Text != "" {
		parts = append(parts, "text="+c.Text)
	}
	if c.Description != "" {
		parts = append(parts, "desc="+c.Description)
	}
	if c.ResourceID != "" {
		parts = append(parts, "id="+c.ResourceID)
	}
	if c.Class != "" {
		parts = append(parts, "class="+c.Class)
	}
	return fmt.Sprintf("{%s}", strings.Join(parts, " "))
}
