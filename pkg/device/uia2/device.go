package uia2

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/devicelab-dev/replaykit/pkg/core"
	"github.com/devicelab-dev/replaykit/pkg/ui"
)

// Client implements core.Device. Gestures use W3C pointer actions, which
// the server translates to injected touches.
var _ core.Device = (*Client)(nil)

// performPointerAction posts one touch-pointer action sequence.
func (c *Client) performPointerAction(ctx context.Context, actions []map[string]interface{}) error {
	payload := []map[string]interface{}{
		{
			"type": "pointer",
			"id":   "finger1",
			"parameters": map[string]interface{}{
				"pointerType": "touch",
			},
			"actions": actions,
		},
	}
	_, err := c.request(ctx, "POST", c.sessionPath("/actions"), map[string]interface{}{
		"actions": payload,
	})
	return err
}

// Tap injects a tap at screen coordinates.
func (c *Client) Tap(ctx context.Context, x, y int) error {
	return c.performPointerAction(ctx, []map[string]interface{}{
		{"type": "pointerMove", "duration": 0, "x": x, "y": y, "origin": "viewport"},
		{"type": "pointerDown", "button": 0},
		{"type": "pause", "duration": 50},
		{"type": "pointerUp", "button": 0},
	})
}

// DoubleTap injects two quick taps.
func (c *Client) DoubleTap(ctx context.Context, x, y int) error {
	return c.performPointerAction(ctx, []map[string]interface{}{
		{"type": "pointerMove", "duration": 0, "x": x, "y": y, "origin": "viewport"},
		{"type": "pointerDown", "button": 0},
		{"type": "pointerUp", "button": 0},
		{"type": "pause", "duration": 100},
		{"type": "pointerDown", "button": 0},
		{"type": "pointerUp", "button": 0},
	})
}

// LongTap injects a press held for 800ms.
func (c *Client) LongTap(ctx context.Context, x, y int) error {
	return c.performPointerAction(ctx, []map[string]interface{}{
		{"type": "pointerMove", "duration": 0, "x": x, "y": y, "origin": "viewport"},
		{"type": "pointerDown", "button": 0},
		{"type": "pause", "duration": 800},
		{"type": "pointerUp", "button": 0},
	})
}

// Swipe injects a drag from (x, y) by (dx, dy) over durationMs.
func (c *Client) Swipe(ctx context.Context, x, y, dx, dy, durationMs int) error {
	if durationMs <= 0 {
		durationMs = 300
	}
	return c.performPointerAction(ctx, []map[string]interface{}{
		{"type": "pointerMove", "duration": 0, "x": x, "y": y, "origin": "viewport"},
		{"type": "pointerDown", "button": 0},
		{"type": "pointerMove", "duration": durationMs, "x": x + dx, "y": y + dy, "origin": "viewport"},
		{"type": "pointerUp", "button": 0},
	})
}

// InputText types into the focused element.
func (c *Client) InputText(ctx context.Context, text string) error {
	_, err := c.request(ctx, "POST", c.sessionPath("/appium/element/active/value"),
		map[string]interface{}{"text": text})
	return err
}

// androidKeycodeBack is the hardware back key.
const androidKeycodeBack = 4

// PressBack presses the back navigation control.
func (c *Client) PressBack(ctx context.Context) error {
	_, err := c.request(ctx, "POST", c.sessionPath("/appium/device/press_keycode"),
		map[string]interface{}{"keycode": androidKeycodeBack})
	return err
}

// PageSource returns the UI hierarchy XML.
func (c *Client) PageSource(ctx context.Context) (string, error) {
	data, err := c.request(ctx, "GET", c.sessionPath("/source"), nil)
	if err != nil {
		return "", err
	}
	var resp struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", core.ErrTransport.WithMessage("parse source response").WithCause(err)
	}
	return resp.Value, nil
}

// Info returns the device identity and screen geometry.
func (c *Client) Info(ctx context.Context) (*core.DeviceInfo, error) {
	data, err := c.request(ctx, "GET", c.sessionPath("/window/size"), nil)
	if err != nil {
		return nil, err
	}
	var resp struct {
		Value struct {
			Width  int `json:"width"`
			Height int `json:"height"`
		} `json:"value"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, core.ErrTransport.WithMessage("parse window size response").WithCause(err)
	}
	return &core.DeviceInfo{
		Serial:       c.serial,
		ScreenWidth:  resp.Value.Width,
		ScreenHeight: resp.Value.Height,
	}, nil
}

// Select fetches the page source and filters the parsed hierarchy. The
// server's element endpoints are avoided on purpose: they resolve lazily
// and miss views the replay engine needs to reason about.
func (c *Client) Select(ctx context.Context, crit core.Criteria) ([]core.Descriptor, error) {
	src, err := c.PageSource(ctx)
	if err != nil {
		return nil, err
	}
	tree, err := ui.Parse(src)
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

// matches applies the selection criteria to one view.
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
