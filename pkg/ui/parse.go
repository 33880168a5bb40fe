package ui

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/devicelab-dev/replaykit/pkg/core"
)

// Parse parses a UIAutomator2 page-source XML dump into a view tree.
// Both dump flavors are handled: class-named element tags and Appium-style
// <node> elements with a class attribute. Drawing levels are assigned
// before the tree is returned.
func Parse(xmlData string) (*Tree, error) {
	decoder := xml.NewDecoder(strings.NewReader(xmlData))

	var roots []*View
	foundHierarchy := false

	var parseView func(parent *View) (*View, error)
	parseView = func(parent *View) (*View, error) {
		for {
			token, err := decoder.Token()
			if err != nil {
				return nil, err
			}

			switch t := token.(type) {
			case xml.StartElement:
				if t.Name.Local == "hierarchy" {
					foundHierarchy = true
					continue
				}

				v := &View{
					Class:   t.Name.Local,
					Parent:  parent,
					Visible: true,
					Enabled: true,
					// dumps rarely carry the flag; important unless denied
					AccessibilityImportant: true,
				}
				for _, attr := range t.Attr {
					applyAttr(v, attr.Name.Local, attr.Value)
				}

				for {
					child, err := parseView(v)
					if err != nil || child == nil {
						break
					}
					v.Children = append(v.Children, child)
				}
				return v, nil

			case xml.EndElement:
				return nil, nil
			}
		}
	}

	var parseErr error
	for {
		v, err := parseView(nil)
		if err != nil {
			if err.Error() != "EOF" {
				parseErr = err
			}
			break
		}
		if v != nil {
			roots = append(roots, v)
		}
	}

	if parseErr != nil && len(roots) == 0 {
		return nil, parseErr
	}
	if !foundHierarchy {
		return nil, fmt.Errorf("invalid page source: no hierarchy element found")
	}
	if len(roots) == 0 {
		return nil, fmt.Errorf("invalid page source: empty hierarchy")
	}

	root := roots[0]
	if len(roots) > 1 {
		// multiple windows: wrap them under a synthetic decor root
		root = &View{Class: "android.view.DecorRoot", Visible: true, Enabled: true, AccessibilityImportant: true}
		for _, r := range roots {
			r.Parent = root
			root.Bounds = root.Bounds.Union(r.Bounds)
		}
		root.Children = roots
	}

	tree := &Tree{Root: root}
	assignDrawingLevels(tree)
	return tree, nil
}

func applyAttr(v *View, name, value string) {
	switch name {
	case "text":
		v.Text = value
	case "resource-id":
		v.ResourceID = value
	case "content-desc":
		v.Description = value
	case "hint":
		v.Hint = value
	case "tag":
		v.Tag = value
	case "tooltip":
		v.Tooltip = value
	case "class":
		v.Class = value
	case "bounds":
		v.Bounds = parseBounds(value)
	case "enabled":
		v.Enabled = value == "true"
	case "selected":
		v.Selected = value == "true"
	case "focused":
		v.Focused = value == "true"
	case "displayed", "visible-to-user":
		v.Visible = value != "false"
	case "clickable":
		v.Clickable = value == "true"
	case "long-clickable":
		v.LongClickable = value == "true"
	case "scrollable":
		v.Scrollable = value == "true"
	case "important-for-accessibility":
		v.AccessibilityImportant = value != "no" && value != "false"
	case "drawing-order":
		v.DrawingOrder, _ = strconv.Atoi(value)
	case "background":
		v.Background = parseBackground(value)
	}
}

// parseBounds parses the Android bounds string "[x1,y1][x2,y2]".
func parseBounds(s string) (b core.Bounds) {
	s = strings.ReplaceAll(s, "][", ",")
	s = strings.Trim(s, "[]")
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return b
	}
	x1, _ := strconv.Atoi(parts[0])
	y1, _ := strconv.Atoi(parts[1])
	x2, _ := strconv.Atoi(parts[2])
	y2, _ := strconv.Atoi(parts[3])
	b.X, b.Y, b.Width, b.Height = x1, y1, x2-x1, y2-y1
	return b
}

// parseBackground parses "DrawableClass" or "DrawableClass:#rrggbb".
func parseBackground(s string) Background {
	if i := strings.IndexByte(s, ':'); i >= 0 {
		return Background{Class: s[:i], Color: s[i+1:]}
	}
	if strings.HasPrefix(s, "#") {
		return Background{Color: s}
	}
	return Background{Class: s}
}
