package ui

import (
	"testing"
)

const sampleDump = `<?xml version="1.0" encoding="UTF-8"?>
<hierarchy rotation="0">
  <android.widget.FrameLayout bounds="[0,0][1080,1920]" drawing-order="0">
    <android.widget.LinearLayout bounds="[0,0][1080,1920]" resource-id="com.example:id/content">
      <android.widget.TextView text="Inbox" bounds="[0,100][1080,200]" resource-id="com.example:id/title"/>
      <android.widget.ListView bounds="[0,200][1080,1800]" scrollable="true">
        <android.widget.TextView text="First mail" bounds="[0,200][1080,400]" clickable="true"/>
        <android.widget.TextView text="Second mail" bounds="[0,400][1080,600]" clickable="true"/>
      </android.widget.ListView>
      <android.widget.ImageButton content-desc="Compose" bounds="[880,1600][1040,1760]" clickable="true" drawing-order="2"/>
    </android.widget.LinearLayout>
  </android.widget.FrameLayout>
</hierarchy>`

func TestParse_BuildsTree(t *testing.T) {
	tree, err := Parse(sampleDump)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	root := tree.Root
	if root.Class != "android.widget.FrameLayout" {
		t.Errorf("root class = %q", root.Class)
	}
	if got := len(tree.Views()); got != 7 {
		t.Fatalf("view count = %d, want 7", got)
	}

	title := root.FindFirst(func(v *View) bool { return v.Text == "Inbox" })
	if title == nil {
		t.Fatal("title view not found")
	}
	if title.ResourceEntry() != "title" {
		t.Errorf("resource entry = %q, want title", title.ResourceEntry())
	}
	if title.Parent == nil || title.Parent.ResourceEntry() != "content" {
		t.Error("parent link not wired")
	}

	list := root.FindFirst(func(v *View) bool { return v.Scrollable })
	if list == nil {
		t.Fatal("scrollable list not found")
	}
	h, vert := list.ScrollAxes()
	if h || !vert {
		t.Errorf("list scroll axes = (%v, %v), want (false, true)", h, vert)
	}

	mail := root.FindFirst(func(v *View) bool { return v.Text == "First mail" })
	if got := mail.ScrollableAncestor(false); got != list {
		t.Error("scrollable ancestor lookup failed")
	}
}

func TestParse_NodeFormat(t *testing.T) {
	dump := `<hierarchy>
  <node class="android.widget.FrameLayout" bounds="[0,0][100,100]">
    <node class="android.widget.Button" text="OK" bounds="[10,10][90,90]" clickable="true"/>
  </node>
</hierarchy>`
	tree, err := Parse(dump)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	btn := tree.Root.FindFirst(func(v *View) bool { return v.Text == "OK" })
	if btn == nil || btn.Class != "android.widget.Button" {
		t.Fatal("node-format class attribute not applied")
	}
}

func TestParse_Errors(t *testing.T) {
	if _, err := Parse("<foo/>"); err == nil {
		t.Error("expected error for missing hierarchy")
	}
	if _, err := Parse("not xml at all <<<"); err == nil {
		t.Error("expected error for invalid xml")
	}
}

func TestDrawingLevels(t *testing.T) {
	// A floating button overlapping list content must land in a higher
	// band; disjoint siblings share band 0.
	tree, err := Parse(sampleDump)
	if err != nil {
		t.Fatal(err)
	}
	root := tree.Root
	list := root.FindFirst(func(v *View) bool { return v.Scrollable })
	fab := root.FindFirst(func(v *View) bool { return v.Description == "Compose" })
	title := root.FindFirst(func(v *View) bool { return v.Text == "Inbox" })

	if fab.DrawingLevel() <= list.DrawingLevel() {
		t.Errorf("fab level %d not above list level %d", fab.DrawingLevel(), list.DrawingLevel())
	}
	if title.DrawingLevel() != list.DrawingLevel() {
		t.Errorf("disjoint siblings: title %d, list %d", title.DrawingLevel(), list.DrawingLevel())
	}
}

func TestBackground_Inherited(t *testing.T) {
	tests := []struct {
		name string
		bg   Background
		want bool
	}{
		{"empty", Background{}, true},
		{"ripple over color", Background{Class: "RippleDrawable", Color: "#ffffff"}, true},
		{"plain color", Background{Class: "ColorDrawable", Color: "#ff0000"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.bg.Inherited(); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
