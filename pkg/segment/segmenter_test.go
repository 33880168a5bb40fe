package segment

import (
	"testing"

	"github.com/devicelab-dev/replaykit/pkg/core"
	"github.com/devicelab-dev/replaykit/pkg/interval"
	"github.com/devicelab-dev/replaykit/pkg/ui"
)

// mailTree builds a typical list screen: a title, a scrollable list, and
// a floating compose button overlapping the list.
func mailTree() *ui.Tree {
	return ui.NewTree(&ui.View{
		Class: "android.widget.FrameLayout", Visible: true, Enabled: true,
		Bounds: core.Bounds{X: 0, Y: 0, Width: 1080, Height: 1920},
		Children: []*ui.View{
			{
				Class: "android.widget.LinearLayout", Visible: true, Enabled: true,
				ResourceID: "com.example:id/content",
				Bounds:     core.Bounds{X: 0, Y: 0, Width: 1080, Height: 1920},
				Children: []*ui.View{
					{
						Class: "android.widget.TextView", Visible: true, Enabled: true,
						Text: "Inbox", ResourceID: "com.example:id/title",
						AccessibilityImportant: true,
						Bounds:                 core.Bounds{X: 0, Y: 100, Width: 1080, Height: 100},
					},
					{
						Class: "android.widget.ListView", Visible: true, Enabled: true,
						Scrollable: true,
						Bounds:     core.Bounds{X: 0, Y: 200, Width: 1080, Height: 1600},
						Children: []*ui.View{
							{
								Class: "android.widget.TextView", Visible: true, Enabled: true,
								Text: "First mail", Clickable: true, AccessibilityImportant: true,
								Bounds: core.Bounds{X: 0, Y: 200, Width: 1080, Height: 200},
							},
							{
								Class: "android.widget.TextView", Visible: true, Enabled: true,
								Text: "Second mail", Clickable: true, AccessibilityImportant: true,
								Bounds: core.Bounds{X: 0, Y: 400, Width: 1080, Height: 200},
							},
						},
					},
					{
						Class: "android.widget.ImageButton", Visible: true, Enabled: true,
						Description: "Compose", Clickable: true, AccessibilityImportant: true,
						Bounds: core.Bounds{X: 880, Y: 1600, Width: 160, Height: 160},
					},
				},
			},
		},
	})
}

func TestSegment_TerminatesAndCovers(t *testing.T) {
	tree, err := Build(mailTree())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tree.Final) == 0 {
		t.Fatal("no segments retained")
	}

	// No view may appear under more than one retained segment.
	owner := map[*ui.View]ID{}
	for _, id := range tree.Final {
		for _, r := range tree.Get(id).Roots {
			r.Walk(func(v *ui.View) bool {
				if prev, ok := owner[v]; ok && prev != id {
					t.Fatalf("view %q owned by segments %d and %d", v.Class, prev, id)
				}
				owner[v] = id
				return true
			})
		}
	}
}

func TestSegment_ElevatedButtonSplitsOff(t *testing.T) {
	u := mailTree()
	tree, err := Build(u)
	if err != nil {
		t.Fatal(err)
	}

	fab := u.Root.FindFirst(func(v *ui.View) bool { return v.Description == "Compose" })
	fabSeg := tree.FindContaining(fab)
	if fabSeg == None {
		t.Fatal("compose button not in any retained segment")
	}
	title := u.Root.FindFirst(func(v *ui.View) bool { return v.Text == "Inbox" })
	titleSeg := tree.FindContaining(title)
	if titleSeg == None {
		t.Fatal("title not in any retained segment")
	}
	if fabSeg == titleSeg {
		t.Error("floating button should be segmented apart from the content")
	}
}

func TestSegment_EmptyRootsRejected(t *testing.T) {
	tree := NewTree()
	if _, err := tree.Add(None, nil); err == nil {
		t.Fatal("expected error")
	} else if core.CategoryOf(err) != core.ErrCategoryContract {
		t.Errorf("category = %q, want contract", core.CategoryOf(err))
	}
}

func TestSetSep_FlipsAcceptance(t *testing.T) {
	u := mailTree()
	tree := NewTree()
	id, err := tree.Add(None, []*ui.View{u.Root})
	if err != nil {
		t.Fatal(err)
	}

	title := u.Root.FindFirst(func(v *ui.View) bool { return v.Text == "Inbox" })
	fab := u.Root.FindFirst(func(v *ui.View) bool { return v.Description == "Compose" })

	sep := &Separator{Kind: KindSplit, Direction: DirE, SideA: []*ui.View{fab}, SideB: []*ui.View{title}}
	if err := tree.SetSep(id, sep); err != nil {
		t.Fatal(err)
	}
	if tree.Get(id).Accepted {
		t.Error("segment with separator must not stay accepted")
	}
	if !tree.Get(sep.First).Accepted || !tree.Get(sep.Second).Accepted {
		t.Error("separator children must start accepted")
	}

	tree.DelSep(id)
	if !tree.Get(id).Accepted {
		t.Error("DelSep must revert acceptance")
	}
	if tree.Get(sep.First).Accepted {
		t.Error("orphaned children must lose acceptance")
	}
}

func TestScoreSplit_Monotonicity(t *testing.T) {
	mk := func(text string, bg ui.Background) *ui.View {
		return &ui.View{Class: "android.widget.TextView", Text: text, Background: bg, Visible: true}
	}
	a := []*ui.View{mk("left", ui.Background{})}
	b := []*ui.View{mk("right", ui.Background{})}

	narrow := scoreSplit(interval.New(0, 10), a, b)
	wide := scoreSplit(interval.New(0, 40), a, b)
	if wide < narrow {
		t.Errorf("widening the gap lowered the score: %d -> %d", narrow, wide)
	}

	plain := scoreSplit(interval.New(0, 10), a, b)
	diverse := scoreSplit(interval.New(0, 10), a,
		[]*ui.View{mk("right", ui.Background{Class: "ColorDrawable", Color: "#222222"})})
	if diverse < plain {
		t.Errorf("background diversity lowered the score: %d -> %d", plain, diverse)
	}

	asym := scoreSplit(interval.New(0, 10), a,
		[]*ui.View{{Class: "android.widget.ImageView", Visible: true}})
	if asym <= plain {
		t.Errorf("text asymmetry did not raise the score: %d -> %d", plain, asym)
	}
}

func TestScoreElevated(t *testing.T) {
	small := scoreElevated(1, 1)
	big := scoreElevated(10, 5)
	if big <= small {
		t.Errorf("more views and more asymmetry should score higher: %d vs %d", small, big)
	}
}

// A segment whose pool differs from its roots without any geometric gap
// must shrink, not loop.
func TestSegment_ShrinkReroots(t *testing.T) {
	u := ui.NewTree(&ui.View{
		Class: "android.widget.FrameLayout", Visible: true, Enabled: true,
		Bounds: core.Bounds{X: 0, Y: 0, Width: 200, Height: 100},
		Children: []*ui.View{
			{
				Class: "android.widget.TextView", Visible: true, Enabled: true,
				Text: "Left", AccessibilityImportant: true,
				Bounds: core.Bounds{X: 0, Y: 0, Width: 100, Height: 100},
			},
			{
				Class: "android.widget.TextView", Visible: true, Enabled: true,
				Text: "Right", AccessibilityImportant: true,
				Bounds: core.Bounds{X: 100, Y: 0, Width: 100, Height: 100},
			},
		},
	})
	tree, err := Build(u)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tree.Final) == 0 {
		t.Fatal("no segments retained")
	}
	// The root segment must have been divided or shrunk, not kept as the
	// sole accepted leaf over the decor view.
	root := tree.Get(tree.Root)
	if root.Accepted && root.Sep == nil && tree.Len() == 1 {
		t.Error("root segment never refined")
	}
}

// A discovered split that scores below the acceptance threshold ends
// refinement: the segment stays a final accepted leaf and must not be
// re-rooted on its pool.
func TestSegment_RejectedSplitStaysLeaf(t *testing.T) {
	// Two same-class text views across a 10px gap score well below the
	// threshold (no class, count, or background diversity).
	u := ui.NewTree(&ui.View{
		Class: "android.widget.FrameLayout", Visible: true, Enabled: true,
		Bounds: core.Bounds{X: 0, Y: 0, Width: 210, Height: 100},
		Children: []*ui.View{
			{
				Class: "android.widget.TextView", Visible: true, Enabled: true,
				Text: "Left", AccessibilityImportant: true,
				Bounds: core.Bounds{X: 0, Y: 0, Width: 100, Height: 100},
			},
			{
				Class: "android.widget.TextView", Visible: true, Enabled: true,
				Text: "Right", AccessibilityImportant: true,
				Bounds: core.Bounds{X: 110, Y: 0, Width: 100, Height: 100},
			},
		},
	})
	tree, err := Build(u)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	root := tree.Get(tree.Root)
	if !root.Accepted || root.Sep != nil {
		t.Errorf("root accepted=%v sep=%v, want accepted leaf", root.Accepted, root.Sep)
	}
	if tree.Len() != 1 {
		t.Errorf("arena holds %d segments, want 1", tree.Len())
	}
	if len(tree.Final) != 1 || tree.Final[0] != tree.Root {
		t.Errorf("final = %v, want [%d]", tree.Final, tree.Root)
	}
}
