package mock

import (
	"context"
	"testing"

	"github.com/devicelab-dev/replaykit/pkg/core"
)

const pageOne = `<hierarchy>
  <node class="android.widget.FrameLayout" bounds="[0,0][1080,1920]" displayed="true">
    <node class="android.widget.TextView" text="First" bounds="[0,0][1080,100]" displayed="true"/>
  </node>
</hierarchy>`

const pageTwo = `<hierarchy>
  <node class="android.widget.FrameLayout" bounds="[0,0][1080,1920]" displayed="true">
    <node class="android.widget.TextView" text="Second" bounds="[0,0][1080,100]" displayed="true"/>
  </node>
</hierarchy>`

func TestSelect_UsesScriptedSource(t *testing.T) {
	d := New(Config{PageSources: []string{pageOne, pageTwo}})

	got, err := d.Select(context.Background(), core.Criteria{Text: "First"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d descriptors, want 1", len(got))
	}

	// A swipe advances the script to the next page.
	if err := d.Swipe(context.Background(), 500, 1000, 0, -500, 300); err != nil {
		t.Fatal(err)
	}
	got, err = d.Select(context.Background(), core.Criteria{Text: "First"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Error("first page still served after swipe")
	}
	got, err = d.Select(context.Background(), core.Criteria{Text: "Second"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Errorf("second page not served after swipe")
	}
}

func TestCallLog(t *testing.T) {
	d := New(Config{})
	ctx := context.Background()

	d.Tap(ctx, 10, 20)
	d.PressBack(ctx)
	d.InputText(ctx, "hello")

	calls := d.Calls()
	if len(calls) != 3 {
		t.Fatalf("recorded %d calls, want 3", len(calls))
	}
	if calls[0].Op != "tap" || calls[0].Args[0] != 10 || calls[0].Args[1] != 20 {
		t.Errorf("first call = %+v", calls[0])
	}
	if len(d.CallsOf("pressBack")) != 1 {
		t.Error("pressBack not recorded")
	}
	if got := d.CallsOf("inputText"); len(got) != 1 || got[0].Text != "hello" {
		t.Errorf("inputText log = %+v", got)
	}
}

func TestFailOnCall(t *testing.T) {
	d := New(Config{FailOnCall: 2})
	ctx := context.Background()

	if err := d.Tap(ctx, 1, 1); err != nil {
		t.Fatalf("first call must succeed: %v", err)
	}
	err := d.Tap(ctx, 2, 2)
	if err == nil {
		t.Fatal("second call must fail")
	}
	if core.CategoryOf(err) != core.ErrCategoryTransport {
		t.Errorf("category = %q, want transport", core.CategoryOf(err))
	}
	if err := d.Tap(ctx, 3, 3); err != nil {
		t.Errorf("third call must succeed again: %v", err)
	}
}
