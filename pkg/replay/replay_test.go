package replay

import (
	"context"
	"testing"

	"github.com/devicelab-dev/replaykit/pkg/device/mock"
	"github.com/devicelab-dev/replaykit/pkg/event"
	"github.com/devicelab-dev/replaykit/pkg/script"
)

const recordeeSource = `<hierarchy>
  <node class="android.widget.FrameLayout" bounds="[0,0][540,960]" displayed="true">
    <node class="android.widget.ImageButton" content-desc="Back" bounds="[0,0][60,60]" displayed="true" clickable="true"/>
    <node class="android.widget.Button" text="Save" bounds="[100,200][300,280]" displayed="true" clickable="true"/>
  </node>
</hierarchy>`

const playeeSource = `<hierarchy>
  <node class="android.widget.FrameLayout" bounds="[0,0][1080,1920]" displayed="true">
    <node class="android.widget.Button" text="Save" bounds="[400,600][600,680]" displayed="true" clickable="true"/>
  </node>
</hierarchy>`

func recording(events ...*event.Event) *event.Recording {
	return &event.Recording{
		Device: event.RecordedDevice{ScreenWidth: 540, ScreenHeight: 960},
		Events: events,
	}
}

func TestRun_DirectResolution(t *testing.T) {
	dev := mock.New(mock.Config{PageSources: []string{playeeSource}})
	r := New(dev, Options{})

	rec := recording(&event.Event{
		Kind:   event.KindTap,
		X:      200, Y: 240,
		Target: event.Target{Text: "Save"},
		Source: recordeeSource,
	})

	res, err := r.Run(context.Background(), rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Direct != 1 {
		t.Errorf("direct = %d, want 1", res.Direct)
	}

	taps := dev.CallsOf("tap")
	if len(taps) != 1 {
		t.Fatalf("taps = %d, want 1", len(taps))
	}
	// Center of the playee-side Save button, not scaled recordee coords.
	if taps[0].Args[0] != 500 || taps[0].Args[1] != 640 {
		t.Errorf("tap at (%d,%d), want (500,640)", taps[0].Args[0], taps[0].Args[1])
	}
}

func TestRun_SynthesizesBackPress(t *testing.T) {
	dev := mock.New(mock.Config{PageSources: []string{playeeSource}})
	r := New(dev, Options{})

	rec := recording(&event.Event{
		Kind:   event.KindTap,
		X:      30, Y: 30,
		Target: event.Target{Description: "Back"},
		Source: recordeeSource,
	})

	res, err := r.Run(context.Background(), rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Synthesized != 1 {
		t.Errorf("synthesized = %d, want 1", res.Synthesized)
	}
	if backs := dev.CallsOf("pressBack"); len(backs) != 1 {
		t.Errorf("back presses = %d, want 1", len(backs))
	}
	if taps := dev.CallsOf("tap"); len(taps) != 0 {
		t.Errorf("unexpected taps: %v", taps)
	}
}

func TestRun_RawFallbackScalesCoordinates(t *testing.T) {
	dev := mock.New(mock.Config{})
	r := New(dev, Options{})

	// No recorded page source: the gesture replays at translated coords.
	rec := recording(&event.Event{Kind: event.KindTap, X: 270, Y: 480})

	res, err := r.Run(context.Background(), rec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Fallback != 1 {
		t.Errorf("fallback = %d, want 1", res.Fallback)
	}
	taps := dev.CallsOf("tap")
	if len(taps) != 1 {
		t.Fatalf("taps = %d, want 1", len(taps))
	}
	// 540x960 recordee to 1080x1920 playee doubles both axes.
	if taps[0].Args[0] != 540 || taps[0].Args[1] != 960 {
		t.Errorf("tap at (%d,%d), want (540,960)", taps[0].Args[0], taps[0].Args[1])
	}
}

func TestRun_UnsupportedKeyFollowsPolicy(t *testing.T) {
	ev := &event.Event{Kind: event.KindKey, KeyCode: 99}

	dev := mock.New(mock.Config{})
	res, err := New(dev, Options{OnError: "skip"}).Run(context.Background(), recording(ev))
	if err != nil {
		t.Fatalf("skip policy must not fail the run: %v", err)
	}
	if res.Skipped != 1 {
		t.Errorf("skipped = %d, want 1", res.Skipped)
	}

	dev = mock.New(mock.Config{})
	_, err = New(dev, Options{OnError: "abort"}).Run(context.Background(), recording(ev))
	if err == nil {
		t.Fatal("abort policy must surface the error")
	}
}

func TestRun_BackKeyTranslates(t *testing.T) {
	dev := mock.New(mock.Config{})
	r := New(dev, Options{})

	res, err := r.Run(context.Background(), recording(
		&event.Event{Kind: event.KindKey, KeyCode: 4},
	))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Fallback != 1 {
		t.Errorf("fallback = %d, want 1", res.Fallback)
	}
	if backs := dev.CallsOf("pressBack"); len(backs) != 1 {
		t.Errorf("back presses = %d, want 1", len(backs))
	}
}

func TestRun_HookSkipsEvents(t *testing.T) {
	hook := script.New()
	if err := hook.Load(`
		function onEvent(event) {
			return event.target.text === "Save" ? "skip" : "replay";
		}
	`); err != nil {
		t.Fatal(err)
	}

	dev := mock.New(mock.Config{PageSources: []string{playeeSource}})
	r := New(dev, Options{Hook: hook})

	res, err := r.Run(context.Background(), recording(&event.Event{
		Kind:   event.KindTap,
		Target: event.Target{Text: "Save"},
		Source: recordeeSource,
	}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Skipped != 1 {
		t.Errorf("skipped = %d, want 1", res.Skipped)
	}
	if len(dev.CallsOf("tap")) != 0 {
		t.Error("skipped event must not tap")
	}
}
