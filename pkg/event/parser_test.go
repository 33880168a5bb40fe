package event

import (
	"strings"
	"testing"
)

const sampleRecording = `
app: com.example.mail
device:
  serial: emulator-5554
  screenWidth: 1080
  screenHeight: 1920
events:
  - kind: tap
    x: 540
    y: 300
    target:
      text: Inbox
      resourceId: com.example:id/title
  - kind: swipe
    x: 540
    y: 960
    dy: -400
    durationMs: 300
  - kind: text
    input: hello
`

func TestParse_ValidRecording(t *testing.T) {
	rec, err := Parse([]byte(sampleRecording), "rec.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.App != "com.example.mail" {
		t.Errorf("app = %q", rec.App)
	}
	if rec.Device.ScreenWidth != 1080 {
		t.Errorf("screen width = %d", rec.Device.ScreenWidth)
	}
	if len(rec.Events) != 3 {
		t.Fatalf("event count = %d, want 3", len(rec.Events))
	}
	if rec.Events[0].Kind != KindTap || rec.Events[0].Target.Text != "Inbox" {
		t.Errorf("first event = %+v", rec.Events[0])
	}
	if rec.Events[1].DY != -400 {
		t.Errorf("swipe dy = %d", rec.Events[1].DY)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "no events",
			content: "device: {screenWidth: 100, screenHeight: 100}\nevents: []",
			wantErr: "no events",
		},
		{
			name:    "missing screen size",
			content: "events:\n  - kind: tap\n    x: 1\n    y: 1",
			wantErr: "screen size",
		},
		{
			name: "unknown kind",
			content: `
device: {screenWidth: 100, screenHeight: 100}
events:
  - kind: pinch
`,
			wantErr: "unknown event kind",
		},
		{
			name: "swipe without delta",
			content: `
device: {screenWidth: 100, screenHeight: 100}
events:
  - kind: swipe
    x: 50
    y: 50
`,
			wantErr: "dx or dy",
		},
		{
			name: "text without input",
			content: `
device: {screenWidth: 100, screenHeight: 100}
events:
  - kind: text
`,
			wantErr: "needs input",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.content), "rec.yaml")
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestQueue(t *testing.T) {
	events := []*Event{
		{Kind: KindTap, X: 1},
		{Kind: KindTap, X: 2},
		{Kind: KindTap, X: 3},
	}
	q := NewQueue(events)

	if q.Len() != 3 {
		t.Fatalf("len = %d", q.Len())
	}
	if q.Peek(1).X != 2 {
		t.Errorf("peek(1).X = %d", q.Peek(1).X)
	}
	if q.Peek(5) != nil {
		t.Error("peek out of range should be nil")
	}

	if e := q.Pop(); e.X != 1 {
		t.Errorf("pop.X = %d", e.X)
	}
	q.PopN(5)
	if q.Len() != 0 {
		t.Errorf("len after over-pop = %d", q.Len())
	}
	if q.Pop() != nil {
		t.Error("pop on empty should be nil")
	}
}
