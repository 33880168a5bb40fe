package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"
)

func newTestApp(cmd *cli.Command) *cli.App {
	return &cli.App{
		Name:     "test-app",
		Flags:    GlobalFlags,
		Commands: []*cli.Command{cmd},
	}
}

func suppressStdout(t *testing.T) {
	t.Helper()
	oldStdout := os.Stdout
	os.Stdout, _ = os.Open(os.DevNull)
	t.Cleanup(func() { os.Stdout = oldStdout })
}

func TestGlobalFlags(t *testing.T) {
	flagNames := make(map[string]bool)
	for _, f := range GlobalFlags {
		for _, name := range f.Names() {
			flagNames[name] = true
		}
	}

	requiredFlags := []string{"config", "c", "log-file", "verbose"}
	for _, name := range requiredFlags {
		if !flagNames[name] {
			t.Errorf("expected flag %q to be defined", name)
		}
	}
}

func TestReplayCommand_NoRecording(t *testing.T) {
	app := newTestApp(replayCommand)

	err := app.Run([]string{"test-app", "replay", "--dry-run"})
	if err == nil {
		t.Error("expected error when no recording provided")
	}
	if err != nil && !strings.Contains(err.Error(), "recording") {
		t.Errorf("expected recording required error, got: %v", err)
	}
}

func TestReplayCommand_RequiresDevice(t *testing.T) {
	app := newTestApp(replayCommand)

	// Without --dry-run a device endpoint must be configured.
	err := app.Run([]string{"test-app", "replay", "session.yaml"})
	if err == nil {
		t.Error("expected error when no device configured")
	}
}

func TestReplayCommand_DryRun(t *testing.T) {
	suppressStdout(t)

	recording := filepath.Join(t.TempDir(), "session.yaml")
	content := `device:
  screenWidth: 540
  screenHeight: 960
events:
  - kind: tap
    x: 100
    y: 200
`
	if err := os.WriteFile(recording, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	app := newTestApp(replayCommand)
	err := app.Run([]string{"test-app", "replay", "--dry-run", recording})
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestReplayCommand_InvalidOnError(t *testing.T) {
	app := newTestApp(replayCommand)

	err := app.Run([]string{"test-app", "replay", "--dry-run", "--on-error", "retry", "x.yaml"})
	if err == nil {
		t.Error("expected error for invalid on-error policy")
	}
}

func TestInspectCommand_File(t *testing.T) {
	suppressStdout(t)

	hierarchy := filepath.Join(t.TempDir(), "hierarchy.xml")
	content := `<hierarchy>
  <node class="android.widget.FrameLayout" bounds="[0,0][1080,1920]" displayed="true">
    <node class="android.widget.TextView" text="Inbox" bounds="[0,0][1080,200]" displayed="true"/>
    <node class="android.widget.Button" text="Compose" bounds="[0,1700][1080,1920]" displayed="true" clickable="true"/>
  </node>
</hierarchy>`
	if err := os.WriteFile(hierarchy, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	app := newTestApp(inspectCommand)
	err := app.Run([]string{"test-app", "inspect", hierarchy})
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestInspectCommand_NoSource(t *testing.T) {
	app := newTestApp(inspectCommand)

	err := app.Run([]string{"test-app", "inspect"})
	if err == nil {
		t.Error("expected error when neither file nor device given")
	}
	if err != nil && !strings.Contains(err.Error(), "--device") {
		t.Errorf("expected source required error, got: %v", err)
	}
}
