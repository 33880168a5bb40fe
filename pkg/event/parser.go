package event

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ParseError is a recording parse failure with location info.
type ParseError struct {
	Path    string
	Index   int // event index, -1 for file-level errors
	Message string
}

func (e *ParseError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("%s: event %d: %s", e.Path, e.Index, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// RecordedDevice describes the recordee device as captured in the file.
type RecordedDevice struct {
	Serial       string `yaml:"serial,omitempty"`
	Model        string `yaml:"model,omitempty"`
	ScreenWidth  int    `yaml:"screenWidth"`
	ScreenHeight int    `yaml:"screenHeight"`
}

// Recording is a parsed recording file: the app it was captured against,
// the recordee device geometry, and the ordered events.
type Recording struct {
	App        string         `yaml:"app,omitempty"`
	Device     RecordedDevice `yaml:"device"`
	Events     []*Event       `yaml:"events"`
	SourcePath string         `yaml:"-"`
}

// ParseFile reads and parses a recording file. Event page sources given
// as sourceFile references are loaded relative to the recording file.
func ParseFile(path string) (*Recording, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- path is a user-provided recording
	if err != nil {
		return nil, fmt.Errorf("failed to read recording: %w", err)
	}
	rec, err := Parse(data, path)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(path)
	for i, ev := range rec.Events {
		if ev.SourceFile == "" {
			continue
		}
		src, err := os.ReadFile(filepath.Join(dir, ev.SourceFile)) //#nosec G304
		if err != nil {
			return nil, &ParseError{Path: path, Index: i, Message: fmt.Sprintf("load source file: %v", err)}
		}
		ev.Source = string(src)
		ev.SourceFile = ""
	}
	return rec, nil
}

// Parse parses recording YAML content.
func Parse(data []byte, sourcePath string) (*Recording, error) {
	var rec Recording
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return nil, &ParseError{Path: sourcePath, Index: -1, Message: fmt.Sprintf("invalid yaml: %v", err)}
	}
	rec.SourcePath = sourcePath

	if len(rec.Events) == 0 {
		return nil, &ParseError{Path: sourcePath, Index: -1, Message: "recording has no events"}
	}
	if rec.Device.ScreenWidth <= 0 || rec.Device.ScreenHeight <= 0 {
		return nil, &ParseError{Path: sourcePath, Index: -1, Message: "device screen size missing"}
	}

	for i, ev := range rec.Events {
		if err := validate(ev); err != nil {
			return nil, &ParseError{Path: sourcePath, Index: i, Message: err.Error()}
		}
	}
	return &rec, nil
}

func validate(ev *Event) error {
	switch ev.Kind {
	case KindTap, KindDoubleTap, KindLongTap:
		if ev.Target.Empty() && ev.X == 0 && ev.Y == 0 {
			return fmt.Errorf("%s event needs a target or coordinates", ev.Kind)
		}
	case KindSwipe:
		if ev.DX == 0 && ev.DY == 0 {
			return fmt.Errorf("swipe event needs dx or dy")
		}
	case KindText:
		if ev.Input == "" {
			return fmt.Errorf("text event needs input")
		}
	case KindKey:
		if ev.KeyCode == 0 {
			return fmt.Errorf("key event needs keyCode")
		}
	case "":
		return fmt.Errorf("event kind missing")
	default:
		return fmt.Errorf("unknown event kind %q", ev.Kind)
	}
	return nil
}
