package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/devicelab-dev/replaykit/pkg/core"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "replay.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, "device: 127.0.0.1:6790\nrecording: session.yaml\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.OnError != OnErrorSkip {
		t.Errorf("onError = %q, want skip default", cfg.OnError)
	}
	if cfg.LookaheadDepth != 3 {
		t.Errorf("lookaheadDepth = %d, want 3 default", cfg.LookaheadDepth)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Device: "localhost:6790", OnError: OnErrorAbort}, false},
		{"bad on-error", Config{Device: "localhost:6790", OnError: "retry"}, true},
		{"negative lookahead", Config{Device: "localhost:6790", LookaheadDepth: -1}, true},
		{"missing device", Config{}, true},
		{"dry run needs no device", Config{DryRun: true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && core.CategoryOf(err) != core.ErrCategoryConfig {
				t.Errorf("category = %q, want config", core.CategoryOf(err))
			}
		})
	}
}

func TestLoadFromDir_MissingIsDefault(t *testing.T) {
	cfg, err := LoadFromDir(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.OnError != OnErrorSkip || cfg.LookaheadDepth != 3 {
		t.Errorf("missing config must yield defaults, got %+v", cfg)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfig(t, "device: [unterminated\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error")
	}
}
