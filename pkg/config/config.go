// Package config handles replay run configuration (replay.yaml).
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/devicelab-dev/replaykit/pkg/core"
)

// OnError policies for untranslatable events.
const (
	OnErrorSkip  = "skip"
	OnErrorAbort = "abort"
)

// Config represents the run configuration.
type Config struct {
	// Playee device endpoint, host:port of the UIAutomator2 server.
	Device string `yaml:"device"`

	// Recording is the path of the recording file to replay.
	Recording string `yaml:"recording"`

	// OnError decides what an unsupported event does: skip it or abort
	// the run. Defaults to skip.
	OnError string `yaml:"onError"`

	// LookaheadDepth caps how many queued events lookahead scans.
	// Defaults to 3.
	LookaheadDepth int `yaml:"lookaheadDepth"`

	// Script is an optional JavaScript hook file.
	Script string `yaml:"script"`

	// LogFile receives the run log. Empty disables file logging.
	LogFile string `yaml:"logFile"`

	// Verbose enables debug logging.
	Verbose bool `yaml:"verbose"`

	// DryRun replays against the scripted mock device.
	DryRun bool `yaml:"dryRun"`
}

// Default returns the configuration defaults.
func Default() *Config {
	return &Config{
		OnError:        OnErrorSkip,
		LookaheadDepth: 3,
	}
}

// Load loads configuration from a file, applying defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-provided config file
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, core.ErrInvalidConfig.WithCause(err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromDir looks for replay.yaml or replay.yml in the directory.
func LoadFromDir(dir string) (*Config, error) {
	for _, name := range []string{"replay.yaml", "replay.yml"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}
	return Default(), nil
}

// Validate checks field values and fills derived defaults.
func (c *Config) Validate() error {
	switch c.OnError {
	case "":
		c.OnError = OnErrorSkip
	case OnErrorSkip, OnErrorAbort:
	default:
		return core.ErrInvalidConfig.WithMessage("onError must be %q or %q, got %q",
			OnErrorSkip, OnErrorAbort, c.OnError)
	}
	if c.LookaheadDepth < 0 {
		return core.ErrInvalidConfig.WithMessage("lookaheadDepth must not be negative")
	}
	if c.LookaheadDepth == 0 {
		c.LookaheadDepth = 3
	}
	if !c.DryRun && c.Device == "" {
		return core.ErrMissingRequired.WithMessage("device endpoint is required")
	}
	return nil
}
