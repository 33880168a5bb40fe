package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/replaykit/pkg/config"
	"github.com/devicelab-dev/replaykit/pkg/core"
	"github.com/devicelab-dev/replaykit/pkg/device/mock"
	"github.com/devicelab-dev/replaykit/pkg/device/uia2"
	"github.com/devicelab-dev/replaykit/pkg/event"
	"github.com/devicelab-dev/replaykit/pkg/logger"
	"github.com/devicelab-dev/replaykit/pkg/replay"
	"github.com/devicelab-dev/replaykit/pkg/script"
)

var replayCommand = &cli.Command{
	Name:      "replay",
	Usage:     "Replay a recorded session on a device",
	ArgsUsage: "<recording.yaml>",
	Description: `Replay a recorded session. Flags override values from the config file.

Examples:
  replaykit replay session.yaml --device 127.0.0.1:6790
  replaykit replay session.yaml --on-error abort
  replaykit replay session.yaml --dry-run`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "device",
			Aliases: []string{"d"},
			Usage:   "UIAutomator2 server address (host:port)",
			EnvVars: []string{"REPLAYKIT_DEVICE"},
		},
		&cli.StringFlag{
			Name:  "script",
			Usage: "JavaScript hook file run before each event",
		},
		&cli.StringFlag{
			Name:  "on-error",
			Usage: "Policy for untranslatable events (skip, abort)",
		},
		&cli.IntFlag{
			Name:  "lookahead-depth",
			Usage: "How many upcoming events lookahead may scan",
		},
		&cli.BoolFlag{
			Name:  "dry-run",
			Usage: "Replay against an in-memory device instead of hardware",
		},
	},
	Action: runReplay,
}

func runReplay(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	if cfg.LogFile != "" {
		if err := logger.Init(cfg.LogFile); err != nil {
			return err
		}
		defer logger.Close()
	}
	logger.SetVerbose(cfg.Verbose)

	if cfg.Recording == "" {
		return fmt.Errorf("a recording file is required")
	}
	rec, err := event.ParseFile(cfg.Recording)
	if err != nil {
		return err
	}

	dev, cleanup, err := connect(c.Context, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	opts := replay.Options{
		OnError:        cfg.OnError,
		LookaheadDepth: cfg.LookaheadDepth,
	}
	if cfg.Script != "" {
		src, err := os.ReadFile(cfg.Script) //#nosec G304 -- user-provided hook script
		if err != nil {
			return err
		}
		hook := script.New()
		if err := hook.Load(string(src)); err != nil {
			return err
		}
		opts.Hook = hook
	}

	res, err := replay.New(dev, opts).Run(c.Context, rec)
	if res != nil {
		fmt.Printf("Replayed %d events: %d direct, %d synthesized, %d fallback, %d skipped\n",
			res.Total, res.Direct, res.Synthesized, res.Fallback, res.Skipped)
	}
	return err
}

// loadConfig loads the config file and applies flag overrides on top.
func loadConfig(c *cli.Context) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if path := c.String("config"); path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadFromDir(".")
	}
	if err != nil {
		return nil, err
	}

	if v := c.String("device"); v != "" {
		cfg.Device = v
	}
	if v := c.Args().First(); v != "" {
		cfg.Recording = v
	}
	if v := c.String("script"); v != "" {
		cfg.Script = v
	}
	if v := c.String("on-error"); v != "" {
		cfg.OnError = v
	}
	if c.IsSet("lookahead-depth") {
		cfg.LookaheadDepth = c.Int("lookahead-depth")
	}
	if c.Bool("dry-run") {
		cfg.DryRun = true
	}
	if v := c.String("log-file"); v != "" {
		cfg.LogFile = v
	}
	if c.Bool("verbose") {
		cfg.Verbose = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// connect opens the playee device the run replays against.
func connect(ctx context.Context, cfg *config.Config) (core.Device, func(), error) {
	if cfg.DryRun {
		return mock.New(mock.Config{}), func() {}, nil
	}
	client := uia2.New(cfg.Device)
	if err := client.CreateSession(ctx, uia2.Capabilities{}); err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := client.Close(context.Background()); err != nil {
			logger.Warn("close session: %v", err)
		}
	}
	return client, cleanup, nil
}
