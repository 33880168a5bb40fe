// Package cli provides the command-line interface for replaykit.
package cli

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

// Version is set at build time.
var Version = "dev"

// GlobalFlags are available to all commands.
var GlobalFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Config file (default: ./replay.yaml)",
		EnvVars: []string{"REPLAYKIT_CONFIG"},
	},
	&cli.StringFlag{
		Name:    "log-file",
		Usage:   "Write the run log to this file",
		EnvVars: []string{"REPLAYKIT_LOG"},
	},
	&cli.BoolFlag{
		Name:    "verbose",
		Usage:   "Enable verbose logging",
		EnvVars: []string{"REPLAYKIT_VERBOSE"},
	},
}

// Execute runs the CLI.
func Execute() {
	app := &cli.App{
		Name:    "replaykit",
		Usage:   "Replay recorded mobile UI sessions on differently shaped devices",
		Version: Version,
		Description: `Replaykit takes a session recorded on one device and replays it on
another, translating each event to the target layout instead of
playing back raw coordinates.

Examples:
  replaykit replay session.yaml --device 127.0.0.1:6790
  replaykit replay session.yaml --dry-run
  replaykit inspect hierarchy.xml`,
		Flags: GlobalFlags,
		Commands: []*cli.Command{
			replayCommand,
			inspectCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
