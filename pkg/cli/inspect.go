package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/replaykit/pkg/device/uia2"
	"github.com/devicelab-dev/replaykit/pkg/segment"
	"github.com/devicelab-dev/replaykit/pkg/ui"
)

var inspectCommand = &cli.Command{
	Name:      "inspect",
	Usage:     "Print the segment tree of a screen",
	ArgsUsage: "[hierarchy.xml]",
	Description: `Segment a UI hierarchy and print the resulting tree, for checking how
a screen decomposes before replaying on it. Reads a page-source XML
file, or dumps the current screen of a connected device.

Examples:
  replaykit inspect hierarchy.xml
  replaykit inspect --device 127.0.0.1:6790`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "device",
			Aliases: []string{"d"},
			Usage:   "UIAutomator2 server address (host:port)",
			EnvVars: []string{"REPLAYKIT_DEVICE"},
		},
	},
	Action: runInspect,
}

func runInspect(c *cli.Context) error {
	src, err := inspectSource(c)
	if err != nil {
		return err
	}

	tree, err := ui.Parse(src)
	if err != nil {
		return err
	}
	segs, err := segment.Build(tree)
	if err != nil {
		return err
	}

	printSegment(segs, segs.Root, 0)
	fmt.Printf("%d segments, %d accepted\n", segs.Len(), len(segs.Final))
	return nil
}

func inspectSource(c *cli.Context) (string, error) {
	if path := c.Args().First(); path != "" {
		data, err := os.ReadFile(path) //#nosec G304 -- user-provided hierarchy file
		if err != nil {
			return "", err
		}
		return string(data), nil
	}

	addr := c.String("device")
	if addr == "" {
		return "", fmt.Errorf("a hierarchy file or --device is required")
	}
	client := uia2.New(addr)
	if err := client.CreateSession(c.Context, uia2.Capabilities{}); err != nil {
		return "", err
	}
	defer client.Close(context.Background())
	return client.PageSource(c.Context)
}

func printSegment(t *segment.Tree, id segment.ID, depth int) {
	seg := t.Get(id)
	status := "split"
	if seg.Accepted {
		status = "leaf"
	}
	fmt.Printf("%s#%d %s [%d,%d %dx%d] level=%d%s\n",
		strings.Repeat("  ", depth), id, status,
		seg.Bounds.X, seg.Bounds.Y, seg.Bounds.Width, seg.Bounds.Height,
		seg.Level, segmentLabel(seg))
	for _, child := range t.Children(id) {
		printSegment(t, child, depth+1)
	}
}

// segmentLabel picks a short human hint for the segment, first text wins.
func segmentLabel(seg *segment.Segment) string {
	for _, r := range seg.Roots {
		if txt := r.FirstText(); txt != "" {
			return fmt.Sprintf(" %q", txt)
		}
	}
	for _, r := range seg.Roots {
		if e := r.ResourceEntry(); e != "" {
			return " id/" + e
		}
	}
	return ""
}
