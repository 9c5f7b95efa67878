package cli

import (
	"context"

	"github.com/syphon-archive/syphon/archive"
)

type commandTrack struct {
	paths  []string
	binary bool

	out textOutput
}

func (c *commandTrack) setup(svc *App, parent commandParent) {
	cmd := parent.Command("track", "Hash files and record them in the manifest.").Alias("add")
	cmd.Flag("binary", "Hash the raw file bytes instead of the text content").Short('b').BoolVar(&c.binary)
	cmd.Arg("paths", "Files to track, relative to the archive").Required().StringsVar(&c.paths)
	cmd.Action(svc.archiveAction(c.run))
	c.out.setup(svc)
}

func (c *commandTrack) run(ctx context.Context, a *archive.Archive) error {
	tracked, err := a.Track(ctx, c.binary, c.paths...)
	if err != nil {
		return err
	}

	for _, e := range tracked {
		c.out.printStdout("%v\n", e)
	}

	return nil
}
