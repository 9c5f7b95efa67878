package cli

import (
	"context"

	"github.com/syphon-archive/syphon/archive"
)

type commandList struct {
	pathsOnly bool

	out textOutput
}

func (c *commandList) setup(svc *App, parent commandParent) {
	cmd := parent.Command("list", "List manifest entries.").Alias("ls")
	cmd.Flag("paths", "Print only the paths").BoolVar(&c.pathsOnly)
	cmd.Action(svc.archiveAction(c.run))
	c.out.setup(svc)
}

func (c *commandList) run(ctx context.Context, a *archive.Archive) error {
	entries, err := a.List(ctx)
	if err != nil {
		return err
	}

	for _, e := range entries {
		if c.pathsOnly {
			c.out.printStdout("%v\n", e.Path)
		} else {
			c.out.printStdout("%v\n", e)
		}
	}

	return nil
}
