package cli

import (
	"context"

	"github.com/syphon-archive/syphon/archive"
)

type commandInit struct {
	out textOutput
}

func (c *commandInit) setup(svc *App, parent commandParent) {
	cmd := parent.Command("init", "Create an empty manifest in the archive.")
	cmd.Action(svc.archiveAction(c.run))
	c.out.setup(svc)
}

func (c *commandInit) run(ctx context.Context, a *archive.Archive) error {
	if err := a.CreateManifest(ctx); err != nil {
		return err
	}

	c.out.printStdout("Created %v\n", a.ManifestPath())

	return nil
}
