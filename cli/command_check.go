package cli

import (
	"context"

	"github.com/fatih/color"
	"github.com/pkg/errors"

	"github.com/syphon-archive/syphon/archive"
)

var (
	okColor     = color.New(color.FgGreen)
	failedColor = color.New(color.FgRed, color.Bold)
)

type commandCheck struct {
	quiet bool

	out textOutput
}

func (c *commandCheck) setup(svc *App, parent commandParent) {
	cmd := parent.Command("check", "Verify files against the manifest.").Alias("verify")
	cmd.Flag("quiet", "Do not print OK for each successfully verified file").Short('q').BoolVar(&c.quiet)
	cmd.Action(svc.archiveAction(c.run))
	c.out.setup(svc)
}

func (c *commandCheck) run(ctx context.Context, a *archive.Archive) error {
	results, err := a.Verify(ctx)
	if err != nil {
		return err
	}

	var failed int

	for _, r := range results {
		if r.Status == archive.StatusOK {
			if !c.quiet {
				c.out.printStdout("%v: %v\n", r.Path, c.out.colorize(okColor, r.Status.String()))
			}

			continue
		}

		failed++

		c.out.printStdout("%v: %v\n", r.Path, c.out.colorize(failedColor, r.Status.String()))
	}

	if failed > 0 {
		return errors.Errorf("%v of %v files failed verification", failed, len(results))
	}

	return nil
}
