package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

type textOutput struct {
	svc *App
}

func (o *textOutput) setup(svc *App) {
	o.svc = svc
}

func (o *textOutput) stdout() io.Writer {
	return o.svc.stdout()
}

func (o *textOutput) printStdout(msg string, args ...any) {
	fmt.Fprintf(o.stdout(), msg, args...) //nolint:errcheck
}

// colorize applies c only when writing to a terminal.
func (o *textOutput) colorize(c *color.Color, s string) string {
	f, ok := o.stdout().(*os.File)
	if !ok || !(isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return s
	}

	c.EnableColor()

	return c.Sprint(s)
}
