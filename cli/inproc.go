package cli

import (
	"bytes"
	"context"

	"github.com/alecthomas/kingpin/v2"
)

// RunSubcommand executes the command line in the current process with output captured
// and returns what was written to standard output and standard error.
func (c *App) RunSubcommand(ctx context.Context, kpapp *kingpin.Application, argsAndFlags []string) (stdout, stderr string, err error) {
	var outBuf, errBuf bytes.Buffer

	c.stdoutWriter = &outBuf
	c.stderrWriter = &errBuf
	c.rootctx = ctx

	c.Attach(kpapp)
	kpapp.Terminate(nil)

	_, err = kpapp.Parse(argsAndFlags)

	return outBuf.String(), errBuf.String(), err
}
