// Package cli implements the syphon command line.
package cli

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kingpin/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap/zapcore"

	"github.com/syphon-archive/syphon/archive"
	"github.com/syphon-archive/syphon/repo/hashing"
	"github.com/syphon-archive/syphon/repo/logging"
)

var log = logging.Module("syphon/cli")

type commandParent interface {
	Command(name, help string) *kingpin.CmdClause
}

// App contains per-invocation flags and state of the syphon CLI.
type App struct {
	archiveDir string
	hashType   string
	hashFile   string
	encoding   string
	overwrite  bool
	fileLock   bool
	logLevel   string
	logFile    string

	initCmd  commandInit
	trackCmd commandTrack
	listCmd  commandList
	checkCmd commandCheck

	stdoutWriter io.Writer
	stderrWriter io.Writer
	rootctx      context.Context //nolint:containedctx
}

// NewApp creates a new instance of App writing to the process standard streams.
func NewApp() *App {
	return &App{
		stdoutWriter: os.Stdout,
		stderrWriter: os.Stderr,
		rootctx:      context.Background(),
	}
}

func (c *App) stdout() io.Writer {
	return c.stdoutWriter
}

func (c *App) stderr() io.Writer {
	return c.stderrWriter
}

// Attach attaches the CLI parser to the application.
func (c *App) Attach(app *kingpin.Application) {
	app.Flag("archive", "Archive directory").Short('a').Envar("SYPHON_ARCHIVE").Default(".").StringVar(&c.archiveDir)
	app.Flag("hash-type", "Manifest hash algorithm, case and dashes ignored ("+strings.Join(hashing.SupportedAlgorithms(), ", ")+")").Default(hashing.DefaultAlgorithm).StringVar(&c.hashType)
	app.Flag("hash-file", "Manifest file name inside the archive (default .<hash-type>sums)").StringVar(&c.hashFile)
	app.Flag("encoding", "Text encoding of files hashed in text mode").StringVar(&c.encoding)
	app.Flag("overwrite", "Replace an existing manifest").BoolVar(&c.overwrite)
	app.Flag("lock", "Hold an advisory lock on the manifest while it is open").BoolVar(&c.fileLock)
	app.Flag("log-level", "Console log level").Default("warn").EnumVar(&c.logLevel, "debug", "info", "warn", "error")
	app.Flag("log-file", "Also append debug logs as JSON to this file").StringVar(&c.logFile)

	c.initCmd.setup(c, app)
	c.trackCmd.setup(c, app)
	c.listCmd.setup(c, app)
	c.checkCmd.setup(c, app)
}

func (c *App) newContext() context.Context {
	level, err := zapcore.ParseLevel(c.logLevel)
	if err != nil {
		level = zapcore.WarnLevel
	}

	return logging.WithLogger(c.rootctx, logging.ToWriterLevel(c.stderr(), level))
}

func (c *App) openArchive() (*archive.Archive, error) {
	a, err := archive.New(archive.Context{
		Archive:      c.archiveDir,
		HashType:     c.hashType,
		Overwrite:    c.overwrite,
		HashFileName: c.hashFile,
		Encoding:     c.encoding,
		FileLock:     c.fileLock,
	})

	return a, errors.Wrap(err, "invalid archive settings")
}

// archiveAction wraps an action that operates on the archive selected by the global flags.
func (c *App) archiveAction(act func(ctx context.Context, a *archive.Archive) error) func(*kingpin.ParseContext) error {
	return func(_ *kingpin.ParseContext) error {
		a, err := c.openArchive()
		if err != nil {
			return err
		}

		ctx := c.newContext()

		if c.logFile != "" {
			f, err := os.OpenFile(c.logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600) //nolint:gosec
			if err != nil {
				return errors.Wrap(err, "unable to open log file")
			}

			defer f.Close() //nolint:errcheck

			ctx = logging.WithAdditionalLogger(ctx, logging.ToJSONWriter(f))
		}

		log(ctx).Debugf("using manifest %v", a.ManifestPath())

		return act(ctx, a)
	}
}
