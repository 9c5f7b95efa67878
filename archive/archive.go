// Package archive manages the manifest of an archive directory.
package archive

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding"

	"github.com/syphon-archive/syphon/internal/atomicfile"
	"github.com/syphon-archive/syphon/internal/textmode"
	"github.com/syphon-archive/syphon/repo/hashfile"
	"github.com/syphon-archive/syphon/repo/hashing"
	"github.com/syphon-archive/syphon/repo/logging"
)

var log = logging.Module("archive")

// ErrManifestExists is returned when creating a manifest that already exists without Overwrite.
var ErrManifestExists = errors.New("manifest already exists")

// Context describes an archive and how its manifest is maintained.
type Context struct {
	// Archive is the archive root directory.
	Archive string

	// HashType names the manifest hash algorithm; empty selects hashing.DefaultAlgorithm.
	HashType string

	// Overwrite allows CreateManifest to replace an existing manifest.
	Overwrite bool

	// HashFileName is the manifest file name inside Archive; empty selects ".<hashtype>sums".
	HashFileName string

	// Encoding names the text encoding of text-mode files; empty selects UTF-8.
	Encoding string

	// FileLock guards the manifest with an advisory lock file while it is open.
	FileLock bool
}

// Archive gives access to the manifest of an archive.
type Archive struct {
	Context

	enc    encoding.Encoding
	handle *hashfile.Handle
}

// New validates c and returns the Archive it describes.
func New(c Context) (*Archive, error) {
	if c.Archive == "" {
		return nil, errors.New("archive directory is required")
	}

	if c.HashType == "" {
		c.HashType = hashing.DefaultAlgorithm
	}

	canonical, err := hashing.Canonical(c.HashType)
	if err != nil {
		return nil, err
	}

	c.HashType = canonical

	if c.HashFileName == "" {
		c.HashFileName = "." + c.HashType + "sums"
	}

	enc, err := textmode.Lookup(c.Encoding)
	if err != nil {
		return nil, err
	}

	a := &Archive{Context: c, enc: enc}

	a.handle, err = hashfile.NewHandle(a.ManifestPath(), hashfile.HandleOptions{
		HashType: c.HashType,
		Encoding: enc,
		FileLock: c.FileLock,
	})
	if err != nil {
		return nil, err
	}

	return a, nil
}

// ManifestPath returns the full path of the manifest.
func (a *Archive) ManifestPath() string {
	return filepath.Join(a.Archive, a.HashFileName)
}

// Handle returns the manifest handle shared by all operations on a.
func (a *Archive) Handle() *hashfile.Handle {
	return a.handle
}

// CreateManifest writes an empty manifest. An existing manifest is only replaced when Overwrite is set.
func (a *Archive) CreateManifest(ctx context.Context) error {
	p := a.ManifestPath()

	exists, err := atomicfile.Exists(p)
	if err != nil {
		return err
	}

	if exists && !a.Overwrite {
		return errors.Wrap(ErrManifestExists, p)
	}

	if err := atomicfile.WriteString(p, ""); err != nil {
		return err
	}

	log(ctx).Infof("created %v manifest %v", a.HashType, p)

	return nil
}

// List returns all entries of the manifest.
func (a *Archive) List(ctx context.Context) ([]*hashfile.Entry, error) {
	var entries []*hashfile.Entry

	err := a.handle.With(ctx, func(s *hashfile.Stream) error {
		var err error

		entries, err = s.All(ctx)

		return err
	})

	return entries, err
}

// resolve returns the file system path of a manifest path; relative paths are relative to the archive root.
func (a *Archive) resolve(p string) string {
	p = filepath.FromSlash(p)

	if filepath.IsAbs(p) {
		return p
	}

	return filepath.Join(a.Archive, p)
}

// recordedPath returns how p is recorded in the manifest: slash-separated relative to the archive root
// when p is inside it, otherwise absolute.
func (a *Archive) recordedPath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", errors.Wrapf(err, "unable to resolve %v", p)
	}

	root, err := filepath.Abs(a.Archive)
	if err != nil {
		return "", errors.Wrapf(err, "unable to resolve %v", a.Archive)
	}

	rel, err := filepath.Rel(root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(abs), nil //nolint:nilerr
	}

	return filepath.ToSlash(rel), nil
}
