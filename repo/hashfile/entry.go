// Package hashfile reads and updates manifest files listing the content hashes of files.
//
// A manifest holds one entry per line in the layout used by sha256sum and friends:
//
//	<hex digest> <path>     file hashed as text
//	<hex digest> *<path>    file hashed as raw bytes
//
// Entries are updated in place; all digests in one manifest share a hash algorithm,
// so rewriting a digest never moves the bytes that follow it.
package hashfile

import (
	"context"
	"os"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding"

	"github.com/syphon-archive/syphon/internal/textmode"
	"github.com/syphon-archive/syphon/repo/hashing"
	"github.com/syphon-archive/syphon/repo/logging"
)

var log = logging.Module("hashfile")

const (
	binaryMarker = "*"
	textMarker   = " "
)

// hashState is either uncomputed (empty digest) or a digest computed with the named algorithm.
type hashState struct {
	digest    string
	algorithm string
}

// Entry is a single manifest entry. Its digest is computed from the file at Path
// on first use and cached from then on.
type Entry struct {
	// Path is the target of the hash operation.
	Path string

	// Binary selects hashing the raw bytes of Path instead of its text-mode content.
	Binary bool

	hashType string
	encoding encoding.Encoding
	cached   hashState

	// only set for entries parsed from a manifest
	raw string
}

// EntryOption customizes a new Entry.
type EntryOption func(e *Entry)

// WithBinary sets whether the target file is hashed in binary mode.
func WithBinary(binary bool) EntryOption {
	return func(e *Entry) {
		e.Binary = binary
	}
}

// WithHashType selects the hash algorithm. An empty name selects the default.
func WithHashType(name string) EntryOption {
	return func(e *Entry) {
		e.hashType = name
	}
}

// WithEncoding sets the text encoding used when hashing in text mode. Nil means UTF-8.
func WithEncoding(enc encoding.Encoding) EntryOption {
	return func(e *Entry) {
		e.encoding = enc
	}
}

// NewEntry returns an entry for the given path. The hash is not computed until requested.
// Paths that a manifest line cannot hold unchanged fail with ErrInvalidPath.
func NewEntry(path string, opts ...EntryOption) (*Entry, error) {
	e := &Entry{Path: path}

	for _, o := range opts {
		o(e)
	}

	if e.hashType == "" {
		e.hashType = hashing.DefaultAlgorithm
	}

	canonical, err := hashing.Canonical(e.hashType)
	if err != nil {
		return nil, err
	}

	e.hashType = canonical

	if err := checkPath(e.Path, e.Binary); err != nil {
		return nil, err
	}

	return e, nil
}

// HashType returns the canonical name of the entry's hash algorithm.
func (e *Entry) HashType() string {
	return e.hashType
}

// SetHashType changes the hash algorithm. Changing to a different algorithm discards the cached digest.
func (e *Entry) SetHashType(name string) error {
	canonical, err := hashing.Canonical(name)
	if err != nil {
		return err
	}

	if canonical == e.hashType {
		return nil
	}

	e.hashType = canonical
	e.cached = hashState{}

	return nil
}

// IsCached reports whether a digest for the current hash type is available without reading the file.
func (e *Entry) IsCached() bool {
	return e.cached.digest != "" && e.cached.algorithm == e.hashType
}

// Reset discards the cached digest so the next Hash call reads the file again.
func (e *Entry) Reset() {
	e.cached = hashState{}
}

// SetDigest supplies the digest for the current hash type.
func (e *Entry) SetDigest(digest string) error {
	digest = strings.ToLower(digest)

	if !hashing.IsHexDigest(e.hashType, digest) {
		return errors.Wrapf(ErrInvalidDigest, "%q is not a %v digest", digest, e.hashType)
	}

	e.cached = hashState{digest: digest, algorithm: e.hashType}

	return nil
}

// RawLine returns the manifest line the entry was parsed from, or "" for entries created with NewEntry.
func (e *Entry) RawLine() string {
	return e.raw
}

// Hash returns the digest of the file at Path, reading the file only if no digest is cached.
func (e *Entry) Hash(ctx context.Context) (string, error) {
	if e.IsCached() {
		return e.cached.digest, nil
	}

	digest, err := e.compute(ctx)
	if err != nil {
		return "", err
	}

	e.cached = hashState{digest: digest, algorithm: e.hashType}

	return digest, nil
}

func (e *Entry) compute(ctx context.Context) (string, error) {
	f, err := os.Open(e.Path)
	if err != nil {
		return "", errors.Wrap(err, "unable to open file for hashing")
	}
	defer f.Close() //nolint:errcheck

	var digest string

	if e.Binary {
		digest, err = hashing.HexDigest(e.hashType, f)
	} else {
		digest, err = hashing.HexDigest(e.hashType, textmode.NewReader(f, e.encoding))
	}

	if err != nil {
		return "", errors.Wrapf(err, "unable to hash %v", e.Path)
	}

	log(ctx).Debugw("computed digest", "path", e.Path, "hashType", e.hashType, "binary", e.Binary)

	return digest, nil
}

// Line returns the manifest line for the entry without a trailing newline, computing the digest if needed.
func (e *Entry) Line(ctx context.Context) (string, error) {
	if _, err := e.Hash(ctx); err != nil {
		return "", err
	}

	return e.String(), nil
}

// String renders the entry using the cached digest only; an uncomputed digest renders as empty.
func (e *Entry) String() string {
	marker := textMarker
	if e.Binary {
		marker = binaryMarker
	}

	digest := ""
	if e.IsCached() {
		digest = e.cached.digest
	}

	return digest + " " + marker + e.Path
}
