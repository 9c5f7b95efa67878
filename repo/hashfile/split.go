package hashfile

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

// SplitResult holds the fields of a manifest line.
type SplitResult struct {
	Hash   string
	Path   string
	Binary bool
}

// SplitFunc splits one manifest line into its fields. It reports false when the
// line is not in the expected format. Implementations must not keep state between calls.
type SplitFunc func(line string) (SplitResult, bool)

var defaultLinePattern = regexp.MustCompile(`^([a-fA-F0-9]+)\s+(.*)$`)

// DefaultSplit parses lines of the form "<hex digest> <path>" and "<hex digest> *<path>",
// the latter marking a file hashed in binary mode.
func DefaultSplit(line string) (SplitResult, bool) {
	m := defaultLinePattern.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return SplitResult{}, false
	}

	path, binary := strings.CutPrefix(m[2], binaryMarker)
	if path == "" {
		return SplitResult{}, false
	}

	return SplitResult{Hash: m[1], Path: path, Binary: binary}, true
}

// checkPath verifies that a line rendered for path parses back to the same path and mode
// under DefaultSplit. Lines are trimmed and the separator consumes leading tabs, form
// feeds and spaces, so those cannot start a text-mode path.
func checkPath(path string, binary bool) error {
	switch {
	case path == "":
		return errors.Wrap(ErrInvalidPath, "empty path")
	case strings.ContainsAny(path, "\n\r"):
		return errors.Wrapf(ErrInvalidPath, "%q contains a line break", path)
	case strings.TrimRightFunc(path, unicode.IsSpace) != path:
		return errors.Wrapf(ErrInvalidPath, "%q ends with whitespace", path)
	case binary:
		return nil
	case strings.ContainsAny(path[:1], " \t\f"):
		return errors.Wrapf(ErrInvalidPath, "%q starts with whitespace in text mode", path)
	case strings.HasPrefix(path, binaryMarker):
		return errors.Wrapf(ErrInvalidPath, "%q starts with %q in text mode", path, binaryMarker)
	}

	return nil
}

// ParseLine creates an Entry from a manifest line. The digest is taken from the
// line as-is and no file is read. A nil split selects DefaultSplit and an empty
// hashType selects the default algorithm.
func ParseLine(line string, split SplitFunc, hashType string) (*Entry, error) {
	if split == nil {
		split = DefaultSplit
	}

	res, ok := split(line)
	if !ok {
		return nil, &MalformedLineError{Line: strings.TrimSpace(line)}
	}

	e, err := NewEntry(res.Path, WithBinary(res.Binary), WithHashType(hashType))
	if err != nil {
		return nil, err
	}

	e.cached = hashState{digest: res.Hash, algorithm: e.hashType}
	e.raw = line

	return e, nil
}
