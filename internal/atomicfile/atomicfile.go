// Package atomicfile replaces whole files so that readers never observe a partial write.
package atomicfile

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/pkg/errors"
)

// Write replaces filename with the contents of r using a temporary file in the same directory.
func Write(filename string, r io.Reader) error {
	if err := atomic.WriteFile(filename, r); err != nil {
		return errors.Wrapf(err, "unable to write %v", filename)
	}

	return nil
}

// WriteString is Write with string contents.
func WriteString(filename, contents string) error {
	return Write(filename, strings.NewReader(contents))
}

// Exists reports whether filename exists. Errors other than non-existence are returned.
func Exists(filename string) (bool, error) {
	_, err := os.Lstat(filepath.Clean(filename))

	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, errors.Wrapf(err, "unable to stat %v", filename)
	}
}
