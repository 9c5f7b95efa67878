package hashfile

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrAlgorithmMismatch is returned when an entry's hash type differs from the hash type of the stream it is written to.
	ErrAlgorithmMismatch = errors.New("hash type mismatch")

	// ErrDigestLength is returned when an in-place update would change the width of a stored digest.
	ErrDigestLength = errors.New("stored digest has a different length")

	// ErrInvalidDigest is returned when a supplied digest is not valid hex of the expected width.
	ErrInvalidDigest = errors.New("invalid digest")

	// ErrEntryNotFound is returned by Find when no entry matches the path.
	ErrEntryNotFound = errors.New("entry not found")

	// ErrInvalidPath is returned for a path that a manifest line cannot represent unchanged.
	ErrInvalidPath = errors.New("path cannot be stored in a hash file")

	// ErrNotAcquired is returned when a Handle is released more times than it was acquired.
	ErrNotAcquired = errors.New("hash file is not acquired")
)

// MalformedLineError reports a manifest line that could not be split into an entry.
type MalformedLineError struct {
	// Line is the offending line with surrounding whitespace removed.
	Line string
}

func (e *MalformedLineError) Error() string {
	return fmt.Sprintf("malformed hash file line: %q", e.Line)
}
