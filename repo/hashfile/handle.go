package hashfile

import (
	"context"
	"os"
	"sync"

	"github.com/gofrs/flock"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"golang.org/x/text/encoding"

	"github.com/syphon-archive/syphon/repo/hashing"
)

// LockSuffix is appended to the manifest path to name its lock file.
const LockSuffix = ".lock"

// HandleOptions configures a Handle.
type HandleOptions struct {
	// HashType is the algorithm of all entries; empty selects the default.
	HashType string

	// SplitFunc overrides the line grammar; nil selects DefaultSplit.
	SplitFunc SplitFunc

	// Encoding is passed to entries read from the manifest for text-mode hashing.
	Encoding encoding.Encoding

	// FileLock holds an exclusive advisory lock on <path>.lock while the handle is acquired.
	FileLock bool
}

// Handle provides reference-counted access to the manifest at a path.
//
// The first Acquire opens the file and every nested Acquire returns the same Stream.
// The file is closed when the last acquisition is released.
type Handle struct {
	path string
	opts HandleOptions

	mu       sync.Mutex
	refCount int
	file     *os.File
	lock     *flock.Flock
	stream   *Stream
}

// NewHandle returns a handle for the manifest at path. The file is not opened until Acquire.
func NewHandle(path string, opts HandleOptions) (*Handle, error) {
	if opts.HashType == "" {
		opts.HashType = hashing.DefaultAlgorithm
	}

	canonical, err := hashing.Canonical(opts.HashType)
	if err != nil {
		return nil, err
	}

	opts.HashType = canonical

	return &Handle{path: path, opts: opts}, nil
}

// Path returns the manifest path.
func (h *Handle) Path() string {
	return h.path
}

// HashType returns the canonical hash algorithm of the manifest.
func (h *Handle) HashType() string {
	return h.opts.HashType
}

// IsOpen reports whether the manifest is currently open.
func (h *Handle) IsOpen() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.stream != nil
}

// Acquire returns the stream of the manifest, opening it for reading and writing if this is the outermost acquisition.
func (h *Handle) Acquire(ctx context.Context) (*Stream, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.stream != nil {
		h.refCount++
		return h.stream, nil
	}

	var lock *flock.Flock

	if h.opts.FileLock {
		lock = flock.New(h.path + LockSuffix)

		if err := lock.Lock(); err != nil {
			return nil, errors.Wrapf(err, "unable to lock hash file %v", h.path)
		}
	}

	f, err := os.OpenFile(h.path, os.O_RDWR, 0)
	if err != nil {
		return nil, multierr.Append(errors.Wrap(err, "unable to open hash file"), unlock(lock))
	}

	s, err := NewStream(f, h.opts.HashType)
	if err != nil {
		return nil, multierr.Combine(err, f.Close(), unlock(lock))
	}

	s.SetSplitFunc(h.opts.SplitFunc)
	s.SetEncoding(h.opts.Encoding)

	h.file = f
	h.lock = lock
	h.stream = s
	h.refCount = 1

	log(ctx).Debugf("opened hash file %v", h.path)

	return s, nil
}

// Release ends one acquisition and closes the manifest once none remain.
// Releasing a handle that is not acquired fails with ErrNotAcquired.
func (h *Handle) Release(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.refCount == 0 {
		return errors.Wrap(ErrNotAcquired, h.path)
	}

	h.refCount--
	if h.refCount > 0 {
		return nil
	}

	err := multierr.Append(h.file.Close(), unlock(h.lock))

	h.file = nil
	h.lock = nil
	h.stream = nil

	log(ctx).Debugf("closed hash file %v", h.path)

	return errors.Wrapf(err, "error closing hash file %v", h.path)
}

// With acquires the handle for the duration of fn and releases it on every path out of fn.
func (h *Handle) With(ctx context.Context, fn func(s *Stream) error) (err error) {
	s, err := h.Acquire(ctx)
	if err != nil {
		return err
	}

	defer func() {
		err = multierr.Append(err, h.Release(ctx))
	}()

	return fn(s)
}

func unlock(l *flock.Flock) error {
	if l == nil {
		return nil
	}

	return errors.Wrap(l.Unlock(), "unable to unlock hash file")
}
