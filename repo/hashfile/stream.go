package hashfile

import (
	"bufio"
	"context"
	"io"
	"iter"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding"

	"github.com/syphon-archive/syphon/repo/hashing"
)

// Stream reads and writes entries of an open manifest.
//
// Entries are read forward from the current position. Append and Update leave
// the position where it was before the call, so they may be used in the middle
// of an iteration. A Stream must not be used from multiple goroutines.
type Stream struct {
	f        io.ReadWriteSeeker
	hashType string
	split    SplitFunc
	encoding encoding.Encoding

	// r buffers reads starting at the offset pos had when r was created; nil after any seek or write.
	r   *bufio.Reader
	pos int64
}

// NewStream returns a Stream over f, starting at the current offset of f.
func NewStream(f io.ReadWriteSeeker, hashType string) (*Stream, error) {
	if hashType == "" {
		hashType = hashing.DefaultAlgorithm
	}

	canonical, err := hashing.Canonical(hashType)
	if err != nil {
		return nil, err
	}

	pos, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, errors.Wrap(err, "unable to determine hash file position")
	}

	return &Stream{
		f:        f,
		hashType: canonical,
		split:    DefaultSplit,
		pos:      pos,
	}, nil
}

// HashType returns the hash algorithm shared by all entries of the stream.
func (s *Stream) HashType() string {
	return s.hashType
}

// SetSplitFunc replaces the line grammar used when reading entries. Nil restores DefaultSplit.
func (s *Stream) SetSplitFunc(split SplitFunc) {
	if split == nil {
		split = DefaultSplit
	}

	s.split = split
}

// SetEncoding sets the text encoding given to entries read from the stream.
func (s *Stream) SetEncoding(enc encoding.Encoding) {
	s.encoding = enc
}

// Tell returns the offset of the next byte to be read.
func (s *Stream) Tell() int64 {
	return s.pos
}

func (s *Stream) seek(offset int64) error {
	if _, err := s.f.Seek(offset, io.SeekStart); err != nil {
		return errors.Wrapf(err, "unable to seek hash file to %v", offset)
	}

	s.pos = offset
	s.r = nil

	return nil
}

// restore seeks back to offset, keeping the first error already in *err.
func (s *Stream) restore(offset int64, err *error) {
	if serr := s.seek(offset); serr != nil && *err == nil {
		*err = serr
	}
}

// readLine returns the next line including its terminator, or io.EOF at the end of the stream.
func (s *Stream) readLine() (string, error) {
	if s.r == nil {
		if _, err := s.f.Seek(s.pos, io.SeekStart); err != nil {
			return "", errors.Wrap(err, "unable to seek hash file")
		}

		s.r = bufio.NewReader(s.f)
	}

	line, err := s.r.ReadString('\n')
	s.pos += int64(len(line))

	switch {
	case err == nil:
		return line, nil
	case errors.Is(err, io.EOF) && line != "":
		return line, nil
	case errors.Is(err, io.EOF):
		return "", io.EOF
	default:
		return "", errors.Wrap(err, "unable to read hash file")
	}
}

func (s *Stream) parse(line string) (*Entry, error) {
	e, err := ParseLine(line, s.split, s.hashType)
	if err != nil {
		return nil, err
	}

	e.encoding = s.encoding

	return e, nil
}

// Entries returns an iterator over the entries from the current position to the end of the stream.
// A read or parse failure is yielded once and ends the iteration.
func (s *Stream) Entries(ctx context.Context) iter.Seq2[*Entry, error] {
	return func(yield func(*Entry, error) bool) {
		for {
			line, err := s.readLine()
			if errors.Is(err, io.EOF) {
				return
			}

			if err != nil {
				yield(nil, err)
				return
			}

			e, err := s.parse(line)
			if err != nil {
				log(ctx).Debugf("stopping at malformed line at offset %v", s.pos-int64(len(line)))
				yield(nil, err)

				return
			}

			if !yield(e, nil) {
				return
			}
		}
	}
}

// All reads the remaining entries.
func (s *Stream) All(ctx context.Context) ([]*Entry, error) {
	var result []*Entry

	for e, err := range s.Entries(ctx) {
		if err != nil {
			return nil, err
		}

		result = append(result, e)
	}

	return result, nil
}

// checkEntry verifies that e can be written to the stream. Path and Binary may have
// changed since the entry was created.
func (s *Stream) checkEntry(e *Entry) error {
	if e.HashType() != s.hashType {
		return errors.Wrapf(ErrAlgorithmMismatch, "expected hash type %v, but received %v", s.hashType, e.HashType())
	}

	return checkPath(e.Path, e.Binary)
}

// Find scans the whole stream for the first entry with the given path.
func (s *Stream) Find(ctx context.Context, path string) (found *Entry, err error) {
	defer s.restore(s.pos, &err)

	if err := s.seek(0); err != nil {
		return nil, err
	}

	for e, err := range s.Entries(ctx) {
		if err != nil {
			return nil, err
		}

		if e.Path == path {
			return e, nil
		}
	}

	return nil, errors.Wrapf(ErrEntryNotFound, "%v", path)
}

// Append writes the entry as a new last line, computing its digest if needed.
// A newline is inserted first if the stream does not already end with one.
func (s *Stream) Append(ctx context.Context, e *Entry) (err error) {
	if err := s.checkEntry(e); err != nil {
		return err
	}

	line, err := e.Line(ctx)
	if err != nil {
		return err
	}

	defer s.restore(s.pos, &err)

	return s.appendLine(ctx, line)
}

func (s *Stream) appendLine(ctx context.Context, line string) error {
	s.r = nil

	end, err := s.f.Seek(0, io.SeekEnd)
	if err != nil {
		return errors.Wrap(err, "unable to seek to end of hash file")
	}

	var prefix string

	// an empty stream gets no leading blank line
	if end > 0 {
		if _, err := s.f.Seek(end-1, io.SeekStart); err != nil {
			return errors.Wrap(err, "unable to seek hash file")
		}

		var last [1]byte
		if _, err := io.ReadFull(s.f, last[:]); err != nil {
			return errors.Wrap(err, "unable to read hash file")
		}

		if last[0] != '\n' {
			prefix = "\n"
		}

		if _, err := s.f.Seek(end, io.SeekStart); err != nil {
			return errors.Wrap(err, "unable to seek to end of hash file")
		}
	}

	if _, err := io.WriteString(s.f, prefix+line+"\n"); err != nil {
		return errors.Wrap(err, "unable to append to hash file")
	}

	log(ctx).Debugw("appended entry", "offset", end, "newlineInserted", prefix != "")

	return nil
}

// Update overwrites the digest of the first entry with the same path, or appends the
// entry if no such entry exists. Only the digest bytes are rewritten.
func (s *Stream) Update(ctx context.Context, e *Entry) (err error) {
	if err := s.checkEntry(e); err != nil {
		return err
	}

	digest, err := e.Hash(ctx)
	if err != nil {
		return err
	}

	defer s.restore(s.pos, &err)

	offset, found, err := s.locateDigest(ctx, e.Path, len(digest))
	if err != nil {
		return err
	}

	if !found {
		return s.appendLine(ctx, e.String())
	}

	s.r = nil

	if _, err := s.f.Seek(offset, io.SeekStart); err != nil {
		return errors.Wrap(err, "unable to seek hash file")
	}

	if _, err := io.WriteString(s.f, digest); err != nil {
		return errors.Wrap(err, "unable to update hash file")
	}

	log(ctx).Debugw("updated entry in place", "path", e.Path, "offset", offset)

	return nil
}

// locateDigest scans from the start of the stream for path and returns the offset of the first byte
// of its stored digest.
func (s *Stream) locateDigest(ctx context.Context, path string, width int) (offset int64, found bool, err error) {
	if err := s.seek(0); err != nil {
		return 0, false, err
	}

	for {
		start := s.pos

		line, err := s.readLine()
		if errors.Is(err, io.EOF) {
			return 0, false, nil
		}

		if err != nil {
			return 0, false, err
		}

		stored, err := s.parse(line)
		if err != nil {
			return 0, false, err
		}

		if stored.Path != path {
			continue
		}

		digest := stored.cached.digest

		if len(digest) != width {
			return 0, false, errors.Wrapf(ErrDigestLength, "%v has a %v-character digest, new digest has %v", path, len(digest), width)
		}

		idx := strings.Index(line, digest)
		if idx < 0 {
			return 0, false, errors.Errorf("digest of %v does not appear in its line %q", path, strings.TrimSpace(line))
		}

		log(ctx).Debugf("found %v at offset %v", path, start)

		return start + int64(idx), true, nil
	}
}
