package archive

import (
	"context"

	"github.com/syphon-archive/syphon/repo/hashfile"
)

// Track hashes the given files and records them in the manifest, replacing the digests of
// files already listed. Relative paths are taken relative to the archive root.
func (a *Archive) Track(ctx context.Context, binary bool, paths ...string) ([]*hashfile.Entry, error) {
	var tracked []*hashfile.Entry

	err := a.handle.With(ctx, func(s *hashfile.Stream) error {
		for _, p := range paths {
			e, err := a.trackOne(ctx, s, binary, p)
			if err != nil {
				return err
			}

			tracked = append(tracked, e)
		}

		return nil
	})

	return tracked, err
}

func (a *Archive) trackOne(ctx context.Context, s *hashfile.Stream, binary bool, p string) (*hashfile.Entry, error) {
	source := a.resolve(p)

	recorded, err := a.recordedPath(source)
	if err != nil {
		return nil, err
	}

	e, err := a.newEntry(recorded, binary)
	if err != nil {
		return nil, err
	}

	probe, err := a.newEntry(source, binary)
	if err != nil {
		return nil, err
	}

	digest, err := probe.Hash(ctx)
	if err != nil {
		return nil, err
	}

	if err := e.SetDigest(digest); err != nil {
		return nil, err
	}

	if err := s.Update(ctx, e); err != nil {
		return nil, err
	}

	log(ctx).Debugf("tracked %v", recorded)

	return e, nil
}

func (a *Archive) newEntry(p string, binary bool) (*hashfile.Entry, error) {
	return hashfile.NewEntry(p,
		hashfile.WithBinary(binary),
		hashfile.WithHashType(a.HashType),
		hashfile.WithEncoding(a.enc),
	)
}
