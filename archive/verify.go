package archive

import (
	"context"
	"io/fs"
	"strings"

	"github.com/pkg/errors"

	"github.com/syphon-archive/syphon/repo/hashfile"
)

// Status is the outcome of verifying one manifest entry.
type Status int

// Verification outcomes.
const (
	StatusOK Status = iota
	StatusMismatch
	StatusMissing
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusMismatch:
		return "FAILED"
	case StatusMissing:
		return "MISSING"
	default:
		return "UNKNOWN"
	}
}

// VerifyResult describes one verified entry.
type VerifyResult struct {
	Path     string
	Status   Status
	Expected string
	Actual   string
}

// Verify re-hashes every file listed in the manifest and compares it against its recorded digest.
func (a *Archive) Verify(ctx context.Context) ([]VerifyResult, error) {
	entries, err := a.List(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]VerifyResult, 0, len(entries))

	for _, e := range entries {
		r, err := a.verifyOne(ctx, e)
		if err != nil {
			return nil, err
		}

		results = append(results, r)
	}

	return results, nil
}

func (a *Archive) verifyOne(ctx context.Context, e *hashfile.Entry) (VerifyResult, error) {
	expected, err := e.Hash(ctx)
	if err != nil {
		return VerifyResult{}, err
	}

	r := VerifyResult{Path: e.Path, Expected: expected}

	probe, err := a.newEntry(a.resolve(e.Path), e.Binary)
	if err != nil {
		return VerifyResult{}, err
	}

	r.Actual, err = probe.Hash(ctx)

	switch {
	case errors.Is(err, fs.ErrNotExist):
		r.Status = StatusMissing
		log(ctx).Warnf("%v is missing", e.Path)
	case err != nil:
		return VerifyResult{}, err
	case !strings.EqualFold(r.Actual, expected):
		r.Status = StatusMismatch
		log(ctx).Warnf("%v does not match its recorded digest", e.Path)
	default:
		r.Status = StatusOK
	}

	return r, nil
}
