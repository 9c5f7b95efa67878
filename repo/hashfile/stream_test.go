package hashfile_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/syphon-archive/syphon/internal/testlogging"
	"github.com/syphon-archive/syphon/internal/testutil"
	"github.com/syphon-archive/syphon/repo/hashfile"
)

var (
	digestA = strings.Repeat("a", 64)
	digestB = strings.Repeat("b", 64)
	digestC = strings.Repeat("c", 64)
	digestD = strings.Repeat("d", 64)
	digestE = strings.Repeat("e", 64)
)

func openStream(t *testing.T, contents string) (*hashfile.Stream, string) {
	t.Helper()

	p := testutil.WriteFile(t, testutil.TempDirectory(t), "manifest.sha256", contents)

	f, err := os.OpenFile(p, os.O_RDWR, 0)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })

	s, err := hashfile.NewStream(f, "sha256")
	require.NoError(t, err)

	return s, p
}

func entryWithDigest(t *testing.T, path, digest string, opts ...hashfile.EntryOption) *hashfile.Entry {
	t.Helper()

	e, err := hashfile.NewEntry(path, opts...)
	require.NoError(t, err)
	require.NoError(t, e.SetDigest(digest))

	return e
}

type entryView struct {
	Path   string
	Binary bool
	Digest string
}

func viewAll(ctx context.Context, t *testing.T, s *hashfile.Stream) []entryView {
	t.Helper()

	entries, err := s.All(ctx)
	require.NoError(t, err)

	var result []entryView

	for _, e := range entries {
		d, err := e.Hash(ctx)
		require.NoError(t, err)

		result = append(result, entryView{e.Path, e.Binary, d})
	}

	return result
}

func scanFile(ctx context.Context, t *testing.T, path string) []entryView {
	t.Helper()

	h, err := hashfile.NewHandle(path, hashfile.HandleOptions{})
	require.NoError(t, err)

	var result []entryView

	require.NoError(t, h.With(ctx, func(s *hashfile.Stream) error {
		result = viewAll(ctx, t, s)
		return nil
	}))

	return result
}

func TestNewStreamInvalidAlgorithm(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "m")
	require.NoError(t, err)

	defer f.Close()

	_, err = hashfile.NewStream(f, "shaX")
	require.Error(t, err)
}

func TestEntries(t *testing.T) {
	ctx := testlogging.Context(t)
	s, _ := openStream(t, digestA+"  one.txt\n"+digestB+" *two.bin\r\n"+digestC+"  three")

	want := []entryView{
		{"one.txt", false, digestA},
		{"two.bin", true, digestB},
		{"three", false, digestC},
	}

	if diff := cmp.Diff(want, viewAll(ctx, t, s)); diff != "" {
		t.Fatalf("unexpected entries (-want +got):\n%v", diff)
	}

	// iteration is forward-only
	require.Empty(t, viewAll(ctx, t, s))
}

func TestEntriesEarlyBreak(t *testing.T) {
	ctx := testlogging.Context(t)
	first := digestA + "  one\n"
	s, _ := openStream(t, first+digestB+"  two\n")

	for e, err := range s.Entries(ctx) {
		require.NoError(t, err)
		require.Equal(t, "one", e.Path)

		break
	}

	require.Equal(t, int64(len(first)), s.Tell())

	rest := viewAll(ctx, t, s)
	require.Equal(t, []entryView{{"two", false, digestB}}, rest)
}

func TestEntriesMalformedLineAborts(t *testing.T) {
	ctx := testlogging.Context(t)
	s, _ := openStream(t, digestA+"  one\nthis is not an entry\n"+digestB+"  two\n")

	var (
		got  []string
		errs []error
	)

	for e, err := range s.Entries(ctx) {
		if err != nil {
			errs = append(errs, err)
			continue
		}

		got = append(got, e.Path)
	}

	require.Equal(t, []string{"one"}, got)
	require.Len(t, errs, 1)

	var mle *hashfile.MalformedLineError
	require.ErrorAs(t, errs[0], &mle)
	require.Equal(t, "this is not an entry", mle.Line)
}

func TestEntriesEmptyStream(t *testing.T) {
	ctx := testlogging.Context(t)
	s, _ := openStream(t, "")
	require.Empty(t, viewAll(ctx, t, s))
}

func TestEntriesInheritStreamSettings(t *testing.T) {
	ctx := testlogging.Context(t)
	s, _ := openStream(t, "one="+digestA+"\n")

	s.SetSplitFunc(func(line string) (hashfile.SplitResult, bool) {
		path, digest, ok := strings.Cut(strings.TrimSpace(line), "=")
		return hashfile.SplitResult{Path: path, Hash: digest}, ok
	})

	entries, err := s.All(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "one", entries[0].Path)
	require.Equal(t, "sha256", entries[0].HashType())
}

func TestAppendPreservesPosition(t *testing.T) {
	ctx := testlogging.Context(t)
	first := digestA + "  one\n"
	s, p := openStream(t, first+digestB+"  two\n")

	for e, err := range s.Entries(ctx) {
		require.NoError(t, err)
		require.Equal(t, "one", e.Path)

		break
	}

	pos := s.Tell()
	require.Equal(t, int64(len(first)), pos)

	require.NoError(t, s.Append(ctx, entryWithDigest(t, "three", digestC)))
	require.Equal(t, pos, s.Tell())

	// iteration resumes where it stopped and sees the appended entry
	require.Equal(t, []entryView{
		{"two", false, digestB},
		{"three", false, digestC},
	}, viewAll(ctx, t, s))

	require.Equal(t, []entryView{
		{"one", false, digestA},
		{"two", false, digestB},
		{"three", false, digestC},
	}, scanFile(ctx, t, p))
}

func TestAppendComputesDigest(t *testing.T) {
	ctx := testlogging.Context(t)
	s, p := openStream(t, "")

	target := testutil.WriteFile(t, filepath.Dir(p), "data.txt", "line\r\n")

	e, err := hashfile.NewEntry(target)
	require.NoError(t, err)

	require.NoError(t, s.Append(ctx, e))
	require.Equal(t, sha256Hex("line\n")+"  "+target+"\n", testutil.ReadFile(t, p))
}

func TestAppendNewlinePolicy(t *testing.T) {
	ctx := testlogging.Context(t)

	cases := []struct {
		name     string
		initial  string
		expected string
	}{
		{"empty", "", digestC + " *new\n"},
		{"terminated", digestA + "  one\n", digestA + "  one\n" + digestC + " *new\n"},
		{"unterminated", digestA + "  one", digestA + "  one\n" + digestC + " *new\n"},
		{"crlf", digestA + "  one\r\n", digestA + "  one\r\n" + digestC + " *new\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, p := openStream(t, tc.initial)

			require.NoError(t, s.Append(ctx, entryWithDigest(t, "new", digestC, hashfile.WithBinary(true))))
			require.Equal(t, int64(0), s.Tell())
			require.Equal(t, tc.expected, testutil.ReadFile(t, p))
		})
	}
}

func TestUpdateInPlace(t *testing.T) {
	ctx := testlogging.Context(t)
	initial := digestA + "  /path/to/f\n" + digestB + " *other\n" + digestC + "  last\n"
	s, p := openStream(t, initial)

	require.NoError(t, s.Update(ctx, entryWithDigest(t, "/path/to/f", digestD)))
	require.Equal(t, int64(0), s.Tell())

	got := testutil.ReadFile(t, p)
	require.Len(t, got, len(initial))
	require.Equal(t, digestD+"  /path/to/f\n"+digestB+" *other\n"+digestC+"  last\n", got)

	require.NoError(t, s.Update(ctx, entryWithDigest(t, "last", digestE)))
	require.Equal(t, digestD+"  /path/to/f\n"+digestB+" *other\n"+digestE+"  last\n", testutil.ReadFile(t, p))
}

func TestUpdateOnlyFirstMatch(t *testing.T) {
	ctx := testlogging.Context(t)
	s, p := openStream(t, digestA+"  dup\n"+digestB+"  dup\n")

	require.NoError(t, s.Update(ctx, entryWithDigest(t, "dup", digestC)))
	require.Equal(t, digestC+"  dup\n"+digestB+"  dup\n", testutil.ReadFile(t, p))
}

func TestUpdateScansFromStart(t *testing.T) {
	ctx := testlogging.Context(t)
	first := digestA + "  one\n"
	s, p := openStream(t, first+digestB+"  two\n")

	for range s.Entries(ctx) {
		break
	}

	pos := s.Tell()

	require.NoError(t, s.Update(ctx, entryWithDigest(t, "one", digestC)))
	require.Equal(t, pos, s.Tell())
	require.Equal(t, digestC+"  one\n"+digestB+"  two\n", testutil.ReadFile(t, p))

	require.Equal(t, []entryView{{"two", false, digestB}}, viewAll(ctx, t, s))
}

func TestUpdateMissAppends(t *testing.T) {
	ctx := testlogging.Context(t)
	initial := digestA + "  one\n" + digestB + "  two"
	s, p := openStream(t, initial)

	e := entryWithDigest(t, "three", digestC)
	require.NoError(t, s.Update(ctx, e))

	require.Equal(t, initial+"\n"+e.String()+"\n", testutil.ReadFile(t, p))

	// the appended line carries a digest computed by Update itself
	src := testutil.WriteFile(t, testutil.TempDirectory(t), "four", "four")

	computed, err := hashfile.NewEntry(src, hashfile.WithBinary(true))
	require.NoError(t, err)
	require.False(t, computed.IsCached())
	require.NoError(t, s.Update(ctx, computed))

	got := viewAll(ctx, t, s)
	require.Len(t, got, 4)
	require.Equal(t, entryView{src, true, sha256Hex("four")}, got[3])
}

// TestUpdateDigestOffsets updates each entry in turn of a manifest mixing line endings,
// indentation and markers, and compares against the expected text.
func TestUpdateDigestOffsets(t *testing.T) {
	ctx := testlogging.Context(t)

	lines := []struct {
		prefix, digest, rest string
	}{
		{"", digestA, "  plain\n"},
		{"  ", digestB, " *indented\r\n"},
		{"\t", digestC, "\t\tspaced name with " + digestC + "\n"},
		{"", digestD, "  " + digestA + "\n"},
		{"   ", digestE, " *last"},
	}

	paths := []string{"plain", "indented", "spaced name with " + digestC, digestA, "last"}
	newDigest := strings.Repeat("9", 64)

	for i := range lines {
		t.Run(paths[i], func(t *testing.T) {
			var initial, expected strings.Builder

			for j, l := range lines {
				initial.WriteString(l.prefix + l.digest + l.rest)

				if j == i {
					expected.WriteString(l.prefix + newDigest + l.rest)
				} else {
					expected.WriteString(l.prefix + l.digest + l.rest)
				}
			}

			s, p := openStream(t, initial.String())

			require.NoError(t, s.Update(ctx, entryWithDigest(t, paths[i], newDigest)))
			require.Equal(t, expected.String(), testutil.ReadFile(t, p))
		})
	}
}

func TestUpdateDigestLengthGuard(t *testing.T) {
	ctx := testlogging.Context(t)
	initial := "abcd  short\n" + digestA + "  ok\n"
	s, p := openStream(t, initial)

	err := s.Update(ctx, entryWithDigest(t, "short", digestB))
	require.ErrorIs(t, err, hashfile.ErrDigestLength)
	require.Equal(t, initial, testutil.ReadFile(t, p))
	require.Equal(t, int64(0), s.Tell())
}

func TestUpdateMalformedLine(t *testing.T) {
	ctx := testlogging.Context(t)
	initial := digestA + "  one\ngarbage\n"
	s, p := openStream(t, initial)

	var mle *hashfile.MalformedLineError
	require.ErrorAs(t, s.Update(ctx, entryWithDigest(t, "missing", digestB)), &mle)
	require.Equal(t, initial, testutil.ReadFile(t, p))
}

func TestAlgorithmMismatch(t *testing.T) {
	ctx := testlogging.Context(t)
	initial := digestA + "  one\n"
	s, p := openStream(t, initial)

	e := entryWithDigest(t, "one", strings.Repeat("f", 32), hashfile.WithHashType("md5"))

	require.ErrorIs(t, s.Append(ctx, e), hashfile.ErrAlgorithmMismatch)
	require.ErrorIs(t, s.Update(ctx, e), hashfile.ErrAlgorithmMismatch)
	require.Equal(t, initial, testutil.ReadFile(t, p))

	// an entry that cannot be hashed is rejected before writing as well
	missing, err := hashfile.NewEntry(filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)
	require.Error(t, s.Append(ctx, missing))
	require.Error(t, s.Update(ctx, missing))
	require.Equal(t, initial, testutil.ReadFile(t, p))
}

func TestWriteRejectsUnrepresentablePaths(t *testing.T) {
	ctx := testlogging.Context(t)
	initial := digestA + "  one\n" + digestB + " *two"
	s, p := openStream(t, initial)

	for _, tc := range []struct {
		path   string
		binary bool
	}{
		{"a\nb", false},
		{"a\nb", true},
		{"one\r", false},
		{"*x", false},
		{" lead", false},
		{"trail ", true},
	} {
		// the fields may be changed after the entry was created
		e := entryWithDigest(t, "placeholder", digestC)
		e.Path = tc.path
		e.Binary = tc.binary

		require.ErrorIs(t, s.Append(ctx, e), hashfile.ErrInvalidPath, "%q", tc.path)
		require.ErrorIs(t, s.Update(ctx, e), hashfile.ErrInvalidPath, "%q", tc.path)
	}

	require.Equal(t, initial, testutil.ReadFile(t, p))
	require.Len(t, viewAll(ctx, t, s), 2)
}

func TestFind(t *testing.T) {
	ctx := testlogging.Context(t)
	first := digestA + "  one\n"
	s, _ := openStream(t, first+digestB+" *two\n")

	for range s.Entries(ctx) {
		break
	}

	e, err := s.Find(ctx, "two")
	require.NoError(t, err)
	require.True(t, e.Binary)
	require.Equal(t, int64(len(first)), s.Tell())

	_, err = s.Find(ctx, "three")
	require.ErrorIs(t, err, hashfile.ErrEntryNotFound)
	require.Equal(t, int64(len(first)), s.Tell())
}
