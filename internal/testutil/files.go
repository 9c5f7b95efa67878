package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile creates name under dir with the given contents and returns its full path.
func WriteFile(t *testing.T, dir, name, contents string) string {
	t.Helper()

	p := filepath.Join(dir, name)

	if err := os.MkdirAll(filepath.Dir(p), 0o700); err != nil {
		t.Fatalf("unable to create directory for %v: %v", name, err)
	}

	if err := os.WriteFile(p, []byte(contents), 0o600); err != nil {
		t.Fatalf("unable to write %v: %v", name, err)
	}

	return p
}

// ReadFile returns the contents of the file at path.
func ReadFile(t *testing.T, path string) string {
	t.Helper()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("unable to read %v: %v", path, err)
	}

	return string(b)
}
