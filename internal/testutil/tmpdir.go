// Package testutil contains utilities used in tests.
package testutil

import (
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var interestingLengths = []int{10, 50, 100, 240, 250, 260, 270}

// TempDirectory returns a temporary directory with a path of varying length and
// removes it when the test passes. Failed tests leave it behind for inspection.
func TempDirectory(t *testing.T) string {
	t.Helper()

	root, err := os.MkdirTemp("", "syphon-test")
	if err != nil {
		t.Fatalf("unable to create temp directory: %v", err)
	}

	t.Cleanup(func() {
		if !t.Failed() {
			os.RemoveAll(root) //nolint:errcheck
		} else {
			t.Logf("temporary files left in %v", root)
		}
	})

	//nolint:gosec
	targetLen := interestingLengths[rand.IntN(len(interestingLengths))]

	d := root

	// long base directories exercise long manifest paths
	if n := len(d); n < targetLen {
		d = filepath.Join(d, strings.Repeat("f", targetLen-n))

		if err := os.MkdirAll(d, 0o700); err != nil {
			t.Fatalf("unable to create temp directory: %v", err)
		}
	}

	return d
}
