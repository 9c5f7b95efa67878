// Package hashing encapsulates the digest algorithms that can be used in manifest files.
package hashing

import (
	"encoding/hex"
	"hash"
	"io"
	"sort"
	"strings"
	"unicode"

	"github.com/pkg/errors"
)

// ErrInvalidAlgorithm is returned when a hash algorithm name is not registered.
var ErrInvalidAlgorithm = errors.New("invalid hash algorithm")

// DefaultAlgorithm is the name of the default hash algorithm.
const DefaultAlgorithm = "sha256"

// HashFactory returns a fresh hash.Hash for a registered algorithm.
type HashFactory func() hash.Hash

type algorithm struct {
	name    string
	factory HashFactory
	size    int
}

var (
	// keyed by canonical name
	hashFunctions = map[string]algorithm{}

	// normalized spelling -> canonical name
	aliases = map[string]string{}
)

// Register registers a hash function with a given canonical name.
func Register(name string, newHash HashFactory) {
	a := algorithm{name, newHash, newHash().Size()}

	hashFunctions[name] = a
	aliases[normalize(name)] = name
}

// normalize folds case and drops separators so that "SHA-256", "sha_256" and "sha256" are the same name.
func normalize(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '-', '_', ' ':
			return -1
		default:
			return unicode.ToLower(r)
		}
	}, name)
}

func lookup(name string) (algorithm, error) {
	if canonical, ok := aliases[normalize(name)]; ok {
		return hashFunctions[canonical], nil
	}

	return algorithm{}, errors.Wrapf(ErrInvalidAlgorithm, "hash type %q", name)
}

// SupportedAlgorithms returns the canonical names of the supported hashing algorithms.
func SupportedAlgorithms() []string {
	var result []string
	for k := range hashFunctions {
		result = append(result, k)
	}

	sort.Strings(result)

	return result
}

// Canonical returns the canonical name of the given algorithm, or ErrInvalidAlgorithm.
func Canonical(name string) (string, error) {
	a, err := lookup(name)
	if err != nil {
		return "", err
	}

	return a.name, nil
}

// New returns a new hash.Hash computing the given algorithm.
func New(name string) (hash.Hash, error) {
	a, err := lookup(name)
	if err != nil {
		return nil, err
	}

	return a.factory(), nil
}

// DigestSize returns the length of a hex-encoded digest of the given algorithm.
func DigestSize(name string) (int, error) {
	a, err := lookup(name)
	if err != nil {
		return 0, err
	}

	return hex.EncodedLen(a.size), nil
}

// HexDigest consumes r and returns its lowercase hex-encoded digest.
func HexDigest(name string, r io.Reader) (string, error) {
	h, err := New(name)
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(h, r); err != nil {
		return "", errors.Wrap(err, "error hashing")
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// IsHexDigest reports whether s is a well-formed digest of the given algorithm.
func IsHexDigest(name, s string) bool {
	n, err := DigestSize(name)
	if err != nil || len(s) != n {
		return false
	}

	_, err = hex.DecodeString(s)

	return err == nil
}
