package hashing

import (
	"hash"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/blake2s"
)

// unkeyed returns a HashFactory for a constructor that can only fail on bad keys.
func unkeyed(newHash func(key []byte) (hash.Hash, error)) HashFactory {
	return func() hash.Hash {
		h, err := newHash(nil)
		if err != nil {
			panic("unkeyed hash construction failed: " + err.Error())
		}

		return h
	}
}

func init() {
	Register("blake2b", unkeyed(blake2b.New512))
	Register("blake2b_256", unkeyed(blake2b.New256))
	Register("blake2s", unkeyed(blake2s.New256))
	Register("blake3", func() hash.Hash { return blake3.New() })
}
