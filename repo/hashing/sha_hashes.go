package hashing

import (
	"crypto/md5"  //nolint:gosec
	"crypto/sha1" //nolint:gosec
	"crypto/sha256"
	"crypto/sha512"

	"golang.org/x/crypto/sha3"
)

func init() {
	Register("md5", md5.New)
	Register("sha1", sha1.New)
	Register("sha224", sha256.New224)
	Register("sha256", sha256.New)
	Register("sha384", sha512.New384)
	Register("sha512", sha512.New)
	Register("sha512_224", sha512.New512_224)
	Register("sha512_256", sha512.New512_256)
	Register("sha3_224", sha3.New224)
	Register("sha3_256", sha3.New256)
	Register("sha3_384", sha3.New384)
	Register("sha3_512", sha3.New512)
}
