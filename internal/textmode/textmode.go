// Package textmode reproduces the bytes of a file as seen when it is read as text:
// decoded with its encoding, line endings translated to "\n", then encoded again.
package textmode

import (
	"bufio"
	"bytes"
	"io"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrUnknownEncoding is returned by Lookup for encoding names x/text does not know.
var ErrUnknownEncoding = errors.New("unknown text encoding")

var (
	bomUTF16LE = []byte{0xff, 0xfe}
	bomUTF16BE = []byte{0xfe, 0xff}
)

// Lookup resolves an encoding name such as "utf-8", "windows-1252" or "utf-16le".
// The empty name selects UTF-8.
func Lookup(name string) (encoding.Encoding, error) {
	if strings.TrimSpace(name) == "" {
		return unicode.UTF8, nil
	}

	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, errors.Wrapf(ErrUnknownEncoding, "%q", name)
	}

	return enc, nil
}

// NewReader returns a reader yielding the text-mode bytes of r.
//
// A UTF-16 byte order mark at the start of r overrides enc. A nil enc means UTF-8,
// which is validated strictly: invalid sequences fail with encoding.ErrInvalidUTF8.
func NewReader(r io.Reader, enc encoding.Encoding) io.Reader {
	br := bufio.NewReader(r)

	if head, _ := br.Peek(len(bomUTF16LE)); len(head) == len(bomUTF16LE) {
		switch {
		case bytes.Equal(head, bomUTF16LE):
			enc = unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM)
		case bytes.Equal(head, bomUTF16BE):
			enc = unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM)
		}
	}

	return transform.NewReader(br, pipeline(enc))
}

func pipeline(enc encoding.Encoding) transform.Transformer {
	if enc == nil || enc == unicode.UTF8 {
		return transform.Chain(encoding.UTF8Validator, Newlines())
	}

	return transform.Chain(enc.NewDecoder(), Newlines(), enc.NewEncoder())
}

// Newlines returns a Transformer translating "\r\n" and lone "\r" to "\n".
func Newlines() transform.Transformer {
	return newlines{}
}

type newlines struct{ transform.NopResetter }

func (newlines) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		if nDst == len(dst) {
			return nDst, nSrc, transform.ErrShortDst
		}

		c := src[nSrc]

		switch {
		case c != '\r':
			dst[nDst] = c
			nSrc++
		case nSrc+1 < len(src):
			dst[nDst] = '\n'
			nSrc++

			if src[nSrc] == '\n' {
				nSrc++
			}
		case atEOF:
			dst[nDst] = '\n'
			nSrc++
		default:
			// a trailing CR may be the first half of CRLF
			return nDst, nSrc, transform.ErrShortSrc
		}

		nDst++
	}

	return nDst, nSrc, nil
}
