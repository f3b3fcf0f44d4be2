// Package newline converts bare line feeds to CRLF pairs.
//
// The conversion is a golang.org/x/text transform.Transformer applied to
// whole payloads with Bytes and String.
package newline

import (
	"bytes"

	"golang.org/x/text/transform"
)

type crlf struct {
	prevCR bool
}

// New returns a Transformer that rewrites every '\n' not already preceded by
// '\r' into "\r\n". Existing CRLF pairs are left alone, so applying it twice
// gives the same result as applying it once.
func New() transform.Transformer {
	return &crlf{}
}

func (t *crlf) Reset() {
	t.prevCR = false
}

func (t *crlf) Transform(dst, src []byte, _ bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		c := src[nSrc]
		if c == '\n' && !t.prevCR {
			if nDst+2 > len(dst) {
				return nDst, nSrc, transform.ErrShortDst
			}
			dst[nDst] = '\r'
			dst[nDst+1] = '\n'
			nDst += 2
		} else {
			if nDst+1 > len(dst) {
				return nDst, nSrc, transform.ErrShortDst
			}
			dst[nDst] = c
			nDst++
		}
		t.prevCR = c == '\r'
		nSrc++
	}
	return nDst, nSrc, nil
}

// Bytes returns p with bare line feeds converted. p is returned unchanged
// when it holds no line feed.
func Bytes(p []byte) []byte {
	if bytes.IndexByte(p, '\n') < 0 {
		return p
	}
	out, _, err := transform.Bytes(New(), p)
	if err != nil {
		return p
	}
	return out
}

// String is Bytes for strings.
func String(s string) string {
	return string(Bytes([]byte(s)))
}
