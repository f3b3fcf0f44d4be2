// Package mode interprets fopen-style open-mode tokens.
//
// A token is one of r, r+, w, w+, a, a+, c or c+, optionally decorated with
// any number of 'b' (binary) and 't' (text) markers. The markers are stripped
// before matching; a 't' anywhere in the token requests text translation.
package mode

import (
	"strings"

	"github.com/input-output-hk/catalyst-forge-libs/stringstream/errors"
)

// Mode is a recognised open mode. The zero value is not a valid mode.
type Mode uint8

const (
	_ Mode = iota
	Read
	ReadUpdate
	Write
	WriteUpdate
	Append
	AppendUpdate
	Create
	CreateUpdate
)

var tokens = map[string]Mode{
	"r":  Read,
	"r+": ReadUpdate,
	"w":  Write,
	"w+": WriteUpdate,
	"a":  Append,
	"a+": AppendUpdate,
	"c":  Create,
	"c+": CreateUpdate,
}

// Policy describes what a handle opened in a given mode may do.
type Policy struct {
	Readable bool
	Writable bool
	// Append places the cursor at the end of the buffer on open.
	Append bool
	// Truncate empties the buffer on open.
	Truncate bool
}

var policies = map[Mode]Policy{
	Read:         {Readable: true},
	ReadUpdate:   {Readable: true, Writable: true},
	Write:        {Writable: true, Truncate: true},
	WriteUpdate:  {Readable: true, Writable: true, Truncate: true},
	Append:       {Writable: true, Append: true},
	AppendUpdate: {Readable: true, Writable: true, Append: true},
	Create:       {Writable: true},
	CreateUpdate: {Readable: true, Writable: true},
}

// Parsed is the result of parsing a raw token.
type Parsed struct {
	Mode Mode
	// Text is set when the raw token carried a 't' marker.
	Text bool
}

// Parse interprets a raw mode token. Tokens are case-sensitive.
func Parse(token string) (Parsed, error) {
	stripped := strings.NewReplacer("b", "", "t", "").Replace(token)
	m, ok := tokens[stripped]
	if !ok {
		return Parsed{}, errors.Newf(errors.CodeInvalidMode, "mode %q makes no sense for a string stream", token).
			WithContext("mode", token)
	}
	return Parsed{Mode: m, Text: strings.ContainsRune(token, 't')}, nil
}

// Policy returns the permission table entry for m. An invalid mode yields
// the zero Policy, which permits nothing.
func (m Mode) Policy() Policy {
	return policies[m]
}

// String returns the canonical token for m.
func (m Mode) String() string {
	for tok, mm := range tokens {
		if mm == m {
			return tok
		}
	}
	return "invalid"
}

// InitialCursor returns where the cursor starts for a buffer of the given
// length.
func (p Policy) InitialCursor(length int64) int64 {
	if p.Append {
		return length
	}
	return 0
}
