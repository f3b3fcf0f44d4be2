// Package streamtest provides a conformance test suite for stream handle
// variants.
//
// The suite checks the contracts every handle honours regardless of where its
// buffer lives: the open-mode table, cursor movement, auto-extension,
// truncation, permission errors and text translation.
//
// Example usage:
//
//	func TestPrivate(t *testing.T) {
//	    streamtest.TestSuite(t, func(content, m string, flags stream.Flags, opts ...stream.Option) (*stream.Handle, error) {
//	        return stream.Open("string://"+content, m, flags, opts...)
//	    })
//	}
package streamtest

import (
	"testing"

	"github.com/input-output-hk/catalyst-forge-libs/stringstream/stream"
)

// Opener opens a handle whose buffer holds content before the mode is
// applied.
type Opener func(content, m string, flags stream.Flags, options ...stream.Option) (*stream.Handle, error)

// TestSuite runs all conformance tests against open.
func TestSuite(t *testing.T, open Opener) {
	TestSuiteWithSkip(t, open, nil)
}

// TestSuiteWithSkip runs the conformance tests, skipping the named groups
// (e.g. "Text").
func TestSuiteWithSkip(t *testing.T, open Opener, skipTests []string) {
	shouldSkip := func(name string) bool {
		for _, skip := range skipTests {
			if skip == name {
				return true
			}
		}
		return false
	}

	groups := []struct {
		name string
		fn   func(*testing.T, Opener)
	}{
		{"Modes", TestModes},
		{"Read", TestRead},
		{"Write", TestWrite},
		{"Seek", TestSeek},
		{"Truncate", TestTruncate},
		{"Metadata", TestMetadata},
		{"Close", TestClose},
		{"Text", TestText},
	}

	for _, g := range groups {
		t.Run(g.name, func(t *testing.T) {
			if shouldSkip(g.name) {
				t.Skip("Skipped by variant configuration")
				return
			}
			g.fn(t, open)
		})
	}
}
