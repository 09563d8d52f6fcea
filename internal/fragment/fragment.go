// Package fragment splits text into boundary-aligned substrings.
//
// A fragment is the atomic unit of matching and replacement: runs of
// fragments are compared across files, and matched runs are spliced out
// in favor of a shared reference. Splitting is boundary-aware so that a
// splice never lands inside a delimiter pair.
package fragment

import "strings"

// Fragment is one boundary-aligned substring of a source file.
//
// A literal fragment carries source text. A reference fragment carries
// the identifier of the shared string it was replaced with; its Text is
// the identifier, not source text.
type Fragment struct {
	Text string `cbor:"t"`
	Ref  bool   `cbor:"r,omitempty"`
}

// Lit returns a literal fragment with the given text.
func Lit(text string) Fragment { return Fragment{Text: text} }

// Reference returns a reference fragment for the given identifier.
func Reference(id string) Fragment { return Fragment{Text: id, Ref: true} }

// Split breaks text into non-empty fragments whose concatenation
// reproduces the input exactly.
//
// Each fragment optionally opens with a single character from the
// leading set, continues with a maximal run of characters outside both
// sets, and optionally closes with a single character from the trailing
// set. The sets are given as strings of single-byte characters; they
// should be disjoint. Splitting is deterministic: the same input and
// sets always produce the same sequence.
func Split(text, leading, trailing string) []Fragment {
	if text == "" {
		return nil
	}
	frags := make([]Fragment, 0, 16)
	i := 0
	for i < len(text) {
		start := i
		if strings.IndexByte(leading, text[i]) >= 0 {
			i++
		}
		for i < len(text) && strings.IndexByte(leading, text[i]) < 0 && strings.IndexByte(trailing, text[i]) < 0 {
			i++
		}
		if i < len(text) && strings.IndexByte(trailing, text[i]) >= 0 {
			i++
		}
		frags = append(frags, Fragment{Text: text[start:i]})
	}
	return frags
}

// Concat reassembles the text of a fragment sequence. Reference
// fragments contribute nothing; callers that need the rendered output
// form use the encoder instead.
func Concat(frags []Fragment) string {
	var b strings.Builder
	for _, f := range frags {
		if f.Ref {
			continue
		}
		b.WriteString(f.Text)
	}
	return b.String()
}

// Len returns the total literal text length of a fragment sequence.
func Len(frags []Fragment) int {
	n := 0
	for _, f := range frags {
		if !f.Ref {
			n += len(f.Text)
		}
	}
	return n
}
