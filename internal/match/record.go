// Package match finds recurring fragment runs across files and splices
// reference tokens over them.
package match

import (
	"sort"

	"github.com/opencontainers/go-digest"
)

// Record tracks one recurring fragment run.
//
// A record is created the first time a sufficiently long common run is
// observed and is never deleted. Occurrence positions are 0-based
// fragment offsets as observed at comparison time; later replacements
// shift fragment sequences, so appliers re-scan current fragments
// rather than trusting stored offsets.
type Record struct {
	// Content is the canonical matched string.
	Content string `cbor:"c"`

	// Occurrences maps a file key to the ordered set of fragment
	// offsets the content was seen at.
	Occurrences map[int][]int `cbor:"o"`

	// ID is the reference identifier. It stays empty until the first
	// accepted replacement and is never reassigned afterwards.
	ID string `cbor:"i,omitempty"`

	// Replacements counts how many runs were spliced with ID.
	Replacements int `cbor:"n,omitempty"`

	// Judged and Allowed memoize the acceptance decision; it is
	// computed once and reused for every file containing the match.
	Judged  bool `cbor:"j,omitempty"`
	Allowed bool `cbor:"a,omitempty"`

	// Total is the number of recorded occurrence positions.
	Total int `cbor:"T,omitempty"`
}

// NewRecord creates an empty record for content.
func NewRecord(content string) Record {
	return Record{Content: content, Occurrences: make(map[int][]int)}
}

// AddOccurrence records that content was observed in file at the given
// fragment offset. Duplicate positions collapse; the per-file set stays
// sorted.
func (r *Record) AddOccurrence(file, offset int) {
	offsets := r.Occurrences[file]
	i := sort.SearchInts(offsets, offset)
	if i < len(offsets) && offsets[i] == offset {
		return
	}
	offsets = append(offsets, 0)
	copy(offsets[i+1:], offsets[i:])
	offsets[i] = offset
	r.Occurrences[file] = offsets
	r.Total++
}

// Files returns the keys of all files referencing the match, in order.
func (r *Record) Files() []int {
	files := make([]int, 0, len(r.Occurrences))
	for f := range r.Occurrences {
		files = append(files, f)
	}
	sort.Ints(files)
	return files
}

// ContentKey returns the canonical index key for a matched string. The
// secondary index stores digests instead of full match content so its
// memory footprint stays flat regardless of match length.
func ContentKey(content string) string {
	return digest.FromString(content).String()
}
