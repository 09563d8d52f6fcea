package webarchiver

import "github.com/braksator/webarchiver/internal/fragment"

// Class classifies a discovered path.
type Class int

const (
	// ClassText marks a file that participates in matching and replacement.
	ClassText Class = iota
	// ClassBinary marks a file that is byte-copied to the output.
	ClassBinary
	// ClassDir marks a directory that is recreated in the output.
	ClassDir
)

// String returns the class name for logging.
func (c Class) String() string {
	switch c {
	case ClassText:
		return "text"
	case ClassBinary:
		return "binary"
	case ClassDir:
		return "directory"
	default:
		return "unknown"
	}
}

// FileRecord is the bookkeeping entry for one discovered path.
//
// Records are created at discovery, mutated as matches apply across
// passes, and frozen once the output encoder consumes them.
type FileRecord struct {
	// InPath is the path the file was discovered at.
	InPath string `cbor:"in"`

	// Rel is the path relative to the common input root.
	Rel string `cbor:"rel"`

	// OutPath is where the encoded result is written.
	OutPath string `cbor:"out"`

	// Class is the {text, binary, directory} classification.
	Class Class `cbor:"cls"`

	// Skip excludes the file from matching and replacement. Skipped
	// files are still copied to the output byte-identical.
	Skip bool `cbor:"skip,omitempty"`

	// SkipReason records why the file was skipped.
	SkipReason string `cbor:"why,omitempty"`

	// Fragments is the current fragment sequence of a text file. It is
	// rewritten in place as replacements apply.
	Fragments []fragment.Fragment `cbor:"fr,omitempty"`

	// Deduped is set once at least one replacement was spliced in.
	Deduped bool `cbor:"dd,omitempty"`

	// Size is the input size in bytes.
	Size int64 `cbor:"sz,omitempty"`
}

// text reports whether the record takes part in matching.
func (r FileRecord) text() bool {
	return r.Class == ClassText && !r.Skip
}
