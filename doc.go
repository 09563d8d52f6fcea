// Package webarchiver shrinks a static website's text assets by finding
// substrings repeated across the file collection and replacing them with
// short references, resolved back to the original text by a lightweight
// PHP preprocessing step at serve time.
//
// Text files are split into boundary-aligned fragments, recurring
// fragment runs are recorded as matches, and accepted matches are
// spliced out in favor of reference tokens. A shared reference file at
// the output root maps each token back to its canonical string. Files
// without replacements, binaries, and directories pass through
// untouched, so the output tree stays directly browsable.
//
// # Quick Start
//
// Archive a site into a fresh output directory:
//
//	stats, err := webarchiver.Archive(ctx, webarchiver.Config{
//	    Patterns: []string{"site/**"},
//	    Output:   "archived",
//	})
//
// Rewrite a tree in place:
//
//	stats, err := webarchiver.Archive(ctx, webarchiver.Config{
//	    Patterns: []string{"site/**"},
//	    InPlace:  true,
//	})
//
// Processing is deliberately single-threaded: matches are discovered
// and applied in strict file-discovery order, so a run over the same
// inputs always produces bit-for-bit identical output.
package webarchiver
