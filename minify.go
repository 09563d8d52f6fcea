package webarchiver

import (
	"path/filepath"
	"strings"
)

// Minifier reduces a text file before deduplication. It is an external
// collaborator: any error is recovered by falling back to the
// unminified text, and processing continues.
type Minifier interface {
	Minify(path, text string) (string, error)
}

// markupMinifier is the built-in collaborator. It collapses whitespace
// runs in markup and stylesheet files to a single space and leaves
// every other extension untouched.
type markupMinifier struct{}

func (markupMinifier) Minify(path, text string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm", ".css", ".svg":
	default:
		return text, nil
	}
	var b strings.Builder
	b.Grow(len(text))
	inRun := false
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case ' ', '\t', '\r', '\n':
			inRun = true
		default:
			if inRun {
				b.WriteByte(' ')
				inRun = false
			}
			b.WriteByte(text[i])
		}
	}
	if inRun {
		b.WriteByte(' ')
	}
	return b.String(), nil
}
