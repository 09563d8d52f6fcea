package webarchiver

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar"
)

// discovered is one path produced by pattern expansion, in discovery
// order. Discovery order is the lexical order of cleaned paths; every
// later stage depends on it staying stable.
type discovered struct {
	path     string
	dir      bool
	excluded bool
}

// discoverInputs expands the input patterns, walks matched directories,
// applies the exclusion globs, and returns the ordered path list plus
// the common input root.
func discoverInputs(patterns, exclude []string) ([]discovered, string, error) {
	seen := make(map[string]bool)
	var all []discovered

	add := func(path string, dir bool) error {
		path = filepath.Clean(path)
		if seen[path] {
			return nil
		}
		seen[path] = true
		excluded, err := isExcluded(path, exclude)
		if err != nil {
			return err
		}
		all = append(all, discovered{path: path, dir: dir, excluded: excluded})
		return nil
	}

	for _, pat := range patterns {
		matches, err := doublestar.Glob(pat)
		if err != nil {
			return nil, "", fmt.Errorf("webarchiver: bad pattern %q: %w", pat, err)
		}
		for _, m := range matches {
			info, err := os.Stat(m)
			if err != nil {
				return nil, "", fmt.Errorf("webarchiver: stat %s: %w", m, err)
			}
			if !info.IsDir() {
				if err := add(m, false); err != nil {
					return nil, "", err
				}
				continue
			}
			walkErr := filepath.WalkDir(m, func(p string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				return add(p, d.IsDir())
			})
			if walkErr != nil {
				return nil, "", fmt.Errorf("webarchiver: walk %s: %w", m, walkErr)
			}
		}
	}

	sort.Slice(all, func(i, j int) bool { return all[i].path < all[j].path })
	return all, commonRoot(all), nil
}

// isExcluded reports whether any exclusion glob matches the path.
func isExcluded(path string, exclude []string) (bool, error) {
	slash := filepath.ToSlash(path)
	for _, g := range exclude {
		ok, err := doublestar.Match(g, slash)
		if err != nil {
			return false, fmt.Errorf("webarchiver: bad exclude pattern %q: %w", g, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// commonRoot returns the deepest directory containing every discovered
// path. A lone file's root is its directory.
func commonRoot(all []discovered) string {
	var prefix []string
	first := true
	for _, d := range all {
		dir := d.path
		if !d.dir {
			dir = filepath.Dir(d.path)
		}
		parts := strings.Split(filepath.ToSlash(dir), "/")
		if first {
			prefix = parts
			first = false
			continue
		}
		n := 0
		for n < len(prefix) && n < len(parts) && prefix[n] == parts[n] {
			n++
		}
		prefix = prefix[:n]
	}
	if len(prefix) == 0 {
		return "."
	}
	root := strings.Join(prefix, "/")
	if root == "" {
		root = "/"
	}
	return filepath.FromSlash(root)
}

// classify sniffs content: a file containing a NUL byte in its leading
// window is treated as binary.
func classify(data []byte) Class {
	window := data
	if len(window) > 8000 {
		window = window[:8000]
	}
	if bytes.IndexByte(window, 0) >= 0 {
		return ClassBinary
	}
	return ClassText
}
