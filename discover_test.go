package webarchiver

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscoverInputs(t *testing.T) {
	t.Parallel()

	in := t.TempDir()
	writeInput(t, in, "b.html", []byte("b"))
	writeInput(t, in, "a.html", []byte("a"))
	writeInput(t, in, filepath.Join("sub", "c.html"), []byte("c"))

	all, root, err := discoverInputs([]string{in}, nil)
	require.NoError(t, err)
	require.Len(t, all, 5) // root dir, two files, sub dir, nested file
	assert.Equal(t, in, root)

	// Lexical order of cleaned paths, directories included.
	var paths []string
	for _, d := range all {
		paths = append(paths, d.path)
	}
	assert.Equal(t, []string{
		in,
		filepath.Join(in, "a.html"),
		filepath.Join(in, "b.html"),
		filepath.Join(in, "sub"),
		filepath.Join(in, "sub", "c.html"),
	}, paths)
}

func TestDiscoverInputsDeduplicates(t *testing.T) {
	t.Parallel()

	in := t.TempDir()
	path := writeInput(t, in, "a.html", []byte("a"))

	// The file matches both the directory walk and its own pattern.
	all, _, err := discoverInputs([]string{in, path}, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestDiscoverInputsExcluded(t *testing.T) {
	t.Parallel()

	in := t.TempDir()
	writeInput(t, in, "keep.html", []byte("k"))
	writeInput(t, in, "drop.html", []byte("d"))

	all, _, err := discoverInputs([]string{in}, []string{"**/drop.html"})
	require.NoError(t, err)
	byName := make(map[string]bool)
	for _, d := range all {
		if !d.dir {
			byName[filepath.Base(d.path)] = d.excluded
		}
	}
	assert.False(t, byName["keep.html"])
	assert.True(t, byName["drop.html"])
}

func TestDiscoverInputsBadExclude(t *testing.T) {
	t.Parallel()

	in := t.TempDir()
	writeInput(t, in, "a.html", []byte("a"))

	_, _, err := discoverInputs([]string{in}, []string{"[unclosed"})
	assert.Error(t, err)
}

func TestCommonRoot(t *testing.T) {
	t.Parallel()

	assert.Equal(t, filepath.FromSlash("/srv/site"), commonRoot([]discovered{
		{path: "/srv/site/index.html"},
		{path: "/srv/site/a/b/page.html"},
	}))
	assert.Equal(t, filepath.FromSlash("/srv"), commonRoot([]discovered{
		{path: "/srv/site", dir: true},
		{path: "/srv/other/page.html"},
	}))
	// A lone file roots at its directory.
	assert.Equal(t, filepath.FromSlash("/srv/site"), commonRoot([]discovered{
		{path: "/srv/site/index.html"},
	}))
	assert.Equal(t, ".", commonRoot(nil))
}

func TestClassify(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ClassText, classify([]byte("<html>plain text</html>")))
	assert.Equal(t, ClassBinary, classify([]byte{'P', 'N', 'G', 0x00, 0x01}))

	// A NUL past the sniff window does not flip the class.
	tail := append(bytes.Repeat([]byte{'a'}, 8000), 0x00)
	assert.Equal(t, ClassText, classify(tail))
}
