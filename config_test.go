package webarchiver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
patterns:
  - site/**
exclude:
  - "**/*.min.js"
output: dist
passes: 3
min_length: 12
sniff_markers:
  - DONOTARCHIVE
no_minify: true
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"site/**"}, cfg.Patterns)
	assert.Equal(t, []string{"**/*.min.js"}, cfg.Exclude)
	assert.Equal(t, "dist", cfg.Output)
	assert.Equal(t, 3, cfg.Passes)
	assert.Equal(t, 12, cfg.MinLength)
	assert.Equal(t, []string{"DONOTARCHIVE"}, cfg.SniffMarkers)
	assert.True(t, cfg.NoMinify)
}

func TestLoadConfigErrors(t *testing.T) {
	t.Parallel()

	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("patterns: [unclosed"), 0o644))
	_, err = LoadConfig(bad)
	assert.Error(t, err)
}

func TestConfigDefaults(t *testing.T) {
	t.Parallel()

	var cfg Config
	cfg.applyDefaults()
	assert.Equal(t, DefaultPasses, cfg.Passes)
	assert.Equal(t, DefaultPageCapacity, cfg.PageCapacity)
	assert.Equal(t, DefaultMinLength, cfg.MinLength)
	assert.Equal(t, DefaultTrailingBounds, cfg.TrailingBounds)
	assert.Equal(t, DefaultRefFile, cfg.RefFile)

	// Explicit settings survive.
	cfg = Config{Passes: 5, TrailingBounds: ">"}
	cfg.applyDefaults()
	assert.Equal(t, 5, cfg.Passes)
	assert.Equal(t, ">", cfg.TrailingBounds)
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	base := Config{Patterns: []string{"site/**"}, Output: "dist"}
	base.applyDefaults()
	assert.NoError(t, base.validate())

	neg := base
	neg.Passes = -1
	assert.Error(t, neg.validate())

	cap := base
	cap.PageCapacity = -3
	assert.Error(t, cap.validate())
}
