package webarchiver

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Defaults applied by Archive for zero-valued options.
const (
	DefaultPasses         = 2
	DefaultPageCapacity   = 64
	DefaultMinLength      = 10
	DefaultTrailingBounds = ">;}\n\t "
	DefaultRefFile        = "webarchiver.php"
)

// Config controls a run. The zero value is completed with defaults; a
// run still needs at least one input pattern and an output target.
type Config struct {
	// Patterns are the input globs. `**` matches across directory
	// levels. A pattern matching a directory archives its whole tree.
	Patterns []string `yaml:"patterns"`

	// Exclude are globs for paths to skip. Excluded files are copied to
	// the output unchanged and contribute nothing to any match.
	Exclude []string `yaml:"exclude"`

	// Output is the root the mirrored output tree is written under.
	Output string `yaml:"output"`

	// InPlace rewrites the input files instead of mirroring them under
	// Output. Exactly one of Output and InPlace must be set.
	InPlace bool `yaml:"in_place"`

	// Passes is the number of matching passes over all files. More
	// passes recover matches hidden by discovery order or by earlier
	// replacements shifting fragment boundaries. Defaults to 2.
	Passes int `yaml:"passes"`

	// PageCapacity bounds the record count per resident store page.
	// Defaults to 64.
	PageCapacity int `yaml:"page_capacity"`

	// LeadingBounds and TrailingBounds are the boundary character sets
	// used to split text into fragments. TrailingBounds defaults to
	// ">;}\n\t "; LeadingBounds defaults to empty.
	LeadingBounds  string `yaml:"leading_bounds"`
	TrailingBounds string `yaml:"trailing_bounds"`

	// MinLength is the shortest run the match finder records, and the
	// fixed acceptance floor when MinSaving is unset. Defaults to 10.
	MinLength int `yaml:"min_length"`

	// MinSaving switches acceptance to an automatic floor: a match must
	// be at least MinSaving bytes longer than its reference token.
	MinSaving int `yaml:"min_saving"`

	// MinOccurrences additionally requires a match to have been seen
	// this many times before it is accepted. Zero disables the check.
	MinOccurrences int `yaml:"min_occurrences"`

	// MaxComparisons caps how many earlier files each file is compared
	// against per pass. Zero means unlimited.
	MaxComparisons int `yaml:"max_comparisons"`

	// SniffMarkers are substrings that exclude a text file from
	// processing when found in its content.
	SniffMarkers []string `yaml:"sniff_markers"`

	// NoDedupe disables matching and replacement, leaving a
	// minify-or-copy run.
	NoDedupe bool `yaml:"no_dedupe"`

	// NoMinify disables the minifier collaborator.
	NoMinify bool `yaml:"no_minify"`

	// RefFile is the name of the shared reference file emitted at the
	// common output root. Defaults to "webarchiver.php".
	RefFile string `yaml:"ref_file"`

	// WorkDir is where store pages spill. Defaults to a fresh temp
	// directory removed when the run ends.
	WorkDir string `yaml:"work_dir"`
}

// LoadConfig reads a YAML config file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("webarchiver: read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("webarchiver: parse config %s: %w", path, err)
	}
	return cfg, nil
}

// applyDefaults fills zero-valued options.
func (c *Config) applyDefaults() {
	if c.Passes == 0 {
		c.Passes = DefaultPasses
	}
	if c.PageCapacity == 0 {
		c.PageCapacity = DefaultPageCapacity
	}
	if c.MinLength == 0 {
		c.MinLength = DefaultMinLength
	}
	if c.TrailingBounds == "" {
		c.TrailingBounds = DefaultTrailingBounds
	}
	if c.RefFile == "" {
		c.RefFile = DefaultRefFile
	}
}

// validate rejects configurations that cannot produce output. All
// validation failures are fatal before any processing starts.
func (c Config) validate() error {
	if len(c.Patterns) == 0 {
		return ErrNoPatterns
	}
	if c.Output == "" && !c.InPlace {
		return ErrNoTarget
	}
	if c.Output != "" && c.InPlace {
		return ErrTargetConflict
	}
	if c.Passes < 1 {
		return fmt.Errorf("webarchiver: passes must be >= 1, got %d", c.Passes)
	}
	if c.PageCapacity < 1 {
		return fmt.Errorf("webarchiver: page capacity must be >= 1, got %d", c.PageCapacity)
	}
	return nil
}
