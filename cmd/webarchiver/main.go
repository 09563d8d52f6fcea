// Webarchiver shrinks a static website's text assets by replacing
// substrings repeated across files with short references resolved at
// serve time.
//
// Exit codes:
//
//	0  run completed
//	1  configuration error
//	2  processing error
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"github.com/braksator/webarchiver"
)

func main() {
	os.Exit(run())
}

func run() int {
	flags := pflag.NewFlagSet("webarchiver", pflag.ContinueOnError)
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: webarchiver [flags] <pattern>...\n\n")
		flags.PrintDefaults()
	}

	configPath := flags.String("config", "", "YAML config file; flags override its values")
	output := flags.StringP("output", "o", "", "output root the archived tree is written under")
	inPlace := flags.Bool("in-place", false, "rewrite the input files instead of mirroring them")
	exclude := flags.StringArrayP("exclude", "x", nil, "glob for paths to copy through untouched (repeatable)")
	passes := flags.Int("passes", 0, "number of matching passes")
	pageCapacity := flags.Int("page-capacity", 0, "records per resident store page")
	minLength := flags.Int("min-length", 0, "shortest match the finder records")
	minSaving := flags.Int("min-saving", 0, "required saving per replacement; enables the automatic floor")
	minOccurrences := flags.Int("min-occurrences", 0, "occurrences required before a match is accepted")
	maxComparisons := flags.Int("max-comparisons", 0, "cap on per-file comparisons, 0 for unlimited")
	leadingBounds := flags.String("leading-bounds", "", "fragment leading boundary characters")
	trailingBounds := flags.String("trailing-bounds", "", "fragment trailing boundary characters")
	sniff := flags.StringArray("sniff", nil, "content marker that excludes a file (repeatable)")
	noDedupe := flags.Bool("no-dedupe", false, "disable matching and replacement")
	noMinify := flags.Bool("no-minify", false, "disable the minifier")
	refFile := flags.String("ref-file", "", "name of the shared reference file")
	verbose := flags.BoolP("verbose", "v", false, "log per-file detail and progress")
	quiet := flags.BoolP("quiet", "q", false, "suppress the summary")

	if err := flags.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return 0
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	var cfg webarchiver.Config
	if *configPath != "" {
		var err error
		cfg, err = webarchiver.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
	}
	cfg.Patterns = append(cfg.Patterns, flags.Args()...)
	if flags.Changed("output") {
		cfg.Output = *output
	}
	if flags.Changed("in-place") {
		cfg.InPlace = *inPlace
	}
	if flags.Changed("exclude") {
		cfg.Exclude = append(cfg.Exclude, *exclude...)
	}
	if flags.Changed("passes") {
		cfg.Passes = *passes
	}
	if flags.Changed("page-capacity") {
		cfg.PageCapacity = *pageCapacity
	}
	if flags.Changed("min-length") {
		cfg.MinLength = *minLength
	}
	if flags.Changed("min-saving") {
		cfg.MinSaving = *minSaving
	}
	if flags.Changed("min-occurrences") {
		cfg.MinOccurrences = *minOccurrences
	}
	if flags.Changed("max-comparisons") {
		cfg.MaxComparisons = *maxComparisons
	}
	if flags.Changed("leading-bounds") {
		cfg.LeadingBounds = *leadingBounds
	}
	if flags.Changed("trailing-bounds") {
		cfg.TrailingBounds = *trailingBounds
	}
	if flags.Changed("sniff") {
		cfg.SniffMarkers = append(cfg.SniffMarkers, *sniff...)
	}
	if flags.Changed("no-dedupe") {
		cfg.NoDedupe = *noDedupe
	}
	if flags.Changed("no-minify") {
		cfg.NoMinify = *noMinify
	}
	if flags.Changed("ref-file") {
		cfg.RefFile = *refFile
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	opts := []webarchiver.Option{webarchiver.WithLogger(log)}
	if *verbose {
		opts = append(opts, webarchiver.WithProgress(func(ev webarchiver.ProgressEvent) {
			fmt.Fprintf(os.Stderr, "%s [%d/%d] %s\n", ev.Stage, ev.Done, ev.Total, ev.Path)
		}))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	stats, err := webarchiver.Archive(ctx, cfg, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 2
	}

	if !*quiet {
		fmt.Fprintf(os.Stderr, "%d files (%d skipped, %d binary, %d dirs), %d deduped\n",
			stats.Files, stats.Skipped, stats.Binaries, stats.Dirs, stats.Deduped)
		fmt.Fprintf(os.Stderr, "%d matches, %d replacements\n", stats.Matches, stats.Replacements)
		fmt.Fprintf(os.Stderr, "%s in, %s out\n",
			humanize.Bytes(uint64(stats.BytesIn)), humanize.Bytes(uint64(stats.BytesOut)))
	}
	return 0
}
