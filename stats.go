package webarchiver

// Stats summarizes a completed run.
type Stats struct {
	// Files is the number of regular files discovered.
	Files int

	// Dirs is the number of directories discovered.
	Dirs int

	// Binaries is the number of files classified binary.
	Binaries int

	// Skipped is the number of files excluded by glob or content sniff.
	Skipped int

	// Deduped is the number of files with at least one replacement.
	Deduped int

	// Matches is the number of distinct match records.
	Matches int

	// Replacements is the total number of spliced reference tokens.
	Replacements int

	// BytesIn and BytesOut measure file content read and written.
	BytesIn  int64
	BytesOut int64
}
