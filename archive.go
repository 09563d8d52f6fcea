package webarchiver

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/braksator/webarchiver/internal/fragment"
	"github.com/braksator/webarchiver/internal/ident"
	"github.com/braksator/webarchiver/internal/match"
	"github.com/braksator/webarchiver/internal/store"
)

// Archive runs the full pipeline: discover, classify, fragment, match,
// replace, and encode. It returns the run statistics.
//
// Processing is single-threaded and strictly ordered: files are handled
// in discovery order within a pass and passes run back to back, so the
// shortest available identifier always goes to the earliest-discovered
// accepted match. The context is checked between files; there is no
// finer-grained cancellation.
func Archive(ctx context.Context, cfg Config, opts ...Option) (Stats, error) {
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return Stats{}, err
	}

	s := &session{
		cfg:      cfg,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		minifier: markupMinifier{},
		current:  ident.First,
		policy: match.Policy{
			MinLength:      cfg.MinLength,
			MinSaving:      cfg.MinSaving,
			MinOccurrences: cfg.MinOccurrences,
		},
	}
	for _, opt := range opts {
		opt(s)
	}

	paths, root, err := discoverInputs(cfg.Patterns, cfg.Exclude)
	if err != nil {
		return Stats{}, err
	}
	regular := 0
	for _, d := range paths {
		if !d.dir {
			regular++
		}
	}
	if regular == 0 {
		return Stats{}, ErrNoFiles
	}
	s.inRoot = root
	s.outRoot = cfg.Output
	if cfg.InPlace {
		s.outRoot = root
	}

	workDir := cfg.WorkDir
	if workDir == "" {
		workDir, err = os.MkdirTemp("", "webarchiver-*")
		if err != nil {
			return Stats{}, fmt.Errorf("webarchiver: create work dir: %w", err)
		}
		defer os.RemoveAll(workDir)
	}

	s.files, err = store.New[FileRecord](workDir, "files", cfg.PageCapacity)
	if err != nil {
		return Stats{}, err
	}
	defer s.files.Close()
	s.matches, err = store.New(workDir, "matches", cfg.PageCapacity,
		store.WithIndex(func(m match.Record) string { return match.ContentKey(m.Content) }))
	if err != nil {
		return Stats{}, err
	}
	defer s.matches.Close()

	// Pass 0: ingest each file and match it against everything
	// discovered so far, applying replacements as they are found.
	for n, d := range paths {
		if err := ctx.Err(); err != nil {
			return s.stats, err
		}
		rec, err := s.ingest(d)
		if err != nil {
			return s.stats, err
		}
		key, err := s.files.Insert(rec)
		if err != nil {
			return s.stats, err
		}
		s.log.Debug("discovered", "path", d.path, "class", rec.Class.String(), "skip", rec.Skip)
		if rec.text() && !cfg.NoDedupe {
			if err := s.processFile(key); err != nil {
				return s.stats, err
			}
		}
		s.emit(ProgressEvent{Stage: StageDiscovering, Path: rec.Rel, Done: n + 1, Total: len(paths)})
	}

	// Later passes revisit every file: matches discovered after a file
	// was first seen get applied, and replacements that shifted
	// fragment boundaries can expose new common runs. Processing stops
	// at the configured pass count whether or not more passes would
	// still find matches.
	if !cfg.NoDedupe {
		for pass := 1; pass < cfg.Passes; pass++ {
			for key, n := 0, s.files.Len(); key < n; key++ {
				if err := ctx.Err(); err != nil {
					return s.stats, err
				}
				rec, found, err := s.files.Read(key)
				if err != nil {
					return s.stats, err
				}
				if !found || !rec.text() {
					continue
				}
				if err := s.processFile(key); err != nil {
					return s.stats, err
				}
				s.emit(ProgressEvent{Stage: StageMatching, Pass: pass, Path: rec.Rel, Done: key + 1, Total: s.files.Len()})
			}
			s.log.Info("pass complete", "pass", pass, "matches", s.matches.Len(), "replacements", s.stats.Replacements)
		}
	}
	s.stats.Matches = s.matches.Len()

	if err := s.encodeOutputs(ctx); err != nil {
		return s.stats, err
	}
	return s.stats, nil
}

// ingest reads and classifies one discovered path and prepares its
// fragment sequence.
func (s *session) ingest(d discovered) (FileRecord, error) {
	rel, err := filepath.Rel(s.inRoot, d.path)
	if err != nil {
		return FileRecord{}, fmt.Errorf("webarchiver: relativize %s: %w", d.path, err)
	}
	rec := FileRecord{
		InPath:  d.path,
		Rel:     rel,
		OutPath: filepath.Join(s.outRoot, rel),
	}
	if d.dir {
		rec.Class = ClassDir
		s.stats.Dirs++
		return rec, nil
	}

	data, err := os.ReadFile(d.path)
	if err != nil {
		return FileRecord{}, fmt.Errorf("webarchiver: read %s: %w", d.path, err)
	}
	s.stats.Files++
	s.stats.BytesIn += int64(len(data))
	rec.Size = int64(len(data))
	rec.Class = classify(data)
	if rec.Class == ClassBinary {
		s.stats.Binaries++
		return rec, nil
	}
	if d.excluded {
		rec.Skip = true
		rec.SkipReason = "excluded"
		s.stats.Skipped++
		return rec, nil
	}
	text := string(data)
	for _, marker := range s.cfg.SniffMarkers {
		if strings.Contains(text, marker) {
			rec.Skip = true
			rec.SkipReason = "content marker"
			s.stats.Skipped++
			return rec, nil
		}
	}
	if !s.cfg.NoMinify {
		minified, err := s.minifier.Minify(d.path, text)
		if err != nil {
			// Collaborator failure falls back to the original text.
			s.log.Debug("minify failed, keeping original", "path", d.path, "error", err)
		} else {
			text = minified
		}
	}
	if s.cfg.NoDedupe {
		rec.Fragments = []fragment.Fragment{fragment.Lit(text)}
	} else {
		rec.Fragments = fragment.Split(text, s.cfg.LeadingBounds, s.cfg.TrailingBounds)
	}
	return rec, nil
}

// processFile applies every known match to the file, then searches it
// against every earlier file (itself included) for new runs, applying
// each immediately across all files referencing it.
func (s *session) processFile(key int) error {
	for mKey, n := 0, s.matches.Len(); mKey < n; mKey++ {
		m, found, err := s.matches.Read(mKey)
		if err != nil {
			return err
		}
		if !found {
			continue
		}
		if err := s.applyBatch(mKey, &m, []int{key}); err != nil {
			return err
		}
	}

	comparisons := 0
	for prev := 0; prev <= key; prev++ {
		if s.cfg.MaxComparisons > 0 && comparisons >= s.cfg.MaxComparisons {
			break
		}
		prevRec, found, err := s.files.Read(prev)
		if err != nil {
			return err
		}
		if !found || !prevRec.text() {
			continue
		}
		// Re-read the current file each round: earlier batches may have
		// rewritten its fragments.
		cur, found, err := s.files.Read(key)
		if err != nil {
			return err
		}
		if !found || !cur.text() {
			break
		}
		self := prev == key
		a := prevRec.Fragments
		if self {
			a = cur.Fragments
		}
		runs := match.Find(a, cur.Fragments, self, s.cfg.MinLength)
		comparisons++
		for _, f := range runs {
			if err := s.recordAndApply(prev, key, f); err != nil {
				return err
			}
		}
	}
	return nil
}

// recordAndApply looks up or creates the match record for a found run,
// appends the occurrences, and applies the match across every file
// referencing it.
func (s *session) recordAndApply(aKey, bKey int, f match.Found) error {
	mKey, m, ok, err := s.matches.ReadByIndex(match.ContentKey(f.Content))
	if err != nil {
		return err
	}
	if !ok {
		m = match.NewRecord(f.Content)
		mKey, err = s.matches.Insert(m)
		if err != nil {
			return err
		}
	}
	m.AddOccurrence(aKey, f.AOffset)
	m.AddOccurrence(bKey, f.BOffset)
	if err := s.matches.Update(mKey, m); err != nil {
		return err
	}
	return s.applyBatch(mKey, &m, m.Files())
}

// applyBatch applies one match across the given files.
//
// The acceptance decision is judged once and memoized on the record.
// An unassigned match tentatively reserves the current identifier; the
// reservation is spent — and the allocator advanced — only when the
// batch ends with the replacement counter nonzero. Otherwise the
// identifier is released for the next match.
func (s *session) applyBatch(mKey int, m *match.Record, fileKeys []int) error {
	if !s.policy.Allowed(m, s.current) {
		return s.matches.Update(mKey, *m)
	}
	reserved := false
	if m.ID == "" {
		m.ID = s.current
		reserved = true
	}
	for _, fk := range fileKeys {
		rec, found, err := s.files.Read(fk)
		if err != nil {
			return err
		}
		if !found || !rec.text() {
			continue
		}
		frags, n := match.Apply(rec.Fragments, m.Content, m.ID)
		if n == 0 {
			continue
		}
		rec.Fragments = frags
		rec.Deduped = true
		if err := s.files.Update(fk, rec); err != nil {
			return err
		}
		m.Replacements += n
		s.stats.Replacements += n
	}
	if reserved {
		if m.Replacements > 0 {
			s.current = ident.Next(s.current)
		} else {
			m.ID = ""
		}
	}
	return s.matches.Update(mKey, *m)
}
