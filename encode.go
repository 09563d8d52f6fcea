package webarchiver

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/braksator/webarchiver/internal/fragment"
	"github.com/braksator/webarchiver/internal/match"
)

// phpEscaper applies the single-quoted string rules: only backslashes
// and the quote itself are escaped, everything else passes through, so
// the original bytes come back exactly when PHP resolves the output.
var phpEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

func phpEscape(s string) string { return phpEscaper.Replace(s) }

// refInclude builds the include path for a wrapped file: one
// parent-directory step per nesting level under the common root.
func refInclude(rel, refFile string) string {
	depth := strings.Count(filepath.ToSlash(rel), "/")
	return strings.Repeat("../", depth) + refFile
}

// wrapFile renders a deduped file: an inclusion statement pointing at
// the shared reference file, then an output statement concatenating the
// final fragment sequence, then the terminator. Consecutive literal
// fragments merge into one quoted piece, and empty literals are dropped
// so no degenerate ''. artifacts survive around splice boundaries.
func wrapFile(frags []fragment.Fragment, includePath string) string {
	var pieces []string
	var lit strings.Builder
	flush := func() {
		if lit.Len() == 0 {
			return
		}
		pieces = append(pieces, "'"+phpEscape(lit.String())+"'")
		lit.Reset()
	}
	for _, f := range frags {
		if f.Ref {
			flush()
			pieces = append(pieces, "$"+f.Text)
			continue
		}
		lit.WriteString(f.Text)
	}
	flush()
	body := strings.Join(pieces, ".")
	if body == "" {
		body = "''"
	}
	return "<?php include('" + includePath + "');echo " + body + ";?>"
}

// encodeOutputs walks the frozen file records in discovery order and
// writes the output tree, then emits the shared reference file.
func (s *session) encodeOutputs(ctx context.Context) error {
	if err := os.MkdirAll(s.outRoot, 0o755); err != nil {
		return fmt.Errorf("webarchiver: create output root: %w", err)
	}
	done := 0
	total := s.files.Len()
	err := s.files.All(func(_ int, rec FileRecord) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.emitFile(rec); err != nil {
			return err
		}
		done++
		s.emit(ProgressEvent{Stage: StageEncoding, Path: rec.Rel, Done: done, Total: total})
		return nil
	})
	if err != nil {
		return err
	}
	return s.emitRefFile()
}

func (s *session) emitFile(rec FileRecord) error {
	switch {
	case rec.Class == ClassDir:
		return os.MkdirAll(rec.OutPath, 0o755)
	case rec.Class == ClassBinary || rec.Skip:
		return s.copyThrough(rec)
	case rec.Deduped:
		s.stats.Deduped++
		out := wrapFile(rec.Fragments, refInclude(rec.Rel, s.cfg.RefFile))
		return s.writeOut(rec.OutPath, []byte(out))
	default:
		return s.writeOut(rec.OutPath, []byte(fragment.Concat(rec.Fragments)))
	}
}

// copyThrough byte-copies a binary or skipped file. In-place runs leave
// the file untouched.
func (s *session) copyThrough(rec FileRecord) error {
	if rec.OutPath == rec.InPath {
		s.stats.BytesOut += rec.Size
		return nil
	}
	data, err := os.ReadFile(rec.InPath)
	if err != nil {
		return fmt.Errorf("webarchiver: copy %s: %w", rec.InPath, err)
	}
	return s.writeOut(rec.OutPath, data)
}

// emitRefFile writes the shared reference file: the runtime-open marker
// followed by one assignment per match that actually replaced
// something.
func (s *session) emitRefFile() error {
	var b strings.Builder
	b.WriteString("<?php ")
	used := 0
	err := s.matches.All(func(_ int, m match.Record) error {
		if m.Replacements == 0 || m.ID == "" {
			return nil
		}
		b.WriteString("$" + m.ID + "='" + phpEscape(m.Content) + "';")
		used++
		return nil
	})
	if err != nil {
		return err
	}
	if used == 0 {
		return nil
	}
	return s.writeOut(filepath.Join(s.outRoot, s.cfg.RefFile), []byte(b.String()))
}

// writeOut writes an output file through a temp file and rename, so an
// interrupted run never leaves a half-written file behind.
func (s *session) writeOut(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("webarchiver: create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".webarchiver-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	s.stats.BytesOut += int64(len(data))
	return nil
}
