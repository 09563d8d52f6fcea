package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// flush writes the resident page to its page file. Pages are encoded as
// deterministic CBOR and zstd-compressed before hitting disk.
func (s *Store[T]) flush() error {
	if !s.dirty {
		return nil
	}
	raw, err := encMode.Marshal(s.resident)
	if err != nil {
		return fmt.Errorf("store: encode page %d: %w", s.residentPage, err)
	}
	compressed := s.enc.EncodeAll(raw, nil)
	if err := writeFileAtomic(s.pagePath(s.residentPage), compressed); err != nil {
		return fmt.Errorf("store: flush page %d: %w", s.residentPage, err)
	}
	s.dirty = false
	return nil
}

// loadPage reads a page file back into memory. A page that was never
// flushed has no file yet; that is recovered as an empty page rather
// than treated as an error.
func (s *Store[T]) loadPage(p int) (map[int]T, error) {
	compressed, err := os.ReadFile(s.pagePath(p))
	if os.IsNotExist(err) {
		return make(map[int]T), nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: load page %d: %w", p, err)
	}
	raw, err := s.dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("store: decompress page %d: %w", p, err)
	}
	page := make(map[int]T)
	if err := decMode.Unmarshal(raw, &page); err != nil {
		return nil, fmt.Errorf("store: decode page %d: %w", p, err)
	}
	return page, nil
}

func (s *Store[T]) pagePath(p int) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s-%04d.page", s.name, p))
}

// writeFileAtomic writes data through a temp file and renames it into
// place, so a crash never leaves a truncated page behind.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "page-*")
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
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}
