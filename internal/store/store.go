// Package store provides a bounded-memory record collection that spills
// full pages to disk.
//
// A store holds records of one type behind monotonically increasing
// integer keys. Exactly one page of records is resident in memory; when
// an insert would grow the resident page past its capacity, the page is
// flushed to the store's directory and a fresh page becomes resident.
// Lookups that miss the resident page scan forward through the
// remaining pages, wrapping around once. Access is write-dominated and
// follows key order, so the scan almost always hits on the first page
// it loads.
package store

import (
	"errors"
	"fmt"
	"sort"

	"github.com/klauspost/compress/zstd"
)

// Store is a paged collection of records keyed by integer.
//
// Store is not safe for concurrent use; the archiver runs a single
// sequential pass loop by design.
type Store[T any] struct {
	dir      string
	name     string
	capacity int

	enc *zstd.Encoder
	dec *zstd.Decoder

	resident     map[int]T
	residentPage int
	pageCount    int
	nextKey      int
	dirty        bool

	indexFn func(T) string
	index   map[string]int
}

// Option configures a store.
type Option[T any] func(*Store[T])

// WithIndex installs a secondary index. The function maps a record to
// its index key; ReadByIndex resolves such a key back to the record.
// The index is maintained on every insert and update.
func WithIndex[T any](fn func(T) string) Option[T] {
	return func(s *Store[T]) {
		s.indexFn = fn
		s.index = make(map[string]int)
	}
}

// New creates a store that spills pages of up to capacity records into
// dir. The name distinguishes this store's page files from others
// sharing the directory.
func New[T any](dir, name string, capacity int, opts ...Option[T]) (*Store[T], error) {
	if dir == "" {
		return nil, errors.New("store: dir is empty")
	}
	if capacity < 1 {
		return nil, errors.New("store: page capacity must be >= 1")
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1), zstd.WithLowerEncoderMem(true))
	if err != nil {
		return nil, fmt.Errorf("store: create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("store: create zstd decoder: %w", err)
	}
	s := &Store[T]{
		dir:      dir,
		name:     name,
		capacity: capacity,
		enc:      enc,
		dec:      dec,
		resident: make(map[int]T),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Len returns the number of records ever inserted.
func (s *Store[T]) Len() int { return s.nextKey }

// Insert stores v under the next auto-allocated key and returns it.
func (s *Store[T]) Insert(v T) (int, error) {
	key := s.nextKey
	if err := s.navigate(key / s.capacity); err != nil {
		return 0, err
	}
	s.resident[key] = v
	s.nextKey++
	s.dirty = true
	if s.indexFn != nil {
		s.index[s.indexFn(v)] = key
	}
	return key, nil
}

// Update replaces the record under key. A key that does not exist yet
// falls back to an insert at that key.
func (s *Store[T]) Update(key int, v T) error {
	if _, ok := s.resident[key]; !ok {
		if _, found, err := s.Read(key); err != nil {
			return err
		} else if !found {
			// Fall back to insert.
			if err := s.navigate(key / s.capacity); err != nil {
				return err
			}
			if key >= s.nextKey {
				s.nextKey = key + 1
			}
		}
	}
	s.resident[key] = v
	s.dirty = true
	if s.indexFn != nil {
		s.index[s.indexFn(v)] = key
	}
	return nil
}

// Read returns the record under key. A miss on the resident page scans
// forward through the remaining pages, wrapping once. A key that is
// nowhere in the collection returns found == false with no error.
func (s *Store[T]) Read(key int) (T, bool, error) {
	if v, ok := s.resident[key]; ok {
		return v, true, nil
	}
	var zero T
	start := s.residentPage
	for off := 1; off < s.pageCountTotal(); off++ {
		p := (start + off) % s.pageCountTotal()
		if err := s.navigate(p); err != nil {
			return zero, false, err
		}
		if v, ok := s.resident[key]; ok {
			return v, true, nil
		}
	}
	return zero, false, nil
}

// ReadByIndex resolves a secondary-index key to its record.
func (s *Store[T]) ReadByIndex(indexKey string) (int, T, bool, error) {
	var zero T
	if s.indexFn == nil {
		return 0, zero, false, errors.New("store: no index configured")
	}
	key, ok := s.index[indexKey]
	if !ok {
		return 0, zero, false, nil
	}
	v, found, err := s.Read(key)
	return key, v, found, err
}

// All visits every record in key order across all pages. The resident
// page is flushed first and iteration is terminal: the page resident
// before the call is not restored afterwards.
func (s *Store[T]) All(fn func(key int, v T) error) error {
	if err := s.flush(); err != nil {
		return err
	}
	for p, n := 0, s.pageCountTotal(); p < n; p++ {
		if err := s.navigate(p); err != nil {
			return err
		}
		keys := make([]int, 0, len(s.resident))
		for k := range s.resident {
			keys = append(keys, k)
		}
		sort.Ints(keys)
		for _, k := range keys {
			if err := fn(k, s.resident[k]); err != nil {
				return err
			}
		}
	}
	return nil
}

// Close flushes the resident page and releases the codec resources.
func (s *Store[T]) Close() error {
	err := s.flush()
	s.enc.Close()
	s.dec.Close()
	return err
}

// pageCountTotal reports the number of page ordinals in use, counting
// the resident page even before its first flush.
func (s *Store[T]) pageCountTotal() int {
	if s.pageCount == 0 {
		return 1
	}
	return s.pageCount
}

// navigate makes page p resident, flushing the current page first when
// it has unsaved changes.
func (s *Store[T]) navigate(p int) error {
	if p >= s.pageCount {
		s.pageCount = p + 1
	}
	if p == s.residentPage {
		return nil
	}
	if err := s.flush(); err != nil {
		return err
	}
	page, err := s.loadPage(p)
	if err != nil {
		return err
	}
	s.resident = page
	s.residentPage = p
	s.dirty = false
	return nil
}
