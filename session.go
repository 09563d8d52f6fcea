package webarchiver

import (
	"log/slog"

	"github.com/braksator/webarchiver/internal/match"
	"github.com/braksator/webarchiver/internal/store"
)

// session carries the mutable state of one run: the two record stores,
// the allocator cursor, and the resolved roots. It is threaded through
// every component call; there is no process-wide state.
type session struct {
	cfg      Config
	log      *slog.Logger
	progress ProgressFunc
	minifier Minifier

	files   *store.Store[FileRecord]
	matches *store.Store[match.Record]
	policy  match.Policy

	// current is the next unissued reference identifier. It advances
	// only when a batch of application spends its reservation.
	current string

	inRoot  string
	outRoot string
	stats   Stats
}

// Option configures a run.
type Option func(*session)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *slog.Logger) Option {
	return func(s *session) { s.log = log }
}

// WithProgress installs a progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(s *session) { s.progress = fn }
}

// WithMinifier replaces the built-in minifier collaborator.
func WithMinifier(m Minifier) Option {
	return func(s *session) { s.minifier = m }
}

func (s *session) emit(ev ProgressEvent) {
	if s.progress != nil {
		s.progress(ev)
	}
}
