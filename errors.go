package webarchiver

import "errors"

var (
	// ErrNoPatterns is returned when the configuration names no input patterns.
	ErrNoPatterns = errors.New("webarchiver: no input patterns")

	// ErrNoFiles is returned when the input patterns match no files.
	ErrNoFiles = errors.New("webarchiver: no files matched")

	// ErrNoTarget is returned when neither an output root nor in-place mode is configured.
	ErrNoTarget = errors.New("webarchiver: no output target")

	// ErrTargetConflict is returned when an output root and in-place mode are both configured.
	ErrTargetConflict = errors.New("webarchiver: output root and in-place mode are mutually exclusive")
)
