package pipeline

import "errors"

var (
	// ErrCacheCorrupt marks a cache file that exists but cannot be parsed.
	// Stages treat it as a miss and recompute; it never aborts a run.
	ErrCacheCorrupt = errors.New("cache entry corrupt")

	// ErrUnsupportedBackend marks a generation backend tag with no wired
	// implementation. Fatal at startup; there is no silent fallback.
	ErrUnsupportedBackend = errors.New("unsupported generation backend")

	// ErrNoScores is returned when the scoring stage produced no records.
	ErrNoScores = errors.New("no scores computed")
)
