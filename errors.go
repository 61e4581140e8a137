package redcanvas

import "errors"

// Error taxonomy. Every decode failure wraps exactly one of these
// sentinels, so callers can classify with errors.Is. All of them are
// fatal to the current call; none is retried or worked around.
var (
	// ErrFormat is returned when declared and codec-reported dimensions
	// or types disagree, a format is unsupported, or a required palette
	// is missing.
	ErrFormat = errors.New("redcanvas: format error")

	// ErrCorruptData is returned for out-of-range palette indices,
	// malformed chunk lists, and codec-internal inconsistencies. The
	// failing call leaves the canvas valid for subsequent decodes.
	ErrCorruptData = errors.New("redcanvas: corrupt data")

	// ErrResource is returned when a surface cannot be allocated.
	ErrResource = errors.New("redcanvas: resource failure")

	// ErrCacheCoherency is returned when a from-cache reference names an
	// id with no cached entry. It indicates an upstream protocol
	// violation: every from-cache reference must be preceded in the
	// session by a cache-me image with the same id.
	ErrCacheCoherency = errors.New("redcanvas: cache coherency violation")
)
