package drawcache

import (
	"errors"
	"fmt"
)

// Sentinel errors for the drawcache package.
var (
	// ErrGlyphTooLarge is returned when a single rasterized glyph cannot
	// fit even an empty atlas at the configured maximum size. This is a
	// configuration error and is not retryable.
	ErrGlyphTooLarge = errors.New("drawcache: glyph larger than maximum atlas size")

	// ErrUnknownFont is returned when a queued glyph references a font id
	// with no registered font source.
	ErrUnknownFont = errors.New("drawcache: unknown font id")
)

// TextureTooSmallError is returned by Cache.CacheQueued when the atlas
// cannot hold all queued glyphs even after evicting every entry not
// requested this pass.
//
// The error is recoverable: grow the backing texture to at least the
// suggested size, call Cache.Resize with the same dimensions, and invoke
// CacheQueued again. The queue is retained across the failure, and entries
// placed before the failure stay valid, so the retry only redoes the work
// for glyphs not yet placed.
type TextureTooSmallError struct {
	// SuggestedWidth and SuggestedHeight are atlas dimensions expected to
	// fit the current queue, already capped at the configured maximum.
	SuggestedWidth  uint32
	SuggestedHeight uint32
}

func (e *TextureTooSmallError) Error() string {
	return fmt.Sprintf("drawcache: texture too small to cache queued glyphs (suggested %dx%d)",
		e.SuggestedWidth, e.SuggestedHeight)
}
