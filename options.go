package glyphbrush

import (
	"github.com/gogpu/glyphbrush/drawcache"
	"github.com/gogpu/glyphbrush/font"
	"github.com/gogpu/glyphbrush/layout"
)

// Option configures a Brush during creation.
type Option func(*brushOptions)

type brushOptions struct {
	fonts      []font.Source
	positioner layout.Positioner
	cache      drawcache.Config

	cachePositioning bool
	cacheDrawing     bool
}

func defaultBrushOptions() brushOptions {
	return brushOptions{
		cache:            drawcache.DefaultConfig(),
		cachePositioning: true,
		cacheDrawing:     true,
	}
}

// WithFonts registers font sources. Ids are assigned in argument order,
// continuing after any fonts already registered.
func WithFonts(fonts ...font.Source) Option {
	return func(o *brushOptions) {
		o.fonts = append(o.fonts, fonts...)
	}
}

// WithPositioner sets the layout engine. The default is the built-in
// left-to-right positioner; pass layout.NewGoText for full shaping.
func WithPositioner(p layout.Positioner) Option {
	return func(o *brushOptions) {
		o.positioner = p
	}
}

// WithInitialSize sets the starting atlas dimensions.
func WithInitialSize(width, height uint32) Option {
	return func(o *brushOptions) {
		o.cache.Width = width
		o.cache.Height = height
	}
}

// WithMaxSize caps atlas growth. Resize suggestions never exceed it.
func WithMaxSize(width, height uint32) Option {
	return func(o *brushOptions) {
		o.cache.MaxWidth = width
		o.cache.MaxHeight = height
	}
}

// WithScaleTolerance sets the scale bucket width for glyph cache keys.
// Larger values raise the hit rate and lower rendering fidelity.
func WithScaleTolerance(tolerance float32) Option {
	return func(o *brushOptions) {
		o.cache.ScaleTolerance = tolerance
	}
}

// WithPositionTolerance sets the sub-pixel bucket width for glyph cache
// keys. A value of 1.0 or higher disables sub-pixel glyph variants.
func WithPositionTolerance(tolerance float32) Option {
	return func(o *brushOptions) {
		o.cache.PositionTolerance = tolerance
	}
}

// WithMultithreaded toggles parallel rasterization.
func WithMultithreaded(enabled bool) Option {
	return func(o *brushOptions) {
		o.cache.Multithreaded = enabled
	}
}

// WithWorkers sets the rasterization worker count hint. Zero or
// negative means GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *brushOptions) {
		o.cache.Workers = n
	}
}

// WithCacheGlyphPositioning toggles reuse of positioned glyphs between
// frames. When disabled every queued section is fully re-laid out, which
// helps diagnose incremental-layout artifacts at a performance cost.
func WithCacheGlyphPositioning(enabled bool) Option {
	return func(o *brushOptions) {
		o.cachePositioning = enabled
	}
}

// WithCacheGlyphDrawing toggles reuse of the previous frame's vertex
// buffer. When disabled ProcessQueued always returns BrushDraw with a
// freshly assembled buffer.
func WithCacheGlyphDrawing(enabled bool) Option {
	return func(o *brushOptions) {
		o.cacheDrawing = enabled
	}
}

// WithCacheConfig replaces the whole draw cache configuration at once.
// Later size and tolerance options still apply on top.
func WithCacheConfig(cfg drawcache.Config) Option {
	return func(o *brushOptions) {
		o.cache = cfg
	}
}
