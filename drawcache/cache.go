package drawcache

import (
	"image"
	"math"
	"sync/atomic"

	"github.com/gogpu/glyphbrush/font"
	"github.com/gogpu/glyphbrush/internal/parallel"
)

// CacheStats holds cumulative cache counters. All fields are safe to
// read concurrently.
type CacheStats struct {
	// Hits counts queued glyphs already resident at CacheQueued time.
	Hits atomic.Uint64

	// Misses counts queued glyphs that needed rasterization.
	Misses atomic.Uint64

	Atlas AtlasStats
}

// queuedGlyph pairs a request with its quantized key.
type queuedGlyph struct {
	key   glyphKey
	glyph Glyph
}

// Cache is a glyph draw cache backed by a packed alpha atlas.
//
// Usage follows a strict per-pass protocol: QueueGlyph every glyph the
// frame needs, run CacheQueued once, then read placements back with
// RectFor. Queue and population calls must come from one goroutine at a
// time; rasterization inside CacheQueued fans out internally.
type Cache struct {
	config Config

	atlas *atlas

	// Pending requests in arrival order, deduplicated by key.
	queued []queuedGlyph
	inUse  map[glyphKey]struct{}

	// Keys whose outlines produced no coverage. They resolve to "no
	// rect" without error and occupy no atlas space.
	emptyKeys map[glyphKey]struct{}

	pool *parallel.Pool

	stats CacheStats
}

// New creates a draw cache with the given configuration. Zero-value
// fields fall back to defaults.
func New(config Config) *Cache {
	config = config.sanitize()
	c := &Cache{
		config:    config,
		inUse:     make(map[glyphKey]struct{}),
		emptyKeys: make(map[glyphKey]struct{}),
	}
	c.atlas = newAtlas(config.Width, config.Height, &c.stats.Atlas)
	if config.Multithreaded {
		c.pool = parallel.NewPool(config.Workers)
	}
	return c
}

// QueueGlyph records a glyph as required for the current pass. Duplicate
// requests collapsing onto the same cache key are a no-op.
func (c *Cache) QueueGlyph(g Glyph) {
	key := c.config.quantize(g)
	if _, ok := c.inUse[key]; ok {
		return
	}
	c.inUse[key] = struct{}{}
	c.queued = append(c.queued, queuedGlyph{key: key, glyph: g})
}

// CacheQueued resolves every queued glyph into the atlas, rasterizing
// the ones without a live entry and invoking onUpdate for each updated
// pixel region in placement order. Recency advances for every requested
// key, cached or new.
//
// On TextureTooSmallError the queue is retained and placements made
// earlier in the pass stay valid, so the caller can resize and call
// CacheQueued again without re-queueing.
func (c *Cache) CacheQueued(fonts []font.Source, onUpdate func(rect image.Rectangle, pixels []byte)) error {
	pending := c.queued[:0:0]
	for _, q := range c.queued {
		if e, ok := c.atlas.lookup(q.key); ok {
			c.atlas.touch(e)
			c.stats.Hits.Add(1)
			continue
		}
		if _, empty := c.emptyKeys[q.key]; empty {
			c.stats.Hits.Add(1)
			continue
		}
		c.stats.Misses.Add(1)
		pending = append(pending, q)
	}

	if len(pending) > 0 {
		if err := c.populate(fonts, pending, onUpdate); err != nil {
			return err
		}
	}

	c.queued = c.queued[:0]
	clear(c.inUse)
	return nil
}

// RectFor returns the texture and pixel rectangles for a glyph placed
// by an earlier CacheQueued. The second result is false for glyphs that
// are not resident, including glyphs with no visible outline.
func (c *Cache) RectFor(g Glyph) (TexCoords, PixelCoords, bool) {
	key := c.config.quantize(g)
	e, ok := c.atlas.lookup(key)
	if !ok {
		return TexCoords{}, PixelCoords{}, false
	}
	// The entry's bounds are relative to the rounded glyph origin; the
	// sub-pixel remainder is what the key's offset bucket encodes.
	baseX := float32(math.Floor(float64(g.Position.X) + 0.5))
	baseY := float32(math.Floor(float64(g.Position.Y) + 0.5))
	px := PixelCoords{
		MinX: baseX + e.boundsMinX,
		MinY: baseY + e.boundsMinY,
	}
	px.MaxX = px.MinX + float32(e.rect.Dx())
	px.MaxY = px.MinY + float32(e.rect.Dy())
	return c.atlas.texCoords(e.rect), px, true
}

// Resize changes the atlas dimensions. Growth along both axes preserves
// resident entries and their rectangles; shrinking any axis clears the
// cache. The pending queue survives either way.
func (c *Cache) Resize(width, height uint32) {
	if width == c.atlas.width && height == c.atlas.height {
		return
	}
	slogger().Debug("resizing atlas",
		"old_width", c.atlas.width, "old_height", c.atlas.height,
		"width", width, "height", height)
	if width >= c.atlas.width && height >= c.atlas.height {
		old := c.atlas
		grown := newAtlas(width, height, &c.stats.Atlas)
		grown.rows = old.rows
		grown.head = old.head
		grown.tail = old.tail
		grown.entries = old.entries
		for y := uint32(0); y < old.height; y++ {
			copy(grown.pixels[y*width:y*width+old.width], old.pixels[y*old.width:(y+1)*old.width])
		}
		c.atlas = grown
		return
	}
	c.atlas = newAtlas(width, height, &c.stats.Atlas)
}

// Dimensions returns the current atlas size in texels.
func (c *Cache) Dimensions() (width, height uint32) {
	return c.atlas.width, c.atlas.height
}

// Pixels exposes the backing coverage buffer, row-major at the current
// dimensions. The slice is invalidated by Resize.
func (c *Cache) Pixels() []byte {
	return c.atlas.pixels
}

// Clear drops every resident entry and all empty-outline records. The
// pending queue is not affected.
func (c *Cache) Clear() {
	c.atlas.clear()
	clear(c.emptyKeys)
}

// ClearQueue drops pending requests without touching resident entries.
func (c *Cache) ClearQueue() {
	c.queued = c.queued[:0]
	clear(c.inUse)
}

// HasQueued reports whether any requests await a CacheQueued call.
func (c *Cache) HasQueued() bool {
	return len(c.queued) > 0
}

// ScaleTolerance returns the effective scale bucket width.
func (c *Cache) ScaleTolerance() float32 { return c.config.ScaleTolerance }

// PositionTolerance returns the effective sub-pixel bucket width.
func (c *Cache) PositionTolerance() float32 { return c.config.PositionTolerance }

// Stats returns the cache counters.
func (c *Cache) Stats() *CacheStats {
	return &c.stats
}

// Close releases the worker pool. The cache must not be used after.
func (c *Cache) Close() {
	if c.pool != nil {
		c.pool.Close()
		c.pool = nil
	}
}
