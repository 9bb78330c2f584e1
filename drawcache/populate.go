package drawcache

import (
	"fmt"
	"image"
	"sort"

	"github.com/gogpu/glyphbrush/font"
)

// rasterResult is one completed rasterization task. A nil mask with a
// nil err marks a glyph with no visible outline.
type rasterResult struct {
	key  glyphKey
	mask *image.Alpha

	// Bitmap bounds relative to the rounded glyph origin.
	minX float32
	minY float32

	err error
}

// populate rasterizes pending glyphs and places them into the atlas.
// Rasterization may fan out over the worker pool; placement and pixel
// writes always run on the calling goroutine.
func (c *Cache) populate(fonts []font.Source, pending []queuedGlyph, onUpdate func(rect image.Rectangle, pixels []byte)) error {
	results, err := c.rasterizeAll(fonts, pending)
	if err != nil {
		return err
	}

	placeable := results[:0]
	for _, res := range results {
		if res.mask == nil {
			c.emptyKeys[res.key] = struct{}{}
			continue
		}
		placeable = append(placeable, res)
	}

	// Tallest first keeps row heights tight; ties keep arrival order.
	sort.SliceStable(placeable, func(i, j int) bool {
		return placeable[i].mask.Rect.Dy() > placeable[j].mask.Rect.Dy()
	})

	up := updateCoalescer{atlas: c.atlas, fn: onUpdate}
	for _, res := range placeable {
		w := uint32(res.mask.Rect.Dx())
		h := uint32(res.mask.Rect.Dy())

		e, ok := c.atlas.tryPlace(res.key, w, h, res.minX, res.minY)
		for !ok {
			// Eviction cannot help a glyph exceeding the atlas itself.
			if w > c.atlas.width || h > c.atlas.height || !c.atlas.evictOne(c.inUse) {
				up.flush()
				if w > c.config.MaxWidth || h > c.config.MaxHeight {
					return fmt.Errorf("%w: glyph is %dx%d, atlas limit is %dx%d",
						ErrGlyphTooLarge, w, h, c.config.MaxWidth, c.config.MaxHeight)
				}
				sw, sh := c.suggestSize()
				slogger().Debug("atlas out of space",
					"width", c.atlas.width, "height", c.atlas.height,
					"suggested_width", sw, "suggested_height", sh,
					"pending", len(placeable))
				return &TextureTooSmallError{SuggestedWidth: sw, SuggestedHeight: sh}
			}
			e, ok = c.atlas.tryPlace(res.key, w, h, res.minX, res.minY)
		}

		c.atlas.writePixels(e, res.mask)
		up.add(e.rect)
	}
	up.flush()
	return nil
}

// rasterizeAll produces a coverage buffer per pending glyph. Workers
// write disjoint slots of the results slice and the pool's completion
// barrier publishes them, so the calling goroutine is the sole
// consumer of finished rasterizations, as with a many-producer
// single-consumer channel but without the per-glyph send. The first
// task error aborts the pass before any placement happens.
func (c *Cache) rasterizeAll(fonts []font.Source, pending []queuedGlyph) ([]rasterResult, error) {
	results := make([]rasterResult, len(pending))

	if c.pool == nil || len(pending) < c.config.ParallelThreshold {
		for i, q := range pending {
			results[i] = c.rasterizeOne(fonts, q)
		}
	} else {
		tasks := make([]func(), len(pending))
		for i, q := range pending {
			i, q := i, q
			tasks[i] = func() {
				results[i] = c.rasterizeOne(fonts, q)
			}
		}
		c.pool.ExecuteAll(tasks)
	}

	for _, res := range results {
		if res.err != nil {
			return nil, res.err
		}
	}
	return results, nil
}

// rasterizeOne renders a single glyph at its key's representative scale
// and sub-pixel offset, so every request collapsing onto the key gets
// an identical bitmap.
func (c *Cache) rasterizeOne(fonts []font.Source, q queuedGlyph) rasterResult {
	res := rasterResult{key: q.key}

	if int(q.key.font) < 0 || int(q.key.font) >= len(fonts) {
		res.err = fmt.Errorf("%w: font id %d with %d fonts registered",
			ErrUnknownFont, q.key.font, len(fonts))
		return res
	}
	src := fonts[q.key.font]

	scale := c.config.dequantizeScale(q.key)
	offX := c.config.dequantizeOffset(q.key.offsetX)
	offY := c.config.dequantizeOffset(q.key.offsetY)

	outline, err := src.Outline(q.key.gid, scale)
	if err != nil {
		res.err = fmt.Errorf("outline for glyph %d: %w", q.key.gid, err)
		return res
	}
	if outline.IsEmpty() {
		return res
	}

	mask := font.Rasterize(outline, offX, offY)
	if mask == nil {
		return res
	}
	bounds := outline.PixelBounds(offX, offY)
	res.mask = mask
	res.minX = float32(bounds.Min.X)
	res.minY = float32(bounds.Min.Y)
	return res
}

// suggestSize doubles each axis still below its maximum.
func (c *Cache) suggestSize() (uint32, uint32) {
	w := min(c.atlas.width*2, c.config.MaxWidth)
	h := min(c.atlas.height*2, c.config.MaxHeight)
	return w, h
}

// updateCoalescer merges texture updates for placements that land in
// the same row, so a run of small glyphs costs one callback.
type updateCoalescer struct {
	atlas *atlas
	fn    func(rect image.Rectangle, pixels []byte)

	dirty   image.Rectangle
	hasRect bool
}

func (u *updateCoalescer) add(rect image.Rectangle) {
	if u.fn == nil {
		return
	}
	if u.hasRect && u.dirty.Min.Y == rect.Min.Y {
		u.dirty = u.dirty.Union(rect)
		return
	}
	u.flush()
	u.dirty = rect
	u.hasRect = true
}

func (u *updateCoalescer) flush() {
	if !u.hasRect {
		return
	}
	u.fn(u.dirty, u.atlas.regionPixels(u.dirty))
	u.hasRect = false
}
