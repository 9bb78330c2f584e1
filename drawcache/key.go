package drawcache

import (
	"math"

	"github.com/gogpu/glyphbrush/font"
)

// Glyph is a positioned, scaled glyph request. Position is the baseline
// origin in screen pixels; Scale is the pixels-per-em rendering size.
type Glyph struct {
	Font     font.FontID
	GID      font.GlyphID
	Scale    float32
	Position font.Point
}

// TexCoords is a normalized texture sub-rectangle in [0, 1] coordinates.
type TexCoords struct {
	MinX, MinY float32
	MaxX, MaxY float32
}

// PixelCoords is a screen-space pixel rectangle for a cached glyph.
type PixelCoords struct {
	MinX, MinY float32
	MaxX, MaxY float32
}

// glyphKey identifies a cached rasterization. Scale and sub-pixel offset
// are quantized by the configured tolerances so that near-identical
// requests collapse onto one atlas entry.
type glyphKey struct {
	font    font.FontID
	gid     font.GlyphID
	scale   uint32
	offsetX uint16
	offsetY uint16
}

// quantize maps a glyph request to its cache key. Scales bucket at
// ScaleTolerance granularity; the fractional position buckets at
// PositionTolerance granularity, wrapped so that offsets a whole pixel
// apart share an entry.
func (c Config) quantize(g Glyph) glyphKey {
	return glyphKey{
		font:    g.Font,
		gid:     g.GID,
		scale:   uint32(math.Round(float64(g.Scale / c.ScaleTolerance))),
		offsetX: quantizeOffset(g.Position.X, c.PositionTolerance),
		offsetY: quantizeOffset(g.Position.Y, c.PositionTolerance),
	}
}

// quantizeOffset buckets the fractional part of v, normalized to
// [-0.5, 0.5), at tolerance granularity. The bucket index is offset into
// uint16 range so that negative buckets remain distinct.
func quantizeOffset(v, tolerance float32) uint16 {
	frac := v - float32(math.Floor(float64(v)))
	if frac >= 0.5 {
		frac -= 1
	}
	return uint16(int32(math.Round(float64(frac/tolerance))) + math.MaxInt16)
}

// dequantizeScale recovers the representative scale for a key bucket.
func (c Config) dequantizeScale(k glyphKey) float32 {
	return float32(k.scale) * c.ScaleTolerance
}

// dequantizeOffset recovers the representative sub-pixel offset for a
// bucket, in [-0.5, 0.5].
func (c Config) dequantizeOffset(q uint16) float32 {
	return float32(int32(q)-math.MaxInt16) * c.PositionTolerance
}
