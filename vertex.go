package glyphbrush

import (
	"math"

	"github.com/gogpu/glyphbrush/drawcache"
	"github.com/gogpu/glyphbrush/layout"
)

// GlyphVertex is one screen-space textured quad for a cached glyph. The
// GPU binding layer expands it into triangles however it likes; fields
// map directly onto a per-instance vertex buffer layout.
type GlyphVertex struct {
	// Screen pixel rectangle of the quad.
	MinX, MinY float32
	MaxX, MaxY float32

	// Normalized atlas coordinates of the glyph bitmap.
	TexMinX, TexMinY float32
	TexMaxX, TexMaxY float32

	// Premultiplication is left to the consumer.
	Color [4]float32
}

// clipRect is the pixel-space clip a section's bounds impose on its
// glyph quads. Unbounded axes extend to infinity.
type clipRect struct {
	minX, minY float32
	maxX, maxY float32
}

func sectionClip(geom layout.SectionGeometry) clipRect {
	c := clipRect{
		minX: float32(math.Inf(-1)), minY: float32(math.Inf(-1)),
		maxX: float32(math.Inf(1)), maxY: float32(math.Inf(1)),
	}
	if geom.Bounds.X > 0 {
		c.minX = geom.ScreenPosition.X
		c.maxX = geom.ScreenPosition.X + geom.Bounds.X
	}
	if geom.Bounds.Y > 0 {
		c.minY = geom.ScreenPosition.Y
		c.maxY = geom.ScreenPosition.Y + geom.Bounds.Y
	}
	return c
}

// clipQuad trims a glyph quad to the clip rect, cutting the texture
// window in proportion so the visible part keeps its texels. Reports
// false for quads entirely outside the clip.
func clipQuad(tex drawcache.TexCoords, px drawcache.PixelCoords, clip clipRect) (drawcache.TexCoords, drawcache.PixelCoords, bool) {
	if px.MinX >= clip.maxX || px.MaxX <= clip.minX ||
		px.MinY >= clip.maxY || px.MaxY <= clip.minY {
		return tex, px, false
	}
	texPerPxX := (tex.MaxX - tex.MinX) / (px.MaxX - px.MinX)
	texPerPxY := (tex.MaxY - tex.MinY) / (px.MaxY - px.MinY)
	if px.MinX < clip.minX {
		tex.MinX += (clip.minX - px.MinX) * texPerPxX
		px.MinX = clip.minX
	}
	if px.MaxX > clip.maxX {
		tex.MaxX -= (px.MaxX - clip.maxX) * texPerPxX
		px.MaxX = clip.maxX
	}
	if px.MinY < clip.minY {
		tex.MinY += (clip.minY - px.MinY) * texPerPxY
		px.MinY = clip.minY
	}
	if px.MaxY > clip.maxY {
		tex.MaxY -= (px.MaxY - clip.maxY) * texPerPxY
		px.MaxY = clip.maxY
	}
	return tex, px, true
}

func makeVertex(tex drawcache.TexCoords, px drawcache.PixelCoords, color [4]float32) GlyphVertex {
	return GlyphVertex{
		MinX:    px.MinX,
		MinY:    px.MinY,
		MaxX:    px.MaxX,
		MaxY:    px.MaxY,
		TexMinX: tex.MinX,
		TexMinY: tex.MinY,
		TexMaxX: tex.MaxX,
		TexMaxY: tex.MaxY,
		Color:   color,
	}
}
