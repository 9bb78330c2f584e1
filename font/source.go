// Package font defines the font service contract consumed by the draw
// cache and the positioners: outline lookup, metrics, and coverage
// rasterization of outlines into alpha bitmaps.
//
// The built-in SFNTSource implementation reads TrueType/OpenType fonts via
// golang.org/x/image/font/sfnt. Callers may supply their own Source.
package font

import "errors"

// Sentinel errors for the font package.
var (
	// ErrEmptyFontData is returned when font data is empty.
	ErrEmptyFontData = errors.New("font: empty font data")

	// ErrMissingGlyph is returned when a glyph id is not present in the font.
	ErrMissingGlyph = errors.New("font: missing glyph")
)

// Metrics holds vertical font metrics in pixel units for one ppem.
type Metrics struct {
	// Ascent is the distance from the baseline to the top of a line,
	// positive going up.
	Ascent float32

	// Descent is the distance from the baseline to the bottom of a line,
	// positive going down.
	Descent float32

	// LineGap is the recommended gap between lines.
	LineGap float32
}

// LineHeight returns the recommended baseline-to-baseline distance.
func (m Metrics) LineHeight() float32 {
	return m.Ascent + m.Descent + m.LineGap
}

// Source is the font service consumed by the draw cache and positioners.
//
// Outline returns the glyph outline scaled to the given ppem, or a non-nil
// outline with no segments for glyphs without a visible shape (space,
// control characters); that is not an error. A non-nil error means the
// glyph data itself could not be read and propagates out of the population
// pass.
//
// Implementations must be safe for concurrent use: rasterization workers
// call Outline from multiple goroutines.
type Source interface {
	// GlyphIndex maps a rune to its glyph id.
	// ok is false when the font has no glyph for the rune.
	GlyphIndex(r rune) (gid GlyphID, ok bool)

	// Outline returns the outline for a glyph at the given ppem.
	Outline(gid GlyphID, ppem float32) (*Outline, error)

	// Metrics returns the vertical metrics at the given ppem.
	Metrics(ppem float32) Metrics

	// Advance returns the horizontal advance of a glyph at the given ppem.
	Advance(gid GlyphID, ppem float32) float32

	// Kern returns the kerning adjustment between two glyphs at the given
	// ppem. Zero when the pair has no kerning.
	Kern(a, b GlyphID, ppem float32) float32

	// Data returns the raw font file bytes, for collaborators that parse
	// the font themselves (e.g. a shaping positioner).
	Data() []byte
}
