// Package layout defines the positioner contract that turns section text
// into positioned glyphs, plus two implementations: a simple kerned
// left-to-right positioner and a go-text/typesetting backed shaping
// positioner. Callers may supply their own Positioner.
package layout

import (
	"github.com/gogpu/glyphbrush/font"
)

// SectionText is one run of text within a section, with uniform styling.
type SectionText struct {
	// Text is the UTF-8 text of the run.
	Text string

	// Scale is the font size in pixels (ppem). Defaults to 16 when zero.
	Scale float32

	// Color is the RGBA color, each channel in [0, 1].
	Color [4]float32

	// Font selects the font source for this run.
	Font font.FontID
}

// SectionGeometry is the positioning input for a section.
type SectionGeometry struct {
	// ScreenPosition is the top-left position in pixels.
	ScreenPosition font.Point

	// Bounds is the maximum (width, height) of the laid-out text.
	// Zero or negative means unbounded on that axis.
	Bounds font.Point
}

// BoundsWidth returns the usable width, or +inf semantics via ok=false
// when unbounded.
func (g SectionGeometry) BoundsWidth() (w float32, ok bool) {
	if g.Bounds.X > 0 {
		return g.Bounds.X, true
	}
	return 0, false
}

// Glyph is one positioned glyph produced by a Positioner.
type Glyph struct {
	// Font identifies the font source the glyph belongs to.
	Font font.FontID

	// GID is the glyph index within the font.
	GID font.GlyphID

	// Position is the baseline origin of the glyph in screen pixels.
	Position font.Point

	// Scale is the font size in pixels (ppem).
	Scale float32

	// Color is the RGBA color inherited from the section text run.
	Color [4]float32

	// SectionIndex is the index of the SectionText run this glyph came from.
	SectionIndex int

	// ByteOffset is the byte offset of the source character within its run.
	ByteOffset int

	// Empty marks glyphs with no visible shape (whitespace). Empty glyphs
	// position subsequent glyphs but are never rasterized or cached.
	Empty bool
}

// ChangeKind classifies how a section differs from its previous frame.
type ChangeKind uint8

const (
	// ChangeGeometry means only the screen position or bounds moved.
	ChangeGeometry ChangeKind = iota

	// ChangeColor means only the non-alpha color channels changed.
	ChangeColor

	// ChangeAlpha means only the alpha channel changed.
	ChangeAlpha
)

// Change describes an incremental difference a Positioner can apply to
// previously computed glyphs without a full relayout.
type Change struct {
	Kind ChangeKind

	// PreviousGeometry is the geometry the previous glyphs were laid out
	// with. Only used for ChangeGeometry.
	PreviousGeometry SectionGeometry
}

// Positioner turns section text into positioned glyphs.
//
// Layout performs a full computation. Recalculate adjusts previously
// computed glyphs for a Change, which is required to be much cheaper than a
// relayout; implementations may fall back to Layout for changes they cannot
// apply incrementally.
type Positioner interface {
	Layout(fonts []font.Source, geom SectionGeometry, texts []SectionText) []Glyph

	Recalculate(prev []Glyph, change Change, fonts []font.Source, geom SectionGeometry, texts []SectionText) []Glyph
}

// recalculate applies a Change to previously positioned glyphs. Shared by
// the built-in positioners: geometry changes are a pure translation, color
// and alpha changes reapply the run colors.
func recalculate(prev []Glyph, change Change, geom SectionGeometry, texts []SectionText) []Glyph {
	out := make([]Glyph, len(prev))
	copy(out, prev)

	switch change.Kind {
	case ChangeGeometry:
		dx := geom.ScreenPosition.X - change.PreviousGeometry.ScreenPosition.X
		dy := geom.ScreenPosition.Y - change.PreviousGeometry.ScreenPosition.Y
		for i := range out {
			out[i].Position.X += dx
			out[i].Position.Y += dy
		}
	case ChangeColor:
		for i := range out {
			if si := out[i].SectionIndex; si < len(texts) {
				out[i].Color = texts[si].Color
			}
		}
	case ChangeAlpha:
		for i := range out {
			if si := out[i].SectionIndex; si < len(texts) {
				out[i].Color[3] = texts[si].Color[3]
			}
		}
	}
	return out
}
