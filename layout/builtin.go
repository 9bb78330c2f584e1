package layout

import (
	"unicode"

	"github.com/gogpu/glyphbrush/font"
)

// defaultScale is used when a SectionText has no scale set.
const defaultScale = 16

// Builtin is a kerned left-to-right positioner.
//
// Glyphs advance horizontally with kerning between adjacent glyphs of the
// same run. '\n' starts a new line; other control characters are skipped.
// When the section geometry has a bounded width, lines wrap at the last
// breakable (whitespace) position, or mid-word when a single word exceeds
// the width.
//
// Builtin does no shaping: one rune maps to one glyph. Use GoText for
// ligatures, complex scripts and right-to-left text.
type Builtin struct{}

// NewBuiltin returns the built-in left-to-right positioner.
func NewBuiltin() *Builtin {
	return &Builtin{}
}

// penState tracks a layout caret.
type penState struct {
	x, y    float32
	lastGID font.GlyphID
	hasLast bool
}

// Layout implements Positioner.
func (b *Builtin) Layout(fonts []font.Source, geom SectionGeometry, texts []SectionText) []Glyph {
	var glyphs []Glyph

	origin := geom.ScreenPosition
	boundWidth, bounded := geom.BoundsWidth()

	var pen penState
	var lineHeight float32

	// The first baseline sits one ascent below the section origin.
	firstRunScale := float32(defaultScale)
	if len(texts) > 0 && texts[0].Scale > 0 {
		firstRunScale = texts[0].Scale
	}
	if len(texts) > 0 && int(texts[0].Font) < len(fonts) {
		m := fonts[texts[0].Font].Metrics(firstRunScale)
		pen.y = m.Ascent
		lineHeight = m.LineHeight()
	} else {
		pen.y = firstRunScale
		lineHeight = firstRunScale * 1.2
	}

	// wordStart is the glyph index where the current unbroken word began,
	// used to move whole words to the next line on wrap.
	wordStart := -1
	var wordStartX float32

	newline := func() {
		pen.x = 0
		pen.y += lineHeight
		pen.hasLast = false
		wordStart = -1
	}

	for si, text := range texts {
		if int(text.Font) >= len(fonts) {
			continue
		}
		src := fonts[text.Font]
		scale := text.Scale
		if scale <= 0 {
			scale = defaultScale
		}
		if lh := src.Metrics(scale).LineHeight(); lh > lineHeight {
			lineHeight = lh
		}

		for off, r := range text.Text {
			if r == '\n' {
				newline()
				continue
			}
			if r != ' ' && r != '\t' && unicode.IsControl(r) {
				continue
			}

			gid, ok := src.GlyphIndex(r)
			if !ok {
				continue
			}

			if pen.hasLast {
				pen.x += src.Kern(pen.lastGID, gid, scale)
			}

			empty := unicode.IsSpace(r)
			advance := src.Advance(gid, scale)

			if empty {
				wordStart = -1
			} else if wordStart < 0 {
				wordStart = len(glyphs)
				wordStartX = pen.x
			}

			// Wrap when a visible glyph would end past the bound.
			if bounded && !empty && pen.x+advance > boundWidth && pen.x > 0 {
				if wordStart >= 0 && wordStart < len(glyphs) && wordStartX > 0 {
					// Move the whole current word down a line.
					moved := glyphs[wordStart:]
					pen.x -= wordStartX
					pen.y += lineHeight
					for i := range moved {
						moved[i].Position.X -= wordStartX
						moved[i].Position.Y += lineHeight
					}
					wordStartX = 0
					pen.hasLast = false
				} else {
					// Single word wider than the bound: break mid-word.
					newline()
					wordStart = len(glyphs)
					wordStartX = 0
				}
			}

			glyphs = append(glyphs, Glyph{
				Font:         text.Font,
				GID:          gid,
				Position:     font.Point{X: origin.X + pen.x, Y: origin.Y + pen.y},
				Scale:        scale,
				Color:        text.Color,
				SectionIndex: si,
				ByteOffset:   off,
				Empty:        empty,
			})

			pen.x += advance
			pen.lastGID = gid
			pen.hasLast = true
		}
	}

	return glyphs
}

// Recalculate implements Positioner.
func (b *Builtin) Recalculate(prev []Glyph, change Change, fonts []font.Source, geom SectionGeometry, texts []SectionText) []Glyph {
	return recalculate(prev, change, geom, texts)
}
