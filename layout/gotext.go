package layout

import (
	"bytes"
	"sync"
	"unicode"

	"github.com/go-text/typesetting/di"
	gtfont "github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/glyphbrush/font"
)

// GoText is a Positioner backed by go-text/typesetting's HarfBuzz
// implementation. Compared to Builtin it adds:
//   - ligature substitution (fi, fl, ffi, ...)
//   - OpenType kerning and contextual alternates
//   - right-to-left text via Unicode bidi run splitting
//   - complex scripts (Devanagari, Thai, Arabic, ...)
//
// GoText is safe for concurrent use. Parsed gtfont.Font objects are cached
// per font source (they are read-only and thread-safe); HarfbuzzShaper
// instances are pooled since they are not.
type GoText struct {
	// shapers pools HarfbuzzShaper instances; they carry internal
	// mutable buffers.
	shapers sync.Pool

	mu sync.RWMutex

	// fontCache maps font sources to parsed go-text fonts, avoiding a
	// re-parse on every Layout call.
	fontCache map[font.Source]*gtfont.Font
}

// NewGoText creates a shaping positioner.
func NewGoText() *GoText {
	g := &GoText{
		fontCache: make(map[font.Source]*gtfont.Font),
	}
	g.shapers.New = func() any { return &shaping.HarfbuzzShaper{} }
	return g
}

// Layout implements Positioner.
func (g *GoText) Layout(fonts []font.Source, geom SectionGeometry, texts []SectionText) []Glyph {
	var glyphs []Glyph

	origin := geom.ScreenPosition

	var penX, penY, lineHeight float32
	firstScale := float32(defaultScale)
	if len(texts) > 0 && texts[0].Scale > 0 {
		firstScale = texts[0].Scale
	}
	if len(texts) > 0 && int(texts[0].Font) < len(fonts) {
		m := fonts[texts[0].Font].Metrics(firstScale)
		penY = m.Ascent
		lineHeight = m.LineHeight()
	} else {
		penY = firstScale
		lineHeight = firstScale * 1.2
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

		gtFont, err := g.getOrParseFont(src)
		if err != nil {
			continue
		}

		// Shape line by line; '\n' resets the pen like the builtin
		// positioner.
		lineStart := 0
		runes := []rune(text.Text)
		for i := 0; i <= len(runes); i++ {
			if i < len(runes) && runes[i] != '\n' {
				continue
			}
			line := runes[lineStart:i]
			if len(line) > 0 {
				byteBase := len(string(runes[:lineStart]))
				glyphs = g.shapeLine(glyphs, gtFont, line, byteBase, si, text, scale, origin, &penX, penY)
			}
			if i < len(runes) {
				penX = 0
				penY += lineHeight
			}
			lineStart = i + 1
		}
	}

	return glyphs
}

// shapeLine shapes one line of a run, splitting it into bidi runs first,
// and appends the positioned glyphs.
func (g *GoText) shapeLine(glyphs []Glyph, gtFont *gtfont.Font, line []rune, byteBase, sectionIndex int, text SectionText, scale float32, origin font.Point, penX *float32, penY float32) []Glyph {
	// gtfont.Face is not safe for concurrent use; make one per call.
	face := gtfont.NewFace(gtFont)

	shaper := g.shapers.Get().(*shaping.HarfbuzzShaper)
	defer g.shapers.Put(shaper)

	for _, run := range splitBidi(string(line)) {
		dir := di.DirectionLTR
		if run.rtl {
			dir = di.DirectionRTL
		}

		input := shaping.Input{
			Text:      line,
			RunStart:  run.start,
			RunEnd:    run.end,
			Direction: dir,
			Face:      face,
			Size:      fixed.Int26_6(scale * 64),
			Script:    detectScript(line[run.start:run.end]),
			Language:  language.NewLanguage("en"),
		}

		output := shaper.Shape(input)
		for _, sg := range output.Glyphs {
			xOff := float32(sg.XOffset) / 64
			yOff := float32(sg.YOffset) / 64
			cluster := sg.TextIndex()

			empty := false
			if cluster >= 0 && cluster < len(line) {
				empty = unicode.IsSpace(line[cluster])
			}

			glyphs = append(glyphs, Glyph{
				Font:         text.Font,
				GID:          font.GlyphID(sg.GlyphID),
				Position:     font.Point{X: origin.X + *penX + xOff, Y: origin.Y + penY + yOff},
				Scale:        scale,
				Color:        text.Color,
				SectionIndex: sectionIndex,
				ByteOffset:   byteBase + runeToByteOffset(line, cluster),
				Empty:        empty,
			})

			*penX += float32(sg.XAdvance) / 64
		}
	}

	return glyphs
}

// Recalculate implements Positioner.
func (g *GoText) Recalculate(prev []Glyph, change Change, fonts []font.Source, geom SectionGeometry, texts []SectionText) []Glyph {
	return recalculate(prev, change, geom, texts)
}

// getOrParseFont returns the cached parsed font for src, parsing it on
// first use. gtfont.Font is read-only and safe for concurrent use.
func (g *GoText) getOrParseFont(src font.Source) (*gtfont.Font, error) {
	g.mu.RLock()
	if f, ok := g.fontCache[src]; ok {
		g.mu.RUnlock()
		return f, nil
	}
	g.mu.RUnlock()

	g.mu.Lock()
	defer g.mu.Unlock()

	if f, ok := g.fontCache[src]; ok {
		return f, nil
	}

	face, err := gtfont.ParseTTF(bytes.NewReader(src.Data()))
	if err != nil {
		return nil, err
	}
	g.fontCache[src] = face.Font
	return face.Font, nil
}

// ClearFontCache drops all cached parsed fonts.
func (g *GoText) ClearFontCache() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fontCache = make(map[font.Source]*gtfont.Font)
}

// detectScript returns the script of the first non-space rune, defaulting
// to Latin. Mixed-script runs should be split by the caller.
func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		if unicode.IsSpace(r) {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}

// runeToByteOffset converts a rune index into a byte offset.
func runeToByteOffset(runes []rune, runeIdx int) int {
	if runeIdx < 0 {
		return 0
	}
	off := 0
	for i, r := range runes {
		if i >= runeIdx {
			break
		}
		off += len(string(r))
	}
	return off
}
