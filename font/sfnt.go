package font

import (
	"fmt"
	"sync"

	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// SFNTSource is a Source backed by a TrueType/OpenType font parsed with
// golang.org/x/image/font/sfnt.
//
// SFNTSource is safe for concurrent use: the underlying sfnt.Font is
// read-only and the scratch sfnt.Buffer values are pooled, since they are
// not safe for concurrent use themselves.
type SFNTSource struct {
	font *sfnt.Font
	data []byte

	// buffers pools sfnt.Buffer scratch space across goroutines.
	buffers sync.Pool
}

// ParseSFNT parses TrueType/OpenType font data into an SFNTSource.
func ParseSFNT(data []byte) (*SFNTSource, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFontData
	}
	f, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("font: parse sfnt: %w", err)
	}
	s := &SFNTSource{
		font: f,
		data: data,
	}
	s.buffers.New = func() any { return &sfnt.Buffer{} }
	return s, nil
}

// GlyphIndex implements Source.
func (s *SFNTSource) GlyphIndex(r rune) (GlyphID, bool) {
	buf := s.buffers.Get().(*sfnt.Buffer)
	defer s.buffers.Put(buf)

	gid, err := s.font.GlyphIndex(buf, r)
	if err != nil || gid == 0 {
		return 0, false
	}
	return GlyphID(gid), true
}

// Outline implements Source. The returned outline is scaled to pixel units
// for the given ppem. Glyphs without a visible shape (space and friends)
// yield a non-nil outline with no segments.
func (s *SFNTSource) Outline(gid GlyphID, ppem float32) (*Outline, error) {
	buf := s.buffers.Get().(*sfnt.Buffer)
	defer s.buffers.Put(buf)

	fp := floatToFixed(ppem)
	segments, err := s.font.LoadGlyph(buf, sfnt.GlyphIndex(gid), fp, nil)
	if err != nil {
		return nil, fmt.Errorf("font: load glyph %d: %w", gid, err)
	}

	o := &Outline{
		Advance: s.advance(buf, gid, fp),
	}
	for _, seg := range segments {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			o.MoveTo(fixedPoint(seg.Args[0]))
		case sfnt.SegmentOpLineTo:
			o.LineTo(fixedPoint(seg.Args[0]))
		case sfnt.SegmentOpQuadTo:
			o.QuadTo(fixedPoint(seg.Args[0]), fixedPoint(seg.Args[1]))
		case sfnt.SegmentOpCubeTo:
			o.CubeTo(fixedPoint(seg.Args[0]), fixedPoint(seg.Args[1]), fixedPoint(seg.Args[2]))
		}
	}
	return o, nil
}

// Metrics implements Source.
func (s *SFNTSource) Metrics(ppem float32) Metrics {
	buf := s.buffers.Get().(*sfnt.Buffer)
	defer s.buffers.Put(buf)

	m, err := s.font.Metrics(buf, floatToFixed(ppem), xfont.HintingNone)
	if err != nil {
		return Metrics{}
	}
	ascent := fixedToFloat(m.Ascent)
	descent := fixedToFloat(m.Descent)
	return Metrics{
		Ascent:  ascent,
		Descent: descent,
		LineGap: fixedToFloat(m.Height) - ascent - descent,
	}
}

// Advance implements Source.
func (s *SFNTSource) Advance(gid GlyphID, ppem float32) float32 {
	buf := s.buffers.Get().(*sfnt.Buffer)
	defer s.buffers.Put(buf)

	return s.advance(buf, gid, floatToFixed(ppem))
}

// advance reads a glyph advance using the caller's scratch buffer.
func (s *SFNTSource) advance(buf *sfnt.Buffer, gid GlyphID, ppem fixed.Int26_6) float32 {
	adv, err := s.font.GlyphAdvance(buf, sfnt.GlyphIndex(gid), ppem, xfont.HintingNone)
	if err != nil {
		return 0
	}
	return fixedToFloat(adv)
}

// Kern implements Source.
func (s *SFNTSource) Kern(a, b GlyphID, ppem float32) float32 {
	buf := s.buffers.Get().(*sfnt.Buffer)
	defer s.buffers.Put(buf)

	k, err := s.font.Kern(buf, sfnt.GlyphIndex(a), sfnt.GlyphIndex(b), floatToFixed(ppem), xfont.HintingNone)
	if err != nil {
		return 0
	}
	return fixedToFloat(k)
}

// Data implements Source.
func (s *SFNTSource) Data() []byte {
	return s.data
}

// NumGlyphs returns the number of glyphs in the font.
func (s *SFNTSource) NumGlyphs() int {
	return s.font.NumGlyphs()
}

// floatToFixed converts pixels to 26.6 fixed point.
func floatToFixed(v float32) fixed.Int26_6 {
	return fixed.Int26_6(v * 64)
}

// fixedToFloat converts 26.6 fixed point to pixels.
func fixedToFloat(v fixed.Int26_6) float32 {
	return float32(v) / 64
}

// fixedPoint converts a fixed.Point26_6 to a pixel-unit Point.
func fixedPoint(p fixed.Point26_6) Point {
	return Point{X: float32(p.X) / 64, Y: float32(p.Y) / 64}
}
