package glyphbrush

import (
	"github.com/gogpu/glyphbrush/font"
	"github.com/gogpu/glyphbrush/layout"
)

// Text is one styled run inside a Section.
type Text = layout.SectionText

// Section is a frame's worth of text sharing one screen placement. A
// section is immutable once queued; changing any field and re-queueing
// is how callers animate text between frames.
type Section struct {
	// ScreenPosition is the layout origin in screen pixels.
	ScreenPosition font.Point

	// Bounds limits layout extent. Zero or negative components mean
	// unbounded along that axis.
	Bounds font.Point

	// Texts are the styled runs laid out in order.
	Texts []Text
}

// NewSection builds a single-run section with common defaults.
func NewSection(text string, scale float32, x, y float32) Section {
	return Section{
		ScreenPosition: font.Point{X: x, Y: y},
		Texts: []Text{{
			Text:  text,
			Scale: scale,
			Color: [4]float32{0, 0, 0, 1},
		}},
	}
}

// WithColor returns a copy of the section with every run recolored.
func (s Section) WithColor(color [4]float32) Section {
	texts := make([]Text, len(s.Texts))
	copy(texts, s.Texts)
	for i := range texts {
		texts[i].Color = color
	}
	s.Texts = texts
	return s
}

// WithPosition returns a copy of the section at a new screen position.
func (s Section) WithPosition(x, y float32) Section {
	s.ScreenPosition = font.Point{X: x, Y: y}
	return s
}

func (s Section) geometry() layout.SectionGeometry {
	return layout.SectionGeometry{
		ScreenPosition: s.ScreenPosition,
		Bounds:         s.Bounds,
	}
}
