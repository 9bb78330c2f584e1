package glyphbrush

import (
	"testing"

	"github.com/gogpu/glyphbrush/font"
)

func TestClassify(t *testing.T) {
	base := NewSection("hello", 16, 10, 20).WithColor([4]float32{1, 0, 0, 1})

	tests := []struct {
		name string
		next Section
		want sectionChange
	}{
		{
			name: "identical",
			next: base,
			want: changeUnchanged,
		},
		{
			name: "moved",
			next: base.WithPosition(30, 40),
			want: changeGeometry,
		},
		{
			name: "recolored",
			next: base.WithColor([4]float32{0, 1, 0, 1}),
			want: changeColor,
		},
		{
			name: "alpha faded",
			next: base.WithColor([4]float32{1, 0, 0, 0.25}),
			want: changeAlpha,
		},
		{
			name: "text changed",
			next: func() Section {
				s := NewSection("goodbye", 16, 10, 20)
				return s.WithColor([4]float32{1, 0, 0, 1})
			}(),
			want: changeNew,
		},
		{
			name: "scale changed",
			next: func() Section {
				s := NewSection("hello", 24, 10, 20)
				return s.WithColor([4]float32{1, 0, 0, 1})
			}(),
			want: changeNew,
		},
		{
			name: "moved and recolored",
			next: base.WithPosition(30, 40).WithColor([4]float32{0, 1, 0, 1}),
			want: changeNew,
		},
		{
			name: "bounds changed",
			next: func() Section {
				s := base
				s.Bounds = font.Point{X: 120}
				return s
			}(),
			want: changeNew,
		},
	}

	prev := hashSection(base)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classify(prev, hashSection(tt.next)); got != tt.want {
				t.Errorf("classify = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFullHashDistinguishesGeometry(t *testing.T) {
	a := hashSection(NewSection("x", 16, 0, 0))
	b := hashSection(NewSection("x", 16, 1, 0))
	if a.full() == b.full() {
		t.Error("full hash identical for different screen positions")
	}
	if a.text != b.text {
		t.Error("content hash varies with screen position")
	}
}

func TestHashRunBoundaries(t *testing.T) {
	one := Section{Texts: []Text{{Text: "ab", Scale: 16}, {Text: "c", Scale: 16}}}
	other := Section{Texts: []Text{{Text: "a", Scale: 16}, {Text: "bc", Scale: 16}}}
	if hashSection(one).text == hashSection(other).text {
		t.Error("run boundary shift did not change the hash")
	}
}
