package font

import (
	"image"
	"testing"
)

func TestOutlineBounds(t *testing.T) {
	var o Outline
	o.MoveTo(Point{X: 1, Y: -8})
	o.LineTo(Point{X: 6, Y: -8})
	o.LineTo(Point{X: 6, Y: 0})
	o.LineTo(Point{X: 1, Y: 0})

	if o.MinX != 1 || o.MaxX != 6 || o.MinY != -8 || o.MaxY != 0 {
		t.Errorf("bounds = (%v,%v)-(%v,%v), want (1,-8)-(6,0)", o.MinX, o.MinY, o.MaxX, o.MaxY)
	}
}

func TestOutlineBoundsIncludeControlPoints(t *testing.T) {
	var o Outline
	o.MoveTo(Point{X: 0, Y: 0})
	o.QuadTo(Point{X: 5, Y: -10}, Point{X: 10, Y: 0})

	if o.MinY != -10 {
		t.Errorf("MinY = %v, want -10 (control point included)", o.MinY)
	}
}

func TestPixelBounds(t *testing.T) {
	var o Outline
	o.MoveTo(Point{X: 0.5, Y: -7.25})
	o.LineTo(Point{X: 5.5, Y: 0.75})

	tests := []struct {
		name       string
		offX, offY float32
		want       image.Rectangle
	}{
		{"no offset", 0, 0, image.Rect(0, -8, 6, 1)},
		{"half pixel right", 0.5, 0, image.Rect(1, -8, 6, 1)},
		{"shift down", 0, 0.25, image.Rect(0, -7, 6, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := o.PixelBounds(tt.offX, tt.offY); got != tt.want {
				t.Errorf("PixelBounds(%v, %v) = %v, want %v", tt.offX, tt.offY, got, tt.want)
			}
		})
	}
}

func TestPixelBoundsEmpty(t *testing.T) {
	var o Outline
	if got := o.PixelBounds(0, 0); got != (image.Rectangle{}) {
		t.Errorf("PixelBounds on empty outline = %v, want zero rect", got)
	}
	if !o.IsEmpty() {
		t.Error("outline with no segments should be empty")
	}
	var nilOutline *Outline
	if !nilOutline.IsEmpty() {
		t.Error("nil outline should be empty")
	}
}

func TestSegmentOpString(t *testing.T) {
	ops := map[SegmentOp]string{
		SegmentOpMoveTo: "MoveTo",
		SegmentOpLineTo: "LineTo",
		SegmentOpQuadTo: "QuadTo",
		SegmentOpCubeTo: "CubeTo",
		SegmentOp(99):   "Unknown",
	}
	for op, want := range ops {
		if got := op.String(); got != want {
			t.Errorf("SegmentOp(%d).String() = %q, want %q", op, got, want)
		}
	}
}
