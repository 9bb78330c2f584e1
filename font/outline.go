package font

import (
	"image"
	"math"
)

// GlyphID is the glyph index within a font.
type GlyphID uint16

// FontID identifies a registered font source. It is assigned by the caller
// (typically an index into its font list) and is only used to keep glyphs
// from different fonts distinct in cache keys.
type FontID int

// Point is a 2D point in pixel units.
type Point struct {
	X, Y float32
}

// SegmentOp is the type of an outline path operation.
type SegmentOp uint8

const (
	// SegmentOpMoveTo moves to a new point without drawing.
	SegmentOpMoveTo SegmentOp = iota

	// SegmentOpLineTo draws a line to the target point.
	SegmentOpLineTo

	// SegmentOpQuadTo draws a quadratic bezier curve.
	SegmentOpQuadTo

	// SegmentOpCubeTo draws a cubic bezier curve.
	SegmentOpCubeTo
)

// String returns the string representation of the operation.
func (op SegmentOp) String() string {
	switch op {
	case SegmentOpMoveTo:
		return "MoveTo"
	case SegmentOpLineTo:
		return "LineTo"
	case SegmentOpQuadTo:
		return "QuadTo"
	case SegmentOpCubeTo:
		return "CubeTo"
	default:
		return "Unknown"
	}
}

// Segment is one segment of a glyph outline.
type Segment struct {
	// Op is the segment operation type.
	Op SegmentOp

	// Args contains the control and end points for this segment.
	//   - MoveTo: Args[0] is the target point
	//   - LineTo: Args[0] is the target point
	//   - QuadTo: Args[0] is control, Args[1] is target
	//   - CubeTo: Args[0], Args[1] are controls, Args[2] is target
	Args [3]Point
}

// Outline is the vector outline of a glyph, already scaled to pixel units
// for a particular ppem. Coordinates are Y-down with the origin on the
// baseline, so ascenders have negative Y.
type Outline struct {
	// Segments is the list of path segments making up the outline.
	// Empty for glyphs with no visible shape (space, control characters).
	Segments []Segment

	// MinX, MinY, MaxX, MaxY bound the outline in pixel units.
	// Only meaningful when Segments is non-empty.
	MinX, MinY, MaxX, MaxY float32

	// Advance is the horizontal advance width in pixels.
	Advance float32
}

// IsEmpty reports whether the outline has no visible shape.
func (o *Outline) IsEmpty() bool {
	return o == nil || len(o.Segments) == 0
}

// PixelBounds returns the integer pixel bounds covering the outline after
// applying the given subpixel offset. The zero rectangle is returned for
// empty outlines.
func (o *Outline) PixelBounds(offX, offY float32) image.Rectangle {
	if o.IsEmpty() {
		return image.Rectangle{}
	}
	return image.Rect(
		int(math.Floor(float64(o.MinX+offX))),
		int(math.Floor(float64(o.MinY+offY))),
		int(math.Ceil(float64(o.MaxX+offX))),
		int(math.Ceil(float64(o.MaxY+offY))),
	)
}

// growBounds extends the outline bounds to include p.
func (o *Outline) growBounds(p Point) {
	if len(o.Segments) == 0 && o.MinX == 0 && o.MaxX == 0 && o.MinY == 0 && o.MaxY == 0 {
		o.MinX, o.MaxX = p.X, p.X
		o.MinY, o.MaxY = p.Y, p.Y
		return
	}
	if p.X < o.MinX {
		o.MinX = p.X
	}
	if p.X > o.MaxX {
		o.MaxX = p.X
	}
	if p.Y < o.MinY {
		o.MinY = p.Y
	}
	if p.Y > o.MaxY {
		o.MaxY = p.Y
	}
}

// MoveTo appends a MoveTo segment.
func (o *Outline) MoveTo(p Point) {
	o.growBounds(p)
	o.Segments = append(o.Segments, Segment{Op: SegmentOpMoveTo, Args: [3]Point{p}})
}

// LineTo appends a LineTo segment.
func (o *Outline) LineTo(p Point) {
	o.growBounds(p)
	o.Segments = append(o.Segments, Segment{Op: SegmentOpLineTo, Args: [3]Point{p}})
}

// QuadTo appends a quadratic bezier segment.
func (o *Outline) QuadTo(ctrl, p Point) {
	o.growBounds(ctrl)
	o.growBounds(p)
	o.Segments = append(o.Segments, Segment{Op: SegmentOpQuadTo, Args: [3]Point{ctrl, p}})
}

// CubeTo appends a cubic bezier segment.
func (o *Outline) CubeTo(ctrl1, ctrl2, p Point) {
	o.growBounds(ctrl1)
	o.growBounds(ctrl2)
	o.Segments = append(o.Segments, Segment{Op: SegmentOpCubeTo, Args: [3]Point{ctrl1, ctrl2, p}})
}
