package font

import (
	"image"
	"image/draw"

	"golang.org/x/image/vector"
)

// Rasterize renders an outline into an alpha coverage bitmap at the given
// subpixel offset. The bitmap is sized to the outline's pixel bounds for
// that offset; Rasterize(o, ...) and o.PixelBounds(...) agree on dimensions.
//
// Returns nil for empty outlines. The function touches no shared state and
// is safe to call concurrently from rasterization workers.
func Rasterize(o *Outline, offX, offY float32) *image.Alpha {
	if o.IsEmpty() {
		return nil
	}

	bounds := o.PixelBounds(offX, offY)
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return nil
	}

	// Shift outline coordinates so the bitmap origin is the bounds origin.
	dx := offX - float32(bounds.Min.X)
	dy := offY - float32(bounds.Min.Y)

	r := vector.NewRasterizer(w, h)
	r.DrawOp = draw.Src
	for _, seg := range o.Segments {
		switch seg.Op {
		case SegmentOpMoveTo:
			r.MoveTo(seg.Args[0].X+dx, seg.Args[0].Y+dy)
		case SegmentOpLineTo:
			r.LineTo(seg.Args[0].X+dx, seg.Args[0].Y+dy)
		case SegmentOpQuadTo:
			r.QuadTo(
				seg.Args[0].X+dx, seg.Args[0].Y+dy,
				seg.Args[1].X+dx, seg.Args[1].Y+dy,
			)
		case SegmentOpCubeTo:
			r.CubeTo(
				seg.Args[0].X+dx, seg.Args[0].Y+dy,
				seg.Args[1].X+dx, seg.Args[1].Y+dy,
				seg.Args[2].X+dx, seg.Args[2].Y+dy,
			)
		}
	}
	r.ClosePath()

	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	r.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	return mask
}
