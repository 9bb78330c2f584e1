package glyphbrush

import (
	"hash"
	"hash/fnv"
	"math"

	"github.com/gogpu/glyphbrush/layout"
)

// sectionHash captures a section's content at three exclusion levels so
// that frame diffing can tell exactly what changed. Geometry is kept as
// raw values rather than hashed, because a geometry delta is needed to
// shift cached glyphs.
type sectionHash struct {
	// text covers fonts, scales, run text and full colors.
	text uint64

	// textNoAlpha covers the same minus the alpha channel.
	textNoAlpha uint64

	// textNoColor covers the same minus color entirely.
	textNoColor uint64

	geometry layout.SectionGeometry
}

// full combines content and geometry into one identity for the vertex
// cache key.
func (h sectionHash) full() uint64 {
	fh := fnv.New64a()
	var buf [8 + 4*4]byte
	putUint64(buf[0:], h.text)
	putFloat32(buf[8:], h.geometry.ScreenPosition.X)
	putFloat32(buf[12:], h.geometry.ScreenPosition.Y)
	putFloat32(buf[16:], h.geometry.Bounds.X)
	putFloat32(buf[20:], h.geometry.Bounds.Y)
	_, _ = fh.Write(buf[:])
	return fh.Sum64()
}

// hashSection computes the layered content hashes for a section.
func hashSection(s Section) sectionHash {
	noColor := fnv.New64a()
	noAlpha := fnv.New64a()
	all := fnv.New64a()

	var buf [16]byte
	for _, t := range s.Texts {
		putUint64(buf[0:], uint64(len(t.Text)))
		putFloat32(buf[8:], t.Scale)
		putUint32(buf[12:], uint32(t.Font))

		for _, h := range []hash.Hash64{noColor, noAlpha, all} {
			_, _ = h.Write(buf[:16])
			_, _ = h.Write([]byte(t.Text))
		}

		putFloat32(buf[0:], t.Color[0])
		putFloat32(buf[4:], t.Color[1])
		putFloat32(buf[8:], t.Color[2])
		_, _ = noAlpha.Write(buf[:12])
		_, _ = all.Write(buf[:12])

		putFloat32(buf[0:], t.Color[3])
		_, _ = all.Write(buf[:4])
	}

	return sectionHash{
		text:        all.Sum64(),
		textNoAlpha: noAlpha.Sum64(),
		textNoColor: noColor.Sum64(),
		geometry:    s.geometry(),
	}
}

// sectionChange classifies a queued section against its previous-frame
// counterpart at the same call position.
type sectionChange int

const (
	// changeNew means no usable prior state exists; full layout runs.
	changeNew sectionChange = iota

	// changeUnchanged means content and geometry are identical; cached
	// glyphs and vertices are reused verbatim.
	changeUnchanged

	// changeGeometry means only the screen placement moved; glyphs are
	// translated and only vertex positions are rewritten.
	changeGeometry

	// changeColor means only run colors changed; color fields are
	// rewritten, no relayout or rasterization.
	changeColor

	// changeAlpha means only the alpha channel changed.
	changeAlpha
)

func (c sectionChange) String() string {
	switch c {
	case changeNew:
		return "new"
	case changeUnchanged:
		return "unchanged"
	case changeGeometry:
		return "geometry"
	case changeColor:
		return "color"
	case changeAlpha:
		return "alpha"
	default:
		return "unknown"
	}
}

// classify compares the current hash against the previous frame's.
func classify(prev, cur sectionHash) sectionChange {
	sameGeometry := prev.geometry == cur.geometry
	switch {
	case prev.text == cur.text && sameGeometry:
		return changeUnchanged
	case prev.text == cur.text && prev.geometry.Bounds == cur.geometry.Bounds:
		return changeGeometry
	case prev.textNoAlpha == cur.textNoAlpha && sameGeometry:
		return changeAlpha
	case prev.textNoColor == cur.textNoColor && sameGeometry:
		return changeColor
	default:
		return changeNew
	}
}

func putUint32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

func putUint64(b []byte, v uint64) {
	putUint32(b, uint32(v))
	putUint32(b[4:], uint32(v>>32))
}

func putFloat32(b []byte, v float32) {
	putUint32(b, math.Float32bits(v))
}
