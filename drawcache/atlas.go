package drawcache

import (
	"image"
	"sync/atomic"
)

// cacheEntry is one rasterized glyph variant resident in the atlas.
type cacheEntry struct {
	key glyphKey

	// Packed texel rectangle within the atlas.
	rect image.Rectangle

	// Screen-space bounds of the rasterized bitmap relative to the
	// glyph origin, captured at placement time so rect_for can project
	// the rect onto any later position sharing the same key.
	boundsMinX float32
	boundsMinY float32

	row *atlasRow

	// prev and next for the global LRU recency list.
	prev *cacheEntry
	next *cacheEntry
}

// atlasRow is one horizontal shelf. Height is fixed at creation from the
// first glyph placed; the cursor only moves right while entries exist,
// and pulls back when trailing entries are evicted.
type atlasRow struct {
	y      uint32
	height uint32
	cursor uint32

	// Entries ordered by ascending x. Removing a non-trailing entry
	// leaves a hole that is not reused until the row empties.
	entries []*cacheEntry
}

// trailing reports whether e occupies the rightmost slot of the row.
func (r *atlasRow) trailing(e *cacheEntry) bool {
	return len(r.entries) > 0 && r.entries[len(r.entries)-1] == e
}

// remove deletes e from the row and reclaims trailing space.
func (r *atlasRow) remove(e *cacheEntry) {
	for i, re := range r.entries {
		if re == e {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			break
		}
	}
	if len(r.entries) == 0 {
		r.cursor = 0
		return
	}
	last := r.entries[len(r.entries)-1]
	if edge := uint32(last.rect.Max.X); edge < r.cursor {
		r.cursor = edge
	}
}

// AtlasStats holds cumulative atlas counters.
type AtlasStats struct {
	Placements atomic.Uint64
	Evictions  atomic.Uint64
	Resets     atomic.Uint64
}

// atlas owns the packed pixel buffer and all row and recency bookkeeping.
// It is mutated only by the single goroutine running a population pass,
// so it carries no lock of its own.
type atlas struct {
	width  uint32
	height uint32

	// Alpha coverage, width*height bytes, row-major.
	pixels []byte

	// Rows ordered by creation (equivalently by ascending y).
	rows []*atlasRow

	// Global recency list, head most recent, tail least recent.
	head *cacheEntry
	tail *cacheEntry

	entries map[glyphKey]*cacheEntry

	stats *AtlasStats
}

func newAtlas(width, height uint32, stats *AtlasStats) *atlas {
	return &atlas{
		width:   width,
		height:  height,
		pixels:  make([]byte, width*height),
		rows:    make([]*atlasRow, 0, 16),
		entries: make(map[glyphKey]*cacheEntry),
		stats:   stats,
	}
}

// lookup returns the live entry for key, without touching recency.
func (a *atlas) lookup(key glyphKey) (*cacheEntry, bool) {
	e, ok := a.entries[key]
	return e, ok
}

// touch moves e to the most-recent position.
func (a *atlas) touch(e *cacheEntry) {
	if a.head == e {
		return
	}
	a.unlink(e)
	a.pushFront(e)
}

// tryPlace finds space for a w*h glyph and registers its entry. Rows are
// scanned first-fit in creation order; a new row opens below the lowest
// one when none fits. Returns false when only eviction could make room.
func (a *atlas) tryPlace(key glyphKey, w, h uint32, boundsMinX, boundsMinY float32) (*cacheEntry, bool) {
	if w > a.width || h > a.height {
		return nil, false
	}

	for _, r := range a.rows {
		if r.height >= h && r.cursor+w <= a.width {
			return a.placeInRow(r, key, w, h, boundsMinX, boundsMinY), true
		}
	}

	bottom := uint32(0)
	if n := len(a.rows); n > 0 {
		last := a.rows[n-1]
		bottom = last.y + last.height
	}
	if bottom+h <= a.height {
		r := &atlasRow{y: bottom, height: h}
		a.rows = append(a.rows, r)
		return a.placeInRow(r, key, w, h, boundsMinX, boundsMinY), true
	}

	return nil, false
}

func (a *atlas) placeInRow(r *atlasRow, key glyphKey, w, h uint32, boundsMinX, boundsMinY float32) *cacheEntry {
	e := &cacheEntry{
		key: key,
		rect: image.Rect(
			int(r.cursor), int(r.y),
			int(r.cursor+w), int(r.y+h),
		),
		boundsMinX: boundsMinX,
		boundsMinY: boundsMinY,
		row:        r,
	}
	r.cursor += w
	r.entries = append(r.entries, e)
	a.entries[key] = e
	a.pushFront(e)
	if a.stats != nil {
		a.stats.Placements.Add(1)
	}
	return e
}

// evictOne removes the least-recently-used entry not present in inUse.
// Returns false when every remaining entry is in use.
func (a *atlas) evictOne(inUse map[glyphKey]struct{}) bool {
	for e := a.tail; e != nil; e = e.prev {
		if _, used := inUse[e.key]; used {
			continue
		}
		a.removeEntry(e)
		if a.stats != nil {
			a.stats.Evictions.Add(1)
		}
		return true
	}
	return false
}

func (a *atlas) removeEntry(e *cacheEntry) {
	e.row.remove(e)
	a.unlink(e)
	delete(a.entries, e.key)

	// Once every row is empty the height partitioning is stale; start
	// the packing from scratch.
	if len(a.entries) == 0 && len(a.rows) > 0 {
		a.rows = a.rows[:0]
		if a.stats != nil {
			a.stats.Resets.Add(1)
		}
	}
}

// writePixels copies an alpha bitmap into the entry's rectangle.
func (a *atlas) writePixels(e *cacheEntry, mask *image.Alpha) {
	w := e.rect.Dx()
	for y := 0; y < e.rect.Dy(); y++ {
		dst := (e.rect.Min.Y+y)*int(a.width) + e.rect.Min.X
		src := y * mask.Stride
		copy(a.pixels[dst:dst+w], mask.Pix[src:src+w])
	}
}

// regionPixels returns a tightly packed copy of the atlas pixels inside
// rect, suitable for handing to a texture-update callback.
func (a *atlas) regionPixels(rect image.Rectangle) []byte {
	w, h := rect.Dx(), rect.Dy()
	out := make([]byte, w*h)
	for y := 0; y < h; y++ {
		src := (rect.Min.Y+y)*int(a.width) + rect.Min.X
		copy(out[y*w:(y+1)*w], a.pixels[src:src+w])
	}
	return out
}

// texCoords returns the normalized coordinates of an entry rectangle.
func (a *atlas) texCoords(rect image.Rectangle) TexCoords {
	fw, fh := float32(a.width), float32(a.height)
	return TexCoords{
		MinX: float32(rect.Min.X) / fw,
		MinY: float32(rect.Min.Y) / fh,
		MaxX: float32(rect.Max.X) / fw,
		MaxY: float32(rect.Max.Y) / fh,
	}
}

// clear drops every entry, row and pixel.
func (a *atlas) clear() {
	a.rows = a.rows[:0]
	a.head = nil
	a.tail = nil
	clear(a.entries)
	clear(a.pixels)
}

func (a *atlas) pushFront(e *cacheEntry) {
	e.prev = nil
	e.next = a.head
	if a.head != nil {
		a.head.prev = e
	}
	a.head = e
	if a.tail == nil {
		a.tail = e
	}
}

func (a *atlas) unlink(e *cacheEntry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		a.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		a.tail = e.prev
	}
	e.prev = nil
	e.next = nil
}
