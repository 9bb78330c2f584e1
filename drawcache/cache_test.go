package drawcache

import (
	"errors"
	"image"
	"sync/atomic"
	"testing"

	"github.com/gogpu/glyphbrush/font"
)

// boxSource renders every glyph as a filled square whose side equals
// the requested ppem, so the glyph id is pure identity. Glyph id 0 has
// no outline.
type boxSource struct {
	outlineCalls atomic.Int64
	failOutline  error
}

func (s *boxSource) GlyphIndex(r rune) (font.GlyphID, bool) {
	return font.GlyphID(r), true
}

func (s *boxSource) Outline(gid font.GlyphID, ppem float32) (*font.Outline, error) {
	s.outlineCalls.Add(1)
	if s.failOutline != nil {
		return nil, s.failOutline
	}
	o := &font.Outline{Advance: ppem}
	if gid == 0 {
		return o, nil
	}
	side := ppem
	o.MoveTo(font.Point{X: 0, Y: 0})
	o.LineTo(font.Point{X: side, Y: 0})
	o.LineTo(font.Point{X: side, Y: side})
	o.LineTo(font.Point{X: 0, Y: side})
	o.LineTo(font.Point{X: 0, Y: 0})
	return o, nil
}

func (s *boxSource) Metrics(ppem float32) font.Metrics {
	return font.Metrics{Ascent: ppem * 0.75, Descent: ppem * 0.25}
}

func (s *boxSource) Advance(gid font.GlyphID, ppem float32) float32 { return ppem }

func (s *boxSource) Kern(a, b font.GlyphID, ppem float32) float32 { return 0 }

func (s *boxSource) Data() []byte { return nil }

func boxGlyph(gid font.GlyphID, x, y float32) Glyph {
	return Glyph{GID: gid, Scale: 16, Position: font.Point{X: x, Y: y}}
}

// sizedGlyph renders as a side x side square under boxSource.
func sizedGlyph(gid font.GlyphID, side float32) Glyph {
	return Glyph{GID: gid, Scale: side}
}

// smallConfig is a 32x32 atlas holding exactly four 16x16 glyphs.
func smallConfig() Config {
	cfg := DefaultConfig()
	cfg.Width, cfg.Height = 32, 32
	cfg.MaxWidth, cfg.MaxHeight = 64, 64
	cfg.Multithreaded = false
	return cfg
}

func cacheOne(t *testing.T, c *Cache, src *boxSource, glyphs ...Glyph) {
	t.Helper()
	for _, g := range glyphs {
		c.QueueGlyph(g)
	}
	if err := c.CacheQueued([]font.Source{src}, nil); err != nil {
		t.Fatalf("CacheQueued: %v", err)
	}
}

func TestCacheQueuedPlacesGlyph(t *testing.T) {
	c := New(smallConfig())
	defer c.Close()
	src := &boxSource{}

	var updates []image.Rectangle
	c.QueueGlyph(boxGlyph(16, 0, 0))
	err := c.CacheQueued([]font.Source{src}, func(r image.Rectangle, px []byte) {
		updates = append(updates, r)
		if len(px) != r.Dx()*r.Dy() {
			t.Errorf("update pixels = %d bytes, want %d", len(px), r.Dx()*r.Dy())
		}
	})
	if err != nil {
		t.Fatalf("CacheQueued: %v", err)
	}
	if len(updates) != 1 {
		t.Fatalf("got %d texture updates, want 1", len(updates))
	}
	if got, want := updates[0], image.Rect(0, 0, 16, 16); got != want {
		t.Errorf("update rect = %v, want %v", got, want)
	}

	tex, px, ok := c.RectFor(boxGlyph(16, 0, 0))
	if !ok {
		t.Fatal("RectFor: glyph not resident after CacheQueued")
	}
	if tex.MinX != 0 || tex.MinY != 0 || tex.MaxX != 0.5 || tex.MaxY != 0.5 {
		t.Errorf("tex coords = %+v, want [0,0 0.5,0.5]", tex)
	}
	if px.MaxX-px.MinX != 16 || px.MaxY-px.MinY != 16 {
		t.Errorf("pixel rect %+v is not 16x16", px)
	}
}

func TestQueueGlyphIdempotent(t *testing.T) {
	c := New(smallConfig())
	defer c.Close()
	src := &boxSource{}

	for i := 0; i < 5; i++ {
		c.QueueGlyph(boxGlyph(16, 0, 0))
	}
	cacheOne(t, c, src)

	if got := c.Stats().Atlas.Placements.Load(); got != 1 {
		t.Errorf("placements = %d, want 1", got)
	}
}

func TestRectStability(t *testing.T) {
	c := New(smallConfig())
	defer c.Close()
	src := &boxSource{}
	g := boxGlyph(16, 3, 7)

	cacheOne(t, c, src, g)
	_, first, ok := c.RectFor(g)
	if !ok {
		t.Fatal("RectFor: not resident")
	}

	for i := 0; i < 3; i++ {
		cacheOne(t, c, src, g)
		_, px, ok := c.RectFor(g)
		if !ok {
			t.Fatalf("pass %d: not resident", i)
		}
		if px != first {
			t.Fatalf("pass %d: rect %+v, want stable %+v", i, px, first)
		}
	}
	if got := c.Stats().Atlas.Placements.Load(); got != 1 {
		t.Errorf("placements = %d, want 1 (repeat passes must hit)", got)
	}
}

func TestLRUEvictsOldestOnly(t *testing.T) {
	c := New(smallConfig())
	defer c.Close()
	src := &boxSource{}

	// Four glyphs at scale 16 fill the 32x32 atlas exactly. Distinct
	// ids keep the keys distinct while every bitmap stays 16x16.
	ids := []font.GlyphID{16, 17, 18, 19}
	for _, id := range ids {
		cacheOne(t, c, src, boxGlyph(id, 0, 0))
	}

	// Refresh everything except the second glyph.
	cacheOne(t, c, src, boxGlyph(16, 0, 0), boxGlyph(18, 0, 0), boxGlyph(19, 0, 0))

	cacheOne(t, c, src, boxGlyph(20, 0, 0))

	if _, _, ok := c.RectFor(boxGlyph(17, 0, 0)); ok {
		t.Error("glyph 17 should have been evicted (least recently used)")
	}
	for _, id := range []font.GlyphID{16, 18, 19, 20} {
		if _, _, ok := c.RectFor(boxGlyph(id, 0, 0)); !ok {
			t.Errorf("glyph %d should still be resident", id)
		}
	}
}

func TestEvictionReusesFreedSlot(t *testing.T) {
	c := New(smallConfig())
	defer c.Close()
	src := &boxSource{}

	// A, B, C, D inserted oldest to newest fill the atlas.
	for _, id := range []font.GlyphID{16, 17, 18, 19} {
		cacheOne(t, c, src, boxGlyph(id, 0, 0))
	}
	_, rectA, ok := c.RectFor(boxGlyph(16, 0, 0))
	if !ok {
		t.Fatal("oldest glyph not resident before eviction")
	}

	cacheOne(t, c, src, boxGlyph(20, 0, 0))

	if _, _, ok := c.RectFor(boxGlyph(16, 0, 0)); ok {
		t.Error("oldest glyph should have been evicted")
	}
	_, rectE, ok := c.RectFor(boxGlyph(20, 0, 0))
	if !ok {
		t.Fatal("new glyph not resident")
	}
	if rectE != rectA {
		t.Errorf("new glyph rect = %+v, want former slot %+v", rectE, rectA)
	}
}

func TestTextureTooSmallRetry(t *testing.T) {
	c := New(smallConfig())
	defer c.Close()
	src := &boxSource{}

	// Five 16x16 glyphs queued in one pass; all are in use, so nothing
	// is evictable and the fifth cannot be placed.
	for _, id := range []font.GlyphID{16, 17, 18, 19, 20} {
		c.QueueGlyph(boxGlyph(id, 0, 0))
	}
	err := c.CacheQueued([]font.Source{src}, nil)
	var tts *TextureTooSmallError
	if !errors.As(err, &tts) {
		t.Fatalf("CacheQueued error = %v, want TextureTooSmallError", err)
	}
	if tts.SuggestedWidth != 64 || tts.SuggestedHeight != 64 {
		t.Errorf("suggested = %dx%d, want 64x64", tts.SuggestedWidth, tts.SuggestedHeight)
	}
	if !c.HasQueued() {
		t.Fatal("queue must survive a capacity failure")
	}

	placedBefore := c.Stats().Atlas.Placements.Load()

	c.Resize(tts.SuggestedWidth, tts.SuggestedHeight)
	if err := c.CacheQueued([]font.Source{src}, nil); err != nil {
		t.Fatalf("retry after resize: %v", err)
	}
	for _, id := range []font.GlyphID{16, 17, 18, 19, 20} {
		if _, _, ok := c.RectFor(boxGlyph(id, 0, 0)); !ok {
			t.Errorf("glyph %d not resident after retry", id)
		}
	}

	// Growth preserves earlier placements; the retry only rasterizes and
	// places the glyph that failed.
	if got := c.Stats().Atlas.Placements.Load(); got != placedBefore+1 {
		t.Errorf("placements after retry = %d, want %d", got, placedBefore+1)
	}
}

func TestResizeGrowthPreservesEntries(t *testing.T) {
	c := New(smallConfig())
	defer c.Close()
	src := &boxSource{}
	g := boxGlyph(16, 0, 0)

	cacheOne(t, c, src, g)
	_, before, _ := c.RectFor(g)

	c.Resize(64, 64)
	_, after, ok := c.RectFor(g)
	if !ok {
		t.Fatal("entry lost on growth")
	}
	if after != before {
		t.Errorf("pixel rect changed on growth: %+v -> %+v", before, after)
	}

	// Shrinking clears the cache.
	c.Resize(32, 32)
	if _, _, ok := c.RectFor(g); ok {
		t.Error("entry survived a shrink")
	}
}

func TestGlyphTooLargeIsFatal(t *testing.T) {
	c := New(smallConfig())
	defer c.Close()
	src := &boxSource{}

	// A 100x100 bitmap exceeds the 64x64 maximum; no resize can help.
	c.QueueGlyph(sizedGlyph(16, 100))
	err := c.CacheQueued([]font.Source{src}, nil)
	if !errors.Is(err, ErrGlyphTooLarge) {
		t.Fatalf("CacheQueued error = %v, want ErrGlyphTooLarge", err)
	}
}

func TestEmptyOutlineGlyph(t *testing.T) {
	c := New(smallConfig())
	defer c.Close()
	src := &boxSource{}
	g := boxGlyph(0, 0, 0)

	cacheOne(t, c, src, g)
	if _, _, ok := c.RectFor(g); ok {
		t.Error("empty glyph must not resolve to a rect")
	}
	calls := src.outlineCalls.Load()

	// A later pass must remember the empty result instead of re-asking.
	cacheOne(t, c, src, g)
	if got := src.outlineCalls.Load(); got != calls {
		t.Errorf("outline calls grew from %d to %d for a known-empty glyph", calls, got)
	}
}

func TestOutlineErrorPropagates(t *testing.T) {
	c := New(smallConfig())
	defer c.Close()
	boom := errors.New("bad glyf data")
	src := &boxSource{failOutline: boom}

	fired := false
	c.QueueGlyph(boxGlyph(16, 0, 0))
	err := c.CacheQueued([]font.Source{src}, func(image.Rectangle, []byte) { fired = true })
	if !errors.Is(err, boom) {
		t.Fatalf("CacheQueued error = %v, want wrapped %v", err, boom)
	}
	if fired {
		t.Error("texture update fired for a failed pass")
	}
}

func TestUnknownFontID(t *testing.T) {
	c := New(smallConfig())
	defer c.Close()

	c.QueueGlyph(Glyph{Font: 3, GID: 16, Scale: 16})
	err := c.CacheQueued([]font.Source{&boxSource{}}, nil)
	if !errors.Is(err, ErrUnknownFont) {
		t.Fatalf("CacheQueued error = %v, want ErrUnknownFont", err)
	}
}

func TestSerialParallelSamePixels(t *testing.T) {
	run := func(multithreaded bool) []byte {
		cfg := DefaultConfig()
		cfg.Width, cfg.Height = 128, 128
		cfg.Multithreaded = multithreaded
		cfg.ParallelThreshold = 1
		c := New(cfg)
		defer c.Close()
		src := &boxSource{}

		for id := font.GlyphID(4); id < 24; id++ {
			c.QueueGlyph(sizedGlyph(id, float32(id)))
		}
		if err := c.CacheQueued([]font.Source{src}, nil); err != nil {
			t.Fatalf("CacheQueued(multithreaded=%v): %v", multithreaded, err)
		}
		out := make([]byte, len(c.Pixels()))
		copy(out, c.Pixels())
		return out
	}

	serial := run(false)
	parallel := run(true)
	if len(serial) != len(parallel) {
		t.Fatalf("pixel buffer sizes differ: %d vs %d", len(serial), len(parallel))
	}
	for i := range serial {
		if serial[i] != parallel[i] {
			t.Fatalf("pixel %d differs: serial=%d parallel=%d", i, serial[i], parallel[i])
		}
	}
}

func TestClearDropsEntries(t *testing.T) {
	c := New(smallConfig())
	defer c.Close()
	src := &boxSource{}
	g := boxGlyph(16, 0, 0)

	cacheOne(t, c, src, g)
	c.Clear()
	if _, _, ok := c.RectFor(g); ok {
		t.Error("entry survived Clear")
	}

	cacheOne(t, c, src, g)
	if _, _, ok := c.RectFor(g); !ok {
		t.Error("cache unusable after Clear")
	}
}

func TestHitMissCounters(t *testing.T) {
	c := New(smallConfig())
	defer c.Close()
	src := &boxSource{}
	g := boxGlyph(16, 0, 0)

	cacheOne(t, c, src, g)
	cacheOne(t, c, src, g)

	if got := c.Stats().Misses.Load(); got != 1 {
		t.Errorf("misses = %d, want 1", got)
	}
	if got := c.Stats().Hits.Load(); got != 1 {
		t.Errorf("hits = %d, want 1", got)
	}
}

func TestToleranceAccessors(t *testing.T) {
	c := New(Config{ScaleTolerance: 0.5, PositionTolerance: 0.25})
	defer c.Close()
	if c.ScaleTolerance() != 0.5 || c.PositionTolerance() != 0.25 {
		t.Errorf("tolerances = %v/%v, want 0.5/0.25", c.ScaleTolerance(), c.PositionTolerance())
	}
}

func BenchmarkCacheQueued(b *testing.B) {
	bench := func(b *testing.B, multithreaded bool) {
		cfg := DefaultConfig()
		cfg.Multithreaded = multithreaded
		cfg.ParallelThreshold = 1
		c := New(cfg)
		defer c.Close()
		src := &boxSource{}

		for i := 0; i < b.N; i++ {
			c.Clear()
			for id := font.GlyphID(4); id < 36; id++ {
				c.QueueGlyph(sizedGlyph(id, float32(id)))
			}
			if err := c.CacheQueued([]font.Source{src}, nil); err != nil {
				b.Fatal(err)
			}
		}
	}
	b.Run("serial", func(b *testing.B) { bench(b, false) })
	b.Run("parallel", func(b *testing.B) { bench(b, true) })
}
