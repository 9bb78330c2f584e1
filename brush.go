package glyphbrush

import (
	"image"

	"github.com/gogpu/glyphbrush/drawcache"
	"github.com/gogpu/glyphbrush/font"
	"github.com/gogpu/glyphbrush/layout"
)

// TextureTooSmallError reports that the glyph atlas cannot hold a
// frame's glyphs. See drawcache.TextureTooSmallError for the retry
// contract; Brush.ResizeTexture performs the cache side of the resize.
type TextureTooSmallError = drawcache.TextureTooSmallError

// BrushActionKind discriminates the result of ProcessQueued.
type BrushActionKind int

const (
	// BrushDraw means the frame produced a new vertex buffer that must
	// replace the previous one.
	BrushDraw BrushActionKind = iota

	// BrushReDraw means the previous frame's vertex buffer is still
	// valid and nothing needs uploading.
	BrushReDraw
)

// BrushAction is the per-frame result. Vertices is populated only for
// BrushDraw.
type BrushAction struct {
	Kind     BrushActionKind
	Vertices []GlyphVertex
}

// frameSection is one Queue call of the current frame.
type frameSection struct {
	section Section
	hash    sectionHash
	fullKey uint64
	change  sectionChange
}

// ledgerEntry records one Queue call of the previous frame, in call
// order. The ledger is replaced wholesale at the end of each frame.
type ledgerEntry struct {
	hash    sectionHash
	fullKey uint64
}

// cachedSection holds the positioned glyphs and generated vertices of
// one section, keyed by the section's full content+geometry hash.
type cachedSection struct {
	glyphs []layout.Glyph
	texts  []Text
	geom   layout.SectionGeometry

	// vertices is nil until built for the current atlas contents.
	vertices []GlyphVertex

	// vertexGlyph maps each vertex to its glyph index, so color and
	// alpha rewrites can follow recalculated glyphs without relayout.
	vertexGlyph []int
}

// Brush turns per-frame section queues into cached vertex buffers. It
// diffs each frame against the previous one so that unchanged text
// costs neither layout nor rasterization, and a pure geometry, color or
// alpha change costs only a field rewrite of cached vertices.
//
// A Brush is driven from one goroutine per frame: Queue every section,
// then call ProcessQueued once. Rasterization fans out internally when
// multithreading is enabled.
type Brush struct {
	fonts      []font.Source
	positioner layout.Positioner
	cache      *drawcache.Cache

	queued []frameSection
	prev   []ledgerEntry
	cached map[uint64]*cachedSection
	keep   []uint64

	// lastSequence is the ordered list of section keys behind the last
	// Draw result, used to decide Draw versus ReDraw.
	lastSequence []uint64

	// texChanged forces a full vertex rebuild after a texture resize,
	// since normalized atlas coordinates depend on the dimensions.
	texChanged bool

	cachePositioning bool
	cacheDrawing     bool
}

// NewBrush creates a brush. Without options it has no fonts and uses
// the built-in positioner with a default-size cache.
func NewBrush(opts ...Option) *Brush {
	o := defaultBrushOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.positioner == nil {
		o.positioner = layout.NewBuiltin()
	}
	return &Brush{
		fonts:            o.fonts,
		positioner:       o.positioner,
		cache:            drawcache.New(o.cache),
		cached:           make(map[uint64]*cachedSection),
		cachePositioning: o.cachePositioning,
		cacheDrawing:     o.cacheDrawing,
	}
}

// AddFont registers a font source and returns its id for use in Text.
func (b *Brush) AddFont(src font.Source) font.FontID {
	b.fonts = append(b.fonts, src)
	return font.FontID(len(b.fonts) - 1)
}

// FontCount returns the number of registered fonts.
func (b *Brush) FontCount() int { return len(b.fonts) }

// Fonts returns the registered font sources in id order. The slice is
// shared; callers must not mutate it.
func (b *Brush) Fonts() []font.Source { return b.fonts }

// Queue adds a section to the current frame. Call order is significant:
// the frame diff matches sections by call position, so animating text
// should be queued at a stable position every frame.
func (b *Brush) Queue(s Section) {
	b.queued = append(b.queued, frameSection{
		section: s,
		hash:    hashSection(s),
	})
}

// KeepCached retains a section's cached layout and vertices across a
// frame that does not draw it, so re-queueing it later stays cheap.
func (b *Brush) KeepCached(s Section) {
	b.keep = append(b.keep, hashSection(s).full())
}

// ProcessQueued resolves the queued frame into a draw action. onUpdate
// receives every updated atlas pixel region; it may be nil when the
// caller polls TexturePixels instead.
//
// On a TextureTooSmallError no state is committed: the queued sections
// and the previous frame's ledger survive, so the caller resizes via
// ResizeTexture and calls ProcessQueued again.
func (b *Brush) ProcessQueued(onUpdate func(rect image.Rectangle, pixels []byte)) (BrushAction, error) {
	b.classifyFrame()

	// Every drawn section's glyphs are requested each frame. Cache hits
	// only advance recency; this is what protects resident glyphs from
	// eviction while they are still on screen.
	for i := range b.queued {
		fs := &b.queued[i]
		for _, g := range b.cached[fs.fullKey].glyphs {
			if g.Empty {
				continue
			}
			b.cache.QueueGlyph(drawcache.Glyph{
				Font:     g.Font,
				GID:      g.GID,
				Scale:    g.Scale,
				Position: g.Position,
			})
		}
	}

	placedBefore := b.cache.Stats().Atlas.Placements.Load()
	if err := b.cache.CacheQueued(b.fonts, onUpdate); err != nil {
		return BrushAction{}, err
	}
	texMutated := b.cache.Stats().Atlas.Placements.Load() != placedBefore

	rebuildAll := texMutated || b.texChanged
	changed := rebuildAll || !b.cacheDrawing
	sequence := make([]uint64, len(b.queued))
	total := 0
	for i := range b.queued {
		fs := &b.queued[i]
		entry := b.cached[fs.fullKey]
		if rebuildAll || entry.vertices == nil {
			b.buildVertices(entry)
			changed = true
		}
		if fs.change != changeUnchanged {
			changed = true
		}
		sequence[i] = fs.fullKey
		total += len(entry.vertices)
	}
	if !sequenceEqual(sequence, b.lastSequence) {
		changed = true
	}

	action := BrushAction{Kind: BrushReDraw}
	if changed {
		vertices := make([]GlyphVertex, 0, total)
		for i := range b.queued {
			vertices = append(vertices, b.cached[b.queued[i].fullKey].vertices...)
		}
		action = BrushAction{Kind: BrushDraw, Vertices: vertices}
		b.lastSequence = sequence
	}

	b.commitFrame(sequence)
	Logger().Debug("processed frame",
		"sections", len(sequence),
		"vertices", total,
		"texture_mutated", texMutated,
		"redraw", action.Kind == BrushReDraw)
	return action, nil
}

// classifyFrame diffs every queued section against the previous ledger
// and makes sure each one has positioned glyphs, running the positioner
// fully only for sections that genuinely changed content.
func (b *Brush) classifyFrame() {
	for i := range b.queued {
		fs := &b.queued[i]
		fs.fullKey = fs.hash.full()
		if !b.cachePositioning {
			fs.change = changeNew
			geom := fs.section.geometry()
			b.cached[fs.fullKey] = &cachedSection{
				texts:  fs.section.Texts,
				geom:   geom,
				glyphs: b.positioner.Layout(b.fonts, geom, fs.section.Texts),
			}
			continue
		}
		if _, done := b.cached[fs.fullKey]; done {
			// Already positioned, either by the previous frame or by an
			// earlier retry of this one.
			if i < len(b.prev) && b.prev[i].fullKey == fs.fullKey {
				fs.change = changeUnchanged
			}
			continue
		}

		fs.change = changeNew
		var prevEntry *ledgerEntry
		if i < len(b.prev) {
			prevEntry = &b.prev[i]
			fs.change = classify(prevEntry.hash, fs.hash)
		}

		var old *cachedSection
		if fs.change != changeNew {
			old = b.cached[prevEntry.fullKey]
			if old == nil {
				fs.change = changeNew
			}
		}

		geom := fs.section.geometry()
		entry := &cachedSection{texts: fs.section.Texts, geom: geom}
		switch fs.change {
		case changeUnchanged:
			entry = old
		case changeGeometry, changeColor, changeAlpha:
			entry.glyphs = b.positioner.Recalculate(old.glyphs, layout.Change{
				Kind:             changeKind(fs.change),
				PreviousGeometry: prevEntry.hash.geometry,
			}, b.fonts, geom, fs.section.Texts)
			b.patchVertices(entry, old, fs.change, prevEntry.hash.geometry, geom)
		default:
			entry.glyphs = b.positioner.Layout(b.fonts, geom, fs.section.Texts)
		}
		b.cached[fs.fullKey] = entry
	}
}

// patchVertices derives a section's vertices from an already-built set
// by rewriting only the fields the change touches.
func (b *Brush) patchVertices(entry, old *cachedSection, change sectionChange, prevGeom, geom layout.SectionGeometry) {
	if old.vertices == nil {
		return
	}
	entry.vertices = make([]GlyphVertex, len(old.vertices))
	copy(entry.vertices, old.vertices)
	entry.vertexGlyph = old.vertexGlyph

	switch change {
	case changeGeometry:
		dx := geom.ScreenPosition.X - prevGeom.ScreenPosition.X
		dy := geom.ScreenPosition.Y - prevGeom.ScreenPosition.Y
		for i := range entry.vertices {
			v := &entry.vertices[i]
			v.MinX += dx
			v.MaxX += dx
			v.MinY += dy
			v.MaxY += dy
		}
	case changeColor, changeAlpha:
		for i, gi := range entry.vertexGlyph {
			entry.vertices[i].Color = entry.glyphs[gi].Color
		}
	}
}

// buildVertices regenerates a section's vertices from the draw cache.
// Quads outside the section bounds are dropped, overlapping ones are
// clipped to the bounds edges.
func (b *Brush) buildVertices(entry *cachedSection) {
	clip := sectionClip(entry.geom)
	entry.vertices = make([]GlyphVertex, 0, len(entry.glyphs))
	entry.vertexGlyph = entry.vertexGlyph[:0]
	for gi, g := range entry.glyphs {
		if g.Empty {
			continue
		}
		tex, px, ok := b.cache.RectFor(drawcache.Glyph{
			Font:     g.Font,
			GID:      g.GID,
			Scale:    g.Scale,
			Position: g.Position,
		})
		if !ok {
			continue
		}
		tex, px, visible := clipQuad(tex, px, clip)
		if !visible {
			continue
		}
		entry.vertices = append(entry.vertices, makeVertex(tex, px, g.Color))
		entry.vertexGlyph = append(entry.vertexGlyph, gi)
	}
}

// commitFrame swaps the ledger and drops cached sections that were
// neither queued nor marked with KeepCached.
func (b *Brush) commitFrame(sequence []uint64) {
	ledger := make([]ledgerEntry, len(b.queued))
	retain := make(map[uint64]*cachedSection, len(sequence)+len(b.keep))
	for i := range b.queued {
		fs := &b.queued[i]
		ledger[i] = ledgerEntry{hash: fs.hash, fullKey: fs.fullKey}
		retain[fs.fullKey] = b.cached[fs.fullKey]
	}
	for _, key := range b.keep {
		if entry, ok := b.cached[key]; ok {
			retain[key] = entry
		}
	}
	b.prev = ledger
	b.cached = retain
	b.queued = b.queued[:0]
	b.keep = b.keep[:0]
	b.texChanged = false
}

// ResizeTexture grows or shrinks the glyph atlas. Call it after a
// TextureTooSmallError with at least the suggested dimensions, resize
// the GPU-side texture to match, then repeat ProcessQueued.
func (b *Brush) ResizeTexture(width, height uint32) {
	b.cache.Resize(width, height)
	b.texChanged = true
}

// TextureDimensions returns the current atlas size in texels.
func (b *Brush) TextureDimensions() (width, height uint32) {
	return b.cache.Dimensions()
}

// TexturePixels exposes the CPU-side alpha coverage buffer backing the
// atlas, row-major at TextureDimensions. Useful for callers that upload
// the whole texture instead of consuming per-region updates.
func (b *Brush) TexturePixels() []byte {
	return b.cache.Pixels()
}

// Glyphs lays out a section and returns its positioned glyphs, reusing
// the frame cache when the section was recently processed. It does not
// queue anything.
func (b *Brush) Glyphs(s Section) []layout.Glyph {
	if entry, ok := b.cached[hashSection(s).full()]; ok {
		return entry.glyphs
	}
	return b.positioner.Layout(b.fonts, s.geometry(), s.Texts)
}

// GlyphBounds returns the tight pixel bounding box of a section's
// visible glyph outlines and false when the section produces none.
func (b *Brush) GlyphBounds(s Section) (minX, minY, maxX, maxY float32, ok bool) {
	for _, g := range b.Glyphs(s) {
		if g.Empty {
			continue
		}
		outline, err := b.fonts[g.Font].Outline(g.GID, g.Scale)
		if err != nil || outline.IsEmpty() {
			continue
		}
		gMinX, gMaxX := g.Position.X+outline.MinX, g.Position.X+outline.MaxX
		gMinY, gMaxY := g.Position.Y+outline.MinY, g.Position.Y+outline.MaxY
		if !ok {
			minX, minY, maxX, maxY = gMinX, gMinY, gMaxX, gMaxY
			ok = true
			continue
		}
		minX = min(minX, gMinX)
		minY = min(minY, gMinY)
		maxX = max(maxX, gMaxX)
		maxY = max(maxY, gMaxY)
	}
	return minX, minY, maxX, maxY, ok
}

// Close releases the draw cache resources.
func (b *Brush) Close() {
	b.cache.Close()
}

func changeKind(c sectionChange) layout.ChangeKind {
	switch c {
	case changeGeometry:
		return layout.ChangeGeometry
	case changeAlpha:
		return layout.ChangeAlpha
	default:
		return layout.ChangeColor
	}
}

func sequenceEqual(a, b []uint64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
