// Package drawcache maintains a cache of rasterized glyphs packed into a
// single texture atlas, with the goal of minimising the size and frequency
// of glyph uploads to GPU memory.
//
// The cache does not assume a particular graphics API. Queue the glyphs
// needed for the current frame with [Cache.QueueGlyph], make them resident
// with [Cache.CacheQueued] (providing a callback that uploads pixel data to
// the real texture), then read texture coordinates back with
// [Cache.RectFor].
//
// Packing is shelf-based: glyph bitmaps are appended to fixed-height
// horizontal rows. Under pressure the globally least-recently-used entry is
// evicted until the pending glyph fits; when even maximal eviction cannot
// make room, [Cache.CacheQueued] fails with a [TextureTooSmallError] carrying
// a suggested size, and the caller is expected to resize the backing texture,
// call [Cache.Resize], and retry the same queue.
//
// Population of missing entries is parallel: above a configured threshold,
// pending glyphs are rasterized by a work-stealing worker pool and the
// finished bitmaps are funneled back to the calling goroutine, which alone
// mutates the atlas.
package drawcache
