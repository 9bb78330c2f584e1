// Package glyphbrush caches rendered glyphs and diffs text frames so
// that repeated rendering of mostly-unchanged text costs close to
// nothing.
//
// The package is split along its data flow:
//
//   - font wraps outline extraction and rasterization (SFNT fonts via
//     golang.org/x/image/font/sfnt, coverage via golang.org/x/image/vector).
//   - layout turns section text into positioned glyphs, either with a
//     simple built-in left-to-right positioner or with full shaping
//     through github.com/go-text/typesetting.
//   - drawcache packs rasterized glyph bitmaps into a shelf-organized
//     alpha atlas with LRU eviction and parallel rasterization.
//   - the root package ties it together: a Brush queues sections each
//     frame, classifies what changed since the previous frame, and
//     produces either a fresh vertex buffer or a signal that the last
//     one is still valid.
//
// A minimal frame loop:
//
//	src, _ := font.ParseSFNT(ttfData)
//	brush := glyphbrush.NewBrush(glyphbrush.WithFonts(src))
//	defer brush.Close()
//
//	for frame := range frames {
//	    brush.Queue(glyphbrush.NewSection("hello", 24, 10, 40))
//	    action, err := brush.ProcessQueued(uploadRegion)
//	    var tts *glyphbrush.TextureTooSmallError
//	    if errors.As(err, &tts) {
//	        brush.ResizeTexture(tts.SuggestedWidth, tts.SuggestedHeight)
//	        resizeGPUTexture(tts.SuggestedWidth, tts.SuggestedHeight)
//	        action, err = brush.ProcessQueued(uploadRegion)
//	    }
//	    if action.Kind == glyphbrush.BrushDraw {
//	        uploadVertices(action.Vertices)
//	    }
//	    draw()
//	}
package glyphbrush
