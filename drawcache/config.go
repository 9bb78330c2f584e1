package drawcache

// Default configuration values.
const (
	// DefaultSize is the default initial atlas dimension.
	DefaultSize = 256

	// DefaultMaxSize is the default maximum atlas dimension.
	DefaultMaxSize = 4096

	// DefaultTolerance is the default scale and position tolerance.
	DefaultTolerance = 0.1

	// minTolerance guards against effectively-zero tolerances, which
	// would duplicate near-identical glyphs due to float inaccuracy.
	minTolerance = 0.001

	// DefaultParallelThreshold is the pending-glyph count below which a
	// population pass stays single-threaded; dispatch overhead dominates
	// for tiny batches.
	DefaultParallelThreshold = 8
)

// Config holds draw cache configuration. All fields affect cache-hit
// behaviour and packing density, not correctness.
type Config struct {
	// Width and Height are the initial atlas dimensions in texels.
	// Default: DefaultSize.
	Width  uint32
	Height uint32

	// MaxWidth and MaxHeight cap atlas growth. A glyph that cannot fit an
	// empty atlas at this size is a fatal condition.
	// Default: DefaultMaxSize.
	MaxWidth  uint32
	MaxHeight uint32

	// ScaleTolerance is the maximum scale difference, in pixels, for two
	// glyph requests to share a cache entry. Clamped to at least 0.001.
	// Default: DefaultTolerance.
	ScaleTolerance float32

	// PositionTolerance is the maximum sub-pixel offset difference, in
	// pixels, for two glyph requests to share a cache entry. Values of
	// 1.0 or higher effectively disable sub-pixel variants.
	// Clamped to at least 0.001. Default: DefaultTolerance.
	PositionTolerance float32

	// Multithreaded enables the parallel population path.
	// Default: true (disabled only when explicitly set off via
	// DefaultConfig followed by Multithreaded = false).
	Multithreaded bool

	// Workers is the rasterization worker count hint.
	// 0 or negative means GOMAXPROCS.
	Workers int

	// ParallelThreshold is the minimum number of pending glyphs before
	// the parallel path is used. Default: DefaultParallelThreshold.
	ParallelThreshold int
}

// DefaultConfig returns the default draw cache configuration.
func DefaultConfig() Config {
	return Config{
		Width:             DefaultSize,
		Height:            DefaultSize,
		MaxWidth:          DefaultMaxSize,
		MaxHeight:         DefaultMaxSize,
		ScaleTolerance:    DefaultTolerance,
		PositionTolerance: DefaultTolerance,
		Multithreaded:     true,
		ParallelThreshold: DefaultParallelThreshold,
	}
}

// sanitize fills zero values with defaults and clamps tolerances.
func (c Config) sanitize() Config {
	if c.Width == 0 {
		c.Width = DefaultSize
	}
	if c.Height == 0 {
		c.Height = DefaultSize
	}
	if c.MaxWidth == 0 {
		c.MaxWidth = DefaultMaxSize
	}
	if c.MaxHeight == 0 {
		c.MaxHeight = DefaultMaxSize
	}
	if c.MaxWidth < c.Width {
		c.MaxWidth = c.Width
	}
	if c.MaxHeight < c.Height {
		c.MaxHeight = c.Height
	}
	if c.ScaleTolerance < minTolerance {
		c.ScaleTolerance = minTolerance
	}
	if c.PositionTolerance < minTolerance {
		c.PositionTolerance = minTolerance
	}
	if c.ParallelThreshold <= 0 {
		c.ParallelThreshold = DefaultParallelThreshold
	}
	return c
}
