package layout

import (
	"golang.org/x/text/unicode/bidi"
)

// bidiRun is a directionally uniform slice of a text run.
type bidiRun struct {
	// start and end are rune indices into the source text.
	start, end int

	// rtl reports right-to-left direction.
	rtl bool
}

// splitBidi splits text into directional runs using the Unicode bidi
// algorithm. Returns a single LTR run for text the algorithm cannot order.
func splitBidi(text string) []bidiRun {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	p := bidi.Paragraph{}
	if _, err := p.SetString(text, bidi.DefaultDirection(bidi.Neutral)); err != nil {
		return []bidiRun{{start: 0, end: len(runes)}}
	}

	ordering, err := p.Order()
	if err != nil {
		return []bidiRun{{start: 0, end: len(runes)}}
	}

	runs := make([]bidiRun, 0, ordering.NumRuns())
	for i := 0; i < ordering.NumRuns(); i++ {
		run := ordering.Run(i)
		// Pos returns inclusive rune indices.
		start, end := run.Pos()
		runs = append(runs, bidiRun{
			start: start,
			end:   end + 1,
			rtl:   run.Direction() == bidi.RightToLeft,
		})
	}
	if len(runs) == 0 {
		return []bidiRun{{start: 0, end: len(runes)}}
	}
	return runs
}
