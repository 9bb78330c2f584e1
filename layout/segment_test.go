package layout

import "testing"

func TestSplitBidiLTROnly(t *testing.T) {
	runs := splitBidi("hello")
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}
	if runs[0].rtl {
		t.Error("latin text classified as RTL")
	}
	if runs[0].start != 0 || runs[0].end != 5 {
		t.Errorf("run range = [%d,%d), want [0,5)", runs[0].start, runs[0].end)
	}
}

func TestSplitBidiMixed(t *testing.T) {
	// Latin followed by Hebrew produces at least one RTL run.
	runs := splitBidi("abc שלום")
	if len(runs) < 2 {
		t.Fatalf("got %d runs, want >= 2", len(runs))
	}
	sawRTL := false
	for _, r := range runs {
		if r.rtl {
			sawRTL = true
		}
	}
	if !sawRTL {
		t.Error("no RTL run found in mixed text")
	}
}

func TestSplitBidiEmpty(t *testing.T) {
	if runs := splitBidi(""); runs != nil {
		t.Errorf("splitBidi(\"\") = %v, want nil", runs)
	}
}

func TestSplitBidiCoversAllRunes(t *testing.T) {
	text := "abc שלום xyz"
	runes := []rune(text)
	covered := make([]bool, len(runes))
	for _, r := range splitBidi(text) {
		for i := r.start; i < r.end; i++ {
			if covered[i] {
				t.Errorf("rune %d covered twice", i)
			}
			covered[i] = true
		}
	}
	for i, c := range covered {
		if !c {
			t.Errorf("rune %d not covered by any run", i)
		}
	}
}

func TestRuneToByteOffset(t *testing.T) {
	runes := []rune("aä€b")
	tests := []struct {
		idx  int
		want int
	}{
		{0, 0},
		{1, 1},  // after 'a'
		{2, 3},  // after 'ä' (2 bytes)
		{3, 6},  // after '€' (3 bytes)
		{-1, 0}, // clamped
	}
	for _, tt := range tests {
		if got := runeToByteOffset(runes, tt.idx); got != tt.want {
			t.Errorf("runeToByteOffset(%d) = %d, want %d", tt.idx, got, tt.want)
		}
	}
}
