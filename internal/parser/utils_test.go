package parser

import (
	"testing"

	"findash/internal/model"
)

func TestParseNumber_Formats(t *testing.T) {
	t.Parallel()

	cases := map[string]float64{
		"1,234":     1234,
		"$1,234.50": 1234.5,
		"(1,000)":   -1000,
		" 12 % ":    12,
		"-3.5":      -3.5,
		"1 000":     1000,
		"$(1,234)":  -1234,
		"($1,234)":  -1234,
		"( 250 )":   -250,
	}
	for in, want := range cases {
		got, ok := ParseNumber(in)
		if !ok {
			t.Fatalf("ParseNumber(%q) not ok", in)
		}
		if got != want {
			t.Fatalf("ParseNumber(%q)=%v, want %v", in, got, want)
		}
	}

	for _, in := range []string{"", "abc", "NaN", "inf", "$", "$()"} {
		if _, ok := ParseNumber(in); ok {
			t.Fatalf("ParseNumber(%q) should fail", in)
		}
	}
}

func TestToFloat_ZeroFill(t *testing.T) {
	t.Parallel()

	if got := ToFloat(model.StringCell("n/a")); got != 0 {
		t.Fatalf("text cell=%v, want 0", got)
	}
	if got := ToFloat(model.EmptyCell()); got != 0 {
		t.Fatalf("empty cell=%v, want 0", got)
	}
	if got := ToFloat(model.NumberCell(42)); got != 42 {
		t.Fatalf("number cell=%v, want 42", got)
	}
	if got := ToFloat(model.StringCell("$2,500")); got != 2500 {
		t.Fatalf("currency text=%v, want 2500", got)
	}
}

func TestNormalizeLabel_CollapsesWhitespace(t *testing.T) {
	t.Parallel()

	if got := NormalizeLabel("  Total \t billables "); got != "Total billables" {
		t.Fatalf("NormalizeLabel=%q", got)
	}
}

func TestFitWidth(t *testing.T) {
	t.Parallel()

	got := FitWidth([]float64{1, 2, 3}, 5)
	if len(got) != 5 || got[2] != 3 || got[4] != 0 {
		t.Fatalf("FitWidth pad=%v", got)
	}
	got = FitWidth([]float64{1, 2, 3}, 2)
	if len(got) != 2 || got[1] != 2 {
		t.Fatalf("FitWidth truncate=%v", got)
	}
}
