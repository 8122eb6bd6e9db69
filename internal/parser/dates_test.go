package parser_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"findash/internal/model"
	"findash/internal/parser"
)

func TestParseDateLayouts(t *testing.T) {
	t.Parallel()

	cases := map[string]time.Time{
		"2025-01-15":          time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		"2025-01-15 08:30:00": time.Date(2025, 1, 15, 8, 30, 0, 0, time.UTC),
		"01/28/2025":          time.Date(2025, 1, 28, 0, 0, 0, 0, time.UTC),
		"2/3/2025":            time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC),
		"Mar 2025":            time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		"Apr-25":              time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC),
		"May 25":              time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC),
		"JUNE 2025":           time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		"2025-07":             time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
	}
	for in, want := range cases {
		got, ok := parser.ParseDate(in)
		require.True(t, ok, in)
		assert.True(t, want.Equal(got), "%s: got %s", in, got)
	}

	for _, in := range []string{"", "soon", "13/45/2025", "100"} {
		_, ok := parser.ParseDate(in)
		assert.False(t, ok, in)
	}
}

func TestDateCandidates(t *testing.T) {
	t.Parallel()

	tbl := table([]any{"Posting Date", "Month", "period", "Amount", "Owner"})
	assert.Equal(t, []string{"Posting Date", "Month", "period"}, parser.DateCandidates(tbl))
}

func TestNormalizeDatesIsLenientAndCopies(t *testing.T) {
	t.Parallel()

	tbl := table(
		[]any{"date", "revenue"},
		[]any{"2025-01-15", 100},
		[]any{"not a date", 50},
		[]any{"", 10},
	)

	out := parser.NormalizeDates(tbl, nil)
	require.NotNil(t, out)

	assert.Equal(t, model.CellDate, out.Cell(0, 0).Kind)
	assert.Equal(t, model.CellString, out.Cell(1, 0).Kind)
	assert.Equal(t, "not a date", out.Cell(1, 0).Str)
	assert.True(t, out.Cell(2, 0).IsEmpty())

	// 原表不变
	assert.Equal(t, model.CellString, tbl.Cell(0, 0).Kind)
}

func TestMonthHelpers(t *testing.T) {
	t.Parallel()

	ts := time.Date(2025, 3, 17, 13, 4, 5, 0, time.UTC)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), parser.MonthStart(ts))
	assert.Equal(t, "Mar", parser.MonthLabel(ts))
	assert.Equal(t, "Mar 2025", parser.MonthYearLabel(ts))
	assert.Equal(t, "2025-03-17", parser.ISODate(ts))
	assert.Equal(t, "2025-03", parser.MonthKey(ts))
}
