package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"findash/internal/model"
	"findash/internal/parser"
)

// table 首行为表头，其余为数据行；字符串、数字与 nil 自动转换
func table(rows ...[]any) *model.Table {
	conv := func(vals []any) []model.Cell {
		out := make([]model.Cell, len(vals))
		for i, v := range vals {
			switch x := v.(type) {
			case nil:
				out[i] = model.EmptyCell()
			case string:
				if x == "" {
					out[i] = model.EmptyCell()
				} else {
					out[i] = model.StringCell(x)
				}
			case int:
				out[i] = model.NumberCell(float64(x))
			case float64:
				out[i] = model.NumberCell(x)
			case model.Cell:
				out[i] = x
			}
		}
		return out
	}
	t := &model.Table{Name: "Sheet1", FirstRow: 1}
	if len(rows) == 0 {
		return t
	}
	t.Header = conv(rows[0])
	for _, r := range rows[1:] {
		t.Rows = append(t.Rows, conv(r))
	}
	return t
}

func reportSheet() *model.Table {
	return table(
		[]any{"Metric", "Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug"},
		[]any{"Revenue", 100, 110, 120, 130, 140, 150, 160, 170},
		[]any{"Net Income", 10, 20, "", 40, 50, 60, 70, 80},
		[]any{"Net Income %", 0.1, 0.18, 0, 0.3, 0.35, 0.4, 0.43, 0.47},
	)
}

func TestLocateSeriesZeroFillsBlankCells(t *testing.T) {
	t.Parallel()

	vals, ok := parser.LocateSeries(reportSheet(), "Net Income", 0, parser.ColumnRange(1, 8), parser.MatchExact)
	require.True(t, ok)
	assert.Equal(t, []float64{10, 20, 0, 40, 50, 60, 70, 80}, vals)
}

func TestLocateSeriesAbsentIsNotZeroSeries(t *testing.T) {
	t.Parallel()

	vals, ok := parser.LocateSeries(reportSheet(), "Gross Margin", 0, parser.ColumnRange(1, 8), parser.MatchContains)
	assert.False(t, ok)
	assert.Nil(t, vals)

	total := parser.Sum(vals)
	assert.Equal(t, 0.0, total)
}

func TestLocateSeriesFirstMatchWins(t *testing.T) {
	t.Parallel()

	// contains 模式下 "Net Income" 也命中 "Net Income %"，取先出现的行
	vals, ok := parser.LocateSeries(reportSheet(), "net income", 0, parser.ColumnRange(1, 2), parser.MatchContains)
	require.True(t, ok)
	assert.Equal(t, []float64{10, 20}, vals)

	reordered := table(
		[]any{"Metric", "Jan"},
		[]any{"Net Income %", 0.1},
		[]any{"Net Income", 10},
	)
	vals, ok = parser.LocateSeries(reordered, "Net Income", 0, []int{1}, parser.MatchContains)
	require.True(t, ok)
	assert.Equal(t, []float64{0.1}, vals)

	vals, ok = parser.LocateSeries(reordered, "Net Income", 0, []int{1}, parser.MatchExact)
	require.True(t, ok)
	assert.Equal(t, []float64{10}, vals)
}

func TestMatchModes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		mode  parser.MatchMode
		cell  string
		label string
		want  bool
	}{
		{parser.MatchExact, "  TG W2 ", "TG W2", true},
		{parser.MatchExact, "tg w2", "TG W2", false},
		{parser.MatchExactFold, "tg w2", "TG W2", true},
		{parser.MatchExactFold, "TG W2 total", "TG W2", false},
		{parser.MatchContains, "Total Income (USD)", "total income", true},
		{parser.MatchContains, "", "W2", false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.mode.Matches(c.cell, c.label), "%s %q ~ %q", c.mode, c.cell, c.label)
	}
}

func TestLocateSeriesNumericLabelAndOutOfRange(t *testing.T) {
	t.Parallel()

	tbl := table(
		[]any{"Type", "Jan", "Feb"},
		[]any{1099, 3, 4},
	)
	vals, ok := parser.LocateSeries(tbl, "1099", 0, parser.ColumnRange(1, 4), parser.MatchExact)
	require.True(t, ok)
	assert.Equal(t, []float64{3, 4, 0, 0}, vals)

	_, ok = parser.LocateSeries(nil, "1099", 0, []int{1}, parser.MatchExact)
	assert.False(t, ok)
}
