package chart_test

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"findash/internal/chart"
	"findash/internal/model"
	"findash/internal/parser"
)

func TestFormatMoneyThresholds(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   float64
		want string
	}{
		{0, "$0"},
		{999, "$999"},
		{-42.4, "$-42"},
		{1000, "$1.0k"},
		{2550, "$2.6k"},
		{-2500, "$-2.5k"},
		{1_234_567, "$1.23M"},
		{-7_000_000, "$-7.00M"},
		{1_500_000_000, "$1.50B"},
		{2_345_000_000_000, "$2,345.00B"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, chart.FormatMoney(tc.in), "%v", tc.in)
	}

	assert.Equal(t, chart.Placeholder, chart.FormatMoney(math.NaN()))
	assert.Equal(t, chart.Placeholder, chart.FormatMoney(math.Inf(1)))
}

func TestFormatPercentAndCount(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "17.5%", chart.FormatPercent(17.5))
	assert.Equal(t, "-3.3%", chart.FormatPercent(-3.33))
	assert.Equal(t, "12,345", chart.FormatCount(12345))
	assert.Equal(t, "7", chart.FormatCount(7))
}

func TestToKPIAndMissingKPI(t *testing.T) {
	t.Parallel()

	k := chart.ToKPI("total_revenue", "Total Revenue", 1_234_567, model.FormatCurrency)
	assert.True(t, k.Available)
	assert.Equal(t, 1_234_567.0, k.Value)
	assert.Equal(t, "$1.23M", k.Display)

	m := chart.MissingKPI("gross_margin_total", "Gross Margin Total", model.FormatCurrency)
	assert.False(t, m.Available)
	assert.Equal(t, 0.0, m.Value)
	assert.Equal(t, chart.Placeholder, m.Display)

	nan := chart.ToKPI("x", "X", math.NaN(), model.FormatPercentage)
	assert.False(t, nan.Available)
}

func TestEmptyChartIsValidJSON(t *testing.T) {
	t.Parallel()

	raw, err := json.Marshal(chart.Empty(chart.TypeLine))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	data := decoded["data"].(map[string]any)
	assert.Equal(t, []any{}, data["labels"])
	assert.Equal(t, []any{}, data["datasets"])
	assert.Equal(t, "line", decoded["type"])

	assert.True(t, chart.FromFrame(chart.TypeBar, "x", nil).IsEmpty())
}

func TestFromFrameKeepsValues(t *testing.T) {
	t.Parallel()

	f := model.NewMonthlyFrame("assets", "liabilities")
	f.Months = []time.Time{
		time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
	}
	f.Fields["assets"] = []float64{100.25, 200.5}
	f.Fields["liabilities"] = []float64{50, 75}

	c := chart.FromFrame(chart.TypeLine, "Assets vs Liabilities", f,
		chart.Field{Key: "assets", Label: "Assets", Color: "#007bff"},
		chart.Field{Key: "equity", Label: "Equity"},
		chart.Field{Key: "liabilities", Label: "Liabilities", Color: "#dc3545"},
	)
	assert.Equal(t, []string{"Jan 2025", "Feb 2025"}, c.Data.Labels)
	require.Len(t, c.Data.Datasets, 2)
	assert.Equal(t, []float64{100.25, 200.5}, c.Data.Datasets[0].Data)
	assert.Equal(t, "#007bff33", c.Data.Datasets[0].BackgroundColor)
	assert.Equal(t, "Liabilities", c.Data.Datasets[1].Label)
}

func TestWaterfallUsesLastMonth(t *testing.T) {
	t.Parallel()

	fin := &model.FinancialFrame{
		Months:       []time.Time{time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)},
		Revenue:      []float64{1, 500},
		COGS:         []float64{1, 200},
		Opex:         []float64{1, 100},
		OtherIncome:  []float64{1, 10},
		OtherExpense: []float64{1, 5},
	}
	c := chart.Waterfall(fin)
	assert.Equal(t, "Profit Walk - Mar 2025", c.Options.Plugins.Title.Text)
	require.Len(t, c.Data.Datasets, 1)
	assert.Equal(t, []float64{500, -200, -100, 10, -5}, c.Data.Datasets[0].Data)
	assert.Equal(t, []string{"#28a745", "#dc3545", "#dc3545", "#28a745", "#dc3545"}, c.Data.Datasets[0].BackgroundColor)

	assert.True(t, chart.Waterfall(&model.FinancialFrame{}).IsEmpty())
	assert.Empty(t, chart.PLCharts(nil))
}

func TestPlacementChartsDegradeIndependently(t *testing.T) {
	t.Parallel()

	emp := &parser.SheetResult{
		Found:  true,
		Labels: []string{"Jan", "Feb"},
		Order:  []string{"TG W2", "VNST W2"},
		Series: map[string][]float64{"TG W2": {10, 12}, "VNST W2": {1, 2, 3}},
	}
	c := chart.EmploymentTypes(emp)
	require.Len(t, c.Data.Datasets, 2)
	assert.Equal(t, "#9467bd", c.Data.Datasets[1].BackgroundColor)
	assert.Equal(t, []float64{1, 2}, c.Data.Datasets[1].Data)

	assert.True(t, chart.GrossMargin(nil).IsEmpty())
	assert.True(t, chart.PlacementMetrics(&parser.SheetResult{}).IsEmpty())
	assert.True(t, chart.BillablesTrend(emp).IsEmpty())
}

func TestFinanceCharts(t *testing.T) {
	t.Parallel()

	labels := parser.DefaultMonthLabels
	summary := &parser.SheetResult{
		Found: true,
		Order: []string{"Direct Hire Revenue", "Direct Hire Net Income"},
		Series: map[string][]float64{
			"Direct Hire Revenue":    {100, 200},
			"Direct Hire Net Income": {1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
		},
	}

	dh := chart.UnitFinance("Direct Hire", summary, labels, 8)
	require.Len(t, dh.Data.Datasets, 2)
	assert.Equal(t, []float64{100, 200, 0, 0, 0, 0, 0, 0}, dh.Data.Datasets[0].Data)
	assert.Len(t, dh.Data.Datasets[1].Data, 8)
	assert.Equal(t, "rgba(54, 162, 235, 0.1)", dh.Data.Datasets[0].BackgroundColor)
	assert.Equal(t, "rgba(255, 99, 132, 1)", dh.Data.Datasets[1].BorderColor)
	assert.Equal(t, 3, dh.Data.Datasets[0].BorderWidth)

	assert.True(t, chart.UnitFinance("Services", summary, labels, 8).IsEmpty())

	units := []*parser.SheetResult{
		{Found: true, SheetName: "Services Net income", Series: map[string][]float64{"revenue": {5}}},
		{Found: false, SheetName: "IT Staffing Net Income"},
	}
	bu := chart.BusinessUnitsRevenue(units, labels)
	require.Len(t, bu.Data.Datasets, 1)
	assert.Equal(t, "Services", bu.Data.Datasets[0].Label)

	pnls := []*parser.SheetResult{{Found: true, SheetName: "Vensiti PnL new", Series: map[string][]float64{"net_income": {1}}}}
	assert.Equal(t, "Vensiti Net Income", chart.MonthlyPnLTrend(pnls, labels).Data.Datasets[0].Label)

	sm := chart.SummaryMetrics(summary, labels)
	assert.Len(t, sm.Data.Datasets, 2)
	assert.Equal(t, "Financial Summary Metrics", sm.Options.Plugins.Title.Text)
}

func TestRecruitmentCharts(t *testing.T) {
	t.Parallel()

	rows := []model.EmploymentMonth{{Month: "Jan 2025", W2: 10, C2C: 2}, {Month: "Feb 2025", W2: 11, Referral: 1}}
	c := chart.RecruitmentEmployment(rows)
	assert.Equal(t, []string{"Jan 2025", "Feb 2025"}, c.Data.Labels)
	require.Len(t, c.Data.Datasets, 4)
	assert.Equal(t, "", c.Data.Datasets[0].Type)
	assert.Equal(t, "line", c.Data.Datasets[1].Type)
	assert.Equal(t, []float64{0, 1}, c.Data.Datasets[3].Data)

	assert.True(t, chart.RecruitmentPlacement(nil).IsEmpty())
	assert.True(t, chart.RecruitmentMargin(nil).IsEmpty())
}
