package chart

import (
	"findash/internal/model"
	"findash/internal/parser"
)

// PLCharts 损益图表：pl_area、pl_line、pl_waterfall；无数据时返回空集合
func PLCharts(fin *model.FinancialFrame) map[string]*Chart {
	out := map[string]*Chart{}
	if fin.Len() == 0 {
		return out
	}
	labels := make([]string, fin.Len())
	for i, m := range fin.Months {
		labels[i] = parser.MonthYearLabel(m)
	}

	area := New(TypeLine, "Revenue, COGS, Opex", labels)
	area.Add(Line(Series{Label: "Revenue", Values: fin.Revenue, Color: "#28a745"}, true))
	area.Add(Line(Series{Label: "COGS", Values: fin.COGS, Color: "#dc3545"}, true))
	area.Add(Line(Series{Label: "Opex", Values: fin.Opex, Color: "#ffc107"}, true))
	out["pl_area"] = area.AxisY("Amount ($)", false)

	out["pl_line"] = FromSeries(TypeLine, "Net Income", labels,
		Series{Label: "Net Income", Values: fin.NetIncome, Color: "#007bff"}).AxisY("Amount ($)", false)
	out["pl_waterfall"] = Waterfall(fin)
	return out
}

// Waterfall 最后一个月的利润走势：收入、各项成本费用、其他收支
func Waterfall(fin *model.FinancialFrame) *Chart {
	n := fin.Len()
	if n == 0 {
		return Empty(TypeBar)
	}
	i := n - 1
	steps := []string{"Revenue", "COGS", "Opex", "Other Inc.", "Other Exp."}
	values := []float64{
		fin.Revenue[i],
		-fin.COGS[i],
		-fin.Opex[i],
		fin.OtherIncome[i],
		-fin.OtherExpense[i],
	}
	colors := make([]string, len(values))
	for k, v := range values {
		colors[k] = "#28a745"
		if v < 0 {
			colors[k] = "#dc3545"
		}
	}
	c := New(TypeBar, "Profit Walk - "+parser.MonthYearLabel(fin.Months[i]), steps)
	c.Add(Dataset{
		Label:           "Amount",
		Data:            values,
		BackgroundColor: colors,
		BorderColor:     colors,
		BorderWidth:     1,
	})
	return c.AxisX("Step").AxisY("Amount ($)", false)
}

// BSCharts 资产负债图表：bs_line、bs_equity
func BSCharts(f *model.MonthlyFrame) map[string]*Chart {
	out := map[string]*Chart{}
	if f.Empty() {
		return out
	}
	out["bs_line"] = FromFrame(TypeLine, "Assets vs Liabilities", f,
		Field{Key: "assets", Label: "Assets", Color: "#007bff"},
		Field{Key: "liabilities", Label: "Liabilities", Color: "#dc3545"},
	)
	out["bs_equity"] = FromFrame(TypeLine, "Equity", f,
		Field{Key: "equity", Label: "Equity", Color: "#6f42c1"},
	)
	return out
}

// RecCharts 招聘流水图表：rec_bar（入职人数）、rec_revenue（招聘收入），各自仅在字段存在时生成
func RecCharts(f *model.MonthlyFrame) map[string]*Chart {
	out := map[string]*Chart{}
	if f.Empty() {
		return out
	}
	if f.Has("placements") {
		out["rec_bar"] = FromFrame(TypeBar, "Placements", f,
			Field{Key: "placements", Label: "Placements", Color: "#1f77b4"}).AxisY("Count", true)
	}
	if f.Has("revenue") {
		out["rec_revenue"] = FromFrame(TypeLine, "Recruitment Revenue", f,
			Field{Key: "revenue", Label: "Revenue", Color: "#28a745"})
	}
	return out
}

// MarginCharts 毛利流水图表：mg_line
func MarginCharts(f *model.MonthlyFrame) map[string]*Chart {
	out := map[string]*Chart{}
	if f.Empty() || len(f.Order) == 0 {
		return out
	}
	out["mg_line"] = FromFrame(TypeLine, "Margin", f,
		Field{Key: "margin_amount", Label: "Margin Amount", Color: "#2ca02c"},
		Field{Key: "margin_percent", Label: "Margin %", Color: "#ff7f0e"},
	)
	return out
}
