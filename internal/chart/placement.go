package chart

import (
	"findash/internal/parser"
)

var employmentColors = map[string]string{
	"TG W2":       "#1f77b4",
	"TG C2C":      "#ff7f0e",
	"TG 1099":     "#2ca02c",
	"TG Referral": "#17becf",
	"VNST W2":     "#9467bd",
	"W2":          "#1f77b4",
	"C2C":         "#ff7f0e",
	"1099":        "#2ca02c",
	"Referral":    "#17becf",
}

const defaultColor = "#d62728"

var placementColors = map[string]string{
	"New Placements": "#1f77b4",
	"Terminations":   "#ff7f0e",
	"Net Placements": "#2ca02c",
	"Net billables":  "#17becf",
}

var employmentKinds = []string{
	"TG W2", "TG C2C", "TG 1099", "TG Referral", "VNST W2", "VNST C2C",
	"W2", "C2C", "1099", "Referral",
}

func colorOf(palette map[string]string, key string) string {
	if c, ok := palette[key]; ok {
		return c
	}
	return defaultColor
}

// sheetSeries 按 keys 顺序取出工作表中存在的序列，宽度对齐横轴
func sheetSeries(sr *parser.SheetResult, keys []string, palette map[string]string) []Series {
	var out []Series
	for _, k := range keys {
		v, ok := sr.Get(k)
		if !ok {
			continue
		}
		out = append(out, Series{Label: k, Values: parser.FitWidth(v, len(sr.Labels)), Color: colorOf(palette, k)})
	}
	return out
}

// EmploymentTypes 各用工类型在岗人数柱状图
func EmploymentTypes(sr *parser.SheetResult) *Chart {
	if !sr.HasData() {
		return Empty(TypeBar).AxisY("Count", true)
	}
	return FromSeries(TypeBar, "Employment Types", sr.Labels,
		sheetSeries(sr, employmentKinds, employmentColors)...).AxisY("Count", true)
}

// PlacementMetrics 新入职、离职、净入职与净计费人数
func PlacementMetrics(sr *parser.SheetResult) *Chart {
	if !sr.HasData() {
		return Empty(TypeLine).AxisY("Count", true)
	}
	keys := []string{"New Placements", "Terminations", "Net Placements", "Net billables"}
	return FromSeries(TypeLine, "Placement Metrics", sr.Labels,
		sheetSeries(sr, keys, placementColors)...).AxisY("Count", true)
}

// BillablesTrend 计费人数走势
func BillablesTrend(sr *parser.SheetResult) *Chart {
	v, ok := sr.Get("Total billables")
	if !ok {
		return Empty(TypeLine)
	}
	return FromSeries(TypeLine, "Total Billables", sr.Labels,
		Series{Label: "Total billables", Values: parser.FitWidth(v, len(sr.Labels)), Color: "#17becf"}).AxisY("Count", true)
}

// GrossMargin 各公司/用工类型毛利；无记录时为空图表
func GrossMargin(records []parser.Record) *Chart {
	if len(records) == 0 {
		return Empty(TypeBar).AxisX("Company Type").AxisY("Margin", false)
	}
	labels := make([]string, len(records))
	y2024 := make([]float64, len(records))
	y2025 := make([]float64, len(records))
	total := make([]float64, len(records))
	for i, r := range records {
		labels[i] = r.Label
		y2024[i] = r.Values["year_2024"]
		y2025[i] = r.Values["year_2025"]
		total[i] = r.Values["total"]
	}
	return FromSeries(TypeBar, "Gross Margin IT Staffing", labels,
		Series{Label: "2024", Values: y2024, Color: "#1f77b4"},
		Series{Label: "2025", Values: y2025, Color: "#ff7f0e"},
		Series{Label: "Total", Values: total, Color: "#2ca02c"},
	).AxisX("Company Type").AxisY("Margin", false)
}
