package chart

import (
	"fmt"
	"strings"

	"findash/internal/parser"
)

type rgb struct{ r, g, b int }

func (c rgb) alpha(a float64) string {
	return fmt.Sprintf("rgba(%d, %d, %d, %g)", c.r, c.g, c.b, a)
}

// 各业务单元 Revenue / Gross Income / Net Income 的颜色
var unitPalettes = map[string][3]rgb{
	"Direct Hire": {{54, 162, 235}, {75, 192, 192}, {255, 99, 132}},
	"Services":    {{153, 102, 255}, {255, 159, 64}, {255, 205, 86}},
	"IT Staffing": {{201, 203, 207}, {255, 99, 255}, {54, 162, 235}},
}

var unitMetrics = []string{"Revenue", "Gross Income", "Net Income"}

var (
	unitColors    = []string{"#28a745", "#007bff", "#dc3545", "#ffc107", "#6f42c1"}
	pnlColors     = []string{"#28a745", "#dc3545", "#007bff"}
	summaryColors = []string{"#28a745", "#007bff", "#dc3545", "#ffc107", "#6f42c1", "#17a2b8"}
)

func cycle(colors []string, i int) string {
	return colors[i%len(colors)]
}

// UnitFinance 单个业务单元的收入、毛利、净利润走势，取自汇总表中 "<单元> Revenue" 等行
// 数值截断或补齐到 width 个月。
func UnitFinance(unit string, summary *parser.SheetResult, labels []string, width int) *Chart {
	c := New(TypeLine, unit+" Financial Performance", labels).AxisY("Amount ($)", false)
	palette, ok := unitPalettes[unit]
	if !ok {
		palette = unitPalettes["IT Staffing"]
	}
	for i, metric := range unitMetrics {
		v, found := summary.Get(unit + " " + metric)
		if !found {
			continue
		}
		c.Add(Dataset{
			Label:           unit + " " + metric,
			Data:            parser.FitWidth(v, width),
			BackgroundColor: palette[i].alpha(0.1),
			BorderColor:     palette[i].alpha(1),
			BorderWidth:     3,
			Fill:            boolPtr(false),
			Tension:         0.1,
		})
	}
	return c
}

// UnitName 工作表名去掉 " Net income" 后缀（忽略大小写）
func UnitName(sheet string) string {
	return trimSuffixFold(sheet, " Net income")
}

// CompanyName 工作表名去掉 " PnL new" 后缀（忽略大小写）
func CompanyName(sheet string) string {
	return trimSuffixFold(sheet, " PnL new")
}

func trimSuffixFold(s, suffix string) string {
	s = strings.TrimSpace(s)
	if len(s) >= len(suffix) && strings.EqualFold(s[len(s)-len(suffix):], suffix) {
		return strings.TrimSpace(s[:len(s)-len(suffix)])
	}
	return s
}

// BusinessUnitsRevenue 各业务单元收入对比
func BusinessUnitsRevenue(units []*parser.SheetResult, labels []string) *Chart {
	c := New(TypeLine, "Business Units Revenue Comparison", labels).AxisY("Revenue ($)", false)
	i := 0
	for _, u := range units {
		v, ok := u.Get("revenue")
		if !ok {
			continue
		}
		color := cycle(unitColors, i)
		i++
		c.Add(Dataset{
			Label:           UnitName(u.SheetName),
			Data:            parser.FitWidth(v, len(labels)),
			BackgroundColor: color + "33",
			BorderColor:     color,
			BorderWidth:     3,
			Fill:            boolPtr(false),
			Tension:         0.1,
		})
	}
	return c
}

// MonthlyPnLTrend 各公司月度净利润
func MonthlyPnLTrend(pnls []*parser.SheetResult, labels []string) *Chart {
	c := New(TypeLine, "Monthly P&L Trend", labels).AxisY("Net Income ($)", false)
	i := 0
	for _, p := range pnls {
		v, ok := p.Get("net_income")
		if !ok {
			continue
		}
		color := cycle(pnlColors, i)
		i++
		c.Add(Dataset{
			Label:           CompanyName(p.SheetName) + " Net Income",
			Data:            parser.FitWidth(v, len(labels)),
			BackgroundColor: color + "33",
			BorderColor:     color,
			BorderWidth:     3,
			Fill:            boolPtr(false),
			Tension:         0.1,
		})
	}
	return c
}

// SummaryMetrics 汇总表中每个指标一条折线
func SummaryMetrics(summary *parser.SheetResult, labels []string) *Chart {
	c := New(TypeLine, "Financial Summary Metrics", labels).AxisY("Amount ($)", false)
	if summary == nil {
		return c
	}
	for i, name := range summary.Order {
		color := cycle(summaryColors, i)
		c.Add(Dataset{
			Label:           name,
			Data:            parser.FitWidth(summary.Values(name), len(labels)),
			BackgroundColor: color + "33",
			BorderColor:     color,
			BorderWidth:     2,
			Fill:            boolPtr(false),
			Tension:         0.1,
		})
	}
	return c
}
