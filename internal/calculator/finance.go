package calculator

import (
	"findash/internal/parser"
)

// DefaultFinanceMonths 财务工作簿默认覆盖的月份数（Jan..Aug）
const DefaultFinanceMonths = 8

// FinanceSummary 财务工作簿 KPI 汇总
type FinanceSummary struct {
	TotalRevenue        float64 `json:"total_revenue"`
	TotalExpenses       float64 `json:"total_expenses"`
	TotalNetIncome      float64 `json:"total_net_income"`
	ProfitMargin        float64 `json:"profit_margin"`
	HasProfitMargin     bool    `json:"has_profit_margin"`
	AvgMonthlyRevenue   float64 `json:"avg_monthly_revenue"`
	AvgMonthlyNetIncome float64 `json:"avg_monthly_net_income"`
	Months              int     `json:"months"`
	Sources             int     `json:"sources"`
}

// SummarizeFinance 汇总业务单元与公司损益
//
//	总收入   = 各业务单元 revenue 合计 + 各公司 total_income 合计
//	总支出   = 各公司 total_expense 合计
//	总净利润 = 各业务单元 net_income 合计 + 各公司 net_income 合计
//
// 利润率仅在总收入 > 0 时给出；月均值按 months 计算，months <= 0 时取默认值。
func SummarizeFinance(units, pnls []*parser.SheetResult, months int) FinanceSummary {
	if months <= 0 {
		months = DefaultFinanceMonths
	}
	s := FinanceSummary{Months: months}

	for _, u := range units {
		if !u.HasData() {
			continue
		}
		s.Sources++
		s.TotalRevenue += parser.Sum(u.Values("revenue"))
		s.TotalNetIncome += parser.Sum(u.Values("net_income"))
	}
	for _, p := range pnls {
		if !p.HasData() {
			continue
		}
		s.Sources++
		s.TotalRevenue += parser.Sum(p.Values("total_income"))
		s.TotalExpenses += parser.Sum(p.Values("total_expense"))
		s.TotalNetIncome += parser.Sum(p.Values("net_income"))
	}

	if s.TotalRevenue > 0 {
		s.ProfitMargin = s.TotalNetIncome / s.TotalRevenue * 100
		s.HasProfitMargin = true
	}
	s.AvgMonthlyRevenue = s.TotalRevenue / float64(months)
	s.AvgMonthlyNetIncome = s.TotalNetIncome / float64(months)
	return s
}

// SummaryMetric 汇总表中的一行指标
type SummaryMetric struct {
	Name    string    `json:"name"`
	Monthly []float64 `json:"monthly"`
	Total   float64   `json:"total"`
}

// SummaryMetrics 按出现顺序列出汇总表指标及其期间合计
func SummaryMetrics(summary *parser.SheetResult) []SummaryMetric {
	out := []SummaryMetric{}
	if summary == nil {
		return out
	}
	for _, name := range summary.Order {
		v := summary.Values(name)
		out = append(out, SummaryMetric{Name: name, Monthly: v, Total: parser.Sum(v)})
	}
	return out
}
