package calculator

import (
	"time"

	"findash/internal/model"
)

// 损益原始字段
const (
	FieldRevenue      = "revenue"
	FieldCOGS         = "cogs"
	FieldOpex         = "opex"
	FieldOtherIncome  = "other_income"
	FieldOtherExpense = "other_expense"
)

// ComputeFinancials 按月计算派生损益字段，月份之间互不依赖
//
//	gross_profit     = revenue - cogs
//	operating_income = gross_profit - opex
//	net_income       = operating_income + other_income - other_expense
//
// 缺失的原始字段按 0 处理。
func ComputeFinancials(f *model.MonthlyFrame) *model.FinancialFrame {
	out := &model.FinancialFrame{Months: []time.Time{}}
	if f.Empty() {
		return out
	}
	n := f.Len()
	out.Months = append(out.Months, f.Months...)
	out.Revenue = fit(f.Values(FieldRevenue), n)
	out.COGS = fit(f.Values(FieldCOGS), n)
	out.Opex = fit(f.Values(FieldOpex), n)
	out.OtherIncome = fit(f.Values(FieldOtherIncome), n)
	out.OtherExpense = fit(f.Values(FieldOtherExpense), n)

	out.GrossProfit = make([]float64, n)
	out.OperatingIncome = make([]float64, n)
	out.NetIncome = make([]float64, n)
	for i := 0; i < n; i++ {
		out.GrossProfit[i] = out.Revenue[i] - out.COGS[i]
		out.OperatingIncome[i] = out.GrossProfit[i] - out.Opex[i]
		out.NetIncome[i] = out.OperatingIncome[i] + out.OtherIncome[i] - out.OtherExpense[i]
	}
	return out
}

func fit(vals []float64, n int) []float64 {
	out := make([]float64, n)
	copy(out, vals)
	return out
}
