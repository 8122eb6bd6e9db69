package model

import "time"

// MonthValue 单月取值
type MonthValue struct {
	Month time.Time
	Value float64
}

// MonthlySeries 单字段的月度序列（按月份升序）
type MonthlySeries struct {
	Field  string
	Points []MonthValue
}

// Values 仅取数值
func (s MonthlySeries) Values() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Value
	}
	return out
}

// MonthlyFrame 月度汇总结果：所有字段共享同一组月份
type MonthlyFrame struct {
	Months []time.Time
	Fields map[string][]float64
	Order  []string
}

// NewMonthlyFrame 按字段顺序创建空帧
func NewMonthlyFrame(fields ...string) *MonthlyFrame {
	f := &MonthlyFrame{Fields: make(map[string][]float64, len(fields))}
	for _, name := range fields {
		if _, ok := f.Fields[name]; ok {
			continue
		}
		f.Fields[name] = []float64{}
		f.Order = append(f.Order, name)
	}
	return f
}

// Len 月份数
func (f *MonthlyFrame) Len() int {
	if f == nil {
		return 0
	}
	return len(f.Months)
}

// Empty 没有任何月份
func (f *MonthlyFrame) Empty() bool {
	return f.Len() == 0
}

// Has 字段是否存在
func (f *MonthlyFrame) Has(field string) bool {
	if f == nil {
		return false
	}
	_, ok := f.Fields[field]
	return ok
}

// Values 字段取值；不存在的字段按 0 补齐
func (f *MonthlyFrame) Values(field string) []float64 {
	if f == nil {
		return nil
	}
	if v, ok := f.Fields[field]; ok {
		return v
	}
	return make([]float64, len(f.Months))
}

// Series 取单字段序列
func (f *MonthlyFrame) Series(field string) MonthlySeries {
	s := MonthlySeries{Field: field}
	if f == nil {
		return s
	}
	vals := f.Values(field)
	s.Points = make([]MonthValue, len(f.Months))
	for i, m := range f.Months {
		s.Points[i] = MonthValue{Month: m, Value: vals[i]}
	}
	return s
}

// Last 最后一个月的取值
func (f *MonthlyFrame) Last(field string) (float64, bool) {
	if f.Empty() || !f.Has(field) {
		return 0, false
	}
	v := f.Fields[field]
	return v[len(v)-1], true
}

// FinancialFrame 每月的原始汇总与派生损益字段
type FinancialFrame struct {
	Months          []time.Time
	Revenue         []float64
	COGS            []float64
	Opex            []float64
	OtherIncome     []float64
	OtherExpense    []float64
	GrossProfit     []float64
	OperatingIncome []float64
	NetIncome       []float64
}

// Len 月份数
func (f *FinancialFrame) Len() int {
	if f == nil {
		return 0
	}
	return len(f.Months)
}

// Fields 字段名到取值的映射（用于导出原始序列）
func (f *FinancialFrame) Fields() map[string][]float64 {
	if f == nil {
		return map[string][]float64{}
	}
	return map[string][]float64{
		"revenue":          f.Revenue,
		"cogs":             f.COGS,
		"opex":             f.Opex,
		"other_income":     f.OtherIncome,
		"other_expense":    f.OtherExpense,
		"gross_profit":     f.GrossProfit,
		"operating_income": f.OperatingIncome,
		"net_income":       f.NetIncome,
	}
}

// FinancialFieldOrder 导出顺序
var FinancialFieldOrder = []string{
	"revenue", "cogs", "opex", "other_income", "other_expense",
	"gross_profit", "operating_income", "net_income",
}
