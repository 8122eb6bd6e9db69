package calculator

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"findash/internal/model"
	"findash/internal/parser"
)

// Columns 一个逻辑字段对应的物理列；JSON 中可为字符串或字符串数组
type Columns []string

// UnmarshalJSON 接受 "col"、["a","b"] 或 null
func (c *Columns) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == "" {
		*c = nil
		return nil
	}
	if strings.HasPrefix(trimmed, "[") {
		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			return fmt.Errorf("columns: %w", err)
		}
		*c = compact(list)
		return nil
	}
	var one string
	if err := json.Unmarshal(data, &one); err != nil {
		return fmt.Errorf("columns: expected string or list: %w", err)
	}
	*c = compact([]string{one})
	return nil
}

func compact(list []string) Columns {
	out := Columns{}
	for _, s := range list {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// present 在表中实际存在的列
func (c Columns) present(t *model.Table) []string {
	var out []string
	for _, name := range c {
		if t.ColumnIndex(name) >= 0 {
			out = append(out, name)
		}
	}
	return out
}

// PLMapping 损益表映射
type PLMapping struct {
	Date         string  `json:"date" validate:"required"`
	Revenue      Columns `json:"revenue"`
	COGS         Columns `json:"cogs"`
	Opex         Columns `json:"opex"`
	OtherIncome  Columns `json:"other_income"`
	OtherExpense Columns `json:"other_expense"`
}

// BSMapping 资产负债表映射
type BSMapping struct {
	Date        string  `json:"date" validate:"required"`
	Assets      Columns `json:"assets"`
	Liabilities Columns `json:"liabilities"`
	Equity      Columns `json:"equity"`
}

// RecMapping 招聘流水映射
type RecMapping struct {
	Date       string  `json:"date" validate:"required"`
	Placements Columns `json:"placements"`
	Revenue    Columns `json:"revenue"`
	Margin     Columns `json:"margin"`
}

// MarginMapping 毛利流水映射
type MarginMapping struct {
	Date          string  `json:"date" validate:"required"`
	MarginAmount  Columns `json:"margin_amount"`
	MarginPercent Columns `json:"margin_percent"`
}

// Mappings /api/process 请求体中的映射集合，各部分均可省略
type Mappings struct {
	PL     *PLMapping     `json:"pl_map" validate:"omitempty"`
	BS     *BSMapping     `json:"bs_map" validate:"omitempty"`
	Rec    *RecMapping    `json:"rec_map" validate:"omitempty"`
	Margin *MarginMapping `json:"mg_map" validate:"omitempty"`
}

var mappingValidator = validator.New()

// Validate 已提供的映射必须包含日期列
func (m Mappings) Validate() error {
	if err := mappingValidator.Struct(m); err != nil {
		return fmt.Errorf("invalid mapping: %w", err)
	}
	return nil
}

// 字段名
const (
	FieldAssets        = "assets"
	FieldLiabilities   = "liabilities"
	FieldEquity        = "equity"
	FieldPlacements    = "placements"
	FieldMargin        = "margin"
	FieldMarginAmount  = "margin_amount"
	FieldMarginPercent = "margin_percent"
)

// RollupPL 汇总损益流水并计算派生字段
func RollupPL(t *model.Table, m PLMapping) (*model.FinancialFrame, RollupStats) {
	frame, stats := Rollup(prepare(t, m.Date), m.Date, []FieldAgg{
		{Name: FieldRevenue, Columns: m.Revenue, Func: AggSum},
		{Name: FieldCOGS, Columns: m.COGS, Func: AggSum},
		{Name: FieldOpex, Columns: m.Opex, Func: AggSum},
		{Name: FieldOtherIncome, Columns: m.OtherIncome, Func: AggSum},
		{Name: FieldOtherExpense, Columns: m.OtherExpense, Func: AggSum},
	})
	return ComputeFinancials(frame), stats
}

// RollupBS 资产负债为时点余额，月内取均值
func RollupBS(t *model.Table, m BSMapping) (*model.MonthlyFrame, RollupStats) {
	return Rollup(prepare(t, m.Date), m.Date, []FieldAgg{
		{Name: FieldAssets, Columns: m.Assets, Func: AggMean},
		{Name: FieldLiabilities, Columns: m.Liabilities, Func: AggMean},
		{Name: FieldEquity, Columns: m.Equity, Func: AggMean},
	})
}

// RollupRecruit 只汇总表中存在的字段
func RollupRecruit(t *model.Table, m RecMapping) (*model.MonthlyFrame, RollupStats) {
	return Rollup(prepare(t, m.Date), m.Date, optional(t,
		FieldAgg{Name: FieldPlacements, Columns: m.Placements, Func: AggSum},
		FieldAgg{Name: FieldRevenue, Columns: m.Revenue, Func: AggSum},
		FieldAgg{Name: FieldMargin, Columns: m.Margin, Func: AggMean},
	))
}

// RollupMargin 只汇总表中存在的字段
func RollupMargin(t *model.Table, m MarginMapping) (*model.MonthlyFrame, RollupStats) {
	return Rollup(prepare(t, m.Date), m.Date, optional(t,
		FieldAgg{Name: FieldMarginAmount, Columns: m.MarginAmount, Func: AggSum},
		FieldAgg{Name: FieldMarginPercent, Columns: m.MarginPercent, Func: AggMean},
	))
}

func prepare(t *model.Table, dateCol string) *model.Table {
	if t == nil {
		return nil
	}
	return parser.NormalizeDates(t, []string{dateCol})
}

func optional(t *model.Table, aggs ...FieldAgg) []FieldAgg {
	var out []FieldAgg
	for _, a := range aggs {
		if cols := Columns(a.Columns).present(t); len(cols) > 0 {
			a.Columns = cols
			out = append(out, a)
		}
	}
	return out
}
