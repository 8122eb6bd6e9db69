package calculator

import (
	"findash/internal/parser"
)

// NetPlacements 整个期间的净入职：新入职合计减离职合计
func NetPlacements(newPlacements, terminations []float64) float64 {
	return parser.Sum(newPlacements) - parser.Sum(terminations)
}

// Latest 序列最后一个值；空序列为 0
func Latest(series []float64) float64 {
	if len(series) == 0 {
		return 0
	}
	return series[len(series)-1]
}

// GrossMarginTotal 各公司/用工类型 total 字段之和
func GrossMarginTotal(records []parser.Record) float64 {
	total := 0.0
	for _, r := range records {
		total += r.Values["total"]
	}
	return total
}

// PlacementSummary 招聘报表的期间汇总
// HasXxx 标记对应指标的源数据是否存在，不存在时数值为 0。
type PlacementSummary struct {
	TotalBillables      float64 `json:"total_billables"`
	W2Placements        float64 `json:"w2_placements"`
	C2CPlacements       float64 `json:"c2c_placements"`
	NetPlacementsLatest float64 `json:"net_placements_latest"`
	TotalPlacements     float64 `json:"total_placements"`
	TotalTerminations   float64 `json:"total_terminations"`
	NetPlacementsPeriod float64 `json:"net_placements_period"`
	GrossMarginTotal    float64 `json:"gross_margin_total"`

	HasBillables   bool `json:"has_billables"`
	HasEmployment  bool `json:"has_employment"`
	HasNetLatest   bool `json:"has_net_latest"`
	HasPlacements  bool `json:"has_placements"`
	HasTerminate   bool `json:"has_terminations"`
	HasGrossMargin bool `json:"has_gross_margin"`
}

// SummarizePlacements 由员工类型、入离职、毛利三个工作表的提取结果计算汇总
func SummarizePlacements(employment, placements, margins *parser.SheetResult) PlacementSummary {
	var s PlacementSummary

	if v, ok := placements.Get("Total billables"); ok {
		s.TotalBillables = Latest(v)
		s.HasBillables = true
	}
	for _, label := range []string{"TG W2", "VNST W2"} {
		if v, ok := employment.Get(label); ok {
			s.W2Placements += Latest(v)
			s.HasEmployment = true
		}
	}
	for _, label := range []string{"TG C2C", "VNST C2C"} {
		if v, ok := employment.Get(label); ok {
			s.C2CPlacements += Latest(v)
			s.HasEmployment = true
		}
	}
	if v, ok := placements.Get("Net Placements"); ok {
		s.NetPlacementsLatest = Latest(v)
		s.HasNetLatest = true
	}

	newP, okNew := placements.Get("New Placements")
	terms, okTerm := placements.Get("Terminations")
	s.TotalPlacements = parser.Sum(newP)
	s.TotalTerminations = parser.Sum(terms)
	s.NetPlacementsPeriod = NetPlacements(newP, terms)
	s.HasPlacements = okNew
	s.HasTerminate = okTerm

	if margins != nil && len(margins.Records) > 0 {
		s.GrossMarginTotal = GrossMarginTotal(margins.Records)
		s.HasGrossMargin = true
	}
	return s
}
