package chart

import (
	"findash/internal/model"
)

func lineOnBar(s Series) Dataset {
	ds := Line(s, false)
	ds.Type = TypeLine
	ds.BorderWidth = 3
	return ds
}

// RecruitmentEmployment W2 柱状 + C2C / 1099 / Referral 折线
func RecruitmentEmployment(rows []model.EmploymentMonth) *Chart {
	if len(rows) == 0 {
		return Empty(TypeBar)
	}
	labels := make([]string, len(rows))
	w2 := make([]float64, len(rows))
	c2c := make([]float64, len(rows))
	e1099 := make([]float64, len(rows))
	referral := make([]float64, len(rows))
	for i, r := range rows {
		labels[i] = r.Month
		w2[i] = float64(r.W2)
		c2c[i] = float64(r.C2C)
		e1099[i] = float64(r.Employment1099)
		referral[i] = float64(r.Referral)
	}
	c := New(TypeBar, "W2, C2C, 1099, Referral", labels)
	c.Add(Bar(Series{Label: "W2", Values: w2, Color: "#1f77b4"}))
	c.Add(lineOnBar(Series{Label: "C2C", Values: c2c, Color: "#ff7f0e"}))
	c.Add(lineOnBar(Series{Label: "1099", Values: e1099, Color: "#2ca02c"}))
	c.Add(lineOnBar(Series{Label: "Referral", Values: referral, Color: "#17becf"}))
	return c.AxisY("Count", true)
}

// RecruitmentPlacement 入职、离职、净入职柱状 + 净计费折线
func RecruitmentPlacement(rows []model.PlacementMonth) *Chart {
	if len(rows) == 0 {
		return Empty(TypeBar)
	}
	labels := make([]string, len(rows))
	newP := make([]float64, len(rows))
	terms := make([]float64, len(rows))
	net := make([]float64, len(rows))
	billables := make([]float64, len(rows))
	for i, r := range rows {
		labels[i] = r.Month
		newP[i] = float64(r.NewPlacements)
		terms[i] = float64(r.Terminations)
		net[i] = float64(r.NetPlacements)
		billables[i] = float64(r.NetBillables)
	}
	c := New(TypeBar, "Terminations, New Placements and Net Placements", labels)
	c.Add(Bar(Series{Label: "New Placements", Values: newP, Color: "#1f77b4"}))
	c.Add(Bar(Series{Label: "Terminations", Values: terms, Color: "#ff7f0e"}))
	c.Add(Bar(Series{Label: "Net Placements", Values: net, Color: "#2ca02c"}))
	c.Add(lineOnBar(Series{Label: "Net billables", Values: billables, Color: "#17becf"}))
	return c.AxisY("Count", false)
}

// RecruitmentMargin 各公司/用工类型 2024、2025 与合计毛利
func RecruitmentMargin(rows []model.MarginRecord) *Chart {
	if len(rows) == 0 {
		return Empty(TypeBar).AxisX("Company Type")
	}
	labels := make([]string, len(rows))
	y2024 := make([]float64, len(rows))
	y2025 := make([]float64, len(rows))
	total := make([]float64, len(rows))
	for i, r := range rows {
		labels[i] = r.CompanyType
		y2024[i] = r.Year2024
		y2025[i] = r.Year2025
		total[i] = r.Total
	}
	return FromSeries(TypeBar, "Gross Margin IT Staffing", labels,
		Series{Label: "2024", Values: y2024, Color: "#1f77b4"},
		Series{Label: "2025", Values: y2025, Color: "#ff7f0e"},
		Series{Label: "Total", Values: total, Color: "#2ca02c"},
	).AxisX("Company Type").AxisY("Margin", false)
}
