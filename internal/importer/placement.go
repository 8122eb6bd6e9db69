package importer

import (
	"findash/internal/calculator"
	"findash/internal/chart"
	"findash/internal/model"
	"findash/internal/parser"
)

// ProcessPlacementReport 招聘报表：员工类型、入离职、毛利、附加四个工作表
// 缺失的工作表只影响对应图表与 KPI；不使用任何样例数据。
func (c *Coordinator) ProcessPlacementReport(job Job) (*Result, error) {
	return c.run(job, model.DashboardPlacement, func(rc *runContext) (*model.Dashboard, error) {
		wb, err := c.loadWorkbook(rc, job.Path)
		if err != nil {
			return nil, err
		}
		shape, _ := parser.Shape(parser.ShapePlacementReport)
		res := parser.ExtractReport(wb, shape)
		rc.recordReport(res)

		d := placementDashboard(res)
		if wb != nil {
			d.SheetNames = wb.SheetNames
		}
		return d, nil
	})
}

func placementDashboard(res parser.ReportResult) *model.Dashboard {
	emp := res.Sheet(parser.SheetEmployment)
	pl := res.Sheet(parser.SheetPlacements)
	mg := res.Sheet(parser.SheetMargins)
	add := res.Sheet(parser.SheetAdditional)

	d := model.NewDashboard(model.DashboardPlacement)
	d.KPIs = placementKPIs(calculator.SummarizePlacements(emp, pl, mg))

	d.Charts["employment_types"] = chart.EmploymentTypes(emp)
	d.Charts["placement_metrics"] = chart.PlacementMetrics(pl)
	d.Charts["gross_margin"] = chart.GrossMargin(mg.Records)
	d.Charts["billables_trend"] = chart.BillablesTrend(pl)

	d.Status["sheet1_processed"] = emp.HasData()
	d.Status["sheet2_processed"] = pl.HasData()
	d.Status["sheet3_processed"] = mg.HasData()
	d.Status["sheet4_processed"] = add.Found && add.Rows > 0

	for _, sr := range []*parser.SheetResult{emp, pl} {
		for _, key := range sr.Order {
			d.RawSeries[sr.ID+"."+key] = labelSeries(sr.Labels, sr.Values(key))
		}
	}
	d.Extras = map[string]any{
		"margin_records": mg.Records,
		"missing": map[string][]string{
			parser.SheetEmployment: emp.Missing,
			parser.SheetPlacements: pl.Missing,
		},
	}
	return d
}

func placementKPIs(s calculator.PlacementSummary) []model.KPI {
	kpi := func(ok bool, key, label string, v float64, kind model.FormatKind) model.KPI {
		if !ok {
			return chart.MissingKPI(key, label, kind)
		}
		return chart.ToKPI(key, label, v, kind)
	}
	return []model.KPI{
		kpi(s.HasBillables, "total_current_billables", "Total Current Billables", s.TotalBillables, model.FormatCount),
		kpi(s.HasEmployment, "w2_placements", "W2 Placements", s.W2Placements, model.FormatCount),
		kpi(s.HasEmployment, "c2c_placements", "C2C Placements", s.C2CPlacements, model.FormatCount),
		kpi(s.HasNetLatest, "net_placements_latest", "Net Placements (Latest Month)", s.NetPlacementsLatest, model.FormatCount),
		kpi(s.HasPlacements, "total_placements", "Total Placements", s.TotalPlacements, model.FormatCount),
		kpi(s.HasTerminate, "total_terminations", "Total Terminations", s.TotalTerminations, model.FormatCount),
		kpi(s.HasPlacements || s.HasTerminate, "net_placements_period", "Net Placements (Period)", s.NetPlacementsPeriod, model.FormatCount),
		kpi(s.HasGrossMargin, "gross_margin_total", "Gross Margin Total", s.GrossMarginTotal, model.FormatCurrency),
	}
}
