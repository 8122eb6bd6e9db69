package importer

import (
	"findash/internal/calculator"
	"findash/internal/chart"
	"findash/internal/model"
	"findash/internal/parser"
)

var financeUnits = []struct {
	id   string
	name string
}{
	{parser.SheetDirectHire, "Direct Hire"},
	{parser.SheetServices, "Services"},
	{parser.SheetITStaffing, "IT Staffing"},
}

// ProcessFinanceReport 财务工作簿：汇总表、三个业务单元表、两家公司损益表
func (c *Coordinator) ProcessFinanceReport(job Job) (*Result, error) {
	return c.run(job, model.DashboardFinance, func(rc *runContext) (*model.Dashboard, error) {
		wb, err := c.loadWorkbook(rc, job.Path)
		if err != nil {
			return nil, err
		}
		shape, _ := parser.Shape(parser.ShapeFinanceWorkbook)
		res := parser.ExtractReport(wb, shape)
		rc.recordReport(res)

		d := c.financeDashboard(res)
		if wb != nil {
			d.SheetNames = wb.SheetNames
		}
		return d, nil
	})
}

func (c *Coordinator) financeLabels() []string {
	labels := make([]string, c.financeMonths)
	for i := range labels {
		if i < len(c.monthLabels) {
			labels[i] = c.monthLabels[i]
		}
	}
	return labels
}

func (c *Coordinator) financeDashboard(res parser.ReportResult) *model.Dashboard {
	summary := res.Sheet(parser.SheetFinanceSummary)
	units := make([]*parser.SheetResult, 0, len(financeUnits))
	for _, u := range financeUnits {
		units = append(units, res.Sheet(u.id))
	}
	pnls := []*parser.SheetResult{res.Sheet(parser.SheetTechgenePnL), res.Sheet(parser.SheetVensitiPnL)}
	labels := c.financeLabels()

	s := calculator.SummarizeFinance(units, pnls, c.financeMonths)
	d := model.NewDashboard(model.DashboardFinance)
	d.KPIs = financeKPIs(s)

	for i, u := range financeUnits {
		d.Charts[u.id+"_finance"] = chart.UnitFinance(u.name, summary, labels, c.financeMonths)
		d.Status["has_"+u.id] = units[i].HasData()
	}
	d.Charts["business_units_revenue"] = chart.BusinessUnitsRevenue(units, labels)
	d.Charts["monthly_pnl_trend"] = chart.MonthlyPnLTrend(pnls, labels)
	d.Charts["summary_metrics"] = chart.SummaryMetrics(summary, labels)

	d.Status["has_summary"] = summary.HasData()
	d.Status["has_techgene_pnl"] = pnls[0].HasData()
	d.Status["has_vensiti_pnl"] = pnls[1].HasData()

	specific := map[string]map[string]float64{}
	for _, u := range units {
		if len(u.Cells) > 0 {
			specific[u.ID] = u.Cells
		}
	}
	for _, sr := range append(append([]*parser.SheetResult{}, units...), pnls...) {
		for _, key := range sr.Order {
			d.RawSeries[sr.ID+"."+key] = labelSeries(labels, sr.Values(key))
		}
	}
	d.Extras = map[string]any{
		"specific_values": specific,
		"summary_metrics": calculator.SummaryMetrics(summary),
		"totals":          s,
	}
	return d
}

func financeKPIs(s calculator.FinanceSummary) []model.KPI {
	if s.Sources == 0 {
		return []model.KPI{
			chart.MissingKPI("total_revenue", "Total Revenue", model.FormatCurrency),
			chart.MissingKPI("total_expenses", "Total Expenses", model.FormatCurrency),
			chart.MissingKPI("total_net_income", "Total Net Income", model.FormatCurrency),
			chart.MissingKPI("profit_margin", "Profit Margin", model.FormatPercentage),
			chart.MissingKPI("avg_monthly_revenue", "Avg Monthly Revenue", model.FormatCurrency),
			chart.MissingKPI("avg_monthly_net_income", "Avg Monthly Net Income", model.FormatCurrency),
		}
	}
	margin := chart.MissingKPI("profit_margin", "Profit Margin", model.FormatPercentage)
	if s.HasProfitMargin {
		margin = chart.ToKPI("profit_margin", "Profit Margin", s.ProfitMargin, model.FormatPercentage)
	}
	return []model.KPI{
		chart.ToKPI("total_revenue", "Total Revenue", s.TotalRevenue, model.FormatCurrency),
		chart.ToKPI("total_expenses", "Total Expenses", s.TotalExpenses, model.FormatCurrency),
		chart.ToKPI("total_net_income", "Total Net Income", s.TotalNetIncome, model.FormatCurrency),
		margin,
		chart.ToKPI("avg_monthly_revenue", "Avg Monthly Revenue", s.AvgMonthlyRevenue, model.FormatCurrency),
		chart.ToKPI("avg_monthly_net_income", "Avg Monthly Net Income", s.AvgMonthlyNetIncome, model.FormatCurrency),
	}
}
