package importer

import (
	"findash/internal/calculator"
	"findash/internal/chart"
	"findash/internal/model"
	"findash/internal/parser"
	"findash/internal/service/excel"
)

// FlexibleJob 流水型文件处理：Files 按上传类型（pl/bs/rec/mg）给出路径
type FlexibleJob struct {
	Job
	Files    map[string]string
	Mappings calculator.Mappings
}

// ProcessFlexible 按用户映射汇总损益、资产负债、招聘、毛利流水
// 未上传或未映射的部分跳过；招聘文件若是旧版招聘报表布局，则输出招聘报表图表。
func (c *Coordinator) ProcessFlexible(job FlexibleJob) (*Result, error) {
	if err := job.Mappings.Validate(); err != nil {
		return nil, err
	}
	if job.Filename == "" {
		job.Filename = "flexible"
	}
	return c.run(job.Job, model.DashboardFlexible, func(rc *runContext) (*model.Dashboard, error) {
		d := model.NewDashboard(model.DashboardFlexible)
		rc.report.Rollups = map[string]calculator.RollupStats{}
		charts := map[string]*chart.Chart{}

		plTable, err := c.flexibleTable(rc, job.Files[model.UploadPL], job.Mappings.PL != nil)
		if err != nil {
			return nil, err
		}
		fin := &model.FinancialFrame{}
		if plTable != nil {
			var stats calculator.RollupStats
			fin, stats = calculator.RollupPL(plTable, *job.Mappings.PL)
			rc.report.Rollups[model.UploadPL] = stats
		}
		d.Status["has_pl_data"] = fin.Len() > 0
		if fin.Len() > 0 {
			last := fin.Len() - 1
			d.KPIs = append(d.KPIs,
				chart.ToKPI("revenue_last", "Revenue (last period)", fin.Revenue[last], model.FormatCurrency),
				chart.ToKPI("gross_profit_last", "Gross Profit (last period)", fin.GrossProfit[last], model.FormatCurrency),
				chart.ToKPI("net_income_last", "Net Income (last period)", fin.NetIncome[last], model.FormatCurrency),
			)
			fields := fin.Fields()
			for _, name := range model.FinancialFieldOrder {
				d.RawSeries["pl."+name] = isoSeries(fin.Months, fields[name])
			}
			merge(charts, chart.PLCharts(fin))
		}

		bsTable, err := c.flexibleTable(rc, job.Files[model.UploadBS], job.Mappings.BS != nil)
		if err != nil {
			return nil, err
		}
		bs := model.NewMonthlyFrame()
		if bsTable != nil {
			var stats calculator.RollupStats
			bs, stats = calculator.RollupBS(bsTable, *job.Mappings.BS)
			rc.report.Rollups[model.UploadBS] = stats
		}
		d.Status["has_bs_data"] = !bs.Empty()
		if !bs.Empty() {
			assets, _ := bs.Last(calculator.FieldAssets)
			liab, _ := bs.Last(calculator.FieldLiabilities)
			d.KPIs = append(d.KPIs,
				chart.ToKPI("assets_last", "Assets (last)", assets, model.FormatCurrency),
				chart.ToKPI("liabilities_last", "Liabilities (last)", liab, model.FormatCurrency),
				chart.ToKPI("net_assets_last", "Assets − Liabilities (last)", assets-liab, model.FormatCurrency),
			)
			dumpFrame(d, "bs.", bs)
			merge(charts, chart.BSCharts(bs))
		}

		rec, err := c.flexibleRecruitment(rc, job, d, charts)
		if err != nil {
			return nil, err
		}
		d.Status["has_rec_data"] = !rec.Empty()

		mgTable, err := c.flexibleTable(rc, job.Files[model.UploadMargin], job.Mappings.Margin != nil)
		if err != nil {
			return nil, err
		}
		mg := model.NewMonthlyFrame()
		if mgTable != nil {
			var stats calculator.RollupStats
			mg, stats = calculator.RollupMargin(mgTable, *job.Mappings.Margin)
			rc.report.Rollups[model.UploadMargin] = stats
		}
		d.Status["has_mg_data"] = !mg.Empty()
		if !mg.Empty() {
			dumpFrame(d, "mg.", mg)
			merge(charts, chart.MarginCharts(mg))
		}

		for k, v := range charts {
			d.Charts[k] = v
		}
		return d, nil
	})
}

// flexibleTable 读取最合适的工作表；未上传、未映射或无数据时返回 nil
func (c *Coordinator) flexibleTable(rc *runContext, path string, mapped bool) (*model.Table, error) {
	if path == "" || !mapped {
		return nil, nil
	}
	wb, err := c.loadWorkbook(rc, path)
	if err != nil || wb == nil {
		return nil, err
	}
	t, ok := wb.Sheet(excel.PickSheet(wb.SheetNames, c.loader.Hints()))
	if !ok || t.Empty() {
		return nil, nil
	}
	return t, nil
}

// flexibleRecruitment 招聘文件：旧版招聘报表布局优先，否则按映射汇总
func (c *Coordinator) flexibleRecruitment(rc *runContext, job FlexibleJob, d *model.Dashboard, charts map[string]*chart.Chart) (*model.MonthlyFrame, error) {
	empty := model.NewMonthlyFrame()
	path := job.Files[model.UploadRec]
	if path == "" {
		return empty, nil
	}
	wb, err := c.loadWorkbook(rc, path)
	if err != nil || wb == nil {
		return empty, err
	}

	switch c.recognizer.DetectKind(wb) {
	case excel.KindPlacementLegacy, excel.KindPlacementReport:
		legacyShape, _ := parser.Shape(parser.ShapePlacementLegacy)
		res := parser.ExtractReport(wb, legacyShape)
		sr := res.Sheet(parser.SheetLegacy)
		if hasAny(sr, "W2", "C2C", "1099", "Referral") {
			rc.recordSheet(sr)
			charts["employment_types"] = chart.EmploymentTypes(sr)
			charts["placement_metrics"] = chart.PlacementMetrics(sr)
			if mg := marginSheet(wb); mg.HasData() {
				charts["gross_margin"] = chart.GrossMargin(mg.Records)
			}
			for _, key := range sr.Order {
				d.RawSeries["rec."+key] = labelSeries(sr.Labels, sr.Values(key))
			}
			d.Status["rec_placement_report"] = true
			return empty, nil
		}
	}

	if job.Mappings.Rec == nil {
		return empty, nil
	}
	t, ok := wb.Sheet(excel.PickSheet(wb.SheetNames, c.loader.Hints()))
	if !ok || t.Empty() {
		return empty, nil
	}
	frame, stats := calculator.RollupRecruit(t, *job.Mappings.Rec)
	rc.report.Rollups[model.UploadRec] = stats
	if !frame.Empty() {
		dumpFrame(d, "rec.", frame)
		merge(charts, chart.RecCharts(frame))
	}
	return frame, nil
}

// marginSheet 用招聘报表形态中的毛利规则提取
func marginSheet(wb *model.Workbook) *parser.SheetResult {
	shape, _ := parser.Shape(parser.ShapePlacementReport)
	for _, ss := range shape.Sheets {
		if ss.ID != parser.SheetMargins {
			continue
		}
		name, ok := parser.SelectSheet(wb, ss.Selector)
		if !ok {
			break
		}
		t, _ := wb.Sheet(name)
		return parser.ExtractSheet(t, ss)
	}
	return &parser.SheetResult{ID: parser.SheetMargins}
}

func hasAny(sr *parser.SheetResult, keys ...string) bool {
	for _, k := range keys {
		if _, ok := sr.Get(k); ok {
			return true
		}
	}
	return false
}

func dumpFrame(d *model.Dashboard, prefix string, f *model.MonthlyFrame) {
	for _, name := range f.Order {
		d.RawSeries[prefix+name] = isoSeries(f.Months, f.Values(name))
	}
}

func merge(dst, src map[string]*chart.Chart) {
	for k, v := range src {
		dst[k] = v
	}
}
