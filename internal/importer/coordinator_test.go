package importer_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"findash/internal/calculator"
	"findash/internal/importer"
	"findash/internal/model"
	"findash/internal/service/excel"
)

type sheetRows struct {
	name string
	rows [][]interface{}
}

func saveWorkbook(t *testing.T, name string, sheets []sheetRows) string {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	for i, s := range sheets {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", s.name))
		} else {
			_, err := f.NewSheet(s.name)
			require.NoError(t, err)
		}
		for r, row := range s.rows {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(s.name, cell, &row))
		}
	}
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, f.SaveAs(path))
	return path
}

func employmentSheet() sheetRows {
	return sheetRows{name: "Employment", rows: [][]interface{}{
		{"", "", "", "Type", "Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug"},
		{"", "", "", "TG W2", 10, 11, 12, 13, 14, 15, 16, 17},
		{"", "", "", "TG C2C", 1, 1, 1, 1, 1, 1, 1, 5},
		{"", "", "", "TG 1099", 0, 0, 0, 0, 0, 0, 0, 2},
		{"", "", "", "VNST W2", 2, 2, 2, 2, 2, 2, 2, 3},
	}}
}

func placementSheet() sheetRows {
	return sheetRows{name: "Placements", rows: [][]interface{}{
		{"Metric", "Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug"},
		{"Total billables", 40, 41, 43, 44, 45, 46, 47, 52},
		{"New Placements", 5, 3, 4, 2, 2, 3, 1, 4},
		{"Terminations", 1, 2, 1, 1, 0, 2, 1, 2},
		{"Net Placements", 4, 1, 3, 1, 2, 1, 0, 2},
	}}
}

func marginSheet() sheetRows {
	return sheetRows{name: "Gross Margin IT", rows: [][]interface{}{
		{"Company", "2024", "2025", "Total"},
		{"Techgene 1099", 30, 15, 45},
		{"TG C2C", 45, 30, ""},
		{"Total", 75, 45, 120},
	}}
}

type fakeLogs struct {
	created []string
	status  string
	message string
	sheets  [3]int
}

func (f *fakeLogs) CreateImportLog(userID, filename, kind string) (int64, error) {
	f.created = append(f.created, userID+"|"+filename+"|"+kind)
	return int64(len(f.created)), nil
}

func (f *fakeLogs) UpdateImportLog(id int64, total, processed, missing int, status, msg string) error {
	f.sheets = [3]int{total, processed, missing}
	f.status, f.message = status, msg
	return nil
}

func fixedClock() time.Time {
	return time.Date(2025, 9, 1, 8, 30, 0, 0, time.UTC)
}

func kpi(t *testing.T, d *model.Dashboard, key string) model.KPI {
	t.Helper()
	k, ok := d.KPI(key)
	require.True(t, ok, "kpi %s", key)
	return k
}

func TestProcessPlacementReport(t *testing.T) {
	t.Parallel()

	path := saveWorkbook(t, "placements.xlsx", []sheetRows{employmentSheet(), placementSheet(), marginSheet()})
	logs := &fakeLogs{}
	var events []string
	c := importer.NewCoordinator(nil, importer.WithImportLog(logs), importer.WithClock(fixedClock))

	res, err := c.ProcessPlacementReport(importer.Job{
		UserID:   "u1",
		Path:     path,
		Filename: "August.xlsx",
		Progress: func(e importer.ProgressEvent) { events = append(events, e.Type) },
	})
	require.NoError(t, err)
	d := res.Dashboard

	assert.Equal(t, model.DashboardPlacement, d.Kind)
	assert.Equal(t, "August.xlsx", d.Filename)
	assert.Equal(t, "2025-09-01T08:30:00Z", d.GeneratedAt)
	assert.Equal(t, []string{"Employment", "Placements", "Gross Margin IT"}, d.SheetNames)

	// 最新月取 Aug 列
	assert.Equal(t, 52.0, kpi(t, d, "total_current_billables").Value)
	assert.Equal(t, 20.0, kpi(t, d, "w2_placements").Value)
	assert.Equal(t, 5.0, kpi(t, d, "c2c_placements").Value)
	assert.Equal(t, 2.0, kpi(t, d, "net_placements_latest").Value)
	assert.Equal(t, 24.0, kpi(t, d, "total_placements").Value)
	assert.Equal(t, 10.0, kpi(t, d, "total_terminations").Value)
	assert.Equal(t, 14.0, kpi(t, d, "net_placements_period").Value)
	gm := kpi(t, d, "gross_margin_total")
	assert.True(t, gm.Available)
	assert.Equal(t, 120.0, gm.Value)

	assert.True(t, d.Status["sheet1_processed"])
	assert.True(t, d.Status["sheet2_processed"])
	assert.True(t, d.Status["sheet3_processed"])
	assert.False(t, d.Status["sheet4_processed"])
	for _, id := range []string{"employment_types", "placement_metrics", "gross_margin", "billables_trend"} {
		assert.Contains(t, d.Charts, id)
	}
	assert.Contains(t, d.RawSeries, "employment_types.TG W2")

	require.Len(t, logs.created, 1)
	assert.Equal(t, "u1|August.xlsx|placement", logs.created[0])
	assert.Equal(t, model.ImportStatusCompleted, logs.status)
	assert.Equal(t, 3, logs.sheets[0])

	require.NotEmpty(t, events)
	assert.Equal(t, "start", events[0])
	assert.Equal(t, "done", events[len(events)-1])
}

func TestProcessPlacementReportWithoutMarginSheet(t *testing.T) {
	t.Parallel()

	path := saveWorkbook(t, "no-margin.xlsx", []sheetRows{employmentSheet(), placementSheet()})
	res, err := importer.NewCoordinator(nil).ProcessPlacementReport(importer.Job{Path: path})
	require.NoError(t, err)
	d := res.Dashboard

	gm := kpi(t, d, "gross_margin_total")
	assert.False(t, gm.Available)
	assert.Equal(t, 0.0, gm.Value)
	assert.Equal(t, "—", gm.Display)
	assert.False(t, d.Status["sheet3_processed"])
	assert.True(t, kpi(t, d, "w2_placements").Available)
	assert.Equal(t, "no-margin.xlsx", d.Filename)
	assert.Equal(t, 2, res.Report.MissingSheets)
	assert.Equal(t, 1, countMissing(res.Report, "gross_margin"))
}

func countMissing(r *importer.ProcessReport, sheetID string) int {
	n := 0
	for _, s := range r.Sheets {
		if s.SheetID == sheetID && s.Status == importer.SheetMissing {
			n++
		}
	}
	return n
}

func TestProcessFinanceReport(t *testing.T) {
	t.Parallel()

	path := saveWorkbook(t, "finance.xlsx", []sheetRows{
		{name: "Techgene PnL new", rows: [][]interface{}{
			{"Account", "", "", "Line", "Jan 25", "Feb 25"},
			{"", "", "", "Total Income", 100, 200},
			{"", "", "", "Total Expense", 60, 80},
			{"Net Income", "", "", "", 40, 120},
		}},
	})
	res, err := importer.NewCoordinator(nil).ProcessFinanceReport(importer.Job{Path: path})
	require.NoError(t, err)
	d := res.Dashboard

	assert.Equal(t, 300.0, kpi(t, d, "total_revenue").Value)
	assert.Equal(t, 140.0, kpi(t, d, "total_expenses").Value)
	assert.Equal(t, 160.0, kpi(t, d, "total_net_income").Value)
	assert.InDelta(t, 53.33, kpi(t, d, "profit_margin").Value, 0.01)
	assert.Equal(t, 37.5, kpi(t, d, "avg_monthly_revenue").Value)

	assert.True(t, d.Status["has_techgene_pnl"])
	assert.False(t, d.Status["has_vensiti_pnl"])
	assert.False(t, d.Status["has_direct_hire"])
	assert.Contains(t, d.Charts, "monthly_pnl_trend")
	assert.Contains(t, d.Charts, "direct_hire_finance")
}

func TestProcessFlexibleCSV(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	pl := filepath.Join(dir, "pl.csv")
	require.NoError(t, os.WriteFile(pl, []byte(
		"date,revenue,cogs,opex\n"+
			"2025-01-05,100,40,20\n"+
			"2025-01-20,50,10,5\n"+
			"not a date,999,999,999\n"+
			"2025-02-10,80,30,10\n"), 0o644))
	bs := filepath.Join(dir, "bs.csv")
	require.NoError(t, os.WriteFile(bs, []byte(
		"month,assets,liabilities\n"+
			"2025-01-31,1000,400\n"+
			"2025-02-28,1200,500\n"), 0o644))

	c := importer.NewCoordinator(nil)
	res, err := c.ProcessFlexible(importer.FlexibleJob{
		Files: map[string]string{model.UploadPL: pl, model.UploadBS: bs},
		Mappings: calculator.Mappings{
			PL: &calculator.PLMapping{
				Date:    "date",
				Revenue: calculator.Columns{"revenue"},
				COGS:    calculator.Columns{"cogs"},
				Opex:    calculator.Columns{"opex"},
			},
			BS: &calculator.BSMapping{
				Date:        "month",
				Assets:      calculator.Columns{"assets"},
				Liabilities: calculator.Columns{"liabilities"},
			},
		},
	})
	require.NoError(t, err)
	d := res.Dashboard

	assert.Equal(t, 80.0, kpi(t, d, "revenue_last").Value)
	assert.Equal(t, 50.0, kpi(t, d, "gross_profit_last").Value)
	assert.Equal(t, 40.0, kpi(t, d, "net_income_last").Value)
	assert.Equal(t, 700.0, kpi(t, d, "net_assets_last").Value)

	assert.True(t, d.Status["has_pl_data"])
	assert.True(t, d.Status["has_bs_data"])
	assert.False(t, d.Status["has_rec_data"])
	assert.False(t, d.Status["has_mg_data"])

	rev := d.RawSeries["pl.revenue"]
	assert.Equal(t, []string{"2025-01-01", "2025-02-01"}, rev.Labels)
	assert.Equal(t, []float64{150, 80}, rev.Values)
	assert.Contains(t, d.Charts, "pl_waterfall")
	assert.Contains(t, d.Charts, "bs_line")

	stats := res.Report.Rollups[model.UploadPL]
	assert.Equal(t, 4, stats.TotalRows)
	assert.Equal(t, 1, stats.Excluded)
}

func TestProcessFlexibleRejectsInvalidMappings(t *testing.T) {
	t.Parallel()

	logs := &fakeLogs{}
	c := importer.NewCoordinator(nil, importer.WithImportLog(logs))
	_, err := c.ProcessFlexible(importer.FlexibleJob{
		Mappings: calculator.Mappings{PL: &calculator.PLMapping{Revenue: calculator.Columns{"revenue"}}},
	})
	require.Error(t, err)
	assert.Empty(t, logs.created)
}

func TestProcessMalformedFileFails(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "broken.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("definitely not a zip archive"), 0o644))

	logs := &fakeLogs{}
	_, err := importer.NewCoordinator(nil, importer.WithImportLog(logs)).ProcessPlacementReport(importer.Job{Path: path})
	require.Error(t, err)
	assert.ErrorIs(t, err, excel.ErrMalformedInput)
	assert.Equal(t, model.ImportStatusFailed, logs.status)
	assert.NotEmpty(t, logs.message)
}

func TestProcessMissingFileDegradesToEmptyDashboard(t *testing.T) {
	t.Parallel()

	c := importer.NewCoordinator(nil)
	path := filepath.Join(t.TempDir(), "gone.xlsx")

	res, err := c.ProcessPlacementReport(importer.Job{Path: path})
	require.NoError(t, err)
	assert.False(t, res.Dashboard.HasData())
	for _, k := range res.Dashboard.KPIs {
		assert.False(t, k.Available, k.Key)
		assert.Equal(t, 0.0, k.Value, k.Key)
	}

	fin, err := c.ProcessFinanceReport(importer.Job{Path: path})
	require.NoError(t, err)
	assert.False(t, fin.Dashboard.HasData())
}

func TestProcessUnknownShape(t *testing.T) {
	t.Parallel()

	_, err := importer.NewCoordinator(nil).Process("quarterly", importer.Job{}, calculator.Mappings{})
	assert.ErrorIs(t, err, importer.ErrUnknownShape)
}

func TestExtractRecruitment(t *testing.T) {
	t.Parallel()

	path := saveWorkbook(t, "recruitment.xlsx", []sheetRows{employmentSheet(), placementSheet(), marginSheet()})
	data, err := importer.NewCoordinator(nil).ExtractRecruitment(importer.Job{Path: path}, 2025)
	require.NoError(t, err)
	require.False(t, data.Empty())

	require.Len(t, data.Employment, 8)
	assert.Equal(t, "Jan 2025", data.Employment[0].Month)
	assert.Equal(t, 12, data.Employment[0].W2)
	assert.Equal(t, 40, data.Employment[0].TotalBillables)
	assert.Equal(t, "Aug 2025", data.Employment[7].Month)
	assert.Equal(t, 20, data.Employment[7].W2)
	assert.Equal(t, 5, data.Employment[7].C2C)
	assert.Equal(t, 2, data.Employment[7].Employment1099)
	assert.Equal(t, 52, data.Employment[7].TotalBillables)

	require.NotEmpty(t, data.Placement)
	assert.Equal(t, "Jan 2025", data.Placement[0].Month)
	assert.Equal(t, 5, data.Placement[0].NewPlacements)
	assert.Equal(t, 4, data.Placement[0].NetPlacements)

	require.Len(t, data.Margin, 2)
	assert.Equal(t, "TG C2C", data.Margin[1].CompanyType)
	assert.Equal(t, 75.0, data.Margin[1].Total)
}

func TestExtractRecruitmentWithoutMarginSheet(t *testing.T) {
	t.Parallel()

	path := saveWorkbook(t, "recruitment.xlsx", []sheetRows{employmentSheet(), placementSheet()})
	data, err := importer.NewCoordinator(nil).ExtractRecruitment(importer.Job{Path: path}, 2025)
	require.NoError(t, err)
	assert.Empty(t, data.Margin)
	assert.NotEmpty(t, data.Employment)
}

func TestMonthName(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Jan":        "Jan 2025",
		"August":     "Aug 2025",
		" Mar ":      "Mar 2025",
		"2024-03-01": "Mar 2024",
		"Feb 2024":   "Feb 2024",
		"Q1":         "Q1",
	}
	for in, want := range cases {
		assert.Equal(t, want, importer.MonthName(in, 2025), in)
	}
}
