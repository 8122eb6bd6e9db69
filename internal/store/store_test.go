package store_test

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"findash/internal/model"
	"findash/internal/store"
)

func openStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.New(filepath.Join(t.TempDir(), "findash.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestImportLogLifecycle(t *testing.T) {
	t.Parallel()
	st := openStore(t)

	_, err := st.LastImportLog("")
	require.ErrorIs(t, err, store.ErrNotFound)

	id, err := st.CreateImportLog("u1", "report.xlsx", "placement")
	require.NoError(t, err)
	require.NoError(t, st.UpdateImportLog(id, 4, 3, 1, model.ImportStatusCompleted, ""))

	l, err := st.LastImportLog("u1")
	require.NoError(t, err)
	assert.Equal(t, id, l.ID)
	assert.Equal(t, "report.xlsx", l.Filename)
	assert.Equal(t, model.ImportStatusCompleted, l.Status)
	assert.Equal(t, 3, l.ProcessedSheets)
	assert.Equal(t, 1, l.MissingSheets)
	assert.NotEmpty(t, l.CompletedAt)

	_, err = st.LastImportLog("someone-else")
	assert.ErrorIs(t, err, store.ErrNotFound)

	logs, err := st.ListImportLogs("u1", 10)
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestConfigRecruitmentYear(t *testing.T) {
	t.Parallel()
	st := openStore(t)

	assert.Equal(t, 2025, st.RecruitmentYear(2025))
	require.NoError(t, st.SetRecruitmentYear(2024))
	assert.Equal(t, 2024, st.RecruitmentYear(2025))

	_, err := st.GetConfig("missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUploadsAreLastWriteWins(t *testing.T) {
	t.Parallel()
	st := openStore(t)

	require.NoError(t, st.SaveUpload(model.Upload{UserID: "u1", Kind: model.UploadPL, Filename: "a.csv", Path: "/tmp/a.csv"}))
	require.NoError(t, st.SaveUpload(model.Upload{UserID: "u1", Kind: model.UploadPL, Filename: "b.csv", Path: "/tmp/b.csv"}))
	require.NoError(t, st.SaveUpload(model.Upload{UserID: "u1", Kind: model.UploadBS, Filename: "bs.csv", Path: "/tmp/bs.csv"}))

	u, err := st.GetUpload("u1", model.UploadPL)
	require.NoError(t, err)
	assert.Equal(t, "b.csv", u.Filename)

	_, err = st.GetUpload("u2", model.UploadPL)
	assert.ErrorIs(t, err, store.ErrNotFound)

	all, err := st.ListUploads("u1")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	removed, err := st.DeleteUploads("u1", model.UploadBS)
	require.NoError(t, err)
	require.Len(t, removed, 1)
	assert.Equal(t, "/tmp/bs.csv", removed[0].Path)

	all, err = st.ListUploads("u1")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestPurgeUploads(t *testing.T) {
	t.Parallel()
	st := openStore(t)

	old := time.Now().Add(-100 * time.Hour).UTC().Format(time.RFC3339)
	require.NoError(t, st.SaveUpload(model.Upload{UserID: "u1", Kind: model.UploadPL, Filename: "old.csv", Path: "/tmp/old.csv", CreatedAt: old}))
	require.NoError(t, st.SaveUpload(model.Upload{UserID: "u1", Kind: model.UploadBS, Filename: "new.csv", Path: "/tmp/new.csv"}))

	purged, err := st.PurgeUploads(time.Now().Add(-72 * time.Hour))
	require.NoError(t, err)
	require.Len(t, purged, 1)
	assert.Equal(t, "old.csv", purged[0].Filename)

	_, err = st.GetUpload("u1", model.UploadBS)
	assert.NoError(t, err)
}

func TestDashboardsAndFormulas(t *testing.T) {
	t.Parallel()
	st := openStore(t)

	d := model.NewDashboard(model.DashboardFinance)
	d.Status["has_summary"] = true
	d.KPIs = append(d.KPIs, model.KPI{Key: "total_revenue", Value: 300, Available: true})
	require.NoError(t, st.SaveDashboard("u1", d))
	require.NoError(t, st.SaveDashboard("u1", model.NewDashboard(model.DashboardPlacement)))

	got, err := st.GetDashboard("u1", model.DashboardFinance)
	require.NoError(t, err)
	assert.True(t, got.Status["has_summary"])
	k, ok := got.KPI("total_revenue")
	require.True(t, ok)
	assert.Equal(t, 300.0, k.Value)

	require.NoError(t, st.DeleteDashboards("u1", model.DashboardFinance))
	_, err = st.GetDashboard("u1", model.DashboardFinance)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = st.GetDashboard("u1", model.DashboardPlacement)
	assert.NoError(t, err)

	require.NoError(t, st.DeleteDashboards("u1"))
	_, err = st.GetDashboard("u1", model.DashboardPlacement)
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = st.GetFormulas("u1")
	assert.ErrorIs(t, err, store.ErrNotFound)
	formulas := json.RawMessage(`{"margin":"revenue - cogs"}`)
	require.NoError(t, st.SaveFormulas("u1", formulas))
	gotF, err := st.GetFormulas("u1")
	require.NoError(t, err)
	assert.JSONEq(t, string(formulas), string(gotF))

	assert.Error(t, st.SaveFormulas("u1", json.RawMessage(`{broken`)))
}

func TestRecruitmentTables(t *testing.T) {
	t.Parallel()
	st := openStore(t)

	emp := []model.EmploymentMonth{
		{Month: "Mar 2025", W2: 12},
		{Month: "Jan 2025", W2: 10, TotalBillables: 40},
		{Month: "Feb 2025", W2: 11},
	}
	pl := []model.PlacementMonth{
		{Month: "Jan 2025", NewPlacements: 5, Terminations: 1, NetPlacements: 4},
		{Month: "Apr 2025", NewPlacements: 2},
	}
	margin := []model.MarginRecord{{CompanyType: "TG C2C", Year2024: 45, Year2025: 30, Total: 75}}
	require.NoError(t, st.ReplaceRecruitment(emp, pl, margin))

	months, err := st.ListRecruitmentMonths()
	require.NoError(t, err)
	assert.Equal(t, []string{"Jan 2025", "Feb 2025", "Mar 2025", "Apr 2025"}, months)

	gotEmp, err := st.ListEmployment()
	require.NoError(t, err)
	require.Len(t, gotEmp, 3)
	assert.Equal(t, "Jan 2025", gotEmp[0].Month)
	assert.Equal(t, 40, gotEmp[0].TotalBillables)

	rows, err := st.RecruitmentRows()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	require.NotNil(t, rows[0].NewPlacements)
	assert.Equal(t, 5, *rows[0].NewPlacements)
	assert.Nil(t, rows[1].NewPlacements)
	assert.Nil(t, rows[3].W2)

	// 没有毛利工作表时保留原毛利数据
	require.NoError(t, st.ReplaceRecruitment(emp[1:2], nil, nil))
	gotMargin, err := st.ListMargin()
	require.NoError(t, err)
	require.Len(t, gotMargin, 1)
	assert.Equal(t, 75.0, gotMargin[0].Total)

	require.NoError(t, st.AddMonth(
		model.EmploymentMonth{Month: "Jan 2025", W2: 99},
		model.PlacementMonth{Month: "Jan 2025", NewPlacements: 7},
	))
	gotEmp, err = st.ListEmployment()
	require.NoError(t, err)
	require.Len(t, gotEmp, 1)
	assert.Equal(t, "Jan 2025", gotEmp[0].Month)
	assert.Equal(t, 99, gotEmp[0].W2)
}

func TestMemoryDatabase(t *testing.T) {
	t.Parallel()

	st, err := store.New(store.MemoryPath)
	require.NoError(t, err)
	defer st.Close()

	require.NoError(t, st.SaveFormulas("u1", json.RawMessage(`[]`)))
	got, err := st.GetFormulas("u1")
	require.NoError(t, err)
	assert.Equal(t, "[]", string(got))
}

func TestSortMonths(t *testing.T) {
	t.Parallel()

	months := []string{"Total", "Dec 2024", "Feb 2025", "Jan 2025"}
	store.SortMonths(months)
	assert.Equal(t, []string{"Dec 2024", "Jan 2025", "Feb 2025", "Total"}, months)
}
