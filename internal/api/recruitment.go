package api

import (
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"findash/internal/chart"
	"findash/internal/importer"
	"findash/internal/model"
	"findash/internal/service/excel"
	"findash/internal/store"
	"findash/internal/util"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// recruitmentDatasetHeaders 合并数据集的列
var recruitmentDatasetHeaders = []string{
	"month", "w2", "c2c", "employment_1099", "referral", "total_billables",
	"new_placements", "terminations", "net_placements", "net_billables",
}

// AddMonthRequest 手工录入一个月的招聘数据
type AddMonthRequest struct {
	Month      string                `json:"month" validate:"required"`
	Year       int                   `json:"year" validate:"omitempty,gte=1900,lte=2100"`
	Employment model.EmploymentMonth `json:"employment"`
	Placement  model.PlacementMonth  `json:"placement"`
}

// year 请求参数 > 配置表 > 启动配置 > 当前年份
func (h *Handler) year(c *gin.Context, explicit int) int {
	if explicit > 0 {
		return explicit
	}
	if v, err := strconv.Atoi(c.Query("year")); err == nil && v > 0 {
		return v
	}
	fallback := h.opts.RecruitmentYear
	if fallback <= 0 {
		fallback = time.Now().Year()
	}
	return h.db.RecruitmentYear(fallback)
}

// GetRecruitmentData 招聘数据表全部内容
// GET /api/recruitment/data
func (h *Handler) GetRecruitmentData(c *gin.Context) {
	emp, pl, margin, err := h.recruitmentTables()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"employment": emp,
		"placement":  pl,
		"margin":     margin,
	})
}

// GetRecruitmentCharts 招聘数据表图表
// GET /api/recruitment/charts
func (h *Handler) GetRecruitmentCharts(c *gin.Context) {
	emp, pl, margin, err := h.recruitmentTables()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"employment": chart.RecruitmentEmployment(emp),
		"placement":  chart.RecruitmentPlacement(pl),
		"margin":     chart.RecruitmentMargin(margin),
	})
}

func (h *Handler) recruitmentTables() ([]model.EmploymentMonth, []model.PlacementMonth, []model.MarginRecord, error) {
	emp, err := h.db.ListEmployment()
	if err != nil {
		return nil, nil, nil, err
	}
	pl, err := h.db.ListPlacement()
	if err != nil {
		return nil, nil, nil, err
	}
	margin, err := h.db.ListMargin()
	if err != nil {
		return nil, nil, nil, err
	}
	return emp, pl, margin, nil
}

// ListRecruitmentMonths 已有数据的月份（自然月顺序）
// GET /api/recruitment/months
func (h *Handler) ListRecruitmentMonths(c *gin.Context) {
	months, err := h.db.ListRecruitmentMonths()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"months": months})
}

// AddRecruitmentMonth 新增或覆盖一个月
// POST /api/recruitment/add_month
func (h *Handler) AddRecruitmentMonth(c *gin.Context) {
	var req AddMonthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if strings.TrimSpace(req.Month) != "" {
		month := importer.MonthName(req.Month, h.year(c, req.Year))
		req.Employment.Month = month
		req.Placement.Month = month
	}
	if err := h.validate.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid month data: " + err.Error()})
		return
	}

	if err := h.db.AddMonth(req.Employment, req.Placement); err != nil {
		util.LogError("add recruitment month failed", err, map[string]interface{}{"month": req.Employment.Month})
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	util.LogInfo("recruitment month saved", map[string]interface{}{"month": req.Employment.Month, "user": userID(c)})
	c.JSON(http.StatusOK, gin.H{"success": true, "month": req.Employment.Month})
}

// ImportRecruitment 把当前用户上传的招聘报表写入招聘数据表（整体替换）
// POST /api/recruitment/import
func (h *Handler) ImportRecruitment(c *gin.Context) {
	uid := userID(c)
	u, err := h.users.GetUpload(uid, model.UploadRec)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "no placement report uploaded"})
		return
	}
	if err != nil {
		processFailed(c, err)
		return
	}

	year := h.year(c, 0)
	data, err := h.coord.ExtractRecruitment(importer.Job{UserID: uid, Path: u.Path, Filename: u.Filename}, year)
	if err != nil {
		processFailed(c, err)
		return
	}
	if data.Empty() {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "no recruitment data found in " + u.Filename})
		return
	}

	// 没有毛利工作表时保留已有毛利数据
	margin := data.Margin
	if len(margin) == 0 {
		margin = nil
	}
	if err := h.db.ReplaceRecruitment(data.Employment, data.Placement, margin); err != nil {
		util.LogError("replace recruitment data failed", err, map[string]interface{}{"file": u.Filename})
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"year":            year,
		"employment_rows": len(data.Employment),
		"placement_rows":  len(data.Placement),
		"margin_rows":     len(data.Margin),
		"margin_kept":     margin == nil,
	})
}

// ExportRecruitmentDataset 按月份合并的数据集
// GET /api/recruitment/export/dataset?format=csv|xlsx
func (h *Handler) ExportRecruitmentDataset(c *gin.Context) {
	format := strings.ToLower(c.DefaultQuery("format", "csv"))
	if format != "csv" && format != "xlsx" {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unsupported format %q", format)})
		return
	}

	rows, err := h.db.RecruitmentRows()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if format == "xlsx" {
		c.Header("Content-Disposition", `attachment; filename="recruitment_dataset.xlsx"`)
		c.Header("Content-Type", xlsxContentType)
		c.Status(http.StatusOK)
		if err := excel.NewDatasetExporter().Write(c.Writer, datasetSheet(rows)); err != nil {
			util.LogError("write dataset xlsx failed", err, nil)
		}
		return
	}

	c.Header("Content-Disposition", `attachment; filename="recruitment_dataset.csv"`)
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Status(http.StatusOK)
	w := csv.NewWriter(c.Writer)
	_ = w.Write(recruitmentDatasetHeaders)
	for _, r := range rows {
		_ = w.Write(csvRecord(r))
	}
	w.Flush()
	if err := w.Error(); err != nil {
		util.LogError("write dataset csv failed", err, nil)
	}
}

// ExportRecruitment 生成招聘数据 XLSX，返回一次性下载地址
// POST /api/recruitment/export
func (h *Handler) ExportRecruitment(c *gin.Context) {
	emp, pl, margin, err := h.recruitmentTables()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	f, err := excel.NewDatasetExporter().Build(
		datasetSheet(store.JoinRecruitment(emp, pl)),
		employmentSheet(emp),
		placementSheet(pl),
		marginSheet(margin),
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	defer f.Close()

	path := filepath.Join(h.opts.ExportDir, "recruitment_"+uuid.NewString()+".xlsx")
	if err := f.SaveAs(path); err != nil {
		removeFiles(path)
		util.LogError("save export failed", err, map[string]interface{}{"path": path})
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to write export file"})
		return
	}

	filename := fmt.Sprintf("recruitment_%s.xlsx", time.Now().Format("20060102"))
	token, expiresAt := h.downloads.put(path, filename, DownloadTTL)
	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"token":       token,
		"downloadUrl": "/api/export/download/" + token,
		"expiresAt":   expiresAt.UTC().Format(time.RFC3339),
	})
}

// DownloadExport 下载导出文件（一次性）
// GET /api/export/download/:token
func (h *Handler) DownloadExport(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing token"})
		return
	}

	item, ok := h.downloads.get(token)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "download link expired"})
		return
	}
	if !fileExists(item.filePath) {
		h.downloads.delete(token)
		c.JSON(http.StatusNotFound, gin.H{"error": "export file not found"})
		return
	}

	c.Header("Content-Type", xlsxContentType)
	c.FileAttachment(item.filePath, item.filename)

	h.downloads.delete(token)
	removeFiles(item.filePath)
}

func intCell(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func intField(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func csvRecord(r model.RecruitmentRow) []string {
	return []string{
		r.Month,
		intField(r.W2), intField(r.C2C), intField(r.Employment1099), intField(r.Referral), intField(r.TotalBillables),
		intField(r.NewPlacements), intField(r.Terminations), intField(r.NetPlacements), intField(r.NetBillables),
	}
}

func datasetSheet(rows []model.RecruitmentRow) excel.Dataset {
	out := make([][]any, 0, len(rows))
	for _, r := range rows {
		out = append(out, []any{
			r.Month,
			intCell(r.W2), intCell(r.C2C), intCell(r.Employment1099), intCell(r.Referral), intCell(r.TotalBillables),
			intCell(r.NewPlacements), intCell(r.Terminations), intCell(r.NetPlacements), intCell(r.NetBillables),
		})
	}
	return excel.Dataset{Sheet: "Dataset", Headers: recruitmentDatasetHeaders, Rows: out, Widths: map[int]float64{0: 14}}
}

func employmentSheet(rows []model.EmploymentMonth) excel.Dataset {
	out := make([][]any, 0, len(rows))
	for _, r := range rows {
		out = append(out, []any{r.Month, r.W2, r.C2C, r.Employment1099, r.Referral, r.TotalBillables})
	}
	return excel.Dataset{
		Sheet:   "Employment",
		Headers: []string{"Month", "W2", "C2C", "1099", "Referral", "Total Billables"},
		Rows:    out,
	}
}

func placementSheet(rows []model.PlacementMonth) excel.Dataset {
	out := make([][]any, 0, len(rows))
	for _, r := range rows {
		out = append(out, []any{r.Month, r.NewPlacements, r.Terminations, r.NetPlacements, r.NetBillables})
	}
	return excel.Dataset{
		Sheet:   "Placements",
		Headers: []string{"Month", "New Placements", "Terminations", "Net Placements", "Net Billables"},
		Rows:    out,
	}
}

func marginSheet(rows []model.MarginRecord) excel.Dataset {
	out := make([][]any, 0, len(rows))
	for _, r := range rows {
		out = append(out, []any{r.CompanyType, r.Year2024, r.Year2025, r.Total})
	}
	return excel.Dataset{
		Sheet:   "Gross Margin",
		Headers: []string{"Company Type", "2024", "2025", "Total"},
		Rows:    out,
		Widths:  map[int]float64{0: 24},
	}
}
