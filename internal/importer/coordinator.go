package importer

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"findash/internal/calculator"
	"findash/internal/model"
	"findash/internal/parser"
	"findash/internal/service/excel"
	"findash/internal/util"
)

// ErrUnknownShape 不支持的报表形态
var ErrUnknownShape = errors.New("unknown report shape")

// ImportLogger 处理日志的持久化
type ImportLogger interface {
	CreateImportLog(userID, filename, kind string) (int64, error)
	UpdateImportLog(id int64, totalSheets, processedSheets, missingSheets int, status, errorMessage string) error
}

// ProgressEvent 进度事件
type ProgressEvent struct {
	Type      string      `json:"type"` // start/sheet_done/warning/done/error
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Coordinator 处理流水线：加载 → 定位/汇总 → 计算 → 投影
// 每次调用独立加载文件，不在调用之间共享中间结果。
type Coordinator struct {
	loader        *excel.Loader
	recognizer    *excel.Recognizer
	logs          ImportLogger
	financeMonths int
	monthLabels   []string
	now           func() time.Time
}

// Option 协调器选项
type Option func(*Coordinator)

// WithImportLog 记录每次处理
func WithImportLog(l ImportLogger) Option {
	return func(c *Coordinator) { c.logs = l }
}

// WithFinanceMonths 财务月均值的月份数
func WithFinanceMonths(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.financeMonths = n
		}
	}
}

// WithMonthLabels 报表形态的默认期间标签
func WithMonthLabels(labels []string) Option {
	return func(c *Coordinator) {
		if len(labels) > 0 {
			c.monthLabels = labels
		}
	}
}

// WithClock 测试用时钟
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// NewCoordinator 创建协调器
func NewCoordinator(loader *excel.Loader, opts ...Option) *Coordinator {
	if loader == nil {
		loader = excel.NewLoader()
	}
	c := &Coordinator{
		loader:        loader,
		recognizer:    excel.NewRecognizer(),
		financeMonths: calculator.DefaultFinanceMonths,
		monthLabels:   parser.DefaultMonthLabels,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Job 一次处理请求
type Job struct {
	UserID   string
	Path     string
	Filename string
	Progress func(ProgressEvent)
}

func (j Job) displayName() string {
	if j.Filename != "" {
		return j.Filename
	}
	return filepath.Base(j.Path)
}

// 工作表处理状态
const (
	SheetProcessed = "processed"
	SheetPartial   = "partial"
	SheetMissing   = "missing"
)

// SheetOutcome 单个工作表的处理结果
type SheetOutcome struct {
	SheetID   string   `json:"sheet_id"`
	SheetName string   `json:"sheet_name,omitempty"`
	Status    string   `json:"status"`
	Metrics   int      `json:"metrics"`
	Missing   []string `json:"missing,omitempty"`
}

// ProcessReport 处理报告
type ProcessReport struct {
	Filename        string                            `json:"filename"`
	Kind            string                            `json:"kind"`
	TotalSheets     int                               `json:"total_sheets"`
	ProcessedSheets int                               `json:"processed_sheets"`
	MissingSheets   int                               `json:"missing_sheets"`
	Sheets          []SheetOutcome                    `json:"sheets"`
	Rollups         map[string]calculator.RollupStats `json:"rollups,omitempty"`
	Duration        time.Duration                     `json:"duration"`
}

// Result 处理产物
type Result struct {
	Dashboard *model.Dashboard `json:"dashboard"`
	Report    *ProcessReport   `json:"report"`
}

type runContext struct {
	job    Job
	report *ProcessReport
}

func (rc *runContext) emit(typ, msg string, data interface{}) {
	if rc.job.Progress == nil {
		return
	}
	rc.job.Progress(ProgressEvent{Type: typ, Message: msg, Data: data, Timestamp: time.Now()})
}

// recordReport 登记提取结果；缺失的工作表和指标按 warn 记录，不中断处理
func (rc *runContext) recordReport(res parser.ReportResult) {
	for _, id := range res.Order {
		rc.recordSheet(res.Sheet(id))
	}
}

func (rc *runContext) recordSheet(sr *parser.SheetResult) {
	out := SheetOutcome{
		SheetID:   sr.ID,
		SheetName: sr.SheetName,
		Metrics:   len(sr.Series) + len(sr.Records) + len(sr.Cells),
		Missing:   sr.Missing,
	}
	switch {
	case !sr.HasData():
		out.Status = SheetMissing
		rc.report.MissingSheets++
		util.LogWarn("sheet not available", map[string]interface{}{
			"file": rc.report.Filename, "sheet": sr.ID, "sheet_name": sr.SheetName,
		})
		rc.emit("warning", fmt.Sprintf("sheet %s not available", sr.ID), out)
	case len(sr.Missing) > 0:
		out.Status = SheetPartial
		rc.report.ProcessedSheets++
		util.LogWarn("sheet partially extracted", map[string]interface{}{
			"file": rc.report.Filename, "sheet": sr.SheetName, "missing": sr.Missing,
		})
		rc.emit("sheet_done", fmt.Sprintf("sheet %q processed with %d missing metrics", sr.SheetName, len(sr.Missing)), out)
	default:
		out.Status = SheetProcessed
		rc.report.ProcessedSheets++
		util.LogDebug("sheet extracted", map[string]interface{}{
			"file": rc.report.Filename, "sheet": sr.SheetName, "metrics": out.Metrics,
		})
		rc.emit("sheet_done", fmt.Sprintf("sheet %q processed", sr.SheetName), out)
	}
	rc.report.Sheets = append(rc.report.Sheets, out)
}

// loadWorkbook 不存在或为空的文件视为无数据（返回 nil, nil），无法解析的文件返回错误
func (c *Coordinator) loadWorkbook(rc *runContext, path string) (*model.Workbook, error) {
	wb, err := c.loader.LoadWorkbook(path)
	if err == nil {
		rc.report.TotalSheets += len(wb.SheetNames)
		return wb, nil
	}
	if excel.IsNoData(err) {
		util.LogWarn("no data in file", map[string]interface{}{"path": path, "reason": err.Error()})
		rc.emit("warning", "no data available", map[string]string{"path": path})
		return nil, nil
	}
	return nil, err
}

// run 公共流程：处理日志、进度事件、错误记录
func (c *Coordinator) run(job Job, kind string, fn func(rc *runContext) (*model.Dashboard, error)) (*Result, error) {
	start := time.Now()
	rc := &runContext{
		job: job,
		report: &ProcessReport{
			Filename: job.displayName(),
			Kind:     kind,
			Sheets:   []SheetOutcome{},
		},
	}

	var logID int64
	if c.logs != nil {
		id, err := c.logs.CreateImportLog(job.UserID, rc.report.Filename, kind)
		if err != nil {
			util.LogWarn("create import log failed", map[string]interface{}{"error": err.Error()})
		}
		logID = id
	}

	rc.emit("start", "processing "+rc.report.Filename, map[string]string{"filename": rc.report.Filename, "kind": kind})

	dash, err := fn(rc)
	rc.report.Duration = time.Since(start)

	status, msg := model.ImportStatusCompleted, ""
	if err != nil {
		status, msg = model.ImportStatusFailed, err.Error()
	}
	if c.logs != nil && logID > 0 {
		if uerr := c.logs.UpdateImportLog(logID, rc.report.TotalSheets, rc.report.ProcessedSheets,
			rc.report.MissingSheets, status, msg); uerr != nil {
			util.LogWarn("update import log failed", map[string]interface{}{"error": uerr.Error()})
		}
	}

	if err != nil {
		util.LogError("processing failed", err, map[string]interface{}{"file": rc.report.Filename, "kind": kind})
		rc.emit("error", err.Error(), nil)
		return nil, err
	}

	dash.Filename = rc.report.Filename
	dash.GeneratedAt = c.now().UTC().Format(time.RFC3339)
	util.LogInfo("processing completed", map[string]interface{}{
		"file":      rc.report.Filename,
		"kind":      kind,
		"processed": rc.report.ProcessedSheets,
		"missing":   rc.report.MissingSheets,
		"has_data":  dash.HasData(),
		"duration":  rc.report.Duration.String(),
	})
	rc.emit("done", "processing completed", rc.report)
	return &Result{Dashboard: dash, Report: rc.report}, nil
}

// Process 按报表形态处理单个文件
func (c *Coordinator) Process(shape string, job Job, mappings calculator.Mappings) (*Result, error) {
	switch shape {
	case "placement", parser.ShapePlacementReport:
		return c.ProcessPlacementReport(job)
	case "finance", parser.ShapeFinanceWorkbook:
		return c.ProcessFinanceReport(job)
	case "flexible":
		return c.ProcessFlexible(FlexibleJob{Job: job, Files: c.flexibleFiles(job.Path, mappings), Mappings: mappings})
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownShape, shape)
}

// flexibleFiles 命令行场景下同一文件用于所有提供了映射的部分
func (c *Coordinator) flexibleFiles(path string, m calculator.Mappings) map[string]string {
	files := map[string]string{}
	if m.PL != nil {
		files[model.UploadPL] = path
	}
	if m.BS != nil {
		files[model.UploadBS] = path
	}
	if m.Rec != nil {
		files[model.UploadRec] = path
	}
	if m.Margin != nil {
		files[model.UploadMargin] = path
	}
	return files
}

func isoSeries(months []time.Time, values []float64) model.SeriesDump {
	return model.SeriesDump{Labels: parser.ISODates(months), Values: append([]float64{}, values...)}
}

func labelSeries(labels []string, values []float64) model.SeriesDump {
	return model.SeriesDump{Labels: append([]string{}, labels...), Values: parser.FitWidth(values, len(labels))}
}
