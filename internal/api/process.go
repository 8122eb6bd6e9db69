package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"findash/internal/calculator"
	"findash/internal/importer"
	"findash/internal/model"
	"findash/internal/store"
	"findash/internal/util"
)

// ProcessRequest 流水型处理请求
type ProcessRequest struct {
	Mappings calculator.Mappings `json:"mappings"`
}

type runFunc func(progress func(importer.ProgressEvent)) (*importer.Result, error)

// ProcessFlexible 按列映射处理已上传的 pl/bs/rec/mg 文件
// POST /api/process
func (h *Handler) ProcessFlexible(c *gin.Context) {
	var req ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body: " + err.Error()})
		return
	}
	if err := req.Mappings.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	uid := userID(c)
	files := map[string]string{}
	for _, kind := range []string{model.UploadPL, model.UploadBS, model.UploadRec, model.UploadMargin} {
		u, err := h.users.GetUpload(uid, kind)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			processFailed(c, err)
			return
		}
		files[kind] = u.Path
	}
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "no uploaded files to process"})
		return
	}

	h.respond(c, uid, func(progress func(importer.ProgressEvent)) (*importer.Result, error) {
		return h.coord.ProcessFlexible(importer.FlexibleJob{
			Job:      importer.Job{UserID: uid, Filename: "flexible", Progress: progress},
			Files:    files,
			Mappings: req.Mappings,
		})
	})
}

// ProcessPlacementReport 处理已上传的招聘报表
// POST /api/process_placement_report
func (h *Handler) ProcessPlacementReport(c *gin.Context) {
	h.processUpload(c, model.UploadRec, "no placement report uploaded", h.coord.ProcessPlacementReport)
}

// ProcessFinanceReport 处理已上传的财务工作簿
// POST /api/process_finance_report
func (h *Handler) ProcessFinanceReport(c *gin.Context) {
	h.processUpload(c, model.UploadFinance, "no finance workbook uploaded", h.coord.ProcessFinanceReport)
}

func (h *Handler) processUpload(c *gin.Context, kind, missing string, process func(importer.Job) (*importer.Result, error)) {
	uid := userID(c)
	u, err := h.users.GetUpload(uid, kind)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": missing})
		return
	}
	if err != nil {
		processFailed(c, err)
		return
	}

	h.respond(c, uid, func(progress func(importer.ProgressEvent)) (*importer.Result, error) {
		return process(importer.Job{UserID: uid, Path: u.Path, Filename: u.Filename, Progress: progress})
	})
}

// respond 执行处理并保存看板；?stream=1 时以 SSE 推送进度
func (h *Handler) respond(c *gin.Context, uid string, run runFunc) {
	if c.Query("stream") == "1" {
		h.respondStream(c, uid, run)
		return
	}

	res, err := run(nil)
	if err != nil {
		processFailed(c, err)
		return
	}
	h.saveDashboard(uid, res.Dashboard)
	c.JSON(http.StatusOK, resultBody(res))
}

func (h *Handler) respondStream(c *gin.Context, uid string, run runFunc) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming not supported"})
		return
	}

	send := func(event importer.ProgressEvent) {
		b, err := json.Marshal(event)
		if err != nil {
			return
		}
		fmt.Fprintf(c.Writer, "data: %s\n\n", b)
		flusher.Flush()
	}

	// 失败时协调器已发送 error 事件
	res, err := run(send)
	if err != nil {
		return
	}
	h.saveDashboard(uid, res.Dashboard)
	send(importer.ProgressEvent{Type: "result", Message: "dashboard ready", Data: resultBody(res)})
}

func (h *Handler) saveDashboard(uid string, d *model.Dashboard) {
	if err := h.users.SaveDashboard(uid, d); err != nil {
		util.LogError("save dashboard failed", err, map[string]interface{}{"user": uid, "kind": d.Kind})
	}
}

func resultBody(res *importer.Result) gin.H {
	d := res.Dashboard
	return gin.H{
		"success":           true,
		"kind":              d.Kind,
		"kpis":              d.KPIs,
		"charts":            d.Charts,
		"raw_series":        d.RawSeries,
		"processing_status": d.Status,
		"sheet_names":       d.SheetNames,
		"extras":            d.Extras,
		"filename":          d.Filename,
		"generated_at":      d.GeneratedAt,
		"has_data":          d.HasData(),
		"report":            res.Report,
	}
}
