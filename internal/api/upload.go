package api

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"findash/internal/model"
	"findash/internal/service/excel"
	"findash/internal/util"
)

// 上传响应中的 file_type
const (
	FileTypeTable           = "table"
	FileTypePlacementReport = "excel_placement_report"
	FileTypeFinance         = "finance_excel"
)

var uploadExts = []string{".csv", ".txt", ".xlsx", ".xlsm", ".xls"}

// Upload 上传单个文件并返回预览
// POST /api/upload  (multipart: file, type)
func (h *Handler) Upload(c *gin.Context) {
	kind := strings.ToLower(strings.TrimSpace(c.PostForm("type")))
	if !slices.Contains(model.UploadKinds, kind) {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid upload type %q", kind)})
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file uploaded"})
		return
	}
	if fh.Size > int64(h.opts.MaxUploadMB)<<20 {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("file exceeds %d MB", h.opts.MaxUploadMB)})
		return
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !slices.Contains(uploadExts, ext) {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unsupported file type %q", ext)})
		return
	}

	// 保存为 <uuid><ext>，避免文件名冲突
	path := filepath.Join(h.opts.UploadDir, uuid.NewString()+ext)
	if err := c.SaveUploadedFile(fh, path); err != nil {
		util.LogError("save upload failed", err, map[string]interface{}{"filename": fh.Filename})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save file"})
		return
	}

	wb, err := h.loader.LoadWorkbook(path)
	if err != nil {
		removeFiles(path)
		util.LogWarn("uploaded file unreadable", map[string]interface{}{
			"filename": fh.Filename, "type": kind, "error": err.Error(),
		})
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": fmt.Sprintf("could not read %s: %v", fh.Filename, excelReason(err))})
		return
	}

	uid := userID(c)
	if prev, err := h.users.GetUpload(uid, kind); err == nil && prev.Path != path {
		removeFiles(prev.Path)
	}
	if err := h.users.SaveUpload(model.Upload{
		UserID:    uid,
		Kind:      kind,
		Filename:  fh.Filename,
		Path:      path,
		Size:      fh.Size,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		removeFiles(path)
		util.LogError("record upload failed", err, map[string]interface{}{"user": uid, "type": kind})
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to record upload"})
		return
	}

	util.LogInfo("file uploaded", map[string]interface{}{
		"user": uid, "type": kind, "filename": fh.Filename, "size": fh.Size, "sheets": len(wb.SheetNames),
	})

	resp := gin.H{
		"success":  true,
		"type":     kind,
		"filename": fh.Filename,
	}
	switch {
	case kind == model.UploadFinance:
		resp["file_type"] = FileTypeFinance
		resp["sheet_names"] = wb.SheetNames
	case kind == model.UploadRec && ext != ".csv" && ext != ".txt":
		resp["file_type"] = FileTypePlacementReport
		resp["sheet_names"] = wb.SheetNames
		resp["sheet_count"] = len(wb.SheetNames)
		resp["sheets"] = excel.Sheets(wb)
	default:
		t, ok := wb.Sheet(excel.PickSheet(wb.SheetNames, h.loader.Hints()))
		if !ok {
			t = &model.Table{}
		}
		preview := excel.Preview(t, h.opts.PreviewRows)
		resp["file_type"] = FileTypeTable
		resp["columns"] = preview.Columns
		resp["preview"] = preview.Rows
	}
	c.JSON(http.StatusOK, resp)
}

// excelReason 去掉服务器端存储路径
func excelReason(err error) error {
	var le *excel.LoadError
	if errors.As(err, &le) {
		return le.Err
	}
	return err
}
