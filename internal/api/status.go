package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"findash/internal/model"
	"findash/internal/store"
)

// StatusResponse 系统状态响应
type StatusResponse struct {
	Backend           string           `json:"backend"`
	RecruitmentYear   int              `json:"recruitmentYear"`
	RecruitmentMonths []string         `json:"recruitmentMonths"`
	HasRecruitment    bool             `json:"hasRecruitment"`
	PendingDownloads  int              `json:"pendingDownloads"`
	LastImport        *model.ImportLog `json:"lastImport"`
}

// GetStatus 获取系统状态
// GET /api/status
func (h *Handler) GetStatus(c *gin.Context) {
	months, err := h.db.ListRecruitmentMonths()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// 优先当前用户的最近一次处理
	last, err := h.db.LastImportLog(userID(c))
	if errors.Is(err, store.ErrNotFound) {
		last, err = h.db.LastImportLog("")
	}
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, StatusResponse{
		Backend:           h.opts.Backend,
		RecruitmentYear:   h.year(c, 0),
		RecruitmentMonths: months,
		HasRecruitment:    len(months) > 0,
		PendingDownloads:  h.downloads.Len(),
		LastImport:        last,
	})
}
