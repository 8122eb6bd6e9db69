package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"findash/internal/model"
	"findash/internal/store"
	"findash/internal/util"
)

// CheckExistingData 当前用户最近一次生成的看板与上传
// GET /api/check_existing_data
func (h *Handler) CheckExistingData(c *gin.Context) {
	uid := userID(c)

	resp := gin.H{}
	found := false
	for _, kind := range []string{model.DashboardPlacement, model.DashboardFinance, model.DashboardFlexible} {
		d, err := h.users.GetDashboard(uid, kind)
		switch {
		case errors.Is(err, store.ErrNotFound):
			resp["has_"+kind+"_data"] = false
			resp[kind] = nil
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		default:
			resp["has_"+kind+"_data"] = true
			resp[kind] = d
			found = true
		}
	}

	uploads, err := h.users.ListUploads(uid)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	resp["uploads"] = uploads
	resp["has_data"] = found
	c.JSON(http.StatusOK, resp)
}

// ClearSessionData 清除招聘与流水看板及其上传文件
// POST /api/clear_session_data
func (h *Handler) ClearSessionData(c *gin.Context) {
	h.clear(c,
		[]string{model.UploadPL, model.UploadBS, model.UploadRec, model.UploadMargin},
		[]string{model.DashboardPlacement, model.DashboardFlexible},
	)
}

// ClearFinanceSession 清除财务看板及其上传文件
// POST /api/clear_finance_session
func (h *Handler) ClearFinanceSession(c *gin.Context) {
	h.clear(c, []string{model.UploadFinance}, []string{model.DashboardFinance})
}

func (h *Handler) clear(c *gin.Context, uploadKinds, dashboardKinds []string) {
	uid := userID(c)
	removed, err := h.users.DeleteUploads(uid, uploadKinds...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	for _, u := range removed {
		removeFiles(u.Path)
	}
	if err := h.users.DeleteDashboards(uid, dashboardKinds...); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	util.LogInfo("session data cleared", map[string]interface{}{
		"user": uid, "uploads": len(removed), "dashboards": dashboardKinds,
	})
	c.JSON(http.StatusOK, gin.H{"success": true, "removed_uploads": len(removed)})
}
