package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"findash/internal/store"
)

// FormulasRequest 自定义公式原文，服务端不求值
type FormulasRequest struct {
	Formulas json.RawMessage `json:"formulas"`
}

// SaveCustomFormulas 保存自定义公式
// POST /api/save_custom_formulas
func (h *Handler) SaveCustomFormulas(c *gin.Context) {
	var req FormulasRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if len(req.Formulas) == 0 || string(req.Formulas) == "null" {
		req.Formulas = json.RawMessage(`{}`)
	}
	if err := h.users.SaveFormulas(userID(c), req.Formulas); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetCustomFormulas 读取自定义公式；未保存时为空对象
// GET /api/get_custom_formulas
func (h *Handler) GetCustomFormulas(c *gin.Context) {
	formulas, err := h.users.GetFormulas(userID(c))
	if errors.Is(err, store.ErrNotFound) {
		formulas = json.RawMessage(`{}`)
	} else if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"formulas": formulas})
}
