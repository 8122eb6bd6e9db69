package api

import (
	"errors"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"findash/internal/importer"
	"findash/internal/service/excel"
	"findash/internal/store"
	"findash/internal/util"
)

// UserIDKey gin 上下文中的用户标识
const UserIDKey = "findash.user_id"

// UserIDHeader 客户端可显式指定的用户标识
const UserIDHeader = "X-User-ID"

const anonymousUser = "anonymous"

// Options 处理器配置
type Options struct {
	UploadDir       string
	ExportDir       string
	PreviewRows     int
	MaxUploadMB     int
	Backend         string
	RecruitmentYear int
}

// Handler API 处理器
type Handler struct {
	db        *store.Store
	users     store.UserData
	coord     *importer.Coordinator
	loader    *excel.Loader
	opts      Options
	downloads *DownloadStore
	validate  *validator.Validate
}

// NewHandler 创建 API 处理器
// db 保存处理日志与招聘数据表，users 保存按用户的会话数据。
func NewHandler(db *store.Store, users store.UserData, coord *importer.Coordinator, loader *excel.Loader, opts Options) *Handler {
	if users == nil {
		users = db
	}
	if loader == nil {
		loader = excel.NewLoader()
	}
	if coord == nil {
		coord = importer.NewCoordinator(loader, importer.WithImportLog(db))
	}
	if opts.UploadDir == "" {
		opts.UploadDir = os.TempDir()
	}
	if opts.ExportDir == "" {
		opts.ExportDir = os.TempDir()
	}
	if opts.Backend == "" {
		opts.Backend = "sqlite"
	}
	if opts.PreviewRows <= 0 {
		opts.PreviewRows = 10
	}
	if opts.MaxUploadMB <= 0 {
		opts.MaxUploadMB = 32
	}
	return &Handler{
		db:        db,
		users:     users,
		coord:     coord,
		loader:    loader,
		opts:      opts,
		downloads: NewDownloadStore(),
		validate:  validator.New(),
	}
}

// Downloads 导出下载令牌（供定时清理使用）
func (h *Handler) Downloads() *DownloadStore {
	return h.downloads
}

// RegisterRoutes 注册 API 路由
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	// 系统状态
	router.GET("/status", h.GetStatus)

	// 上传与处理
	router.POST("/upload", h.Upload)
	router.POST("/process", h.ProcessFlexible)
	router.POST("/process_placement_report", h.ProcessPlacementReport)
	router.POST("/process_finance_report", h.ProcessFinanceReport)

	// 会话数据
	router.GET("/check_existing_data", h.CheckExistingData)
	router.POST("/clear_session_data", h.ClearSessionData)
	router.POST("/clear_finance_session", h.ClearFinanceSession)

	// 自定义公式
	router.POST("/save_custom_formulas", h.SaveCustomFormulas)
	router.GET("/get_custom_formulas", h.GetCustomFormulas)

	// 招聘数据
	rec := router.Group("/recruitment")
	{
		rec.GET("/data", h.GetRecruitmentData)
		rec.GET("/charts", h.GetRecruitmentCharts)
		rec.GET("/months", h.ListRecruitmentMonths)
		rec.POST("/add_month", h.AddRecruitmentMonth)
		rec.POST("/import", h.ImportRecruitment)
		rec.GET("/export/dataset", h.ExportRecruitmentDataset)
		rec.POST("/export", h.ExportRecruitment)
	}

	// 导出下载
	router.GET("/export/download/:token", h.DownloadExport)
}

// userID 中间件写入的用户标识；未经过中间件时读取请求头
func userID(c *gin.Context) string {
	if v, ok := c.Get(UserIDKey); ok {
		if id, ok := v.(string); ok && id != "" {
			return id
		}
	}
	if id := c.GetHeader(UserIDHeader); id != "" {
		return id
	}
	return anonymousUser
}

// processFailed 处理类接口的失败响应
func processFailed(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, excel.ErrMalformedInput),
		errors.Is(err, excel.ErrUnsupportedFormat),
		errors.Is(err, excel.ErrEmptyFile),
		errors.Is(err, importer.ErrUnknownShape):
		status = http.StatusBadRequest
	case errors.Is(err, excel.ErrNotFound):
		status = http.StatusNotFound
	}
	c.JSON(status, gin.H{"success": false, "error": err.Error()})
}

// removeFiles 删除上传文件，失败只记录
func removeFiles(paths ...string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			util.LogWarn("remove file failed", map[string]interface{}{"path": p, "error": err.Error()})
		}
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
