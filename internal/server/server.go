package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"findash/internal/api"
	"findash/internal/config"
	"findash/internal/importer"
	"findash/internal/service/excel"
	memstore "findash/internal/service/store"
	"findash/internal/service/workspace"
	"findash/internal/store"
	"findash/internal/util"
)

//go:embed all:dist
var staticFiles embed.FS

// Server HTTP服务器
type Server struct {
	router  *gin.Engine
	store   *store.Store
	users   store.UserData
	api     *api.Handler
	janitor *Janitor
	http    *http.Server
}

// NewServer 创建服务器
func NewServer(cfg *config.AppConfig) (*Server, error) {
	devMode := cfg.Server.DevMode
	if !devMode {
		gin.SetMode(gin.ReleaseMode)
	}

	dataDir, err := config.EnsureDataDir(cfg)
	if err != nil {
		return nil, fmt.Errorf("prepare data dir: %w", err)
	}

	db, users, err := openBackend(cfg.Data.Backend, dataDir)
	if err != nil {
		return nil, err
	}

	loader := excel.NewLoader(cfg.Dashboard.SheetHints...)
	coord := importer.NewCoordinator(loader,
		importer.WithImportLog(db),
		importer.WithFinanceMonths(cfg.Dashboard.FinanceMonths),
		importer.WithMonthLabels(cfg.Dashboard.DefaultMonthLabels),
	)
	handler := api.NewHandler(db, users, coord, loader, api.Options{
		UploadDir:   filepath.Join(dataDir, "uploads"),
		ExportDir:   filepath.Join(dataDir, "exports"),
		PreviewRows: cfg.Dashboard.PreviewRows,
		MaxUploadMB: cfg.Server.MaxUploadMB,
		Backend:     cfg.Data.Backend,
	})

	janitor, err := NewJanitor(cfg.Data.JanitorSchedule,
		time.Duration(cfg.Data.UploadRetentionHours)*time.Hour, users, handler.Downloads())
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Server{
		router:  gin.New(),
		store:   db,
		users:   users,
		api:     handler,
		janitor: janitor,
	}
	s.router.MaxMultipartMemory = int64(cfg.Server.MaxUploadMB) << 20
	s.setupRoutes(devMode, cfg.Server.AllowedOrigins)

	util.LogInfo("server initialized", map[string]interface{}{
		"backend":  cfg.Data.Backend,
		"data_dir": dataDir,
		"dev":      devMode,
	})
	return s, nil
}

// openBackend 招聘数据与处理日志始终在 SQLite；会话数据按配置选择后端
func openBackend(backend, dataDir string) (*store.Store, store.UserData, error) {
	dbPath := filepath.Join(dataDir, "findash.db")
	if backend == config.BackendMemory {
		dbPath = store.MemoryPath
	}
	db, err := store.New(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	switch backend {
	case config.BackendFile:
		ws, err := workspace.New(filepath.Join(dataDir, "users"))
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return db, ws, nil
	case config.BackendMemory:
		return db, memstore.NewMemoryStore(), nil
	default:
		return db, db, nil
	}
}

// setupRoutes 设置路由
func (s *Server) setupRoutes(devMode bool, origins []string) {
	s.router.Use(Recovery(), RequestLogger(), CORS(origins))

	apiGroup := s.router.Group("/api", Identity())
	{
		s.api.RegisterRoutes(apiGroup)
	}

	// 静态资源
	if devMode {
		// 开发模式：代理到前端开发服务器
		s.router.NoRoute(func(c *gin.Context) {
			c.Redirect(http.StatusTemporaryRedirect, "http://localhost:5173"+c.Request.URL.Path)
		})
		return
	}

	// 生产模式：使用 embed 的静态资源
	sub, _ := fs.Sub(staticFiles, "dist")

	if assetsSub, err := fs.Sub(sub, "assets"); err == nil {
		s.router.StaticFS("/assets", http.FS(assetsSub))
	}

	s.router.GET("/favicon.svg", func(c *gin.Context) {
		data, err := fs.ReadFile(sub, "favicon.svg")
		if err != nil {
			c.Status(http.StatusNotFound)
			return
		}
		c.Data(http.StatusOK, "image/svg+xml", data)
	})

	index := func(c *gin.Context) {
		data, err := fs.ReadFile(sub, "index.html")
		if err != nil {
			c.Status(http.StatusNotFound)
			return
		}
		c.Data(http.StatusOK, "text/html; charset=utf-8", data)
	}
	s.router.GET("/", index)

	// SPA 路由 fallback；未知的 /api 路径返回 JSON 404
	s.router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		index(c)
	})
}

// Handler 用于测试
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run 启动服务器与清理任务，直到 ctx 结束
func (s *Server) Run(ctx context.Context, addr string) error {
	s.http = &http.Server{Addr: addr, Handler: s.router}
	s.janitor.Start()
	defer s.janitor.Stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	}
}

// Close 释放数据库
func (s *Server) Close() error {
	return s.store.Close()
}

// GetStore 获取存储（用于测试）
func (s *Server) GetStore() *store.Store {
	return s.store
}
