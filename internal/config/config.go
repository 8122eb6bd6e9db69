package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// 会话数据后端
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendMemory = "memory"
)

// AppConfig 应用配置
type AppConfig struct {
	Server    ServerConfig    `toml:"server"`
	Data      DataConfig      `toml:"data"`
	Dashboard DashboardConfig `toml:"dashboard"`
	Log       LogConfig       `toml:"log"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port           int      `toml:"port"`
	DevMode        bool     `toml:"dev_mode"`
	AllowedOrigins []string `toml:"allowed_origins"`
	MaxUploadMB    int      `toml:"max_upload_mb"`
}

// DataConfig 数据配置
type DataConfig struct {
	DataDir              string `toml:"data_dir"`
	Backend              string `toml:"backend"`
	UploadRetentionHours int    `toml:"upload_retention_hours"`
	JanitorSchedule      string `toml:"janitor_schedule"`
}

// DashboardConfig 看板生成相关配置
type DashboardConfig struct {
	SheetHints         []string `toml:"sheet_hints"`
	DefaultMonthLabels []string `toml:"default_month_labels"`
	FinanceMonths      int      `toml:"finance_months"`
	PreviewRows        int      `toml:"preview_rows"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `toml:"level"`
	Pretty bool   `toml:"pretty"`
}

// LoadConfigInfo 配置加载元信息
type LoadConfigInfo struct {
	Path             string
	PortSpecified    bool
	DevSpecified     bool
	DataDirSpecified bool
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:           5004,
			DevMode:        false,
			AllowedOrigins: []string{"*"},
			MaxUploadMB:    32,
		},
		Data: DataConfig{
			DataDir:              "data",
			Backend:              BackendSQLite,
			UploadRetentionHours: 72,
			JanitorSchedule:      "@every 1h",
		},
		Dashboard: DashboardConfig{
			SheetHints:         []string{"consolidated", "data", "placement", "summary"},
			DefaultMonthLabels: []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug"},
			FinanceMonths:      8,
			PreviewRows:        10,
		},
		Log: LogConfig{
			Level:  "info",
			Pretty: false,
		},
	}
}

// specifiedKeys 记录 toml 中显式出现的键，命令行参数只在未配置时生效
func specifiedKeys(data []byte, info *LoadConfigInfo) {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return
	}
	if server, ok := raw["server"].(map[string]any); ok {
		_, info.PortSpecified = server["port"]
		_, info.DevSpecified = server["dev_mode"]
	}
	if dataSec, ok := raw["data"].(map[string]any); ok {
		_, info.DataDirSpecified = dataSec["data_dir"]
	}
}

// GetExeDir 获取可执行文件所在目录
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

func exeDir() string {
	dir, err := GetExeDir()
	if err != nil {
		// 无法获取可执行文件目录，使用当前目录
		return "."
	}
	return dir
}

// ConfigPath dir 下的 config.toml
func ConfigPath(dir string) string {
	return filepath.Join(dir, "config.toml")
}

// LoadConfigWithInfo 从可执行文件同目录下的 config.toml 加载配置
func LoadConfigWithInfo() (*AppConfig, LoadConfigInfo, error) {
	return LoadFile(ConfigPath(exeDir()))
}

// LoadFile 读取指定配置文件；文件不存在时使用默认配置
// 之后依次应用 .env 与 FINDASH_* 环境变量。
func LoadFile(path string) (*AppConfig, LoadConfigInfo, error) {
	info := LoadConfigInfo{Path: path}
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		specifiedKeys(data, &info)
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, info, fmt.Errorf("parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
		info.Path = ""
	default:
		return nil, info, err
	}

	// .env 不存在时忽略
	_ = godotenv.Load()
	if err := applyEnv(config, &info); err != nil {
		return nil, info, err
	}
	if err := config.Validate(); err != nil {
		return nil, info, err
	}
	return config, info, nil
}

// applyEnv 环境变量覆盖（容器部署 / 本地运行）
func applyEnv(config *AppConfig, info *LoadConfigInfo) error {
	if v := os.Getenv("FINDASH_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("FINDASH_PORT: %w", err)
		}
		config.Server.Port = port
		info.PortSpecified = true
	}
	if v := os.Getenv("FINDASH_DATA_DIR"); v != "" {
		config.Data.DataDir = v
		info.DataDirSpecified = true
	}
	if v := os.Getenv("FINDASH_BACKEND"); v != "" {
		config.Data.Backend = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("FINDASH_LOG_LEVEL"); v != "" {
		config.Log.Level = v
	}
	if v := os.Getenv("FINDASH_DEV"); v != "" {
		dev, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("FINDASH_DEV: %w", err)
		}
		config.Server.DevMode = dev
		info.DevSpecified = true
	}
	return nil
}

// Validate 检查取值范围，并为零值补默认值
func (c *AppConfig) Validate() error {
	def := DefaultConfig()
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d", c.Server.Port)
	}
	switch c.Data.Backend {
	case "":
		c.Data.Backend = def.Data.Backend
	case BackendSQLite, BackendFile, BackendMemory:
	default:
		return fmt.Errorf("invalid data.backend %q (want sqlite, file or memory)", c.Data.Backend)
	}
	if c.Server.MaxUploadMB <= 0 {
		c.Server.MaxUploadMB = def.Server.MaxUploadMB
	}
	if c.Data.DataDir == "" {
		c.Data.DataDir = def.Data.DataDir
	}
	if c.Data.UploadRetentionHours <= 0 {
		c.Data.UploadRetentionHours = def.Data.UploadRetentionHours
	}
	if c.Data.JanitorSchedule == "" {
		c.Data.JanitorSchedule = def.Data.JanitorSchedule
	}
	if len(c.Dashboard.SheetHints) == 0 {
		c.Dashboard.SheetHints = def.Dashboard.SheetHints
	}
	if len(c.Dashboard.DefaultMonthLabels) == 0 {
		c.Dashboard.DefaultMonthLabels = def.Dashboard.DefaultMonthLabels
	}
	if c.Dashboard.FinanceMonths <= 0 {
		c.Dashboard.FinanceMonths = def.Dashboard.FinanceMonths
	}
	if c.Dashboard.PreviewRows <= 0 {
		c.Dashboard.PreviewRows = def.Dashboard.PreviewRows
	}
	return nil
}

// SaveConfig 保存配置到 config.toml
func SaveConfig(config *AppConfig) error {
	data, err := toml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(ConfigPath(exeDir()), data, 0644)
}

// ResolveDataDir 数据目录的绝对位置；相对路径以可执行文件目录为基准
func ResolveDataDir(config *AppConfig) string {
	if filepath.IsAbs(config.Data.DataDir) {
		return config.Data.DataDir
	}
	return filepath.Join(exeDir(), config.Data.DataDir)
}

// EnsureDataDir 确保数据目录及其子目录存在
func EnsureDataDir(config *AppConfig) (string, error) {
	dataDir := ResolveDataDir(config)

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}

	// 创建子目录
	subdirs := []string{"uploads", "exports", "backups"}
	for _, subdir := range subdirs {
		path := filepath.Join(dataDir, subdir)
		if err := os.MkdirAll(path, 0755); err != nil {
			return "", err
		}
	}

	return dataDir, nil
}

// GetDataPath 获取数据文件路径
func GetDataPath(config *AppConfig, subdir, filename string) string {
	return filepath.Join(ResolveDataDir(config), subdir, filename)
}
