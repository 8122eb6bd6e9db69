package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"findash/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadFileDefaultsWhenMissing(t *testing.T) {
	cfg, info, err := config.LoadFile(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)

	assert.Equal(t, 5004, cfg.Server.Port)
	assert.Equal(t, config.BackendSQLite, cfg.Data.Backend)
	assert.Equal(t, 8, cfg.Dashboard.FinanceMonths)
	assert.Equal(t, []string{"consolidated", "data", "placement", "summary"}, cfg.Dashboard.SheetHints)
	assert.False(t, info.PortSpecified)
	assert.Empty(t, info.Path)
}

func TestLoadFileRecordsSpecifiedKeys(t *testing.T) {
	path := writeConfig(t, `
[server]
port = 8088

[data]
backend = "file"
upload_retention_hours = 24

[dashboard]
finance_months = 6
`)
	cfg, info, err := config.LoadFile(path)
	require.NoError(t, err)

	assert.True(t, info.PortSpecified)
	assert.False(t, info.DevSpecified)
	assert.False(t, info.DataDirSpecified)
	assert.Equal(t, 8088, cfg.Server.Port)
	assert.Equal(t, config.BackendFile, cfg.Data.Backend)
	assert.Equal(t, 24, cfg.Data.UploadRetentionHours)
	assert.Equal(t, 6, cfg.Dashboard.FinanceMonths)
	assert.Equal(t, 10, cfg.Dashboard.PreviewRows)
}

func TestLoadFileEnvOverrides(t *testing.T) {
	path := writeConfig(t, "[server]\nport = 8088\n")
	t.Setenv("FINDASH_PORT", "9000")
	t.Setenv("FINDASH_BACKEND", "Memory")
	t.Setenv("FINDASH_LOG_LEVEL", "debug")
	t.Setenv("FINDASH_DEV", "true")

	cfg, info, err := config.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, config.BackendMemory, cfg.Data.Backend)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Server.DevMode)
	assert.True(t, info.DevSpecified)
}

func TestLoadFileRejectsBadValues(t *testing.T) {
	_, _, err := config.LoadFile(writeConfig(t, "[data]\nbackend = \"redis\"\n"))
	assert.Error(t, err)

	_, _, err = config.LoadFile(writeConfig(t, "[server\nport = 1"))
	assert.Error(t, err)

	t.Setenv("FINDASH_PORT", "not-a-number")
	_, _, err = config.LoadFile(filepath.Join(t.TempDir(), "absent.toml"))
	assert.Error(t, err)
}

func TestEnsureDataDir(t *testing.T) {
	t.Parallel()

	cfg := config.DefaultConfig()
	cfg.Data.DataDir = filepath.Join(t.TempDir(), "data")

	dir, err := config.EnsureDataDir(cfg)
	require.NoError(t, err)
	assert.Equal(t, cfg.Data.DataDir, dir)
	for _, sub := range []string{"uploads", "exports", "backups"} {
		assert.DirExists(t, filepath.Join(dir, sub))
	}
	assert.Equal(t, filepath.Join(dir, "uploads", "x.csv"), config.GetDataPath(cfg, "uploads", "x.csv"))
}
