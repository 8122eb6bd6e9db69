package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"findash/internal/config"
)

func TestApplyServeFlags_PortOnlyWhenUnspecified(t *testing.T) {
	cfg := config.DefaultConfig()
	applyServeFlags(cfg, config.LoadConfigInfo{PortSpecified: true}, serveFlags{port: 9000, dataDir: "/tmp/x"})
	assert.Equal(t, 5004, cfg.Server.Port)
	assert.Equal(t, "/tmp/x", cfg.Data.DataDir)

	cfg = config.DefaultConfig()
	applyServeFlags(cfg, config.LoadConfigInfo{}, serveFlags{port: 9000, dev: true})
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.True(t, cfg.Server.DevMode)
	assert.Equal(t, "data", cfg.Data.DataDir)
}

func TestReadMappings(t *testing.T) {
	dir := t.TempDir()

	m, err := readMappings("")
	require.NoError(t, err)
	assert.Nil(t, m.PL)

	good := filepath.Join(dir, "good.json")
	require.NoError(t, os.WriteFile(good, []byte(`{"pl_map":{"date":"date","revenue":"revenue"}}`), 0o644))
	m, err = readMappings(good)
	require.NoError(t, err)
	require.NotNil(t, m.PL)
	assert.Equal(t, "date", m.PL.Date)

	noDate := filepath.Join(dir, "nodate.json")
	require.NoError(t, os.WriteFile(noDate, []byte(`{"pl_map":{"revenue":"revenue"}}`), 0o644))
	_, err = readMappings(noDate)
	assert.Error(t, err)

	_, err = readMappings(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestProcessCommand_FlexibleCSV(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "pl.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(
		"date,revenue,cogs\n2025-01-05,100,40\n2025-02-10,80,30\n"), 0o644))
	mapPath := filepath.Join(dir, "mapping.json")
	require.NoError(t, os.WriteFile(mapPath, []byte(
		`{"pl_map":{"date":"date","revenue":"revenue","cogs":"cogs"}}`), 0o644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"process", "--shape", "flexible", "--file", csvPath, "--mapping", mapPath})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	require.NoError(t, rootCmd.Execute())

	var dash struct {
		Kind   string          `json:"kind"`
		Status map[string]bool `json:"status"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &dash), out.String())
	assert.Equal(t, "flexible", dash.Kind)
	assert.True(t, dash.Status["has_pl_data"])
}

func TestProcessCommand_FlexibleNeedsMapping(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	procMapping = ""
	rootCmd.SetArgs([]string{"process", "--shape", "flexible", "--file", "whatever.csv", "--mapping", ""})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	assert.Error(t, rootCmd.Execute())
}
