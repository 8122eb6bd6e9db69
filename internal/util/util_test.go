package util

import (
	"bytes"
	"encoding/json"
	"errors"
	"net"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		" WARN ":  zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"":        zerolog.InfoLevel,
		"verbose": zerolog.InfoLevel,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestLoggerWritesJSONFields(t *testing.T) {
	var buf bytes.Buffer
	InitLoggerTo(&buf, "debug", false)
	t.Cleanup(func() { InitLoggerTo(&bytes.Buffer{}, "info", false) })

	LogError("processing failed", errors.New("boom"), map[string]interface{}{"file": "a.xlsx"})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "processing failed", entry["message"])
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, "a.xlsx", entry["file"])
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	InitLoggerTo(&buf, "warn", false)
	t.Cleanup(func() { InitLoggerTo(&bytes.Buffer{}, "info", false) })

	LogInfo("hidden", nil)
	LogDebug("hidden", nil)
	assert.Zero(t, buf.Len())

	LogWarn("shown", nil)
	assert.Contains(t, buf.String(), "shown")
}

func TestFindAvailablePortSkipsBusyPort(t *testing.T) {
	ln, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	defer ln.Close()
	busy := ln.Addr().(*net.TCPAddr).Port

	port, err := FindAvailablePort(busy, 20)
	require.NoError(t, err)
	assert.NotEqual(t, busy, port)
	assert.Greater(t, port, busy)
}
