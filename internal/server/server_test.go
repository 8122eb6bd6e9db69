package server

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"findash/internal/api"
	"findash/internal/config"
	"findash/internal/model"
	memstore "findash/internal/service/store"
)

func testConfig(t *testing.T, backend string) *config.AppConfig {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Data.DataDir = t.TempDir()
	cfg.Data.Backend = backend
	require.NoError(t, cfg.Validate())
	return cfg
}

func newTestServer(t *testing.T, backend string) *Server {
	t.Helper()
	s, err := NewServer(testConfig(t, backend))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func get(s *Server, path string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestServer_Backends(t *testing.T) {
	for _, backend := range []string{config.BackendSQLite, config.BackendFile, config.BackendMemory} {
		t.Run(backend, func(t *testing.T) {
			s := newTestServer(t, backend)
			w := get(s, "/api/status", nil)
			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			assert.Contains(t, w.Body.String(), `"backend":"`+backend+`"`)
		})
	}
}

func TestIdentity_IssuesCookie(t *testing.T) {
	s := newTestServer(t, config.BackendMemory)

	w := get(s, "/api/get_custom_formulas", nil)
	require.Equal(t, http.StatusOK, w.Code)
	cookie := w.Header().Get("Set-Cookie")
	assert.True(t, strings.HasPrefix(cookie, UserCookie+"="), cookie)
	assert.Contains(t, cookie, "HttpOnly")

	// 已有 cookie 时不重新签发
	w = get(s, "/api/get_custom_formulas", map[string]string{"Cookie": UserCookie + "=abc-123"})
	assert.Empty(t, w.Header().Get("Set-Cookie"))
}

func TestIdentity_RejectsInvalidHeader(t *testing.T) {
	s := newTestServer(t, config.BackendFile)

	w := get(s, "/api/check_existing_data", map[string]string{api.UserIDHeader: "../etc"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = get(s, "/api/check_existing_data", map[string]string{api.UserIDHeader: "user_1"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestStaticAndFallback(t *testing.T) {
	s := newTestServer(t, config.BackendMemory)

	w := get(s, "/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<title>findash</title>")

	w = get(s, "/recruitment", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")

	w = get(s, "/api/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"not found"}`, w.Body.String())
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Recovery())
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"success":false,"error":"internal server error"}`, w.Body.String())
}

func TestCORS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:5173"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestJanitor_RunOnce(t *testing.T) {
	users := memstore.NewMemoryStore()
	dir := t.TempDir()
	oldPath := filepath.Join(dir, "old.csv")
	newPath := filepath.Join(dir, "new.csv")
	require.NoError(t, os.WriteFile(oldPath, []byte("a"), 0644))
	require.NoError(t, os.WriteFile(newPath, []byte("b"), 0644))

	old := time.Now().Add(-100 * time.Hour).UTC().Format(time.RFC3339)
	require.NoError(t, users.SaveUpload(model.Upload{UserID: "u1", Kind: model.UploadPL, Path: oldPath, CreatedAt: old}))
	require.NoError(t, users.SaveUpload(model.Upload{UserID: "u1", Kind: model.UploadBS, Path: newPath}))

	j, err := NewJanitor("@every 1h", 72*time.Hour, users, api.NewDownloadStore())
	require.NoError(t, err)
	j.RunOnce()

	_, err = os.Stat(oldPath)
	assert.True(t, os.IsNotExist(err), "stale upload file should be removed")
	_, err = os.Stat(newPath)
	assert.NoError(t, err)

	left, err := users.ListUploads("u1")
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, model.UploadBS, left[0].Kind)
}

func TestJanitor_InvalidSchedule(t *testing.T) {
	_, err := NewJanitor("every now and then", time.Hour, nil, nil)
	assert.Error(t, err)
}
