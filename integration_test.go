package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo-list/backend/internal/config"
	"todo-list/backend/internal/handlers"
)

func loadTestConfig(t *testing.T, env map[string]string) *config.Config {
	t.Helper()
	gin.SetMode(gin.TestMode)
	for k, v := range env {
		t.Setenv(k, v)
	}
	cfg, err := config.LoadConfig()
	require.NoError(t, err)
	return cfg
}

func request(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

type listResponse struct {
	Tasks       []handlers.TaskResponse `json:"tasks"`
	ActiveCount int                     `json:"activeCount"`
}

func list(t *testing.T, router http.Handler, query string) listResponse {
	t.Helper()
	w := request(t, router, http.MethodGet, "/api/tasks"+query, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp listResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestApplication_FileBackendLifecycle(t *testing.T) {
	dir := t.TempDir()
	cfg := loadTestConfig(t, map[string]string{
		"STORAGE_BACKEND":    "file",
		"STORAGE_DIR":        dir,
		"TASKS_TIME_ZONE":    "Asia/Tokyo",
		"RATE_LIMIT_ENABLED": "false",
	})

	app, err := newApplication(context.Background(), cfg)
	require.NoError(t, err)

	w := request(t, app.router, http.MethodPost, "/api/tasks", map[string]string{"text": "Buy milk", "date": "2024-01-10", "time": "09:00"})
	require.Equal(t, http.StatusCreated, w.Code)
	var milk handlers.TaskResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &milk))

	w = request(t, app.router, http.MethodPost, "/api/tasks", map[string]string{"text": "Pay rent", "date": "2024-01-11", "time": "10:00"})
	require.Equal(t, http.StatusCreated, w.Code)
	var rent handlers.TaskResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rent))

	desc := list(t, app.router, "?sort=desc")
	require.Len(t, desc.Tasks, 2)
	assert.Equal(t, rent.ID, desc.Tasks[0].ID)
	assert.Equal(t, 2, desc.ActiveCount)

	w = request(t, app.router, http.MethodPatch, "/api/tasks/"+milk.ID+"/toggle", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, list(t, app.router, "?filter=completed").Tasks, 1)

	blob, err := os.ReadFile(filepath.Join(dir, "react-todo-app-tasks.json"))
	require.NoError(t, err)
	var stored []map[string]interface{}
	require.NoError(t, json.Unmarshal(blob, &stored))
	require.Len(t, stored, 2)
	assert.Equal(t, rent.ID, stored[0]["id"])
	assert.Equal(t, true, stored[1]["completed"])
	require.NoError(t, app.Close())

	restarted, err := newApplication(context.Background(), cfg)
	require.NoError(t, err)
	defer restarted.Close()

	reloaded := list(t, restarted.router, "")
	require.Len(t, reloaded.Tasks, 2)
	assert.Equal(t, milk.ID, reloaded.Tasks[0].ID)
	assert.Equal(t, "2024/01/10", reloaded.Tasks[0].DisplayDate)
	assert.Equal(t, 1, reloaded.ActiveCount)

	w = request(t, restarted.router, http.MethodPost, "/api/tasks/clear-completed", nil)
	assert.JSONEq(t, `{"removed":1}`, w.Body.String())
	assert.Len(t, list(t, restarted.router, "").Tasks, 1)
}

func TestApplication_LegacyFileIsNormalized(t *testing.T) {
	dir := t.TempDir()
	legacy := `[{"id":1,"text":"x","completed":false,"createdAt":1000}]`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "react-todo-app-tasks.json"), []byte(legacy), 0o600))

	cfg := loadTestConfig(t, map[string]string{"STORAGE_BACKEND": "file", "STORAGE_DIR": dir})
	app, err := newApplication(context.Background(), cfg)
	require.NoError(t, err)
	defer app.Close()

	resp := list(t, app.router, "")
	require.Len(t, resp.Tasks, 1)
	assert.Equal(t, "1", resp.Tasks[0].ID)
	assert.Equal(t, "", resp.Tasks[0].DueDate)
	assert.Equal(t, int64(1000), resp.Tasks[0].DueAt)
}

func TestApplication_CorruptFileStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "react-todo-app-tasks.json"), []byte("{oops"), 0o600))

	cfg := loadTestConfig(t, map[string]string{"STORAGE_BACKEND": "file", "STORAGE_DIR": dir})
	app, err := newApplication(context.Background(), cfg)
	require.NoError(t, err)
	defer app.Close()

	assert.Empty(t, list(t, app.router, "").Tasks)
}

func TestApplication_RedisBackend(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := loadTestConfig(t, map[string]string{
		"STORAGE_BACKEND":   "redis",
		"REDIS_HOST":        mr.Host(),
		"REDIS_PORT":        mr.Port(),
		"TASKS_STORAGE_KEY": "tasks-test",
	})

	app, err := newApplication(context.Background(), cfg)
	require.NoError(t, err)
	defer app.Close()

	w := request(t, app.router, http.MethodPost, "/api/tasks", map[string]string{"text": "x", "date": "2024-01-10", "time": "09:00"})
	require.Equal(t, http.StatusCreated, w.Code)

	stored, err := mr.Get("tasks-test")
	require.NoError(t, err)
	assert.Contains(t, stored, `"text":"x"`)

	w = request(t, app.router, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"backend":"redis"`)

	assert.Equal(t, http.StatusOK, request(t, app.router, http.MethodGet, "/ready", nil).Code)
}

func TestApplication_UnreadableBackendIsFatal(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := loadTestConfig(t, map[string]string{
		"STORAGE_BACKEND":   "redis",
		"REDIS_HOST":        mr.Host(),
		"REDIS_PORT":        mr.Port(),
		"REDIS_MAX_RETRIES": "-1",
	})
	mr.Close()

	_, err := newApplication(context.Background(), cfg)
	assert.Error(t, err)
}

func TestApplication_RateLimit(t *testing.T) {
	cfg := loadTestConfig(t, map[string]string{
		"STORAGE_BACKEND":  "memory",
		"RATE_LIMIT_RPM":   "1",
		"RATE_LIMIT_BURST": "1",
	})
	app, err := newApplication(context.Background(), cfg)
	require.NoError(t, err)
	defer app.Close()

	assert.Equal(t, http.StatusOK, request(t, app.router, http.MethodGet, "/api/options", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, request(t, app.router, http.MethodGet, "/api/options", nil).Code)
	assert.Equal(t, http.StatusOK, request(t, app.router, http.MethodGet, "/live", nil).Code, "monitoring is not limited")
}
