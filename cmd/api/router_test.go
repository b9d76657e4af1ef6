package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	authUsecase "flux-backend/internal/auth/usecase"
	taskRepo "flux-backend/internal/task/repository"
	taskUsecase "flux-backend/internal/task/usecase"
	"flux-backend/pkg/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{JWTSecret: "s", JWTAccessExpiry: time.Hour, MaxFileSizeMB: 1}
	repo := taskRepo.NewTableRepository(taskRepo.NewMemoryTable(), time.Minute)
	return NewHandler(cfg,
		authUsecase.NewAuthUsecase(cfg),
		taskUsecase.NewTaskUsecase(repo, nil),
		taskUsecase.NewPipelineUsecase(repo, nil, nil, 1),
		taskUsecase.NewReportUsecase(repo, nil),
		NewRuntimeSettings("", ""),
		nil,
	)
}

func TestPublicAndProtectedRoutes(t *testing.T) {
	r := newTestHandler(t).Router()

	for path, want := range map[string]int{
		"/api/health":          http.StatusOK,
		"/metrics":             http.StatusOK,
		"/api/tasks":           http.StatusUnauthorized,
		"/api/tasks/stats":     http.StatusUnauthorized,
		"/api/settings/ollama": http.StatusUnauthorized,
	} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, want, w.Code, path)
	}
}

func TestRequestIDIsEchoedOrGenerated(t *testing.T) {
	r := newTestHandler(t).Router()

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(requestIDHeader))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Len(t, w.Header().Get(requestIDHeader), 36)
}
