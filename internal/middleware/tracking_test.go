package middleware_test

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/accubooks/backoffice/internal/middleware"
	"github.com/accubooks/backoffice/internal/utils"
)

func TestTrackingMiddleware_InertClientPassesRequestsThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	// No API key configured: the client must be inert, not nil.
	analytics := utils.InitializeAnalytics("", logger)
	assert.False(t, analytics.IsInitialized())

	r := gin.New()
	r.Use(middleware.TrackingMiddleware(analytics))
	r.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "OK") })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())

	// Enqueue and Close on an inert client are no-ops, not panics.
	analytics.Enqueue("user-1", "api_v1_accounts", map[string]any{"method": "GET"})
	analytics.Close()
}

func TestTrackingMiddleware_NilClientPassesRequestsThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(middleware.TrackingMiddleware(nil))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}
