package http

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authHTTP "github.com/allisson/warden/internal/auth/http"
)

func TestCreateCORSMiddleware(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name    string
		enabled bool
		origins string
		wantNil bool
	}{
		{"disabled", false, "https://app.example.com", true},
		{"enabled without origins", true, "", true},
		{"enabled with only separators", true, " , ,", true},
		{"enabled with origins", true, "https://app.example.com, https://admin.example.com", false},
		{"enabled with only invalid origins", true, "app.example.com, ftp://files.example.com", true},
		{"enabled with wildcard", true, "*", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			middleware := createCORSMiddleware(tt.enabled, tt.origins, logger)
			if tt.wantNil {
				assert.Nil(t, middleware)
				return
			}
			assert.NotNil(t, middleware)
		})
	}
}

func TestParseOrigins(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	origins, wildcard := parseOrigins("", logger)
	assert.Nil(t, origins)
	assert.False(t, wildcard)

	origins, wildcard = parseOrigins(
		" https://app.example.com/ ,, http://localhost:3000, app.example.com, https://x.example.com/path",
		logger,
	)
	assert.False(t, wildcard)
	assert.Equal(t, []string{"https://app.example.com", "http://localhost:3000"}, origins)

	origins, wildcard = parseOrigins("https://app.example.com, *", logger)
	assert.True(t, wildcard)
	assert.Nil(t, origins)
}

func corsRouter(t *testing.T, enabled bool) *gin.Engine {
	t.Helper()
	router := gin.New()
	middleware := createCORSMiddleware(enabled, "https://app.example.com", slog.New(slog.NewTextHandler(io.Discard, nil)))
	if middleware != nil {
		router.Use(middleware)
	}
	router.PATCH("/v1/admin/users/:id/role", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

func TestCORS_PreflightAllowsCorrelationHeader(t *testing.T) {
	router := corsRouter(t, true)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/v1/admin/users/1/role", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	req.Header.Set("Access-Control-Request-Headers", "Authorization, "+authHTTP.CorrelationIDHeader)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), http.MethodPatch)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestCORS_Wildcard(t *testing.T) {
	router := gin.New()
	router.Use(createCORSMiddleware(true, "*", slog.New(slog.NewTextHandler(io.Discard, nil))))
	router.GET("/v1/posts", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"data": []string{}})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/v1/posts", nil)
	req.Header.Set("Origin", "https://anywhere.example.org")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_Headers(t *testing.T) {
	tests := []struct {
		name       string
		enabled    bool
		wantOrigin string
	}{
		{"enabled", true, "https://app.example.com"},
		{"disabled", false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := corsRouter(t, tt.enabled)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPatch, "/v1/admin/users/1/role", nil)
			req.Header.Set("Origin", "https://app.example.com")
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.wantOrigin, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}
