package http

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	authHTTP "github.com/allisson/warden/internal/auth/http"
)

// createCORSMiddleware allows browser clients on the configured origins to call the API with
// bearer tokens. "*" admits any origin. Credentials (cookies) are never allowed since sessions
// travel in the Authorization header and the refresh token body. It returns nil when CORS is
// disabled or no usable origin remains.
func createCORSMiddleware(enabled bool, allowOrigins string, logger *slog.Logger) gin.HandlerFunc {
	if !enabled {
		return nil
	}

	origins, wildcard := parseOrigins(allowOrigins, logger)
	if !wildcard && len(origins) == 0 {
		logger.Warn("cors enabled without a usable origin, middleware not installed")
		return nil
	}

	config := cors.Config{
		AllowMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete,
		},
		AllowHeaders:  []string{"Authorization", "Content-Type", authHTTP.CorrelationIDHeader},
		ExposeHeaders: []string{authHTTP.CorrelationIDHeader, "Retry-After"},
		MaxAge:        12 * time.Hour,
	}
	if wildcard {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = origins
	}

	logger.Info("cors enabled", slog.Bool("any_origin", wildcard), slog.Any("origins", origins))
	return cors.New(config)
}

// parseOrigins splits a comma-separated list into http(s) origins without paths. Entries that
// are not origins are dropped with a warning; "*" switches to any-origin mode.
func parseOrigins(raw string, logger *slog.Logger) (origins []string, wildcard bool) {
	for _, part := range strings.Split(raw, ",") {
		candidate := strings.TrimSuffix(strings.TrimSpace(part), "/")
		switch {
		case candidate == "":
			continue
		case candidate == "*":
			wildcard = true
			continue
		}

		u, err := url.Parse(candidate)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" || u.Path != "" {
			logger.Warn("ignoring invalid cors origin", slog.String("origin", candidate))
			continue
		}
		origins = append(origins, u.Scheme+"://"+u.Host)
	}

	if wildcard {
		return nil, true
	}
	return origins, false
}
