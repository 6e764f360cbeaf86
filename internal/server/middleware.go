package server

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/thinkscotty/fakenews/internal/auth"
)

func loggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Debug("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).String(),
		)
	}
}

func recoveryMiddleware() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, err any) {
		slog.Error("panic recovered", "error", err, "path", c.Request.URL.Path)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
	})
}

// requireAPIKey checks for the configured API key via Bearer token or query
// parameter. With no key configured every request passes.
func (s *Server) requireAPIKey() gin.HandlerFunc {
	keys := auth.Keys{Plain: s.cfg.APIKey, Hash: s.cfg.APIKeyHash}
	return func(c *gin.Context) {
		if !keys.Enabled() {
			c.Next()
			return
		}

		var providedKey string
		if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
			providedKey = strings.TrimPrefix(h, "Bearer ")
		}
		if providedKey == "" {
			providedKey = c.Query("api_key")
		}

		if providedKey == "" {
			jsonError(c, "API key required", http.StatusUnauthorized)
			return
		}

		if !keys.Match(providedKey) {
			jsonError(c, "Invalid API key", http.StatusUnauthorized)
			return
		}

		c.Next()
	}
}
