package handler

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func isWrite(method string) bool {
	switch strings.ToUpper(method) {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	default:
		return true
	}
}

// RequireBearerForWrites guards mutating /api/ calls with a static token.
// An empty token leaves the API open.
func RequireBearerForWrites(token string) gin.HandlerFunc {
	token = strings.TrimSpace(token)
	return func(c *gin.Context) {
		if token == "" || !isWrite(c.Request.Method) || !strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.Next()
			return
		}
		auth := strings.TrimSpace(c.GetHeader("Authorization"))
		got, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok {
			c.Abort()
			Error(c, http.StatusUnauthorized, "missing bearer token", nil)
			return
		}
		if subtle.ConstantTimeCompare([]byte(strings.TrimSpace(got)), []byte(token)) != 1 {
			c.Abort()
			Error(c, http.StatusUnauthorized, "invalid bearer token", nil)
			return
		}
		c.Next()
	}
}

// WriteAuditMiddleware logs every mutating /api/ request once it completes.
func WriteAuditMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.Request.URL.Path
		if !strings.HasPrefix(path, "/api/") || !isWrite(c.Request.Method) {
			return
		}
		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.Duration("duration", time.Since(start)),
		}
		switch {
		case status >= 500:
			logger.Error("api write", fields...)
		case status >= 400:
			logger.Warn("api write", fields...)
		default:
			logger.Info("api write", fields...)
		}
	}
}
