package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func guardedEngine(token string, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(RequireBearerForWrites(token))
	engine.Use(WriteAuditMiddleware(logger))
	engine.GET("/api/draws", func(c *gin.Context) { Ok(c, nil, nil) })
	engine.POST("/api/draws", func(c *gin.Context) { Ok(c, nil, nil) })
	return engine
}

func TestRequireBearerForWrites(t *testing.T) {
	engine := guardedEngine("s3cret", nil)
	tests := []struct {
		method string
		auth   string
		want   int
	}{
		{http.MethodGet, "", http.StatusOK},
		{http.MethodPost, "", http.StatusUnauthorized},
		{http.MethodPost, "Bearer nope", http.StatusUnauthorized},
		{http.MethodPost, "Bearer s3cret", http.StatusOK},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, "/api/draws", nil)
		if tt.auth != "" {
			req.Header.Set("Authorization", tt.auth)
		}
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		if w.Code != tt.want {
			t.Fatalf("%s auth=%q status=%d want=%d", tt.method, tt.auth, w.Code, tt.want)
		}
	}
}

func TestRequireBearerForWrites_OpenWithoutToken(t *testing.T) {
	engine := guardedEngine("", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/draws", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d want=200", w.Code)
	}
}

func TestWriteAuditMiddleware(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	engine := guardedEngine("", zap.New(core))

	engine.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/draws", nil))
	engine.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/draws", nil))

	entries := logs.FilterMessage("api write").All()
	if len(entries) != 1 {
		t.Fatalf("audit entries=%d want=1", len(entries))
	}
	if got := entries[0].ContextMap()["method"]; got != http.MethodPost {
		t.Fatalf("method=%v", got)
	}
}
