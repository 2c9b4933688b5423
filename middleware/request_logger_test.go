package middleware

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aman1195/risk-scan-pro/pkg/logger"
	"github.com/gin-gonic/gin"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestRequestLoggerLevels(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogs(t)

	router := gin.New()
	router.Use(RequestID())
	router.Use(RequestLogger())
	router.GET("/api/catalog", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{})
	})
	router.POST("/api/analyze", func(c *gin.Context) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Document ID and content are required"})
	})
	router.POST("/api/generate-contract", func(c *gin.Context) {
		_ = c.Error(errors.New("openai: status 500"))
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream"})
	})

	tests := []struct {
		name     string
		method   string
		path     string
		status   int
		logLevel string
	}{
		{"success", "GET", "/api/catalog", http.StatusOK, "level=INFO"},
		{"client error", "POST", "/api/analyze", http.StatusBadRequest, "level=WARN"},
		{"upstream error", "POST", "/api/generate-contract", http.StatusBadGateway, "level=ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()

			requestID := "req-" + strings.ReplaceAll(tt.name, " ", "-")
			req := httptest.NewRequest(tt.method, tt.path, nil)
			req.Header.Set("X-Request-ID", requestID)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, w.Code)
			}

			logOutput := buf.String()
			for _, want := range []string{"request completed", tt.path, tt.logLevel} {
				if !strings.Contains(logOutput, want) {
					t.Errorf("Expected %q in log %q", want, logOutput)
				}
			}
			if !strings.Contains(logOutput, "request_id="+requestID) {
				t.Errorf("Expected request id in log %q", logOutput)
			}
		})
	}

	buf.Reset()
	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("POST", "/api/generate-contract", nil))
	if !strings.Contains(buf.String(), "openai: status 500") {
		t.Error("Expected handler errors in log")
	}
}

func TestRequestLoggerContextFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogs(t)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Request = c.Request.WithContext(logger.With(c.Request.Context(), logger.UserIDKey, "user-1"))
		c.Next()
	})
	router.Use(RequestLogger())
	router.GET("/api/documents", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"documents": []string{}})
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/api/documents?status=completed&q=lease", nil))

	logOutput := buf.String()
	if !strings.Contains(logOutput, "user_id=user-1") {
		t.Errorf("Expected user id in log %q", logOutput)
	}
	if !strings.Contains(logOutput, "status=completed") {
		t.Error("Expected query parameters in log")
	}
}
