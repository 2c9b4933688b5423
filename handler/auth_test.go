package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aman1195/risk-scan-pro/config"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestAuthHandlerLogin(t *testing.T) {
	cfg := &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:        "test-secret",
			TokenExpireHours: 24,
		},
		Users: []config.User{
			{ID: "user-1", Email: "jane@example.com", Password: "testpass"},
		},
	}

	handler := NewAuthHandler(cfg)

	tests := []struct {
		name           string
		body           map[string]string
		expectedStatus int
	}{
		{"valid login", map[string]string{"email": "jane@example.com", "password": "testpass"}, http.StatusOK},
		{"unknown email", map[string]string{"email": "john@example.com", "password": "testpass"}, http.StatusUnauthorized},
		{"wrong password", map[string]string{"email": "jane@example.com", "password": "nope"}, http.StatusUnauthorized},
		{"missing fields", map[string]string{"email": "jane@example.com"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.POST("/login", handler.Login)

			body, _ := json.Marshal(tt.body)
			req := httptest.NewRequest("POST", "/login", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}

			if tt.expectedStatus == http.StatusOK {
				var response LoginResponse
				if err := json.Unmarshal(w.Body.Bytes(), &response); err != nil {
					t.Fatalf("Failed to parse response: %v", err)
				}
				if response.Token == "" {
					t.Error("Expected token in response")
				}
				if response.UserID != "user-1" {
					t.Errorf("Expected user-1, got %s", response.UserID)
				}
			}
		})
	}
}

func TestAuthHandlerGetCurrentUser(t *testing.T) {
	handler := NewAuthHandler(&config.Config{})

	router := gin.New()
	router.GET("/me", func(c *gin.Context) {
		c.Set("user_id", "user-1")
		c.Set("email", "jane@example.com")
		handler.GetCurrentUser(c)
	})

	req := httptest.NewRequest("GET", "/me", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	var response map[string]string
	json.Unmarshal(w.Body.Bytes(), &response)
	if response["user_id"] != "user-1" || response["email"] != "jane@example.com" {
		t.Errorf("Unexpected response %v", response)
	}
}
