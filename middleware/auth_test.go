package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aman1195/risk-scan-pro/config"
	"github.com/aman1195/risk-scan-pro/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var testAuth = &config.AuthConfig{
	JWTSecret:        "test-secret-key",
	TokenExpireHours: 24,
}

func TestGenerateToken(t *testing.T) {
	token, expiresAt, err := GenerateToken("user-1", "jane@example.com", testAuth)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}
	if token == "" {
		t.Error("Expected non-empty token")
	}

	expectedExpiry := time.Now().Add(24 * time.Hour)
	if expiresAt.Before(expectedExpiry.Add(-time.Minute)) || expiresAt.After(expectedExpiry.Add(time.Minute)) {
		t.Errorf("Expiry time %v is not within expected range of %v", expiresAt, expectedExpiry)
	}

	claims := &Claims{}
	if _, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(testAuth.JWTSecret), nil
	}); err != nil {
		t.Fatalf("Failed to parse token: %v", err)
	}
	if claims.Subject != "user-1" || claims.Email != "jane@example.com" {
		t.Errorf("Unexpected claims %+v", claims)
	}
}

func signed(t *testing.T, method jwt.SigningMethod, claims Claims, key interface{}) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("Failed to sign: %v", err)
	}
	return s
}

func TestAuthMiddleware(t *testing.T) {
	token, _, err := GenerateToken("user-1", "jane@example.com", testAuth)
	if err != nil {
		t.Fatalf("Failed to generate token: %v", err)
	}

	future := jwt.NewNumericDate(time.Now().Add(time.Hour))
	noSubject := signed(t, jwt.SigningMethodHS256, Claims{RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: future}}, []byte(testAuth.JWTSecret))
	wrongKey := signed(t, jwt.SigningMethodHS256, Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "x", ExpiresAt: future}}, []byte("other"))
	expired := signed(t, jwt.SigningMethodHS256, Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}}, []byte(testAuth.JWTSecret))

	tests := []struct {
		name           string
		authHeader     string
		expectedStatus int
	}{
		{"valid token", "Bearer " + token, http.StatusOK},
		{"lowercase scheme", "bearer " + token, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"invalid format", token, http.StatusUnauthorized},
		{"invalid token", "Bearer invalid.token.here", http.StatusUnauthorized},
		{"expired", "Bearer " + expired, http.StatusUnauthorized},
		{"wrong key", "Bearer " + wrongKey, http.StatusUnauthorized},
		{"no subject", "Bearer " + noSubject, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(AuthMiddleware(testAuth))
			router.GET("/test", func(c *gin.Context) {
				if GetUserID(c) != "user-1" {
					t.Errorf("Expected user-1, got %q", GetUserID(c))
				}
				if v, _ := c.Request.Context().Value(logger.UserIDKey).(string); v != "user-1" {
					t.Errorf("Expected user id in request context, got %q", v)
				}
				c.JSON(http.StatusOK, gin.H{"message": "ok"})
			})

			req := httptest.NewRequest("GET", "/test", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, w.Code)
			}
		})
	}
}

func TestGetUserIDAndEmail(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	if GetUserID(c) != "" || GetEmail(c) != "" {
		t.Error("Expected empty strings for unset identity")
	}

	c.Set("user_id", "user-1")
	c.Set("email", "jane@example.com")
	if GetUserID(c) != "user-1" {
		t.Errorf("Expected 'user-1', got '%s'", GetUserID(c))
	}
	if GetEmail(c) != "jane@example.com" {
		t.Errorf("Expected 'jane@example.com', got '%s'", GetEmail(c))
	}
}
