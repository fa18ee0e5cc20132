package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret string, expired bool) string {
	t.Helper()
	claims := jwt.MapClaims{"sub": "test"}
	if expired {
		claims["exp"] = time.Now().Add(-time.Hour).Unix()
	} else {
		claims["exp"] = time.Now().Add(time.Hour).Unix()
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddlewareBypassesHealth(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/system/health", nil)
	rec := httptest.NewRecorder()
	authMiddleware("secret", okHandler()).ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/workspace/list-files", nil)
	rec := httptest.NewRecorder()
	authMiddleware("secret", okHandler()).ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareRejectsWrongSecret(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/workspace/list-files", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "other-secret", false))
	rec := httptest.NewRecorder()
	authMiddleware("secret", okHandler()).ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareRejectsExpiredToken(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/workspace/list-files", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "secret", true))
	rec := httptest.NewRecorder()
	authMiddleware("secret", okHandler()).ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareAcceptsValidToken(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/workspace/list-files", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "secret", false))
	rec := httptest.NewRecorder()
	authMiddleware("secret", okHandler()).ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}
