package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"photo-gallery-backend/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthService() *services.AuthService {
	return services.NewAuthService(nil, "test-secret", time.Hour)
}

func newProtectedHandler(t *testing.T, authService *services.AuthService) (http.Handler, *services.Identity) {
	t.Helper()
	var seen services.Identity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetIdentity(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	return AuthMiddleware(authService)(next), &seen
}

func TestAuthMiddlewareInjectsIdentity(t *testing.T) {
	authService := newTestAuthService()
	handler, seen := newProtectedHandler(t, authService)

	token, err := authService.GenerateJWT("u1", "alice")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, services.Identity{UserID: "u1", Login: "alice"}, *seen)
}

func TestAuthMiddlewareRejectsMissingHeader(t *testing.T) {
	handler, _ := newProtectedHandler(t, newTestAuthService())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthMiddlewareRejectsMalformedHeader(t *testing.T) {
	authService := newTestAuthService()
	handler, _ := newProtectedHandler(t, authService)

	token, err := authService.GenerateJWT("u1", "alice")
	require.NoError(t, err)

	for _, header := range []string{"Basic abc", token, "Bearer"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", header)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q must be rejected", header)
	}
}

func TestAuthMiddlewareRejectsInvalidToken(t *testing.T) {
	handler, _ := newProtectedHandler(t, newTestAuthService())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
