package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "super-secret"

func signToken(t *testing.T, secret string, sub string, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   sub,
		"email": "jean@example.com",
		"exp":   exp.Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func runMiddleware(t *testing.T, authz string) (*httptest.ResponseRecorder, *http.Request) {
	t.Helper()
	var captured *http.Request
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = r
		w.WriteHeader(http.StatusOK)
	})

	am := NewAuthMiddleware(testSecret)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	am.Require()(next).ServeHTTP(rec, req)
	return rec, captured
}

func TestRequireValidToken(t *testing.T) {
	token := signToken(t, testSecret, "uid-1", time.Now().Add(time.Hour))
	rec, captured := runMiddleware(t, "Bearer "+token)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, captured)

	userID, ok := GetUserID(captured.Context())
	require.True(t, ok)
	assert.Equal(t, "uid-1", userID)

	email, ok := GetEmail(captured.Context())
	require.True(t, ok)
	assert.Equal(t, "jean@example.com", email)

	got, ok := GetToken(captured.Context())
	require.True(t, ok)
	assert.Equal(t, token, got)
}

func TestRequireRejects(t *testing.T) {
	t.Run("missing header", func(t *testing.T) {
		rec, _ := runMiddleware(t, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		rec, _ := runMiddleware(t, "Token abc")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token := signToken(t, "other-secret", "uid-1", time.Now().Add(time.Hour))
		rec, _ := runMiddleware(t, "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("expired", func(t *testing.T) {
		token := signToken(t, testSecret, "uid-1", time.Now().Add(-time.Hour))
		rec, _ := runMiddleware(t, "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("empty subject", func(t *testing.T) {
		token := signToken(t, testSecret, "", time.Now().Add(time.Hour))
		rec, _ := runMiddleware(t, "Bearer "+token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
