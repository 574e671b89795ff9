package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
})

func TestRequireAPIAuth(t *testing.T) {
	w := httptest.NewRecorder()
	RequireAPIAuth(okHandler).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/tournaments", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"authentication required"}`, w.Body.String())

	r := httptest.NewRequest(http.MethodPost, "/api/tournaments", nil)
	r = r.WithContext(context.WithValue(r.Context(), UserIDKey, uuid.New()))
	w = httptest.NewRecorder()
	RequireAPIAuth(okHandler).ServeHTTP(w, r)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRequireAuthRedirects(t *testing.T) {
	w := httptest.NewRecorder()
	RequireAuth(okHandler).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestGetUserIDFromContext(t *testing.T) {
	_, ok := GetUserIDFromContext(context.Background())
	assert.False(t, ok)

	_, ok = GetUserIDFromContext(context.WithValue(context.Background(), UserIDKey, "not-a-uuid"))
	assert.False(t, ok)

	id := uuid.New()
	got, ok := GetUserIDFromContext(context.WithValue(context.Background(), UserIDKey, id))
	assert.True(t, ok)
	assert.Equal(t, id, got)

	assert.Nil(t, GetAuthenticatedUser(context.Background()))
}
