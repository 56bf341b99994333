package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.RemoteAddr = "203.0.113.9:54321"
	assert.Equal(t, "203.0.113.9", clientIP(r))

	r.RemoteAddr = "unparseable"
	assert.Equal(t, "unparseable", clientIP(r))
}

func TestExtractSubject(t *testing.T) {
	s := &Server{jwtService: NewJWTService("test-secret", time.Hour)}
	userID := uuid.New()
	token, err := s.jwtService.GenerateToken(userID)
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/v1/artifacts", nil)
	r.RemoteAddr = "203.0.113.9:54321"

	// No token: falls back to the client IP.
	assert.Equal(t, "203.0.113.9", s.extractSubject(r))

	// Invalid token: also the client IP.
	r.Header.Set("Authorization", "Bearer garbage")
	assert.Equal(t, "203.0.113.9", s.extractSubject(r))

	// Valid token: the user id becomes the rate-limit subject.
	r.Header.Set("Authorization", "Bearer "+token)
	assert.Equal(t, userID.String(), s.extractSubject(r))
}

func TestStatusRecorder(t *testing.T) {
	rec := httptest.NewRecorder()
	wrapped := &statusRecorder{ResponseWriter: rec, status: http.StatusOK}

	wrapped.WriteHeader(http.StatusConflict)
	assert.Equal(t, http.StatusConflict, wrapped.status)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// Flush must pass through for streamed responses.
	_, isFlusher := interface{}(wrapped).(http.Flusher)
	assert.True(t, isFlusher)
}
