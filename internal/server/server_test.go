package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/rizzrioo06/careermate/internal/server/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]string{"status": "ok"}, decodeBody[map[string]string](t, rec))
}

func TestHealth_DatabaseDown(t *testing.T) {
	env := newTestEnv(t, withPing(func(context.Context) error { return errors.New("connection refused") }))

	rec := env.do(http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "unavailable", decodeBody[map[string]string](t, rec)["status"])
}

func TestCORS(t *testing.T) {
	env := newTestEnv(t, withCORSOrigin("https://app.careermate.dev"))

	rec := env.do(http.MethodOptions, "/api/career-guidance", nil, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://app.careermate.dev", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "DELETE")
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")
	assert.Equal(t, "Origin", rec.Header().Get("Vary"))

	rec = env.do(http.MethodGet, "/health", nil, "")
	assert.Equal(t, "https://app.careermate.dev", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_DefaultsToWildcard(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/health", nil, "")
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rec.Header().Get("Vary"))
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t)

	routes := []struct{ method, path string }{
		{http.MethodGet, "/api/auth/me"},
		{http.MethodPost, "/api/auth/logout"},
		{http.MethodPut, "/api/auth/password"},
		{http.MethodPost, "/api/career-guidance"},
		{http.MethodPost, "/api/mock-interview"},
		{http.MethodPost, "/api/mock-interview/6f1c2d8e-0000-4000-8000-000000000000/answers"},
		{http.MethodPost, "/api/job-suggestions"},
		{http.MethodPost, "/api/career-discovery"},
		{http.MethodPost, "/api/career-stories"},
		{http.MethodPost, "/api/career-stories/6f1c2d8e-0000-4000-8000-000000000000/regenerate"},
		{http.MethodGet, "/api/dashboard"},
		{http.MethodGet, "/api/records"},
		{http.MethodGet, "/api/records/6f1c2d8e-0000-4000-8000-000000000000"},
		{http.MethodDelete, "/api/records/6f1c2d8e-0000-4000-8000-000000000000"},
	}

	for _, route := range routes {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			rec := env.do(route.method, route.path, `{}`, "")
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "Unauthorized", decodeBody[map[string]string](t, rec)["error"])
		})
	}
	assert.Zero(t, env.llm.Calls())
}

func TestUnknownRoute(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/api/nope", nil, "").Code)
	assert.Equal(t, http.StatusMethodNotAllowed, env.do(http.MethodGet, "/api/career-guidance", nil, "").Code)
}

func TestRateLimit_GenerationEndpoint(t *testing.T) {
	env := newTestEnv(t, withLimiter(&ratelimit.Config{
		Enabled:         true,
		DefaultLimit:    1000,
		DefaultWindow:   time.Minute,
		EndpointConfigs: ratelimit.DefaultEndpointConfigs(),
	}))
	token, _ := env.register(t, "limited@example.com")

	body := map[string]any{"profile": testProfile}
	for i := 0; i < 5; i++ {
		rec := env.do(http.MethodPost, "/api/career-guidance", body, token)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Equal(t, "20", rec.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, strconv.Itoa(4-i), rec.Header().Get("X-RateLimit-Remaining"))
	}

	rec := env.do(http.MethodPost, "/api/career-guidance", body, token)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	retryAfter, err := strconv.Atoi(rec.Header().Get("Retry-After"))
	require.NoError(t, err)
	assert.InDelta(t, 180, retryAfter, 1)

	resp := decodeBody[map[string]any](t, rec)
	assert.Equal(t, "rate_limit_exceeded", resp["error"])
	assert.Equal(t, float64(20), resp["limit"])
	assert.Equal(t, 5, env.llm.Calls(), "rejected requests never reach the model")

	// The 429 still carries CORS headers so browsers can read it.
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	// Health is never limited.
	for i := 0; i < 20; i++ {
		assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/health", nil, "").Code)
	}
}

func TestRetryAfterSeconds(t *testing.T) {
	assert.Equal(t, 1, retryAfterSeconds(0))
	assert.Equal(t, 1, retryAfterSeconds(200*time.Millisecond))
	assert.Equal(t, 6, retryAfterSeconds(6*time.Second))
	assert.Equal(t, 7, retryAfterSeconds(6*time.Second+time.Millisecond))
}
