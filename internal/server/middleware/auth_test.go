package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testPrincipal struct {
	userID  uuid.UUID
	tokenID string
}

func (p *testPrincipal) GetUserID() uuid.UUID    { return p.userID }
func (p *testPrincipal) GetTokenID() string      { return p.tokenID }
func (p *testPrincipal) GetExpiresAt() time.Time { return time.Now().Add(time.Hour) }

// testTokenValidator accepts a fixed set of tokens.
type testTokenValidator struct {
	valid map[string]*testPrincipal
	calls int
}

func newTestTokenValidator() *testTokenValidator {
	return &testTokenValidator{valid: make(map[string]*testPrincipal)}
}

func (v *testTokenValidator) add(token string, userID uuid.UUID) {
	v.valid[token] = &testPrincipal{userID: userID, tokenID: "jti-" + token}
}

func (v *testTokenValidator) ValidateToken(_ context.Context, token string) (Principal, error) {
	v.calls++
	p, ok := v.valid[token]
	if !ok {
		return nil, fmt.Errorf("invalid token")
	}
	return p, nil
}

func echoUserID(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := GetUserID(r)
		require.NoError(t, err)
		p, err := GetPrincipal(r)
		require.NoError(t, err)
		w.Header().Set("X-Token-ID", p.GetTokenID())
		_, _ = w.Write([]byte(userID.String()))
	})
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	validator := newTestTokenValidator()
	userID := uuid.New()
	validator.add("good-token", userID)

	handler := AuthMiddleware(validator)(echoUserID(t))

	tests := []struct {
		name   string
		header string
	}{
		{name: "canonical", header: "Bearer good-token"},
		{name: "lowercase scheme", header: "bearer good-token"},
		{name: "uppercase scheme", header: "BEARER good-token"},
		{name: "extra spaces", header: "Bearer    good-token  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			req.Header.Set("Authorization", tt.header)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, userID.String(), rec.Body.String())
			assert.Equal(t, "jti-good-token", rec.Header().Get("X-Token-ID"))
		})
	}
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	validator := newTestTokenValidator()
	validator.add("good-token", uuid.New())

	called := false
	handler := AuthMiddleware(validator)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "no scheme", header: "good-token"},
		{name: "wrong scheme", header: "Basic good-token"},
		{name: "scheme only", header: "Bearer"},
		{name: "too many parts", header: "Bearer good token"},
		{name: "unknown token", header: "Bearer other-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "Unauthorized", body["error"])
		})
	}
	assert.False(t, called, "next handler must not run for rejected requests")
}

func TestAuthMiddleware_ValidatorSkippedWithoutToken(t *testing.T) {
	validator := newTestTokenValidator()
	handler := AuthMiddleware(validator)(http.NotFoundHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	assert.Zero(t, validator.calls)
}

func TestGetUserID_MissingPrincipal(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	userID, err := GetUserID(req)
	assert.Error(t, err)
	assert.Equal(t, uuid.Nil, userID)

	_, err = GetPrincipal(req)
	assert.Error(t, err)
}

func TestWithPrincipal(t *testing.T) {
	userID := uuid.New()
	ctx := WithPrincipal(context.Background(), &testPrincipal{userID: userID, tokenID: "abc"})
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)

	got, err := GetUserID(req)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}
