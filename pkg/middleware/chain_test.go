package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/martinmanurung/cinecatalog/internal/platform/ratelimit"
	"github.com/martinmanurung/cinecatalog/pkg/constant"
	"github.com/martinmanurung/cinecatalog/pkg/jwt"
	"github.com/martinmanurung/cinecatalog/pkg/response"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContext(header map[string]string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/movies", nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/movies")
	return c, rec
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var apiErr *response.APIError
	require.True(t, errors.As(err, &apiErr), "expected *response.APIError, got %v", err)
	return apiErr.Code
}

func TestChainRunsStagesInOrder(t *testing.T) {
	var calls []string
	stage := func(name string, fail bool) Stage {
		return func(echo.Context) error {
			calls = append(calls, name)
			if fail {
				return response.Unauthorized(name)
			}
			return nil
		}
	}

	c, _ := newContext(nil)
	err := NewChain(stage("a", false), stage("b", true), stage("c", false)).Run(c)
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
	assert.Equal(t, []string{"a", "b"}, calls)
}

func TestChainThenDoesNotAlias(t *testing.T) {
	ok := func(echo.Context) error { return nil }
	base := NewChain(ok)
	left := base.Then(ok)
	right := base.Then(ok, ok)

	assert.Len(t, base, 1)
	assert.Len(t, left, 2)
	assert.Len(t, right, 3)
}

func TestChainMiddlewareSkipsHandlerOnFailure(t *testing.T) {
	called := false
	handler := func(echo.Context) error {
		called = true
		return nil
	}

	c, _ := newContext(nil)
	err := NewChain(APIKey("secret")).Middleware()(handler)(c)
	require.Error(t, err)
	assert.False(t, called)

	c, _ = newContext(map[string]string{constant.HeaderAPIKey: "secret"})
	require.NoError(t, NewChain(APIKey("secret")).Middleware()(handler)(c))
	assert.True(t, called)
}

func TestAPIKey(t *testing.T) {
	tests := map[string]struct {
		expected string
		header   string
		wantErr  bool
	}{
		"match":          {expected: "k", header: "k"},
		"mismatch":       {expected: "k", header: "x", wantErr: true},
		"missing header": {expected: "k", wantErr: true},
		"no key set":     {expected: "", header: "", wantErr: true},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			c, _ := newContext(map[string]string{constant.HeaderAPIKey: tt.header})
			err := APIKey(tt.expected)(c)
			if tt.wantErr {
				assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestBearerAndRequireRole(t *testing.T) {
	svc := jwt.NewJWTService("secret", time.Hour)
	adminToken, err := svc.GenerateToken("alice", []string{constant.RoleAdmin})
	require.NoError(t, err)
	viewerToken, err := svc.GenerateToken("bob", []string{"viewer"})
	require.NoError(t, err)

	chain := NewChain(Bearer(svc), RequireRole(constant.RoleAdmin))

	c, _ := newContext(nil)
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, chain.Run(c)))

	c, _ = newContext(map[string]string{echo.HeaderAuthorization: "Bearer nonsense"})
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, chain.Run(c)))

	c, _ = newContext(map[string]string{echo.HeaderAuthorization: "Bearer " + viewerToken})
	assert.Equal(t, http.StatusForbidden, statusOf(t, chain.Run(c)))

	c, _ = newContext(map[string]string{echo.HeaderAuthorization: "Bearer " + adminToken})
	require.NoError(t, chain.Run(c))
	subject, err := jwt.GetSubjectFromContext(c)
	require.NoError(t, err)
	assert.Equal(t, "alice", subject)
}

func TestRequireRoleWithoutBearer(t *testing.T) {
	c, _ := newContext(nil)
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, RequireRole(constant.RoleAdmin)(c)))
}

func TestBearerExpiredToken(t *testing.T) {
	svc := jwt.NewJWTService("secret", time.Hour)
	past := time.Now().Add(-time.Hour)
	token, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, jwt.MyClaims{
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   "alice",
			IssuedAt:  gojwt.NewNumericDate(past.Add(-time.Hour)),
			ExpiresAt: gojwt.NewNumericDate(past),
		},
	}).SignedString(svc.SignatureKey)
	require.NoError(t, err)

	c, _ := newContext(map[string]string{echo.HeaderAuthorization: "Bearer " + token})
	err = Bearer(svc)(c)
	require.Error(t, err)
	assert.Equal(t, "Token has expired", err.Error())
}

func TestRateLimitStage(t *testing.T) {
	limiter := ratelimit.New(ratelimit.NewMemoryStore())
	stage := RateLimit(limiter, "default", ratelimit.Quota{Limit: 2, Window: time.Minute})

	for i := 0; i < 2; i++ {
		c, rec := newContext(nil)
		require.NoError(t, stage(c))
		assert.Equal(t, "2", rec.Header().Get(constant.HeaderRateLimitLimit))
	}

	c, _ := newContext(nil)
	err := stage(c)
	assert.Equal(t, http.StatusTooManyRequests, statusOf(t, err))

	var apiErr *response.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Positive(t, apiErr.RetryAfter)
}

type failingStore struct{}

func (failingStore) Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	return 0, 0, errors.New("store down")
}

func TestRateLimitFailsOpen(t *testing.T) {
	stage := RateLimit(ratelimit.New(failingStore{}), "default", ratelimit.Quota{Limit: 1, Window: time.Minute})

	for i := 0; i < 3; i++ {
		c, _ := newContext(nil)
		assert.NoError(t, stage(c))
	}
}
