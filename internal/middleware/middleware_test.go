package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shinyyama/trace-green-backend/internal/reqctx"
)

type stubVerifier map[string]*auth.Token

func (s stubVerifier) VerifyIDToken(_ context.Context, token string) (*auth.Token, error) {
	if t, ok := s[token]; ok {
		return t, nil
	}
	return nil, errors.New("bad token")
}

func newAuthEcho() *echo.Echo {
	m := NewAuthMiddlewareWithVerifier(stubVerifier{
		"user":  {UID: "user-1"},
		"claim": {UID: "admin-1", Claims: map[string]interface{}{"admin": true}},
		"list":  {UID: "admin-2"},
	}, []string{" admin-2 "}, zap.NewNop())

	e := echo.New()
	g := e.Group("/api/me", m.RequireAuth)
	g.GET("", func(c echo.Context) error {
		return c.String(http.StatusOK, reqctx.UID(c.Request().Context()))
	})
	a := e.Group("/api/admin", m.RequireAuth, m.RequireAdmin)
	a.GET("", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })
	return e
}

func do(e *echo.Echo, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRequireAuth(t *testing.T) {
	e := newAuthEcho()

	rec := do(e, "/api/me", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(e, "/api/me", "forged")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_token")

	rec = do(e, "/api/me", "user")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", rec.Body.String())
}

func TestRequireAdmin(t *testing.T) {
	e := newAuthEcho()

	assert.Equal(t, http.StatusForbidden, do(e, "/api/admin", "user").Code)
	assert.Equal(t, http.StatusNoContent, do(e, "/api/admin", "claim").Code)
	assert.Equal(t, http.StatusNoContent, do(e, "/api/admin", "list").Code)
	assert.Equal(t, http.StatusUnauthorized, do(e, "/api/admin", "").Code)
}

func TestRateLimiter(t *testing.T) {
	l := NewRateLimiter(0.001, 2)
	e := echo.New()
	e.Use(l.Middleware)
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		codes = append(codes, do(e, "/", "").Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderXForwardedFor, "203.0.113.9")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiterEvict(t *testing.T) {
	l := NewRateLimiter(1, 1)
	l.limiter("198.51.100.1")
	require.Len(t, l.visitors, 1)

	l.evict(l.visitors["198.51.100.1"].lastSeen.Add(l.ttl + 1))
	assert.Empty(t, l.visitors)
}

func TestRequestContext(t *testing.T) {
	e := echo.New()
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: func() string { return "rid-1" }}))
	e.Use(RequestContext)
	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, reqctx.RID(c.Request().Context()))
	})

	rec := do(e, "/", "")
	assert.Equal(t, "rid-1", rec.Body.String())
}
