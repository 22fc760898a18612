package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shinyyama/trace-green-backend/internal/ai"
	"github.com/shinyyama/trace-green-backend/internal/config"
	"github.com/shinyyama/trace-green-backend/internal/events"
	appmw "github.com/shinyyama/trace-green-backend/internal/middleware"
	"github.com/shinyyama/trace-green-backend/internal/storage"
)

type stubVerifier struct{}

func (stubVerifier) VerifyIDToken(_ context.Context, token string) (*auth.Token, error) {
	if token == "good" {
		return &auth.Token{UID: "user-1"}, nil
	}
	return nil, errors.New("bad token")
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := &config.Config{
		AllowedOrigins: []string{"https://trace-green.example"},
		MetricsUser:    "prom",
		MetricsPass:    "secret",
	}
	return New(Deps{
		Config:    cfg,
		Logger:    zap.NewNop(),
		Auth:      appmw.NewAuthMiddlewareWithVerifier(stubVerifier{}, nil, zap.NewNop()),
		Publisher: events.Nop{},
		Uploader:  storage.Disabled{},
		Tips:      ai.StaticTipClient{},
	})
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	rec := serve(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestEmissionFactorsArePublic(t *testing.T) {
	s := newTestServer(t)
	rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/emission-factors", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"transportation"`)
}

func TestMeRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)
	rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/me/profile", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/api/admin/badges", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec := serve(s, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestMetricsBasicAuth(t *testing.T) {
	s := newTestServer(t)
	rec := serve(s, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.SetBasicAuth("prom", "secret")
	rec = serve(s, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAllowOrigin(t *testing.T) {
	allow := allowOrigin([]string{" https://trace-green.example/ "})
	cases := map[string]bool{
		"https://trace-green.example": true,
		"https://TRACE-green.example": true,
		"http://localhost:5173":       true,
		"http://127.0.0.1:3000":       true,
		"https://evil.example":        false,
		"ftp://localhost":             false,
	}
	for origin, want := range cases {
		got, err := allow(origin)
		require.NoError(t, err)
		assert.Equal(t, want, got, origin)
	}
}
