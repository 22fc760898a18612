package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/shinyyama/trace-green-backend/internal/reqctx"
)

// TokenVerifier is satisfied by *auth.Client.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

type AuthMiddleware struct {
	verifier TokenVerifier
	admins   map[string]struct{}
	log      *zap.Logger
}

func NewAuthMiddleware(ctx context.Context, projectID string, adminUIDs []string, log *zap.Logger) (*AuthMiddleware, error) {
	if projectID == "" {
		return nil, errors.New("FIREBASE_PROJECT_ID is not set")
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID})
	if err != nil {
		return nil, err
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, err
	}
	return NewAuthMiddlewareWithVerifier(client, adminUIDs, log), nil
}

func NewAuthMiddlewareWithVerifier(v TokenVerifier, adminUIDs []string, log *zap.Logger) *AuthMiddleware {
	admins := make(map[string]struct{}, len(adminUIDs))
	for _, uid := range adminUIDs {
		if uid = strings.TrimSpace(uid); uid != "" {
			admins[uid] = struct{}{}
		}
	}
	return &AuthMiddleware{verifier: v, admins: admins, log: log}
}

func (m *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authz := c.Request().Header.Get("Authorization")
		if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
			recordAuthRejection("missing_token")
			return c.JSON(http.StatusUnauthorized, errorBody("unauthorized", "missing bearer token"))
		}
		tokenStr := strings.TrimPrefix(authz, "Bearer ")
		token, err := m.verifier.VerifyIDToken(c.Request().Context(), tokenStr)
		if err != nil {
			recordAuthRejection("invalid_token")
			reqctx.Logger(c.Request().Context(), m.log).Info("token rejected", zap.Error(err))
			return c.JSON(http.StatusUnauthorized, errorBody("invalid_token", "token verification failed"))
		}
		c.Set("uid", token.UID)
		c.Set("admin", m.isAdmin(token))
		c.SetRequest(c.Request().WithContext(reqctx.WithUID(c.Request().Context(), token.UID)))
		return next(c)
	}
}

// RequireAdmin must run after RequireAuth.
func (m *AuthMiddleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if admin, _ := c.Get("admin").(bool); !admin {
			recordAuthRejection("not_admin")
			return c.JSON(http.StatusForbidden, errorBody("forbidden", "admin only"))
		}
		return next(c)
	}
}

func (m *AuthMiddleware) isAdmin(t *auth.Token) bool {
	if _, ok := m.admins[t.UID]; ok {
		return true
	}
	v, _ := t.Claims["admin"].(bool)
	return v
}

func errorBody(code, msg string) map[string]map[string]string {
	return map[string]map[string]string{"error": {"code": code, "message": msg}}
}
