package middleware

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/shinyyama/trace-green-backend/internal/reqctx"
)

// ErrorKey is the echo context key under which handlers leave the cause of a
// 5xx response they rendered themselves.
const ErrorKey = "error"

// RequestContext copies the request id assigned by echo's RequestID
// middleware onto the request context.
func RequestContext(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		rid := c.Response().Header().Get(echo.HeaderXRequestID)
		if rid != "" {
			c.SetRequest(c.Request().WithContext(reqctx.WithRID(c.Request().Context(), rid)))
		}
		return next(c)
	}
}

// Timeout bounds the request context handed to services.
func Timeout(d time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if d <= 0 {
				return next(c)
			}
			ctx, cancel := context.WithTimeout(c.Request().Context(), d)
			defer cancel()
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// RequestLogger writes one zap line per request.
func RequestLogger(log *zap.Logger) echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogRemoteIP:  true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("rid", v.RequestID),
				zap.String("ip", v.RemoteIP),
			}
			if uid, ok := c.Get("uid").(string); ok && uid != "" {
				fields = append(fields, zap.String("uid", uid))
			}
			switch {
			case v.Status >= 500:
				err := v.Error
				if err == nil {
					err, _ = c.Get(ErrorKey).(error)
				}
				log.Error("request", append(fields, zap.Error(err))...)
			case v.Status >= 400:
				log.Warn("request", fields...)
			default:
				log.Info("request", fields...)
			}
			return nil
		},
	})
}
