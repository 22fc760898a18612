package reqctx

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey string

const (
	keyRID ctxKey = "request_id"
	keyUID ctxKey = "uid"
)

// WithRID stores the correlation id of the current request.
func WithRID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, keyRID, rid)
}

// RID returns correlation id if present.
func RID(ctx context.Context) string {
	v, _ := ctx.Value(keyRID).(string)
	return v
}

func WithUID(ctx context.Context, uid string) context.Context {
	return context.WithValue(ctx, keyUID, uid)
}

func UID(ctx context.Context) string {
	v, _ := ctx.Value(keyUID).(string)
	return v
}

// Logger decorates log with the request id and uid carried by ctx.
func Logger(ctx context.Context, log *zap.Logger) *zap.Logger {
	fields := make([]zap.Field, 0, 2)
	if rid := RID(ctx); rid != "" {
		fields = append(fields, zap.String("rid", rid))
	}
	if uid := UID(ctx); uid != "" {
		fields = append(fields, zap.String("uid", uid))
	}
	return log.With(fields...)
}
