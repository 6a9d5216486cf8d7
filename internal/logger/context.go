package logger

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

type ctxKey struct{}

// requestLog is the request-scoped logger. Handlers enrich it with what the
// request targets, and the canonical request line is written from it.
type requestLog struct {
	mu     sync.Mutex
	logger *zap.Logger
}

// ContextWithLogger stores a request-scoped logger in the context.
func ContextWithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, &requestLog{logger: logger})
}

// AddFields attaches fields to the logger stored in ctx. Later FromContext
// calls on the same request see them. No-op without a stored logger.
func AddFields(ctx context.Context, fields ...zap.Field) {
	rl, ok := ctx.Value(ctxKey{}).(*requestLog)
	if !ok || len(fields) == 0 {
		return
	}
	rl.mu.Lock()
	rl.logger = rl.logger.With(fields...)
	rl.mu.Unlock()
}

// FromContext extracts a logger from the context.
// Returns zap.NewNop() if no logger is found.
func FromContext(ctx context.Context) *zap.Logger {
	rl, ok := ctx.Value(ctxKey{}).(*requestLog)
	if !ok {
		return zap.NewNop()
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return rl.logger
}
