package log

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCtx(t *testing.T) {
	ctx := context.Background()

	// without a logger in the context we get the default
	assert.NotNil(t, Ctx(ctx))

	custom := slog.New(slog.NewTextHandler(nil, nil))
	ctx = With(ctx, custom)
	assert.Same(t, custom, Ctx(ctx))
}

func TestSetDefaultLogLevel(t *testing.T) {
	ctx := context.Background()
	defer SetDefaultLogLevel(slog.LevelInfo)

	assert.False(t, Ctx(ctx).Enabled(ctx, slog.LevelDebug))
	SetDefaultLogLevel(slog.LevelDebug)
	assert.True(t, Ctx(ctx).Enabled(ctx, slog.LevelDebug))

	// loggers carried in the context keep their own level
	custom := slog.New(slog.NewTextHandler(nil, &slog.HandlerOptions{Level: slog.LevelError}))
	cctx := With(ctx, custom)
	assert.False(t, Ctx(cctx).Enabled(cctx, slog.LevelDebug))
}
