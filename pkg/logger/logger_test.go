package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	appctx "repairdesk/internal/core/context"
)

func TestWithContext_AddsRequestFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := &Logger{zap.New(core).Sugar()}

	ctx := WithLogger(context.Background(), l)
	ctx = appctx.WithUser(ctx, &appctx.UserContext{UserID: "tech-7", TenantID: 3})
	ctx = appctx.WithTrace(ctx, &appctx.TraceContext{TraceID: "t-1", RequestID: "r-1"})

	Info(ctx, "repair created", "code", "REP-1")

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "tech-7", fields["user_id"])
	assert.Equal(t, int64(3), fields["tenant_id"])
	assert.Equal(t, "t-1", fields["trace_id"])
	assert.Equal(t, "REP-1", fields["code"])
}

func TestFromContext_FallsBackToDefault(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))
}
