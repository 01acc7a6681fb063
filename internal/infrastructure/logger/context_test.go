package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestWithContext_FromContext(t *testing.T) {
	baseLogger := zap.NewNop()
	ctx := WithContext(context.Background(), baseLogger)

	assert.Equal(t, baseLogger, FromContext(ctx))
}

func TestFromContext_NotFound(t *testing.T) {
	logger := FromContext(context.Background())

	// Missing logger falls back to a no-op, never nil
	require.NotNil(t, logger)
	assert.NotPanics(t, func() {
		logger.Info("should not panic")
	})
}

func TestWithRequestID(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()
	requestID := "req-12345"

	newCtx, newLogger := WithRequestID(ctx, logger, requestID)

	assert.NotNil(t, newLogger)
	assert.Equal(t, requestID, GetRequestID(newCtx))
	assert.Equal(t, newLogger, FromContext(newCtx))
}

func TestWithTenantID(t *testing.T) {
	logger := zap.NewNop()
	ctx := context.Background()
	tenantID := "tenant-abc"

	newCtx, newLogger := WithTenantID(ctx, logger, tenantID)

	assert.NotNil(t, newLogger)
	assert.Equal(t, tenantID, GetTenantID(newCtx))
}

func TestGetRequestID_NotFound(t *testing.T) {
	assert.Empty(t, GetRequestID(context.Background()))
}

func TestGetTenantID_NotFound(t *testing.T) {
	assert.Empty(t, GetTenantID(context.Background()))
}

func TestContextKeys_AreDistinct(t *testing.T) {
	assert.NotEqual(t, LoggerKey, RequestIDKey)
	assert.NotEqual(t, LoggerKey, TenantIDKey)
	assert.NotEqual(t, RequestIDKey, TenantIDKey)
}

func TestL_ReturnsContextLogger(t *testing.T) {
	cl := L(context.Background())

	assert.NotNil(t, cl)
	assert.NotNil(t, cl.ctx)
	assert.NotNil(t, cl.logger)
}

func TestWithLogger_UsesProvidedLogger(t *testing.T) {
	baseLogger, err := NewForEnvironment("development")
	require.NoError(t, err)

	cl := WithLogger(context.Background(), baseLogger)

	assert.NotNil(t, cl)
	assert.Equal(t, baseLogger, cl.logger)
}

func TestContextLogger_LogLevels(t *testing.T) {
	cl := WithLogger(context.Background(), zap.NewNop())

	assert.NotPanics(t, func() {
		cl.Debug("debug message")
		cl.Info("info message")
		cl.Warn("warn message")
		cl.Error("error message")
	})
}

func TestContextLogger_EnrichesWithContextFields(t *testing.T) {
	var buf bytes.Buffer
	encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	core := zapcore.NewCore(encoder, zapcore.AddSync(&buf), zapcore.DebugLevel)
	baseLogger := zap.New(core)

	ctx := context.Background()
	ctx, _ = WithRequestID(ctx, baseLogger, "req-123")
	ctx, _ = WithTenantID(ctx, baseLogger, "tenant-456")

	cl := WithLogger(ctx, baseLogger)
	cl.Info("test message", zap.String("extra_field", "extra_value"))

	output := buf.String()
	assert.Contains(t, output, `"request_id":"req-123"`)
	assert.Contains(t, output, `"tenant_id":"tenant-456"`)
	assert.Contains(t, output, `"extra_field":"extra_value"`)
	assert.Contains(t, output, "test message")
}

func TestContextLogger_SkipsEmptyContextFields(t *testing.T) {
	var buf bytes.Buffer
	encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	core := zapcore.NewCore(encoder, zapcore.AddSync(&buf), zapcore.DebugLevel)
	baseLogger := zap.New(core)

	cl := WithLogger(context.Background(), baseLogger)
	cl.Info("bare message")

	output := buf.String()
	assert.NotContains(t, output, `"request_id"`)
	assert.NotContains(t, output, `"tenant_id"`)
}

func TestContextLogger_With(t *testing.T) {
	var buf bytes.Buffer
	encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	core := zapcore.NewCore(encoder, zapcore.AddSync(&buf), zapcore.DebugLevel)
	baseLogger := zap.New(core)

	ctx := context.Background()
	cl := WithLogger(ctx, baseLogger)
	childCl := cl.With(zap.String("key", "value"))

	assert.NotNil(t, childCl)
	assert.Equal(t, ctx, childCl.ctx)
	assert.NotEqual(t, baseLogger, childCl.logger)

	childCl.Info("child message")
	assert.Contains(t, buf.String(), `"key":"value"`)
}

func TestContextLogger_Zap(t *testing.T) {
	cl := WithLogger(context.Background(), zap.NewNop())

	zapLogger := cl.Zap()

	require.NotNil(t, zapLogger)
	assert.NotPanics(t, func() {
		zapLogger.Info("test")
	})
}
