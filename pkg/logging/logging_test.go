package logging

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLog_WritesOnlySetFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := Wrap(zap.New(core), "retail-api")

	l.Log(Fields{OrderID: "ORD-2024-001", Step: "advance", Status: "confirmed", Message: "order advanced"})

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.InfoLevel, entry.Level)
	assert.Equal(t, "order advanced", entry.Message)
	assert.Equal(t, map[string]any{
		"service":  "retail-api",
		"order_id": "ORD-2024-001",
		"step":     "advance",
		"status":   "confirmed",
	}, entry.ContextMap())
}

func TestLog_ErrorDowngradesToWarn(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := Wrap(zap.New(core), "retail-api")

	l.Log(Fields{Service: "catalog", ProductID: "P011", Err: errors.New("duplicate sku"), Message: "product rejected"})

	entry := logs.All()[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	assert.Equal(t, "catalog", entry.ContextMap()["service"])
	assert.Equal(t, "duplicate sku", entry.ContextMap()["error"])
}

func TestNew_RejectsUnknownLevel(t *testing.T) {
	_, err := New("retail-api", "loud")
	assert.Error(t, err)

	l, err := New("retail-api", "debug")
	require.NoError(t, err)
	assert.NotNil(t, l.Zap())
}

func TestRequestID_Context(t *testing.T) {
	assert.Empty(t, RequestID(context.Background()))
	ctx := WithRequestID(context.Background(), "req-7")
	assert.Equal(t, "req-7", RequestID(ctx))
}
