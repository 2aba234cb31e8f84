package logging

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Fields struct {
	Service    string
	RequestID  string
	OrderID    string
	ProductID  string
	CustomerID int
	EventID    string
	Step       string
	Status     string
	DurationMS int64
	Message    string
	Err        error
}

// Logger renders Fields as one structured line per call.
type Logger struct {
	z       *zap.Logger
	service string
}

func New(service, level string) (*Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	cfg.DisableStacktrace = true
	z, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return Wrap(z, service), nil
}

// Wrap adapts an existing zap logger, e.g. zaptest/observer in tests.
func Wrap(z *zap.Logger, service string) *Logger {
	return &Logger{z: z, service: service}
}

func Nop() *Logger {
	return Wrap(zap.NewNop(), "")
}

func (l *Logger) Zap() *zap.Logger { return l.z }

func (l *Logger) Sync() error { return l.z.Sync() }

// Log writes at info, or at warn when f.Err is set.
func (l *Logger) Log(f Fields) {
	if f.Err != nil {
		l.z.Warn(f.Message, l.fields(f)...)
		return
	}
	l.z.Info(f.Message, l.fields(f)...)
}

func (l *Logger) Error(f Fields) {
	l.z.Error(f.Message, l.fields(f)...)
}

func (l *Logger) fields(f Fields) []zap.Field {
	service := f.Service
	if service == "" {
		service = l.service
	}
	out := make([]zap.Field, 0, 10)
	out = append(out, zap.String("service", service))
	if f.RequestID != "" {
		out = append(out, zap.String("request_id", f.RequestID))
	}
	if f.OrderID != "" {
		out = append(out, zap.String("order_id", f.OrderID))
	}
	if f.ProductID != "" {
		out = append(out, zap.String("product_id", f.ProductID))
	}
	if f.CustomerID != 0 {
		out = append(out, zap.Int("customer_id", f.CustomerID))
	}
	if f.EventID != "" {
		out = append(out, zap.String("event_id", f.EventID))
	}
	if f.Step != "" {
		out = append(out, zap.String("step", f.Step))
	}
	if f.Status != "" {
		out = append(out, zap.String("status", f.Status))
	}
	if f.DurationMS != 0 {
		out = append(out, zap.Int64("duration_ms", f.DurationMS))
	}
	if f.Err != nil {
		out = append(out, zap.Error(f.Err))
	}
	return out
}

type requestIDKey struct{}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the id stored by WithRequestID, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
