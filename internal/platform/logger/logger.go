package logger

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/yungbote/tenantdesk-backend/internal/platform/ctxutil"
	"github.com/yungbote/tenantdesk-backend/internal/platform/envutil"
)

type Logger struct {
	SugaredLogger *zap.SugaredLogger
	redact        *Redactor
}

type Option func(*options)

type options struct {
	redact *Redactor
}

// WithRedactor replaces the redaction policy read from the environment.
// A nil redactor disables redaction.
func WithRedactor(r *Redactor) Option {
	return func(o *options) { o.redact = r }
}

// New builds a logger for the given mode. "prod"/"production" emits JSON,
// "test" discards everything, anything else uses the development encoder.
// Redaction follows LOG_REDACTION_ENABLED and LOG_HASH_SALT unless an
// Option overrides it.
func New(mode string, opts ...Option) (*Logger, error) {
	o := options{redact: redactorFromEnv()}
	for _, opt := range opts {
		opt(&o)
	}

	var cfg zap.Config
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "test":
		return Nop(), nil
	default:
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	z, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}
	return &Logger{SugaredLogger: z.Sugar(), redact: o.redact}, nil
}

// Nop returns a logger that drops every entry.
func Nop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

func redactorFromEnv() *Redactor {
	if !envutil.Bool("LOG_REDACTION_ENABLED", true) {
		return nil
	}
	return NewRedactor(envutil.String("LOG_HASH_SALT", ""))
}

func (l *Logger) Sync() {
	_ = l.SugaredLogger.Sync()
}

func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Debugw(msg, l.redact.Apply(keysAndValues)...)
}
func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Infow(msg, l.redact.Apply(keysAndValues)...)
}
func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Warnw(msg, l.redact.Apply(keysAndValues)...)
}
func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Errorw(msg, l.redact.Apply(keysAndValues)...)
}
func (l *Logger) Fatal(msg string, keysAndValues ...interface{}) {
	l.SugaredLogger.Fatalw(msg, l.redact.Apply(keysAndValues)...)
}

func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With(l.redact.Apply(keysAndValues)...), redact: l.redact}
}

// Ctx scopes the logger to the request and trace ids carried by ctx, if any.
func (l *Logger) Ctx(ctx context.Context) *Logger {
	td, ok := ctxutil.TraceFrom(ctx)
	if !ok || td.IsZero() {
		return l
	}
	var kv []interface{}
	if td.RequestID != "" {
		kv = append(kv, "request_id", td.RequestID)
	}
	if td.TraceID != "" {
		kv = append(kv, "trace_id", td.TraceID)
	}
	return l.With(kv...)
}
