package logger

import (
	"os"
	"strings"

	"github.com/samvad-hq/samvad-httpclient/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the structured logging surface shared by the application packages.
type Logger interface {
	InfoObj(msg, key string, obj interface{})
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
	ErrorObj(msg, key string, obj interface{})
}

// NopLogger discards everything.
type NopLogger struct{}

func (*NopLogger) InfoObj(string, string, interface{})  {}
func (*NopLogger) DebugObj(string, string, interface{}) {}
func (*NopLogger) WarnObj(string, string, interface{})  {}
func (*NopLogger) ErrorObj(string, string, interface{}) {}

// Package-level logger to be used across packages after Init.
var S *zap.SugaredLogger

// ParseLevel maps a config level name to a zap level, defaulting to info.
func ParseLevel(name string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Init initializes the package logger using settings from config and returns it as a Logger.
func Init(cfg *config.Config) (Logger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.AddSync(zapcore.Lock(os.Stdout)),
		ParseLevel(cfg.LogLevel),
	)

	S = zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)).Sugar()
	return New(S.Desugar()), nil
}

// Close flushes any buffered loggers.
func Close() error {
	if S == nil {
		return nil
	}
	return S.Sync()
}

type zapLogger struct {
	z *zap.Logger
}

// New adapts a zap logger to Logger. A nil logger yields a no-op.
func New(z *zap.Logger) Logger {
	if z == nil {
		return &NopLogger{}
	}
	return &zapLogger{z: z.WithOptions(zap.AddCallerSkip(1))}
}

func (l *zapLogger) InfoObj(msg, key string, obj interface{})  { l.z.Info(msg, zap.Any(key, obj)) }
func (l *zapLogger) DebugObj(msg, key string, obj interface{}) { l.z.Debug(msg, zap.Any(key, obj)) }
func (l *zapLogger) WarnObj(msg, key string, obj interface{})  { l.z.Warn(msg, zap.Any(key, obj)) }
func (l *zapLogger) ErrorObj(msg, key string, obj interface{}) { l.z.Error(msg, zap.Any(key, obj)) }

// Minimal object logging helpers -------------------------------------------------
// These log the given object as a structured field named `key`.
func InfoObj(msg, key string, obj interface{}) {
	if S == nil {
		return
	}
	S.Desugar().Info(msg, zap.Any(key, obj))
}

func DebugObj(msg, key string, obj interface{}) {
	if S == nil {
		return
	}
	S.Desugar().Debug(msg, zap.Any(key, obj))
}

func WarnObj(msg, key string, obj interface{}) {
	if S == nil {
		return
	}
	S.Desugar().Warn(msg, zap.Any(key, obj))
}

func ErrorObj(msg, key string, obj interface{}) {
	if S == nil {
		return
	}
	S.Desugar().Error(msg, zap.Any(key, obj))
}
