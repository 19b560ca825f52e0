package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level định nghĩa các mức độ log
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	ErrorLevel
)

// ParseLevel đọc mức log từ cấu hình, mặc định là info
func ParseLevel(s string) Level {
	switch s {
	case "debug":
		return DebugLevel
	case "error":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

func (l Level) zapLevel() zapcore.Level {
	switch l {
	case DebugLevel:
		return zapcore.DebugLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Logger interface định nghĩa các phương thức logging
type Logger interface {
	Info(format string, v ...interface{})
	Error(format string, v ...interface{})
	Debug(format string, v ...interface{})
}

// DefaultLogger implement Logger interface trên nền zap
type DefaultLogger struct {
	sugar *zap.SugaredLogger
}

// NewDefaultLogger tạo một instance mới của DefaultLogger
func NewDefaultLogger(level Level) *DefaultLogger {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level.zapLevel())
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	z, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		z = zap.NewExample()
	}
	return &DefaultLogger{sugar: z.Sugar()}
}

// NewNopLogger dùng cho test
func NewNopLogger() *DefaultLogger {
	return &DefaultLogger{sugar: zap.NewNop().Sugar()}
}

// With gắn thêm field cố định cho mọi dòng log
func (l *DefaultLogger) With(args ...interface{}) *DefaultLogger {
	return &DefaultLogger{sugar: l.sugar.With(args...)}
}

func (l *DefaultLogger) Info(format string, v ...interface{}) {
	l.sugar.Infof(format, v...)
}

func (l *DefaultLogger) Error(format string, v ...interface{}) {
	l.sugar.Errorf(format, v...)
}

func (l *DefaultLogger) Debug(format string, v ...interface{}) {
	l.sugar.Debugf(format, v...)
}

// Sync flush buffer trước khi tắt tiến trình
func (l *DefaultLogger) Sync() {
	_ = l.sugar.Sync()
}
