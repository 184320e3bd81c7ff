package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the logging surface the collector depends on. It is satisfied by
// the zap-backed implementation below and by Nop in tests.
type Logger interface {
	With(args ...interface{}) Logger

	Debugf(template string, args ...interface{})
	Infof(template string, args ...interface{})
	Warnf(template string, args ...interface{})
	Errorf(template string, args ...interface{})

	Sync() error
}

type zapLogger struct {
	logger *zap.SugaredLogger
}

// New builds a console logger writing human-readable progress lines to
// stdout. The returned sync func flushes buffered entries and is safe to
// defer from main.
func New(level zapcore.Level) (Logger, func(), error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stdout"}
	cfg.ErrorOutputPaths = []string{"stdout"}
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")

	l, err := cfg.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("build logger: %w", err)
	}

	logger := &zapLogger{logger: l.Sugar()}
	return logger, func() { _ = logger.Sync() }, nil
}

func (l *zapLogger) With(args ...interface{}) Logger {
	return &zapLogger{logger: l.logger.With(args...)}
}

func (l *zapLogger) Debugf(template string, args ...interface{}) {
	l.logger.Debugf(template, args...)
}

func (l *zapLogger) Infof(template string, args ...interface{}) {
	l.logger.Infof(template, args...)
}

func (l *zapLogger) Warnf(template string, args ...interface{}) {
	l.logger.Warnf(template, args...)
}

func (l *zapLogger) Errorf(template string, args ...interface{}) {
	l.logger.Errorf(template, args...)
}

func (l *zapLogger) Sync() error {
	return l.logger.Sync()
}

// Nop discards everything. Used by tests.
func Nop() Logger {
	return &zapLogger{logger: zap.NewNop().Sugar()}
}
