package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"intent-resolver/internal/application/port/output"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ output.LoggerPort = (*LoggerAdapter)(nil)

// LoggerAdapter реализует output.LoggerPort поверх zap.SugaredLogger.
type LoggerAdapter struct {
	sugar *zap.SugaredLogger
	file  *os.File
}

// NewLoggerAdapter пишет JSON-строки в ./log/<timestamp>_<name>.log
// и, если opts.Stderr, дублирует их в stderr.
func NewLoggerAdapter(name string, opts Options) (*LoggerAdapter, error) {
	filename := fmt.Sprintf("%s_%s.log", time.Now().Format("2006-01-02_15-04-05"), sanitize(name))

	dir := opts.Dir
	if dir == "" {
		dir = "log"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	file, err := os.Create(filepath.Join(dir, filename))
	if err != nil {
		return nil, fmt.Errorf("create log file: %w", err)
	}

	level, err := ParseLevel(opts.Level)
	if err != nil {
		file.Close()
		return nil, err
	}

	cores := []zapcore.Core{newCore(file, level)}
	if opts.Stderr {
		cores = append(cores, newCore(os.Stderr, level))
	}

	return &LoggerAdapter{
		sugar: zap.New(zapcore.NewTee(cores...)).Sugar(),
		file:  file,
	}, nil
}

// NewWriterLogger пишет JSON-строки в произвольный writer (удобно для тестов и CLI).
func NewWriterLogger(w io.Writer, level string) (*LoggerAdapter, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return &LoggerAdapter{
		sugar: zap.New(newCore(zapcore.AddSync(w), lvl)).Sugar(),
	}, nil
}

// NewNopLogger ничего не пишет.
func NewNopLogger() *LoggerAdapter {
	return &LoggerAdapter{sugar: zap.NewNop().Sugar()}
}

func newCore(w zapcore.WriteSyncer, level zapcore.Level) zapcore.Core {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "timestamp"
	encCfg.MessageKey = "message"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	encCfg.EncodeDuration = zapcore.MillisDurationEncoder

	return zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.Lock(w), level)
}

func (l *LoggerAdapter) Debug(msg string, args ...any) {
	l.sugar.Debugw(msg, args...)
}

func (l *LoggerAdapter) Info(msg string, args ...any) {
	l.sugar.Infow(msg, args...)
}

func (l *LoggerAdapter) Warn(msg string, args ...any) {
	l.sugar.Warnw(msg, args...)
}

func (l *LoggerAdapter) Error(msg string, args ...any) {
	l.sugar.Errorw(msg, args...)
}

func (l *LoggerAdapter) WithField(key string, value any) output.LoggerPort {
	return &LoggerAdapter{
		sugar: l.sugar.With(key, value),
		file:  l.file,
	}
}

func (l *LoggerAdapter) WithFields(fields map[string]any) output.LoggerPort {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}

	return &LoggerAdapter{
		sugar: l.sugar.With(args...),
		file:  l.file,
	}
}

func (l *LoggerAdapter) Close() error {
	_ = l.sugar.Sync()
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}
