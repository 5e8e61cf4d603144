package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/appshelf/appshelf/internal/config"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SlogGormLogger routes gorm's query log into slog.
type SlogGormLogger struct {
	Logger        *slog.Logger
	LogLevel      logger.LogLevel
	SlowThreshold time.Duration
}

func NewSlogGormLogger(l *slog.Logger) *SlogGormLogger {
	if l == nil {
		l = slog.Default()
	}
	return &SlogGormLogger{
		Logger:        l,
		LogLevel:      gormLevel(os.Getenv(config.ENV_KEY_LOG_LEVEL)),
		SlowThreshold: 200 * time.Millisecond,
	}
}

// gormLevel maps LOG_LEVEL to gorm's level. Queries are only logged at
// DEBUG; INFO keeps slow queries and errors.
func gormLevel(lvl string) logger.LogLevel {
	switch strings.ToUpper(lvl) {
	case "DEBUG":
		return logger.Info
	case "ERROR":
		return logger.Error
	default:
		return logger.Warn
	}
}

func (l *SlogGormLogger) LogMode(level logger.LogLevel) logger.Interface {
	newLogger := *l
	newLogger.LogLevel = level
	return &newLogger
}

func (l *SlogGormLogger) Info(ctx context.Context, msg string, args ...any) {
	if l.LogLevel >= logger.Info {
		l.Logger.InfoContext(ctx, fmt.Sprintf(msg, args...))
	}
}

func (l *SlogGormLogger) Warn(ctx context.Context, msg string, args ...any) {
	if l.LogLevel >= logger.Warn {
		l.Logger.WarnContext(ctx, fmt.Sprintf(msg, args...))
	}
}

func (l *SlogGormLogger) Error(ctx context.Context, msg string, args ...any) {
	if l.LogLevel >= logger.Error {
		l.Logger.ErrorContext(ctx, fmt.Sprintf(msg, args...))
	}
}

func (l *SlogGormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.LogLevel <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)

	switch {
	case err != nil && l.LogLevel >= logger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		l.Logger.ErrorContext(ctx, "sql_error",
			slog.String("sql", sql),
			slog.Int64("rows", rows),
			slog.Duration("latency", elapsed),
			slog.String("source", source()),
			slog.String("err", err.Error()),
		)
	case l.SlowThreshold != 0 && elapsed > l.SlowThreshold && l.LogLevel >= logger.Warn:
		sql, rows := fc()
		l.Logger.WarnContext(ctx, "sql_slow",
			slog.String("sql", sql),
			slog.Int64("rows", rows),
			slog.Duration("latency", elapsed),
			slog.String("source", source()),
			slog.Duration("slow_threshold", l.SlowThreshold),
		)
	case l.LogLevel >= logger.Info:
		sql, rows := fc()
		l.Logger.DebugContext(ctx, "sql",
			slog.String("sql", sql),
			slog.Int64("rows", rows),
			slog.Duration("latency", elapsed),
		)
	}
}

// source reports the first caller outside gorm and this file.
func source() string {
	for i := 3; i < 16; i++ {
		_, file, line, ok := runtime.Caller(i)
		if ok && !strings.Contains(file, "gorm.io") && !strings.HasSuffix(file, "internal/database/logger.go") {
			return file + ":" + strconv.Itoa(line)
		}
	}
	return ""
}
