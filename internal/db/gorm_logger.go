package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Skotchmaster/emoji_shop/internal/logging"
)

const defaultSlowThreshold = 200 * time.Millisecond

// gormLogger sends GORM output to slog, preferring the request logger in ctx.
type gormLogger struct {
	base          *slog.Logger
	level         logger.LogLevel
	slowThreshold time.Duration
}

func NewGormLogger(base *slog.Logger) logger.Interface {
	level := logger.Warn
	if base.Enabled(context.Background(), slog.LevelDebug) {
		level = logger.Info
	}
	return &gormLogger{base: base, level: level, slowThreshold: defaultSlowThreshold}
}

func (l *gormLogger) LogMode(level logger.LogLevel) logger.Interface {
	cloned := *l
	cloned.level = level
	return &cloned
}

func (l *gormLogger) from(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if fromCtx := logging.FromContext(ctx); fromCtx != slog.Default() {
			return fromCtx
		}
	}
	return l.base
}

func (l *gormLogger) Info(ctx context.Context, msg string, args ...any) {
	if l.level < logger.Info {
		return
	}
	l.from(ctx).InfoContext(ctx, "gorm_info", "message", fmt.Sprintf(msg, args...))
}

func (l *gormLogger) Warn(ctx context.Context, msg string, args ...any) {
	if l.level < logger.Warn {
		return
	}
	l.from(ctx).WarnContext(ctx, "gorm_warn", "message", fmt.Sprintf(msg, args...))
}

func (l *gormLogger) Error(ctx context.Context, msg string, args ...any) {
	if l.level < logger.Error {
		return
	}
	l.from(ctx).ErrorContext(ctx, "gorm_error", "message", fmt.Sprintf(msg, args...))
}

func (l *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level == logger.Silent {
		return
	}
	elapsed := time.Since(begin)

	switch {
	case err != nil && l.level >= logger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		l.from(ctx).ErrorContext(ctx, "gorm_query_failed", "elapsed", elapsed, "rows", rows, "sql", sql, "error", err)
	case l.slowThreshold > 0 && elapsed > l.slowThreshold && l.level >= logger.Warn:
		sql, rows := fc()
		l.from(ctx).WarnContext(ctx, "gorm_slow_query", "elapsed", elapsed, "rows", rows, "sql", sql, "threshold", l.slowThreshold)
	case l.level >= logger.Info:
		sql, rows := fc()
		l.from(ctx).DebugContext(ctx, "gorm_query", "elapsed", elapsed, "rows", rows, "sql", sql)
	}
}
