// Package gormlog routes gorm log output into zerolog.
package gormlog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	gormlogger "gorm.io/gorm/logger"
)

// Logger implements gorm's logger.Interface on top of a zerolog logger.
type Logger struct {
	zl            zerolog.Logger
	level         gormlogger.LogLevel
	slowThreshold time.Duration
	traceSQL      bool
}

// New returns a gorm logger writing to the global zerolog logger.
// With traceSQL every statement is logged at debug level, otherwise only errors and slow queries.
func New(traceSQL bool, slowThreshold time.Duration) *Logger {
	return &Logger{
		zl:            log.Logger.With().Str("component", "gorm").Logger(),
		level:         gormlogger.Warn,
		slowThreshold: slowThreshold,
		traceSQL:      traceSQL,
	}
}

// LogMode implements gormlogger.Interface.
func (l *Logger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level

	return &clone
}

// Info implements gormlogger.Interface.
func (l *Logger) Info(_ context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Info {
		l.zl.Info().Msg(fmt.Sprintf(msg, args...))
	}
}

// Warn implements gormlogger.Interface.
func (l *Logger) Warn(_ context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Warn {
		l.zl.Warn().Msg(fmt.Sprintf(msg, args...))
	}
}

// Error implements gormlogger.Interface.
func (l *Logger) Error(_ context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Error {
		l.zl.Error().Msg(fmt.Sprintf(msg, args...))
	}
}

// Trace implements gormlogger.Interface.
func (l *Logger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)

	switch {
	case err != nil && !errors.Is(err, gormlogger.ErrRecordNotFound) && l.level >= gormlogger.Error:
		sql, rows := fc()
		l.zl.Error().Err(err).Dur("elapsed", elapsed).Int64("rows", rows).Str("sql", sql).Msg("sql failed")
	case l.slowThreshold > 0 && elapsed > l.slowThreshold && l.level >= gormlogger.Warn:
		sql, rows := fc()
		l.zl.Warn().Dur("elapsed", elapsed).Int64("rows", rows).Str("sql", sql).Msg("slow sql")
	case l.traceSQL:
		sql, rows := fc()
		l.zl.Debug().Dur("elapsed", elapsed).Int64("rows", rows).Str("sql", sql).Msg("sql")
	}
}
