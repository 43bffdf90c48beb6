// Package logging builds the logrus logger used across the service and adapts
// it for gorm.
package logging

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// New creates a logger writing to w (os.Stderr when nil). format is "json" or
// "text"; an unknown level falls back to info.
func New(w io.Writer, level, format string) *logrus.Logger {
	if w == nil {
		w = os.Stderr
	}

	logger := logrus.New()
	logger.SetOutput(w)

	if format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)

	return logger
}

// GormLogger routes gorm's query log through logrus.
type GormLogger struct {
	entry         *logrus.Entry
	level         gormlogger.LogLevel
	slowThreshold time.Duration
}

// NewGormLogger returns a gorm logger that reports errors and queries slower
// than 200ms. Debug level on the logrus logger also traces every statement.
func NewGormLogger(logger *logrus.Logger) *GormLogger {
	level := gormlogger.Warn
	if logger.IsLevelEnabled(logrus.DebugLevel) {
		level = gormlogger.Info
	}
	return &GormLogger{
		entry:         logger.WithField("component", "gorm"),
		level:         level,
		slowThreshold: 200 * time.Millisecond,
	}
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	cp := *l
	cp.level = level
	return &cp
}

func (l *GormLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Info {
		l.entry.WithContext(ctx).Infof(msg, args...)
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Warn {
		l.entry.WithContext(ctx).Warnf(msg, args...)
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Error {
		l.entry.WithContext(ctx).Errorf(msg, args...)
	}
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()
	entry := l.entry.WithContext(ctx).WithFields(logrus.Fields{
		"elapsed": elapsed.String(),
		"rows":    rows,
		"sql":     sql,
	})

	switch {
	case err != nil && l.level >= gormlogger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		entry.WithError(err).Error("query failed")
	case elapsed > l.slowThreshold && l.level >= gormlogger.Warn:
		entry.Warn("slow query")
	case l.level >= gormlogger.Info:
		entry.Debug("query")
	}
}
