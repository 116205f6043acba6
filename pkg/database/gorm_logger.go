package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/narwhalmedia/catalog/pkg/interfaces"
)

// gormLogger routes GORM output to the service logger.
type gormLogger struct {
	logger        interfaces.Logger
	slowThreshold time.Duration
	debug         bool
}

// NewGormLogger adapts logger for GORM. A zero slowThreshold disables slow query warnings.
func NewGormLogger(logger interfaces.Logger, slowThreshold time.Duration, debug bool) gormlogger.Interface {
	return &gormLogger{
		logger:        logger.WithFields(interfaces.String("component", "gorm")),
		slowThreshold: slowThreshold,
		debug:         debug,
	}
}

func (l *gormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.debug = level >= gormlogger.Info
	return &clone
}

func (l *gormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	l.logger.WithContext(ctx).Info(fmt.Sprintf(msg, data...))
}

func (l *gormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	l.logger.WithContext(ctx).Warn(fmt.Sprintf(msg, data...))
}

func (l *gormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	l.logger.WithContext(ctx).Error(fmt.Sprintf(msg, data...))
}

func (l *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	elapsed := time.Since(begin)
	sql, rows := fc()
	fields := []interfaces.Field{
		interfaces.String("sql", sql),
		interfaces.Int64("rows", rows),
		interfaces.Duration("elapsed", elapsed),
	}

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		l.logger.WithContext(ctx).Error("sql error", append(fields, interfaces.Error(err))...)
	case l.slowThreshold > 0 && elapsed > l.slowThreshold:
		l.logger.WithContext(ctx).Warn("slow sql query", fields...)
	case l.debug:
		l.logger.WithContext(ctx).Debug("sql trace", fields...)
	}
}
