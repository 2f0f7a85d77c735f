// Package logging wires zap to the error_logs audit table.
package logging

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/insurang/lead-funnel/internal/models"
	"github.com/insurang/lead-funnel/internal/repository"
)

// dbCore mirrors warn and error entries into the error_logs table. Console
// output stays on the wrapped core; a failed insert is dropped silently to
// avoid recursing into the logger.
type dbCore struct {
	zapcore.LevelEnabler
	repo   repository.ErrorLogRepository
	fields []zapcore.Field
}

// NewAuditLogger tees the base logger's output into the error_logs table.
func NewAuditLogger(base *zap.Logger, repo repository.ErrorLogRepository) *zap.Logger {
	core := &dbCore{
		LevelEnabler: zapcore.WarnLevel,
		repo:         repo,
	}
	return zap.New(zapcore.NewTee(base.Core(), core))
}

func (c *dbCore) With(fields []zapcore.Field) zapcore.Core {
	combined := make([]zapcore.Field, 0, len(c.fields)+len(fields))
	combined = append(combined, c.fields...)
	combined = append(combined, fields...)
	return &dbCore{
		LevelEnabler: c.LevelEnabler,
		repo:         c.repo,
		fields:       combined,
	}
}

func (c *dbCore) Check(entry zapcore.Entry, checked *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(entry.Level) {
		return checked.AddCore(entry, c)
	}
	return checked
}

func (c *dbCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	level := models.ErrorLevelWarn
	if entry.Level >= zapcore.ErrorLevel {
		level = models.ErrorLevelError
	}

	var logContext *string
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range c.fields {
		f.AddTo(enc)
	}
	for _, f := range fields {
		f.AddTo(enc)
	}
	if len(enc.Fields) > 0 {
		if data, err := json.Marshal(enc.Fields); err == nil {
			s := string(data)
			logContext = &s
		}
	}

	var stack *string
	if entry.Stack != "" {
		stack = &entry.Stack
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_ = c.repo.Create(ctx, level, entry.Message, logContext, stack)
	return nil
}

func (c *dbCore) Sync() error {
	return nil
}
