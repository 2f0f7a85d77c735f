package models

import (
	"database/sql"
	"time"
)

type ErrorLevel string

const (
	ErrorLevelError ErrorLevel = "error"
	ErrorLevelWarn  ErrorLevel = "warn"
	ErrorLevelInfo  ErrorLevel = "info"
)

// ErrorLog is an append-only audit row written alongside console logging.
type ErrorLog struct {
	ID        int64          `db:"id" json:"id"`
	Level     ErrorLevel     `db:"level" json:"level"`
	Message   string         `db:"message" json:"message"`
	Context   sql.NullString `db:"context" json:"context,omitempty"`
	Stack     sql.NullString `db:"stack" json:"stack,omitempty"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}
