package models

import (
	"database/sql"
	"time"
)

type SequenceLogStatus string

const (
	SequenceLogStatusPending SequenceLogStatus = "pending"
	SequenceLogStatusSent    SequenceLogStatus = "sent"
	SequenceLogStatusFailed  SequenceLogStatus = "failed"
)

// Sequence is a follow-up message template scheduled relative to lead capture.
type Sequence struct {
	ID         int64     `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	Channel    Channel   `db:"channel" json:"channel"`
	Subject    string    `db:"subject" json:"subject"`
	Body       string    `db:"body" json:"body"`
	DelayHours int       `db:"delay_hours" json:"delay_hours"`
	Active     bool      `db:"active" json:"active"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// SequenceLog is one scheduled delivery of a sequence message to a lead.
// Status moves pending -> sent|failed; an admin reset moves it back to pending.
type SequenceLog struct {
	ID           int64             `db:"id" json:"id"`
	SequenceID   int64             `db:"sequence_id" json:"sequence_id"`
	LeadID       int64             `db:"lead_id" json:"lead_id"`
	ScheduledAt  time.Time         `db:"scheduled_at" json:"scheduled_at"`
	SentAt       sql.NullTime      `db:"sent_at" json:"sent_at,omitempty"`
	Status       SequenceLogStatus `db:"status" json:"status"`
	ErrorMessage sql.NullString    `db:"error_message" json:"error_message,omitempty"`
}

// SequenceLogFilter narrows admin sequence-log listings.
type SequenceLogFilter struct {
	SequenceID *int64
	LeadID     *int64
	Status     *SequenceLogStatus
	Limit      int
	Offset     int
}
