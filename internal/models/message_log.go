package models

import (
	"database/sql"
	"time"
)

type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

type MessageStatus string

const (
	MessageStatusPending MessageStatus = "pending"
	MessageStatusSuccess MessageStatus = "success"
	MessageStatusFailed  MessageStatus = "failed"
)

// MessageLog records one notification attempt for one channel. Rows are
// append-only; the current status of a channel is the most recent row.
type MessageLog struct {
	ID           int64          `db:"id" json:"id"`
	LeadID       int64          `db:"lead_id" json:"lead_id"`
	Channel      Channel        `db:"channel" json:"channel"`
	Status       MessageStatus  `db:"status" json:"status"`
	ProviderID   sql.NullString `db:"provider_id" json:"provider_id,omitempty"`
	ErrorMessage sql.NullString `db:"error_message" json:"error_message,omitempty"`
	SentAt       time.Time      `db:"sent_at" json:"sent_at"`
}
