// Package models defines data structures used throughout the application.
package models

import (
	"database/sql"
	"time"
)

// Lead is a captured form submission. Rows are created once and never updated.
type Lead struct {
	ID               int64          `db:"id" json:"id"`
	OfferSlug        string         `db:"offer_slug" json:"offer_slug"`
	Name             string         `db:"name" json:"name"`
	Email            string         `db:"email" json:"email"`
	Phone            string         `db:"phone" json:"phone"`
	Organization     sql.NullString `db:"organization" json:"organization,omitempty"`
	ConsentPrivacy   bool           `db:"consent_privacy" json:"consent_privacy"`
	ConsentMarketing bool           `db:"consent_marketing" json:"consent_marketing"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
}

// LeadInput is the normalized payload accepted by the intake endpoint.
type LeadInput struct {
	OfferSlug        string `json:"offer_slug"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	Organization     string `json:"organization,omitempty"`
	ConsentPrivacy   bool   `json:"consent_privacy"`
	ConsentMarketing bool   `json:"consent_marketing"`
}

// LeadListItem is a lead annotated with the latest status per channel,
// defaulting to pending when no message log exists.
type LeadListItem struct {
	Lead
	EmailStatus MessageStatus `db:"email_status" json:"email_status"`
	SMSStatus   MessageStatus `db:"sms_status" json:"sms_status"`
}

// LeadDetail is a lead plus its full message-log history, newest first.
type LeadDetail struct {
	Lead
	Logs []*MessageLog `json:"logs"`
}
