package models

import (
	"database/sql"
	"time"
)

type OfferStatus string

const (
	OfferStatusActive   OfferStatus = "active"
	OfferStatusInactive OfferStatus = "inactive"
)

// Offer is a marketing offer looked up by slug. Read-only at request time.
type Offer struct {
	ID           int64          `db:"id" json:"id"`
	Slug         string         `db:"slug" json:"slug"`
	Name         string         `db:"name" json:"name"`
	Description  sql.NullString `db:"description" json:"description,omitempty"`
	Status       OfferStatus    `db:"status" json:"status"`
	DownloadLink sql.NullString `db:"download_link" json:"download_link,omitempty"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}
