package models

import (
	"database/sql"
	"time"
)

// PageView is a fire-and-forget page impression.
type PageView struct {
	ID        int64          `db:"id" json:"id"`
	SessionID string         `db:"session_id" json:"session_id"`
	PagePath  string         `db:"page_path" json:"page_path"`
	Referrer  sql.NullString `db:"referrer" json:"referrer,omitempty"`
	UserAgent sql.NullString `db:"user_agent" json:"user_agent,omitempty"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}

// FunnelEvent is a named step a visitor took inside the funnel.
type FunnelEvent struct {
	ID        int64          `db:"id" json:"id"`
	SessionID string         `db:"session_id" json:"session_id"`
	PagePath  string         `db:"page_path" json:"page_path"`
	EventName string         `db:"event_name" json:"event_name"`
	Metadata  sql.NullString `db:"metadata" json:"metadata,omitempty"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
}

// DashboardStats aggregates counts for the admin dashboard; recomputed per
// request, no caching.
type DashboardStats struct {
	TotalLeads     int64            `json:"total_leads"`
	LeadsToday     int64            `json:"leads_today"`
	LeadsByDay     []DayCount       `json:"leads_by_day"`
	EmailSuccess   int64            `json:"email_success"`
	EmailFailed    int64            `json:"email_failed"`
	SMSSuccess     int64            `json:"sms_success"`
	SMSFailed      int64            `json:"sms_failed"`
	EmailRatio     float64          `json:"email_ratio"`
	SMSRatio       float64          `json:"sms_ratio"`
	PageViews      int64            `json:"page_views"`
	FunnelByEvent  map[string]int64 `json:"funnel_by_event"`
	ConversionRate float64          `json:"conversion_rate"`
}

// DayCount is one day's lead count for the dashboard chart.
type DayCount struct {
	Day   string `db:"day" json:"day"`
	Count int64  `db:"count" json:"count"`
}
