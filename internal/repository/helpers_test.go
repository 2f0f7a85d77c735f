package repository_test

import (
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func insertOffer(t *testing.T, db *sqlx.DB, slug, name, status string) int64 {
	t.Helper()

	result, err := db.Exec(
		`INSERT INTO offers (slug, name, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		slug, name, status, time.Now(), time.Now(),
	)
	require.NoError(t, err)

	id, err := result.LastInsertId()
	require.NoError(t, err)
	return id
}

func insertLead(t *testing.T, db *sqlx.DB, name string, createdAt time.Time) int64 {
	t.Helper()

	result, err := db.Exec(
		`INSERT INTO leads (offer_slug, name, email, phone, consent_privacy, consent_marketing, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		"insurance-guide", name, "lead@example.com", "01012345678", true, false, createdAt,
	)
	require.NoError(t, err)

	id, err := result.LastInsertId()
	require.NoError(t, err)
	return id
}

func insertMessageLog(t *testing.T, db *sqlx.DB, leadID int64, channel, status string, sentAt time.Time) int64 {
	t.Helper()

	result, err := db.Exec(
		`INSERT INTO message_logs (lead_id, channel, status, sent_at) VALUES (?, ?, ?, ?)`,
		leadID, channel, status, sentAt,
	)
	require.NoError(t, err)

	id, err := result.LastInsertId()
	require.NoError(t, err)
	return id
}

func insertSequence(t *testing.T, db *sqlx.DB, name, channel string, active bool) int64 {
	t.Helper()

	result, err := db.Exec(
		`INSERT INTO sequences (name, channel, subject, body, delay_hours, active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		name, channel, "follow up", "안녕하세요 {{name}}님", 24, active, time.Now(),
	)
	require.NoError(t, err)

	id, err := result.LastInsertId()
	require.NoError(t, err)
	return id
}

func insertSequenceLog(t *testing.T, db *sqlx.DB, sequenceID, leadID int64, status string, scheduledAt time.Time) int64 {
	t.Helper()

	result, err := db.Exec(
		`INSERT INTO sequence_logs (sequence_id, lead_id, scheduled_at, status) VALUES (?, ?, ?, ?)`,
		sequenceID, leadID, scheduledAt, status,
	)
	require.NoError(t, err)

	id, err := result.LastInsertId()
	require.NoError(t, err)
	return id
}

func insertPageView(t *testing.T, db *sqlx.DB, sessionID, pagePath string) {
	t.Helper()

	_, err := db.Exec(
		`INSERT INTO page_views (session_id, page_path, created_at) VALUES (?, ?, ?)`,
		sessionID, pagePath, time.Now(),
	)
	require.NoError(t, err)
}

func insertFunnelEvent(t *testing.T, db *sqlx.DB, sessionID, eventName string) {
	t.Helper()

	_, err := db.Exec(
		`INSERT INTO funnel_events (session_id, page_path, event_name, created_at) VALUES (?, ?, ?, ?)`,
		sessionID, "/", eventName, time.Now(),
	)
	require.NoError(t, err)
}

func ptr(s string) *string {
	return &s
}
