package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/insurang/lead-funnel/internal/models"
)

type sqliteAnalyticsRepository struct {
	db *sqlx.DB
}

func (r *sqliteAnalyticsRepository) CreatePageView(ctx context.Context, sessionID, pagePath string, referrer, userAgent *string) error {
	query := `
		INSERT INTO page_views (session_id, page_path, referrer, user_agent, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	var ref, ua sql.NullString
	if referrer != nil {
		ref = sql.NullString{String: *referrer, Valid: true}
	}
	if userAgent != nil {
		ua = sql.NullString{String: *userAgent, Valid: true}
	}

	if _, err := r.db.ExecContext(ctx, query, sessionID, pagePath, ref, ua, time.Now()); err != nil {
		return fmt.Errorf("failed to create page view: %w", err)
	}

	return nil
}

func (r *sqliteAnalyticsRepository) CreateFunnelEvent(ctx context.Context, sessionID, pagePath, eventName string, metadata *string) error {
	query := `
		INSERT INTO funnel_events (session_id, page_path, event_name, metadata, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	var meta sql.NullString
	if metadata != nil {
		meta = sql.NullString{String: *metadata, Valid: true}
	}

	if _, err := r.db.ExecContext(ctx, query, sessionID, pagePath, eventName, meta, time.Now()); err != nil {
		return fmt.Errorf("failed to create funnel event: %w", err)
	}

	return nil
}

func (r *sqliteAnalyticsRepository) Stats(ctx context.Context, since time.Time) (*models.DashboardStats, error) {
	stats := &models.DashboardStats{FunnelByEvent: map[string]int64{}}

	if err := r.db.GetContext(ctx, &stats.TotalLeads, `SELECT COUNT(*) FROM leads`); err != nil {
		return nil, fmt.Errorf("failed to count leads: %w", err)
	}

	startOfDay := time.Date(since.Year(), since.Month(), since.Day(), 0, 0, 0, 0, since.Location())
	if err := r.db.GetContext(ctx, &stats.LeadsToday,
		`SELECT COUNT(*) FROM leads WHERE created_at >= ?`, startOfDay); err != nil {
		return nil, fmt.Errorf("failed to count leads today: %w", err)
	}

	byDayQuery := `
		SELECT strftime('%Y-%m-%d', created_at) AS day, COUNT(*) AS count
		FROM leads
		WHERE created_at >= ?
		GROUP BY 1
		ORDER BY 1
	`
	if err := r.db.SelectContext(ctx, &stats.LeadsByDay, byDayQuery, since.AddDate(0, 0, -30)); err != nil {
		return nil, fmt.Errorf("failed to count leads by day: %w", err)
	}

	tallies, err := messageTallies(ctx, r.db, `SELECT channel, status, COUNT(*) AS count FROM message_logs GROUP BY channel, status`)
	if err != nil {
		return nil, err
	}
	applyTallies(stats, tallies)

	if err := r.db.GetContext(ctx, &stats.PageViews, `SELECT COUNT(*) FROM page_views`); err != nil {
		return nil, fmt.Errorf("failed to count page views: %w", err)
	}

	funnel, err := funnelCounts(ctx, r.db, `SELECT event_name, COUNT(*) AS count FROM funnel_events GROUP BY event_name`)
	if err != nil {
		return nil, err
	}
	stats.FunnelByEvent = funnel

	finalizeStats(stats)
	return stats, nil
}
