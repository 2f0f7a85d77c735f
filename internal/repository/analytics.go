package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/insurang/lead-funnel/internal/models"
)

// channelTally is one (channel, status) aggregate row.
type channelTally struct {
	Channel models.Channel       `db:"channel"`
	Status  models.MessageStatus `db:"status"`
	Count   int64                `db:"count"`
}

// eventCount is one funnel-event aggregate row.
type eventCount struct {
	EventName string `db:"event_name"`
	Count     int64  `db:"count"`
}

func messageTallies(ctx context.Context, db *sqlx.DB, query string) ([]channelTally, error) {
	var tallies []channelTally
	if err := db.SelectContext(ctx, &tallies, query); err != nil {
		return nil, fmt.Errorf("failed to tally message logs: %w", err)
	}
	return tallies, nil
}

func funnelCounts(ctx context.Context, db *sqlx.DB, query string) (map[string]int64, error) {
	var counts []eventCount
	if err := db.SelectContext(ctx, &counts, query); err != nil {
		return nil, fmt.Errorf("failed to count funnel events: %w", err)
	}

	result := make(map[string]int64, len(counts))
	for _, c := range counts {
		result[c.EventName] = c.Count
	}
	return result, nil
}

func applyTallies(stats *models.DashboardStats, tallies []channelTally) {
	for _, t := range tallies {
		switch {
		case t.Channel == models.ChannelEmail && t.Status == models.MessageStatusSuccess:
			stats.EmailSuccess = t.Count
		case t.Channel == models.ChannelEmail && t.Status == models.MessageStatusFailed:
			stats.EmailFailed = t.Count
		case t.Channel == models.ChannelSMS && t.Status == models.MessageStatusSuccess:
			stats.SMSSuccess = t.Count
		case t.Channel == models.ChannelSMS && t.Status == models.MessageStatusFailed:
			stats.SMSFailed = t.Count
		}
	}
}

func finalizeStats(stats *models.DashboardStats) {
	if total := stats.EmailSuccess + stats.EmailFailed; total > 0 {
		stats.EmailRatio = float64(stats.EmailSuccess) / float64(total)
	}
	if total := stats.SMSSuccess + stats.SMSFailed; total > 0 {
		stats.SMSRatio = float64(stats.SMSSuccess) / float64(total)
	}
	if stats.PageViews > 0 {
		stats.ConversionRate = float64(stats.TotalLeads) / float64(stats.PageViews)
	}
}
