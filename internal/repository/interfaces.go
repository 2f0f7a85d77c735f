package repository

import (
	"context"
	"time"

	"github.com/insurang/lead-funnel/internal/models"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_repository.go -package=mocks

// Repository aggregates all storage operations. Two implementations exist,
// postgres and sqlite; they must behave identically.
type Repository interface {
	// Ping checks database connectivity
	Ping() error

	Offers() OfferRepository
	Leads() LeadRepository
	MessageLogs() MessageLogRepository
	Sequences() SequenceRepository
	ErrorLogs() ErrorLogRepository
	Settings() SettingsRepository
	RateLimits() RateLimitRepository
	Analytics() AnalyticsRepository
}

// OfferRepository reads marketing offers.
type OfferRepository interface {
	// GetBySlug returns the active offer with the given slug, or nil when
	// no such offer exists. Absence is not an error.
	GetBySlug(ctx context.Context, slug string) (*models.Offer, error)
}

// LeadRepository owns the leads table.
type LeadRepository interface {
	Create(ctx context.Context, input models.LeadInput) (int64, error)
	// ListWithStatus returns leads newest first, each annotated with the
	// latest email/sms status in a single query (no per-lead lookups).
	ListWithStatus(ctx context.Context, limit, offset int) ([]*models.LeadListItem, error)
	// GetByID returns the lead with its full message-log history, newest
	// first, or nil when the lead does not exist.
	GetByID(ctx context.Context, id int64) (*models.LeadDetail, error)
}

// MessageLogRepository appends notification outcomes.
type MessageLogRepository interface {
	Create(ctx context.Context, leadID int64, channel models.Channel, status models.MessageStatus, providerID, errorMessage *string) (int64, error)
}

// SequenceRepository serves the follow-up sequence dispatcher and its admin
// endpoints.
type SequenceRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Sequence, error)
	ListLogs(ctx context.Context, filter models.SequenceLogFilter) ([]*models.SequenceLog, int64, error)
	// ResetLog moves a log back to pending for re-delivery.
	ResetLog(ctx context.Context, id int64) error
	GetDueLogs(ctx context.Context, now time.Time, limit int) ([]*models.SequenceLog, error)
	MarkLogSent(ctx context.Context, id int64, sentAt time.Time) error
	MarkLogFailed(ctx context.Context, id int64, errorMessage string) error
}

// ErrorLogRepository appends audit rows for caught errors.
type ErrorLogRepository interface {
	Create(ctx context.Context, level models.ErrorLevel, message string, logContext, stack *string) error
}

// SettingsRepository persists provider credentials and toggles.
type SettingsRepository interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Upsert(ctx context.Context, key, value string) error
	All(ctx context.Context) ([]*models.Setting, error)
}

// RateLimitRepository backs the store-counted submission limiter.
type RateLimitRepository interface {
	CountSince(ctx context.Context, identifier string, since time.Time) (int, error)
	Record(ctx context.Context, identifier string, at time.Time) error
}

// AnalyticsRepository stores tracking events and computes dashboard stats.
type AnalyticsRepository interface {
	CreatePageView(ctx context.Context, sessionID, pagePath string, referrer, userAgent *string) error
	CreateFunnelEvent(ctx context.Context, sessionID, pagePath, eventName string, metadata *string) error
	// Stats recomputes dashboard aggregates; nothing is cached.
	Stats(ctx context.Context, since time.Time) (*models.DashboardStats, error)
}
