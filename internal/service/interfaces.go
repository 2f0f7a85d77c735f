package service

import (
	"context"

	"github.com/insurang/lead-funnel/internal/models"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_service.go -package=mocks

// LeadService is the intake orchestrator.
type LeadService interface {
	// Submit validates, persists and notifies. The returned error is nil
	// whenever the lead row was created, regardless of notification
	// outcomes.
	Submit(ctx context.Context, input models.LeadInput, identifier string) (*SubmitResult, error)
	// GetOffer returns the active offer for a slug, nil when missing.
	GetOffer(ctx context.Context, slug string) (*models.Offer, error)
}

// AdminService backs the Basic-Auth gated dashboard endpoints.
type AdminService interface {
	ListLeads(ctx context.Context, limit, offset int) ([]*models.LeadListItem, error)
	// GetLead returns nil when the lead does not exist.
	GetLead(ctx context.Context, id int64) (*models.LeadDetail, error)
	ListSequenceLogs(ctx context.Context, filter models.SequenceLogFilter) (*SequenceLogPage, error)
	ResetSequenceLog(ctx context.Context, id int64) error
	Stats(ctx context.Context) (*models.DashboardStats, error)
	// TestNotifiers attempts a real delivery per channel so an
	// administrator can verify provider credentials.
	TestNotifiers(ctx context.Context, email, phone string) map[string]TestResult
}

// TrackService records analytics events.
type TrackService interface {
	Track(ctx context.Context, input TrackInput) error
}

// SettingsService resolves provider credentials and serves the admin
// settings endpoints. It doubles as the senders' credential source.
type SettingsService interface {
	Lookup(ctx context.Context, key string) string
	All(ctx context.Context) ([]MaskedSetting, error)
	Update(ctx context.Context, values map[string]string) error
}

// SequenceService dispatches due follow-up messages on an interval.
type SequenceService interface {
	Start() error
	Stop() error
	IsRunning() bool
	DispatchDue(ctx context.Context) error
}

type HealthService interface {
	GetHealth() *HealthStatus
}
