package service

import "github.com/insurang/lead-funnel/internal/models"

// SubmitResult is the outcome of a successful lead submission.
type SubmitResult struct {
	LeadID int64 `json:"lead_id"`
}

// SequenceLogPage is one page of sequence logs with the derived total.
type SequenceLogPage struct {
	Logs   []*models.SequenceLog `json:"logs"`
	Total  int64                 `json:"total"`
	Limit  int                   `json:"limit"`
	Offset int                   `json:"offset"`
}

// TrackInput is the analytics payload. Type is "page_view" or "funnel_event".
type TrackInput struct {
	Type      string  `json:"type"`
	SessionID string  `json:"session_id"`
	PagePath  string  `json:"page_path"`
	EventName string  `json:"event_name,omitempty"`
	Referrer  *string `json:"referrer,omitempty"`
	UserAgent *string `json:"user_agent,omitempty"`
	Metadata  *string `json:"metadata,omitempty"`
}

// MaskedSetting is a setting as exposed to administrators; secret values are
// replaced with "***".
type MaskedSetting struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// TestResult is one provider's outcome from the admin test endpoint.
type TestResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// HealthStatus is the aggregate health snapshot.
type HealthStatus struct {
	Status          string `json:"status"`
	DatabaseStatus  string `json:"database_status"`
	RedisStatus     string `json:"redis_status"`
	SchedulerStatus string `json:"scheduler_status"`
	EmailBreaker    string `json:"email_breaker"`
	SMSBreaker      string `json:"sms_breaker"`
}

const (
	HealthHealthy   = "healthy"
	HealthDegraded  = "degraded"
	HealthUnhealthy = "unhealthy"
)
