package service

import (
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/insurang/lead-funnel/internal/config"
	"github.com/insurang/lead-funnel/internal/notifier"
	"github.com/insurang/lead-funnel/internal/ratelimit"
	"github.com/insurang/lead-funnel/internal/repository"
)

type Service struct {
	Lead      LeadService
	Admin     AdminService
	Track     TrackService
	Settings  SettingsService
	Sequences SequenceService
	Health    HealthService
}

func NewService(
	cfg *config.Config,
	repo repository.Repository,
	redisClient *redis.Client,
	logger *zap.Logger,
) *Service {
	settingsService := NewSettingsService(cfg, repo, logger)

	emailSender := notifier.NewEmailSender(cfg.Email, settingsService, logger)
	smsSender := notifier.NewSMSSender(cfg.SMS, settingsService, logger)

	limiter := ratelimit.NewLimiter(
		repo.RateLimits(),
		cfg.Intake.RateLimitMax,
		time.Duration(cfg.Intake.RateLimitWindowMs)*time.Millisecond,
		ratelimit.PolicyFromString(cfg.Intake.RateLimitPolicy),
		logger,
	)

	leadService := NewLeadService(repo, limiter, emailSender, smsSender, redisClient, logger)
	adminService := NewAdminService(repo, emailSender, smsSender, logger)
	trackService := NewTrackService(repo, logger)
	sequenceService := NewSequenceService(cfg, repo, emailSender, smsSender, logger)
	healthService := NewHealthService(repo, redisClient, sequenceService, emailSender, smsSender)

	return &Service{
		Lead:      leadService,
		Admin:     adminService,
		Track:     trackService,
		Settings:  settingsService,
		Sequences: sequenceService,
		Health:    healthService,
	}
}
