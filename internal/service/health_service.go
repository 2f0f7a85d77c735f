package service

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/insurang/lead-funnel/internal/repository"
)

// BreakerStater reports a provider circuit breaker's state.
type BreakerStater interface {
	BreakerState() string
}

type healthService struct {
	repo        repository.Repository
	redisClient *redis.Client
	sequences   SequenceService
	email       BreakerStater
	sms         BreakerStater
}

func NewHealthService(
	repo repository.Repository,
	redisClient *redis.Client,
	sequences SequenceService,
	email BreakerStater,
	sms BreakerStater,
) HealthService {
	return &healthService{
		repo:        repo,
		redisClient: redisClient,
		sequences:   sequences,
		email:       email,
		sms:         sms,
	}
}

func (s *healthService) GetHealth() *HealthStatus {
	status := &HealthStatus{
		Status:          HealthHealthy,
		DatabaseStatus:  "up",
		RedisStatus:     "disabled",
		SchedulerStatus: "stopped",
		EmailBreaker:    s.email.BreakerState(),
		SMSBreaker:      s.sms.BreakerState(),
	}

	if err := s.repo.Ping(); err != nil {
		status.DatabaseStatus = "down"
		status.Status = HealthUnhealthy
	}

	if s.redisClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		status.RedisStatus = "up"
		if err := s.redisClient.Ping(ctx).Err(); err != nil {
			status.RedisStatus = "down"
			if status.Status == HealthHealthy {
				status.Status = HealthDegraded
			}
		}
	}

	if s.sequences.IsRunning() {
		status.SchedulerStatus = "running"
	}

	if status.Status == HealthHealthy && (status.EmailBreaker == "open" || status.SMSBreaker == "open") {
		status.Status = HealthDegraded
	}

	return status
}
