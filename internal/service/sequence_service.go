package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/insurang/lead-funnel/internal/config"
	"github.com/insurang/lead-funnel/internal/models"
	"github.com/insurang/lead-funnel/internal/notifier"
	"github.com/insurang/lead-funnel/internal/repository"
	"github.com/insurang/lead-funnel/internal/scheduler"
)

type sequenceService struct {
	repo        repository.Repository
	emailSender notifier.Sender
	smsSender   notifier.Sender
	batchSize   int
	scheduler   *scheduler.Scheduler
	logger      *zap.Logger
}

func NewSequenceService(
	cfg *config.Config,
	repo repository.Repository,
	emailSender notifier.Sender,
	smsSender notifier.Sender,
	logger *zap.Logger,
) SequenceService {
	svc := &sequenceService{
		repo:        repo,
		emailSender: emailSender,
		smsSender:   smsSender,
		batchSize:   cfg.Sequences.BatchSize,
		logger:      logger,
	}

	interval := time.Duration(cfg.Sequences.IntervalMinutes) * time.Minute
	svc.scheduler = scheduler.NewScheduler(logger, interval, svc.DispatchDue)
	return svc
}

func (s *sequenceService) Start() error {
	return s.scheduler.Start(context.Background())
}

func (s *sequenceService) Stop() error {
	return s.scheduler.Stop()
}

func (s *sequenceService) IsRunning() bool {
	return s.scheduler.IsRunning()
}

// DispatchDue delivers every pending sequence log whose scheduled time has
// passed. A failed delivery marks the log failed and moves on; an admin
// reset is the only way a log is retried.
func (s *sequenceService) DispatchDue(ctx context.Context) error {
	logs, err := s.repo.Sequences().GetDueLogs(ctx, time.Now(), s.batchSize)
	if err != nil {
		return fmt.Errorf("failed to get due sequence logs: %w", err)
	}

	if len(logs) == 0 {
		return nil
	}

	s.logger.Info("Dispatching due sequence logs", zap.Int("count", len(logs)))

	for _, log := range logs {
		if err := s.dispatch(ctx, log); err != nil {
			s.logger.Error("Failed to dispatch sequence log",
				zap.Int64("log_id", log.ID),
				zap.Error(err))
		}
	}

	return nil
}

func (s *sequenceService) dispatch(ctx context.Context, log *models.SequenceLog) error {
	seq, err := s.repo.Sequences().GetByID(ctx, log.SequenceID)
	if err != nil {
		return err
	}
	if seq == nil || !seq.Active {
		return s.repo.Sequences().MarkLogFailed(ctx, log.ID, "sequence missing or inactive")
	}

	detail, err := s.repo.Leads().GetByID(ctx, log.LeadID)
	if err != nil {
		return err
	}
	if detail == nil {
		return s.repo.Sequences().MarkLogFailed(ctx, log.ID, "lead not found")
	}

	msg := notifier.Message{
		Name:    detail.Name,
		Subject: seq.Subject,
		Body:    seq.Body,
	}

	var sender notifier.Sender
	switch seq.Channel {
	case models.ChannelEmail:
		sender = s.emailSender
		msg.To = detail.Email
	case models.ChannelSMS:
		sender = s.smsSender
		msg.To = detail.Phone
	default:
		return s.repo.Sequences().MarkLogFailed(ctx, log.ID, fmt.Sprintf("unknown channel %q", seq.Channel))
	}

	result := sender.Send(ctx, msg)
	if !result.Success {
		return s.repo.Sequences().MarkLogFailed(ctx, log.ID, result.Err)
	}

	return s.repo.Sequences().MarkLogSent(ctx, log.ID, time.Now())
}
