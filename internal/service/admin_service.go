package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/insurang/lead-funnel/internal/models"
	"github.com/insurang/lead-funnel/internal/notifier"
	"github.com/insurang/lead-funnel/internal/repository"
)

type adminService struct {
	repo        repository.Repository
	emailSender notifier.Sender
	smsSender   notifier.Sender
	logger      *zap.Logger
}

func NewAdminService(
	repo repository.Repository,
	emailSender notifier.Sender,
	smsSender notifier.Sender,
	logger *zap.Logger,
) AdminService {
	return &adminService{
		repo:        repo,
		emailSender: emailSender,
		smsSender:   smsSender,
		logger:      logger,
	}
}

func (s *adminService) ListLeads(ctx context.Context, limit, offset int) ([]*models.LeadListItem, error) {
	items, err := s.repo.Leads().ListWithStatus(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	return items, nil
}

func (s *adminService) GetLead(ctx context.Context, id int64) (*models.LeadDetail, error) {
	detail, err := s.repo.Leads().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}
	return detail, nil
}

func (s *adminService) ListSequenceLogs(ctx context.Context, filter models.SequenceLogFilter) (*SequenceLogPage, error) {
	logs, total, err := s.repo.Sequences().ListLogs(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list sequence logs: %w", err)
	}

	return &SequenceLogPage{
		Logs:   logs,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}, nil
}

func (s *adminService) ResetSequenceLog(ctx context.Context, id int64) error {
	return s.repo.Sequences().ResetLog(ctx, id)
}

func (s *adminService) Stats(ctx context.Context) (*models.DashboardStats, error) {
	stats, err := s.repo.Analytics().Stats(ctx, time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to compute stats: %w", err)
	}
	return stats, nil
}

// TestNotifiers performs one real delivery per configured channel so missing
// or wrong credentials surface here instead of on the public intake path.
func (s *adminService) TestNotifiers(ctx context.Context, email, phone string) map[string]TestResult {
	results := make(map[string]TestResult, 2)

	if email != "" {
		res := s.emailSender.Send(ctx, notifier.Message{
			To:      email,
			Name:    "관리자",
			Subject: "INSURANG 발송 테스트",
			Body:    "이 메일이 보이면 이메일 설정이 정상입니다.",
		})
		results["email"] = TestResult{Success: res.Success, Error: res.Err}
	}

	if phone != "" {
		res := s.smsSender.Send(ctx, notifier.Message{
			To:   phone,
			Name: "관리자",
			Body: "[INSURANG] 발송 테스트입니다.",
		})
		results["sms"] = TestResult{Success: res.Success, Error: res.Err}
	}

	return results
}
