package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/insurang/lead-funnel/internal/repository"
)

const (
	TrackTypePageView    = "page_view"
	TrackTypeFunnelEvent = "funnel_event"
)

type trackService struct {
	repo   repository.Repository
	logger *zap.Logger
}

func NewTrackService(repo repository.Repository, logger *zap.Logger) TrackService {
	return &trackService{
		repo:   repo,
		logger: logger,
	}
}

// Track validates the event shape and inserts it fire-and-forget: a failed
// insert is logged but never reported to the client.
func (s *trackService) Track(ctx context.Context, input TrackInput) error {
	input.SessionID = strings.TrimSpace(input.SessionID)
	input.PagePath = strings.TrimSpace(input.PagePath)
	if input.SessionID == "" || input.PagePath == "" {
		return fmt.Errorf("session_id and page_path are required")
	}

	switch input.Type {
	case TrackTypePageView:
		if err := s.repo.Analytics().CreatePageView(ctx, input.SessionID, input.PagePath, input.Referrer, input.UserAgent); err != nil {
			s.logger.Warn("Failed to record page view", zap.Error(err))
		}
	case TrackTypeFunnelEvent:
		if strings.TrimSpace(input.EventName) == "" {
			return fmt.Errorf("event_name is required for funnel events")
		}
		if err := s.repo.Analytics().CreateFunnelEvent(ctx, input.SessionID, input.PagePath, input.EventName, input.Metadata); err != nil {
			s.logger.Warn("Failed to record funnel event", zap.Error(err))
		}
	default:
		return fmt.Errorf("unknown track type %q", input.Type)
	}

	return nil
}
