package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/insurang/lead-funnel/internal/repository/mocks"
	"github.com/insurang/lead-funnel/internal/service"
)

func newTrackService(ctrl *gomock.Controller) (service.TrackService, *mocks.MockAnalyticsRepository) {
	mockRepo := mocks.NewMockRepository(ctrl)
	mockAnalytics := mocks.NewMockAnalyticsRepository(ctrl)
	mockRepo.EXPECT().Analytics().Return(mockAnalytics).AnyTimes()
	return service.NewTrackService(mockRepo, zap.NewNop()), mockAnalytics
}

func TestTrackService_PageView(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockAnalytics := newTrackService(ctrl)
	mockAnalytics.EXPECT().
		CreatePageView(gomock.Any(), "sess-1", "/offers/insurance-guide", gomock.Nil(), gomock.Nil()).
		Return(nil)

	err := svc.Track(context.Background(), service.TrackInput{
		Type:      service.TrackTypePageView,
		SessionID: "sess-1",
		PagePath:  "/offers/insurance-guide",
	})

	assert.NoError(t, err)
}

func TestTrackService_FunnelEvent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockAnalytics := newTrackService(ctrl)
	mockAnalytics.EXPECT().
		CreateFunnelEvent(gomock.Any(), "sess-1", "/offers/insurance-guide", "form_submitted", gomock.Nil()).
		Return(nil)

	err := svc.Track(context.Background(), service.TrackInput{
		Type:      service.TrackTypeFunnelEvent,
		SessionID: "sess-1",
		PagePath:  "/offers/insurance-guide",
		EventName: "form_submitted",
	})

	assert.NoError(t, err)
}

func TestTrackService_InsertErrorIsSwallowed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, mockAnalytics := newTrackService(ctrl)
	mockAnalytics.EXPECT().
		CreatePageView(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.New("db down"))

	err := svc.Track(context.Background(), service.TrackInput{
		Type:      service.TrackTypePageView,
		SessionID: "sess-1",
		PagePath:  "/",
	})

	assert.NoError(t, err)
}

func TestTrackService_InvalidInput(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc, _ := newTrackService(ctrl)
	ctx := context.Background()

	tests := []struct {
		name  string
		input service.TrackInput
	}{
		{
			name:  "missing session",
			input: service.TrackInput{Type: service.TrackTypePageView, PagePath: "/"},
		},
		{
			name:  "missing page path",
			input: service.TrackInput{Type: service.TrackTypePageView, SessionID: "sess-1"},
		},
		{
			name:  "funnel event without name",
			input: service.TrackInput{Type: service.TrackTypeFunnelEvent, SessionID: "sess-1", PagePath: "/"},
		},
		{
			name:  "unknown type",
			input: service.TrackInput{Type: "click", SessionID: "sess-1", PagePath: "/"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, svc.Track(ctx, tt.input))
		})
	}
}
