package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/insurang/lead-funnel/internal/config"
	"github.com/insurang/lead-funnel/internal/models"
	"github.com/insurang/lead-funnel/internal/notifier"
	"github.com/insurang/lead-funnel/internal/repository/mocks"
	"github.com/insurang/lead-funnel/internal/service"
)

func sequenceTestConfig() *config.Config {
	return &config.Config{
		Sequences: config.SequencesConfig{
			Enabled:         true,
			IntervalMinutes: 5,
			BatchSize:       20,
		},
	}
}

func emailSequence() *models.Sequence {
	return &models.Sequence{
		ID:      1,
		Name:    "day-1 follow-up",
		Channel: models.ChannelEmail,
		Subject: "보험 가이드 잘 받으셨나요?",
		Body:    "추가 자료를 보내드립니다.",
		Active:  true,
	}
}

func dueLog() *models.SequenceLog {
	return &models.SequenceLog{
		ID:          10,
		SequenceID:  1,
		LeadID:      42,
		ScheduledAt: time.Now().Add(-time.Hour),
		Status:      models.SequenceLogStatusPending,
	}
}

func leadDetail() *models.LeadDetail {
	return &models.LeadDetail{
		Lead: models.Lead{
			ID:    42,
			Name:  "김보험",
			Email: "kim@example.com",
			Phone: "01012345678",
		},
	}
}

func TestSequenceService_DispatchDue_MarksSent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockRepository(ctrl)
	mockSequences := mocks.NewMockSequenceRepository(ctrl)
	mockLeads := mocks.NewMockLeadRepository(ctrl)
	mockRepo.EXPECT().Sequences().Return(mockSequences).AnyTimes()
	mockRepo.EXPECT().Leads().Return(mockLeads).AnyTimes()

	mockSequences.EXPECT().GetDueLogs(gomock.Any(), gomock.Any(), 20).Return([]*models.SequenceLog{dueLog()}, nil)
	mockSequences.EXPECT().GetByID(gomock.Any(), int64(1)).Return(emailSequence(), nil)
	mockLeads.EXPECT().GetByID(gomock.Any(), int64(42)).Return(leadDetail(), nil)
	mockSequences.EXPECT().MarkLogSent(gomock.Any(), int64(10), gomock.Any()).Return(nil)

	email := okEmailSender()
	svc := service.NewSequenceService(sequenceTestConfig(), mockRepo, email, okSMSSender(), zap.NewNop())

	err := svc.DispatchDue(context.Background())

	require.NoError(t, err)
	require.Len(t, email.sent(), 1)
	assert.Equal(t, "kim@example.com", email.sent()[0].To)
	assert.Equal(t, "보험 가이드 잘 받으셨나요?", email.sent()[0].Subject)
}

func TestSequenceService_DispatchDue_SendFailureMarksFailed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockRepository(ctrl)
	mockSequences := mocks.NewMockSequenceRepository(ctrl)
	mockLeads := mocks.NewMockLeadRepository(ctrl)
	mockRepo.EXPECT().Sequences().Return(mockSequences).AnyTimes()
	mockRepo.EXPECT().Leads().Return(mockLeads).AnyTimes()

	seq := emailSequence()
	seq.Channel = models.ChannelSMS

	mockSequences.EXPECT().GetDueLogs(gomock.Any(), gomock.Any(), 20).Return([]*models.SequenceLog{dueLog()}, nil)
	mockSequences.EXPECT().GetByID(gomock.Any(), int64(1)).Return(seq, nil)
	mockLeads.EXPECT().GetByID(gomock.Any(), int64(42)).Return(leadDetail(), nil)
	mockSequences.EXPECT().MarkLogFailed(gomock.Any(), int64(10), "gateway timeout").Return(nil)

	sms := &fakeSender{
		channel: models.ChannelSMS,
		result:  notifier.Result{Success: false, Err: "gateway timeout"},
	}
	svc := service.NewSequenceService(sequenceTestConfig(), mockRepo, okEmailSender(), sms, zap.NewNop())

	err := svc.DispatchDue(context.Background())

	require.NoError(t, err)
	require.Len(t, sms.sent(), 1)
	assert.Equal(t, "01012345678", sms.sent()[0].To)
}

func TestSequenceService_DispatchDue_InactiveSequenceMarksFailed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockRepository(ctrl)
	mockSequences := mocks.NewMockSequenceRepository(ctrl)
	mockRepo.EXPECT().Sequences().Return(mockSequences).AnyTimes()

	seq := emailSequence()
	seq.Active = false

	mockSequences.EXPECT().GetDueLogs(gomock.Any(), gomock.Any(), 20).Return([]*models.SequenceLog{dueLog()}, nil)
	mockSequences.EXPECT().GetByID(gomock.Any(), int64(1)).Return(seq, nil)
	mockSequences.EXPECT().MarkLogFailed(gomock.Any(), int64(10), "sequence missing or inactive").Return(nil)

	email := okEmailSender()
	svc := service.NewSequenceService(sequenceTestConfig(), mockRepo, email, okSMSSender(), zap.NewNop())

	err := svc.DispatchDue(context.Background())

	require.NoError(t, err)
	assert.Empty(t, email.sent())
}

func TestSequenceService_DispatchDue_MissingLeadMarksFailed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockRepository(ctrl)
	mockSequences := mocks.NewMockSequenceRepository(ctrl)
	mockLeads := mocks.NewMockLeadRepository(ctrl)
	mockRepo.EXPECT().Sequences().Return(mockSequences).AnyTimes()
	mockRepo.EXPECT().Leads().Return(mockLeads).AnyTimes()

	mockSequences.EXPECT().GetDueLogs(gomock.Any(), gomock.Any(), 20).Return([]*models.SequenceLog{dueLog()}, nil)
	mockSequences.EXPECT().GetByID(gomock.Any(), int64(1)).Return(emailSequence(), nil)
	mockLeads.EXPECT().GetByID(gomock.Any(), int64(42)).Return(nil, nil)
	mockSequences.EXPECT().MarkLogFailed(gomock.Any(), int64(10), "lead not found").Return(nil)

	svc := service.NewSequenceService(sequenceTestConfig(), mockRepo, okEmailSender(), okSMSSender(), zap.NewNop())

	err := svc.DispatchDue(context.Background())

	require.NoError(t, err)
}

func TestSequenceService_DispatchDue_NoDueLogs(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockRepository(ctrl)
	mockSequences := mocks.NewMockSequenceRepository(ctrl)
	mockRepo.EXPECT().Sequences().Return(mockSequences).AnyTimes()

	mockSequences.EXPECT().GetDueLogs(gomock.Any(), gomock.Any(), 20).Return(nil, nil)

	svc := service.NewSequenceService(sequenceTestConfig(), mockRepo, okEmailSender(), okSMSSender(), zap.NewNop())

	assert.NoError(t, svc.DispatchDue(context.Background()))
}

func TestSequenceService_StartStop(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockRepository(ctrl)
	mockSequences := mocks.NewMockSequenceRepository(ctrl)
	mockRepo.EXPECT().Sequences().Return(mockSequences).AnyTimes()
	mockSequences.EXPECT().GetDueLogs(gomock.Any(), gomock.Any(), 20).Return(nil, nil).AnyTimes()

	svc := service.NewSequenceService(sequenceTestConfig(), mockRepo, okEmailSender(), okSMSSender(), zap.NewNop())

	assert.False(t, svc.IsRunning())
	require.NoError(t, svc.Start())
	assert.True(t, svc.IsRunning())
	assert.Error(t, svc.Start())
	require.NoError(t, svc.Stop())
	assert.False(t, svc.IsRunning())
	assert.Error(t, svc.Stop())
}
