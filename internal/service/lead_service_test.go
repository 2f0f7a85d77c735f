package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/insurang/lead-funnel/internal/models"
	"github.com/insurang/lead-funnel/internal/notifier"
	"github.com/insurang/lead-funnel/internal/ratelimit"
	"github.com/insurang/lead-funnel/internal/repository/mocks"
	"github.com/insurang/lead-funnel/internal/service"
)

// fakeSender returns a canned result and records the messages it was asked
// to deliver.
type fakeSender struct {
	channel models.Channel
	result  notifier.Result
	panics  bool

	mu       sync.Mutex
	messages []notifier.Message
}

func (f *fakeSender) Channel() models.Channel { return f.channel }

func (f *fakeSender) Send(_ context.Context, msg notifier.Message) notifier.Result {
	f.mu.Lock()
	f.messages = append(f.messages, msg)
	f.mu.Unlock()

	if f.panics {
		panic("provider client exploded")
	}
	return f.result
}

func (f *fakeSender) sent() []notifier.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]notifier.Message(nil), f.messages...)
}

func okEmailSender() *fakeSender {
	return &fakeSender{channel: models.ChannelEmail, result: notifier.Result{Success: true, ProviderID: "em-1"}}
}

func okSMSSender() *fakeSender {
	return &fakeSender{channel: models.ChannelSMS, result: notifier.Result{Success: true, ProviderID: "sms-1"}}
}

func validLeadInput() models.LeadInput {
	return models.LeadInput{
		OfferSlug:      "insurance-guide",
		Name:           "김보험",
		Email:          "kim@example.com",
		Phone:          "010-1234-5678",
		ConsentPrivacy: true,
	}
}

type leadServiceMocks struct {
	repo       *mocks.MockRepository
	offers     *mocks.MockOfferRepository
	leads      *mocks.MockLeadRepository
	msgLogs    *mocks.MockMessageLogRepository
	rateLimits *mocks.MockRateLimitRepository
}

func newLeadServiceMocks(ctrl *gomock.Controller) *leadServiceMocks {
	m := &leadServiceMocks{
		repo:       mocks.NewMockRepository(ctrl),
		offers:     mocks.NewMockOfferRepository(ctrl),
		leads:      mocks.NewMockLeadRepository(ctrl),
		msgLogs:    mocks.NewMockMessageLogRepository(ctrl),
		rateLimits: mocks.NewMockRateLimitRepository(ctrl),
	}
	m.repo.EXPECT().Offers().Return(m.offers).AnyTimes()
	m.repo.EXPECT().Leads().Return(m.leads).AnyTimes()
	m.repo.EXPECT().MessageLogs().Return(m.msgLogs).AnyTimes()
	return m
}

func (m *leadServiceMocks) allowRateLimit() {
	m.rateLimits.EXPECT().CountSince(gomock.Any(), gomock.Any(), gomock.Any()).Return(0, nil)
	m.rateLimits.EXPECT().Record(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
}

func (m *leadServiceMocks) limiter() *ratelimit.Limiter {
	return ratelimit.NewLimiter(m.rateLimits, 5, time.Minute, ratelimit.FailOpen, zap.NewNop())
}

func activeOffer() *models.Offer {
	return &models.Offer{
		ID:     1,
		Slug:   "insurance-guide",
		Name:   "보험 가이드",
		Status: models.OfferStatusActive,
	}
}

func TestLeadService_Submit_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newLeadServiceMocks(ctrl)
	m.allowRateLimit()

	m.offers.EXPECT().GetBySlug(gomock.Any(), "insurance-guide").Return(activeOffer(), nil)
	m.leads.EXPECT().Create(gomock.Any(), gomock.Any()).Return(int64(42), nil)
	m.msgLogs.EXPECT().
		Create(gomock.Any(), int64(42), models.ChannelEmail, models.MessageStatusSuccess, gomock.Any(), gomock.Nil()).
		Return(int64(1), nil)
	m.msgLogs.EXPECT().
		Create(gomock.Any(), int64(42), models.ChannelSMS, models.MessageStatusSuccess, gomock.Any(), gomock.Nil()).
		Return(int64(2), nil)

	email := okEmailSender()
	sms := okSMSSender()
	svc := service.NewLeadService(m.repo, m.limiter(), email, sms, nil, zap.NewNop())

	result, err := svc.Submit(context.Background(), validLeadInput(), "1.2.3.4")

	require.NoError(t, err)
	assert.Equal(t, int64(42), result.LeadID)
	require.Len(t, email.sent(), 1)
	assert.Equal(t, "kim@example.com", email.sent()[0].To)
	require.Len(t, sms.sent(), 1)
	assert.Equal(t, "01012345678", sms.sent()[0].To)
}

func TestLeadService_Submit_RateLimited(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newLeadServiceMocks(ctrl)
	m.rateLimits.EXPECT().CountSince(gomock.Any(), "1.2.3.4", gomock.Any()).Return(5, nil)

	svc := service.NewLeadService(m.repo, m.limiter(), okEmailSender(), okSMSSender(), nil, zap.NewNop())

	result, err := svc.Submit(context.Background(), validLeadInput(), "1.2.3.4")

	assert.Nil(t, result)
	assert.ErrorIs(t, err, service.ErrRateLimited)
}

func TestLeadService_Submit_ValidationErrorSkipsPersistence(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newLeadServiceMocks(ctrl)
	m.allowRateLimit()

	input := validLeadInput()
	input.Email = "not-an-email"
	input.ConsentPrivacy = false

	svc := service.NewLeadService(m.repo, m.limiter(), okEmailSender(), okSMSSender(), nil, zap.NewNop())

	result, err := svc.Submit(context.Background(), input, "1.2.3.4")

	assert.Nil(t, result)
	var validationErr *service.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields, "email")
	assert.Contains(t, validationErr.Fields, "consent_privacy")
}

func TestLeadService_Submit_PersistenceError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newLeadServiceMocks(ctrl)
	m.allowRateLimit()

	m.offers.EXPECT().GetBySlug(gomock.Any(), "insurance-guide").Return(activeOffer(), nil)
	m.leads.EXPECT().Create(gomock.Any(), gomock.Any()).Return(int64(0), errors.New("constraint violation"))

	email := okEmailSender()
	sms := okSMSSender()
	svc := service.NewLeadService(m.repo, m.limiter(), email, sms, nil, zap.NewNop())

	result, err := svc.Submit(context.Background(), validLeadInput(), "1.2.3.4")

	assert.Nil(t, result)
	var persistenceErr *service.PersistenceError
	require.ErrorAs(t, err, &persistenceErr)
	assert.Empty(t, email.sent())
	assert.Empty(t, sms.sent())
}

func TestLeadService_Submit_ChannelFailureDoesNotFailSubmission(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newLeadServiceMocks(ctrl)
	m.allowRateLimit()

	m.offers.EXPECT().GetBySlug(gomock.Any(), "insurance-guide").Return(activeOffer(), nil)
	m.leads.EXPECT().Create(gomock.Any(), gomock.Any()).Return(int64(7), nil)
	m.msgLogs.EXPECT().
		Create(gomock.Any(), int64(7), models.ChannelEmail, models.MessageStatusFailed, gomock.Nil(), gomock.Not(gomock.Nil())).
		Return(int64(1), nil)
	m.msgLogs.EXPECT().
		Create(gomock.Any(), int64(7), models.ChannelSMS, models.MessageStatusSuccess, gomock.Any(), gomock.Nil()).
		Return(int64(2), nil)

	email := &fakeSender{
		channel: models.ChannelEmail,
		result:  notifier.Result{Success: false, Err: "provider returned status 500"},
	}
	sms := okSMSSender()
	svc := service.NewLeadService(m.repo, m.limiter(), email, sms, nil, zap.NewNop())

	result, err := svc.Submit(context.Background(), validLeadInput(), "1.2.3.4")

	require.NoError(t, err)
	assert.Equal(t, int64(7), result.LeadID)
	assert.Len(t, sms.sent(), 1)
}

func TestLeadService_Submit_SenderPanicIsContained(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newLeadServiceMocks(ctrl)
	m.allowRateLimit()

	m.offers.EXPECT().GetBySlug(gomock.Any(), "insurance-guide").Return(activeOffer(), nil)
	m.leads.EXPECT().Create(gomock.Any(), gomock.Any()).Return(int64(9), nil)
	m.msgLogs.EXPECT().
		Create(gomock.Any(), int64(9), models.ChannelEmail, models.MessageStatusFailed, gomock.Nil(), gomock.Not(gomock.Nil())).
		Return(int64(1), nil)
	m.msgLogs.EXPECT().
		Create(gomock.Any(), int64(9), models.ChannelSMS, models.MessageStatusSuccess, gomock.Any(), gomock.Nil()).
		Return(int64(2), nil)

	email := &fakeSender{channel: models.ChannelEmail, panics: true}
	svc := service.NewLeadService(m.repo, m.limiter(), email, okSMSSender(), nil, zap.NewNop())

	result, err := svc.Submit(context.Background(), validLeadInput(), "1.2.3.4")

	require.NoError(t, err)
	assert.Equal(t, int64(9), result.LeadID)
}

func TestLeadService_Submit_UnknownOfferUsesDefault(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newLeadServiceMocks(ctrl)
	m.allowRateLimit()

	m.offers.EXPECT().GetBySlug(gomock.Any(), "unknown-offer").Return(nil, nil)
	m.leads.EXPECT().Create(gomock.Any(), gomock.Any()).Return(int64(3), nil)
	m.msgLogs.EXPECT().
		Create(gomock.Any(), int64(3), gomock.Any(), models.MessageStatusSuccess, gomock.Any(), gomock.Nil()).
		Return(int64(1), nil).
		Times(2)

	email := okEmailSender()
	svc := service.NewLeadService(m.repo, m.limiter(), email, okSMSSender(), nil, zap.NewNop())

	input := validLeadInput()
	input.OfferSlug = "unknown-offer"

	result, err := svc.Submit(context.Background(), input, "1.2.3.4")

	require.NoError(t, err)
	assert.Equal(t, int64(3), result.LeadID)
	require.Len(t, email.sent(), 1)
	assert.Contains(t, email.sent()[0].Subject, "INSURANG 자료")
}

func TestLeadService_GetOffer(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	m := newLeadServiceMocks(ctrl)
	m.offers.EXPECT().GetBySlug(gomock.Any(), "insurance-guide").Return(activeOffer(), nil)

	svc := service.NewLeadService(m.repo, m.limiter(), okEmailSender(), okSMSSender(), nil, zap.NewNop())

	offer, err := svc.GetOffer(context.Background(), "insurance-guide")

	require.NoError(t, err)
	assert.Equal(t, "보험 가이드", offer.Name)
}
