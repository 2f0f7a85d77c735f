package service

import (
	"context"
	"database/sql"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/insurang/lead-funnel/internal/middleware"
	"github.com/insurang/lead-funnel/internal/models"
	"github.com/insurang/lead-funnel/internal/notifier"
	"github.com/insurang/lead-funnel/internal/ratelimit"
	"github.com/insurang/lead-funnel/internal/repository"
	"github.com/insurang/lead-funnel/internal/validation"
)

type leadService struct {
	repo        repository.Repository
	limiter     *ratelimit.Limiter
	emailSender notifier.Sender
	smsSender   notifier.Sender
	redisClient *redis.Client
	logger      *zap.Logger
}

func NewLeadService(
	repo repository.Repository,
	limiter *ratelimit.Limiter,
	emailSender notifier.Sender,
	smsSender notifier.Sender,
	redisClient *redis.Client,
	logger *zap.Logger,
) LeadService {
	return &leadService{
		repo:        repo,
		limiter:     limiter,
		emailSender: emailSender,
		smsSender:   smsSender,
		redisClient: redisClient,
		logger:      logger,
	}
}

// Submit runs the intake flow: rate check, validate, resolve offer, persist,
// then notify both channels. Only the lead insert is fatal; every
// notification outcome is recorded as a message log and hidden from the
// caller.
func (s *leadService) Submit(ctx context.Context, input models.LeadInput, identifier string) (*SubmitResult, error) {
	if res := s.limiter.Check(ctx, identifier); !res.Allowed {
		return nil, ErrRateLimited
	}

	normalized, fieldErrs := validation.ValidateLead(input)
	if len(fieldErrs) > 0 {
		return nil, &ValidationError{Fields: fieldErrs}
	}

	offer := s.resolveOffer(ctx, normalized.OfferSlug)

	leadID, err := s.repo.Leads().Create(ctx, normalized)
	if err != nil {
		return nil, &PersistenceError{Err: err}
	}

	middleware.RecordLeadCaptured(normalized.OfferSlug)

	var g errgroup.Group
	g.Go(func() error {
		s.notify(ctx, leadID, s.emailSender, s.emailMessage(normalized, offer))
		return nil
	})
	g.Go(func() error {
		s.notify(ctx, leadID, s.smsSender, s.smsMessage(normalized, offer))
		return nil
	})
	_ = g.Wait()

	return &SubmitResult{LeadID: leadID}, nil
}

// GetOffer serves the public offer lookup. Inactive and unknown slugs are
// indistinguishable to the caller.
func (s *leadService) GetOffer(ctx context.Context, slug string) (*models.Offer, error) {
	return s.repo.Offers().GetBySlug(ctx, slug)
}

// resolveOffer substitutes an in-memory default when the slug is unknown:
// capturing the lead wins over blocking on missing configuration. The warn
// makes a misdeployed slug visible in the logs.
func (s *leadService) resolveOffer(ctx context.Context, slug string) *models.Offer {
	offer, err := s.repo.Offers().GetBySlug(ctx, slug)
	if err != nil {
		s.logger.Warn("Offer lookup failed, using default offer",
			zap.String("offer_slug", slug),
			zap.Error(err))
	} else if offer == nil {
		s.logger.Warn("Offer not found, using default offer",
			zap.String("offer_slug", slug))
	}
	if offer != nil {
		return offer
	}

	return &models.Offer{
		Slug:   slug,
		Name:   "INSURANG 자료",
		Status: models.OfferStatusActive,
	}
}

// notify is one channel's failure boundary: whatever happens inside, the
// outcome lands in a message log and never reaches the submitting client.
func (s *leadService) notify(ctx context.Context, leadID int64, sender notifier.Sender, msg notifier.Message) {
	channel := sender.Channel()

	var result notifier.Result
	func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("Notification sender panicked",
					zap.Int64("lead_id", leadID),
					zap.String("channel", string(channel)),
					zap.Any("panic", r),
					zap.String("stack", string(debug.Stack())))
				result = notifier.Result{Success: false, Err: fmt.Sprintf("sender panic: %v", r)}
			}
		}()
		result = sender.Send(ctx, msg)
	}()

	status := models.MessageStatusSuccess
	var providerID, errorMessage *string
	if result.Success {
		if result.ProviderID != "" {
			providerID = &result.ProviderID
		}
	} else {
		status = models.MessageStatusFailed
		errorMessage = &result.Err
		s.logger.Warn("Notification failed",
			zap.Int64("lead_id", leadID),
			zap.String("channel", string(channel)),
			zap.String("error", result.Err))
	}

	middleware.RecordNotification(string(channel), string(status))

	if _, err := s.repo.MessageLogs().Create(ctx, leadID, channel, status, providerID, errorMessage); err != nil {
		// The lead is already committed; a lost log row degrades the
		// channel status to pending, which the read layer tolerates.
		s.logger.Error("Failed to write message log",
			zap.Int64("lead_id", leadID),
			zap.String("channel", string(channel)),
			zap.Error(err))
	}

	if result.Success && result.ProviderID != "" {
		s.cacheProviderID(ctx, leadID, result.ProviderID)
	}
}

func (s *leadService) cacheProviderID(ctx context.Context, leadID int64, providerID string) {
	if s.redisClient == nil {
		return
	}

	cacheKey := fmt.Sprintf("notification:%s", providerID)
	cacheValue := fmt.Sprintf("%d:%s", leadID, time.Now().Format(time.RFC3339))

	if err := s.redisClient.Set(ctx, cacheKey, cacheValue, 24*time.Hour).Err(); err != nil {
		s.logger.Warn("Failed to cache provider message ID",
			zap.String("provider_id", providerID),
			zap.Error(err))
	}
}

func (s *leadService) emailMessage(input models.LeadInput, offer *models.Offer) notifier.Message {
	return notifier.Message{
		To:      input.Email,
		Name:    input.Name,
		Subject: fmt.Sprintf("%s 신청이 완료되었습니다", offer.Name),
		Body:    "요청하신 자료를 보내드립니다. 아래 링크에서 확인해 주세요.",
		Link:    nullableString(offer.DownloadLink),
	}
}

func (s *leadService) smsMessage(input models.LeadInput, offer *models.Offer) notifier.Message {
	return notifier.Message{
		To:   input.Phone,
		Name: input.Name,
		Body: fmt.Sprintf("[INSURANG] %s님, %s 신청이 완료되었습니다.", input.Name, offer.Name),
		Link: nullableString(offer.DownloadLink),
	}
}

func nullableString(v sql.NullString) string {
	if v.Valid {
		return v.String
	}
	return ""
}
