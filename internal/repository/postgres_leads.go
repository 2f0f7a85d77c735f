package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/insurang/lead-funnel/internal/models"
)

type pgOfferRepository struct {
	db *sqlx.DB
}

func (r *pgOfferRepository) GetBySlug(ctx context.Context, slug string) (*models.Offer, error) {
	query := `
		SELECT id, slug, name, description, status, download_link, created_at, updated_at
		FROM offers
		WHERE slug = $1 AND status = $2
	`

	var offer models.Offer
	err := r.db.GetContext(ctx, &offer, query, slug, models.OfferStatusActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get offer by slug: %w", err)
	}

	return &offer, nil
}

type pgLeadRepository struct {
	db *sqlx.DB
}

func (r *pgLeadRepository) Create(ctx context.Context, input models.LeadInput) (int64, error) {
	query := `
		INSERT INTO leads (offer_slug, name, email, phone, organization, consent_privacy, consent_marketing, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	org := sql.NullString{String: input.Organization, Valid: input.Organization != ""}

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		input.OfferSlug, input.Name, input.Email, input.Phone,
		org, input.ConsentPrivacy, input.ConsentMarketing, time.Now(),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create lead: %w", err)
	}

	return id, nil
}

// ListWithStatus annotates each lead with its latest per-channel status in a
// single statement. The correlated subqueries keep pagination bounded
// instead of issuing one log lookup per lead.
func (r *pgLeadRepository) ListWithStatus(ctx context.Context, limit, offset int) ([]*models.LeadListItem, error) {
	query := `
		SELECT l.id, l.offer_slug, l.name, l.email, l.phone, l.organization,
		       l.consent_privacy, l.consent_marketing, l.created_at,
		       COALESCE((
		           SELECT ml.status FROM message_logs ml
		           WHERE ml.lead_id = l.id AND ml.channel = 'email'
		           ORDER BY ml.sent_at DESC, ml.id DESC
		           LIMIT 1
		       ), 'pending') AS email_status,
		       COALESCE((
		           SELECT ml.status FROM message_logs ml
		           WHERE ml.lead_id = l.id AND ml.channel = 'sms'
		           ORDER BY ml.sent_at DESC, ml.id DESC
		           LIMIT 1
		       ), 'pending') AS sms_status
		FROM leads l
		ORDER BY l.created_at DESC
		LIMIT $1 OFFSET $2
	`

	var items []*models.LeadListItem
	if err := r.db.SelectContext(ctx, &items, query, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}

	return items, nil
}

func (r *pgLeadRepository) GetByID(ctx context.Context, id int64) (*models.LeadDetail, error) {
	leadQuery := `
		SELECT id, offer_slug, name, email, phone, organization, consent_privacy, consent_marketing, created_at
		FROM leads
		WHERE id = $1
	`

	var detail models.LeadDetail
	err := r.db.GetContext(ctx, &detail.Lead, leadQuery, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}

	logsQuery := `
		SELECT id, lead_id, channel, status, provider_id, error_message, sent_at
		FROM message_logs
		WHERE lead_id = $1
		ORDER BY sent_at DESC, id DESC
	`

	if err := r.db.SelectContext(ctx, &detail.Logs, logsQuery, id); err != nil {
		return nil, fmt.Errorf("failed to get message logs: %w", err)
	}

	return &detail, nil
}

type pgMessageLogRepository struct {
	db *sqlx.DB
}

func (r *pgMessageLogRepository) Create(ctx context.Context, leadID int64, channel models.Channel, status models.MessageStatus, providerID, errorMessage *string) (int64, error) {
	query := `
		INSERT INTO message_logs (lead_id, channel, status, provider_id, error_message, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	var pid sql.NullString
	if providerID != nil {
		pid = sql.NullString{String: *providerID, Valid: true}
	}

	var errMsg sql.NullString
	if errorMessage != nil {
		errMsg = sql.NullString{String: *errorMessage, Valid: true}
	}

	var id int64
	err := r.db.QueryRowContext(ctx, query, leadID, channel, status, pid, errMsg, time.Now()).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create message log: %w", err)
	}

	return id, nil
}
