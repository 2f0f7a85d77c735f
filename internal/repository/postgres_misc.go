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

type pgErrorLogRepository struct {
	db *sqlx.DB
}

func (r *pgErrorLogRepository) Create(ctx context.Context, level models.ErrorLevel, message string, logContext, stack *string) error {
	query := `
		INSERT INTO error_logs (level, message, context, stack, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	var ctxVal, stackVal sql.NullString
	if logContext != nil {
		ctxVal = sql.NullString{String: *logContext, Valid: true}
	}
	if stack != nil {
		stackVal = sql.NullString{String: *stack, Valid: true}
	}

	if _, err := r.db.ExecContext(ctx, query, level, message, ctxVal, stackVal, time.Now()); err != nil {
		return fmt.Errorf("failed to create error log: %w", err)
	}

	return nil
}

type pgSettingsRepository struct {
	db *sqlx.DB
}

func (r *pgSettingsRepository) Get(ctx context.Context, key string) (string, bool, error) {
	query := `SELECT value FROM settings WHERE key = $1`

	var value string
	err := r.db.GetContext(ctx, &value, query, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get setting: %w", err)
	}

	return value, true, nil
}

func (r *pgSettingsRepository) Upsert(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO settings (key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`

	if _, err := r.db.ExecContext(ctx, query, key, value, time.Now()); err != nil {
		return fmt.Errorf("failed to upsert setting: %w", err)
	}

	return nil
}

func (r *pgSettingsRepository) All(ctx context.Context) ([]*models.Setting, error) {
	query := `SELECT key, value, updated_at FROM settings ORDER BY key`

	var settings []*models.Setting
	if err := r.db.SelectContext(ctx, &settings, query); err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}

	return settings, nil
}

type pgRateLimitRepository struct {
	db *sqlx.DB
}

func (r *pgRateLimitRepository) CountSince(ctx context.Context, identifier string, since time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM rate_limit_logs WHERE identifier = $1 AND created_at > $2`

	var count int
	if err := r.db.GetContext(ctx, &count, query, identifier, since); err != nil {
		return 0, fmt.Errorf("failed to count rate limit logs: %w", err)
	}

	return count, nil
}

func (r *pgRateLimitRepository) Record(ctx context.Context, identifier string, at time.Time) error {
	query := `INSERT INTO rate_limit_logs (identifier, created_at) VALUES ($1, $2)`

	if _, err := r.db.ExecContext(ctx, query, identifier, at); err != nil {
		return fmt.Errorf("failed to record rate limit log: %w", err)
	}

	return nil
}
