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

type sqliteErrorLogRepository struct {
	db *sqlx.DB
}

func (r *sqliteErrorLogRepository) Create(ctx context.Context, level models.ErrorLevel, message string, logContext, stack *string) error {
	query := `
		INSERT INTO error_logs (level, message, context, stack, created_at)
		VALUES (?, ?, ?, ?, ?)
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

type sqliteSettingsRepository struct {
	db *sqlx.DB
}

func (r *sqliteSettingsRepository) Get(ctx context.Context, key string) (string, bool, error) {
	query := `SELECT value FROM settings WHERE key = ?`

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

func (r *sqliteSettingsRepository) Upsert(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO settings (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`

	if _, err := r.db.ExecContext(ctx, query, key, value, time.Now()); err != nil {
		return fmt.Errorf("failed to upsert setting: %w", err)
	}

	return nil
}

func (r *sqliteSettingsRepository) All(ctx context.Context) ([]*models.Setting, error) {
	query := `SELECT key, value, updated_at FROM settings ORDER BY key`

	var settings []*models.Setting
	if err := r.db.SelectContext(ctx, &settings, query); err != nil {
		return nil, fmt.Errorf("failed to list settings: %w", err)
	}

	return settings, nil
}

type sqliteRateLimitRepository struct {
	db *sqlx.DB
}

func (r *sqliteRateLimitRepository) CountSince(ctx context.Context, identifier string, since time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM rate_limit_logs WHERE identifier = ? AND created_at > ?`

	var count int
	if err := r.db.GetContext(ctx, &count, query, identifier, since); err != nil {
		return 0, fmt.Errorf("failed to count rate limit logs: %w", err)
	}

	return count, nil
}

func (r *sqliteRateLimitRepository) Record(ctx context.Context, identifier string, at time.Time) error {
	query := `INSERT INTO rate_limit_logs (identifier, created_at) VALUES (?, ?)`

	if _, err := r.db.ExecContext(ctx, query, identifier, at); err != nil {
		return fmt.Errorf("failed to record rate limit log: %w", err)
	}

	return nil
}
