package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/insurang/lead-funnel/internal/models"
)

type sqliteSequenceRepository struct {
	db *sqlx.DB
}

func (r *sqliteSequenceRepository) GetByID(ctx context.Context, id int64) (*models.Sequence, error) {
	query := `
		SELECT id, name, channel, subject, body, delay_hours, active, created_at
		FROM sequences
		WHERE id = ?
	`

	var seq models.Sequence
	err := r.db.GetContext(ctx, &seq, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sequence: %w", err)
	}

	return &seq, nil
}

func (r *sqliteSequenceRepository) ListLogs(ctx context.Context, filter models.SequenceLogFilter) ([]*models.SequenceLog, int64, error) {
	var conditions []string
	var args []interface{}

	if filter.SequenceID != nil {
		conditions = append(conditions, "sequence_id = ?")
		args = append(args, *filter.SequenceID)
	}
	if filter.LeadID != nil {
		conditions = append(conditions, "lead_id = ?")
		args = append(args, *filter.LeadID)
	}
	if filter.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, *filter.Status)
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := "SELECT COUNT(*) FROM sequence_logs" + where

	var total int64
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count sequence logs: %w", err)
	}

	listQuery := `
		SELECT id, sequence_id, lead_id, scheduled_at, sent_at, status, error_message
		FROM sequence_logs` + where + `
		ORDER BY scheduled_at DESC
		LIMIT ? OFFSET ?
	`

	args = append(args, filter.Limit, filter.Offset)

	var logs []*models.SequenceLog
	if err := r.db.SelectContext(ctx, &logs, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list sequence logs: %w", err)
	}

	return logs, total, nil
}

func (r *sqliteSequenceRepository) ResetLog(ctx context.Context, id int64) error {
	query := `
		UPDATE sequence_logs
		SET status = ?, sent_at = NULL, error_message = NULL
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query, models.SequenceLogStatusPending, id)
	if err != nil {
		return fmt.Errorf("failed to reset sequence log: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

func (r *sqliteSequenceRepository) GetDueLogs(ctx context.Context, now time.Time, limit int) ([]*models.SequenceLog, error) {
	query := `
		SELECT id, sequence_id, lead_id, scheduled_at, sent_at, status, error_message
		FROM sequence_logs
		WHERE status = ? AND scheduled_at <= ?
		ORDER BY scheduled_at ASC
		LIMIT ?
	`

	var logs []*models.SequenceLog
	if err := r.db.SelectContext(ctx, &logs, query, models.SequenceLogStatusPending, now, limit); err != nil {
		return nil, fmt.Errorf("failed to get due sequence logs: %w", err)
	}

	return logs, nil
}

func (r *sqliteSequenceRepository) MarkLogSent(ctx context.Context, id int64, sentAt time.Time) error {
	query := `
		UPDATE sequence_logs
		SET status = ?, sent_at = ?, error_message = NULL
		WHERE id = ?
	`

	if _, err := r.db.ExecContext(ctx, query, models.SequenceLogStatusSent, sentAt, id); err != nil {
		return fmt.Errorf("failed to mark sequence log sent: %w", err)
	}

	return nil
}

func (r *sqliteSequenceRepository) MarkLogFailed(ctx context.Context, id int64, errorMessage string) error {
	query := `
		UPDATE sequence_logs
		SET status = ?, error_message = ?
		WHERE id = ?
	`

	if _, err := r.db.ExecContext(ctx, query, models.SequenceLogStatusFailed, errorMessage, id); err != nil {
		return fmt.Errorf("failed to mark sequence log failed: %w", err)
	}

	return nil
}
