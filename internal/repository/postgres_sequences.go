package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/insurang/lead-funnel/internal/models"
)

type pgSequenceRepository struct {
	db *sqlx.DB
}

func (r *pgSequenceRepository) GetByID(ctx context.Context, id int64) (*models.Sequence, error) {
	query := `
		SELECT id, name, channel, subject, body, delay_hours, active, created_at
		FROM sequences
		WHERE id = $1
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

func (r *pgSequenceRepository) ListLogs(ctx context.Context, filter models.SequenceLogFilter) ([]*models.SequenceLog, int64, error) {
	var conditions []string
	var args []interface{}

	appendCondition := func(column string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, column+" = $"+strconv.Itoa(len(args)))
	}

	if filter.SequenceID != nil {
		appendCondition("sequence_id", *filter.SequenceID)
	}
	if filter.LeadID != nil {
		appendCondition("lead_id", *filter.LeadID)
	}
	if filter.Status != nil {
		appendCondition("status", *filter.Status)
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

	listQuery := fmt.Sprintf(`
		SELECT id, sequence_id, lead_id, scheduled_at, sent_at, status, error_message
		FROM sequence_logs%s
		ORDER BY scheduled_at DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)+1, len(args)+2)

	args = append(args, filter.Limit, filter.Offset)

	var logs []*models.SequenceLog
	if err := r.db.SelectContext(ctx, &logs, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list sequence logs: %w", err)
	}

	return logs, total, nil
}

func (r *pgSequenceRepository) ResetLog(ctx context.Context, id int64) error {
	query := `
		UPDATE sequence_logs
		SET status = $2, sent_at = NULL, error_message = NULL
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, models.SequenceLogStatusPending)
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

func (r *pgSequenceRepository) GetDueLogs(ctx context.Context, now time.Time, limit int) ([]*models.SequenceLog, error) {
	query := `
		SELECT id, sequence_id, lead_id, scheduled_at, sent_at, status, error_message
		FROM sequence_logs
		WHERE status = $1 AND scheduled_at <= $2
		ORDER BY scheduled_at ASC
		LIMIT $3
	`

	var logs []*models.SequenceLog
	if err := r.db.SelectContext(ctx, &logs, query, models.SequenceLogStatusPending, now, limit); err != nil {
		return nil, fmt.Errorf("failed to get due sequence logs: %w", err)
	}

	return logs, nil
}

func (r *pgSequenceRepository) MarkLogSent(ctx context.Context, id int64, sentAt time.Time) error {
	query := `
		UPDATE sequence_logs
		SET status = $2, sent_at = $3, error_message = NULL
		WHERE id = $1
	`

	if _, err := r.db.ExecContext(ctx, query, id, models.SequenceLogStatusSent, sentAt); err != nil {
		return fmt.Errorf("failed to mark sequence log sent: %w", err)
	}

	return nil
}

func (r *pgSequenceRepository) MarkLogFailed(ctx context.Context, id int64, errorMessage string) error {
	query := `
		UPDATE sequence_logs
		SET status = $2, error_message = $3
		WHERE id = $1
	`

	if _, err := r.db.ExecContext(ctx, query, id, models.SequenceLogStatusFailed, errorMessage); err != nil {
		return fmt.Errorf("failed to mark sequence log failed: %w", err)
	}

	return nil
}
