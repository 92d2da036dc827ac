package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sgmusicchat/newsite/internal/domain"
)

// IntakeRepository persists the bronze tier. All three intake kinds are
// insert-only; nothing here updates or deletes.
type IntakeRepository struct {
	pool *pgxpool.Pool
}

func NewIntakeRepository(pool *pgxpool.Pool) *IntakeRepository {
	return &IntakeRepository{pool: pool}
}

func (r *IntakeRepository) AppendBatch(ctx context.Context, batch domain.RawBatch) (int64, error) {
	const stmt = `
INSERT INTO bronze_scraper_raw (scraper_source, scraped_at, raw_payload, scraper_version)
VALUES ($1, $2, $3, $4)
RETURNING id`

	var id int64
	err := r.pool.QueryRow(ctx, stmt, batch.Source, batch.ReceivedAt, batch.Payload, batch.Version).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("append bronze batch: %w", err)
	}
	return id, nil
}

func (r *IntakeRepository) GetBatch(ctx context.Context, id int64) (domain.RawBatch, error) {
	const query = `
SELECT id, scraper_source, scraped_at, raw_payload, scraper_version
FROM bronze_scraper_raw
WHERE id = $1`

	var batch domain.RawBatch
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&batch.ID,
		&batch.Source,
		&batch.ReceivedAt,
		&batch.Payload,
		&batch.Version,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.RawBatch{}, domain.ErrBatchNotFound
		}
		return domain.RawBatch{}, fmt.Errorf("get bronze batch: %w", err)
	}
	return batch, nil
}

func (r *IntakeRepository) AppendUserSubmission(ctx context.Context, receivedAt time.Time, ip string, form json.RawMessage, userAgent string) (int64, error) {
	const stmt = `
INSERT INTO bronze_user_submissions (submitted_at, submission_ip, raw_form_data, user_agent)
VALUES ($1, $2, $3, $4)
RETURNING id`

	var id int64
	err := r.pool.QueryRow(ctx, stmt, receivedAt, ip, form, userAgent).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("append user submission: %w", err)
	}
	return id, nil
}

func (r *IntakeRepository) AppendAdminEdit(ctx context.Context, editedAt time.Time, admin, editType string, edit json.RawMessage) (int64, error) {
	const stmt = `
INSERT INTO bronze_admin_edits (edited_at, admin_username, edit_type, raw_edit_data)
VALUES ($1, $2, $3, $4)
RETURNING id`

	var id int64
	err := r.pool.QueryRow(ctx, stmt, editedAt, admin, editType, edit).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("append admin edit: %w", err)
	}
	return id, nil
}
