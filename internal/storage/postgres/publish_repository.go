package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sgmusicchat/newsite/internal/domain"
)

type PublishRepository struct {
	pool *pgxpool.Pool
}

func NewPublishRepository(pool *pgxpool.Pool) *PublishRepository {
	return &PublishRepository{pool: pool}
}

// ListPublishable selects clean staged events that either have never been
// published or whose content hash no longer matches the gold copy. Ordering
// by fingerprint keeps batched runs deterministic and resumable.
func (r *PublishRepository) ListPublishable(ctx context.Context, limit int) ([]domain.StagedEvent, error) {
	query := `
SELECT ` + prefixedStagedEventColumns("s") + `
FROM silver_events s
LEFT JOIN gold_events g ON g.uid = s.uid
WHERE s.status = 'clean'
  AND (g.uid IS NULL OR g.content_hash <> s.content_hash)
ORDER BY s.uid
LIMIT $1`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list publishable: %w", err)
	}
	defer rows.Close()

	var events []domain.StagedEvent
	for rows.Next() {
		ev, err := scanStagedEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan publishable event: %w", err)
		}
		events = append(events, ev)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate publishable events: %w", rows.Err())
	}
	return events, nil
}

// PublishEvent copies a staged event into gold. first_published_at survives
// republishes; published_at and the content hash track the latest copy.
func (r *PublishRepository) PublishEvent(ctx context.Context, ev domain.StagedEvent, at time.Time) error {
	const stmt = `
INSERT INTO gold_events (
	uid, venue_id, event_name, event_date, start_time, end_time,
	price_min, price_max, is_free, description, age_restriction,
	ticket_url, event_url, image_url, content_hash,
	first_published_at, published_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $16)
ON CONFLICT (uid) DO UPDATE SET
	venue_id = EXCLUDED.venue_id,
	event_name = EXCLUDED.event_name,
	event_date = EXCLUDED.event_date,
	start_time = EXCLUDED.start_time,
	end_time = EXCLUDED.end_time,
	price_min = EXCLUDED.price_min,
	price_max = EXCLUDED.price_max,
	is_free = EXCLUDED.is_free,
	description = EXCLUDED.description,
	age_restriction = EXCLUDED.age_restriction,
	ticket_url = EXCLUDED.ticket_url,
	event_url = EXCLUDED.event_url,
	image_url = EXCLUDED.image_url,
	content_hash = EXCLUDED.content_hash,
	published_at = EXCLUDED.published_at`

	_, err := r.pool.Exec(ctx, stmt,
		ev.UID,
		ev.VenueID,
		ev.Name,
		ev.EventDate,
		ev.StartTime,
		ev.EndTime,
		ev.PriceMin,
		ev.PriceMax,
		ev.IsFree,
		ev.Description,
		ev.AgeRestriction,
		ev.TicketURL,
		ev.EventURL,
		ev.ImageURL,
		ev.ContentHash,
		at,
	)
	if err != nil {
		return fmt.Errorf("publish event %s: %w", ev.UID, err)
	}
	return nil
}

func (r *PublishRepository) GetPublished(ctx context.Context, uid string) (domain.PublishedRecord, error) {
	const query = `
SELECT uid, venue_id, event_name, event_date, start_time, end_time,
	price_min, price_max, is_free, description, age_restriction,
	ticket_url, event_url, image_url, content_hash,
	first_published_at, published_at
FROM gold_events
WHERE uid = $1`

	var rec domain.PublishedRecord
	err := r.pool.QueryRow(ctx, query, uid).Scan(
		&rec.UID,
		&rec.VenueID,
		&rec.Name,
		&rec.EventDate,
		&rec.StartTime,
		&rec.EndTime,
		&rec.PriceMin,
		&rec.PriceMax,
		&rec.IsFree,
		&rec.Description,
		&rec.AgeRestriction,
		&rec.TicketURL,
		&rec.EventURL,
		&rec.ImageURL,
		&rec.ContentHash,
		&rec.FirstPublishedAt,
		&rec.PublishedAt,
	)
	if err != nil {
		return domain.PublishedRecord{}, fmt.Errorf("get published event: %w", err)
	}
	return rec, nil
}

// Counts reports row totals per pipeline tier in a single scan of silver
// plus a gold count.
func (r *PublishRepository) Counts(ctx context.Context) (domain.TierCounts, error) {
	const query = `
SELECT
	(SELECT count(*) FROM silver_events),
	(SELECT count(*) FROM silver_events WHERE status = 'clean'),
	(SELECT count(*) FROM silver_events WHERE status = 'quarantined'),
	(SELECT count(*) FROM gold_events)`

	var counts domain.TierCounts
	err := r.pool.QueryRow(ctx, query).Scan(
		&counts.Staged,
		&counts.Clean,
		&counts.Quarantined,
		&counts.Published,
	)
	if err != nil {
		return domain.TierCounts{}, fmt.Errorf("tier counts: %w", err)
	}
	return counts, nil
}
