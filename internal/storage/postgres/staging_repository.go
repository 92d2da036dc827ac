package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sgmusicchat/newsite/internal/domain"
)

type StagingRepository struct {
	pool *pgxpool.Pool
}

func NewStagingRepository(pool *pgxpool.Pool) *StagingRepository {
	return &StagingRepository{pool: pool}
}

func (r *StagingRepository) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return withTx(ctx, r.pool, fn)
}

// UpsertEvent is the single atomic insert-or-update primitive for silver.
// The status column is deliberately absent from the update set: quarantine
// is auditor-owned and a replayed ingestion must not clear it.
func (r *StagingRepository) UpsertEvent(ctx context.Context, ev domain.StagedEvent) (bool, error) {
	const stmt = `
INSERT INTO silver_events (
	uid, venue_id, event_name, event_date, start_time, end_time,
	price_min, price_max, is_free, description, age_restriction,
	ticket_url, event_url, image_url, status, source, bronze_id,
	content_hash, created_at, updated_at
)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
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
	source = EXCLUDED.source,
	bronze_id = EXCLUDED.bronze_id,
	content_hash = EXCLUDED.content_hash,
	updated_at = EXCLUDED.updated_at
RETURNING (xmax = 0)`

	// xmax = 0 only on freshly inserted rows, which is how the caller
	// learns whether this fingerprint was new.
	var inserted bool
	err := r.queryRow(ctx, stmt,
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
		ev.Status,
		ev.Source,
		ev.BronzeID,
		ev.ContentHash,
		ev.CreatedAt,
		ev.UpdatedAt,
	).Scan(&inserted)
	if err != nil {
		return false, fmt.Errorf("upsert staged event: %w", err)
	}
	return inserted, nil
}

// ReplaceGenres swaps the full genre list for a fingerprint. Delete-then-
// insert keeps a removed upstream genre from surviving a replay.
func (r *StagingRepository) ReplaceGenres(ctx context.Context, uid string, genreIDs []int64) error {
	if _, err := r.exec(ctx, `DELETE FROM silver_event_genres WHERE uid = $1`, uid); err != nil {
		return fmt.Errorf("clear genres: %w", err)
	}
	for i, genreID := range genreIDs {
		const stmt = `
INSERT INTO silver_event_genres (uid, genre_id, position, is_primary)
VALUES ($1, $2, $3, $4)`
		if _, err := r.exec(ctx, stmt, uid, genreID, i+1, i == 0); err != nil {
			return fmt.Errorf("insert genre %d: %w", genreID, err)
		}
	}
	return nil
}

// ReplaceArtists swaps the full lineup for a fingerprint.
func (r *StagingRepository) ReplaceArtists(ctx context.Context, uid string, artistIDs []int64) error {
	if _, err := r.exec(ctx, `DELETE FROM silver_event_artists WHERE uid = $1`, uid); err != nil {
		return fmt.Errorf("clear artists: %w", err)
	}
	for i, artistID := range artistIDs {
		const stmt = `
INSERT INTO silver_event_artists (uid, artist_id, performance_order, is_headliner)
VALUES ($1, $2, $3, $4)`
		if _, err := r.exec(ctx, stmt, uid, artistID, i+1, i == 0); err != nil {
			return fmt.Errorf("insert artist %d: %w", artistID, err)
		}
	}
	return nil
}

func (r *StagingRepository) GetEvent(ctx context.Context, uid string) (domain.StagedEvent, error) {
	query := `SELECT ` + stagedEventColumns + ` FROM silver_events WHERE uid = $1`
	ev, err := scanStagedEvent(r.queryRow(ctx, query, uid))
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.StagedEvent{}, domain.ErrEventNotFound
		}
		return domain.StagedEvent{}, fmt.Errorf("get staged event: %w", err)
	}
	return ev, nil
}

func (r *StagingRepository) ListForAudit(ctx context.Context) ([]domain.StagedEvent, error) {
	query := `SELECT ` + stagedEventColumns + ` FROM silver_events ORDER BY uid`
	rows, err := r.query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list for audit: %w", err)
	}
	defer rows.Close()

	var events []domain.StagedEvent
	for rows.Next() {
		ev, err := scanStagedEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan staged event: %w", err)
		}
		events = append(events, ev)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate staged events: %w", rows.Err())
	}
	return events, nil
}

func (r *StagingRepository) MarkQuarantined(ctx context.Context, uid string, kinds []domain.ViolationKind, at time.Time) error {
	reasons := make([]string, 0, len(kinds))
	for _, k := range kinds {
		reasons = append(reasons, string(k))
	}

	const stmt = `
UPDATE silver_events
SET status = 'quarantined', quarantine_reason = $2, audited_at = $3
WHERE uid = $1`
	if _, err := r.exec(ctx, stmt, uid, reasons, at); err != nil {
		return fmt.Errorf("quarantine event %s: %w", uid, err)
	}
	return nil
}

func (r *StagingRepository) MarkClean(ctx context.Context, uid string, at time.Time) error {
	const stmt = `
UPDATE silver_events
SET status = 'clean', quarantine_reason = NULL, audited_at = $2
WHERE uid = $1`
	if _, err := r.exec(ctx, stmt, uid, at); err != nil {
		return fmt.Errorf("restore event %s: %w", uid, err)
	}
	return nil
}

func (r *StagingRepository) ListGenres(ctx context.Context, uid string) ([]domain.EventGenre, error) {
	const query = `
SELECT uid, genre_id, position, is_primary
FROM silver_event_genres
WHERE uid = $1
ORDER BY position`
	rows, err := r.query(ctx, query, uid)
	if err != nil {
		return nil, fmt.Errorf("list genres: %w", err)
	}
	defer rows.Close()

	var genres []domain.EventGenre
	for rows.Next() {
		var g domain.EventGenre
		if err := rows.Scan(&g.UID, &g.GenreID, &g.Position, &g.IsPrimary); err != nil {
			return nil, fmt.Errorf("scan genre: %w", err)
		}
		genres = append(genres, g)
	}
	return genres, rows.Err()
}

func (r *StagingRepository) ListArtists(ctx context.Context, uid string) ([]domain.EventArtist, error) {
	const query = `
SELECT uid, artist_id, performance_order, is_headliner
FROM silver_event_artists
WHERE uid = $1
ORDER BY performance_order`
	rows, err := r.query(ctx, query, uid)
	if err != nil {
		return nil, fmt.Errorf("list artists: %w", err)
	}
	defer rows.Close()

	var artists []domain.EventArtist
	for rows.Next() {
		var a domain.EventArtist
		if err := rows.Scan(&a.UID, &a.ArtistID, &a.Order, &a.IsHeadliner); err != nil {
			return nil, fmt.Errorf("scan artist: %w", err)
		}
		artists = append(artists, a)
	}
	return artists, rows.Err()
}

const stagedEventColumns = `
	uid, venue_id, event_name, event_date, start_time, end_time,
	price_min, price_max, is_free, description, age_restriction,
	ticket_url, event_url, image_url, status, source, bronze_id,
	content_hash, created_at, updated_at`

func prefixedStagedEventColumns(alias string) string {
	cols := []string{
		"uid", "venue_id", "event_name", "event_date", "start_time", "end_time",
		"price_min", "price_max", "is_free", "description", "age_restriction",
		"ticket_url", "event_url", "image_url", "status", "source", "bronze_id",
		"content_hash", "created_at", "updated_at",
	}
	for i, c := range cols {
		cols[i] = alias + "." + c
	}
	return strings.Join(cols, ", ")
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStagedEvent(row rowScanner) (domain.StagedEvent, error) {
	var ev domain.StagedEvent
	err := row.Scan(
		&ev.UID,
		&ev.VenueID,
		&ev.Name,
		&ev.EventDate,
		&ev.StartTime,
		&ev.EndTime,
		&ev.PriceMin,
		&ev.PriceMax,
		&ev.IsFree,
		&ev.Description,
		&ev.AgeRestriction,
		&ev.TicketURL,
		&ev.EventURL,
		&ev.ImageURL,
		&ev.Status,
		&ev.Source,
		&ev.BronzeID,
		&ev.ContentHash,
		&ev.CreatedAt,
		&ev.UpdatedAt,
	)
	return ev, err
}

func (r *StagingRepository) exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Exec(ctx, sql, args...)
	}
	return r.pool.Exec(ctx, sql, args...)
}

func (r *StagingRepository) queryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if tx := txFromContext(ctx); tx != nil {
		return tx.QueryRow(ctx, sql, args...)
	}
	return r.pool.QueryRow(ctx, sql, args...)
}

func (r *StagingRepository) query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if tx := txFromContext(ctx); tx != nil {
		return tx.Query(ctx, sql, args...)
	}
	return r.pool.Query(ctx, sql, args...)
}
