package app

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sgmusicchat/newsite/internal/clock"
	"github.com/sgmusicchat/newsite/internal/domain"
	"github.com/sgmusicchat/newsite/internal/fingerprint"
)

type BatchReader interface {
	ReadBatch(ctx context.Context, id int64) (domain.RawBatch, error)
}

type StagingRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	// UpsertEvent inserts or updates the row for ev.UID atomically and
	// reports whether a new row was created. It must never modify the
	// quarantine status of an existing row.
	UpsertEvent(ctx context.Context, ev domain.StagedEvent) (bool, error)
	ReplaceGenres(ctx context.Context, uid string, genreIDs []int64) error
	ReplaceArtists(ctx context.Context, uid string, artistIDs []int64) error
}

// StagingService transforms bronze batches into silver rows keyed by
// fingerprint. Replayed batches update in place; they never duplicate.
type StagingService struct {
	batches BatchReader
	repo    StagingRepository
	clock   clock.Clock
	workers int
}

const defaultStagingWorkers = 4

func NewStagingService(batches BatchReader, repo StagingRepository, clk clock.Clock, opts ...StagingOption) *StagingService {
	svc := &StagingService{
		batches: batches,
		repo:    repo,
		clock:   clk,
		workers: defaultStagingWorkers,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type StagingOption func(*StagingService)

// WithStagingWorkers bounds the per-record worker pool.
func WithStagingWorkers(n int) StagingOption {
	return func(s *StagingService) {
		if n > 0 {
			s.workers = n
		}
	}
}

type PromoteResult struct {
	Processed int
	Created   int
	Malformed int
}

// PromoteBatch stages every record of a bronze batch. A malformed record is
// skipped and counted without aborting the rest; a missing batch id or a
// store failure aborts the whole run.
func (s *StagingService) PromoteBatch(ctx context.Context, batchID int64, sourceType string) (PromoteResult, error) {
	batch, err := s.batches.ReadBatch(ctx, batchID)
	if err != nil {
		return PromoteResult{}, err
	}

	var records []domain.RawEvent
	if err := json.Unmarshal(batch.Payload, &records); err != nil {
		return PromoteResult{}, fmt.Errorf("decode bronze payload %d: %w", batchID, err)
	}

	now := s.clock.Now()
	var processed, created, malformed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for _, rec := range records {
		rec := rec
		g.Go(func() error {
			ev, err := normalizeRecord(rec, sourceType, batchID, now)
			if err != nil {
				malformed.Add(1)
				return nil
			}

			// One transaction per record: the upsert and its association
			// replacement land together or not at all.
			err = s.repo.WithTx(gctx, func(txCtx context.Context) error {
				isNew, err := s.repo.UpsertEvent(txCtx, ev)
				if err != nil {
					return err
				}
				if isNew {
					created.Add(1)
				}
				if err := s.repo.ReplaceGenres(txCtx, ev.UID, rec.GenreIDs); err != nil {
					return err
				}
				return s.repo.ReplaceArtists(txCtx, ev.UID, rec.ArtistIDs)
			})
			if err != nil {
				return fmt.Errorf("stage event %s: %w", ev.UID, err)
			}
			processed.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return PromoteResult{}, err
	}

	return PromoteResult{
		Processed: int(processed.Load()),
		Created:   int(created.Load()),
		Malformed: int(malformed.Load()),
	}, nil
}

// normalizeRecord validates the identity fields and builds the staged row.
func normalizeRecord(rec domain.RawEvent, sourceType string, batchID int64, now time.Time) (domain.StagedEvent, error) {
	if rec.VenueID == nil {
		return domain.StagedEvent{}, domain.ErrMissingIdentity
	}
	if rec.EventDate == "" || rec.StartTime == "" {
		return domain.StagedEvent{}, domain.ErrMissingIdentity
	}
	eventDate, err := time.Parse("2006-01-02", rec.EventDate)
	if err != nil {
		return domain.StagedEvent{}, domain.ErrInvalidEventDate
	}
	if _, err := time.Parse("15:04:05", rec.StartTime); err != nil {
		return domain.StagedEvent{}, domain.ErrInvalidStartTime
	}
	if rec.EndTime != "" {
		if _, err := time.Parse("15:04:05", rec.EndTime); err != nil {
			return domain.StagedEvent{}, domain.ErrInvalidStartTime
		}
	}

	age := rec.AgeRestriction
	if age == "" {
		age = "all_ages"
	}

	ev := domain.StagedEvent{
		UID:            fingerprint.UID(*rec.VenueID, eventDate, rec.StartTime),
		VenueID:        *rec.VenueID,
		Name:           rec.EventName,
		EventDate:      eventDate,
		StartTime:      rec.StartTime,
		EndTime:        rec.EndTime,
		PriceMin:       rec.PriceMin,
		PriceMax:       rec.PriceMax,
		IsFree:         rec.IsFree,
		Description:    rec.Description,
		AgeRestriction: age,
		TicketURL:      rec.TicketURL,
		EventURL:       rec.EventURL,
		ImageURL:       rec.ImageURL,
		Status:         domain.EventStatusClean,
		Source:         sourceType,
		BronzeID:       batchID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	ev.ContentHash = fingerprint.Content(ev, rec.GenreIDs, rec.ArtistIDs)
	return ev, nil
}
