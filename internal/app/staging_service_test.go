package app

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sgmusicchat/newsite/internal/clock"
	"github.com/sgmusicchat/newsite/internal/domain"
)

type fakeBatchReader struct {
	batches map[int64]domain.RawBatch
}

func (f *fakeBatchReader) ReadBatch(_ context.Context, id int64) (domain.RawBatch, error) {
	b, ok := f.batches[id]
	if !ok {
		return domain.RawBatch{}, domain.ErrBatchNotFound
	}
	return b, nil
}

type fakeStagingRepo struct {
	mu      sync.Mutex
	events  map[string]domain.StagedEvent
	genres  map[string][]int64
	artists map[string][]int64
	failUID string
}

func newFakeStagingRepo() *fakeStagingRepo {
	return &fakeStagingRepo{
		events:  make(map[string]domain.StagedEvent),
		genres:  make(map[string][]int64),
		artists: make(map[string][]int64),
	}
}

func (f *fakeStagingRepo) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (f *fakeStagingRepo) UpsertEvent(_ context.Context, ev domain.StagedEvent) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ev.UID == f.failUID {
		return false, errors.New("store unavailable")
	}
	existing, ok := f.events[ev.UID]
	if ok {
		// status is owned by the auditor and survives re-upserts
		ev.Status = existing.Status
		ev.CreatedAt = existing.CreatedAt
	}
	f.events[ev.UID] = ev
	return !ok, nil
}

func (f *fakeStagingRepo) ReplaceGenres(_ context.Context, uid string, genreIDs []int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.genres[uid] = genreIDs
	return nil
}

func (f *fakeStagingRepo) ReplaceArtists(_ context.Context, uid string, artistIDs []int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.artists[uid] = artistIDs
	return nil
}

func venueID(n int64) *int64 { return &n }

func rawEvent(venue int64, date, start string) domain.RawEvent {
	return domain.RawEvent{
		VenueID:   venueID(venue),
		EventDate: date,
		EventName: "Test Night",
		StartTime: start,
		GenreIDs:  []int64{1, 2},
		ArtistIDs: []int64{7},
	}
}

func batchOf(t *testing.T, records ...domain.RawEvent) domain.RawBatch {
	t.Helper()
	payload, err := json.Marshal(records)
	if err != nil {
		t.Fatalf("marshal records: %v", err)
	}
	return domain.RawBatch{ID: 1, Source: "mock_scraper", Payload: payload}
}

func TestPromoteBatch_IdempotentReplay(t *testing.T) {
	reader := &fakeBatchReader{batches: map[int64]domain.RawBatch{
		1: batchOf(t, rawEvent(3, "2026-10-01", "20:00:00"), rawEvent(4, "2026-10-02", "21:00:00")),
	}}
	repo := newFakeStagingRepo()
	svc := NewStagingService(reader, repo, clock.NewFixed(time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)))

	first, err := svc.PromoteBatch(context.Background(), 1, "scraper")
	if err != nil {
		t.Fatalf("first promote: %v", err)
	}
	if first.Processed != 2 || first.Created != 2 {
		t.Fatalf("expected 2 processed 2 created, got %+v", first)
	}

	second, err := svc.PromoteBatch(context.Background(), 1, "scraper")
	if err != nil {
		t.Fatalf("second promote: %v", err)
	}
	if second.Processed != 2 || second.Created != 0 {
		t.Fatalf("expected replay to create nothing, got %+v", second)
	}
	if len(repo.events) != 2 {
		t.Fatalf("expected 2 staged rows, got %d", len(repo.events))
	}
}

func TestPromoteBatch_MalformedRecordsSkipped(t *testing.T) {
	bad := rawEvent(3, "2026-10-01", "20:00:00")
	bad.VenueID = nil
	badDate := rawEvent(4, "not-a-date", "20:00:00")
	badTime := rawEvent(5, "2026-10-01", "late")
	good := rawEvent(6, "2026-10-01", "20:00:00")

	reader := &fakeBatchReader{batches: map[int64]domain.RawBatch{
		1: batchOf(t, bad, badDate, badTime, good),
	}}
	repo := newFakeStagingRepo()
	svc := NewStagingService(reader, repo, clock.NewFixed(time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)))

	res, err := svc.PromoteBatch(context.Background(), 1, "scraper")
	if err != nil {
		t.Fatalf("promote: %v", err)
	}
	if res.Malformed != 3 {
		t.Fatalf("expected 3 malformed, got %d", res.Malformed)
	}
	if res.Processed != 1 || res.Created != 1 {
		t.Fatalf("expected 1 good record staged, got %+v", res)
	}
}

func TestPromoteBatch_MissingBatchFails(t *testing.T) {
	reader := &fakeBatchReader{batches: map[int64]domain.RawBatch{}}
	svc := NewStagingService(reader, newFakeStagingRepo(), clock.NewFixed(time.Now()))

	_, err := svc.PromoteBatch(context.Background(), 42, "scraper")
	if !errors.Is(err, domain.ErrBatchNotFound) {
		t.Fatalf("expected ErrBatchNotFound, got %v", err)
	}
}

func TestPromoteBatch_QuarantinePreservedOnReplay(t *testing.T) {
	rec := rawEvent(3, "2026-10-01", "20:00:00")
	reader := &fakeBatchReader{batches: map[int64]domain.RawBatch{1: batchOf(t, rec)}}
	repo := newFakeStagingRepo()
	svc := NewStagingService(reader, repo, clock.NewFixed(time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)))

	if _, err := svc.PromoteBatch(context.Background(), 1, "scraper"); err != nil {
		t.Fatalf("first promote: %v", err)
	}

	var uid string
	for k := range repo.events {
		uid = k
	}
	ev := repo.events[uid]
	ev.Status = domain.EventStatusQuarantined
	repo.events[uid] = ev

	if _, err := svc.PromoteBatch(context.Background(), 1, "scraper"); err != nil {
		t.Fatalf("replay: %v", err)
	}
	if repo.events[uid].Status != domain.EventStatusQuarantined {
		t.Fatalf("expected replay to leave quarantine untouched, got %s", repo.events[uid].Status)
	}
}

func TestPromoteBatch_ReplacesAssociations(t *testing.T) {
	rec := rawEvent(3, "2026-10-01", "20:00:00")
	reader := &fakeBatchReader{batches: map[int64]domain.RawBatch{1: batchOf(t, rec)}}
	repo := newFakeStagingRepo()
	svc := NewStagingService(reader, repo, clock.NewFixed(time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)))

	if _, err := svc.PromoteBatch(context.Background(), 1, "scraper"); err != nil {
		t.Fatalf("first promote: %v", err)
	}

	rec.GenreIDs = []int64{9}
	rec.ArtistIDs = []int64{8, 7}
	reader.batches[1] = batchOf(t, rec)

	if _, err := svc.PromoteBatch(context.Background(), 1, "scraper"); err != nil {
		t.Fatalf("replay: %v", err)
	}

	var uid string
	for k := range repo.events {
		uid = k
	}
	if got := repo.genres[uid]; len(got) != 1 || got[0] != 9 {
		t.Fatalf("expected genres replaced with [9], got %v", got)
	}
	if got := repo.artists[uid]; len(got) != 2 {
		t.Fatalf("expected artists replaced, got %v", got)
	}
}

func TestPromoteBatch_StoreFailureAborts(t *testing.T) {
	rec := rawEvent(3, "2026-10-01", "20:00:00")
	reader := &fakeBatchReader{batches: map[int64]domain.RawBatch{1: batchOf(t, rec)}}
	repo := newFakeStagingRepo()
	svc := NewStagingService(reader, repo, clock.NewFixed(time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)))

	ev, err := normalizeRecord(rec, "scraper", 1, time.Now())
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	repo.failUID = ev.UID

	if _, err := svc.PromoteBatch(context.Background(), 1, "scraper"); err == nil {
		t.Fatal("expected promote to fail when the store is unavailable")
	}
}
