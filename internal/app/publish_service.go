package app

import (
	"context"
	"fmt"
	"time"

	"github.com/sgmusicchat/newsite/internal/clock"
	"github.com/sgmusicchat/newsite/internal/domain"
)

type Auditor interface {
	Audit(ctx context.Context) (domain.AuditFinding, error)
}

type PublishRepository interface {
	// ListPublishable returns up to limit clean staged events that are
	// unpublished or whose content hash differs from the published copy,
	// ordered by fingerprint.
	ListPublishable(ctx context.Context, limit int) ([]domain.StagedEvent, error)
	PublishEvent(ctx context.Context, ev domain.StagedEvent, at time.Time) error
	Counts(ctx context.Context) (domain.TierCounts, error)
}

// PublishService runs the write-audit-publish gate: nothing reaches gold
// while the audit reports unresolved violations.
type PublishService struct {
	auditor   Auditor
	repo      PublishRepository
	clock     clock.Clock
	batchSize int
}

const defaultPublishBatchSize = 500

func NewPublishService(auditor Auditor, repo PublishRepository, clk clock.Clock, opts ...PublishOption) *PublishService {
	svc := &PublishService{
		auditor:   auditor,
		repo:      repo,
		clock:     clk,
		batchSize: defaultPublishBatchSize,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type PublishOption func(*PublishService)

// WithPublishBatchSize overrides the default batch size used when the
// caller passes zero.
func WithPublishBatchSize(n int) PublishOption {
	return func(s *PublishService) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

type PublishStatus string

const (
	PublishStatusSuccess PublishStatus = "success"
	PublishStatusFailed  PublishStatus = "failed"
)

type PublishResult struct {
	Status           PublishStatus
	ErrorCount       int
	QuarantinedCount int
	PublishedCount   int
	Message          string
}

// AutoPublish audits first, halts on any violation, and otherwise promotes
// up to batchSize clean events into gold. Republishing an unchanged event is
// a no-op because unchanged content is never selected.
func (s *PublishService) AutoPublish(ctx context.Context, batchSize int) (PublishResult, error) {
	if batchSize < 0 {
		return PublishResult{}, domain.ErrInvalidBatchSize
	}
	if batchSize == 0 {
		batchSize = s.batchSize
	}

	finding, err := s.auditor.Audit(ctx)
	if err != nil {
		return PublishResult{}, fmt.Errorf("audit: %w", err)
	}

	if finding.ErrorCount > 0 {
		return PublishResult{
			Status:           PublishStatusFailed,
			ErrorCount:       finding.ErrorCount,
			QuarantinedCount: finding.QuarantinedCount,
			Message:          fmt.Sprintf("audit found %d violations; %d events quarantined; publish halted", finding.ErrorCount, finding.QuarantinedCount),
		}, nil
	}

	events, err := s.repo.ListPublishable(ctx, batchSize)
	if err != nil {
		return PublishResult{}, fmt.Errorf("select publishable: %w", err)
	}

	now := s.clock.Now()
	published := 0
	for _, ev := range events {
		if err := s.repo.PublishEvent(ctx, ev, now); err != nil {
			// Partial progress is fine: already-published events stay
			// published and the next run resumes where this one stopped.
			return PublishResult{}, fmt.Errorf("publish event %s: %w", ev.UID, err)
		}
		published++
	}

	return PublishResult{
		Status:         PublishStatusSuccess,
		PublishedCount: published,
		Message:        fmt.Sprintf("published %d events", published),
	}, nil
}

// Metrics reports record counts per pipeline tier.
func (s *PublishService) Metrics(ctx context.Context) (domain.TierCounts, error) {
	return s.repo.Counts(ctx)
}
