package app

import (
	"context"
	"time"

	"github.com/sgmusicchat/newsite/internal/clock"
	"github.com/sgmusicchat/newsite/internal/domain"
)

type AuditRepository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	ListForAudit(ctx context.Context) ([]domain.StagedEvent, error)
	MarkQuarantined(ctx context.Context, uid string, kinds []domain.ViolationKind, at time.Time) error
	MarkClean(ctx context.Context, uid string, at time.Time) error
}

// AuditService is the quality gate between silver and gold. It quarantines
// clean rows that violate any rule and restores quarantined rows whose
// violations have been corrected by a later upsert. It never deletes and
// never publishes.
type AuditService struct {
	repo    AuditRepository
	clock   clock.Clock
	horizon time.Duration
}

const defaultHorizonDays = 183

func NewAuditService(repo AuditRepository, clk clock.Clock, opts ...AuditOption) *AuditService {
	svc := &AuditService{
		repo:    repo,
		clock:   clk,
		horizon: defaultHorizonDays * 24 * time.Hour,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

type AuditOption func(*AuditService)

// WithHorizon overrides how far in the future an event date may sit.
func WithHorizon(d time.Duration) AuditOption {
	return func(s *AuditService) {
		if d > 0 {
			s.horizon = d
		}
	}
}

// Audit runs one pass over the staged backlog. ErrorCount counts violations
// found on clean rows only, so a second pass with no staging changes reports
// zero: everything bad is already quarantined.
func (s *AuditService) Audit(ctx context.Context) (domain.AuditFinding, error) {
	events, err := s.repo.ListForAudit(ctx)
	if err != nil {
		return domain.AuditFinding{}, err
	}

	now := s.clock.Now()
	finding := domain.AuditFinding{Summary: make(map[domain.ViolationKind]int)}

	type flip struct {
		uid   string
		kinds []domain.ViolationKind
	}
	var quarantine []flip
	var restore []string

	for _, ev := range events {
		kinds := violations(ev, now, s.horizon)
		switch {
		case ev.Status == domain.EventStatusClean && len(kinds) > 0:
			quarantine = append(quarantine, flip{uid: ev.UID, kinds: kinds})
			finding.ErrorCount += len(kinds)
			for _, k := range kinds {
				finding.Summary[k]++
			}
		case ev.Status == domain.EventStatusQuarantined && len(kinds) == 0:
			restore = append(restore, ev.UID)
		}
	}

	if len(quarantine) == 0 && len(restore) == 0 {
		return finding, nil
	}

	err = s.repo.WithTx(ctx, func(txCtx context.Context) error {
		for _, f := range quarantine {
			if err := s.repo.MarkQuarantined(txCtx, f.uid, f.kinds, now); err != nil {
				return err
			}
		}
		for _, uid := range restore {
			if err := s.repo.MarkClean(txCtx, uid, now); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.AuditFinding{}, err
	}

	finding.QuarantinedCount = len(quarantine)
	finding.RestoredCount = len(restore)
	return finding, nil
}

// violations evaluates every rule independently; a record can fail several.
func violations(ev domain.StagedEvent, now time.Time, horizon time.Duration) []domain.ViolationKind {
	var kinds []domain.ViolationKind

	today := now.UTC().Truncate(24 * time.Hour)
	if ev.EventDate.Before(today) {
		kinds = append(kinds, domain.ViolationPastDate)
	}
	if ev.EventDate.After(now.Add(horizon)) {
		kinds = append(kinds, domain.ViolationBeyondHorizon)
	}
	// Same-day assumption: HH:MM:SS strings compare lexicographically.
	if ev.EndTime != "" && ev.EndTime < ev.StartTime {
		kinds = append(kinds, domain.ViolationTimeOrder)
	}
	if priceConflict(ev) {
		kinds = append(kinds, domain.ViolationPriceConflict)
	}
	return kinds
}

func priceConflict(ev domain.StagedEvent) bool {
	if ev.IsFree {
		return (ev.PriceMin != nil && *ev.PriceMin > 0) || (ev.PriceMax != nil && *ev.PriceMax > 0)
	}
	return ev.PriceMin == nil
}
