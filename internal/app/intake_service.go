package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sgmusicchat/newsite/internal/clock"
	"github.com/sgmusicchat/newsite/internal/domain"
)

type IntakeRepository interface {
	AppendBatch(ctx context.Context, batch domain.RawBatch) (int64, error)
	GetBatch(ctx context.Context, id int64) (domain.RawBatch, error)
	AppendUserSubmission(ctx context.Context, receivedAt time.Time, ip string, form json.RawMessage, userAgent string) (int64, error)
	AppendAdminEdit(ctx context.Context, editedAt time.Time, admin, editType string, edit json.RawMessage) (int64, error)
}

// IntakeService owns the bronze tier: an append-only log of everything the
// system receives, kept verbatim for audit and replay.
type IntakeService struct {
	repo  IntakeRepository
	clock clock.Clock
}

func NewIntakeService(repo IntakeRepository, clk clock.Clock) *IntakeService {
	return &IntakeService{repo: repo, clock: clk}
}

// AppendScrape writes one scraper batch to bronze and returns its id.
func (s *IntakeService) AppendScrape(ctx context.Context, events []domain.RawEvent, source string) (int64, error) {
	if source == "" {
		return 0, domain.ErrSourceRequired
	}
	if len(events) == 0 {
		return 0, domain.ErrEmptyBatch
	}

	payload, err := json.Marshal(events)
	if err != nil {
		return 0, fmt.Errorf("encode batch payload: %w", err)
	}

	version := events[0].ScraperVersion
	if version == "" {
		version = "v1.0.0"
	}

	return s.repo.AppendBatch(ctx, domain.RawBatch{
		Source:     source,
		Version:    version,
		ReceivedAt: s.clock.Now(),
		Payload:    payload,
	})
}

// ReadBatch returns the bronze batch or domain.ErrBatchNotFound.
func (s *IntakeService) ReadBatch(ctx context.Context, id int64) (domain.RawBatch, error) {
	return s.repo.GetBatch(ctx, id)
}

// AppendUserSubmission records a visitor form submission verbatim.
func (s *IntakeService) AppendUserSubmission(ctx context.Context, form map[string]any, ip string) (int64, error) {
	raw, err := json.Marshal(form)
	if err != nil {
		return 0, fmt.Errorf("encode form data: %w", err)
	}
	userAgent, _ := form["user_agent"].(string)
	if userAgent == "" {
		userAgent = "Unknown"
	}
	return s.repo.AppendUserSubmission(ctx, s.clock.Now(), ip, raw, userAgent)
}

// AppendAdminEdit records a manual admin change verbatim.
func (s *IntakeService) AppendAdminEdit(ctx context.Context, admin, editType string, edit map[string]any) (int64, error) {
	if admin == "" {
		return 0, domain.ErrSourceRequired
	}
	raw, err := json.Marshal(edit)
	if err != nil {
		return 0, fmt.Errorf("encode edit data: %w", err)
	}
	return s.repo.AppendAdminEdit(ctx, s.clock.Now(), admin, editType, raw)
}
