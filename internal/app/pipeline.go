package app

import (
	"context"
	"log"
	"time"

	"github.com/sgmusicchat/newsite/internal/domain"
	"github.com/sgmusicchat/newsite/internal/observability/metrics"
	"github.com/sgmusicchat/newsite/internal/scraper"
)

// PipelineRunner ties the tiers together for the scheduler and the API:
// one entry point per scheduled cycle. Every run is bounded by a timeout so
// a stuck store fails the run instead of wedging the scheduler; bronze keeps
// the data for the next attempt.
type PipelineRunner struct {
	scraper *scraper.Mock
	intake  *IntakeService
	staging *StagingService
	publish *PublishService
	metrics *metrics.Metrics
	logger  *log.Logger
	timeout time.Duration
}

const defaultRunTimeout = 2 * time.Minute

func NewPipelineRunner(mock *scraper.Mock, intake *IntakeService, staging *StagingService, publish *PublishService, m *metrics.Metrics, logger *log.Logger) *PipelineRunner {
	if logger == nil {
		logger = log.Default()
	}
	return &PipelineRunner{
		scraper: mock,
		intake:  intake,
		staging: staging,
		publish: publish,
		metrics: m,
		logger:  logger,
		timeout: defaultRunTimeout,
	}
}

type ScrapeRunResult struct {
	BronzeID  int64
	Generated int
	Processed int
	Created   int
	Malformed int
}

// RunMockScrape generates mock events, lands them in bronze and promotes the
// batch to silver.
func (r *PipelineRunner) RunMockScrape(ctx context.Context, count int, includeBad bool) (ScrapeRunResult, error) {
	if count <= 0 {
		return ScrapeRunResult{}, domain.ErrInvalidCount
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	now := time.Now().UTC()
	events := r.scraper.Generate(count, now)
	if includeBad {
		events = append(events, r.scraper.BadEvent(now))
	}

	bronzeID, err := r.intake.AppendScrape(ctx, events, "mock_scraper")
	if err != nil {
		r.metrics.RunErrors.WithLabelValues("scrape").Inc()
		return ScrapeRunResult{}, err
	}
	r.metrics.BatchesIngested.WithLabelValues("mock_scraper").Inc()

	res, err := r.staging.PromoteBatch(ctx, bronzeID, "scraper")
	if err != nil {
		r.metrics.RunErrors.WithLabelValues("scrape").Inc()
		return ScrapeRunResult{}, err
	}
	r.recordPromote(res)

	return ScrapeRunResult{
		BronzeID:  bronzeID,
		Generated: len(events),
		Processed: res.Processed,
		Created:   res.Created,
		Malformed: res.Malformed,
	}, nil
}

// RunPromote re-stages an existing bronze batch.
func (r *PipelineRunner) RunPromote(ctx context.Context, bronzeID int64, sourceType string) (PromoteResult, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.staging.PromoteBatch(ctx, bronzeID, sourceType)
	if err != nil {
		r.metrics.RunErrors.WithLabelValues("promote").Inc()
		return PromoteResult{}, err
	}
	r.recordPromote(res)
	return res, nil
}

// RunPublish executes one audit-then-publish cycle.
func (r *PipelineRunner) RunPublish(ctx context.Context, batchSize int) (PublishResult, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.publish.AutoPublish(ctx, batchSize)
	if err != nil {
		r.metrics.RunErrors.WithLabelValues("publish").Inc()
		return PublishResult{}, err
	}
	r.metrics.EventsQuarantined.Add(float64(res.QuarantinedCount))
	r.metrics.EventsPublished.Add(float64(res.PublishedCount))
	return res, nil
}

// ScrapeJob is the scheduler entry point for the daily mock scrape.
func (r *PipelineRunner) ScrapeJob(ctx context.Context) {
	res, err := r.RunMockScrape(ctx, 10, false)
	if err != nil {
		r.logger.Printf("scrape job failed: %v", err)
		return
	}
	r.logger.Printf("scrape job done: bronze_id=%d processed=%d created=%d", res.BronzeID, res.Processed, res.Created)
}

// PublishJob is the scheduler entry point for the periodic publish cycle.
func (r *PipelineRunner) PublishJob(ctx context.Context) {
	res, err := r.RunPublish(ctx, 0)
	if err != nil {
		r.logger.Printf("publish job failed: %v", err)
		return
	}
	r.logger.Printf("publish job done: status=%s published=%d quarantined=%d", res.Status, res.PublishedCount, res.QuarantinedCount)
}

func (r *PipelineRunner) recordPromote(res PromoteResult) {
	r.metrics.EventsStaged.Add(float64(res.Processed))
	r.metrics.EventsCreated.Add(float64(res.Created))
	r.metrics.EventsMalformed.Add(float64(res.Malformed))
}
