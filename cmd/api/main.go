package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sgmusicchat/newsite/internal/app"
	"github.com/sgmusicchat/newsite/internal/clock"
	"github.com/sgmusicchat/newsite/internal/config"
	"github.com/sgmusicchat/newsite/internal/llm"
	"github.com/sgmusicchat/newsite/internal/observability/metrics"
	"github.com/sgmusicchat/newsite/internal/scheduler"
	"github.com/sgmusicchat/newsite/internal/scraper"
	"github.com/sgmusicchat/newsite/internal/storage/postgres"
	transporthttp "github.com/sgmusicchat/newsite/internal/transport/http"
	"github.com/sgmusicchat/newsite/migrations"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := log.Default()
	config.LoadEnvFile(logger)

	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	startupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	pool, err := pgxpool.New(startupCtx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("connect to db: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(startupCtx); err != nil {
		log.Fatalf("db ping: %v", err)
	}
	if err := migrations.Apply(startupCtx, pool); err != nil {
		log.Fatalf("apply migrations: %v", err)
	}

	clk := clock.NewSystem()
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	intakeRepo := postgres.NewIntakeRepository(pool)
	intakeSvc := app.NewIntakeService(intakeRepo, clk)
	stagingRepo := postgres.NewStagingRepository(pool)
	stagingSvc := app.NewStagingService(intakeSvc, stagingRepo, clk)
	auditSvc := app.NewAuditService(stagingRepo, clk, app.WithHorizon(time.Duration(cfg.Audit.HorizonDays)*24*time.Hour))
	publishRepo := postgres.NewPublishRepository(pool)
	publishSvc := app.NewPublishService(auditSvc, publishRepo, clk, app.WithPublishBatchSize(cfg.Publish.BatchSize))

	runner := app.NewPipelineRunner(scraper.NewMock(nil), intakeSvc, stagingSvc, publishSvc, m, logger)

	sched := scheduler.New(logger)
	sched.AddDailyJob("mock_scraper", "daily mock scrape", cfg.Scheduler.ScraperHour, runner.ScrapeJob)
	sched.AddIntervalJob("auto_publish", "auto publish", cfg.Scheduler.PublishInterval, runner.PublishJob)
	if cfg.Scheduler.Enabled {
		sched.Start()
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/health", transporthttp.HealthHandler(pool))
	mux.Handle("/api/v1/metrics", transporthttp.HandlePipelineMetrics(publishSvc))
	mux.Handle("/api/v1/scrapers/mock/run", transporthttp.HandleMockScrapeRun(runner))
	mux.Handle("/api/v1/scrapers/process-bronze", transporthttp.HandleProcessBronze(runner))
	mux.Handle("/api/v1/wap/audit", transporthttp.HandleAudit(auditSvc))
	mux.Handle("/api/v1/wap/publish", transporthttp.HandlePublish(runner))
	mux.Handle("/api/v1/scheduler/jobs", transporthttp.HandleSchedulerJobs(sched))
	mux.Handle("/api/v1/events/submit", transporthttp.HandleUserSubmission(intakeSvc))
	mux.Handle("/api/v1/admin/edits", transporthttp.HandleAdminEdit(intakeSvc))
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.Handle("/", transporthttp.NotFoundHandler())

	if cfg.Persona.Enabled {
		gemini, err := llm.NewGemini(cfg.Persona.APIKey, cfg.Persona.Model, cfg.Persona.BaseURL)
		if err != nil {
			log.Fatalf("init persona generator: %v", err)
		}
		personaSvc := app.NewPersonaService(gemini, postgres.NewPersonaRepository(pool), clk)
		mux.Handle("/api/v1/persona/generate", transporthttp.HandleGeneratePersona(personaSvc))
		mux.Handle("/api/v1/persona/retrieve/", transporthttp.HandleRetrievePersona(personaSvc))
	}

	handler := transporthttp.RequestLogger(transporthttp.CORS(cfg.CORSOrigins, mux), logger)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler,
	}

	log.Printf("api listening on :%s", cfg.Port)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("server error: %v", err)
		}
	case <-stopCtx.Done():
		log.Printf("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("server shutdown error: %v", err)
	}
	sched.Stop()
	log.Printf("server stopped")
}
