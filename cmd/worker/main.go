package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/kelseyhightower/envconfig"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/clinicdesk/clinic-api/internal/repository/postgres"
	"github.com/clinicdesk/clinic-api/internal/worker"
	"github.com/clinicdesk/clinic-api/pkg/logger"
)

// WorkerConfig is read from the environment with the CLEANUP prefix,
// e.g. CLEANUP_DATABASE_URL, CLEANUP_RETENTION.
type WorkerConfig struct {
	DatabaseURL string        `envconfig:"DATABASE_URL" required:"true"`
	Retention   time.Duration `envconfig:"RETENTION" default:"24h"`
	Interval    time.Duration `envconfig:"INTERVAL" default:"1h"`
	HealthAddr  string        `envconfig:"HEALTH_ADDR" default:":8081"`
	LogLevel    string        `envconfig:"LOG_LEVEL" default:"info"`
}

func setupHealthCheck(addr string, log *logger.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.ZL.Error().Err(err).Msg("health check server failed")
			os.Exit(1)
		}
	}()
}

func main() {
	var cfg WorkerConfig
	if err := envconfig.Process("CLEANUP", &cfg); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := logger.NewLogger(&logger.Config{Level: level})

	db, err := sqlx.Connect("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	bookingRepo := postgres.NewBookingRepository(db)
	cleanupWorker := worker.NewBookingCleanupWorker(bookingRepo, cfg.Retention, cfg.Interval, log)

	setupHealthCheck(cfg.HealthAddr, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cleanupWorker.Start(ctx)
	log.Info("worker exited properly")
}
