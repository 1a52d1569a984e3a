package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinicdesk/clinic-api/internal/config"
	bookingHandler "github.com/clinicdesk/clinic-api/internal/handler/booking"
	doctorHandler "github.com/clinicdesk/clinic-api/internal/handler/doctor"
	healthHandler "github.com/clinicdesk/clinic-api/internal/handler/health"
	historyHandler "github.com/clinicdesk/clinic-api/internal/handler/history"
	patientHandler "github.com/clinicdesk/clinic-api/internal/handler/patient"
	serviceHandler "github.com/clinicdesk/clinic-api/internal/handler/service"
	"github.com/clinicdesk/clinic-api/internal/middleware"
	"github.com/clinicdesk/clinic-api/internal/repository/postgres"
	"github.com/clinicdesk/clinic-api/internal/router"
	bookingService "github.com/clinicdesk/clinic-api/internal/service/booking"
	catalogService "github.com/clinicdesk/clinic-api/internal/service/catalog"
	historyService "github.com/clinicdesk/clinic-api/internal/service/history"
	"github.com/clinicdesk/clinic-api/internal/service/notifier"
	scheduleService "github.com/clinicdesk/clinic-api/internal/service/schedule"
	"github.com/clinicdesk/clinic-api/internal/worker"
	"github.com/clinicdesk/clinic-api/pkg/logger"
	redisBroker "github.com/clinicdesk/clinic-api/pkg/messaging/redis"
	"github.com/clinicdesk/clinic-api/pkg/metrics"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := logger.NewLogger(&logger.Config{Level: level, Pretty: cfg.Log.Pretty})

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal(err, "failed to connect to database")
	}
	defer db.Close()

	broker, err := redisBroker.NewBroker(redisBroker.Config{
		URL:          cfg.Redis.URL,
		MaxRetries:   cfg.Redis.MaxRetries,
		RetryBackoff: cfg.Redis.RetryBackoff,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
	}, &log.ZL)
	if err != nil {
		log.Fatal(err, "failed to connect to Redis")
	}
	defer broker.Close()

	m := metrics.New("clinic")

	bookingRepo := postgres.NewBookingRepository(db)
	historyRepo := postgres.NewHistoryRepository(db)
	doctorRepo := postgres.NewDoctorRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	serviceRepo := postgres.NewServiceRepository(db)

	historySvc := historyService.NewService(historyRepo, log)
	dispatcher := notifier.NewDispatcher(broker, log, m)
	bookingSvc := bookingService.NewService(bookingRepo, historySvc, dispatcher, log, m)
	scheduleSvc := scheduleService.NewService(bookingRepo)
	catalogSvc := catalogService.NewService(doctorRepo, patientRepo, serviceRepo, bookingSvc)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go dispatcher.Start(ctx)

	cleanupWorker := worker.NewBookingCleanupWorker(bookingSvc, cfg.Cleanup.Retention, cfg.Cleanup.Interval, log)
	go cleanupWorker.Start(ctx)

	r := router.NewRouter(m, router.Config{
		RateLimitEnabled: cfg.RateLimit.Enabled,
		RateLimit:        cfg.RateLimit.RequestsPerSecond,
		RateBurst:        cfg.RateLimit.Burst,
		CORS:             middleware.DefaultCORSConfig(),
	})

	if err := r.Setup(
		healthHandler.NewHandler(db),
		bookingHandler.NewHandler(bookingSvc, scheduleSvc),
		doctorHandler.NewHandler(catalogSvc, scheduleSvc),
		patientHandler.NewHandler(catalogSvc, historySvc),
		serviceHandler.NewHandler(catalogSvc),
		historyHandler.NewHandler(historySvc),
	); err != nil {
		log.Fatal(err, "failed to set up router")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.WithFields(map[string]interface{}{"addr": srv.Addr}).Info("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err, "failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal(err, "server forced to shutdown")
	}

	log.Info("server exited properly")
}
