package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/vkrastev/clinicore/internal/config"
	"github.com/vkrastev/clinicore/internal/handler"
	v1 "github.com/vkrastev/clinicore/internal/handler/v1"
	"github.com/vkrastev/clinicore/internal/repository"
	"github.com/vkrastev/clinicore/internal/service"
	"github.com/vkrastev/clinicore/pkg/auth"
	"github.com/vkrastev/clinicore/pkg/database"
	"github.com/vkrastev/clinicore/pkg/logger"
	"github.com/vkrastev/clinicore/pkg/metrics"
	"github.com/vkrastev/clinicore/pkg/tracer"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer log.Sync() //nolint:errcheck

	log.Info("starting service",
		zap.String("name", cfg.App.Name),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	if cfg.Tracing.Enabled {
		tp, err := tracer.Init(cfg.Tracing)
		if err != nil {
			return fmt.Errorf("initializing tracer: %w", err)
		}
		defer func() {
			if err := tp.Shutdown(context.Background()); err != nil {
				log.Warn("tracer shutdown", zap.Error(err))
			}
		}()
	}

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	if err := database.Migrate(db, log); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	collector := metrics.NewCollector(cfg.App.Name, prometheus.DefaultRegisterer)

	patientRepo := repository.NewPatientRepository(db)
	doctorRepo := repository.NewDoctorRepository(db)
	specialtyRepo := repository.NewSpecialtyRepository(db)
	diagnosisRepo := repository.NewDiagnosisRepository(db)
	visitRepo := repository.NewVisitRepository(db)
	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	jwtManager := auth.NewJWTManager(cfg.JWT)

	auditSvc := service.NewAuditService(auditRepo, collector, log)
	authSvc := service.NewAuthService(userRepo, jwtManager, log)
	patientSvc := service.NewPatientService(patientRepo, auditSvc, collector, log, cfg.Pagination.MaxPageSize)
	doctorSvc := service.NewDoctorService(doctorRepo, specialtyRepo, auditSvc, log, cfg.Pagination.MaxPageSize)
	diagnosisSvc := service.NewDiagnosisService(diagnosisRepo, auditSvc, log, cfg.Pagination.MaxPageSize)
	rule := service.NewSchedulingRule(visitRepo)
	visitSvc := service.NewVisitService(
		visitRepo, patientRepo, doctorRepo, diagnosisRepo,
		rule, auditSvc, collector, log, cfg.Pagination,
	)

	router := handler.NewRouter(cfg, log, jwtManager, collector, handler.Handlers{
		Auth:      v1.NewAuthHandler(authSvc),
		Patient:   v1.NewPatientHandler(patientSvc),
		Doctor:    v1.NewDoctorHandler(doctorSvc),
		Diagnosis: v1.NewDiagnosisHandler(diagnosisSvc),
		Visit:     v1.NewVisitHandler(visitSvc),
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case sig := <-quit:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("forced shutdown", zap.Error(err))
	}

	// Drain workers only once the server stops accepting requests.
	visitSvc.Shutdown()
	auditSvc.Shutdown()

	log.Info("stopped")
	return nil
}
