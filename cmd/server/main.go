package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"taguchi/adapters/catalogue"
	"taguchi/adapters/postgres"
	"taguchi/app"
	"taguchi/internal/config"
	"taguchi/internal/doe"
	apperrors "taguchi/internal/errors"
	"taguchi/internal/logging"
	"taguchi/internal/metrics"
	"taguchi/internal/migration"
	"taguchi/ui"
)

const shutdownTimeout = 10 * time.Second

func initDatabase(ctx context.Context, appConfig *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", appConfig.Database.URL)
	if err != nil {
		return nil, apperrors.DatabaseError("failed to connect to database", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, apperrors.DatabaseError("failed to ping database", err)
	}

	if err := migration.NewRunner().Run(ctx, db); err != nil {
		db.Close()
		return nil, apperrors.Wrap(err, "database migration failed")
	}

	return db, nil
}

func main() {
	envErr := godotenv.Load()

	appConfig, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "err", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stderr, logging.LevelFromString(appConfig.LogLevel))
	slog.SetDefault(logger)
	if envErr != nil {
		logger.Debug("no .env file found, using system environment variables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	defaults := doe.Defaults{
		PoolingThreshold:   appConfig.Analysis.PoolingThreshold,
		EnablePooling:      appConfig.Analysis.EnablePooling,
		MinUnpooledFactors: appConfig.Analysis.MinUnpooledFactors,
		ConfidenceLevel:    appConfig.Analysis.ConfidenceLevel,
	}
	deps := app.Dependencies{
		Catalogue:        catalogue.NewStaticCatalogue(),
		Standards:        catalogue.NewEmbeddedArrays(),
		Logger:           logger,
		DOEDefaults:      &defaults,
		MaxStrengthCheck: appConfig.Analysis.MaxStrengthCheck,
	}

	if appConfig.Database.Enabled() {
		db, err := initDatabase(ctx, appConfig)
		if err != nil {
			logger.Error("failed to initialize database", "err", err)
			os.Exit(1)
		}
		defer db.Close()
		deps.Repository = postgres.NewArrayRepository(db)
		logger.Info("persistence enabled")
	} else {
		logger.Info("DATABASE_URL not set, persistence disabled")
	}

	if appConfig.Metrics.Enabled {
		deps.Metrics = metrics.NewRecorder()
	}

	uiApp, err := ui.NewApp(app.NewDesignService(deps), ui.Config{
		GinMode: appConfig.Server.GinMode,
		Metrics: deps.Metrics,
		Logger:  logger,
	})
	if err != nil {
		logger.Error("failed to create HTTP application", "err", err)
		os.Exit(1)
	}

	server := &http.Server{
		Addr:              ":" + appConfig.Server.Port,
		Handler:           uiApp.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting server", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "err", err)
	}
}
