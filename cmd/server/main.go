package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JaimeStill/flipbook-lab/internal/config"
	"github.com/JaimeStill/flipbook-lab/internal/database"
	"github.com/JaimeStill/flipbook-lab/internal/flipbooks"
	"github.com/JaimeStill/flipbook-lab/internal/ingest"
	"github.com/JaimeStill/flipbook-lab/internal/metrics"
	"github.com/JaimeStill/flipbook-lab/internal/render"
	"github.com/JaimeStill/flipbook-lab/internal/storage"
	"github.com/JaimeStill/flipbook-lab/pkg/logging"
)

type Application struct {
	config    *config.Config
	logger    *slog.Logger
	metrics   *metrics.Metrics
	store     flipbooks.System
	pipeline  *ingest.Pipeline
	validator *ingest.Validator
}

func main() {
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.Finalize(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.New(&cfg.Logging)

	store, err := storage.New(&cfg.Storage, logger)
	if err != nil {
		logger.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}
	if err := store.Init(); err != nil {
		logger.Error("failed to initialize storage directory", "error", err)
		os.Exit(1)
	}

	var db *sql.DB
	var sys flipbooks.System
	if cfg.Database.Enabled {
		db, err = database.Open(cfg.Database)
		if err != nil {
			logger.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		sys = flipbooks.NewRepository(db, store, logger, cfg.Share)
	} else {
		logger.Info("database disabled, using in-memory store")
		sys = flipbooks.NewMemory(store, logger, cfg.Share, cfg.Pagination)
	}

	app := &Application{
		config:    cfg,
		logger:    logger,
		metrics:   metrics.New(),
		store:     sys,
		pipeline:  ingest.New(render.NewPDFOpener(), store, logger, cfg.Ingest),
		validator: ingest.NewValidator(cfg.Ingest.AcceptedTypes, cfg.Storage.MaxUploadSizeBytes()),
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      app.routes(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
		IdleTimeout:  cfg.Server.IdleTimeoutDuration(),
	}

	shutdownError := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		logger.Info("shutting down server")

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeoutDuration())
		defer cancel()

		shutdownError <- srv.Shutdown(ctx)
	}()

	logger.Info("starting server", "addr", srv.Addr)

	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	err = <-shutdownError
	if err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
