package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"github.com/vytor/recall/internal/api"
	"github.com/vytor/recall/internal/collection"
	"github.com/vytor/recall/internal/config"
	"github.com/vytor/recall/internal/db"
	"github.com/vytor/recall/internal/jobs"
	"github.com/vytor/recall/internal/logger"
	"github.com/vytor/recall/internal/models"
	"github.com/vytor/recall/internal/notify"
	"github.com/vytor/recall/internal/persist"
	"github.com/vytor/recall/internal/repository/sqlite"
	"github.com/vytor/recall/internal/services"
	"github.com/vytor/recall/internal/srs"
	"github.com/vytor/recall/internal/worker"
	"golang.org/x/sync/errgroup"
)

func main() {
	envFile := pflag.String("env-file", "", "load settings from this .env file instead of ./.env")
	addr := pflag.String("addr", "", "listen address (overrides ADDR)")
	dbPath := pflag.String("db", "", "sqlite database path (overrides DB_PATH)")
	logLevel := pflag.String("log-level", "", "DEBUG, INFO, WARN or ERROR (overrides LOG_LEVEL)")
	pflag.Parse()

	var cfg config.Config
	if *envFile != "" {
		cfg = config.Load(*envFile)
	} else {
		cfg = config.Load()
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	// Initialize logger
	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("%v", err)
		os.Exit(2)
	}

	log.Info("===========================================")
	log.Info("Recall Server Starting")
	log.Info("===========================================")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("due_check_interval=%v", cfg.DueCheckInterval)
	log.Debug("autosave_interval=%v", cfg.AutosaveInterval)
	log.Debug("worker_count=%d", cfg.WorkerCount)
	log.Debug("queue_size=%d", cfg.QueueSize)
	log.Debug("notify_enabled=%t", cfg.NotifyEnabled)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = logger.NewContext(ctx, log)

	// Open database
	database, err := db.Open(ctx, cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	itemRepo := sqlite.NewItemRepository(database.DB)
	reviewRepo := sqlite.NewReviewRepository(database.DB)

	// Load the collection
	saved, err := itemRepo.List(ctx, models.ItemFilter{})
	if err != nil {
		log.Error("failed to load collection: %v", err)
		os.Exit(1)
	}
	store := collection.New()
	if skipped := store.Load(saved); skipped > 0 {
		log.Warn("skipped %d invalid items while loading", skipped)
	}
	log.Info("loaded %d items", store.Len())

	// History of items removed while a purge was still queued.
	if n, err := reviewRepo.DeleteOrphans(ctx); err != nil {
		log.Warn("failed to purge orphaned review history: %v", err)
	} else if n > 0 {
		log.Info("purged %d orphaned review records", n)
	}

	clock := time.Now
	scheduler := srs.DefaultScheduler(clock)
	selector := srs.NewSelector(clock)

	pool := worker.NewPool(cfg.WorkerCount, cfg.QueueSize)
	pool.Start(ctx)
	autosaver := persist.NewAutosaver(store, itemRepo, cfg.AutosaveInterval)
	jobQueue := jobs.NewWorkerQueue(pool, reviewRepo, autosaver)

	srv := &api.Server{
		DB:            database,
		ItemService:   services.NewItemService(store, jobQueue, clock),
		ReviewService: services.NewReviewService(store, scheduler, selector, reviewRepo, clock),
		StatsService:  services.NewStatsService(store, selector, reviewRepo, clock),
		DeckService:   services.NewDeckService(store, jobQueue, clock),
	}

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return autosaver.Run(gctx)
	})
	if cfg.NotifyEnabled {
		watcher := notify.NewWatcher(store.Snapshot, selector, notify.LogNotifier{Log: log.WithPrefix("notify")}, cfg.DueCheckInterval)
		g.Go(func() error {
			return watcher.Run(gctx)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info("initiating graceful shutdown")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		log.Debug("shutting down HTTP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP server shutdown error: %v", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error("server error: %v", err)
	}

	// Wait for workers to finish
	log.Debug("stopping worker pool")
	pool.Stop()

	if autosaver.Dirty() {
		log.Info("saving unsaved changes")
		if err := autosaver.Flush(logger.NewContext(context.Background(), log)); err != nil {
			log.Error("final save failed: %v", err)
		}
	}

	log.Info("===========================================")
	log.Info("Recall Server Stopped")
	log.Info("===========================================")
}
