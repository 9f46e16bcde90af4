package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/vytor/chesslegends/internal/api"
	"github.com/vytor/chesslegends/internal/config"
	"github.com/vytor/chesslegends/internal/db"
	"github.com/vytor/chesslegends/internal/identity"
	"github.com/vytor/chesslegends/internal/jobs"
	"github.com/vytor/chesslegends/internal/legend"
	"github.com/vytor/chesslegends/internal/logger"
	"github.com/vytor/chesslegends/internal/oracle"
	"github.com/vytor/chesslegends/internal/recommend"
	"github.com/vytor/chesslegends/internal/replay"
	"github.com/vytor/chesslegends/internal/repository/sqlite"
	"github.com/vytor/chesslegends/internal/rules"
	"github.com/vytor/chesslegends/internal/scoring"
	"github.com/vytor/chesslegends/internal/services"
	"github.com/vytor/chesslegends/internal/snapshot"
	"github.com/vytor/chesslegends/internal/worker"
)

func main() {
	cfg := config.Load()

	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("Chess Legends Server Starting")
	log.Info("===========================================")
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("stockfish_path=%s", cfg.StockfishPath)
	log.Debug("stockfish_depth=%d", cfg.StockfishDepth)
	log.Debug("engine_pool_size=%d", cfg.EnginePoolSize)
	log.Debug("book_horizon=%d", cfg.BookHorizon)
	log.Debug("build_workers=%d", cfg.BuildWorkers)
	log.Debug("snapshot_dir=%s", cfg.SnapshotDir)

	registry := identity.DefaultRegistry()
	if cfg.LegendsFile != "" {
		reg, err := identity.LoadFile(cfg.LegendsFile)
		if err != nil {
			log.Error("failed to load legends file: %v", err)
			os.Exit(1)
		}
		registry = reg
	}
	log.Info("%d legends registered", len(registry.Legends()))

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()
	recordRepo := sqlite.NewRecordRepository(database.DB)
	summaryRepo := sqlite.NewSummaryRepository(database.DB)

	var moveOracle oracle.Oracle
	if cfg.StockfishPath != "" {
		pool, err := oracle.NewEnginePool(cfg.StockfishPath, cfg.EnginePoolSize)
		if err != nil {
			log.Warn("engine pool unavailable, index misses will fail: %v", err)
		} else {
			defer pool.Close()
			moveOracle = pool
		}
	}

	engine := rules.New()
	replayer := replay.New(engine)
	replayer.Openings = true
	pipeline := legend.NewPipeline(registry, replayer, cfg.BookHorizon, cfg.BuildWorkers)
	store := legend.NewStore()

	legendService := services.NewLegendService(registry, pipeline, store, recordRepo,
		recommend.New(engine, moveOracle, nil), cfg.DefaultBotLevel)
	studyService := services.NewStudyService(legendService,
		scoring.NewScorer(engine, moveOracle, cfg.StockfishDepth), summaryRepo)

	buildPool := worker.NewPool(1, cfg.BuildQueueSize)
	queue := jobs.NewWorkerQueue(buildPool, legendService, cfg.SnapshotDir)

	ctx, cancel := context.WithCancel(context.Background())
	buildPool.Start(ctx)

	for _, l := range registry.Legends() {
		if cfg.SnapshotDir != "" {
			path := filepath.Join(cfg.SnapshotDir, l.ID+".snap.zst")
			if snap, err := snapshot.ReadFile(path); err == nil {
				store.Put(snap)
				log.Info("restored %s from %s (%d positions)", l.ID, path, snap.Stats.Positions)
			} else if !os.IsNotExist(err) {
				log.Warn("failed to restore snapshot %s: %v", path, err)
			}
		}
		n, err := recordRepo.CountByLegend(ctx, l.ID)
		if err != nil {
			log.Warn("failed to count records for %s: %v", l.ID, err)
			continue
		}
		if n == 0 {
			continue
		}
		if err := queue.EnqueueRebuild(l.ID); err != nil {
			log.Warn("failed to queue rebuild for %s: %v", l.ID, err)
		}
	}

	srv := &api.Server{
		LegendService: legendService,
		StudyService:  studyService,
		JobQueue:      queue,
		DB:            database,
	}

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	log.Debug("stopping build pool")
	cancel()
	buildPool.Stop()

	log.Info("===========================================")
	log.Info("Chess Legends Server Stopped")
	log.Info("===========================================")
}
