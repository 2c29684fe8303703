package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MayankGitHub86/solvehub-sub000/api"
	dbfs "github.com/MayankGitHub86/solvehub-sub000/db"
	"github.com/MayankGitHub86/solvehub-sub000/internal/achievements"
	"github.com/MayankGitHub86/solvehub-sub000/internal/auth"
	"github.com/MayankGitHub86/solvehub-sub000/internal/config"
	"github.com/MayankGitHub86/solvehub-sub000/internal/db"
	"github.com/MayankGitHub86/solvehub-sub000/internal/jobs"
	"github.com/MayankGitHub86/solvehub-sub000/internal/notify"
	"github.com/MayankGitHub86/solvehub-sub000/internal/presence"
	"github.com/MayankGitHub86/solvehub-sub000/internal/repository/sqlite"
	"github.com/MayankGitHub86/solvehub-sub000/internal/reputation"
	"github.com/MayankGitHub86/solvehub-sub000/internal/socket"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	var configPath = flag.String("config", "", "Path to config YAML file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "err", err)
		os.Exit(1)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	api.SetLogger(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited with error", "err", err)
		os.Exit(1)
	}
	logger.Info("server exited")
}

func run(cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting solvehub server", "version", version, "build_time", buildTime)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Open database connection
	database, err := db.New(ctx, cfg.DatabasePath, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(); err != nil {
			logger.Error("error closing DB", "err", err)
		}
	}()

	if cfg.MigrateOnStart {
		if err := db.Migrate(ctx, database, dbfs.Migrations); err != nil {
			return err
		}
	}

	repo := sqlite.New(database, logger)
	if err := achievements.SeedCatalog(ctx, repo); err != nil {
		return err
	}

	// Durable notification records are written by the job workers so a slow
	// or failing insert never holds up live delivery.
	pool := jobs.NewWorkerPool(repo, map[string]jobs.Handler{
		notify.PersistJobType: notify.PersistHandler(repo),
	}, logger, cfg.Notifications.Workers)

	hub := socket.NewHub(socket.Options{
		SendBuffer: cfg.Realtime.SendBuffer,
		WriteWait:  cfg.Realtime.WriteWait,
		PongWait:   cfg.Realtime.PongWait,
	}, logger)
	streams := notify.NewStreams(cfg.Realtime.SendBuffer, cfg.Realtime.StreamHeartbeat, logger)
	dispatcher := notify.NewDispatcher(logger, notify.NewQueueRecorder(pool, cfg.Notifications.MaxAttempts), cfg.Notifications.DurableTypes, hub, streams)

	registry := presence.NewRegistry(dispatcher, logger)
	evaluator := achievements.NewEvaluator(repo, logger)
	service := reputation.NewService(repo, evaluator, dispatcher, logger)

	handler, err := api.SetupRoutes(cfg, version, buildTime, api.Services{
		Store:      repo,
		DB:         database.GetConn(),
		Reputation: service,
		Badges:     evaluator,
		Notifier:   dispatcher,
		Hub:        hub,
		Streams:    streams,
		Presence:   registry,
		Tokens:     auth.NewTokens(cfg.JWTSecret, cfg.TokenDuration),
	})
	if err != nil {
		return err
	}

	// No WriteTimeout: event streams and sockets hold their response open.
	// Request contexts derive from ctx so open streams end on shutdown.
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		BaseContext:       func(net.Listener) context.Context { return ctx },
		ReadHeaderTimeout: cfg.APITimeout,
		ReadTimeout:       cfg.APITimeout,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return pool.Run(gctx)
	})
	g.Go(func() error {
		logger.Info("server starting", "addr", cfg.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")

		// Give outstanding requests 30 seconds to complete
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
