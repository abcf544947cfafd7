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

	"github.com/jeremyjsx/quickfacts/internal/config"
	"github.com/jeremyjsx/quickfacts/internal/db"
	"github.com/jeremyjsx/quickfacts/internal/events"
	"github.com/jeremyjsx/quickfacts/internal/handlers"
	"github.com/jeremyjsx/quickfacts/internal/lifecycle"
	"github.com/jeremyjsx/quickfacts/internal/media"
	"github.com/jeremyjsx/quickfacts/internal/metrics"
	"github.com/jeremyjsx/quickfacts/internal/middleware"
	"github.com/jeremyjsx/quickfacts/internal/posts"
	"github.com/jeremyjsx/quickfacts/internal/storage"
)

func main() {
	cfg := config.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	missing, err := cfg.Validate()
	if err != nil {
		logger.Error("invalid configuration", "missing", missing, "error", err)
		os.Exit(1)
	}
	if len(missing) > 0 {
		logger.Warn("optional configuration missing, related features disabled", "missing", missing)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	startCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	conn, err := db.Open(startCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer conn.Close()

	health := &handlers.HealthDeps{DB: conn}
	var store storage.Storage
	if cfg.S3Bucket != "" {
		client, err := storage.NewS3Client(ctx, cfg.AWSRegion, cfg.S3Endpoint)
		if err != nil {
			logger.Error("failed to create S3 client", "error", err)
			os.Exit(1)
		}
		s3Store := storage.NewS3Storage(client, cfg.S3Bucket)
		store = s3Store
		health.Storage = s3Store
	}
	host := media.NewS3Host(store, media.S3Config{
		Bucket:        cfg.S3Bucket,
		Region:        cfg.AWSRegion,
		PublicBaseURL: cfg.MediaPublicBaseURL,
		DefaultFolder: cfg.MediaFolder,
	}, logger)

	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.RabbitMQURL != "" {
		rmq, err := events.NewRabbitMQPublisher(cfg.RabbitMQURL)
		if err != nil {
			logger.Warn("rabbitmq unavailable, post.published events disabled", "error", err)
		} else {
			defer rmq.Close()
			publisher = rmq
		}
	}

	m := metrics.New()
	repo := posts.NewPostgresRepository(conn)
	svc := posts.NewService(repo, publisher, logger)

	engine := lifecycle.New(repo, publisher, logger,
		lifecycle.WithInterval(cfg.SchedulerInterval),
		lifecycle.WithMetrics(m),
	)
	if cfg.SchedulerEnabled {
		engine.Start(ctx)
	} else {
		logger.Info("scheduled post worker disabled")
	}

	debug := !cfg.IsProduction()
	mux := handlers.Routes(handlers.RouterDeps{
		Posts:              handlers.NewPostsHandler(svc, logger, debug),
		Uploads:            handlers.NewUploadsHandler(host, m, logger, debug),
		Health:             health,
		Metrics:            m.Handler(),
		UploadRateLimitRPM: cfg.UploadRateLimitRPM,
	})

	server := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: middleware.Chain(mux,
			middleware.RequestID,
			middleware.Recover(logger),
			middleware.Logging(logger, m),
			middleware.CORS(cfg.FrontendOrigins),
		),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server started", "port", cfg.Port, "env", cfg.Env)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("server failed", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
	engine.Stop()
	logger.Info("server stopped")
}
