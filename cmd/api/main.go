package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/shinyyama/trace-green-backend/internal/ai"
	"github.com/shinyyama/trace-green-backend/internal/config"
	"github.com/shinyyama/trace-green-backend/internal/db"
	"github.com/shinyyama/trace-green-backend/internal/events"
	"github.com/shinyyama/trace-green-backend/internal/logging"
	appmw "github.com/shinyyama/trace-green-backend/internal/middleware"
	"github.com/shinyyama/trace-green-backend/internal/server"
	"github.com/shinyyama/trace-green-backend/internal/storage"
)

// Set with -ldflags "-X main.gitSHA=... -X main.buildTime=...".
var (
	gitSHA    = "dev"
	buildTime = ""
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}
	logger, err := logging.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conn, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	if err := db.Migrate(conn); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	authMw, err := appmw.NewAuthMiddleware(ctx, cfg.FirebaseProjectID, cfg.AdminUIDs, logger)
	if err != nil {
		return fmt.Errorf("init firebase auth: %w", err)
	}

	publisher := events.New(cfg.KafkaBrokers, cfg.KafkaTopic)
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("close publisher", zap.Error(err))
		}
	}()

	var uploader storage.Uploader = storage.Disabled{}
	if cfg.GCSBucket != "" {
		gcs, err := storage.NewGCSUploader(ctx, cfg.GCSBucket, cfg.GCSCredentialsFile)
		if err != nil {
			return fmt.Errorf("init storage: %w", err)
		}
		defer gcs.Close()
		uploader = gcs
	} else {
		logger.Info("GCS_BUCKET is not set; image uploads disabled")
	}

	tips, err := ai.NewTipClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, logger)
	if err != nil {
		return fmt.Errorf("init tip client: %w", err)
	}

	appmw.InitPrometheus()

	limiter := appmw.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go limiter.Cleanup(ctx)

	srv := server.New(server.Deps{
		DB:          conn,
		Config:      cfg,
		Logger:      logger,
		Auth:        authMw,
		RateLimiter: limiter,
		Publisher:   publisher,
		Uploader:    uploader,
		Tips:        tips,
		SHA:         gitSHA,
		BuildTime:   buildTime,
	})

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", zap.String("addr", addr), zap.String("git_sha", gitSHA))
		errCh <- srv.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
