package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	httpadapter "github.com/couchcryptid/rtrwh-assessment-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/rtrwh-assessment-service/internal/adapter/kafka"
	"github.com/couchcryptid/rtrwh-assessment-service/internal/app"
	"github.com/couchcryptid/rtrwh-assessment-service/internal/assessment"
	"github.com/couchcryptid/rtrwh-assessment-service/internal/config"
	"github.com/couchcryptid/rtrwh-assessment-service/internal/observability"
	"github.com/couchcryptid/rtrwh-assessment-service/internal/publish"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	// Assessment record publishing (feature-flagged via KAFKA_ENABLED).
	var (
		opts      []assessment.Option
		publisher *publish.Publisher
		writer    *kafkaadapter.Writer
		ready     httpadapter.ReadinessChecker
	)
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = publish.New(writer, logger, metrics, publish.Options{
			BatchSize:     cfg.PublishBatchSize,
			FlushInterval: cfg.PublishFlushInterval,
			QueueSize:     cfg.PublishQueueSize,
		})
		opts = append(opts, assessment.WithRecorder(publisher))
		ready = publisher
		logger.Info("assessment publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	} else {
		logger.Info("assessment publishing disabled")
	}

	core, err := app.Build(cfg, logger, metrics, opts...)
	if err != nil {
		logger.Error("failed to build assessment core", "error", err)
		os.Exit(1)
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, httpadapter.Deps{
		Service: core.Service,
		Proxy:   core.NASA,
		Ready:   ready,
		Info:    httpadapter.Info{Name: "rtrwh-assessment-service", Version: version, Environment: cfg.Environment},
	}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if publisher != nil {
		g.Go(func() error { return publisher.Run(gctx) })
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("service error", "error", err)
	}

	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
