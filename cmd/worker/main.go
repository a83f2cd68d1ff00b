package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/project-tktt/warn-crawler/internal/common/indexer"
	"github.com/project-tktt/warn-crawler/internal/config"
	"github.com/project-tktt/warn-crawler/internal/metrics"
	"github.com/project-tktt/warn-crawler/internal/module/worker"
	"github.com/project-tktt/warn-crawler/internal/pkg/logger"
	"github.com/project-tktt/warn-crawler/internal/queue"
	"github.com/redis/go-redis/v9"
)

// drainTimeout bounds how long in-flight batches may take after a signal
const drainTimeout = 30 * time.Second

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal("redis connection failed", "addr", cfg.Redis.Addr, "error", err)
	}

	stores, closeStores, err := indexer.Open(ctx, indexer.Targets{
		PostgresURL:   cfg.Postgres.ConnectionString,
		PostgresTable: cfg.Postgres.TableName,
		ESAddresses:   cfg.Elasticsearch.Addresses,
		ESIndex:       cfg.Elasticsearch.Index,
	}, log)
	if err != nil {
		log.Fatal("open indexers", "error", err)
	}
	defer closeStores()

	reg := metrics.NewRegistry()
	if cfg.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", reg.Handler())
		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server", "error", err)
			}
		}()
		defer srv.Close()
	}

	w := worker.NewWorker(
		queue.NewConsumer(rdb, cfg.Redis.NoticeQueue, 5*time.Second),
		stores,
		worker.Config{Concurrency: cfg.Worker.Concurrency, BatchSize: cfg.Worker.BatchSize},
		log,
	).WithMetrics(reg)

	log.Info("starting WARN notice worker", "queue", cfg.Redis.NoticeQueue, "redis", cfg.Redis.Addr)
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	<-ctx.Done()
	log.Info("shutdown signal received, draining")

	select {
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Error("worker stopped", "error", err)
		}
		log.Info("graceful shutdown complete")
	case <-time.After(drainTimeout):
		log.Warn("shutdown timeout, forcing exit")
	}
}
