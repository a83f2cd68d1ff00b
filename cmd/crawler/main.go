package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/project-tktt/warn-crawler/internal/common/dedup"
	"github.com/project-tktt/warn-crawler/internal/common/extractor"
	"github.com/project-tktt/warn-crawler/internal/common/fetcher"
	"github.com/project-tktt/warn-crawler/internal/common/indexer"
	"github.com/project-tktt/warn-crawler/internal/config"
	"github.com/project-tktt/warn-crawler/internal/metrics"
	"github.com/project-tktt/warn-crawler/internal/module/orchestrator"
	"github.com/project-tktt/warn-crawler/internal/module/states"
	"github.com/project-tktt/warn-crawler/internal/pkg/logger"
	"github.com/project-tktt/warn-crawler/internal/queue"
	"github.com/redis/go-redis/v9"
)

func main() {
	once := flag.Bool("once", false, "run a single cycle and exit")
	interval := flag.Duration("interval", 6*time.Hour, "time between cycles")
	only := flag.String("states", "", "comma separated jurisdictions to crawl (default all)")
	flag.Parse()

	cfg := config.Load()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("starting WARN crawler", "sink", cfg.Sink.Mode, "once", *once)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	thresholds, err := config.LoadThresholds(cfg.ThresholdsFile)
	if err != nil {
		log.Fatal("load thresholds", "error", err)
	}
	codes, err := states.ParseList(*only)
	if err != nil {
		log.Fatal("parse -states", "error", err)
	}

	reg := metrics.NewRegistry()
	if cfg.MetricsAddr != "" {
		go serveMetrics(cfg.MetricsAddr, reg, log)
	}

	f := fetcher.New(fetcher.Config{
		UserAgent:    cfg.Fetch.UserAgent,
		TextProxyURL: cfg.Fetch.TextProxyURL,
		Timeout:      cfg.Fetch.Timeout,
		Attempts:     cfg.Fetch.Attempts,
		Backoff:      cfg.Fetch.Backoff,
		HostRate:     cfg.Fetch.HostRate,
	})

	registry, err := states.NewRegistry(states.Sources(), states.Options{
		Fetcher: f,
		Collector: extractor.ExtractorConfig{
			UserAgent:  cfg.Fetch.UserAgent,
			MaxRetries: cfg.Fetch.Attempts - 1,
			MaxPages:   cfg.Fetch.MaxPages,
			Timeout:    cfg.Fetch.Timeout,
			Backoff:    cfg.Fetch.Backoff,
		},
		AggregatorCSVURL:   cfg.Fetch.AggregatorCSVURL,
		AggregatorTableURL: cfg.Fetch.AggregatorTableURL,
		NewsFeedURL:        cfg.Fetch.NewsFeedURL,
		Thresholds:         thresholds,
		Observer:           reg,
		Log:                log,
	})
	if err != nil {
		log.Fatal("build adapter registry", "error", err)
	}
	registry = registry.Filter(codes)
	log.Info("adapters registered", "count", registry.Len())

	p := &pipeline{
		orch: orchestrator.New(orchestrator.Config{
			Concurrency:    cfg.Orchestrator.Concurrency,
			AdapterTimeout: cfg.Orchestrator.AdapterTimeout,
		}, log),
		adapters: registry.Adapters(),
		metrics:  reg,
		log:      log,
	}

	if cfg.Sink.ExportPath != "" {
		p.writers = append(p.writers, indexer.NewJSONExporter(cfg.Sink.ExportPath))
	}

	switch cfg.Sink.Mode {
	case "queue":
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal("redis connection failed", "error", err)
		}
		log.Info("redis connected", "addr", cfg.Redis.Addr)
		p.tracker = dedup.NewTracker(rdb, cfg.Redis.SeenPrefix, cfg.Redis.SeenTTL)
		p.publisher = queue.NewPublisher(rdb, cfg.Redis.NoticeQueue)
	case "direct":
		fan, closeAll, err := indexer.Open(ctx, indexer.Targets{
			PostgresURL:   cfg.Postgres.ConnectionString,
			PostgresTable: cfg.Postgres.TableName,
			ESAddresses:   cfg.Elasticsearch.Addresses,
			ESIndex:       cfg.Elasticsearch.Index,
		}, log)
		if err != nil {
			log.Fatal("open indexers", "error", err)
		}
		defer closeAll()
		p.indexer = fan
	case "none":
	default:
		log.Fatal("unknown SINK_MODE", "mode", cfg.Sink.Mode)
	}

	if *once {
		if _, err := p.runOnce(ctx); err != nil {
			log.Error("run finished with sink errors", "error", err)
			log.Sync()
			os.Exit(1)
		}
		return
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		p.schedule(ctx, *interval)
	}()

	<-sigChan
	log.Info("shutdown signal received, stopping")
	cancel()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info("graceful shutdown complete")
	case <-time.After(30 * time.Second):
		log.Warn("shutdown timeout, forcing exit")
	}
}

func serveMetrics(addr string, reg *metrics.Registry, log *logger.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", reg.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	log.Info("metrics listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("metrics server", "error", err)
	}
}
