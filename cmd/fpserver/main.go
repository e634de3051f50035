// Command fpserver is a small demonstration HTTP service that hosts the
// fingerprint index: POST /v1/fingerprints to insert a record, POST
// /v1/search to query it, GET /healthz for liveness and GET /metrics
// for Prometheus scraping. It follows the teacher's cmd/server
// assembly pattern (gin.New, not gin.Default, with middleware added
// explicitly) scoped down to these four routes — no auth layer, per
// the Non-goals around transport hardening.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/pdtgct/music-fingerprint/internal/config"
	"github.com/pdtgct/music-fingerprint/internal/logger"
	"github.com/pdtgct/music-fingerprint/internal/metrics"
	"github.com/pdtgct/music-fingerprint/internal/nodecache"
	"github.com/pdtgct/music-fingerprint/internal/rtree"
	"github.com/pdtgct/music-fingerprint/internal/store"
	"github.com/pdtgct/music-fingerprint/internal/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "fpserver: config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "fpserver: logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()
	logger.Log.Info("=== fpserver starting ===")

	metrics.Initialize()

	var tracerProvider interface{ Shutdown(context.Context) error }
	if cfg.OTLPEndpoint != "" {
		tp, err := telemetry.InitTracer(telemetry.Config{
			ServiceName:  "fpserver",
			Environment:  envOrDefault("FP_ENVIRONMENT", "development"),
			OTLPEndpoint: cfg.OTLPEndpoint,
			Enabled:      true,
			SamplingRate: 1.0,
		})
		if err != nil {
			logger.Log.Warn("failed to initialize tracing", zap.Error(err))
		} else if tp != nil {
			tracerProvider = tp
			defer func() {
				if err := tracerProvider.Shutdown(context.Background()); err != nil {
					logger.Log.Error("failed to shut down tracer provider", zap.Error(err))
				}
			}()
		}
	}

	db, err := store.Open(cfg)
	if err != nil {
		logger.Log.Fatal("failed to open page store", zap.Error(err))
	}
	pageStore := store.NewGormPageStore(db)

	var treeOpts []rtree.Option
	if cfg.RedisAddr != "" {
		cache, err := nodecache.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Log.Warn("failed to connect to node cache, continuing without it", zap.Error(err))
		} else {
			treeOpts = append(treeOpts, rtree.WithNodeCache(cache))
		}
	}

	ctx := context.Background()
	tree, err := rtree.New(ctx, pageStore, treeOpts...)
	if err != nil {
		logger.Log.Fatal("failed to open tree", zap.Error(err))
	}
	defer tree.Close(ctx)

	h := &handlers{tree: tree}
	r := newRouter(h)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	go func() {
		logger.Log.Info("listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("graceful shutdown failed", zap.Error(err))
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
