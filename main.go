package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/fasthttp/router"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/valyala/fasthttp"

	"eventsink/internal/config"
	"eventsink/internal/db"
	"eventsink/internal/events"
	"eventsink/internal/http/handlers"
	appmw "eventsink/internal/http/middleware"
	"eventsink/internal/logging"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	stores, err := db.Open(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to open stores", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	defer stores.Close()

	svc, err := events.NewService(stores.Keys, stores.Events, logger)
	if err != nil {
		logger.Error("failed to build event service", "error", err)
		os.Exit(1)
	}

	metrics := handlers.NewMetrics(prometheus.DefaultRegisterer)

	r := router.New()
	handlers.Register(r, svc, metrics, prometheus.DefaultGatherer, logger)

	// Global middleware chain: request id, then request logger, then router
	handler := appmw.RequestID(logger)(appmw.RequestLogger(logger)(r.Handler))

	logger.Info("eventsink listening", "addr", cfg.ListenAddr, "driver", cfg.StoreDriver)
	if err := fasthttp.ListenAndServe(cfg.ListenAddr, handler); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
