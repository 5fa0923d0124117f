package handlers

import (
	"log/slog"

	"github.com/fasthttp/router"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/valyala/fasthttp"

	"eventsink/internal/events"
)

// Register mounts the service routes on r.
func Register(r *router.Router, svc *events.Service, m *Metrics, g prometheus.Gatherer, logger *slog.Logger) {
	r.GET("/healthz", func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusOK)
		ctx.SetBodyString("ok")
	})
	r.GET("/metrics", MetricsHandler(g))

	r.POST("/v1/events", IngestHandler(svc, m, logger))
	r.GET("/v1/events", EventsHandler(svc, m, logger))
}
