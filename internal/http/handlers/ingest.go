package handlers

import (
	"log/slog"
	"time"

	"github.com/valyala/fasthttp"

	"eventsink/internal/events"
)

// IngestHandler accepts one event submission. Authorization, body decoding,
// validation and storage all happen in the service so their order is fixed.
func IngestHandler(svc *events.Service, m *Metrics, logger *slog.Logger) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		start := time.Now()
		resp := svc.Submit(requestContext(ctx, logger), toRequest(ctx))
		writeResponse(ctx, resp)
		m.observe(routeSubmit, resp.StatusCode, time.Since(start))
	}
}

// EventsHandler returns the events of one day bucket. It is not authenticated.
func EventsHandler(svc *events.Service, m *Metrics, logger *slog.Logger) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		start := time.Now()
		resp := svc.Query(requestContext(ctx, logger), toRequest(ctx))
		writeResponse(ctx, resp)
		m.observe(routeQuery, resp.StatusCode, time.Since(start))
	}
}
