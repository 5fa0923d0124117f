package middleware

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	httpctx "eventsink/internal/http/ctx"
)

const RequestIDHeader = "X-Request-ID"

// RequestID tags each request with an id, reusing the caller's X-Request-ID
// when present, and stores a logger carrying it on the context.
func RequestID(logger *slog.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			id := string(ctx.Request.Header.Peek(RequestIDHeader))
			if id == "" || len(id) > 128 {
				id = uuid.NewString()
			}
			httpctx.SetRequestID(ctx, id)
			httpctx.SetLogger(ctx, logger.With("request_id", id))
			ctx.Response.Header.Set(RequestIDHeader, id)
			next(ctx)
		}
	}
}
