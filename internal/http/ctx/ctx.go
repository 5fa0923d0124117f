package ctx

import (
	"log/slog"

	"github.com/valyala/fasthttp"
)

const (
	RequestIDKey = "requestID"
	LoggerKey    = "logger"
)

func SetRequestID(ctx *fasthttp.RequestCtx, id string) {
	ctx.SetUserValue(RequestIDKey, id)
}

func RequestIDFromCtx(ctx *fasthttp.RequestCtx) (string, bool) {
	v := ctx.UserValue(RequestIDKey)
	if v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func SetLogger(ctx *fasthttp.RequestCtx, logger *slog.Logger) {
	ctx.SetUserValue(LoggerKey, logger)
}

// LoggerFromCtx returns the request-scoped logger, or fallback when none is set.
func LoggerFromCtx(ctx *fasthttp.RequestCtx, fallback *slog.Logger) *slog.Logger {
	if l, ok := ctx.UserValue(LoggerKey).(*slog.Logger); ok && l != nil {
		return l
	}
	return fallback
}
