package middleware

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/valyala/fasthttp"

	httpctx "eventsink/internal/http/ctx"
)

func TestRequestIDGeneratesAndEchoes(t *testing.T) {
	var seen string
	h := RequestID(slog.Default())(func(ctx *fasthttp.RequestCtx) {
		seen, _ = httpctx.RequestIDFromCtx(ctx)
	})

	ctx := &fasthttp.RequestCtx{}
	h(ctx)
	assert.Len(t, seen, 36)
	assert.Equal(t, seen, string(ctx.Response.Header.Peek(RequestIDHeader)))

	ctx = &fasthttp.RequestCtx{}
	ctx.Request.Header.Set(RequestIDHeader, "from-caller")
	h(ctx)
	assert.Equal(t, "from-caller", seen)

	ctx = &fasthttp.RequestCtx{}
	ctx.Request.Header.Set(RequestIDHeader, strings.Repeat("x", 129))
	h(ctx)
	assert.Len(t, seen, 36)
}

func TestRequestLoggerUsesRequestScopedLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	h := RequestID(logger)(RequestLogger(logger)(func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusAccepted)
	}))

	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(fasthttp.MethodPost)
	ctx.Request.SetRequestURI("/v1/events")
	ctx.Request.Header.Set(RequestIDHeader, "rid-1")
	h(ctx)

	out := buf.String()
	assert.Contains(t, out, "request_id=rid-1")
	assert.Contains(t, out, "method=POST")
	assert.Contains(t, out, "path=/v1/events")
	assert.Contains(t, out, "status=202")
}
