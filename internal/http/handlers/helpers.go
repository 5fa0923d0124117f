package handlers

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/valyala/fasthttp"

	"eventsink/internal/events"
	httpctx "eventsink/internal/http/ctx"
)

var base64Encoding = []byte("base64")

// toRequest converts a fasthttp request into the service's request shape.
// A Content-Transfer-Encoding of base64 marks the body as transport encoded.
func toRequest(ctx *fasthttp.RequestCtx) events.Request {
	headers := make(map[string]string)
	ctx.Request.Header.VisitAll(func(k, v []byte) {
		headers[strings.ToLower(string(k))] = string(v)
	})
	return events.Request{
		Headers:         headers,
		Body:            string(ctx.PostBody()),
		IsBase64Encoded: bytes.EqualFold(bytes.TrimSpace(ctx.Request.Header.Peek("Content-Transfer-Encoding")), base64Encoding),
		RawQueryString:  string(ctx.URI().QueryString()),
	}
}

func requestContext(ctx *fasthttp.RequestCtx, logger *slog.Logger) context.Context {
	return events.WithLogger(ctx, httpctx.LoggerFromCtx(ctx, logger))
}

func writeResponse(ctx *fasthttp.RequestCtx, resp events.Response) {
	ctx.SetStatusCode(resp.StatusCode)
	if resp.StatusCode == http.StatusOK {
		ctx.SetContentType("application/json")
	} else {
		ctx.SetContentType("text/plain; charset=utf-8")
	}
	ctx.SetBodyString(resp.Body)
}
