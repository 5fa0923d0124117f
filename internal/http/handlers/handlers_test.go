package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fasthttp/router"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"eventsink/internal/events"
	appmw "eventsink/internal/http/middleware"
)

type stubKeys map[string]string

func (s stubKeys) SourceForKey(_ context.Context, key string) (string, error) {
	return s[key], nil
}

type stubEvents struct {
	mu   sync.Mutex
	recs []events.Record
}

func (s *stubEvents) PutEvent(_ context.Context, rec events.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recs = append(s.recs, rec)
	return nil
}

func (s *stubEvents) QueryDay(_ context.Context, tsDay int64) ([]events.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []events.Record
	for _, r := range s.recs {
		if r.TsDay == tsDay {
			out = append(out, r)
		}
	}
	return out, nil
}

var fixedNow = time.UnixMilli(1_700_000_000_123).UTC()

type testServer struct {
	handler fasthttp.RequestHandler
	reg     *prometheus.Registry
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc, err := events.NewService(stubKeys{"K1": "svc1"}, &stubEvents{}, logger)
	require.NoError(t, err)
	svc.Writer.Now = func() time.Time { return fixedNow }

	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	r := router.New()
	Register(r, svc, m, reg, logger)
	return &testServer{
		handler: appmw.RequestID(logger)(appmw.RequestLogger(logger)(r.Handler)),
		reg:     reg,
	}
}

func (s *testServer) do(method, uri string, headers map[string]string, body string) *fasthttp.RequestCtx {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(uri)
	for k, v := range headers {
		ctx.Request.Header.Set(k, v)
	}
	if body != "" {
		ctx.Request.SetBodyString(body)
	}
	s.handler(ctx)
	return ctx
}

// counter reads the value of a status-labelled counter from the registry.
func (s *testServer) counter(t *testing.T, name, status string) float64 {
	t.Helper()
	mfs, err := s.reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "status" && l.GetValue() == status {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestSubmitAndQueryOverHTTP(t *testing.T) {
	s := newTestServer(t)

	ctx := s.do(fasthttp.MethodPost, "/v1/events",
		map[string]string{"Authorization": "Bearer K1"},
		`{"type":"click","src":"svc1","data":{"x":1}}`)
	assert.Equal(t, fasthttp.StatusAccepted, ctx.Response.StatusCode())
	assert.Equal(t, "\n", string(ctx.Response.Body()))
	assert.NotEmpty(t, ctx.Response.Header.Peek(appmw.RequestIDHeader))

	ctx = s.do(fasthttp.MethodGet, "/v1/events?ts_day=1699920000000", nil, "")
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Equal(t, "application/json", string(ctx.Response.Header.ContentType()))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "click", got[0]["type"])
	assert.Equal(t, "svc1", got[0]["src"])
	assert.EqualValues(t, 1699920000000, got[0]["ts_day"])
	assert.EqualValues(t, 1700000000123, got[0]["ts"])
	assert.Equal(t, map[string]any{"x": float64(1)}, got[0]["data"])

	assert.Equal(t, 1.0, s.counter(t, "eventsink_submissions_total", "202"))
	assert.Equal(t, 1.0, s.counter(t, "eventsink_queries_total", "200"))
}

func TestSubmitBase64TransferEncoding(t *testing.T) {
	s := newTestServer(t)
	body := base64.StdEncoding.EncodeToString([]byte(`{"type":"view","src":"svc1","data":null}`))

	ctx := s.do(fasthttp.MethodPost, "/v1/events", map[string]string{
		"Authorization":             "K1",
		"Content-Transfer-Encoding": "base64",
	}, body)
	assert.Equal(t, fasthttp.StatusAccepted, ctx.Response.StatusCode())
}

func TestSubmitFailuresOverHTTP(t *testing.T) {
	s := newTestServer(t)

	cases := []struct {
		name    string
		headers map[string]string
		body    string
		status  int
		want    string
	}{
		{"no auth", nil, `{}`, fasthttp.StatusBadRequest, "No Authorization header\n"},
		{"unknown key", map[string]string{"Authorization": "nope"}, `{}`, fasthttp.StatusBadRequest, "Not authorized to submit events for any src\n"},
		{"empty body", map[string]string{"Authorization": "K1"}, "", fasthttp.StatusBadRequest, "Missing event body\n"},
		{"wrong src", map[string]string{"Authorization": "K1"}, `{"type":"t","src":"other","data":1}`, fasthttp.StatusBadRequest, "Unauthorized src\n"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ctx := s.do(fasthttp.MethodPost, "/v1/events", c.headers, c.body)
			assert.Equal(t, c.status, ctx.Response.StatusCode())
			assert.Equal(t, c.want, string(ctx.Response.Body()))
			assert.Equal(t, "text/plain; charset=utf-8", string(ctx.Response.Header.ContentType()))
		})
	}
	assert.Equal(t, 4.0, s.counter(t, "eventsink_submissions_total", "400"))
}

func TestQueryBadTsDayOverHTTP(t *testing.T) {
	s := newTestServer(t)
	for _, uri := range []string{"/v1/events", "/v1/events?ts_day=abc", "/v1/events?ts_day=1&ts_day=2"} {
		ctx := s.do(fasthttp.MethodGet, uri, nil, "")
		assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode(), uri)
		assert.Equal(t, "Bad ts_day query string arg\n", string(ctx.Response.Body()), uri)
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	s := newTestServer(t)
	ctx := s.do(fasthttp.MethodGet, "/healthz", map[string]string{appmw.RequestIDHeader: "abc-123"}, "")
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Equal(t, "ok", string(ctx.Response.Body()))
	assert.Equal(t, "abc-123", string(ctx.Response.Header.Peek(appmw.RequestIDHeader)))
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.do(fasthttp.MethodGet, "/v1/events?ts_day=0", nil, "")

	ctx := s.do(fasthttp.MethodGet, "/metrics", nil, "")
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	body := string(ctx.Response.Body())
	assert.Contains(t, body, `eventsink_queries_total{status="200"} 1`)
	assert.Contains(t, body, "eventsink_request_duration_seconds")

	ctx = s.do(fasthttp.MethodGet, "/metrics?name[]=eventsink_queries_total", nil, "")
	body = string(ctx.Response.Body())
	assert.Contains(t, body, "eventsink_queries_total")
	assert.False(t, strings.Contains(body, "eventsink_request_duration_seconds"))
}
