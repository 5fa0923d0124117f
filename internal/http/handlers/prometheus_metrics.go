package handlers

import (
	"bytes"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"github.com/valyala/fasthttp"
)

const (
	routeSubmit = "submit"
	routeQuery  = "query"
)

// Metrics counts submissions and queries by response status.
type Metrics struct {
	submissions *prometheus.CounterVec
	queries     *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

// NewMetrics creates the service metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "eventsink",
				Name:      "submissions_total",
				Help:      "Total number of event submissions by response status.",
			},
			[]string{"status"},
		),
		queries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "eventsink",
				Name:      "queries_total",
				Help:      "Total number of day bucket queries by response status.",
			},
			[]string{"status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "eventsink",
				Name:      "request_duration_seconds",
				Help:      "Histogram of submit and query handling durations in seconds.",
				Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"route"},
		),
	}
	reg.MustRegister(m.submissions, m.queries, m.duration)
	return m
}

func (m *Metrics) observe(route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	code := strconv.Itoa(status)
	switch route {
	case routeSubmit:
		m.submissions.WithLabelValues(code).Inc()
	case routeQuery:
		m.queries.WithLabelValues(code).Inc()
	}
	m.duration.WithLabelValues(route).Observe(d.Seconds())
}

// MetricsHandler serves the gathered metrics in the text exposition format.
// Repeated name[] query arguments restrict the output to those families.
func MetricsHandler(g prometheus.Gatherer) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		metricFamilies, err := g.Gather()
		if err != nil {
			ctx.SetStatusCode(fasthttp.StatusInternalServerError)
			ctx.SetBodyString("failed to gather metrics")
			return
		}

		names := make(map[string]bool)
		for _, n := range ctx.QueryArgs().PeekMulti("name[]") {
			names[string(n)] = true
		}
		filtered := make([]*dto.MetricFamily, 0, len(metricFamilies))
		for _, mf := range metricFamilies {
			if len(names) > 0 && !names[mf.GetName()] {
				continue
			}
			filtered = append(filtered, mf)
		}

		var buf bytes.Buffer
		encoder := expfmt.NewEncoder(&buf, expfmt.FmtText)
		for _, mf := range filtered {
			if err := encoder.Encode(mf); err != nil {
				ctx.SetStatusCode(fasthttp.StatusInternalServerError)
				ctx.SetBodyString("failed to encode metrics")
				return
			}
		}

		ctx.SetContentType(string(expfmt.FmtText))
		ctx.Response.Header.Set("Cache-Control", "no-store")
		ctx.SetBody(buf.Bytes())
	}
}
