// Package metrics defines the Prometheus collectors of the trip planner API.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

// Collector owns a private registry and every metric the API exports.
type Collector struct {
	reg *prometheus.Registry

	DraftOps      *prometheus.CounterVec // op, result: ok|rejected|not_found|error
	ActiveDrafts  prometheus.Gauge
	DraftsExpired prometheus.Counter

	EventsPublished  prometheus.Counter
	EventPublishErrs prometheus.Counter
	NATSConnected    prometheus.Gauge
	HTTPRequests     *prometheus.CounterVec   // method, route, status
	HTTPDuration     *prometheus.HistogramVec // method, route
}

// New builds a Collector with Go runtime and process collectors registered.
func New() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		reg: reg,
		DraftOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "planner_draft_operations_total",
			Help: "Draft editor operations by operation and result.",
		}, []string{"op", "result"}),
		ActiveDrafts: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "planner_active_drafts",
			Help: "Drafts currently held in memory.",
		}),
		DraftsExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "planner_drafts_expired_total",
			Help: "Drafts dropped after sitting idle past their TTL.",
		}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "planner_events_published_total",
			Help: "Draft events published to NATS.",
		}),
		EventPublishErrs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "planner_event_publish_errors_total",
			Help: "Draft events that failed to publish.",
		}),
		NATSConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "planner_nats_connected",
			Help: "1 when the NATS connection is up.",
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "planner_http_requests_total",
			Help: "HTTP requests by method, route pattern, and status.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "planner_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route pattern.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.DraftOps, c.ActiveDrafts, c.DraftsExpired,
		c.EventsPublished, c.EventPublishErrs, c.NATSConnected,
		c.HTTPRequests, c.HTTPDuration,
	)
	return c
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{Registry: c.reg})
}

// ObserveDraftOp counts one draft operation, classified by its error.
func (c *Collector) ObserveDraftOp(op string, err error) {
	c.DraftOps.WithLabelValues(op, resultLabel(err)).Inc()
}

// SetActiveDrafts sets the in-memory draft gauge.
func (c *Collector) SetActiveDrafts(n int) { c.ActiveDrafts.Set(float64(n)) }

// DraftsExpiredAdd counts drafts removed by the idle sweeper.
func (c *Collector) DraftsExpiredAdd(n int) { c.DraftsExpired.Add(float64(n)) }

func (c *Collector) EventPublishedInc()  { c.EventsPublished.Inc() }
func (c *Collector) EventPublishErrInc() { c.EventPublishErrs.Inc() }

func (c *Collector) NATSSetConnected(connected bool) {
	if connected {
		c.NATSConnected.Set(1)
	} else {
		c.NATSConnected.Set(0)
	}
}

// ObserveHTTP records one served request. route is the chi route pattern,
// not the raw path, to keep label cardinality bounded.
func (c *Collector) ObserveHTTP(method, route string, status int, d time.Duration) {
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrConflict):
		return "rejected"
	default:
		return "error"
	}
}
