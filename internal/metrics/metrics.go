package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns the service metrics. A nil *Collector records nothing.
type Collector struct {
	registry prometheus.Gatherer

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	bookingsTotal       *prometheus.CounterVec
	cancellationsTotal  *prometheus.CounterVec
	refundsTotal        *prometheus.CounterVec
	notificationsTotal  *prometheus.CounterVec
	slotCacheTotal      *prometheus.CounterVec
}

func New() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		registry: reg,
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		bookingsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "appointments_booked_total",
				Help: "Booking attempts by outcome",
			},
			[]string{"outcome"},
		),
		cancellationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cancellation_transitions_total",
				Help: "Cancellation workflow transitions",
			},
			[]string{"transition"},
		),
		refundsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "refunds_total",
				Help: "Refunds by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),
		notificationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "notifications_total",
				Help: "Notifications by kind, channel and outcome",
			},
			[]string{"kind", "channel", "outcome"},
		),
		slotCacheTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "slot_cache_lookups_total",
				Help: "Slot availability cache lookups and stale writes skipped",
			},
			[]string{"result"},
		),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		c.httpRequestsTotal,
		c.httpRequestDuration,
		c.bookingsTotal,
		c.cancellationsTotal,
		c.refundsTotal,
		c.notificationsTotal,
		c.slotCacheTotal,
	)

	return c
}

func (c *Collector) RecordHTTPRequest(method, endpoint, statusCode string, duration time.Duration) {
	if c == nil {
		return
	}
	c.httpRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	c.httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

func (c *Collector) RecordBooking(outcome string) {
	if c == nil {
		return
	}
	c.bookingsTotal.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordCancellation(transition string) {
	if c == nil {
		return
	}
	c.cancellationsTotal.WithLabelValues(transition).Inc()
}

func (c *Collector) RecordRefund(provider, outcome string) {
	if c == nil {
		return
	}
	c.refundsTotal.WithLabelValues(provider, outcome).Inc()
}

func (c *Collector) RecordNotification(kind, channel, outcome string) {
	if c == nil {
		return
	}
	c.notificationsTotal.WithLabelValues(kind, channel, outcome).Inc()
}

func (c *Collector) RecordSlotCache(result string) {
	if c == nil {
		return
	}
	c.slotCacheTotal.WithLabelValues(result).Inc()
}

// Handler exposes the collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
