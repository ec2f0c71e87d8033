// Package metrics exposes Prometheus instrumentation for the HTTP server and order events.
//
// Wire it up once in the server:
//
//	app.Use(metrics.Middleware())
//	app.Get("/metrics", metrics.Handler())
package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "proshop"

var (
	// RequestDuration tracks how long each HTTP request takes, by method, route and status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// RequestTotal counts all HTTP requests.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	// RequestInFlight tracks how many requests are currently being served.
	RequestInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_in_flight",
		Help:      "Number of HTTP requests currently being served.",
	})

	// OrderEvents counts published order events by routing key and outcome.
	OrderEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "orders",
			Name:      "events_published_total",
			Help:      "Order events handed to the broker.",
		},
		[]string{"routing_key", "status"}, // "success" | "failed"
	)

	// EventsConsumed counts order events processed by the worker.
	EventsConsumed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "events_processed_total",
			Help:      "Order events processed by the worker.",
		},
		[]string{"routing_key", "status"},
	)
)

// Registry holds every collector exposed on /metrics.
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(collectors.NewGoCollector())
	Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	Registry.MustRegister(
		RequestDuration,
		RequestTotal,
		RequestInFlight,
		OrderEvents,
		EventsConsumed,
	)
}

// Outcome maps an error to the status label used by the event counters.
func Outcome(err error) string {
	if err != nil {
		return "failed"
	}
	return "success"
}

// Middleware records duration, count and in-flight requests. Errors returned further down
// the chain are passed to the app's error handler first so the recorded status is the one
// the client receives.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		RequestInFlight.Inc()
		defer RequestInFlight.Dec()

		if err := c.Next(); err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		// route pattern, not the raw path, to keep label cardinality bounded
		path := c.Route().Path
		status := strconv.Itoa(c.Response().StatusCode())
		RequestDuration.WithLabelValues(c.Method(), path, status).Observe(time.Since(start).Seconds())
		RequestTotal.WithLabelValues(c.Method(), path, status).Inc()
		return nil
	}
}

// Handler serves the Prometheus exposition page.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(Registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))
}
