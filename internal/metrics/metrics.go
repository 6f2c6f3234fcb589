package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "laundry_booking_http_requests_total",
			Help: "Total number of HTTP requests by method, route, and status code.",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "laundry_booking_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds by method and route.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	bookingsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "laundry_booking_bookings_total",
			Help: "Booking attempts by outcome.",
		},
		[]string{"outcome"},
	)

	slotsGeneratedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "laundry_booking_generation_runs_total",
		Help: "Completed daily slot generation runs.",
	})
)

// ActiveCounter is the subset of the store needed to collect reservation
// metrics.
type ActiveCounter interface {
	CountActiveByMachine(ctx context.Context) (map[string]int, error)
}

// reservationCollector queries the database on each scrape to report
// active reservations broken down by machine.
type reservationCollector struct {
	store ActiveCounter
	desc  *prometheus.Desc
}

func (c *reservationCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

func (c *reservationCollector) Collect(ch chan<- prometheus.Metric) {
	counts, err := c.store.CountActiveByMachine(context.Background())
	if err != nil {
		ch <- prometheus.NewInvalidMetric(c.desc, err)
		return
	}
	for machine, n := range counts {
		ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(n), machine)
	}
}

// Register registers all metrics with the default Prometheus registry,
// which already carries the Go runtime and process collectors. Call once
// at startup after the store is initialised.
func Register(store ActiveCounter) {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		bookingsTotal,
		slotsGeneratedTotal,

		&reservationCollector{
			store: store,
			desc: prometheus.NewDesc(
				"laundry_booking_active_reservations",
				"Active (booked or validated) reservations per machine.",
				[]string{"machine"},
				nil,
			),
		},
	)
}

// Handler returns the /metrics endpoint handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware records request counts and latency per route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// ObserveBooking counts one booking attempt with the given outcome.
func ObserveBooking(outcome string) {
	bookingsTotal.WithLabelValues(outcome).Inc()
}

// ObserveGeneration counts one completed slot generation run.
func ObserveGeneration() {
	slotsGeneratedTotal.Inc()
}
