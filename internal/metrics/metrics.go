package metrics

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "nft_marketplace",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nft_marketplace",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "nft_marketplace",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	marketOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nft_marketplace",
			Subsystem: "market",
			Name:      "operations_total",
			Help:      "Marketplace workflow operations by outcome.",
		},
		[]string{"operation", "result"},
	)

	salesVolume = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "nft_marketplace",
			Subsystem: "market",
			Name:      "sales_volume_total",
			Help:      "Sum of completed sale prices in ledger units.",
		},
	)

	salesInWindow = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "nft_marketplace",
			Subsystem: "ticker",
			Name:      "sales_in_window",
			Help:      "Sales counted by the most recent ticker run.",
		},
	)

	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "nft_marketplace",
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Cache lookups by namespace and result.",
		},
		[]string{"namespace", "result"},
	)

	wsClients = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "nft_marketplace",
			Subsystem: "ws",
			Name:      "clients",
			Help:      "Connected realtime clients.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		marketOperations,
		salesVolume,
		salesInWindow,
		cacheLookups,
		wsClients,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps the provided handler with HTTP metrics collection.
// The path label is the matched chi route pattern so ids do not explode cardinality.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		path := routePattern(r)
		method := strings.ToUpper(r.Method)

		httpRequests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	})
}

// RecordOperation counts a workflow operation outcome
func RecordOperation(operation, result string) {
	marketOperations.WithLabelValues(operation, result).Inc()
}

// RecordSale adds a completed sale price to the volume counter
func RecordSale(price float64) {
	if price > 0 {
		salesVolume.Add(price)
	}
}

// SetSalesInWindow publishes the latest ticker count
func SetSalesInWindow(n int) {
	salesInWindow.Set(float64(n))
}

// RecordCacheLookup counts a cache hit or miss
func RecordCacheLookup(namespace string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheLookups.WithLabelValues(namespace, result).Inc()
}

// ClientConnected increments the realtime client gauge
func ClientConnected() { wsClients.Inc() }

// ClientDisconnected decrements the realtime client gauge
func ClientDisconnected() { wsClients.Dec() }

func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// Hijack lets websocket upgrades pass through the recorder
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}
