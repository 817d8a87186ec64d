package monitoring

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Métriques Prometheus du service de simulation
var (
	SimulationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "simulations_total",
			Help: "Total number of simulation jobs processed",
		},
		[]string{"type", "status"},
	)

	SimulationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "simulation_duration_seconds",
			Help:    "Duration of simulation jobs",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"type"},
	)

	RoundsSimulated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "rounds_simulated_total",
			Help: "Total number of rounds simulated across all matches",
		},
	)

	ActiveJobs = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "simulation_active_jobs",
			Help: "Number of simulation jobs currently queued or running",
		},
	)

	WorkerRestarts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "simulation_worker_restarts_total",
			Help: "Total number of simulation worker crashes",
		},
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)
)

// Metrics structure pour gérer les métriques
type Metrics struct {
	registry *prometheus.Registry
}

// NewMetrics crée une nouvelle instance de metrics
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	registry.MustRegister(SimulationsTotal)
	registry.MustRegister(SimulationDuration)
	registry.MustRegister(RoundsSimulated)
	registry.MustRegister(ActiveJobs)
	registry.MustRegister(WorkerRestarts)
	registry.MustRegister(HTTPRequestsTotal)
	registry.MustRegister(HTTPRequestDuration)

	logrus.Info("Prometheus metrics initialized")

	return &Metrics{
		registry: registry,
	}
}

// Handler retourne le handler Prometheus
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware Prometheus pour instrumenter les requêtes HTTP
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		statusCode := c.Writer.Status()

		HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(statusCode),
		).Inc()

		HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}
