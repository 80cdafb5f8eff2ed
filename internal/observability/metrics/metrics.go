package metrics

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

type Outcome string

const (
	Success Outcome = "success"
	Error   Outcome = "error"
)

func (O Outcome) String() string {
	return string(O)
}

var (
	once                         sync.Once
	metricsRouter                *chi.Mux
	httpRequestDurationHistogram *prometheus.HistogramVec
	bridgeTransitionCounter      *prometheus.CounterVec
	chainCallDurationHistogram   *prometheus.HistogramVec
	queueMessageCounter          *prometheus.CounterVec
)

func init() {
	registerMetrics()
}

// Init starts serving the registered metrics on the given port.
func Init(metricsPort int) {
	once.Do(func() {
		initMetricsRouter(metricsPort)
	})
}

// initMetricsRouter initializes the metrics router.
func initMetricsRouter(metricsPort int) {
	metricsRouter = chi.NewRouter()
	metricsRouter.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	go func() {
		metricsAddr := fmt.Sprintf(":%d", metricsPort)
		err := http.ListenAndServe(metricsAddr, metricsRouter)
		if err != nil {
			log.Fatal().Err(err).Msgf("error starting metrics server on %s", metricsAddr)
		}
	}()
}

// registerMetrics initializes and register the Prometheus metrics.
func registerMetrics() {
	defaultHistogramBucketsSeconds := []float64{0.1, 0.5, 1, 2.5, 5, 10, 30}

	httpRequestDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Histogram of http request durations in seconds.",
			Buckets: defaultHistogramBucketsSeconds,
		},
		[]string{"endpoint", "status"},
	)

	bridgeTransitionCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bridge_transitions_total",
			Help: "Count of bridge transaction status transitions by route and resulting status.",
		},
		[]string{"source_chain", "destination_chain", "status"},
	)

	chainCallDurationHistogram = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chain_adapter_call_duration_seconds",
			Help:    "Histogram of chain adapter call durations in seconds.",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
		[]string{"chain", "operation", "outcome"},
	)

	queueMessageCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "queue_messages_total",
			Help: "Count of processed queue messages by queue and outcome.",
		},
		[]string{"queue", "outcome"},
	)

	prometheus.MustRegister(
		httpRequestDurationHistogram,
		bridgeTransitionCounter,
		chainCallDurationHistogram,
		queueMessageCounter,
	)
}

// StartHttpRequestDurationTimer starts a timer to measure http request handling duration.
func StartHttpRequestDurationTimer(endpoint string) func(statusCode int) {
	startTime := time.Now()
	return func(statusCode int) {
		duration := time.Since(startTime).Seconds()
		httpRequestDurationHistogram.WithLabelValues(endpoint, fmt.Sprintf("%d", statusCode)).Observe(duration)
	}
}

func RecordBridgeTransition(sourceChain, destinationChain, status string) {
	bridgeTransitionCounter.WithLabelValues(sourceChain, destinationChain, status).Inc()
}

// StartChainCallTimer starts a timer for a call into a chain adapter.
func StartChainCallTimer(chain, operation string) func(outcome Outcome) {
	startTime := time.Now()
	return func(outcome Outcome) {
		chainCallDurationHistogram.WithLabelValues(chain, operation, outcome.String()).
			Observe(time.Since(startTime).Seconds())
	}
}

func RecordQueueMessage(queue string, outcome Outcome) {
	queueMessageCounter.WithLabelValues(queue, outcome.String()).Inc()
}
