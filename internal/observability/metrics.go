package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	httpDurationHistogram *prometheus.HistogramVec
	paymentOutcomeCounter *prometheus.CounterVec
	processedCacheCounter *prometheus.CounterVec
	balanceMismatchGauge  prometheus.Gauge
	workerRunCounter      *prometheus.CounterVec
)

// Init registers all Prometheus collectors.
func Init() {
	registerOnce.Do(func() {
		httpDurationHistogram = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"})

		paymentOutcomeCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_payment_ingestions_total",
			Help: "Bank payment notifications by ingestion outcome",
		}, []string{"outcome"})

		processedCacheCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_processed_cache_lookups_total",
			Help: "Processed-operation cache lookups by result",
		}, []string{"result"})

		balanceMismatchGauge = prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ledger_balance_mismatches",
			Help: "Organizations whose balance differs from the sum of their balance log at the last reconciliation",
		})

		workerRunCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_runs_total",
			Help: "Background worker run outcomes",
		}, []string{"worker", "result"})

		prometheus.MustRegister(
			httpDurationHistogram,
			paymentOutcomeCounter,
			processedCacheCounter,
			balanceMismatchGauge,
			workerRunCounter,
		)
	})
}

func ObserveHTTP(method, path string, status int, duration time.Duration) {
	if httpDurationHistogram == nil {
		return
	}
	httpDurationHistogram.WithLabelValues(method, path, strconv.Itoa(status)).Observe(duration.Seconds())
}

func IncrementPaymentOutcome(outcome string) {
	if paymentOutcomeCounter == nil {
		return
	}
	paymentOutcomeCounter.WithLabelValues(outcome).Inc()
}

func IncrementProcessedCache(result string) {
	if processedCacheCounter == nil {
		return
	}
	processedCacheCounter.WithLabelValues(result).Inc()
}

func SetBalanceMismatches(n int) {
	if balanceMismatchGauge == nil {
		return
	}
	balanceMismatchGauge.Set(float64(n))
}

func IncrementWorkerRun(worker, result string) {
	if workerRunCounter == nil {
		return
	}
	workerRunCounter.WithLabelValues(worker, result).Inc()
}
