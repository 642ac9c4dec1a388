package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/m3rciful/taskbot/core/logger"
)

const namespace = "taskbot"

var (
	eventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dispatch",
			Name:      "events_total",
			Help:      "Incoming chat events by kind and routing outcome",
		},
		[]string{"kind", "outcome"},
	)

	handlerDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "dispatch",
			Name:      "handler_duration_seconds",
			Help:      "Time spent in a route handler, lock wait excluded",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10),
		},
		[]string{"route", "status"},
	)

	lockWait = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "dispatch",
			Name:      "user_lock_wait_seconds",
			Help:      "Time an event waited for the previous event of the same user",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		},
	)

	storeRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fsm",
			Name:      "store_retries_total",
			Help:      "Store writes retried after a transient failure",
		},
		[]string{"op"},
	)

	storeFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "fsm",
			Name:      "store_failures_total",
			Help:      "Store operations that failed after every retry",
		},
		[]string{"op"},
	)

	cachedRecords = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "fsm",
			Name:      "cached_records",
			Help:      "Records held in the engine cache",
		},
	)

	updatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "telegram",
			Name:      "updates_total",
			Help:      "Telegram updates by kind and handling status",
		},
		[]string{"kind", "status"},
	)

	updateDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "telegram",
			Name:      "update_duration_seconds",
			Help:      "Time from update receipt to the end of its handling",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		},
		[]string{"kind"},
	)

	rateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "telegram",
			Name:      "rate_limited_total",
			Help:      "Updates dropped by the per-user rate limit",
		},
	)

	outboundTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "outbound",
			Name:      "calls_total",
			Help:      "Outbound chat API calls by action and status",
		},
		[]string{"action", "status"},
	)
)

// RecordEvent counts an incoming event. outcome is matched, dropped or failed.
func RecordEvent(kind, outcome string) {
	eventsTotal.WithLabelValues(kind, outcome).Inc()
}

// RecordHandler observes the duration of one handler run.
func RecordHandler(route string, err error, took time.Duration) {
	handlerDuration.WithLabelValues(route, logger.Status(err)).Observe(took.Seconds())
}

// RecordLockWait observes how long an event queued behind the same user.
func RecordLockWait(took time.Duration) {
	lockWait.Observe(took.Seconds())
}

// RecordStoreRetry counts one retried store write.
func RecordStoreRetry(op string) {
	storeRetries.WithLabelValues(op).Inc()
}

// RecordStoreFailure counts a store operation that gave up.
func RecordStoreFailure(op string) {
	storeFailures.WithLabelValues(op).Inc()
}

// SetCachedRecords publishes the engine cache size.
func SetCachedRecords(n int) {
	cachedRecords.Set(float64(n))
}

// RecordUpdate observes one handled Telegram update.
func RecordUpdate(kind string, err error, took time.Duration) {
	updatesTotal.WithLabelValues(kind, logger.Status(err)).Inc()
	updateDuration.WithLabelValues(kind).Observe(took.Seconds())
}

// RecordRateLimited counts an update dropped by the rate limiter.
func RecordRateLimited() {
	rateLimited.Inc()
}

// RecordOutbound counts an outbound call such as send or delete.
func RecordOutbound(action string, err error) {
	outboundTotal.WithLabelValues(action, logger.Status(err)).Inc()
}

// Serve exposes /metrics on addr until ctx is done.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "metrics", "metrics.listen", slog.String("listen", addr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
