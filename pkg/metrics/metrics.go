package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

var (
	// ResolveDuration observes how long a single tweet resolution takes,
	// nested levels included.
	ResolveDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "qwitter_tweet_resolve_duration_seconds",
		Help:    "Time spent resolving a single tweet view.",
		Buckets: prometheus.DefBuckets,
	})

	// FeedBuilds counts notification feed builds by outcome.
	FeedBuilds = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "qwitter_notification_feed_builds_total",
		Help: "Notification feed builds.",
	}, []string{"outcome"})

	// DroppedEvents counts notification events dropped during projection.
	DroppedEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "qwitter_notification_events_dropped_total",
		Help: "Notification events omitted from the feed projection.",
	}, []string{"reason"})
)

// ObserveResolve records one resolution's duration from its start time.
func ObserveResolve(start time.Time) {
	ResolveDuration.Observe(time.Since(start).Seconds())
}

// Serve exposes /metrics on its own port. Blocks; run in a goroutine.
func Serve(port string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	zap.S().Infow("metrics server listening", "port", port)
	return http.ListenAndServe(":"+port, mux)
}
