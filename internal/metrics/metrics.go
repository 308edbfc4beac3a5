package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal     *prometheus.CounterVec
	HTTPRequestDuration   *prometheus.HistogramVec
	HTTPActiveConnections *prometheus.GaugeVec

	// Feed metrics
	FeedFetchesTotal    *prometheus.CounterVec
	FeedFetchDuration   *prometheus.HistogramVec
	FeedStaleDiscarded  *prometheus.CounterVec
	FeedRenderDuration  *prometheus.HistogramVec
	FeedPostsLoaded     *prometheus.GaugeVec
	FeedRejectedFetches *prometheus.CounterVec

	// Engagement metrics
	EngagementActionsTotal *prometheus.CounterVec
	RemoteSyncErrors       *prometheus.CounterVec

	// Interaction store metrics
	StoreOperationDuration *prometheus.HistogramVec
	StoreOperationsTotal   *prometheus.CounterVec

	// Active sessions held by the thin service
	ActiveSessions prometheus.Gauge
}

var (
	instance *Metrics
	once     sync.Once
)

// Initialize creates and registers all Prometheus metrics
func Initialize() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			HTTPRequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "civicfeed_http_requests_total",
					Help: "Total number of HTTP requests",
				},
				[]string{"method", "path", "status"},
			),
			HTTPRequestDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "civicfeed_http_request_duration_seconds",
					Help:    "HTTP request latency in seconds",
					Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
				},
				[]string{"method", "path", "status"},
			),
			HTTPActiveConnections: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Name: "civicfeed_http_active_connections",
					Help: "Number of currently active HTTP connections",
				},
				[]string{"method", "path"},
			),

			FeedFetchesTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "civicfeed_feed_fetches_total",
					Help: "Feed page fetches by kind (refresh, load_more), mode and outcome",
				},
				[]string{"kind", "mode", "outcome"},
			),
			FeedFetchDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "civicfeed_feed_fetch_duration_seconds",
					Help:    "Time spent waiting on the feed source",
					Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
				},
				[]string{"kind", "mode"},
			),
			FeedStaleDiscarded: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "civicfeed_feed_stale_responses_total",
					Help: "Feed responses discarded because the active mode changed",
				},
				[]string{"mode"},
			),
			FeedRenderDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "civicfeed_feed_render_duration_seconds",
					Help:    "Time to score, filter and aggregate the loaded feed",
					Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
				},
				[]string{"mode"},
			),
			FeedPostsLoaded: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Name: "civicfeed_feed_posts_loaded",
					Help: "Posts held by the most recently rendered feed",
				},
				[]string{"mode"},
			),
			FeedRejectedFetches: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "civicfeed_feed_rejected_fetches_total",
					Help: "Refresh or load-more calls ignored by the paginator",
				},
				[]string{"kind", "reason"},
			),

			EngagementActionsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "civicfeed_engagement_actions_total",
					Help: "Engagement actions by kind and result (applied, duplicate, not_found)",
				},
				[]string{"action", "result"},
			),
			RemoteSyncErrors: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "civicfeed_remote_sync_errors_total",
					Help: "Failed attempts to forward a local engagement to the remote API",
				},
				[]string{"action"},
			),

			StoreOperationDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "civicfeed_store_operation_duration_seconds",
					Help:    "Interaction state store latency in seconds",
					Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
				},
				[]string{"driver", "operation"},
			),
			StoreOperationsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "civicfeed_store_operations_total",
					Help: "Interaction state store operations by outcome",
				},
				[]string{"driver", "operation", "status"},
			),

			ActiveSessions: promauto.NewGauge(
				prometheus.GaugeOpts{
					Name: "civicfeed_active_sessions",
					Help: "Number of user sessions held in memory",
				},
			),
		}
	})
	return instance
}

// Get returns the global metrics instance
func Get() *Metrics {
	return Initialize()
}
