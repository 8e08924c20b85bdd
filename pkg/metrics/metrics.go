package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	Follows = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "follows_total",
		Help: "Follow graph mutations by action",
	}, []string{"action"})

	Likes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "likes_total",
		Help: "Like toggles by resulting state",
	}, []string{"state"})

	PostsCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "posts_created_total",
		Help: "Total posts successfully created",
	})

	FeedComposeDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "feed_compose_duration_seconds",
		Help:    "Time spent composing a home feed.",
		Buckets: prometheus.DefBuckets,
	})

	FeedSize = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "feed_size",
		Help:    "Number of posts in a composed home feed.",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	})
)

func init() {
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(Follows)
	prometheus.MustRegister(Likes)
	prometheus.MustRegister(PostsCreated)
	prometheus.MustRegister(FeedComposeDuration)
	prometheus.MustRegister(FeedSize)
}

// Handler exposes the default registry for scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}
