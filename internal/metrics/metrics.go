package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	likesToggled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inspira_likes_toggled_total",
			Help: "Total number of like toggles",
		},
		[]string{"target", "action"},
	)

	commentsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "inspira_comments_created_total",
			Help: "Total number of comments created",
		},
	)

	resharesCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "inspira_reshares_total",
			Help: "Total number of reshares created",
		},
	)

	postsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inspira_posts_total",
			Help: "Total number of post create/delete operations",
		},
		[]string{"action"},
	)
)

// RecordLikeToggle records a like or unlike on a post or comment
func RecordLikeToggle(target string, liked bool) {
	action := "unlike"
	if liked {
		action = "like"
	}
	likesToggled.WithLabelValues(target, action).Inc()
}

// RecordComment records a created comment
func RecordComment() {
	commentsCreated.Inc()
}

// RecordReshare records a created reshare
func RecordReshare() {
	resharesCreated.Inc()
}

// RecordPost records a post lifecycle operation
func RecordPost(action string) {
	postsTotal.WithLabelValues(action).Inc()
}

// Handler exposes the prometheus scrape endpoint
func Handler() http.Handler {
	return promhttp.Handler()
}
