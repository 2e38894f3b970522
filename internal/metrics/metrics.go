// Package metrics exposes the bot's process counters for Prometheus
// scraping via the keep-alive server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "checkin_bot"

// Metrics holds the counters updated by the poll loop.
type Metrics struct {
	PollCycles     prometheus.Counter
	PostsProcessed prometheus.Counter
	CommentsPosted prometheus.Counter
	HBDSent        prometheus.Counter
	UpvotesGiven   prometheus.Counter
	Errors         prometheus.Counter
}

// New registers the bot's counters with the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		PollCycles: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "poll_cycles_total",
			Help:      "Number of completed poll cycles.",
		}),
		PostsProcessed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "posts_processed_total",
			Help:      "Number of posts that passed validation and were processed.",
		}),
		CommentsPosted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "comments_posted_total",
			Help:      "Number of welcome comments that succeeded.",
		}),
		HBDSent: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hbd_sent_total",
			Help:      "Total HBD actually transferred.",
		}),
		UpvotesGiven: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upvotes_given_total",
			Help:      "Number of upvotes that succeeded.",
		}),
		Errors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Number of errors across fetching and processing.",
		}),
	}
}
