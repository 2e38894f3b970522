package poller

import (
	"context"
	"log/slog"
	"time"

	"github.com/menobass/hive-checkin-bot/internal/domain"
	"github.com/menobass/hive-checkin-bot/internal/metrics"
)

// sortOrder is the feed sort used for polling; "created" returns newest
// posts first.
const sortOrder = "created"

// postProcessor runs the per-post pipeline. Satisfied by *domain.Processor.
type postProcessor interface {
	Process(ctx context.Context, post *domain.Post) (*domain.Result, error)
}

// Poller drives the outer loop: fetch recent posts, drop the ones already
// processed or too old, run each survivor through the processor, sleep,
// repeat. Fetch failures skip the cycle; nothing aborts the loop except
// context cancellation.
type Poller struct {
	feed      domain.FeedSource
	store     domain.Store
	stats     domain.StatsReader
	processor postProcessor
	metrics   *metrics.Metrics
	logger    *slog.Logger

	community  string
	interval   time.Duration
	fetchLimit int
	maxAge     time.Duration
}

// Options configures a Poller.
type Options struct {
	Community  string
	Interval   time.Duration
	FetchLimit int
	MaxPostAge time.Duration
}

// New creates a Poller.
func New(opts Options, feed domain.FeedSource, store domain.Store, stats domain.StatsReader, processor postProcessor, m *metrics.Metrics, logger *slog.Logger) *Poller {
	return &Poller{
		feed:       feed,
		store:      store,
		stats:      stats,
		processor:  processor,
		metrics:    m,
		logger:     logger,
		community:  opts.Community,
		interval:   opts.Interval,
		fetchLimit: opts.FetchLimit,
		maxAge:     opts.MaxPostAge,
	}
}

// Run polls until ctx is cancelled. It runs one cycle immediately, then
// repeats at the configured interval, logging the day's stats once an hour.
func (p *Poller) Run(ctx context.Context) {
	p.logger.Info("poller started",
		"community", p.community,
		"interval", p.interval,
		"fetch_limit", p.fetchLimit,
	)
	p.logDailyStats(ctx)
	p.cycle(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	lastStatsLog := time.Now()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("poller stopped")
			return
		case <-ticker.C:
			p.cycle(ctx)
			if time.Since(lastStatsLog) >= time.Hour {
				p.logDailyStats(ctx)
				lastStatsLog = time.Now()
			}
		}
	}
}

// cycle runs one fetch-filter-process pass.
func (p *Poller) cycle(ctx context.Context) {
	p.metrics.PollCycles.Inc()

	posts, err := p.feed.FetchRecentPosts(ctx, p.community, p.fetchLimit, sortOrder)
	if err != nil {
		p.logger.Error("feed fetch failed, skipping cycle", "community", p.community, "error", err)
		p.countError(ctx)
		return
	}

	now := time.Now()
	delivered := 0
	for i := range posts {
		post := &posts[i]

		processed, err := p.store.IsPostProcessed(ctx, post.Author, post.Permlink)
		if err != nil {
			p.logger.Error("dedupe lookup failed", "post", post.ID(), "error", err)
			p.countError(ctx)
			continue
		}
		if processed {
			continue
		}
		if now.Sub(post.Created) > p.maxAge {
			continue
		}

		delivered++
		result, err := p.processor.Process(ctx, post)
		if err != nil {
			// Do not let the metrics run ahead of the store: a persistence
			// failure counts as an error only.
			p.logger.Error("post processing failed", "post", post.ID(), "error", err)
			p.countError(ctx)
			continue
		}
		if result != nil && result.Validated {
			p.metrics.PostsProcessed.Inc()
			if result.Commented {
				p.metrics.CommentsPosted.Inc()
			}
			if result.HBDSent > 0 {
				p.metrics.HBDSent.Add(result.HBDSent)
			}
			if result.Upvoted {
				p.metrics.UpvotesGiven.Inc()
			}
		}
	}

	p.logger.Info("poll cycle complete", "fetched", len(posts), "delivered", delivered)
}

// countError bumps the day's error counter and the error metric.
func (p *Poller) countError(ctx context.Context) {
	p.metrics.Errors.Inc()
	if err := p.store.UpdateDailyStats(ctx, domain.StatsDelta{Errors: 1}); err != nil {
		p.logger.Error("failed to record error in daily stats", "error", err)
	}
}

func (p *Poller) logDailyStats(ctx context.Context) {
	stats, err := p.stats.DailyStats(ctx, domain.DateKey(time.Now()))
	if err != nil {
		p.logger.Error("failed to read daily stats", "error", err)
		return
	}
	if stats == nil {
		p.logger.Info("no activity recorded today")
		return
	}
	p.logger.Info("daily stats",
		"date", stats.Date,
		"posts_processed", stats.PostsProcessed,
		"hbd_sent", stats.HBDSent,
		"upvotes_given", stats.UpvotesGiven,
		"errors", stats.Errors,
	)
}
