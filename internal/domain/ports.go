package domain

import "context"

// FeedSource fetches recent posts from the monitored community.
type FeedSource interface {
	// FetchRecentPosts returns up to limit posts from the community in the
	// given sort order, newest first for "created".
	FetchRecentPosts(ctx context.Context, community string, limit int, sort string) ([]Post, error)
}

// ActionExecutor performs the three external actions. A nil error means the
// action actually took effect (or was simulated in dry-run mode).
type ActionExecutor interface {
	// PostComment publishes a reply under the given parent post.
	PostComment(ctx context.Context, parentAuthor, parentPermlink, body string) error

	// Transfer sends amount HBD to the given account with a memo.
	Transfer(ctx context.Context, to string, amount float64, memo string) error

	// Vote submits an upvote at the given weight (percentage x 100).
	Vote(ctx context.Context, author, permlink string, weight int) error
}

// BalanceOracle reports the bot account's spendable HBD balance.
// Implementations return 0 on any failure.
type BalanceOracle interface {
	Balance(ctx context.Context, account string) float64
}

// Store is the persistence surface the processor and poll loop write
// through.
type Store interface {
	// IsPostProcessed reports whether a processed-post record exists for the
	// given key.
	IsPostProcessed(ctx context.Context, author, permlink string) (bool, error)

	// RecordProcessedPost upserts the processed-post record; a later write
	// for the same (author, permlink) replaces the earlier one.
	RecordProcessedPost(ctx context.Context, rec ProcessedPost) error

	// UpdateDailyStats adds the delta to today's aggregate counters, and to
	// the transfer-limit counters when the delta carries a positive HBD
	// amount.
	UpdateDailyStats(ctx context.Context, delta StatsDelta) error

	// TransferStats returns the transfer count and total amount recorded for
	// the given date, zeros if the row does not exist.
	TransferStats(ctx context.Context, date string) (count int, total float64, err error)
}

// StatsReader is the read-only view of the store consumed by reporting
// surfaces. All methods are pure reads.
type StatsReader interface {
	DailyStats(ctx context.Context, date string) (*DailyStats, error)
	RecentDailyStats(ctx context.Context, days int) ([]DailyStats, error)
	RecentProcessedPosts(ctx context.Context, limit int) ([]ProcessedPost, error)
	TotalStats(ctx context.Context) (*TotalStats, error)
	TransferStats(ctx context.Context, date string) (count int, total float64, err error)
}
