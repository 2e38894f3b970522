package domain

import "time"

// ProcessedPost is the durable marker written after a post has been run
// through the processor. The action flags reflect what actually succeeded,
// never what was merely attempted.
type ProcessedPost struct {
	Author     string
	Permlink   string
	HBDSent    float64
	Upvoted    bool
	Commented  bool
	RecordedAt time.Time
}

// StatsDelta is one additive update to a day's aggregate counters.
type StatsDelta struct {
	PostsProcessed int
	HBDSent        float64
	UpvotesGiven   int
	Errors         int
}

// DailyStats is the aggregate counter row for one calendar date.
type DailyStats struct {
	Date           string  `json:"date"`
	PostsProcessed int     `json:"posts_processed"`
	HBDSent        float64 `json:"hbd_sent"`
	UpvotesGiven   int     `json:"upvotes_given"`
	Errors         int     `json:"errors"`
}

// TotalStats are lifetime aggregates across the whole store.
type TotalStats struct {
	TotalPosts   int     `json:"total_posts"`
	TotalHBD     float64 `json:"total_hbd"`
	TotalUpvotes int     `json:"total_upvotes"`
	TotalErrors  int     `json:"total_errors"`
	DaysActive   int     `json:"days_active"`
}

// DateKey formats a time as the calendar-date key used by the daily counter
// tables.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
