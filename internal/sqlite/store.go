package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/menobass/hive-checkin-bot/internal/domain"
	_ "modernc.org/sqlite"
)

// Store implements domain.Store and domain.StatsReader on a single SQLite
// file. The three tables (processed_posts, daily_stats, daily_transfers) are
// the durable contract other tooling reads; their column names and additive
// update semantics must stay stable.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS processed_posts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	author TEXT NOT NULL,
	permlink TEXT NOT NULL,
	timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
	hbd_sent REAL,
	upvoted BOOLEAN,
	commented BOOLEAN,
	UNIQUE(author, permlink)
);
CREATE TABLE IF NOT EXISTS daily_stats (
	date TEXT PRIMARY KEY,
	posts_processed INTEGER DEFAULT 0,
	hbd_sent REAL DEFAULT 0.0,
	upvotes_given INTEGER DEFAULT 0,
	errors INTEGER DEFAULT 0
);
CREATE TABLE IF NOT EXISTS daily_transfers (
	date TEXT PRIMARY KEY,
	transfer_count INTEGER DEFAULT 0,
	total_amount REAL DEFAULT 0.0
);`

// Open opens (creating if needed) the database at path and ensures the
// schema exists. The caller should call Close when done.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// IsPostProcessed reports whether a processed-post record exists for the key.
func (s *Store) IsPostProcessed(ctx context.Context, author, permlink string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM processed_posts WHERE author = ? AND permlink = ?`,
		author, permlink,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("query processed post: %w", err)
	}
	return n > 0, nil
}

// RecordProcessedPost upserts the processed-post marker. A later write for
// the same (author, permlink) replaces the record.
func (s *Store) RecordProcessedPost(ctx context.Context, rec domain.ProcessedPost) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO processed_posts (author, permlink, timestamp, hbd_sent, upvoted, commented)
		VALUES (?, ?, ?, ?, ?, ?)`,
		rec.Author, rec.Permlink, rec.RecordedAt.UTC().Format(timeLayout),
		rec.HBDSent, rec.Upvoted, rec.Commented,
	)
	if err != nil {
		return fmt.Errorf("record processed post: %w", err)
	}
	return nil
}

// UpdateDailyStats adds the delta to today's aggregate counters. When the
// delta carries a positive HBD amount, the transfer-limit counters for today
// are incremented in the same transaction.
func (s *Store) UpdateDailyStats(ctx context.Context, delta domain.StatsDelta) error {
	today := domain.DateKey(time.Now())

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO daily_stats (date, posts_processed, hbd_sent, upvotes_given, errors)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			posts_processed = posts_processed + excluded.posts_processed,
			hbd_sent = hbd_sent + excluded.hbd_sent,
			upvotes_given = upvotes_given + excluded.upvotes_given,
			errors = errors + excluded.errors`,
		today, delta.PostsProcessed, delta.HBDSent, delta.UpvotesGiven, delta.Errors,
	)
	if err != nil {
		return fmt.Errorf("update daily stats: %w", err)
	}

	if delta.HBDSent > 0 {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO daily_transfers (date, transfer_count, total_amount)
			VALUES (?, 1, ?)
			ON CONFLICT(date) DO UPDATE SET
				transfer_count = transfer_count + 1,
				total_amount = total_amount + excluded.total_amount`,
			today, delta.HBDSent,
		)
		if err != nil {
			return fmt.Errorf("update daily transfers: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// TransferStats returns the transfer count and total amount for a date,
// zeros when no row exists.
func (s *Store) TransferStats(ctx context.Context, date string) (int, float64, error) {
	var count int
	var total float64
	err := s.db.QueryRowContext(ctx,
		`SELECT transfer_count, total_amount FROM daily_transfers WHERE date = ?`, date,
	).Scan(&count, &total)
	if err == sql.ErrNoRows {
		return 0, 0, nil
	}
	if err != nil {
		return 0, 0, fmt.Errorf("query daily transfers: %w", err)
	}
	return count, total, nil
}

// DailyStats returns the aggregate counters for a date, nil when no row
// exists.
func (s *Store) DailyStats(ctx context.Context, date string) (*domain.DailyStats, error) {
	var stats domain.DailyStats
	err := s.db.QueryRowContext(ctx,
		`SELECT date, posts_processed, hbd_sent, upvotes_given, errors FROM daily_stats WHERE date = ?`,
		date,
	).Scan(&stats.Date, &stats.PostsProcessed, &stats.HBDSent, &stats.UpvotesGiven, &stats.Errors)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query daily stats: %w", err)
	}
	return &stats, nil
}

// RecentDailyStats returns the daily stat rows for the last N active days,
// newest first.
func (s *Store) RecentDailyStats(ctx context.Context, days int) ([]domain.DailyStats, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, posts_processed, hbd_sent, upvotes_given, errors
		FROM daily_stats
		ORDER BY date DESC
		LIMIT ?`, days,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent daily stats: %w", err)
	}
	defer rows.Close()

	var out []domain.DailyStats
	for rows.Next() {
		var stats domain.DailyStats
		if err := rows.Scan(&stats.Date, &stats.PostsProcessed, &stats.HBDSent, &stats.UpvotesGiven, &stats.Errors); err != nil {
			return nil, fmt.Errorf("scan daily stats: %w", err)
		}
		out = append(out, stats)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate daily stats: %w", err)
	}
	return out, nil
}

// RecentProcessedPosts returns the most recently recorded posts, newest
// first.
func (s *Store) RecentProcessedPosts(ctx context.Context, limit int) ([]domain.ProcessedPost, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT author, permlink, timestamp, hbd_sent, upvoted, commented
		FROM processed_posts
		ORDER BY timestamp DESC, id DESC
		LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query processed posts: %w", err)
	}
	defer rows.Close()

	var out []domain.ProcessedPost
	for rows.Next() {
		var rec domain.ProcessedPost
		var ts string
		if err := rows.Scan(&rec.Author, &rec.Permlink, &ts, &rec.HBDSent, &rec.Upvoted, &rec.Commented); err != nil {
			return nil, fmt.Errorf("scan processed post: %w", err)
		}
		if t, err := time.Parse(timeLayout, ts); err == nil {
			rec.RecordedAt = t
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate processed posts: %w", err)
	}
	return out, nil
}

// TotalStats returns lifetime aggregates across the store.
func (s *Store) TotalStats(ctx context.Context) (*domain.TotalStats, error) {
	var totals domain.TotalStats
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM processed_posts),
			(SELECT COALESCE(SUM(hbd_sent), 0) FROM processed_posts WHERE hbd_sent > 0),
			(SELECT COUNT(*) FROM processed_posts WHERE upvoted = 1),
			(SELECT COALESCE(SUM(errors), 0) FROM daily_stats),
			(SELECT COUNT(DISTINCT date) FROM daily_stats)`,
	).Scan(&totals.TotalPosts, &totals.TotalHBD, &totals.TotalUpvotes, &totals.TotalErrors, &totals.DaysActive)
	if err != nil {
		return nil, fmt.Errorf("query total stats: %w", err)
	}
	return &totals, nil
}

// timeLayout matches SQLite's CURRENT_TIMESTAMP text format.
const timeLayout = "2006-01-02 15:04:05"
