package domain

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// ProcessorConfig carries the fixed settings one Processor runs with.
type ProcessorConfig struct {
	Requirements Requirements

	// Account is the bot account acting as comment author, transfer sender
	// and voter.
	Account string

	WelcomeMessage string

	TransferAmount float64
	TransferMemo   string

	// UpvoteWeight is the vote weight (percentage x 100), already clamped to
	// the valid range by configuration.
	UpvoteWeight int

	// MaxDailyTransfers caps how many transfers may be sent per calendar day.
	MaxDailyTransfers int

	// MinAccountBalance is the balance floor below which transfers are
	// skipped.
	MinAccountBalance float64
}

// Result describes what one processor run did for a post.
type Result struct {
	// Validated is false when the post failed validation and was skipped
	// without any record or counter change.
	Validated bool
	Reasons   []string

	Commented bool
	HBDSent   float64
	Upvoted   bool
}

// Processor runs the per-post pipeline: validate, attempt each action
// independently, record what succeeded, update the day's counters. It holds
// no state between posts; everything durable lives in the store.
type Processor struct {
	cfg      ProcessorConfig
	store    Store
	executor ActionExecutor
	balance  BalanceOracle
	logger   *slog.Logger
}

// NewProcessor creates a Processor.
func NewProcessor(cfg ProcessorConfig, store Store, executor ActionExecutor, balance BalanceOracle, logger *slog.Logger) *Processor {
	return &Processor{
		cfg:      cfg,
		store:    store,
		executor: executor,
		balance:  balance,
		logger:   logger,
	}
}

// Process runs the pipeline for one post. A validation failure is not an
// error: the post is skipped with no record written, so it may be looked at
// again if the feed re-delivers it. Once validation passes, the three actions
// run independently and the post is always recorded as processed, even when
// every action failed. Errors are returned only for persistence failures.
func (p *Processor) Process(ctx context.Context, post *Post) (*Result, error) {
	validation := Validate(post, p.cfg.Requirements)
	if !validation.Valid {
		p.logger.Info("post failed validation",
			"post", post.ID(),
			"reasons", validation.Reasons,
		)
		return &Result{Validated: false, Reasons: validation.Reasons}, nil
	}

	p.logger.Info("processing valid post", "post", post.ID())
	res := &Result{Validated: true}

	if err := p.executor.PostComment(ctx, post.Author, post.Permlink, p.cfg.WelcomeMessage); err != nil {
		p.logger.Error("comment failed", "post", post.ID(), "error", err)
	} else {
		res.Commented = true
	}

	res.HBDSent = p.tryTransfer(ctx, post.Author)

	if err := p.executor.Vote(ctx, post.Author, post.Permlink, p.cfg.UpvoteWeight); err != nil {
		p.logger.Error("upvote failed", "post", post.ID(), "error", err)
	} else {
		res.Upvoted = true
	}

	rec := ProcessedPost{
		Author:     post.Author,
		Permlink:   post.Permlink,
		HBDSent:    res.HBDSent,
		Upvoted:    res.Upvoted,
		Commented:  res.Commented,
		RecordedAt: time.Now().UTC(),
	}
	if err := p.store.RecordProcessedPost(ctx, rec); err != nil {
		return res, fmt.Errorf("record processed post: %w", err)
	}

	upvotes := 0
	if res.Upvoted {
		upvotes = 1
	}
	delta := StatsDelta{PostsProcessed: 1, HBDSent: res.HBDSent, UpvotesGiven: upvotes}
	if err := p.store.UpdateDailyStats(ctx, delta); err != nil {
		return res, fmt.Errorf("update daily stats: %w", err)
	}

	if res.Commented || res.HBDSent > 0 || res.Upvoted {
		p.logger.Info("post processed",
			"post", post.ID(),
			"commented", res.Commented,
			"hbd_sent", res.HBDSent,
			"upvoted", res.Upvoted,
		)
	} else {
		p.logger.Warn("post processed but no actions succeeded", "post", post.ID())
	}

	return res, nil
}

// tryTransfer sends the configured amount to the author if the disbursement
// policy allows it. Returns the amount actually sent, 0 when the transfer was
// skipped or failed.
func (p *Processor) tryTransfer(ctx context.Context, author string) float64 {
	today := DateKey(time.Now())
	count, _, err := p.store.TransferStats(ctx, today)
	if err != nil {
		p.logger.Error("failed to read transfer count, skipping transfer", "error", err)
		return 0
	}

	balance := p.balance.Balance(ctx, p.cfg.Account)
	allowed, reason := MayTransfer(count, p.cfg.MaxDailyTransfers, balance, p.cfg.MinAccountBalance)
	if !allowed {
		p.logger.Warn("transfer skipped", "to", author, "reason", reason)
		return 0
	}

	if err := p.executor.Transfer(ctx, author, p.cfg.TransferAmount, p.cfg.TransferMemo); err != nil {
		p.logger.Error("transfer failed", "to", author, "error", err)
		return 0
	}
	return p.cfg.TransferAmount
}
