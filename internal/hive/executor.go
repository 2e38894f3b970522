package hive

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// BroadcastExecutor performs real blockchain actions by broadcasting signed
// operations through the JSON-RPC client.
type BroadcastExecutor struct {
	client  *Client
	account string
	logger  *slog.Logger
}

// NewBroadcastExecutor creates an executor acting as the given account.
func NewBroadcastExecutor(client *Client, account string, logger *slog.Logger) *BroadcastExecutor {
	return &BroadcastExecutor{client: client, account: account, logger: logger}
}

// PostComment publishes a reply under the parent post.
func (e *BroadcastExecutor) PostComment(ctx context.Context, parentAuthor, parentPermlink, body string) error {
	op := map[string]any{
		"parent_author":   parentAuthor,
		"parent_permlink": parentPermlink,
		"author":          e.account,
		"permlink":        fmt.Sprintf("re-%s-%d", parentPermlink, time.Now().Unix()),
		"title":           "",
		"body":            body,
		"json_metadata":   `{"tags":["checkin"]}`,
	}
	if err := e.client.Broadcast(ctx, "comment", op); err != nil {
		return err
	}
	e.logger.Info("comment posted", "parent", parentAuthor+"/"+parentPermlink)
	return nil
}

// Transfer sends amount HBD to the given account.
func (e *BroadcastExecutor) Transfer(ctx context.Context, to string, amount float64, memo string) error {
	op := map[string]any{
		"from":   e.account,
		"to":     to,
		"amount": fmt.Sprintf("%.3f HBD", amount),
		"memo":   memo,
	}
	if err := e.client.Broadcast(ctx, "transfer", op); err != nil {
		return err
	}
	e.logger.Info("transfer sent", "to", to, "amount", amount)
	return nil
}

// Vote submits an upvote at the given weight.
func (e *BroadcastExecutor) Vote(ctx context.Context, author, permlink string, weight int) error {
	op := map[string]any{
		"voter":    e.account,
		"author":   author,
		"permlink": permlink,
		"weight":   weight,
	}
	if err := e.client.Broadcast(ctx, "vote", op); err != nil {
		return err
	}
	e.logger.Info("upvote given", "post", author+"/"+permlink, "weight", weight)
	return nil
}

// SimulatedExecutor reports success for every action without contacting any
// network. Selected in dry-run mode so the processor issues identical calls
// in both modes.
type SimulatedExecutor struct {
	logger *slog.Logger
}

// NewSimulatedExecutor creates a dry-run executor.
func NewSimulatedExecutor(logger *slog.Logger) *SimulatedExecutor {
	return &SimulatedExecutor{logger: logger}
}

// PostComment logs the comment that would have been posted.
func (e *SimulatedExecutor) PostComment(_ context.Context, parentAuthor, parentPermlink, _ string) error {
	e.logger.Info("dry run: would post comment", "parent", parentAuthor+"/"+parentPermlink)
	return nil
}

// Transfer logs the transfer that would have been sent.
func (e *SimulatedExecutor) Transfer(_ context.Context, to string, amount float64, _ string) error {
	e.logger.Info("dry run: would send transfer", "to", to, "amount", amount)
	return nil
}

// Vote logs the upvote that would have been given.
func (e *SimulatedExecutor) Vote(_ context.Context, author, permlink string, weight int) error {
	e.logger.Info("dry run: would upvote", "post", author+"/"+permlink, "weight", weight)
	return nil
}
