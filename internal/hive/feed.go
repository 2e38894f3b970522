package hive

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/menobass/hive-checkin-bot/internal/domain"
)

// createdLayout is the timestamp format the bridge API uses for post
// creation times (UTC, no zone suffix).
const createdLayout = "2006-01-02T15:04:05"

// FeedSource fetches community posts through the bridge API.
type FeedSource struct {
	client *Client
	logger *slog.Logger
}

// NewFeedSource creates a FeedSource on top of a JSON-RPC client.
func NewFeedSource(client *Client, logger *slog.Logger) *FeedSource {
	return &FeedSource{client: client, logger: logger}
}

// rawPost is the subset of a bridge.get_ranked_posts entry the bot consumes.
type rawPost struct {
	Author        string               `json:"author"`
	Permlink      string               `json:"permlink"`
	Title         string               `json:"title"`
	Body          string               `json:"body"`
	Created       string               `json:"created"`
	JSONMetadata  json.RawMessage      `json:"json_metadata"`
	Beneficiaries []domain.Beneficiary `json:"beneficiaries"`
	Extensions    []json.RawMessage    `json:"extensions"`
}

// FetchRecentPosts returns up to limit posts from the community, in the
// given sort order.
func (f *FeedSource) FetchRecentPosts(ctx context.Context, community string, limit int, sort string) ([]domain.Post, error) {
	params := []any{map[string]any{
		"tag":   community,
		"limit": limit,
		"sort":  sort,
	}}

	result, err := f.client.Call(ctx, "bridge.get_ranked_posts", params)
	if err != nil {
		return nil, fmt.Errorf("get ranked posts: %w", err)
	}

	var raw []rawPost
	if err := json.Unmarshal(result, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal posts: %w", err)
	}

	posts := make([]domain.Post, 0, len(raw))
	for _, rp := range raw {
		post := domain.Post{
			Author:             rp.Author,
			Permlink:           rp.Permlink,
			Title:              rp.Title,
			Body:               rp.Body,
			JSONMetadata:       rp.JSONMetadata,
			ExtraBeneficiaries: rp.Beneficiaries,
		}

		created, err := time.Parse(createdLayout, rp.Created)
		if err != nil {
			f.logger.Warn("unparseable created timestamp, skipping post",
				"post", post.ID(), "created", rp.Created)
			continue
		}
		post.Created = created.UTC()

		for _, ext := range rp.Extensions {
			post.ExtraBeneficiaries = append(post.ExtraBeneficiaries, extensionBeneficiaries(ext)...)
		}

		posts = append(posts, post)
	}

	return posts, nil
}

// extensionBeneficiaries extracts beneficiaries from one extension entry.
// The wire format for a beneficiary extension is [0, {"beneficiaries":
// [...]}]; anything else yields nothing.
func extensionBeneficiaries(ext json.RawMessage) []domain.Beneficiary {
	var parts []json.RawMessage
	if err := json.Unmarshal(ext, &parts); err != nil || len(parts) < 2 {
		return nil
	}

	var kind int
	if err := json.Unmarshal(parts[0], &kind); err != nil || kind != 0 {
		return nil
	}

	var payload struct {
		Beneficiaries []domain.Beneficiary `json:"beneficiaries"`
	}
	if err := json.Unmarshal(parts[1], &payload); err != nil {
		return nil
	}
	return payload.Beneficiaries
}
