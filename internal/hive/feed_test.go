package hive

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestFetchRecentPosts(t *testing.T) {
	var gotParams json.RawMessage
	srv := httptest.NewServer(rpcHandler(t, func(method string, params json.RawMessage) (any, *rpcError) {
		assert.Equal(t, "bridge.get_ranked_posts", method)
		gotParams = params
		return []map[string]any{
			{
				"author":        "newuser",
				"permlink":      "mi-introduccion",
				"title":         "Mi introducción",
				"body":          "hola",
				"created":       "2026-08-29T15:04:05",
				"json_metadata": map[string]any{"app": "checkinecuador/1.0.0"},
			},
		}, nil
	}))
	defer srv.Close()

	feed := NewFeedSource(NewClient(srv.URL), testLogger())
	posts, err := feed.FetchRecentPosts(context.Background(), "hive-115276", 20, "created")

	require.NoError(t, err)
	require.Len(t, posts, 1)

	post := posts[0]
	assert.Equal(t, "newuser", post.Author)
	assert.Equal(t, "mi-introduccion", post.Permlink)
	assert.Equal(t, time.Date(2026, 8, 29, 15, 4, 5, 0, time.UTC), post.Created)
	assert.JSONEq(t, `{"app":"checkinecuador/1.0.0"}`, string(post.JSONMetadata))

	var params []map[string]any
	require.NoError(t, json.Unmarshal(gotParams, &params))
	require.Len(t, params, 1)
	assert.Equal(t, "hive-115276", params[0]["tag"])
	assert.Equal(t, float64(20), params[0]["limit"])
	assert.Equal(t, "created", params[0]["sort"])
}

func TestFetchRecentPostsStringEncodedMetadata(t *testing.T) {
	srv := httptest.NewServer(rpcHandler(t, func(string, json.RawMessage) (any, *rpcError) {
		return []map[string]any{
			{
				"author":        "a",
				"permlink":      "p",
				"created":       "2026-08-29T00:00:00",
				"json_metadata": `{"app":"checkinecuador/1.0.0"}`,
			},
		}, nil
	}))
	defer srv.Close()

	feed := NewFeedSource(NewClient(srv.URL), testLogger())
	posts, err := feed.FetchRecentPosts(context.Background(), "hive-115276", 20, "created")

	require.NoError(t, err)
	require.Len(t, posts, 1)
	// The raw string-encoded blob is preserved as-is for NormalizeMetadata.
	assert.Equal(t, `"{\"app\":\"checkinecuador/1.0.0\"}"`, string(posts[0].JSONMetadata))
}

func TestFetchRecentPostsMergesBeneficiarySources(t *testing.T) {
	srv := httptest.NewServer(rpcHandler(t, func(string, json.RawMessage) (any, *rpcError) {
		return []map[string]any{
			{
				"author":   "a",
				"permlink": "p",
				"created":  "2026-08-29T00:00:00",
				"beneficiaries": []map[string]any{
					{"account": "hiveecuador", "weight": 8000},
				},
				"extensions": []any{
					[]any{0, map[string]any{"beneficiaries": []map[string]any{
						{"account": "nulls", "weight": 100},
					}}},
					"not a beneficiary extension",
				},
			},
		}, nil
	}))
	defer srv.Close()

	feed := NewFeedSource(NewClient(srv.URL), testLogger())
	posts, err := feed.FetchRecentPosts(context.Background(), "hive-115276", 20, "created")

	require.NoError(t, err)
	require.Len(t, posts, 1)
	require.Len(t, posts[0].ExtraBeneficiaries, 2)
	assert.Equal(t, "hiveecuador", posts[0].ExtraBeneficiaries[0].Account)
	assert.Equal(t, 8000, posts[0].ExtraBeneficiaries[0].Weight)
	assert.Equal(t, "nulls", posts[0].ExtraBeneficiaries[1].Account)
}

func TestFetchRecentPostsSkipsUnparseableCreated(t *testing.T) {
	srv := httptest.NewServer(rpcHandler(t, func(string, json.RawMessage) (any, *rpcError) {
		return []map[string]any{
			{"author": "bad", "permlink": "p1", "created": "yesterday"},
			{"author": "good", "permlink": "p2", "created": "2026-08-29T00:00:00"},
		}, nil
	}))
	defer srv.Close()

	feed := NewFeedSource(NewClient(srv.URL), testLogger())
	posts, err := feed.FetchRecentPosts(context.Background(), "hive-115276", 20, "created")

	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "good", posts[0].Author)
}

func TestFetchRecentPostsNodeError(t *testing.T) {
	srv := httptest.NewServer(rpcHandler(t, func(string, json.RawMessage) (any, *rpcError) {
		return nil, &rpcError{Code: -32000, Message: "community not found"}
	}))
	defer srv.Close()

	feed := NewFeedSource(NewClient(srv.URL), testLogger())
	_, err := feed.FetchRecentPosts(context.Background(), "hive-000000", 20, "created")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "community not found")
}
