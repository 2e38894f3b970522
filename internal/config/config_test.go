package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func setCredentials(t *testing.T) {
	t.Helper()
	t.Setenv("HIVE_ACCOUNT_NAME", "checkinbot")
	t.Setenv("HIVE_POSTING_KEY", "posting-key")
	t.Setenv("HIVE_ACTIVE_KEY", "active-key")
	t.Setenv("HIVE_NODE", "")
}

func TestLoadAppliesDefaults(t *testing.T) {
	setCredentials(t)
	path := writeConfig(t, `{"community": "hive-115276"}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "hive-115276", cfg.Community)
	assert.Equal(t, time.Minute, cfg.CheckInterval())
	assert.Equal(t, "processed_posts.db", cfg.DatabaseFile)
	assert.Equal(t, 20, cfg.FetchLimit)
	assert.Equal(t, 24*time.Hour, cfg.MaxPostAge())
	assert.Equal(t, 1.0, cfg.TransferAmount)
	assert.Equal(t, 10000, cfg.UpvoteWeight())
	assert.Equal(t, 10, cfg.MaxDailyTransfers)
	assert.Equal(t, 5.0, cfg.MinAccountBalance)
	assert.False(t, cfg.DryRun)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "https://api.hive.blog", cfg.NodeURL)
}

func TestLoadOverridesAndRequirements(t *testing.T) {
	setCredentials(t)
	t.Setenv("HIVE_NODE", "wss://hive.example.com")
	path := writeConfig(t, `{
		"community": "hive-115276",
		"check_interval": 120,
		"fetch_limit": 50,
		"transfer_amount": 0.5,
		"upvote_percentage": 50,
		"dry_run": true,
		"required_metadata": {
			"app": "checkinecuador/1.0.0",
			"developer": "menobass",
			"tags": ["introduceyourself", "checkin"],
			"beneficiaries": [{"account": "hiveecuador", "weight": 8000}],
			"country": "Ecuador",
			"required_fields": ["onboarder", "image"]
		}
	}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2*time.Minute, cfg.CheckInterval())
	assert.Equal(t, 50, cfg.FetchLimit)
	assert.Equal(t, 0.5, cfg.TransferAmount)
	assert.Equal(t, 5000, cfg.UpvoteWeight())
	assert.True(t, cfg.DryRun)
	assert.Equal(t, "wss://hive.example.com", cfg.NodeURL)

	req := cfg.RequiredMetadata
	assert.Equal(t, "checkinecuador/1.0.0", req.App)
	assert.Equal(t, "menobass", req.Developer)
	assert.Equal(t, []string{"introduceyourself", "checkin"}, req.Tags)
	require.Len(t, req.Beneficiaries, 1)
	assert.Equal(t, "hiveecuador", req.Beneficiaries[0].Account)
	assert.Equal(t, 8000, req.Beneficiaries[0].Weight)
	assert.Equal(t, "Ecuador", req.Country)
	assert.Equal(t, []string{"onboarder", "image"}, req.RequiredFields)
}

func TestLoadMissingCommunity(t *testing.T) {
	setCredentials(t)
	path := writeConfig(t, `{}`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "community")
}

func TestLoadMissingCredentials(t *testing.T) {
	t.Setenv("HIVE_ACCOUNT_NAME", "")
	t.Setenv("HIVE_POSTING_KEY", "")
	t.Setenv("HIVE_ACTIVE_KEY", "")
	path := writeConfig(t, `{"community": "hive-115276"}`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HIVE_ACCOUNT_NAME")
}

func TestLoadRejectsBadValues(t *testing.T) {
	setCredentials(t)

	cases := []struct {
		name string
		body string
	}{
		{"zero interval", `{"community": "c", "check_interval": 0}`},
		{"negative interval", `{"community": "c", "check_interval": -5}`},
		{"zero fetch limit", `{"community": "c", "fetch_limit": 0}`},
		{"negative fetch limit", `{"community": "c", "fetch_limit": -1}`},
		{"zero max post age", `{"community": "c", "max_post_age_hours": 0}`},
		{"negative max post age", `{"community": "c", "max_post_age_hours": -1}`},
		{"negative amount", `{"community": "c", "transfer_amount": -1}`},
		{"malformed json", `{"community":`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.body))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	setCredentials(t)

	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestUpvoteWeightClamped(t *testing.T) {
	cases := []struct {
		percentage int
		weight     int
	}{
		{0, 0},
		{1, 100},
		{100, 10000},
		{150, 10000},
		{-10, 0},
	}

	for _, tc := range cases {
		cfg := &Config{UpvotePercentage: tc.percentage}
		assert.Equal(t, tc.weight, cfg.UpvoteWeight(), "percentage %d", tc.percentage)
	}
}
