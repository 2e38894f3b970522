package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/menobass/hive-checkin-bot/internal/domain"
)

// Config holds all configuration for the bot. Behavioral settings come from
// a JSON file; credentials come from the environment and are never written
// to disk. The struct is constructed once and passed into each component.
type Config struct {
	// Community is the community tag to monitor (e.g. hive-115276).
	Community string `json:"community"`

	// CheckIntervalSeconds is the pause between poll cycles.
	CheckIntervalSeconds int `json:"check_interval"`

	// DatabaseFile is the SQLite file holding the bot's durable state.
	DatabaseFile string `json:"database_file"`

	// FetchLimit is how many recent posts to request per cycle.
	FetchLimit int `json:"fetch_limit"`

	// MaxPostAgeHours is the freshness window; older posts are ignored.
	MaxPostAgeHours int `json:"max_post_age_hours"`

	WelcomeMessage string  `json:"welcome_message"`
	TransferAmount float64 `json:"transfer_amount"`
	TransferMemo   string  `json:"hbd_transfer_memo"`

	// UpvotePercentage is the vote strength in percent; it is converted to
	// blockchain weight (x100) and clamped at load time.
	UpvotePercentage int `json:"upvote_percentage"`

	MaxDailyTransfers int     `json:"max_daily_transfers"`
	MinAccountBalance float64 `json:"min_account_balance"`

	// DryRun switches every external action into simulation.
	DryRun bool `json:"dry_run"`

	// Port is the keep-alive HTTP server port.
	Port int `json:"port"`

	// RequiredMetadata is the declarative requirement set posts must satisfy.
	RequiredMetadata domain.Requirements `json:"required_metadata"`

	// Credentials, from the environment.
	AccountName string `json:"-"`
	PostingKey  string `json:"-"`
	ActiveKey   string `json:"-"`
	NodeURL     string `json:"-"`
}

// CheckInterval returns the inter-cycle pause as a duration.
func (c *Config) CheckInterval() time.Duration {
	return time.Duration(c.CheckIntervalSeconds) * time.Second
}

// MaxPostAge returns the freshness window as a duration.
func (c *Config) MaxPostAge() time.Duration {
	return time.Duration(c.MaxPostAgeHours) * time.Hour
}

// UpvoteWeight converts the configured percentage to blockchain vote weight,
// clamped to the valid [0, 10000] range.
func (c *Config) UpvoteWeight() int {
	weight := c.UpvotePercentage * 100
	if weight < 0 {
		return 0
	}
	if weight > 10000 {
		return 10000
	}
	return weight
}

// Load reads the JSON config file at path, applies defaults, pulls
// credentials from the environment, and validates the result. Missing
// credentials or community are fatal.
func Load(path string) (*Config, error) {
	cfg := &Config{
		CheckIntervalSeconds: 60,
		DatabaseFile:         "processed_posts.db",
		FetchLimit:           20,
		MaxPostAgeHours:      24,
		WelcomeMessage:       "Welcome to the community!",
		TransferAmount:       1.0,
		TransferMemo:         "Welcome to the community!",
		UpvotePercentage:     100,
		MaxDailyTransfers:    10,
		MinAccountBalance:    5.0,
		Port:                 8080,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	cfg.AccountName = os.Getenv("HIVE_ACCOUNT_NAME")
	cfg.PostingKey = os.Getenv("HIVE_POSTING_KEY")
	cfg.ActiveKey = os.Getenv("HIVE_ACTIVE_KEY")
	cfg.NodeURL = os.Getenv("HIVE_NODE")
	if cfg.NodeURL == "" {
		cfg.NodeURL = "https://api.hive.blog"
	}

	if cfg.Community == "" {
		return nil, fmt.Errorf("community is required")
	}
	if cfg.AccountName == "" || cfg.PostingKey == "" || cfg.ActiveKey == "" {
		return nil, fmt.Errorf("HIVE_ACCOUNT_NAME, HIVE_POSTING_KEY and HIVE_ACTIVE_KEY must be set")
	}
	if cfg.CheckIntervalSeconds <= 0 {
		return nil, fmt.Errorf("check_interval must be positive")
	}
	if cfg.FetchLimit <= 0 {
		return nil, fmt.Errorf("fetch_limit must be positive")
	}
	if cfg.MaxPostAgeHours <= 0 {
		return nil, fmt.Errorf("max_post_age_hours must be positive")
	}
	if cfg.TransferAmount < 0 {
		return nil, fmt.Errorf("transfer_amount must not be negative")
	}

	return cfg, nil
}
