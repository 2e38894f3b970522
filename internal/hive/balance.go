package hive

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"
)

// BalanceOracle reads an account's spendable HBD balance. Any failure is
// reported as a zero balance, which makes the disbursement policy skip
// transfers rather than abort processing.
type BalanceOracle struct {
	client *Client
	logger *slog.Logger
}

// NewBalanceOracle creates a BalanceOracle on top of a JSON-RPC client.
func NewBalanceOracle(client *Client, logger *slog.Logger) *BalanceOracle {
	return &BalanceOracle{client: client, logger: logger}
}

// Balance returns the account's HBD balance, 0 on any failure.
func (o *BalanceOracle) Balance(ctx context.Context, account string) float64 {
	result, err := o.client.Call(ctx, "condenser_api.get_accounts", []any{[]string{account}})
	if err != nil {
		o.logger.Error("failed to fetch account balance", "account", account, "error", err)
		return 0
	}

	var accounts []struct {
		HBDBalance string `json:"hbd_balance"`
	}
	if err := json.Unmarshal(result, &accounts); err != nil || len(accounts) == 0 {
		o.logger.Error("unexpected get_accounts response", "account", account, "error", err)
		return 0
	}

	// Balance arrives as an asset string like "12.345 HBD".
	fields := strings.Fields(accounts[0].HBDBalance)
	if len(fields) == 0 {
		return 0
	}
	amount, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		o.logger.Error("unparseable balance", "account", account, "balance", accounts[0].HBDBalance)
		return 0
	}
	return amount
}
