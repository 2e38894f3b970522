package hive

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBalanceParsesAssetString(t *testing.T) {
	srv := httptest.NewServer(rpcHandler(t, func(method string, params json.RawMessage) (any, *rpcError) {
		assert.Equal(t, "condenser_api.get_accounts", method)
		var names [][]string
		require.NoError(t, json.Unmarshal(params, &names))
		require.Len(t, names, 1)
		assert.Equal(t, []string{"checkinbot"}, names[0])
		return []map[string]any{{"hbd_balance": "12.345 HBD"}}, nil
	}))
	defer srv.Close()

	oracle := NewBalanceOracle(NewClient(srv.URL), testLogger())
	assert.Equal(t, 12.345, oracle.Balance(context.Background(), "checkinbot"))
}

func TestBalanceZeroOnUnknownAccount(t *testing.T) {
	srv := httptest.NewServer(rpcHandler(t, func(string, json.RawMessage) (any, *rpcError) {
		return []any{}, nil
	}))
	defer srv.Close()

	oracle := NewBalanceOracle(NewClient(srv.URL), testLogger())
	assert.Zero(t, oracle.Balance(context.Background(), "nobody"))
}

func TestBalanceZeroOnNodeError(t *testing.T) {
	srv := httptest.NewServer(rpcHandler(t, func(string, json.RawMessage) (any, *rpcError) {
		return nil, &rpcError{Code: -32000, Message: "internal error"}
	}))
	defer srv.Close()

	oracle := NewBalanceOracle(NewClient(srv.URL), testLogger())
	assert.Zero(t, oracle.Balance(context.Background(), "checkinbot"))
}

func TestBalanceZeroOnGarbageAsset(t *testing.T) {
	srv := httptest.NewServer(rpcHandler(t, func(string, json.RawMessage) (any, *rpcError) {
		return []map[string]any{{"hbd_balance": "lots"}}, nil
	}))
	defer srv.Close()

	oracle := NewBalanceOracle(NewClient(srv.URL), testLogger())
	assert.Zero(t, oracle.Balance(context.Background(), "checkinbot"))
}
