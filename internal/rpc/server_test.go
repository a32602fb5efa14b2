package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	addresscodec "github.com/refereehq/refereed/internal/codec/address-codec"
	"github.com/refereehq/refereed/internal/core/ledger/genesis"
	"github.com/refereehq/refereed/internal/core/ledger/service"
	_ "github.com/refereehq/refereed/internal/core/tx/referee"
	"github.com/refereehq/refereed/internal/crypto"
	"github.com/refereehq/refereed/internal/storage/history"
)

type fixture struct {
	server *httptest.Server
	svc    *service.Service
	admin  string
	game   string
	mint   string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	var adminID, gameID crypto.AccountID
	adminID[0] = 0xA1
	gameID[0] = 0xA2
	admin := addresscodec.EncodeAccountID(adminID)
	game := addresscodec.EncodeAccountID(gameID)

	gen := genesis.DefaultConfig()
	gen.Accounts = []genesis.Account{
		{Address: admin, Balance: 100_000_000},
		{Address: game, Balance: 100_000_000},
	}

	hist, err := history.Open(context.Background(), history.DriverSQLite, t.TempDir()+"/history.db")
	require.NoError(t, err)
	t.Cleanup(func() { hist.Close() })

	svc := service.New(service.Config{History: hist, Genesis: gen})
	require.NoError(t, svc.Start(context.Background(), gen))

	rpcServer := NewServer(svc, hist, nil, 5*time.Second)
	ts := httptest.NewServer(rpcServer)
	t.Cleanup(ts.Close)

	return &fixture{
		server: ts,
		svc:    svc,
		admin:  admin,
		game:   game,
		mint:   svc.ServerInfo().Mint,
	}
}

// call posts a JSON-RPC request and returns the result object.
func (f *fixture) call(t *testing.T, method string, params any) map[string]any {
	t.Helper()

	req := map[string]any{"method": method}
	if params != nil {
		req["params"] = []any{params}
	}
	body, err := json.Marshal(req)
	require.NoError(t, err)

	resp, err := http.Post(f.server.URL, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var envelope struct {
		Result map[string]any `json:"result"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	return envelope.Result
}

func (f *fixture) submit(t *testing.T, txJSON map[string]any) map[string]any {
	t.Helper()
	return f.call(t, "submit", map[string]any{"tx_json": txJSON})
}

func TestServerInfoOverGet(t *testing.T) {
	f := newFixture(t)

	resp, err := http.Get(f.server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	var envelope struct {
		Result map[string]any `json:"result"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.Equal(t, "success", envelope.Result["status"])

	info, ok := envelope.Result["info"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, f.mint, info["mint"])
}

func TestSubmitAndQueryConfig(t *testing.T) {
	f := newFixture(t)

	result := f.submit(t, map[string]any{
		"TransactionType": "ConfigCreate",
		"Account":         f.admin,
		"Game":            f.game,
		"Mint":            f.mint,
		"FeeBasisPoints":  100,
	})
	assert.Equal(t, "success", result["status"])
	assert.Equal(t, "tesSUCCESS", result["engine_result"])
	assert.Equal(t, true, result["applied"])
	assert.NotEmpty(t, result["tx_hash"])

	cfg := f.call(t, "config_info", map[string]any{"game": f.game})
	assert.Equal(t, "success", cfg["status"])
	config, ok := cfg["config"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, f.admin, config["admin"])
	assert.Equal(t, float64(100), config["fee_basis_points"])
}

func TestSubmitRejectionSurfacesEngineResult(t *testing.T) {
	f := newFixture(t)

	// No config for the game yet, so the update is a state rejection. The
	// RPC call itself still succeeds.
	result := f.submit(t, map[string]any{
		"TransactionType": "ConfigUpdate",
		"Account":         f.admin,
		"Game":            f.game,
		"FeeBasisPoints":  50,
	})
	assert.Equal(t, "success", result["status"])
	assert.Equal(t, "tecNO_ENTRY", result["engine_result"])
	assert.Equal(t, false, result["applied"])
}

func TestSubmitMalformedTransaction(t *testing.T) {
	f := newFixture(t)

	result := f.submit(t, map[string]any{"TransactionType": "Teleport"})
	assert.Equal(t, "error", result["status"])
	assert.Equal(t, "invalidParams", result["error"])
}

func TestSessionInfoNotFound(t *testing.T) {
	f := newFixture(t)

	result := f.call(t, "session_info", map[string]any{"game": f.game, "seed": 9})
	assert.Equal(t, "error", result["status"])
	assert.Equal(t, "entryNotFound", result["error"])
}

func TestAccountBalance(t *testing.T) {
	f := newFixture(t)

	result := f.call(t, "account_balance", map[string]any{"account": f.admin})
	assert.Equal(t, "success", result["status"])
	assert.Equal(t, float64(100_000_000), result["balance"])
}

func TestTxLookupThroughHistory(t *testing.T) {
	f := newFixture(t)

	submitted := f.submit(t, map[string]any{
		"TransactionType": "ConfigCreate",
		"Account":         f.admin,
		"Game":            f.game,
		"Mint":            f.mint,
		"FeeBasisPoints":  100,
	})
	hash, ok := submitted["tx_hash"].(string)
	require.True(t, ok)

	result := f.call(t, "tx", map[string]any{"transaction": hash})
	assert.Equal(t, "success", result["status"])
	rec, ok := result["transaction"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ConfigCreate", rec["type"])

	missing := f.call(t, "tx", map[string]any{"transaction": "ffff"})
	assert.Equal(t, "error", missing["status"])
	assert.Equal(t, "entryNotFound", missing["error"])

	byAccount := f.call(t, "account_tx", map[string]any{"account": f.admin})
	assert.Equal(t, "success", byAccount["status"])
	txs, ok := byAccount["transactions"].([]any)
	require.True(t, ok)
	assert.Len(t, txs, 1)
}

func TestUnknownMethod(t *testing.T) {
	f := newFixture(t)

	result := f.call(t, "teleport", nil)
	assert.Equal(t, "error", result["status"])
	assert.Equal(t, "unknownCmd", result["error"])
}

func TestInvalidJSONBody(t *testing.T) {
	f := newFixture(t)

	resp, err := http.Post(f.server.URL, "application/json", bytes.NewReader([]byte("not json")))
	require.NoError(t, err)
	defer resp.Body.Close()

	var envelope struct {
		Result map[string]any `json:"result"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	assert.Equal(t, "error", envelope.Result["status"])
	assert.Equal(t, "invalidParams", envelope.Result["error"])
}
