package rpc

import (
	"encoding/json"
	"errors"

	"github.com/refereehq/refereed/internal/core/ledger/service"
	"github.com/refereehq/refereed/internal/core/tx"
	"github.com/refereehq/refereed/internal/storage/history"
)

// registerMethods installs every RPC method.
func registerMethods(registry *MethodRegistry, svc LedgerService, hist HistoryReader) {
	registry.Register("ping", MethodFunc(handlePing))
	registry.Register("server_info", MethodFunc(func(ctx *Context, params json.RawMessage) (any, *Error) {
		return handleServerInfo(svc)
	}))
	registry.Register("submit", MethodFunc(func(ctx *Context, params json.RawMessage) (any, *Error) {
		return handleSubmit(ctx, svc, params)
	}))
	registry.Register("session_info", MethodFunc(func(ctx *Context, params json.RawMessage) (any, *Error) {
		return handleSessionInfo(svc, params)
	}))
	registry.Register("config_info", MethodFunc(func(ctx *Context, params json.RawMessage) (any, *Error) {
		return handleConfigInfo(svc, params)
	}))
	registry.Register("account_balance", MethodFunc(func(ctx *Context, params json.RawMessage) (any, *Error) {
		return handleAccountBalance(svc, params)
	}))
	registry.Register("tx", MethodFunc(func(ctx *Context, params json.RawMessage) (any, *Error) {
		return handleTx(ctx, hist, params)
	}))
	registry.Register("account_tx", MethodFunc(func(ctx *Context, params json.RawMessage) (any, *Error) {
		return handleAccountTx(ctx, hist, params)
	}))
	registry.Register("tx_history", MethodFunc(func(ctx *Context, params json.RawMessage) (any, *Error) {
		return handleTxHistory(ctx, hist, params)
	}))
}

func handlePing(ctx *Context, params json.RawMessage) (any, *Error) {
	return map[string]any{}, nil
}

func handleServerInfo(svc LedgerService) (any, *Error) {
	return map[string]any{"info": svc.ServerInfo()}, nil
}

// submitParams wraps the transaction JSON:
// {"tx_json": {"TransactionType": "...", ...}}.
type submitParams struct {
	TxJSON json.RawMessage `json:"tx_json"`
}

func handleSubmit(ctx *Context, svc LedgerService, params json.RawMessage) (any, *Error) {
	var p submitParams
	if err := unmarshalParams(params, &p); err != nil {
		return nil, err
	}
	if len(p.TxJSON) == 0 {
		return nil, ErrInvalidParams("missing tx_json")
	}

	res, err := svc.SubmitJSON(ctx.Context, p.TxJSON)
	if err != nil {
		if errors.Is(err, tx.ErrUnknownTransactionType) {
			return nil, ErrInvalidParams("unknown transaction type")
		}
		return nil, ErrInvalidParams("invalid transaction: " + err.Error())
	}

	return map[string]any{
		"engine_result":         res.Result.String(),
		"engine_result_code":    int(res.Result),
		"engine_result_message": res.Message,
		"applied":               res.Applied,
		"tx_hash":               history.HashString(res.TxHash),
		"meta":                  res.Metadata,
	}, nil
}

type sessionInfoParams struct {
	Game string `json:"game"`
	Seed uint64 `json:"seed"`
}

func handleSessionInfo(svc LedgerService, params json.RawMessage) (any, *Error) {
	var p sessionInfoParams
	if err := unmarshalParams(params, &p); err != nil {
		return nil, err
	}
	if p.Game == "" {
		return nil, ErrInvalidParams("missing game")
	}

	info, err := svc.SessionInfo(p.Game, p.Seed)
	if err != nil {
		return nil, queryError(err)
	}
	return map[string]any{"session": info}, nil
}

type configInfoParams struct {
	Game string `json:"game"`
}

func handleConfigInfo(svc LedgerService, params json.RawMessage) (any, *Error) {
	var p configInfoParams
	if err := unmarshalParams(params, &p); err != nil {
		return nil, err
	}
	if p.Game == "" {
		return nil, ErrInvalidParams("missing game")
	}

	info, err := svc.ConfigInfo(p.Game)
	if err != nil {
		return nil, queryError(err)
	}
	return map[string]any{"config": info}, nil
}

type accountBalanceParams struct {
	Account string `json:"account"`
}

func handleAccountBalance(svc LedgerService, params json.RawMessage) (any, *Error) {
	var p accountBalanceParams
	if err := unmarshalParams(params, &p); err != nil {
		return nil, err
	}
	if p.Account == "" {
		return nil, ErrInvalidParams("missing account")
	}

	balance, err := svc.AccountBalance(p.Account)
	if err != nil {
		return nil, ErrInvalidParams(err.Error())
	}
	return map[string]any{
		"account": p.Account,
		"balance": balance,
	}, nil
}

type txParams struct {
	Hash string `json:"transaction"`
}

func handleTx(ctx *Context, hist HistoryReader, params json.RawMessage) (any, *Error) {
	if hist == nil {
		return nil, ErrNotSupported("transaction history is disabled")
	}
	var p txParams
	if err := unmarshalParams(params, &p); err != nil {
		return nil, err
	}
	if p.Hash == "" {
		return nil, ErrInvalidParams("missing transaction")
	}

	rec, err := hist.ByHash(ctx.Context, p.Hash)
	if errors.Is(err, history.ErrNotFound) {
		return nil, ErrNotFound("transaction not found")
	}
	if err != nil {
		return nil, ErrInternal(err.Error())
	}
	return map[string]any{"transaction": rec}, nil
}

type accountTxParams struct {
	Account string `json:"account"`
	Limit   int    `json:"limit"`
}

func handleAccountTx(ctx *Context, hist HistoryReader, params json.RawMessage) (any, *Error) {
	if hist == nil {
		return nil, ErrNotSupported("transaction history is disabled")
	}
	var p accountTxParams
	if err := unmarshalParams(params, &p); err != nil {
		return nil, err
	}
	if p.Account == "" {
		return nil, ErrInvalidParams("missing account")
	}

	recs, err := hist.ByAccount(ctx.Context, p.Account, p.Limit)
	if err != nil {
		return nil, ErrInternal(err.Error())
	}
	return map[string]any{
		"account":      p.Account,
		"transactions": recs,
	}, nil
}

type txHistoryParams struct {
	Limit int `json:"limit"`
}

func handleTxHistory(ctx *Context, hist HistoryReader, params json.RawMessage) (any, *Error) {
	if hist == nil {
		return nil, ErrNotSupported("transaction history is disabled")
	}
	var p txHistoryParams
	if err := unmarshalParams(params, &p); err != nil {
		return nil, err
	}

	recs, err := hist.Recent(ctx.Context, p.Limit)
	if err != nil {
		return nil, ErrInternal(err.Error())
	}
	return map[string]any{"txs": recs}, nil
}

func unmarshalParams(params json.RawMessage, v any) *Error {
	if len(params) == 0 {
		return nil
	}
	if err := json.Unmarshal(params, v); err != nil {
		return ErrInvalidParams("invalid params: " + err.Error())
	}
	return nil
}

func queryError(err error) *Error {
	if errors.Is(err, service.ErrNotFound) {
		return ErrNotFound("entry not found")
	}
	return ErrInvalidParams(err.Error())
}
