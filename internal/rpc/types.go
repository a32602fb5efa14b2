// Package rpc exposes the daemon over JSON-RPC: transaction submission,
// state queries, history lookups, and a WebSocket event stream.
package rpc

import (
	"context"
	"encoding/json"

	"github.com/refereehq/refereed/internal/core/ledger/service"
	"github.com/refereehq/refereed/internal/core/tx"
	"github.com/refereehq/refereed/internal/storage/history"
)

// Request is the wire form of a JSON-RPC call:
// {"method": "name", "params": [{...}]}.
type Request struct {
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params,omitempty"`
}

// Context carries request-scoped information into method handlers.
type Context struct {
	Context  context.Context
	ClientIP string
	IsAdmin  bool
}

// MethodHandler is implemented by each RPC method.
type MethodHandler interface {
	Handle(ctx *Context, params json.RawMessage) (any, *Error)
}

// MethodFunc adapts a plain function to MethodHandler.
type MethodFunc func(ctx *Context, params json.RawMessage) (any, *Error)

func (f MethodFunc) Handle(ctx *Context, params json.RawMessage) (any, *Error) {
	return f(ctx, params)
}

// MethodRegistry maps method names to handlers.
type MethodRegistry struct {
	methods map[string]MethodHandler
}

func NewMethodRegistry() *MethodRegistry {
	return &MethodRegistry{methods: make(map[string]MethodHandler)}
}

func (r *MethodRegistry) Register(name string, handler MethodHandler) {
	r.methods[name] = handler
}

func (r *MethodRegistry) Get(name string) (MethodHandler, bool) {
	handler, ok := r.methods[name]
	return handler, ok
}

func (r *MethodRegistry) List() []string {
	names := make([]string, 0, len(r.methods))
	for name := range r.methods {
		names = append(names, name)
	}
	return names
}

// LedgerService is the surface of the ledger core the RPC layer needs.
// *service.Service implements it.
type LedgerService interface {
	SubmitJSON(ctx context.Context, raw []byte) (tx.ApplyResult, error)
	SessionInfo(game string, seed uint64) (*service.SessionInfo, error)
	ConfigInfo(game string) (*service.ConfigInfo, error)
	AccountBalance(account string) (uint64, error)
	ServerInfo() *service.Info
}

// HistoryReader is the surface of the transaction log the RPC layer needs.
// *history.Store implements it.
type HistoryReader interface {
	ByHash(ctx context.Context, hash string) (*history.Record, error)
	ByAccount(ctx context.Context, account string, limit int) ([]history.Record, error)
	Recent(ctx context.Context, limit int) ([]history.Record, error)
}
