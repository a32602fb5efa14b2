package rpc

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"
)

// Server handles HTTP JSON-RPC requests.
type Server struct {
	registry *MethodRegistry
	logger   *slog.Logger
	timeout  time.Duration
}

// NewServer creates an RPC server over the given ledger service and,
// optionally, a history reader (nil disables history methods).
func NewServer(svc LedgerService, hist HistoryReader, logger *slog.Logger, timeout time.Duration) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	s := &Server{
		registry: NewMethodRegistry(),
		logger:   logger.With("component", "rpc"),
		timeout:  timeout,
	}
	registerMethods(s.registry, svc, hist)
	return s
}

// Registry exposes the method registry so the WebSocket server can dispatch
// the same methods.
func (s *Server) Registry() *MethodRegistry {
	return s.registry
}

// response is the JSON-RPC response envelope. Errors ride inside result
// with "status": "error".
type response struct {
	Result any `json:"result"`
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Content-Type", "application/json")

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		s.handleGet(w, r)
	case http.MethodPost:
		s.handlePost(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleGet serves simple queries like ?command=server_info.
func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	method := r.URL.Query().Get("command")
	if method == "" {
		method = "server_info"
	}
	result, rpcErr := s.execute(r, method, nil)
	s.write(w, result, rpcErr)
}

func (s *Server) handlePost(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		s.write(w, nil, ErrInternal("failed to read request body"))
		return
	}
	defer r.Body.Close()

	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		s.write(w, nil, ErrInvalidParams("invalid JSON: "+err.Error()))
		return
	}
	if req.Method == "" {
		s.write(w, nil, ErrInvalidParams("missing method field"))
		return
	}

	var params json.RawMessage
	if len(req.Params) > 0 {
		params = req.Params[0]
	}
	result, rpcErr := s.execute(r, req.Method, params)
	s.write(w, result, rpcErr)
}

func (s *Server) execute(r *http.Request, method string, params json.RawMessage) (any, *Error) {
	handler, ok := s.registry.Get(method)
	if !ok {
		return nil, ErrUnknownMethod(method)
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	start := time.Now()
	result, rpcErr := handler.Handle(&Context{
		Context:  ctx,
		ClientIP: clientIP(r),
		IsAdmin:  isLoopback(r),
	}, params)

	if rpcErr != nil {
		s.logger.Debug("rpc method failed",
			"method", method, "error", rpcErr.Name, "elapsed", time.Since(start))
	} else {
		s.logger.Debug("rpc method served",
			"method", method, "elapsed", time.Since(start))
	}
	return result, rpcErr
}

func (s *Server) write(w http.ResponseWriter, result any, rpcErr *Error) {
	if rpcErr != nil {
		payload := map[string]any{
			"status":        "error",
			"error":         rpcErr.Name,
			"error_code":    rpcErr.Code,
			"error_message": rpcErr.Message,
		}
		json.NewEncoder(w).Encode(response{Result: payload})
		return
	}

	wrapped := map[string]any{"status": "success"}
	if result != nil {
		raw, err := json.Marshal(result)
		if err != nil {
			s.write(w, nil, ErrInternal("failed to encode result"))
			return
		}
		var fields map[string]any
		if err := json.Unmarshal(raw, &fields); err == nil {
			for k, v := range fields {
				wrapped[k] = v
			}
		} else {
			wrapped["value"] = result
		}
	}
	json.NewEncoder(w).Encode(response{Result: wrapped})
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func isLoopback(r *http.Request) bool {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// ListenAndServe runs the RPC server on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("rpc server listening", "addr", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
