// Package server assembles and runs the refereed daemon: entry store,
// history log, ledger service, JSON-RPC, WebSocket, and gRPC endpoints.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/refereehq/refereed/internal/config"
	"github.com/refereehq/refereed/internal/core/ledger/genesis"
	"github.com/refereehq/refereed/internal/core/ledger/service"
	_ "github.com/refereehq/refereed/internal/core/tx/referee"
	grpcserver "github.com/refereehq/refereed/internal/grpc"
	"github.com/refereehq/refereed/internal/rpc"
	"github.com/refereehq/refereed/internal/storage/entrystore"
	"github.com/refereehq/refereed/internal/storage/history"
)

// Daemon owns every long-lived component of a running node.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger

	store   *entrystore.Store
	history *history.Store
	service *service.Service
	rpc     *rpc.Server
	ws      *rpc.WebSocketServer
	grpc    *grpcserver.Server
}

// New assembles a daemon from configuration. Nothing is listening until Run.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Daemon, error) {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Daemon{cfg: cfg, logger: logger}

	if cfg.Store.Backend != "memory" {
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	storeCfg := &entrystore.Config{
		Backend:         cfg.Store.Backend,
		Path:            cfg.Store.Path,
		CacheSize:       cfg.Store.CacheSize,
		Compressor:      cfg.Store.Compressor,
		CreateIfMissing: true,
	}
	store, err := entrystore.Open(storeCfg)
	if err != nil {
		return nil, fmt.Errorf("open entry store: %w", err)
	}
	d.store = store

	if cfg.History.Enabled {
		hist, err := history.Open(ctx, cfg.History.Driver, cfg.History.DSN)
		if err != nil {
			d.store.Close()
			return nil, fmt.Errorf("open history: %w", err)
		}
		d.history = hist
	}

	manager := rpc.NewSubscriptionManager()
	publisher := rpc.NewPublisher(manager, logger)

	genesisCfg := genesis.Config{
		MintTag:  cfg.Genesis.MintTag,
		Decimals: cfg.Genesis.Decimals,
	}
	for _, account := range cfg.Genesis.Accounts {
		genesisCfg.Accounts = append(genesisCfg.Accounts, genesis.Account{
			Address: account.Address,
			Balance: account.Balance,
		})
	}

	d.service = service.New(service.Config{
		Store:     d.store,
		History:   d.history,
		Publisher: publisher,
		Logger:    logger,
		Genesis:   genesisCfg,
	})
	if err := d.service.Start(ctx, genesisCfg); err != nil {
		d.close()
		return nil, err
	}

	timeout := time.Duration(cfg.RPC.TimeoutSeconds) * time.Second
	d.rpc = rpc.NewServer(d.service, d.history, logger, timeout)
	d.ws = rpc.NewWebSocketServer(d.rpc.Registry(), manager, logger)

	if cfg.GRPC.Enabled {
		g, err := grpcserver.NewServer(&grpcserver.ServerConfig{
			Address:        cfg.GRPC.Addr,
			MaxRecvMsgSize: 4 * 1024 * 1024,
			MaxSendMsgSize: 4 * 1024 * 1024,
		})
		if err != nil {
			d.close()
			return nil, fmt.Errorf("grpc server: %w", err)
		}
		d.grpc = g
	}

	return d, nil
}

// Service exposes the ledger service, mainly for tests.
func (d *Daemon) Service() *service.Service {
	return d.service
}

// Run serves every endpoint until ctx is cancelled, then shuts down.
func (d *Daemon) Run(ctx context.Context) error {
	defer d.close()

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		return d.rpc.ListenAndServe(ctx, d.cfg.RPC.Addr)
	})

	group.Go(func() error {
		wsServer := &http.Server{
			Addr:              d.cfg.RPC.WebSocketAddr,
			Handler:           d.ws,
			ReadHeaderTimeout: 10 * time.Second,
		}
		errCh := make(chan error, 1)
		go func() {
			d.logger.Info("websocket server listening", "addr", d.cfg.RPC.WebSocketAddr)
			errCh <- wsServer.ListenAndServe()
		}()
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return wsServer.Shutdown(shutdownCtx)
		case err := <-errCh:
			if err == http.ErrServerClosed {
				return nil
			}
			return err
		}
	})

	if d.grpc != nil {
		group.Go(func() error {
			if err := d.grpc.StartAsync(); err != nil {
				return err
			}
			d.grpc.SetServing(true)
			d.logger.Info("grpc server listening", "addr", d.grpc.Address())
			<-ctx.Done()
			d.grpc.Stop()
			return nil
		})
	}

	d.logger.Info("daemon started",
		"rpc", d.cfg.RPC.Addr,
		"ws", d.cfg.RPC.WebSocketAddr,
		"grpc", d.cfg.GRPC.Enabled,
		"backend", d.cfg.Store.Backend)

	return group.Wait()
}

func (d *Daemon) close() {
	if d.service != nil {
		if err := d.service.Close(); err != nil {
			d.logger.Warn("service close failed", "err", err)
		}
	}
	if d.history != nil {
		if err := d.history.Close(); err != nil {
			d.logger.Warn("history close failed", "err", err)
		}
	}
	if d.store != nil {
		if err := d.store.Close(); err != nil {
			d.logger.Warn("entry store close failed", "err", err)
		}
	}
}
