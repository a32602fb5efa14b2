// Package service owns the running ledger: it seeds or restores state,
// serializes transaction application, persists applied changes to the entry
// store, records them in the history log, and publishes events to
// subscribers.
package service

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/refereehq/refereed/internal/core/ledger"
	"github.com/refereehq/refereed/internal/core/ledger/entry"
	"github.com/refereehq/refereed/internal/core/ledger/genesis"
	"github.com/refereehq/refereed/internal/core/tx"
	"github.com/refereehq/refereed/internal/crypto"
	common "github.com/refereehq/refereed/internal/crypto/common"
	"github.com/refereehq/refereed/internal/protocol"
	"github.com/refereehq/refereed/internal/storage/entrystore"
	"github.com/refereehq/refereed/internal/storage/history"
)

// ErrNotFound is returned by queries for entries that do not exist.
var ErrNotFound = errors.New("service: not found")

// seqKey locates the persisted ledger sequence in the entry store.
var seqKey = func() [32]byte {
	prefix := protocol.HashPrefixMeta
	return common.Sha512Half(prefix[:], []byte("ledger-seq"))
}()

// Publisher receives events for every processed transaction. Implementations
// must not block: Submit holds the ledger lock while publishing.
type Publisher interface {
	PublishTransaction(ev *TransactionEvent)
}

// TransactionEvent describes one processed transaction.
type TransactionEvent struct {
	Hash      string       `json:"hash"`
	Type      string       `json:"transaction_type"`
	Account   string       `json:"account"`
	Result    string       `json:"engine_result"`
	Applied   bool         `json:"applied"`
	LedgerSeq uint64       `json:"ledger_seq"`
	Metadata  *tx.Metadata `json:"meta,omitempty"`
}

// Config assembles a Service. Store, History and Publisher are optional;
// a nil Store keeps state in memory only.
type Config struct {
	Store     *entrystore.Store
	History   *history.Store
	Publisher Publisher
	Logger    *slog.Logger
	Genesis   genesis.Config
}

// Service is the transaction processing core of the daemon.
type Service struct {
	mu     sync.Mutex
	ledger *ledger.Ledger
	engine *tx.Engine

	store   *entrystore.Store
	log     *history.Store
	pub     Publisher
	logger  *slog.Logger
	started time.Time

	mint     crypto.AccountID
	decimals uint8
}

// New creates a Service. Call Start before submitting transactions.
func New(cfg Config) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	l := ledger.New()
	return &Service{
		ledger:   l,
		engine:   tx.NewEngine(l),
		store:    cfg.Store,
		log:      cfg.History,
		pub:      cfg.Publisher,
		logger:   logger.With("component", "ledger-service"),
		mint:     genesis.MintID(cfg.Genesis.MintTag),
		decimals: cfg.Genesis.Decimals,
		started:  time.Now(),
	}
}

// Start seeds a fresh ledger or restores one from the entry store.
func (s *Service) Start(ctx context.Context, genesisCfg genesis.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.store == nil {
		if _, err := genesis.Seed(s.ledger, genesisCfg); err != nil {
			return fmt.Errorf("service: seed genesis: %w", err)
		}
		s.logger.Info("ledger seeded in memory", "entries", s.ledger.EntryCount())
		return nil
	}

	restored := 0
	err := s.store.ForEach(ctx, func(rec entrystore.Record) error {
		if rec.Type == entry.TypeMeta {
			if rec.Key == seqKey && len(rec.Data) == 8 {
				s.ledger.SetSeq(binary.BigEndian.Uint64(rec.Data))
			}
			return nil
		}
		s.ledger.Restore(rec.Key, rec.Type, rec.Data)
		restored++
		return nil
	})
	if err != nil {
		return fmt.Errorf("service: restore: %w", err)
	}

	if restored > 0 {
		s.logger.Info("ledger restored", "entries", restored, "seq", s.ledger.Seq())
		return nil
	}

	if _, err := genesis.Seed(s.ledger, genesisCfg); err != nil {
		return fmt.Errorf("service: seed genesis: %w", err)
	}
	if err := s.persistAll(ctx); err != nil {
		return fmt.Errorf("service: persist genesis: %w", err)
	}
	s.logger.Info("ledger seeded", "entries", s.ledger.EntryCount())
	return nil
}

// Submit applies a transaction to the ledger. Application is serialized:
// one transaction sees the effects of every earlier one.
func (s *Service) Submit(ctx context.Context, txn tx.Transaction) (tx.ApplyResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := s.engine.Apply(txn)
	if res.Applied {
		seq := s.ledger.BumpSeq()
		if err := s.persistApplied(ctx, res.Metadata, seq); err != nil {
			return res, fmt.Errorf("service: persist: %w", err)
		}
	}

	s.logger.Info("transaction processed",
		"type", txn.TxType().String(),
		"account", txn.GetCommon().Account,
		"result", res.Result.String(),
		"applied", res.Applied,
		"seq", s.ledger.Seq())

	s.record(ctx, txn, res)
	s.publish(txn, res)
	return res, nil
}

// SubmitJSON decodes a transaction from its JSON form and applies it.
func (s *Service) SubmitJSON(ctx context.Context, raw []byte) (tx.ApplyResult, error) {
	txn, err := tx.FromJSON(raw)
	if err != nil {
		return tx.ApplyResult{}, err
	}
	return s.Submit(ctx, txn)
}

// persistApplied writes the entries an applied transaction touched, plus the
// new sequence, to the entry store.
func (s *Service) persistApplied(ctx context.Context, meta *tx.Metadata, seq uint64) error {
	if s.store == nil {
		return nil
	}

	records := make([]entrystore.Record, 0, len(meta.AffectedNodes)+1)
	for _, node := range meta.AffectedNodes {
		raw, err := hex.DecodeString(node.LedgerIndex)
		if err != nil || len(raw) != 32 {
			return fmt.Errorf("bad ledger index %q", node.LedgerIndex)
		}
		var key [32]byte
		copy(key[:], raw)

		if node.NodeType == "DeletedNode" {
			if err := s.store.Delete(ctx, key); err != nil {
				return err
			}
			continue
		}
		entryType, data, ok := s.ledger.ReadRaw(key)
		if !ok {
			return fmt.Errorf("affected entry %s missing from ledger", node.LedgerIndex)
		}
		records = append(records, entrystore.Record{Key: key, Type: entryType, Data: data})
	}
	records = append(records, seqRecord(seq))
	return s.store.StoreBatch(ctx, records)
}

// persistAll writes the entire ledger to the entry store.
func (s *Service) persistAll(ctx context.Context) error {
	var records []entrystore.Record
	err := s.ledger.ForEach(func(key [32]byte, _ []byte) bool {
		entryType, data, ok := s.ledger.ReadRaw(key)
		if !ok {
			return true
		}
		records = append(records, entrystore.Record{Key: key, Type: entryType, Data: data})
		return true
	})
	if err != nil {
		return err
	}
	records = append(records, seqRecord(s.ledger.Seq()))
	return s.store.StoreBatch(ctx, records)
}

func seqRecord(seq uint64) entrystore.Record {
	data := make([]byte, 8)
	binary.BigEndian.PutUint64(data, seq)
	return entrystore.Record{Key: seqKey, Type: entry.TypeMeta, Data: data}
}

func (s *Service) record(ctx context.Context, txn tx.Transaction, res tx.ApplyResult) {
	if s.log == nil {
		return
	}
	err := s.log.Append(ctx, history.Record{
		Hash:      history.HashString(res.TxHash),
		Type:      txn.TxType().String(),
		Account:   txn.GetCommon().Account,
		Result:    res.Result.String(),
		Applied:   res.Applied,
		LedgerSeq: s.ledger.Seq(),
		Metadata:  history.EncodeMetadata(res.Metadata),
	})
	if err != nil {
		s.logger.Warn("history append failed", "err", err)
	}
}

func (s *Service) publish(txn tx.Transaction, res tx.ApplyResult) {
	if s.pub == nil {
		return
	}
	s.pub.PublishTransaction(&TransactionEvent{
		Hash:      history.HashString(res.TxHash),
		Type:      txn.TxType().String(),
		Account:   txn.GetCommon().Account,
		Result:    res.Result.String(),
		Applied:   res.Applied,
		LedgerSeq: s.ledger.Seq(),
		Metadata:  res.Metadata,
	})
}

// Close flushes the entry store.
func (s *Service) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.store == nil {
		return nil
	}
	return s.store.Sync()
}
