// Package history persists an audit log of applied transactions to a
// relational database. The daemon keeps ledger state in the entry store;
// history answers "what happened" queries that state alone cannot.
package history

import (
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Driver names accepted by Open.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// ErrNotFound is returned when a transaction hash is not in the log.
var ErrNotFound = errors.New("history: transaction not found")

// Record is one applied or rejected transaction.
type Record struct {
	Hash       string    `json:"hash"`
	Type       string    `json:"type"`
	Account    string    `json:"account"`
	Result     string    `json:"result"`
	Applied    bool      `json:"applied"`
	LedgerSeq  uint64    `json:"ledger_seq"`
	Metadata   string    `json:"metadata,omitempty"`
	ExecutedAt time.Time `json:"executed_at"`
}

// Store is a transaction audit log backed by database/sql.
type Store struct {
	db     *sql.DB
	driver string
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS transactions (
	hash        TEXT PRIMARY KEY,
	tx_type     TEXT NOT NULL,
	account     TEXT NOT NULL,
	result      TEXT NOT NULL,
	applied     INTEGER NOT NULL,
	ledger_seq  INTEGER NOT NULL,
	metadata    TEXT NOT NULL DEFAULT '',
	executed_at TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_transactions_account ON transactions(account);
CREATE INDEX IF NOT EXISTS idx_transactions_seq ON transactions(ledger_seq);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS transactions (
	hash        TEXT PRIMARY KEY,
	tx_type     TEXT NOT NULL,
	account     TEXT NOT NULL,
	result      TEXT NOT NULL,
	applied     BOOLEAN NOT NULL,
	ledger_seq  BIGINT NOT NULL,
	metadata    TEXT NOT NULL DEFAULT '',
	executed_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_transactions_account ON transactions(account);
CREATE INDEX IF NOT EXISTS idx_transactions_seq ON transactions(ledger_seq);
`

// Open connects to the given database and ensures the schema exists.
// driver is DriverSQLite or DriverPostgres; dsn follows the driver's
// connection string format (a file path for sqlite).
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	var schema string
	switch driver {
	case DriverSQLite:
		schema = sqliteSchema
	case DriverPostgres:
		schema = postgresSchema
	default:
		return nil, fmt.Errorf("history: unknown driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("history: open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// The sqlite driver serializes writes; a single connection avoids
		// SQLITE_BUSY under concurrent access.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: ping: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: create schema: %w", err)
	}
	return &Store{db: db, driver: driver}, nil
}

// Append writes one record to the log.
func (s *Store) Append(ctx context.Context, rec Record) error {
	if rec.ExecutedAt.IsZero() {
		rec.ExecutedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO transactions (hash, tx_type, account, result, applied, ledger_seq, metadata, executed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		rec.Hash, rec.Type, rec.Account, rec.Result, rec.Applied, rec.LedgerSeq, rec.Metadata, rec.ExecutedAt)
	if err != nil {
		return fmt.Errorf("history: append: %w", err)
	}
	return nil
}

// ByHash looks up a transaction by its hex hash.
func (s *Store) ByHash(ctx context.Context, hash string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT hash, tx_type, account, result, applied, ledger_seq, metadata, executed_at
		FROM transactions WHERE hash = ?`), hash)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("history: by hash: %w", err)
	}
	return rec, nil
}

// ByAccount returns the most recent transactions submitted by an account,
// newest first.
func (s *Store) ByAccount(ctx context.Context, account string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT hash, tx_type, account, result, applied, ledger_seq, metadata, executed_at
		FROM transactions WHERE account = ?
		ORDER BY ledger_seq DESC, executed_at DESC LIMIT ?`), account, limit)
	if err != nil {
		return nil, fmt.Errorf("history: by account: %w", err)
	}
	defer rows.Close()
	return collectRecords(rows)
}

// Recent returns the most recent transactions, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT hash, tx_type, account, result, applied, ledger_seq, metadata, executed_at
		FROM transactions ORDER BY ledger_seq DESC, executed_at DESC LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("history: recent: %w", err)
	}
	defer rows.Close()
	return collectRecords(rows)
}

// Count returns the total number of logged transactions.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transactions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("history: count: %w", err)
	}
	return n, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// rebind rewrites ? placeholders into the $n form lib/pq expects.
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	out := make([]byte, 0, len(query)+8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			out = append(out, fmt.Sprintf("$%d", n)...)
			continue
		}
		out = append(out, query[i])
	}
	return string(out)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*Record, error) {
	var rec Record
	if err := s.Scan(&rec.Hash, &rec.Type, &rec.Account, &rec.Result, &rec.Applied,
		&rec.LedgerSeq, &rec.Metadata, &rec.ExecutedAt); err != nil {
		return nil, err
	}
	return &rec, nil
}

func collectRecords(rows *sql.Rows) ([]Record, error) {
	var recs []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("history: scan: %w", err)
		}
		recs = append(recs, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: rows: %w", err)
	}
	return recs, nil
}

// EncodeMetadata renders transaction metadata for storage.
func EncodeMetadata(meta any) string {
	if meta == nil {
		return ""
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return ""
	}
	return string(raw)
}

// HashString renders a transaction hash for storage.
func HashString(hash [32]byte) string {
	return hex.EncodeToString(hash[:])
}
