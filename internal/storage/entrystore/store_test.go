package entrystore

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/refereehq/refereed/internal/core/ledger/entry"
)

func testKey(b byte) [32]byte {
	var key [32]byte
	key[0] = b
	return key
}

func openMemoryStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(&Config{Backend: "memory", CacheSize: 16, Compressor: "lz4"})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreFetchRoundTrip(t *testing.T) {
	store := openMemoryStore(t)
	ctx := context.Background()

	record := Record{Key: testKey(1), Type: entry.TypeGameSession, Data: []byte("session state")}
	require.NoError(t, store.Store(ctx, record))

	got, err := store.Fetch(ctx, testKey(1))
	require.NoError(t, err)
	assert.Equal(t, record.Type, got.Type)
	assert.Equal(t, record.Data, got.Data)
}

func TestFetchMissing(t *testing.T) {
	store := openMemoryStore(t)

	_, err := store.Fetch(context.Background(), testKey(9))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete(t *testing.T) {
	store := openMemoryStore(t)
	ctx := context.Background()

	require.NoError(t, store.Store(ctx, Record{Key: testKey(2), Type: entry.TypeProgramConfig, Data: []byte("cfg")}))
	require.NoError(t, store.Delete(ctx, testKey(2)))

	_, err := store.Fetch(ctx, testKey(2))
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting again is a no-op.
	assert.NoError(t, store.Delete(ctx, testKey(2)))
}

func TestCompressedValuesSurviveCacheEviction(t *testing.T) {
	store, err := Open(&Config{Backend: "memory", CacheSize: 2, Compressor: "lz4"})
	require.NoError(t, err)
	defer store.Close()
	ctx := context.Background()

	// Repetitive payload large enough for lz4 to actually shrink.
	payload := bytes.Repeat([]byte("refereed"), 512)
	require.NoError(t, store.Store(ctx, Record{Key: testKey(1), Type: entry.TypeGameSession, Data: payload}))

	// Evict key 1 from the two-slot cache.
	require.NoError(t, store.Store(ctx, Record{Key: testKey(2), Type: entry.TypeTokenAccount, Data: []byte("a")}))
	require.NoError(t, store.Store(ctx, Record{Key: testKey(3), Type: entry.TypeTokenAccount, Data: []byte("b")}))

	got, err := store.Fetch(ctx, testKey(1))
	require.NoError(t, err)
	assert.Equal(t, payload, got.Data)
}

func TestStoreBatchAndForEach(t *testing.T) {
	store := openMemoryStore(t)
	ctx := context.Background()

	records := []Record{
		{Key: testKey(1), Type: entry.TypeProgramConfig, Data: []byte("one")},
		{Key: testKey(2), Type: entry.TypeGameSession, Data: []byte("two")},
		{Key: testKey(3), Type: entry.TypeGameSession, Data: []byte("three")},
	}
	require.NoError(t, store.StoreBatch(ctx, records))

	seen := make(map[[32]byte][]byte)
	require.NoError(t, store.ForEach(ctx, func(record Record) error {
		seen[record.Key] = record.Data
		return nil
	}))
	require.Len(t, seen, 3)
	assert.Equal(t, []byte("two"), seen[testKey(2)])

	counts, err := store.CountByType(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[entry.TypeProgramConfig])
	assert.Equal(t, 2, counts[entry.TypeGameSession])
}

func TestCacheCounters(t *testing.T) {
	store := openMemoryStore(t)
	ctx := context.Background()

	require.NoError(t, store.Store(ctx, Record{Key: testKey(1), Type: entry.TypeMint, Data: []byte("mint")}))

	_, err := store.Fetch(ctx, testKey(1))
	require.NoError(t, err)

	stats := store.Stats()
	assert.Equal(t, uint64(1), stats.Writes)
	assert.Equal(t, uint64(1), stats.CacheHits)
	assert.Equal(t, "memory", stats.BackendName)
}

func TestCancelledContext(t *testing.T) {
	store := openMemoryStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := store.Store(ctx, Record{Key: testKey(1), Type: entry.TypeMint, Data: []byte("mint")})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConfigValidate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
	assert.Error(t, (&Config{Backend: "", Path: "x", Compressor: "lz4"}).Validate())
	assert.Error(t, (&Config{Backend: "pebble", Path: "", Compressor: "lz4"}).Validate())
	assert.Error(t, (&Config{Backend: "pebble", Path: "x", Compressor: ""}).Validate())
	assert.NoError(t, (&Config{Backend: "memory", Compressor: "none"}).Validate())
}

func TestUnknownBackend(t *testing.T) {
	_, err := Open(&Config{Backend: "cassette", Path: "x", Compressor: "none"})
	assert.Error(t, err)
}

func TestDurableBackends(t *testing.T) {
	for _, backendName := range []string{"pebble", "leveldb"} {
		t.Run(backendName, func(t *testing.T) {
			config := &Config{
				Backend:         backendName,
				Path:            t.TempDir(),
				CacheSize:       16,
				Compressor:      "lz4",
				CreateIfMissing: true,
			}
			store, err := Open(config)
			require.NoError(t, err)
			defer store.Close()
			ctx := context.Background()

			record := Record{Key: testKey(7), Type: entry.TypeGameSession, Data: bytes.Repeat([]byte("state"), 100)}
			require.NoError(t, store.Store(ctx, record))
			require.NoError(t, store.Sync())

			got, err := store.Fetch(ctx, testKey(7))
			require.NoError(t, err)
			assert.Equal(t, record.Data, got.Data)

			_, err = store.Fetch(ctx, testKey(8))
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}
