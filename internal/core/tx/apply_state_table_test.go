package tx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/refereehq/refereed/internal/core/ledger/entry"
	"github.com/refereehq/refereed/internal/core/ledger/keylet"
)

// memView is a minimal in-memory LedgerView for table tests.
type memView struct {
	entries map[[32]byte][]byte
}

func newMemView() *memView {
	return &memView{entries: make(map[[32]byte][]byte)}
}

func (v *memView) Read(k keylet.Keylet) ([]byte, error) {
	data, ok := v.entries[k.Key]
	if !ok {
		return nil, nil
	}
	return data, nil
}

func (v *memView) Exists(k keylet.Keylet) (bool, error) {
	_, ok := v.entries[k.Key]
	return ok, nil
}

func (v *memView) Insert(k keylet.Keylet, data []byte) error {
	v.entries[k.Key] = data
	return nil
}

func (v *memView) Update(k keylet.Keylet, data []byte) error {
	v.entries[k.Key] = data
	return nil
}

func (v *memView) Erase(k keylet.Keylet) error {
	delete(v.entries, k.Key)
	return nil
}

func (v *memView) ForEach(fn func(key [32]byte, data []byte) bool) error {
	for key, data := range v.entries {
		if !fn(key, data) {
			return nil
		}
	}
	return nil
}

func tableKeylet(b byte) keylet.Keylet {
	k := keylet.Keylet{Type: entry.TypeGameSession}
	k.Key[0] = b
	return k
}

func TestTableBuffersUntilCommit(t *testing.T) {
	base := newMemView()
	table := NewApplyStateTable(base)
	k := tableKeylet(1)

	require.NoError(t, table.Insert(k, []byte("v1")))

	// Visible through the table, invisible in the base.
	data, err := table.Read(k)
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), data)
	exists, err := base.Exists(k)
	require.NoError(t, err)
	assert.False(t, exists)

	affected, err := table.Commit()
	require.NoError(t, err)
	require.Len(t, affected, 1)
	assert.Equal(t, "CreatedNode", affected[0].NodeType)

	exists, err = base.Exists(k)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestTableInsertExistingFails(t *testing.T) {
	base := newMemView()
	k := tableKeylet(1)
	require.NoError(t, base.Insert(k, []byte("live")))

	table := NewApplyStateTable(base)
	assert.Error(t, table.Insert(k, []byte("dup")))
}

func TestTableInsertThenEraseCancels(t *testing.T) {
	base := newMemView()
	table := NewApplyStateTable(base)
	k := tableKeylet(1)

	require.NoError(t, table.Insert(k, []byte("v1")))
	require.NoError(t, table.Erase(k))

	affected, err := table.Commit()
	require.NoError(t, err)
	assert.Empty(t, affected)
	exists, err := base.Exists(k)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestTableEraseThenInsertBecomesModify(t *testing.T) {
	base := newMemView()
	k := tableKeylet(1)
	require.NoError(t, base.Insert(k, []byte("old")))

	table := NewApplyStateTable(base)
	require.NoError(t, table.Erase(k))
	require.NoError(t, table.Insert(k, []byte("new")))

	affected, err := table.Commit()
	require.NoError(t, err)
	require.Len(t, affected, 1)
	assert.Equal(t, "ModifiedNode", affected[0].NodeType)

	data, err := base.Read(k)
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), data)
}

func TestTableReadThroughAndUpdate(t *testing.T) {
	base := newMemView()
	k := tableKeylet(1)
	require.NoError(t, base.Insert(k, []byte("old")))

	table := NewApplyStateTable(base)
	data, err := table.Read(k)
	require.NoError(t, err)
	assert.Equal(t, []byte("old"), data)

	require.NoError(t, table.Update(k, []byte("new")))

	// The base still holds the old value until commit.
	baseData, err := base.Read(k)
	require.NoError(t, err)
	assert.Equal(t, []byte("old"), baseData)

	affected, err := table.Commit()
	require.NoError(t, err)
	require.Len(t, affected, 1)
	assert.Equal(t, "ModifiedNode", affected[0].NodeType)

	baseData, err = base.Read(k)
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), baseData)
}

func TestTableErase(t *testing.T) {
	base := newMemView()
	k := tableKeylet(1)
	require.NoError(t, base.Insert(k, []byte("doomed")))

	table := NewApplyStateTable(base)
	require.NoError(t, table.Erase(k))

	data, err := table.Read(k)
	require.NoError(t, err)
	assert.Nil(t, data)
	exists, err := table.Exists(k)
	require.NoError(t, err)
	assert.False(t, exists)

	affected, err := table.Commit()
	require.NoError(t, err)
	require.Len(t, affected, 1)
	assert.Equal(t, "DeletedNode", affected[0].NodeType)

	exists, err = base.Exists(k)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestTableCachedReadsNotReported(t *testing.T) {
	base := newMemView()
	k := tableKeylet(1)
	require.NoError(t, base.Insert(k, []byte("read-only")))

	table := NewApplyStateTable(base)
	_, err := table.Read(k)
	require.NoError(t, err)

	affected, err := table.Commit()
	require.NoError(t, err)
	assert.Empty(t, affected)
}
