package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalcAccountIDDeterministic(t *testing.T) {
	pub := []byte("some-public-key-material")
	a := CalcAccountID(pub)
	b := CalcAccountID(pub)
	require.Equal(t, a, b)
	assert.False(t, a.IsZero())
}

func TestCalcAccountIDDistinct(t *testing.T) {
	a := CalcAccountID([]byte("key-one"))
	b := CalcAccountID([]byte("key-two"))
	assert.NotEqual(t, a, b)
}

func TestAccountIDFromBytes(t *testing.T) {
	raw := make([]byte, AccountIDSize)
	raw[0] = 0xAB
	id := AccountIDFromBytes(raw)
	assert.Equal(t, byte(0xAB), id[0])

	// Wrong length yields the zero ID.
	assert.True(t, AccountIDFromBytes([]byte{1, 2, 3}).IsZero())
}

func TestGenerateKeypair(t *testing.T) {
	kp, err := GenerateKeypair()
	require.NoError(t, err)
	require.NotNil(t, kp)
	assert.Equal(t, CalcAccountID(kp.PublicKey), kp.AccountID)

	other, err := GenerateKeypair()
	require.NoError(t, err)
	assert.NotEqual(t, kp.AccountID, other.AccountID)
}
