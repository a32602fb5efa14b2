package crypto

import (
	"crypto/sha512"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSha512Half(t *testing.T) {
	full := sha512.Sum512([]byte("refereed"))
	var want [32]byte
	copy(want[:], full[:32])

	got := Sha512Half([]byte("refereed"))
	require.Equal(t, want, got)
}

func TestSha512HalfConcatenation(t *testing.T) {
	// Hashing in pieces must equal hashing the concatenated input.
	joined := Sha512Half([]byte("game_session"), []byte("abc"), []byte{0x01, 0x02})
	whole := Sha512Half([]byte("game_sessionabc\x01\x02"))
	require.Equal(t, whole, joined)
}
