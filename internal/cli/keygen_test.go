package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	addresscodec "github.com/refereehq/refereed/internal/codec/address-codec"
)

func TestKeygenPrintsValidAddress(t *testing.T) {
	var out bytes.Buffer
	keygenCmd.SetOut(&out)
	require.NoError(t, runKeygen(keygenCmd, nil))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)

	addr := strings.TrimSpace(strings.TrimPrefix(lines[0], "address:"))
	assert.True(t, addresscodec.IsValidAddress(addr))
}
