// Package sle defines the serialized ledger entries of the refereed state:
// program configurations, game sessions with their rosters, token balance
// records, and asset definitions.
//
// Entries are encoded with CBOR. The encoding is canonical so an entry's
// bytes are stable across encode/decode round trips.
package sle

import (
	"errors"

	"github.com/ugorji/go/codec"

	addresscodec "github.com/refereehq/refereed/internal/codec/address-codec"
	"github.com/refereehq/refereed/internal/crypto"
)

// AccountID is re-exported so transactors can reference identities without
// importing the crypto package directly.
type AccountID = crypto.AccountID

// ErrCorruptEntry is returned when stored bytes do not decode into the
// expected entry shape.
var ErrCorruptEntry = errors.New("corrupt ledger entry")

var cborHandle = func() *codec.CborHandle {
	h := &codec.CborHandle{}
	h.Canonical = true
	return h
}()

// Encode serializes a ledger entry to its canonical CBOR bytes.
func Encode(v any) ([]byte, error) {
	var out []byte
	if err := codec.NewEncoderBytes(&out, cborHandle).Encode(v); err != nil {
		return nil, err
	}
	return out, nil
}

// Decode deserializes CBOR bytes into the given entry pointer.
func Decode(data []byte, v any) error {
	if len(data) == 0 {
		return ErrCorruptEntry
	}
	if err := codec.NewDecoderBytes(data, cborHandle).Decode(v); err != nil {
		return ErrCorruptEntry
	}
	return nil
}

// DecodeAccountID decodes a base58check address into an account ID.
func DecodeAccountID(address string) (AccountID, error) {
	return addresscodec.DecodeAccountID(address)
}

// EncodeAccountID encodes an account ID as a base58check address.
func EncodeAccountID(id AccountID) string {
	return addresscodec.EncodeAccountID(id)
}
