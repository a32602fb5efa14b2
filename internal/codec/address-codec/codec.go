// Package addresscodec encodes and decodes refereed account identifiers.
//
// Addresses are base58check strings: a one-byte version prefix, the 20-byte
// account ID, and a 4-byte double-SHA256 checksum.
package addresscodec

import (
	"bytes"
	"crypto/sha256"
	"errors"

	"github.com/mr-tron/base58"

	"github.com/refereehq/refereed/internal/crypto"
)

// AccountAddressPrefix is the version byte for account addresses.
const AccountAddressPrefix = 0x3C

const checksumLength = 4

var (
	// ErrInvalidAddress is returned when an address fails to decode.
	ErrInvalidAddress = errors.New("invalid account address")

	// ErrInvalidChecksum is returned when an address decodes but its
	// checksum does not match.
	ErrInvalidChecksum = errors.New("invalid address checksum")
)

// EncodeAccountID encodes a 20-byte account ID as a base58check address.
func EncodeAccountID(id crypto.AccountID) string {
	payload := make([]byte, 0, 1+crypto.AccountIDSize+checksumLength)
	payload = append(payload, AccountAddressPrefix)
	payload = append(payload, id[:]...)
	payload = append(payload, checksum(payload)...)
	return base58.Encode(payload)
}

// DecodeAccountID decodes a base58check address back to its account ID.
func DecodeAccountID(address string) (crypto.AccountID, error) {
	var id crypto.AccountID

	raw, err := base58.Decode(address)
	if err != nil {
		return id, ErrInvalidAddress
	}
	if len(raw) != 1+crypto.AccountIDSize+checksumLength {
		return id, ErrInvalidAddress
	}
	if raw[0] != AccountAddressPrefix {
		return id, ErrInvalidAddress
	}

	body := raw[:1+crypto.AccountIDSize]
	if !bytes.Equal(checksum(body), raw[1+crypto.AccountIDSize:]) {
		return id, ErrInvalidChecksum
	}

	copy(id[:], body[1:])
	return id, nil
}

// IsValidAddress reports whether the string decodes to a well-formed address.
func IsValidAddress(address string) bool {
	_, err := DecodeAccountID(address)
	return err == nil
}

// checksum returns the first four bytes of SHA256(SHA256(data)).
func checksum(data []byte) []byte {
	first := sha256.Sum256(data)
	second := sha256.Sum256(first[:])
	return second[:checksumLength]
}
