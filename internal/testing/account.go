package testing

import (
	"crypto/ed25519"
	"crypto/sha512"

	addresscodec "github.com/refereehq/refereed/internal/codec/address-codec"
	"github.com/refereehq/refereed/internal/crypto"
)

// Account represents a test identity with keypair and address information.
type Account struct {
	// Name is a human-readable identifier used in test output.
	Name string

	// Address is the base58 account address.
	Address string

	// ID is the 20-byte account ID derived from the public key.
	ID crypto.AccountID

	// PublicKey and PrivateKey are the ed25519 key material.
	PublicKey  ed25519.PublicKey
	PrivateKey ed25519.PrivateKey
}

// NewAccount creates a test account with a deterministic keypair derived
// from the name. The same name always produces the same account, making
// tests reproducible.
func NewAccount(name string) *Account {
	hash := sha512.Sum512([]byte(name))
	privateKey := ed25519.NewKeyFromSeed(hash[:ed25519.SeedSize])
	publicKey := privateKey.Public().(ed25519.PublicKey)
	id := crypto.CalcAccountID(publicKey)

	return &Account{
		Name:       name,
		Address:    addresscodec.EncodeAccountID(id),
		ID:         id,
		PublicKey:  publicKey,
		PrivateKey: privateKey,
	}
}
