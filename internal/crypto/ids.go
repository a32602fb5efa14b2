// Package crypto provides identity derivation for refereed accounts.
//
// Account identifiers follow the Bitcoin-style construction: a 160-bit ID
// computed as RIPEMD160(SHA256(publicKey)). Two different hash functions
// guard against length-extension attacks, and RIPEMD160 is the only hash
// generally considered safe at 160 bits.
package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"

	"github.com/decred/dcrd/crypto/ripemd160"
)

// AccountIDSize is the size of an account ID in bytes.
const AccountIDSize = 20

// AccountID is a 160-bit identifier for an account, mint, or derived owner.
type AccountID [AccountIDSize]byte

// CalcAccountID computes the account ID from a public key.
// The entire public key, including any scheme prefix, is hashed.
func CalcAccountID(publicKey []byte) AccountID {
	sha := sha256.Sum256(publicKey)

	h := ripemd160.New()
	h.Write(sha[:])

	var id AccountID
	copy(id[:], h.Sum(nil))
	return id
}

// AccountIDFromBytes creates an account ID from a byte slice.
// Returns a zero account ID if the slice is not exactly 20 bytes.
func AccountIDFromBytes(b []byte) AccountID {
	var id AccountID
	if len(b) == AccountIDSize {
		copy(id[:], b)
	}
	return id
}

// IsZero reports whether the account ID is all zeros.
func (id AccountID) IsZero() bool {
	for _, b := range id {
		if b != 0 {
			return false
		}
	}
	return true
}

// Keypair holds a freshly generated ed25519 keypair and its derived account ID.
type Keypair struct {
	PublicKey  ed25519.PublicKey
	PrivateKey ed25519.PrivateKey
	AccountID  AccountID
}

// GenerateKeypair creates a new ed25519 keypair and derives its account ID.
// Signature verification is not part of the transaction engine; keypairs
// exist so operators and tests can mint fresh identities.
func GenerateKeypair() (*Keypair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	return &Keypair{
		PublicKey:  pub,
		PrivateKey: priv,
		AccountID:  CalcAccountID(pub),
	}, nil
}
