package sle

// TokenAccount is the balance record for one (owner, mint) pair.
type TokenAccount struct {
	// Owner controls the balance. For session vaults this is a derived
	// identity no external party holds keys for.
	Owner AccountID `codec:"owner"`

	// Mint identifies the asset.
	Mint AccountID `codec:"mint"`

	// Balance is the held amount in asset base units.
	Balance uint64 `codec:"balance"`
}

// ParseTokenAccount parses a TokenAccount ledger entry.
func ParseTokenAccount(data []byte) (*TokenAccount, error) {
	var acct TokenAccount
	if err := Decode(data, &acct); err != nil {
		return nil, err
	}
	return &acct, nil
}

// Bytes serializes the entry.
func (a *TokenAccount) Bytes() ([]byte, error) {
	return Encode(a)
}

// Mint is an asset definition entry. Provisioning mints is not a ledger
// operation; entries are seeded at genesis.
type Mint struct {
	// ID identifies the asset.
	ID AccountID `codec:"id"`

	// Decimals is the number of base-unit digits after the decimal point
	// of one whole asset unit.
	Decimals uint8 `codec:"decimals"`
}

// ParseMint parses a Mint ledger entry.
func ParseMint(data []byte) (*Mint, error) {
	var m Mint
	if err := Decode(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Bytes serializes the entry.
func (m *Mint) Bytes() ([]byte, error) {
	return Encode(m)
}
