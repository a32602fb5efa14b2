package tx

// Type identifies a transaction type.
type Type int

const (
	// TypeConfigCreate creates the fee configuration for a game identity.
	TypeConfigCreate Type = iota
	// TypeConfigUpdate changes a game's fee basis points.
	TypeConfigUpdate
	// TypeSessionCreate opens a wagering session and escrows the
	// termination fee.
	TypeSessionCreate
	// TypeDeposit pays a player's entry fee into the session vault.
	TypeDeposit
	// TypeRefund returns a player's entry fee from the vault.
	TypeRefund
	// TypePayout pays a player's share of the winnings from the vault.
	TypePayout
	// TypeSessionClose sweeps the termination fee and destroys the session.
	TypeSessionClose
)

var typeNames = map[Type]string{
	TypeConfigCreate:  "ConfigCreate",
	TypeConfigUpdate:  "ConfigUpdate",
	TypeSessionCreate: "SessionCreate",
	TypeDeposit:       "Deposit",
	TypeRefund:        "Refund",
	TypePayout:        "Payout",
	TypeSessionClose:  "SessionClose",
}

var typesByName = func() map[string]Type {
	m := make(map[string]Type, len(typeNames))
	for t, name := range typeNames {
		m[name] = t
	}
	return m
}()

// String returns the canonical transaction type name.
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "Unknown"
}

// TypeFromName resolves a transaction type by its canonical name.
func TypeFromName(name string) (Type, bool) {
	t, ok := typesByName[name]
	return t, ok
}
