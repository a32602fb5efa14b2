package sle

// ProgramConfig is the per-game fee configuration entry.
//
// It is created once per game identity, and only its admin may change the
// fee rate afterwards. Updates to one game's config never touch another's:
// each config lives at its own derived key.
type ProgramConfig struct {
	// Admin is the platform administrator identity that controls this
	// config and receives the termination fee at session close.
	Admin AccountID `codec:"admin"`

	// Game is the game identity this config belongs to.
	Game AccountID `codec:"game"`

	// Mint is the asset this game's sessions settle in.
	Mint AccountID `codec:"mint"`

	// FeeBasisPoints is the admin's fee rate in parts per ten thousand.
	// Invariant: FeeBasisPoints <= MaxFeeBasisPoints.
	FeeBasisPoints uint64 `codec:"fee_basis_points"`
}

// MaxFeeBasisPoints is the upper bound of the fee rate (100%).
const MaxFeeBasisPoints = 10_000

// ParseProgramConfig parses a ProgramConfig ledger entry.
func ParseProgramConfig(data []byte) (*ProgramConfig, error) {
	var cfg ProgramConfig
	if err := Decode(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Bytes serializes the entry.
func (c *ProgramConfig) Bytes() ([]byte, error) {
	return Encode(c)
}
