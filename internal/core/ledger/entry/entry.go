// Package entry defines the ledger entry type identifiers.
package entry

// Type identifies the kind of record stored at a ledger key.
type Type uint16

const (
	// TypeProgramConfig is a per-game fee configuration record.
	TypeProgramConfig Type = 0x0063

	// TypeGameSession is a wagering session record, including its roster.
	TypeGameSession Type = 0x0067

	// TypeTokenAccount is a token balance record for one (owner, mint) pair.
	TypeTokenAccount Type = 0x0074

	// TypeMint is an asset definition record.
	TypeMint Type = 0x006D

	// TypeMeta is daemon bookkeeping persisted alongside ledger entries.
	// Meta records never appear in ledger state.
	TypeMeta Type = 0x004D
)

// String returns the canonical name of the entry type.
func (t Type) String() string {
	switch t {
	case TypeProgramConfig:
		return "ProgramConfig"
	case TypeGameSession:
		return "GameSession"
	case TypeTokenAccount:
		return "TokenAccount"
	case TypeMint:
		return "Mint"
	case TypeMeta:
		return "Meta"
	default:
		return "Unknown"
	}
}
