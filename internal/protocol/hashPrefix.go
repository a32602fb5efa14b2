// Package protocol defines the hash domain prefixes used across refereed.
package protocol

// makeHashPrefix combines three ASCII characters into a 4-byte prefix with
// the last byte set to zero.
func makeHashPrefix(a, b, c byte) [4]byte {
	return [4]byte{a, b, c, 0}
}

// Hash prefixes separate the hash domains of refereed objects so two
// objects with identical payloads in different domains never collide.
var (
	// HashPrefixTransactionID domain-separates transaction hashes.
	HashPrefixTransactionID = makeHashPrefix('T', 'X', 'N')

	// HashPrefixMint domain-separates mint identity derivation.
	HashPrefixMint = makeHashPrefix('M', 'N', 'T')

	// HashPrefixMeta domain-separates daemon bookkeeping keys in the
	// entry store.
	HashPrefixMeta = makeHashPrefix('M', 'T', 'A')
)
