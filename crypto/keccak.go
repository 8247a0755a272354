package crypto

import (
	"golang.org/x/crypto/sha3"

	"github.com/ethforge/corevm/types"
)

// Keccak256 calculates the Keccak-256 hash of the concatenation of the given
// byte slices. This is the only hash function the EVM core itself ever
// calls directly (the KECCAK256 opcode, CREATE/CREATE2 address derivation,
// and EOF container hashing); precompile-specific hash functions live next
// to the precompiles that use them.
func Keccak256(data ...[]byte) []byte {
	d := sha3.NewLegacyKeccak256()
	for _, b := range data {
		d.Write(b)
	}
	return d.Sum(nil)
}

// Keccak256Hash calculates Keccak-256 and returns it as a types.Hash.
func Keccak256Hash(data ...[]byte) types.Hash {
	return types.BytesToHash(Keccak256(data...))
}
