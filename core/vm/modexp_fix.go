package vm

import (
	"math/big"

	modexpfix "github.com/ethereum/go-bigmodexpfix"
)

// modexpfixExp computes base**exponent mod modulus for the modexp
// precompile (address 0x05). It defers to go-bigmodexpfix rather than
// math/big's own Exp: math/big special-cases a base congruent to 1 mod a
// small modulus in a way that diverges from the EIP-198 reference
// implementation at the consensus boundary, and this library exists
// specifically to paper over that divergence so every node computes the
// same answer.
func modexpfixExp(base, exponent, modulus *big.Int) *big.Int {
	return modexpfix.ModExp(base, exponent, modulus)
}
