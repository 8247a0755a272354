package crypto

import "math/big"

// secp256k1N is the order of the secp256k1 curve group, the modulus
// ecrecover's (r, s) signature values must stay under.
var secp256k1N, _ = new(big.Int).SetString(
	"fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141", 16)

var secp256k1HalfN = new(big.Int).Rsh(secp256k1N, 1)

// ValidateSignatureValues checks r, s and the recovery id v for the
// structural validity ecrecover (address 0x01) requires before ever calling
// into curve recovery: v restricted to {0, 1}, r and s both in (0, N), and,
// when homestead is true, s additionally held to the lower half of the
// curve order (EIP-2's malleability fix) — irrelevant to the precompile
// itself, which predates Homestead, but kept as a parameter so callers
// outside the precompile (transaction signature checks) can share this.
func ValidateSignatureValues(v byte, r, s *big.Int, homestead bool) bool {
	if r == nil || s == nil {
		return false
	}
	if v > 1 {
		return false
	}
	if r.Sign() <= 0 || s.Sign() <= 0 {
		return false
	}
	if r.Cmp(secp256k1N) >= 0 || s.Cmp(secp256k1N) >= 0 {
		return false
	}
	if homestead && s.Cmp(secp256k1HalfN) > 0 {
		return false
	}
	return true
}
