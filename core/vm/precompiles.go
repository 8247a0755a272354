package vm

import (
	"crypto/sha256"
	"math/big"

	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // ripemd160 is mandated by the protocol, not a choice

	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	"github.com/ethforge/corevm/crypto"
	"github.com/ethforge/corevm/types"
)

// SelectPrecompiles returns the address -> contract map active under rules.
// Each hard fork only ever adds or re-prices entries (EIP-1108's bn256
// repricing, EIP-2565's modexp repricing, Cancun's point evaluation,
// Prague's BLS12-381 set); nothing is ever removed once added.
func SelectPrecompiles(rules ForkRules) map[types.Address]PrecompiledContract {
	p := map[types.Address]PrecompiledContract{
		precompileAddr(1): &ecrecoverContract{},
		precompileAddr(2): &sha256hashContract{},
		precompileAddr(3): &ripemd160hashContract{},
		precompileAddr(4): &identityContract{},
		precompileAddr(5): &bigModExpContract{eip2565: rules.IsBerlin},
	}

	switch {
	case rules.IsIstanbul:
		p[precompileAddr(6)] = &bn256AddContract{gas: 150}
		p[precompileAddr(7)] = &bn256ScalarMulContract{gas: 6000}
		p[precompileAddr(8)] = &bn256PairingContract{baseGas: 45000, perPointGas: 34000}
	case rules.IsByzantium:
		p[precompileAddr(6)] = &bn256AddContract{gas: 500}
		p[precompileAddr(7)] = &bn256ScalarMulContract{gas: 40000}
		p[precompileAddr(8)] = &bn256PairingContract{baseGas: 100000, perPointGas: 80000}
	}

	if rules.IsIstanbul {
		p[precompileAddr(9)] = &blake2FContract{}
	}

	if rules.IsCancun {
		p[precompileAddr(0x0a)] = &kzgPointEvaluationContract{}
	}

	if rules.IsPrague {
		p[precompileAddr(0x0b)] = &blsG1AddContract{}
		p[precompileAddr(0x0c)] = &blsG1MSMContract{}
		p[precompileAddr(0x0d)] = &blsG2AddContract{}
		p[precompileAddr(0x0e)] = &blsG2MSMContract{}
		p[precompileAddr(0x0f)] = &blsPairingCheckContract{}
		p[precompileAddr(0x10)] = &blsMapFpToG1Contract{}
		p[precompileAddr(0x11)] = &blsMapFp2ToG2Contract{}
	}

	return p
}

func precompileAddr(b byte) types.Address {
	return types.BytesToAddress([]byte{b})
}

// --- ecrecover (address 0x01) ---
//
// Recovers the signer's address from a (hash, v, r, s) tuple. Grounded on
// the module's own keccak256 plus decred's secp256k1 — the library the
// wider Go Ethereum ecosystem leans on now that libsecp256k1 cgo bindings
// are no longer the default path — rather than the stdlib's P256 curve,
// which is simply the wrong curve for this signature scheme.
type ecrecoverContract struct{}

func (c *ecrecoverContract) RequiredGas(input []byte) uint64 { return 3000 }

func (c *ecrecoverContract) Run(input []byte) ([]byte, error) {
	input = rightPad(input, 128)

	var (
		hash = input[0:32]
		v    = input[63]
		r    = new(big.Int).SetBytes(input[64:96])
		s    = new(big.Int).SetBytes(input[96:128])
	)
	if !allZero(input[32:63]) {
		return nil, nil
	}
	if v != 27 && v != 28 {
		return nil, nil
	}
	if !crypto.ValidateSignatureValues(v-27, r, s, false) {
		return nil, nil
	}

	// decred's compact signature format puts the recovery byte first
	// (27+recid for an uncompressed-key recovery), unlike Ethereum's own
	// (hash, v, r, s) layout where v trails r and s.
	var sig [65]byte
	sig[0] = v
	r.FillBytes(sig[1:33])
	s.FillBytes(sig[33:65])

	pubKey, _, err := ecdsa.RecoverCompact(sig[:], hash)
	if err != nil {
		return nil, nil
	}
	uncompressed := pubKey.SerializeUncompressed()

	out := make([]byte, 32)
	copy(out[12:], crypto.Keccak256(uncompressed[1:])[12:])
	return out, nil
}

// --- sha256 (address 0x02) ---

type sha256hashContract struct{}

func (c *sha256hashContract) RequiredGas(input []byte) uint64 {
	return 60 + 12*wordCount(len(input))
}

func (c *sha256hashContract) Run(input []byte) ([]byte, error) {
	h := sha256.Sum256(input)
	return h[:], nil
}

// --- ripemd160 (address 0x03) ---

type ripemd160hashContract struct{}

func (c *ripemd160hashContract) RequiredGas(input []byte) uint64 {
	return 600 + 120*wordCount(len(input))
}

func (c *ripemd160hashContract) Run(input []byte) ([]byte, error) {
	h := ripemd160.New()
	h.Write(input)
	out := make([]byte, 32)
	copy(out[12:], h.Sum(nil))
	return out, nil
}

// --- identity (address 0x04) ---

type identityContract struct{}

func (c *identityContract) RequiredGas(input []byte) uint64 {
	return 15 + 3*wordCount(len(input))
}

func (c *identityContract) Run(input []byte) ([]byte, error) {
	out := make([]byte, len(input))
	copy(out, input)
	return out, nil
}

// --- modexp (address 0x05, EIP-198/EIP-2565) ---

type bigModExpContract struct {
	eip2565 bool
}

func (c *bigModExpContract) RequiredGas(input []byte) uint64 {
	input = rightPad(input, 96)
	baseLen := new(big.Int).SetBytes(input[0:32]).Uint64()
	expLen := new(big.Int).SetBytes(input[32:64]).Uint64()
	modLen := new(big.Int).SetBytes(input[64:96]).Uint64()

	adjExpLen := adjustedExpLen(expLen, baseLen, getDataSlice(input, 96, baseLen+expLen))

	maxLen := baseLen
	if modLen > maxLen {
		maxLen = modLen
	}

	if c.eip2565 {
		words := (maxLen + 7) / 8
		gas := words * words * maxUint64v(adjExpLen, 1) / 3
		if gas < 200 {
			gas = 200
		}
		return gas
	}

	complexity := modexpMultComplexity(maxLen)
	gas := complexity * maxUint64v(adjExpLen, 1) / 20
	if gas < 200 {
		gas = 200
	}
	return gas
}

// modexpMultComplexity is EIP-198's original (pre-Berlin) multiplication
// complexity estimate, piecewise in the larger of the base/modulus length.
func modexpMultComplexity(x uint64) uint64 {
	switch {
	case x <= 64:
		return x * x
	case x <= 1024:
		return x*x/4 + 96*x - 3072
	default:
		return x*x/16 + 480*x - 199680
	}
}

func (c *bigModExpContract) Run(input []byte) ([]byte, error) {
	input = rightPad(input, 96)
	baseLen := new(big.Int).SetBytes(input[0:32]).Uint64()
	expLen := new(big.Int).SetBytes(input[32:64]).Uint64()
	modLen := new(big.Int).SetBytes(input[64:96]).Uint64()

	data := input[96:]
	base := new(big.Int).SetBytes(getDataSlice(data, 0, baseLen))
	exp := new(big.Int).SetBytes(getDataSlice(data, baseLen, expLen))
	mod := new(big.Int).SetBytes(getDataSlice(data, baseLen+expLen, modLen))

	if mod.Sign() == 0 {
		return make([]byte, modLen), nil
	}

	// go-bigmodexpfix replaces math/big's own Exp here: upstream go-ethereum
	// carried a modexp precompile consensus bug stemming from an edge case in
	// math/big's Exp handling of base values reducible to 1, and this is the
	// library the fork history ended up standardizing on to fix it outright
	// rather than special-case it locally.
	result := modexpfixExp(base, exp, mod)

	out := result.Bytes()
	if uint64(len(out)) < modLen {
		padded := make([]byte, modLen)
		copy(padded[modLen-uint64(len(out)):], out)
		return padded, nil
	}
	return out[:modLen], nil
}

func adjustedExpLen(expLen, baseLen uint64, data []byte) uint64 {
	if expLen <= 32 {
		expData := getDataSlice(data, baseLen, expLen)
		exp := new(big.Int).SetBytes(expData)
		if exp.Sign() == 0 {
			return 0
		}
		return uint64(exp.BitLen() - 1)
	}
	firstExpData := getDataSlice(data, baseLen, 32)
	firstExp := new(big.Int).SetBytes(firstExpData)
	adj := uint64(0)
	if firstExp.Sign() > 0 {
		adj = uint64(firstExp.BitLen() - 1)
	}
	return adj + 8*(expLen-32)
}

// --- shared helpers ---

func wordCount(size int) uint64 {
	if size == 0 {
		return 0
	}
	return uint64((size + 31) / 32)
}

func rightPad(data []byte, minLen int) []byte {
	if len(data) >= minLen {
		return data
	}
	padded := make([]byte, minLen)
	copy(padded, data)
	return padded
}

func getDataSlice(data []byte, offset, length uint64) []byte {
	if length == 0 {
		return nil
	}
	result := make([]byte, length)
	if offset >= uint64(len(data)) {
		return result
	}
	end := offset + length
	if end > uint64(len(data)) {
		end = uint64(len(data))
	}
	copy(result, data[offset:end])
	return result
}

func maxUint64v(a, b uint64) uint64 {
	if a > b {
		return a
	}
	return b
}

func allZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}
