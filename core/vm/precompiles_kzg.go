package vm

import (
	"crypto/sha256"
	"errors"
	"math/big"

	gokzg4844 "github.com/crate-crypto/go-eth-kzg"
)

// versionedHashVersionKZG is the single byte prefix that marks a blob hash
// as KZG-versioned (EIP-4844 §Blob versioned hashes).
const versionedHashVersionKZG = 0x01

var (
	fieldElementsPerBlob = big.NewInt(4096)
	blsModulus, _        = new(big.Int).SetString(
		"52435875175126190479447740508185965837690552500527637822603658699938581184513", 10)

	// kzgCtx holds the trusted-setup SRS used to verify point-evaluation
	// proofs; building it is expensive enough that every point evaluation
	// precompile call shares the one instance instead of reloading the setup
	// per call.
	kzgCtx, kzgCtxErr = gokzg4844.NewContext4096Secure()
)

// kzgPointEvaluationContract (address 0x0a, EIP-4844) verifies that a blob's
// KZG commitment opens to a claimed value at a claimed point, grounded on
// go-eth-kzg — the library go-ethereum itself moved to for this exact
// precompile once the original C-KZG cgo bindings became a distribution
// headache.
type kzgPointEvaluationContract struct{}

func (c *kzgPointEvaluationContract) RequiredGas(input []byte) uint64 { return 50000 }

func (c *kzgPointEvaluationContract) Run(input []byte) ([]byte, error) {
	if len(input) != 192 {
		return nil, errors.New("kzg: invalid input length")
	}
	if kzgCtxErr != nil {
		return nil, kzgCtxErr
	}

	versionedHash := input[:32]
	var z, y [32]byte
	copy(z[:], input[32:64])
	copy(y[:], input[64:96])

	var commitment gokzg4844.KZGCommitment
	copy(commitment[:], input[96:144])
	var proof gokzg4844.KZGProof
	copy(proof[:], input[144:192])

	if versionedHash[0] != versionedHashVersionKZG {
		return nil, errors.New("kzg: invalid versioned hash version")
	}
	if new(big.Int).SetBytes(z[:]).Cmp(blsModulus) >= 0 {
		return nil, errors.New("kzg: z is not a valid field element")
	}
	if new(big.Int).SetBytes(y[:]).Cmp(blsModulus) >= 0 {
		return nil, errors.New("kzg: y is not a valid field element")
	}

	// The versioned hash is sha256(commitment) with the first byte replaced
	// by the version marker, not a keccak256 digest.
	commitHash := sha256.Sum256(commitment[:])
	commitHash[0] = versionedHashVersionKZG
	if !bytesEqual32(commitHash[:], versionedHash) {
		return nil, errors.New("kzg: commitment does not match versioned hash")
	}

	if err := kzgCtx.VerifyKZGProof(commitment, z, y, proof); err != nil {
		return nil, errors.New("kzg: proof verification failed")
	}

	out := make([]byte, 64)
	fieldElementsPerBlob.FillBytes(out[:32])
	blsModulus.FillBytes(out[32:64])
	return out, nil
}

func bytesEqual32(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
