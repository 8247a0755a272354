package vm

import (
	"math/big"

	"github.com/holiman/uint256"
)

// Word is the EVM's 256-bit machine word. Every arithmetic, comparison and
// bitwise opcode in spec §4.1 operates on Words; wrapping add/sub/mul,
// signed division/remainder, modular add/mul, exponentiation, sign
// extension, byte selection and shifts are all provided directly by
// holiman/uint256 — the same arbitrary-precision-free 256-bit integer type
// go-ethereum itself switched its interpreter to for this exact purpose, so
// there is no value in re-deriving wrapping semantics over math/big here.
type Word = uint256.Int

// newWord returns a zero-valued Word.
func newWord() *Word { return new(uint256.Int) }

// newWordFromBig converts a *big.Int (nil treated as zero) to a Word, used
// at the Call/Create boundary where value is still expressed in math/big
// terms by the host-facing API.
func newWordFromBig(v *big.Int) *Word {
	w := newWord()
	if v != nil {
		w.SetFromBig(v)
	}
	return w
}

// wordFromBytes converts a bytes32 (big-endian) to a Word, used when decoding
// PUSH immediates and memory reads.
func wordFromBytes(b []byte) *Word {
	return new(uint256.Int).SetBytes(b)
}

// toAddress truncates a Word to the low 20 bytes, the representation used
// whenever a stack value denotes an account address (BALANCE, CALL, ...).
func toAddress(w *Word) (addr [20]byte) {
	b := w.Bytes20()
	copy(addr[:], b[:])
	return addr
}

// addressToWord left-pads a 20-byte address into a Word.
func addressToWord(addr [20]byte) *Word {
	var b [32]byte
	copy(b[12:], addr[:])
	return new(uint256.Int).SetBytes(b[:])
}

// sar implements arithmetic (sign-preserving) right shift: shift >= 256
// yields all-zero or all-one fill depending on the sign of value, matching
// spec §4.1's "a shift amount ≥ 256 returns 0 (for shl/shr) or sign-fill
// (for sar)". Shifts below 256 go to uint256.SRsh; larger shifts are
// handled here directly.
func sar(shift, value *Word) *Word {
	result := newWord()
	if shift.LtUint64(256) {
		result.SRsh(value, uint(shift.Uint64()))
	} else if value.Sign() >= 0 {
		result.Clear()
	} else {
		result.SetAllOne()
	}
	return result
}
