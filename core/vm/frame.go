package vm

import (
	mapset "github.com/deckarep/golang-set/v2"

	"github.com/ethforge/corevm/types"
)

// Frame is the execution context of a single call: the running contract's
// code, its code and data addresses, the calldata it was invoked with, and
// the remaining gas it is allowed to spend. One Frame exists per level of
// call depth.
//
// EOF containers (spec §5 supplement) attach the parsed container (code
// sections, subcontainers and data section) plus the CALLF/RETF return stack
// and the active code-section index; legacy code leaves those fields nil.
type Frame struct {
	CallerAddress types.Address
	Address       types.Address
	CodeAddr      types.Address

	code     []byte
	CodeHash types.Hash

	Input []byte
	value *Word

	Gas   uint64
	UsedGas uint64

	jumpdests map[types.Hash]bitvec

	// EOF-only fields (nil for legacy contracts).
	container   *eofContainer
	returnStack []eofReturnPoint
	codeSection int

	// warmAddresses/warmSlots track this frame's own view of EIP-2929
	// warmth for fast membership checks during instruction dispatch,
	// separate from the journaled, revertible access list kept in the
	// world state: the frame-local set never needs to be rolled back,
	// only consulted, so a plain hash set is enough here.
	warmAddresses mapset.Set[types.Address]
	warmSlots     mapset.Set[storageKey]

	IsCreate bool
	ReadOnly bool
}

// storageKey identifies a single storage slot of a single account, used as
// the element type for a frame's warm-slot set.
type storageKey struct {
	addr types.Address
	slot types.Hash
}

// eofReturnPoint is one entry of an EOF frame's CALLF/RETF return-address
// stack (EIP-4750): the code section to resume in, and the pc just past the
// CALLF that entered the callee.
type eofReturnPoint struct {
	section int
	pc      int
}

// setCodeSection switches the frame onto one of its EOF container's code
// sections, pointing Code()/GetOp() at that section's bytes; legacy frames
// never call this.
func (f *Frame) setCodeSection(section int) {
	f.codeSection = section
	f.code = f.container.codeSections[section].code
}

func newFrame(caller, addr types.Address, code []byte, codeHash types.Hash, value *Word, gas uint64) *Frame {
	return &Frame{
		CallerAddress: caller,
		Address:       addr,
		CodeAddr:      addr,
		code:          code,
		CodeHash:      codeHash,
		value:         value,
		Gas:           gas,
		warmAddresses: mapset.NewThreadUnsafeSet[types.Address](),
		warmSlots:     mapset.NewThreadUnsafeSet[storageKey](),
	}
}

// Value returns the wei value attached to this call, or zero when the frame
// was built with a nil value; a DELEGATECALL frame carries its parent's value.
func (f *Frame) Value() *Word {
	if f.value == nil {
		return newWord()
	}
	return f.value
}

func (f *Frame) Code() []byte {
	return f.code
}

// UseGas deducts amount from the frame's remaining gas, returning false
// (without mutating Gas) if the frame does not have enough left.
func (f *Frame) UseGas(amount uint64) bool {
	if f.Gas < amount {
		return false
	}
	f.Gas -= amount
	f.UsedGas += amount
	return true
}

// RefundGas returns unused gas to the frame, used when a nested call
// returns its leftover gas to the caller.
func (f *Frame) RefundGas(amount uint64) {
	f.Gas += amount
}

// GetOp returns the opcode at n, or STOP if n is past the end of the code,
// matching the implicit STOP at end-of-bytecode rule.
func (f *Frame) GetOp(n uint64) OpCode {
	if n < uint64(len(f.code)) {
		return OpCode(f.code[n])
	}
	return STOP
}

// validJumpdest reports whether dest lies inside the code, holds a JUMPDEST
// opcode, and is an instruction byte rather than PUSH immediate data,
// consulting (and lazily populating) the per-codehash jumpdest bitvector
// cache.
func (f *Frame) validJumpdest(dest *Word) bool {
	udest, overflow := dest.Uint64WithOverflow()
	if overflow || udest >= uint64(len(f.code)) {
		return false
	}
	if OpCode(f.code[udest]) != JUMPDEST {
		return false
	}
	return f.isCode(udest)
}

func (f *Frame) isCode(udest uint64) bool {
	analysis := f.jumpAnalysis()
	return analysis.codeSegment(udest)
}

func (f *Frame) jumpAnalysis() bitvec {
	if f.CodeHash.IsZero() {
		return codeBitmap(f.code)
	}
	if bits, ok := globalAnalysisCache.getBitmap(f.CodeHash); ok {
		return bits
	}
	bits := codeBitmap(f.code)
	globalAnalysisCache.setBitmap(f.CodeHash, bits)
	return bits
}

// WarmAddress marks addr as warm for the remainder of this frame and
// reports whether it was already warm.
func (f *Frame) WarmAddress(addr types.Address) bool {
	return !f.warmAddresses.Add(addr)
}

func (f *Frame) IsWarmAddress(addr types.Address) bool {
	return f.warmAddresses.Contains(addr)
}

// WarmSlot marks (addr, slot) as warm for the remainder of this frame and
// reports whether it was already warm.
func (f *Frame) WarmSlot(addr types.Address, slot types.Hash) bool {
	return !f.warmSlots.Add(storageKey{addr, slot})
}

func (f *Frame) IsWarmSlot(addr types.Address, slot types.Hash) bool {
	return f.warmSlots.Contains(storageKey{addr, slot})
}
