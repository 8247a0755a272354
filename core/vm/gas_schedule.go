package vm

import "github.com/ethforge/corevm/types"

// Gas cost constants, named and grouped the way a fork-versioned gas table
// is: values that were repriced by a later EIP keep their original name
// with the fork that introduced the change noted alongside.
const (
	GasQuickStep   uint64 = 2
	GasFastestStep uint64 = 3
	GasFastStep    uint64 = 5
	GasMidStep     uint64 = 8
	GasSlowStep    uint64 = 10
	GasExtStep     uint64 = 20

	GasZero     uint64 = 0
	GasBase     uint64 = 2
	GasVeryLow  uint64 = 3
	GasLow      uint64 = 5
	GasMid      uint64 = 8
	GasHigh     uint64 = 10
	GasJumpdest uint64 = 1

	Sha3Gas        uint64 = 30
	Sha3WordGas    uint64 = 6
	SstoreSetGas   uint64 = 20000
	SstoreResetGas uint64 = 5000
	// SstoreClearsScheduleRefund is the EIP-3529 reduced refund for
	// clearing a storage slot (down from the pre-London 15000).
	SstoreClearsScheduleRefund uint64 = 4800
	JumpdestGas                uint64 = 1
	LogGas                     uint64 = 375
	LogDataGas                 uint64 = 8
	LogTopicGas                uint64 = 375
	CreateGas                  uint64 = 32000
	CreateDataGas               uint64 = 200
	Create2Gas                 uint64 = 32000
	CallGas                    uint64 = 40
	CallStipend                uint64 = 2300
	CallValueTransferGas       uint64 = 9000
	CallNewAccountGas          uint64 = 25000
	SelfdestructRefundGas      uint64 = 24000
	MemoryGas                  uint64 = 3
	QuadCoeffDiv               uint64 = 512
	ExpGas                     uint64 = 10
	ExpByteGas                 uint64 = 50 // post-EIP-160 (Spurious Dragon); 10 before

	// EIP-2929 cold/warm access pricing (Berlin).
	ColdAccountAccessCost uint64 = 2600
	ColdSloadCost         uint64 = 2100
	WarmStorageReadCost   uint64 = 100
	// SstoreSentryGasEIP2200 is the minimum gas that must remain before an
	// SSTORE may execute under net-metering, leaving room for its own cost.
	SstoreSentryGasEIP2200 uint64 = 2300

	// MaxRefundQuotient bounds total refunds to gasUsed/5 post-London
	// (EIP-3529; was /2 before).
	MaxRefundQuotient uint64 = 5

	// EIP-3860 init code metering (Shanghai).
	InitCodeWordGas   uint64 = 2
	MaxInitCodeSize   uint64 = 2 * 24576

	// EIP-170 deployed code size limit (Spurious Dragon).
	MaxCodeSize uint64 = 24576

	// EIP-1153 transient storage (Cancun): same flat cost both ways.
	TLoadGas  uint64 = 100
	TStoreGas uint64 = 100

	MaxCallDepth = 1024
)

// memoryGasCost returns the total gas cost of having memory of the given
// size in 32-byte words, using the quadratic expansion formula
// words*3 + words^2/512, matching the pricing used since Frontier.
func memoryGasCost(size uint64) uint64 {
	if size == 0 {
		return 0
	}
	words := toWordSize(size)
	linear := words * MemoryGas
	quad := (words * words) / QuadCoeffDiv
	return linear + quad
}

// memoryExpansionGas returns the incremental gas cost of growing memory
// from its current size to newSize, or 0 if newSize does not exceed the
// frame's current memory length. The caller charges this before calling
// memory.Resize.
func memoryExpansionGas(mem *memory, newSize uint64) (uint64, error) {
	if newSize <= uint64(mem.Len()) {
		return 0, nil
	}
	newCost := memoryGasCost(newSize)
	if newCost < mem.lastGasCost {
		return 0, ErrGasUintOverflow
	}
	fee := newCost - mem.lastGasCost
	mem.lastGasCost = newCost
	return fee, nil
}

// callGas implements the EIP-150 63/64ths rule: a CALL-family instruction
// may forward at most all-but-one-64th of the gas remaining after the
// call's own constant and access costs were deducted, plus it may never
// forward more than the amount explicitly requested.
func callGas(rules ForkRules, availableGas, requestedGas uint64) uint64 {
	if rules.IsEIP150 {
		available := availableGas - availableGas/64
		if requestedGas > available {
			return available
		}
	}
	return requestedGas
}

// initCodeWordGas computes the EIP-3860 gas surcharge for init code of the
// given length: InitCodeWordGas per 32-byte word, rounded up.
func initCodeWordGas(size uint64) uint64 {
	return toWordSize(size) * InitCodeWordGas
}

// expByteGas returns the per-exponent-byte cost of EXP under the active
// fork: 10 pre-Spurious Dragon, 50 from Spurious Dragon on.
func expByteGas(rules ForkRules) uint64 {
	if rules.IsEIP158 {
		return ExpByteGas
	}
	return 10
}

// sstoreCost implements EIP-2200 net-metered SSTORE combined with the
// EIP-2929 cold-slot surcharge, returning the gas to charge and the refund
// to grant (possibly negative, expressed as a subtraction by the caller)
// for a single SSTORE of current -> new, given the value the slot had at
// the start of the transaction (original) and whether the slot was cold.
//
// This is kept as a standalone, directly testable function rather than
// inlined into the SSTORE opcode handler so its refund-table behavior can
// be exercised without spinning up a full interpreter.
func sstoreCost(rules ForkRules, original, current, new types.Hash, coldSlot bool) (gas uint64, refund int64) {
	if !rules.IsIstanbul {
		// Pre-Constantinople/Istanbul simple SSTORE pricing.
		switch {
		case current.IsZero() && !new.IsZero():
			return SstoreSetGas, 0
		case !current.IsZero() && new.IsZero():
			return SstoreResetGas, int64(sstoreClearRefund(rules))
		default:
			return SstoreResetGas, 0
		}
	}

	var cost uint64
	switch {
	case current == new:
		cost = WarmStorageReadCost
	case original == current:
		if original.IsZero() {
			cost = SstoreSetGas
		} else {
			cost = SstoreResetGas - ColdSloadCost
		}
	default:
		cost = WarmStorageReadCost
	}

	if coldSlot {
		cost += ColdSloadCost
	}

	refund = sstoreRefund(rules, original, current, new)
	return cost, refund
}

// sstoreClearRefund returns the refund for clearing a slot to zero under
// the active fork's schedule (pre-London: 15000, London on: 4800 per
// EIP-3529).
func sstoreClearRefund(rules ForkRules) uint64 {
	if rules.IsLondon {
		return SstoreClearsScheduleRefund
	}
	return 15000
}

// sstoreRefund implements the EIP-2200/EIP-3529 refund bookkeeping table
// for a net-metered SSTORE transition.
func sstoreRefund(rules ForkRules, original, current, new types.Hash) int64 {
	var refund int64
	clearRefund := int64(sstoreClearRefund(rules))

	if current != new {
		if original == current {
			if !original.IsZero() && new.IsZero() {
				refund += clearRefund
			}
		} else {
			if !original.IsZero() {
				if current.IsZero() {
					refund -= clearRefund
				}
				if new.IsZero() {
					refund += clearRefund
				}
			}
			if original == new {
				if original.IsZero() {
					refund += int64(SstoreSetGas - WarmStorageReadCost)
				} else {
					refund += int64(SstoreResetGas - ColdSloadCost - WarmStorageReadCost)
				}
			}
		}
	}
	return refund
}

// capRefund applies the EIP-3529 refund cap of gasUsed/MaxRefundQuotient.
func capRefund(gasUsed, refund uint64) uint64 {
	cap := gasUsed / MaxRefundQuotient
	if refund > cap {
		return cap
	}
	return refund
}
