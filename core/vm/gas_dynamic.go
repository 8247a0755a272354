package vm

import "github.com/ethforge/corevm/types"

// CopyGas is charged per 32-byte word for the *CODECOPY/CALLDATACOPY/
// RETURNDATACOPY/DATACOPY/MCOPY family on top of memory expansion.
const CopyGas uint64 = 3

func gasExp(interp *Interpreter, frame *Frame, st *stack, mem *memory, memorySize uint64) (uint64, error) {
	exponent := st.Back(1)
	byteLen := uint64(exponent.ByteLen())
	return byteLen * expByteGas(interp.evm.rules), nil
}

func gasKeccak256(interp *Interpreter, frame *Frame, st *stack, mem *memory, memorySize uint64) (uint64, error) {
	size := st.Back(1)
	words := toWordSize(size.Uint64())
	return words * Sha3WordGas, nil
}

func copyWordsGas(st *stack, sizePos int) uint64 {
	size := st.Back(sizePos)
	return toWordSize(size.Uint64()) * CopyGas
}

func gasCallDataCopy(interp *Interpreter, frame *Frame, st *stack, mem *memory, memorySize uint64) (uint64, error) {
	return copyWordsGas(st, 2), nil
}

func gasCodeCopy(interp *Interpreter, frame *Frame, st *stack, mem *memory, memorySize uint64) (uint64, error) {
	return copyWordsGas(st, 2), nil
}

func gasReturnDataCopy(interp *Interpreter, frame *Frame, st *stack, mem *memory, memorySize uint64) (uint64, error) {
	return copyWordsGas(st, 2), nil
}

func gasDataCopy(interp *Interpreter, frame *Frame, st *stack, mem *memory, memorySize uint64) (uint64, error) {
	return copyWordsGas(st, 2), nil
}

func gasMcopy(interp *Interpreter, frame *Frame, st *stack, mem *memory, memorySize uint64) (uint64, error) {
	return copyWordsGas(st, 2), nil
}

func gasExtCodeCopy(interp *Interpreter, frame *Frame, st *stack, mem *memory, memorySize uint64) (uint64, error) {
	return copyWordsGas(st, 3), nil
}

func gasExtCodeCopyEIP2929(interp *Interpreter, frame *Frame, st *stack, mem *memory, memorySize uint64) (uint64, error) {
	addr := toAddress(st.Back(0))
	cost := copyWordsGas(st, 3)
	return cost + coldAccountSurcharge(interp, frame, addr), nil
}

func gasMload(interp *Interpreter, frame *Frame, st *stack, mem *memory, memorySize uint64) (uint64, error) {
	return 0, nil
}

func gasMstore(interp *Interpreter, frame *Frame, st *stack, mem *memory, memorySize uint64) (uint64, error) {
	return 0, nil
}

func gasMstore8(interp *Interpreter, frame *Frame, st *stack, mem *memory, memorySize uint64) (uint64, error) {
	return 0, nil
}

func gasReturn(interp *Interpreter, frame *Frame, st *stack, mem *memory, memorySize uint64) (uint64, error) {
	return 0, nil
}

// coldAccountSurcharge returns the extra gas above the opcode's warm
// constant cost when addr has not yet been touched this transaction,
// marking it warm as a side effect (both in the journaled world access
// list, the source of truth for gas pricing, and the frame-local mirror).
func coldAccountSurcharge(interp *Interpreter, frame *Frame, addr types.Address) uint64 {
	frame.WarmAddress(addr)
	if interp.evm.World.AddressInAccessList(addr) {
		return 0
	}
	interp.evm.World.AddAddressToAccessList(addr)
	return ColdAccountAccessCost - WarmStorageReadCost
}

func gasEIP2929AccountCheck(interp *Interpreter, frame *Frame, st *stack, mem *memory, memorySize uint64) (uint64, error) {
	addr := toAddress(st.Back(0))
	return coldAccountSurcharge(interp, frame, addr), nil
}

func gasSloadEIP2929(interp *Interpreter, frame *Frame, st *stack, mem *memory, memorySize uint64) (uint64, error) {
	loc := st.Back(0)
	key := toStorageHash(loc)
	frame.WarmSlot(frame.Address, key)
	_, slotWarm := interp.evm.World.SlotInAccessList(frame.Address, key)
	if slotWarm {
		return 0, nil
	}
	interp.evm.World.AddSlotToAccessList(frame.Address, key)
	return ColdSloadCost - WarmStorageReadCost, nil
}

func gasSstoreFrontier(interp *Interpreter, frame *Frame, st *stack, mem *memory, memorySize uint64) (uint64, error) {
	loc := st.Back(0)
	newVal := st.Back(1)
	key := toStorageHash(loc)
	current := interp.evm.World.GetState(frame.Address, key)
	new := toStorageHash(newVal)
	gas, refund := sstoreCost(interp.evm.rules, current, current, new, false)
	applyRefund(interp, refund)
	return gas, nil
}

func gasSstoreEIP2200(interp *Interpreter, frame *Frame, st *stack, mem *memory, memorySize uint64) (uint64, error) {
	if frame.Gas <= SstoreSentryGasEIP2200 {
		return 0, ErrOutOfGas
	}
	loc := st.Back(0)
	newVal := st.Back(1)
	key := toStorageHash(loc)
	current := interp.evm.World.GetState(frame.Address, key)
	original := interp.evm.World.GetCommittedState(frame.Address, key)
	new := toStorageHash(newVal)
	gas, refund := sstoreCost(interp.evm.rules, original, current, new, false)
	applyRefund(interp, refund)
	return gas, nil
}

func gasSstoreEIP2929(interp *Interpreter, frame *Frame, st *stack, mem *memory, memorySize uint64) (uint64, error) {
	if frame.Gas <= SstoreSentryGasEIP2200 {
		return 0, ErrOutOfGas
	}
	loc := st.Back(0)
	newVal := st.Back(1)
	key := toStorageHash(loc)
	current := interp.evm.World.GetState(frame.Address, key)
	original := interp.evm.World.GetCommittedState(frame.Address, key)
	new := toStorageHash(newVal)

	frame.WarmSlot(frame.Address, key)
	_, slotWarm := interp.evm.World.SlotInAccessList(frame.Address, key)
	coldSlot := !slotWarm
	if coldSlot {
		interp.evm.World.AddSlotToAccessList(frame.Address, key)
	}
	gas, refund := sstoreCost(interp.evm.rules, original, current, new, coldSlot)
	applyRefund(interp, refund)
	return gas, nil
}

func applyRefund(interp *Interpreter, refund int64) {
	if refund > 0 {
		interp.evm.World.AddRefund(uint64(refund))
	} else if refund < 0 {
		interp.evm.World.SubRefund(uint64(-refund))
	}
}

func makeGasLog(n int) gasFunc {
	return func(interp *Interpreter, frame *Frame, st *stack, mem *memory, memorySize uint64) (uint64, error) {
		size := st.Back(1)
		s := size.Uint64()
		gas := uint64(n) * LogTopicGas
		if gas/uint64(max(n, 1)) != LogTopicGas {
			return 0, ErrGasUintOverflow
		}
		dataGas := s * LogDataGas
		if s != 0 && dataGas/s != LogDataGas {
			return 0, ErrGasUintOverflow
		}
		return gas + dataGas, nil
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func valueTransferAndNewAccountGas(interp *Interpreter, addr types.Address, value *Word, allowValue bool) uint64 {
	var gas uint64
	if allowValue && !value.IsZero() {
		gas += CallValueTransferGas
	}
	if !interp.evm.World.Exist(addr) {
		if !allowValue || !value.IsZero() || interp.evm.rules.IsEIP158 {
			gas += CallNewAccountGas
		}
	}
	return gas
}

func gasCallFrontier(interp *Interpreter, frame *Frame, st *stack, mem *memory, memorySize uint64) (uint64, error) {
	addr := toAddress(st.Back(1))
	value := st.Back(2)
	return valueTransferAndNewAccountGas(interp, addr, value, true), nil
}

func gasCallCodeFrontier(interp *Interpreter, frame *Frame, st *stack, mem *memory, memorySize uint64) (uint64, error) {
	value := st.Back(2)
	var gas uint64
	if !value.IsZero() {
		gas += CallValueTransferGas
	}
	return gas, nil
}

func gasDelegateCallFrontier(interp *Interpreter, frame *Frame, st *stack, mem *memory, memorySize uint64) (uint64, error) {
	return 0, nil
}

func gasStaticCall(interp *Interpreter, frame *Frame, st *stack, mem *memory, memorySize uint64) (uint64, error) {
	return 0, nil
}

func gasCallEIP2929(interp *Interpreter, frame *Frame, st *stack, mem *memory, memorySize uint64) (uint64, error) {
	addr := toAddress(st.Back(1))
	value := st.Back(2)
	cold := coldAccountSurcharge(interp, frame, addr)
	return cold + valueTransferAndNewAccountGas(interp, addr, value, true), nil
}

func gasCallCodeEIP2929(interp *Interpreter, frame *Frame, st *stack, mem *memory, memorySize uint64) (uint64, error) {
	addr := toAddress(st.Back(1))
	value := st.Back(2)
	cold := coldAccountSurcharge(interp, frame, addr)
	var gas uint64
	if !value.IsZero() {
		gas += CallValueTransferGas
	}
	return cold + gas, nil
}

func gasDelegateCallEIP2929(interp *Interpreter, frame *Frame, st *stack, mem *memory, memorySize uint64) (uint64, error) {
	addr := toAddress(st.Back(1))
	return coldAccountSurcharge(interp, frame, addr), nil
}

func gasStaticCallEIP2929(interp *Interpreter, frame *Frame, st *stack, mem *memory, memorySize uint64) (uint64, error) {
	addr := toAddress(st.Back(1))
	return coldAccountSurcharge(interp, frame, addr), nil
}

func gasCreate(interp *Interpreter, frame *Frame, st *stack, mem *memory, memorySize uint64) (uint64, error) {
	size := st.Back(2)
	if interp.evm.rules.IsShanghai {
		return initCodeWordGas(size.Uint64()), nil
	}
	return 0, nil
}

func gasCreate2(interp *Interpreter, frame *Frame, st *stack, mem *memory, memorySize uint64) (uint64, error) {
	size := st.Back(2)
	words := toWordSize(size.Uint64())
	gas := words * Sha3WordGas
	if interp.evm.rules.IsShanghai {
		gas += initCodeWordGas(size.Uint64())
	}
	return gas, nil
}

func gasEOFCreate(interp *Interpreter, frame *Frame, st *stack, mem *memory, memorySize uint64) (uint64, error) {
	size := st.Back(3)
	return toWordSize(size.Uint64()) * Sha3WordGas, nil
}

func gasSelfdestructFrontier(interp *Interpreter, frame *Frame, st *stack, mem *memory, memorySize uint64) (uint64, error) {
	return 0, nil
}

func gasSelfdestructEIP150(interp *Interpreter, frame *Frame, st *stack, mem *memory, memorySize uint64) (uint64, error) {
	beneficiary := toAddress(st.Back(0))
	if !interp.evm.World.Exist(beneficiary) && interp.evm.World.GetBalance(frame.Address).Sign() > 0 {
		return CallNewAccountGas, nil
	}
	return 0, nil
}

func gasSelfdestructEIP2929(interp *Interpreter, frame *Frame, st *stack, mem *memory, memorySize uint64) (uint64, error) {
	beneficiary := toAddress(st.Back(0))
	gas := coldAccountSurcharge(interp, frame, beneficiary)
	if !interp.evm.World.Exist(beneficiary) && interp.evm.World.GetBalance(frame.Address).Sign() > 0 {
		gas += CallNewAccountGas
	}
	return gas, nil
}
