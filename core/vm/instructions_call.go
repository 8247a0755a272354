package vm

import (
	"github.com/holiman/uint256"

	"github.com/ethforge/corevm/types"
)

func opCreate(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	if frame.ReadOnly {
		return nil, ErrWriteProtection
	}
	value, offset, size := st.pop(), st.pop(), st.pop()
	input := mem.GetCopy(int64(offset.Uint64()), int64(size.Uint64()))

	gas := frame.Gas
	gas = gas - gas/64
	frame.UseGas(gas)

	res, addr, returnGas, err := interp.evm.Create(frame.Address, input, gas, value.ToBig())
	pushCreateResult(st, addr, err)
	frame.RefundGas(returnGas)
	interp.returnData = res
	if err == ErrExecutionReverted {
		return res, nil
	}
	return nil, nil
}

func opCreate2(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	if frame.ReadOnly {
		return nil, ErrWriteProtection
	}
	value, offset, size, salt := st.pop(), st.pop(), st.pop(), st.pop()
	input := mem.GetCopy(int64(offset.Uint64()), int64(size.Uint64()))

	gas := frame.Gas
	gas = gas - gas/64
	frame.UseGas(gas)

	res, addr, returnGas, err := interp.evm.Create2(frame.Address, input, gas, value.ToBig(), &salt)
	pushCreateResult(st, addr, err)
	frame.RefundGas(returnGas)
	interp.returnData = res
	if err == ErrExecutionReverted {
		return res, nil
	}
	return nil, nil
}

func pushCreateResult(st *stack, addr types.Address, err error) {
	if err != nil && err != ErrExecutionReverted {
		st.push(new(uint256.Int))
		return
	}
	st.push(addressToWord(addr))
}

func opCall(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	gasWord, addrWord, value := st.pop(), st.pop(), st.pop()
	inOffset, inSize, retOffset, retSize := st.pop(), st.pop(), st.pop(), st.pop()

	if frame.ReadOnly && !value.IsZero() {
		return nil, ErrWriteProtection
	}
	addr := toAddress(&addrWord)
	args := mem.GetCopy(int64(inOffset.Uint64()), int64(inSize.Uint64()))

	gas := callGas(interp.evm.rules, frame.Gas, gasWord.Uint64())
	frame.UseGas(gas)
	if !value.IsZero() {
		gas += CallStipend
	}

	ret, returnGas, err := interp.evm.Call(frame.Address, addr, args, gas, value.ToBig())
	return afterCall(frame, mem, st, ret, returnGas, retOffset.Uint64(), retSize.Uint64(), err, interp)
}

func opCallCode(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	gasWord, addrWord, value := st.pop(), st.pop(), st.pop()
	inOffset, inSize, retOffset, retSize := st.pop(), st.pop(), st.pop(), st.pop()

	addr := toAddress(&addrWord)
	args := mem.GetCopy(int64(inOffset.Uint64()), int64(inSize.Uint64()))

	gas := callGas(interp.evm.rules, frame.Gas, gasWord.Uint64())
	frame.UseGas(gas)
	if !value.IsZero() {
		gas += CallStipend
	}

	ret, returnGas, err := interp.evm.CallCode(frame.Address, addr, args, gas, value.ToBig())
	return afterCall(frame, mem, st, ret, returnGas, retOffset.Uint64(), retSize.Uint64(), err, interp)
}

func opDelegateCall(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	gasWord, addrWord := st.pop(), st.pop()
	inOffset, inSize, retOffset, retSize := st.pop(), st.pop(), st.pop(), st.pop()

	addr := toAddress(&addrWord)
	args := mem.GetCopy(int64(inOffset.Uint64()), int64(inSize.Uint64()))

	gas := callGas(interp.evm.rules, frame.Gas, gasWord.Uint64())
	frame.UseGas(gas)

	ret, returnGas, err := interp.evm.DelegateCall(frame, addr, args, gas)
	return afterCall(frame, mem, st, ret, returnGas, retOffset.Uint64(), retSize.Uint64(), err, interp)
}

func opStaticCall(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	gasWord, addrWord := st.pop(), st.pop()
	inOffset, inSize, retOffset, retSize := st.pop(), st.pop(), st.pop(), st.pop()

	addr := toAddress(&addrWord)
	args := mem.GetCopy(int64(inOffset.Uint64()), int64(inSize.Uint64()))

	gas := callGas(interp.evm.rules, frame.Gas, gasWord.Uint64())
	frame.UseGas(gas)

	ret, returnGas, err := interp.evm.StaticCall(frame.Address, addr, args, gas)
	return afterCall(frame, mem, st, ret, returnGas, retOffset.Uint64(), retSize.Uint64(), err, interp)
}

// afterCall folds a nested call's result into the caller's stack and
// memory: pushes a 1/0 success flag, copies return data into the requested
// memory window, stashes the raw return data for RETURNDATACOPY, and
// refunds unused gas to the frame.
func afterCall(frame *Frame, mem *memory, st *stack, ret []byte, returnGas uint64, retOffset, retSize uint64, err error, interp *Interpreter) ([]byte, error) {
	if err != nil {
		st.push(new(uint256.Int))
	} else {
		st.push(new(uint256.Int).SetOne())
	}
	if err == nil || err == ErrExecutionReverted {
		mem.Set(retOffset, uint64(minInt(len(ret), int(retSize))), ret)
	}
	frame.RefundGas(returnGas)
	interp.returnData = ret
	return nil, nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func opSelfdestruct(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	if frame.ReadOnly {
		return nil, ErrWriteProtection
	}
	beneficiary := st.pop()
	balance := interp.evm.World.GetBalance(frame.Address)
	interp.evm.World.AddBalance(toAddress(&beneficiary), balance)
	interp.evm.World.SelfDestruct(frame.Address)
	if interp.evm.Config.Tracer != nil {
		interp.evm.Config.Tracer.CaptureSelfDestruct(frame.Address, toAddress(&beneficiary), balance)
	}
	return nil, errStopToken
}

// EXTCALL/EXTDELEGATECALL/EXTSTATICCALL (EIP-7069) are the EOF-only call
// family: the target address is a stack Word truncated to its low 20 bytes
// exactly like CALL's; neither the discarded high bytes nor the target's
// code are checked before the call.
func opExtCall(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	addrWord, inOffset, inSize, value := st.pop(), st.pop(), st.pop(), st.pop()
	addr := toAddress(&addrWord)
	args := mem.GetCopy(int64(inOffset.Uint64()), int64(inSize.Uint64()))

	gas := frame.Gas - frame.Gas/64
	frame.UseGas(gas)

	ret, returnGas, err := interp.evm.Call(frame.Address, addr, args, gas, value.ToBig())
	frame.RefundGas(returnGas)
	interp.returnData = ret
	pushExtCallStatus(st, err)
	return nil, nil
}

func opExtDelegateCall(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	addrWord, inOffset, inSize := st.pop(), st.pop(), st.pop()
	addr := toAddress(&addrWord)
	args := mem.GetCopy(int64(inOffset.Uint64()), int64(inSize.Uint64()))

	gas := frame.Gas - frame.Gas/64
	frame.UseGas(gas)

	ret, returnGas, err := interp.evm.DelegateCall(frame, addr, args, gas)
	frame.RefundGas(returnGas)
	interp.returnData = ret
	pushExtCallStatus(st, err)
	return nil, nil
}

func opExtStaticCall(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	addrWord, inOffset, inSize := st.pop(), st.pop(), st.pop()
	addr := toAddress(&addrWord)
	args := mem.GetCopy(int64(inOffset.Uint64()), int64(inSize.Uint64()))

	gas := frame.Gas - frame.Gas/64
	frame.UseGas(gas)

	ret, returnGas, err := interp.evm.StaticCall(frame.Address, addr, args, gas)
	frame.RefundGas(returnGas)
	interp.returnData = ret
	pushExtCallStatus(st, err)
	return nil, nil
}

// pushExtCallStatus pushes the EIP-7069 tri-state status code: 0 success,
// 1 revert, 2 other failure (out of gas, depth limit, ...).
func pushExtCallStatus(st *stack, err error) {
	switch err {
	case nil:
		st.push(new(uint256.Int))
	case ErrExecutionReverted:
		st.push(new(uint256.Int).SetOne())
	default:
		st.push(new(uint256.Int).SetUint64(2))
	}
}
