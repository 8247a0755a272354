package vm

import (
	"encoding/binary"

	"github.com/holiman/uint256"
)

// RJUMP/RJUMPI/RJUMPV (EIP-4200) use a signed 16-bit relative offset
// immediate rather than an absolute stack-supplied jump target, so an EOF
// container's jump destinations are statically verifiable ahead of time
// and never need the runtime validJumpdest bitmap check legacy JUMP uses.
func rjumpOffset(frame *Frame, pc uint64) int16 {
	code := frame.Code()
	return int16(binary.BigEndian.Uint16(code[pc+1:]))
}

func opRjump(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	offset := rjumpOffset(frame, *pc)
	*pc = uint64(int64(*pc) + 3 + int64(offset))
	return nil, errJumpHandled
}

func opRjumpi(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	cond := st.pop()
	offset := rjumpOffset(frame, *pc)
	if !cond.IsZero() {
		*pc = uint64(int64(*pc) + 3 + int64(offset))
	} else {
		*pc += 3
	}
	return nil, errJumpHandled
}

func opRjumpv(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	code := frame.Code()
	caseVal := st.pop()
	maxIndex := uint64(code[*pc+1])
	idx := caseVal.Uint64()
	tableStart := *pc + 2
	if idx > maxIndex {
		*pc = tableStart + (maxIndex+1)*2
		return nil, errJumpHandled
	}
	offset := int16(binary.BigEndian.Uint16(code[tableStart+idx*2:]))
	*pc = uint64(int64(tableStart) + int64((maxIndex+1)*2) + int64(offset))
	return nil, errJumpHandled
}

// CALLF/RETF/JUMPF (EIP-4750/6206) implement EOF's statically-verified
// function calls: CALLF pushes a return address onto the frame's own
// return-address stack (distinct from the operand stack) and switches the
// active code section; RETF pops it back.
func opCallf(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	code := frame.Code()
	section := int(binary.BigEndian.Uint16(code[*pc+1:]))
	frame.returnStack = append(frame.returnStack, eofReturnPoint{section: frame.codeSection, pc: int(*pc) + 3})
	frame.setCodeSection(section)
	*pc = 0
	return nil, errJumpHandled
}

func opRetf(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	if len(frame.returnStack) == 0 {
		return nil, errStopToken
	}
	n := len(frame.returnStack) - 1
	rp := frame.returnStack[n]
	frame.returnStack = frame.returnStack[:n]
	frame.setCodeSection(rp.section)
	*pc = uint64(rp.pc)
	return nil, errJumpHandled
}

func opJumpf(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	code := frame.Code()
	section := int(binary.BigEndian.Uint16(code[*pc+1:]))
	frame.setCodeSection(section)
	*pc = 0
	return nil, errJumpHandled
}

// DUPN/SWAPN/EXCHANGE (EIP-663) generalize DUP/SWAP past depth 16 using a
// one-byte immediate operand instead of a distinct opcode per depth.
func opDupN(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	n := int(frame.Code()[*pc+1]) + 1
	st.dup(n)
	*pc++
	return nil, nil
}

func opSwapN(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	n := int(frame.Code()[*pc+1]) + 1
	st.swap(n)
	*pc++
	return nil, nil
}

func opExchange(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	imm := frame.Code()[*pc+1]
	n := int(imm>>4) + 1
	m := int(imm&0x0f) + 1
	top := len(st.data) - 1
	st.data[top-n], st.data[top-n-m] = st.data[top-n-m], st.data[top-n]
	*pc++
	return nil, nil
}

// DATALOAD/DATALOADN/DATASIZE/DATACOPY (EIP-7480) expose the EOF
// container's data section the way CALLDATA* exposes the transaction's
// input.
func opDataLoad(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	offW := st.peek()
	off, overflow := offW.Uint64WithOverflow()
	data := frame.container.data
	if overflow {
		offW.Clear()
		return nil, nil
	}
	offW.SetBytes(getData(data, off, 32))
	return nil, nil
}

func opDataLoadN(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	off := binary.BigEndian.Uint16(frame.Code()[*pc+1:])
	data := getData(frame.container.data, uint64(off), 32)
	st.push(new(uint256.Int).SetBytes(data))
	*pc += 2
	return nil, nil
}

func opDataSize(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	st.push(new(uint256.Int).SetUint64(uint64(len(frame.container.data))))
	return nil, nil
}

func opDataCopy(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	memOffset, dataOffset, length := st.pop(), st.pop(), st.pop()
	off, overflow := dataOffset.Uint64WithOverflow()
	if overflow {
		off = ^uint64(0)
	}
	data := getData(frame.container.data, off, length.Uint64())
	mem.Set(memOffset.Uint64(), length.Uint64(), data)
	return nil, nil
}

// EOFCREATE/RETURNCONTRACT (EIP-7620) replace CREATE/CREATE2's
// init-code-from-memory model with deploying one of the container's own
// embedded subcontainers.
func opEOFCreate(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	if frame.ReadOnly {
		return nil, ErrWriteProtection
	}
	containerIdx := frame.Code()[*pc+1]
	value, salt, inOffset, inSize := st.pop(), st.pop(), st.pop(), st.pop()

	if frame.container == nil || int(containerIdx) >= len(frame.container.subcontainers) {
		return nil, ErrEOFInvalidSectionRef
	}
	initCode := frame.container.subcontainers[containerIdx]
	auxData := mem.GetCopy(int64(inOffset.Uint64()), int64(inSize.Uint64()))
	full := append(append([]byte{}, initCode...), auxData...)

	gas := frame.Gas - frame.Gas/64
	frame.UseGas(gas)
	res, addr, returnGas, err := interp.evm.Create2(frame.Address, full, gas, value.ToBig(), &salt)
	pushCreateResult(st, addr, err)
	frame.RefundGas(returnGas)
	interp.returnData = res
	*pc++
	return nil, nil
}

func opReturnContract(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	auxOffset, auxSize := st.pop(), st.pop()
	aux := mem.GetCopy(int64(auxOffset.Uint64()), int64(auxSize.Uint64()))
	return aux, errStopToken
}
