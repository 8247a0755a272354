package vm

import (
	"github.com/holiman/uint256"

	"github.com/ethforge/corevm/types"
)

func opPop(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	st.pop()
	return nil, nil
}

func opMload(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	v := st.peek()
	offset := v.Uint64()
	v.SetBytes(mem.GetPtr(int64(offset), 32))
	return nil, nil
}

func opMstore(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	mStart, val := st.pop(), st.pop()
	mem.Set32(mStart.Uint64(), &val)
	return nil, nil
}

func opMstore8(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	off, val := st.pop(), st.pop()
	mem.store[off.Uint64()] = byte(val.Uint64())
	return nil, nil
}

func opMcopy(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	dst, src, length := st.pop(), st.pop(), st.pop()
	l := length.Uint64()
	if l == 0 {
		return nil, nil
	}
	copy(mem.store[dst.Uint64():dst.Uint64()+l], mem.store[src.Uint64():src.Uint64()+l])
	return nil, nil
}

func toStorageHash(w *Word) types.Hash {
	var h types.Hash
	b := w.Bytes32()
	copy(h[:], b[:])
	return h
}

func opSload(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	loc := st.peek()
	key := toStorageHash(loc)
	val := interp.evm.World.GetState(frame.Address, key)
	loc.SetBytes(val[:])
	return nil, nil
}

func opSstore(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	if frame.ReadOnly {
		return nil, ErrWriteProtection
	}
	loc, val := st.pop(), st.pop()
	key := toStorageHash(&loc)
	value := toStorageHash(&val)
	interp.evm.World.SetState(frame.Address, key, value)
	return nil, nil
}

func opTload(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	loc := st.peek()
	key := toStorageHash(loc)
	val := interp.evm.World.GetTransientState(frame.Address, key)
	loc.SetBytes(val[:])
	return nil, nil
}

func opTstore(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	if frame.ReadOnly {
		return nil, ErrWriteProtection
	}
	loc, val := st.pop(), st.pop()
	key := toStorageHash(&loc)
	value := toStorageHash(&val)
	interp.evm.World.SetTransientState(frame.Address, key, value)
	return nil, nil
}

func opJump(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	dest := st.pop()
	if !frame.validJumpdest(&dest) {
		return nil, ErrInvalidJump
	}
	*pc = dest.Uint64()
	return nil, errJumpHandled
}

func opJumpi(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	dest, cond := st.pop(), st.pop()
	if !cond.IsZero() {
		if !frame.validJumpdest(&dest) {
			return nil, ErrInvalidJump
		}
		*pc = dest.Uint64()
		return nil, errJumpHandled
	}
	*pc++
	return nil, errJumpHandled
}

func opJumpdest(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	return nil, nil
}

func opPc(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	st.push(new(uint256.Int).SetUint64(*pc))
	return nil, nil
}

func opMsize(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	st.push(new(uint256.Int).SetUint64(uint64(mem.Len())))
	return nil, nil
}

func opGas(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	st.push(new(uint256.Int).SetUint64(frame.Gas))
	return nil, nil
}

func opPush0(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	st.push(new(uint256.Int))
	return nil, nil
}

func opStop(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	return nil, errStopToken
}

func opInvalid(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	return nil, ErrInvalidOpCode
}

func opReturn(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	offset, size := st.pop(), st.pop()
	ret := mem.GetCopy(int64(offset.Uint64()), int64(size.Uint64()))
	return ret, errStopToken
}

func opRevert(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	offset, size := st.pop(), st.pop()
	ret := mem.GetCopy(int64(offset.Uint64()), int64(size.Uint64()))
	return ret, ErrExecutionReverted
}

func makeLog(n int) executionFunc {
	return func(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
		if frame.ReadOnly {
			return nil, ErrWriteProtection
		}
		mStart, mSize := st.pop(), st.pop()
		topics := make([]types.Hash, n)
		for i := 0; i < n; i++ {
			w := st.pop()
			topics[i] = toStorageHash(&w)
		}
		data := mem.GetCopy(int64(mStart.Uint64()), int64(mSize.Uint64()))
		interp.evm.World.AddLog(&types.Log{
			Address: frame.Address,
			Topics:  topics,
			Data:    data,
		})
		return nil, nil
	}
}
