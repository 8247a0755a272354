package vm

import (
	"github.com/holiman/uint256"
)

func opAddress(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	st.push(addressToWord(frame.Address))
	return nil, nil
}

func opBalance(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	slot := st.peek()
	addr := toAddress(slot)
	bal := interp.evm.World.GetBalance(addr)
	slot.SetFromBig(bal)
	return nil, nil
}

func opOrigin(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	st.push(addressToWord(interp.evm.TxContext.Origin))
	return nil, nil
}

func opCaller(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	st.push(addressToWord(frame.CallerAddress))
	return nil, nil
}

func opCallValue(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	st.push(new(uint256.Int).Set(frame.Value()))
	return nil, nil
}

func opCallDataLoad(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	x := st.peek()
	if offset, overflow := x.Uint64WithOverflow(); !overflow {
		data := getData(frame.Input, offset, 32)
		x.SetBytes(data)
	} else {
		x.Clear()
	}
	return nil, nil
}

func opCallDataSize(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	st.push(new(uint256.Int).SetUint64(uint64(len(frame.Input))))
	return nil, nil
}

func opCallDataCopy(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	memOffset, dataOffset, length := st.pop(), st.pop(), st.pop()
	dataOff, overflow := dataOffset.Uint64WithOverflow()
	if overflow {
		dataOff = ^uint64(0)
	}
	data := getData(frame.Input, dataOff, length.Uint64())
	mem.Set(memOffset.Uint64(), length.Uint64(), data)
	return nil, nil
}

func opCodeSize(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	st.push(new(uint256.Int).SetUint64(uint64(len(frame.Code()))))
	return nil, nil
}

func opCodeCopy(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	memOffset, codeOffset, length := st.pop(), st.pop(), st.pop()
	codeOff, overflow := codeOffset.Uint64WithOverflow()
	if overflow {
		codeOff = ^uint64(0)
	}
	data := getData(frame.Code(), codeOff, length.Uint64())
	mem.Set(memOffset.Uint64(), length.Uint64(), data)
	return nil, nil
}

func opGasprice(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	v := new(uint256.Int)
	if interp.evm.TxContext.GasPrice != nil {
		v.SetFromBig(interp.evm.TxContext.GasPrice)
	}
	st.push(v)
	return nil, nil
}

func opExtCodeSize(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	slot := st.peek()
	slot.SetUint64(uint64(interp.evm.World.GetCodeSize(toAddress(slot))))
	return nil, nil
}

func opExtCodeCopy(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	addrWord := st.pop()
	memOffset, codeOffset, length := st.pop(), st.pop(), st.pop()
	code := interp.evm.World.GetCode(toAddress(&addrWord))
	codeOff, overflow := codeOffset.Uint64WithOverflow()
	if overflow {
		codeOff = ^uint64(0)
	}
	data := getData(code, codeOff, length.Uint64())
	mem.Set(memOffset.Uint64(), length.Uint64(), data)
	return nil, nil
}

func opExtCodeHash(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	slot := st.peek()
	addr := toAddress(slot)
	if !interp.evm.World.Exist(addr) || interp.evm.World.Empty(addr) {
		slot.Clear()
		return nil, nil
	}
	hash := interp.evm.World.GetCodeHash(addr)
	slot.SetBytes(hash[:])
	return nil, nil
}

func opReturnDataSize(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	st.push(new(uint256.Int).SetUint64(uint64(len(interp.returnData))))
	return nil, nil
}

func opReturnDataCopy(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	memOffset, dataOffset, length := st.pop(), st.pop(), st.pop()
	offset64, overflow := dataOffset.Uint64WithOverflow()
	if overflow {
		return nil, ErrReturnDataOutOfBounds
	}
	length64, overflow := length.Uint64WithOverflow()
	if overflow {
		return nil, ErrReturnDataOutOfBounds
	}
	end := offset64 + length64
	if end < offset64 || uint64(len(interp.returnData)) < end {
		return nil, ErrReturnDataOutOfBounds
	}
	mem.Set(memOffset.Uint64(), length64, interp.returnData[offset64:end])
	return nil, nil
}

func opBlockhash(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	num := st.peek()
	if interp.evm.Context.GetHash == nil {
		num.Clear()
		return nil, nil
	}
	n, overflow := num.Uint64WithOverflow()
	if overflow {
		num.Clear()
		return nil, nil
	}
	hash := interp.evm.Context.GetHash(n)
	num.SetBytes(hash[:])
	return nil, nil
}

func opCoinbase(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	st.push(addressToWord(interp.evm.Context.Coinbase))
	return nil, nil
}

func opTimestamp(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	st.push(new(uint256.Int).SetUint64(interp.evm.Context.Time))
	return nil, nil
}

func opNumber(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	v := new(uint256.Int)
	if interp.evm.Context.BlockNumber != nil {
		v.SetFromBig(interp.evm.Context.BlockNumber)
	}
	st.push(v)
	return nil, nil
}

func opDifficulty(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	v := new(uint256.Int)
	if interp.evm.rules.IsMerge && interp.evm.Context.Random != nil {
		v.SetBytes(interp.evm.Context.Random[:])
	} else if interp.evm.Context.Difficulty != nil {
		v.SetFromBig(interp.evm.Context.Difficulty)
	}
	st.push(v)
	return nil, nil
}

func opGasLimit(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	st.push(new(uint256.Int).SetUint64(interp.evm.Context.GasLimit))
	return nil, nil
}

func opChainID(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	st.push(new(uint256.Int).Set(interp.evm.chainID))
	return nil, nil
}

func opSelfBalance(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	bal := interp.evm.World.GetBalance(frame.Address)
	st.push(new(uint256.Int).SetFromBig(bal))
	return nil, nil
}

func opBaseFee(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	v := new(uint256.Int)
	if interp.evm.Context.BaseFee != nil {
		v.SetFromBig(interp.evm.Context.BaseFee)
	}
	st.push(v)
	return nil, nil
}

func opBlobHash(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	idx := st.peek()
	i, overflow := idx.Uint64WithOverflow()
	if overflow || i >= uint64(len(interp.evm.TxContext.BlobHashes)) {
		idx.Clear()
		return nil, nil
	}
	h := interp.evm.TxContext.BlobHashes[i]
	idx.SetBytes(h[:])
	return nil, nil
}

func opBlobBaseFee(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	v := new(uint256.Int)
	if interp.evm.Context.BlobBaseFee != nil {
		v.SetFromBig(interp.evm.Context.BlobBaseFee)
	}
	st.push(v)
	return nil, nil
}

// getData returns len bytes from data starting at offset, zero-padding past
// the end of the slice; offset is already known not to have overflowed a
// uint64 (or was clamped to its max), matching CALLDATACOPY/CODECOPY's
// out-of-bounds-reads-as-zero rule.
func getData(data []byte, offset, length uint64) []byte {
	if offset > uint64(len(data)) {
		offset = uint64(len(data))
	}
	end := offset + length
	if end > uint64(len(data)) {
		end = uint64(len(data))
	}
	res := make([]byte, length)
	copy(res, data[offset:end])
	return res
}
