package vm

import "github.com/holiman/uint256"

func opAdd(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	x, y := st.pop(), st.peek()
	y.Add(&x, y)
	return nil, nil
}

func opSub(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	x, y := st.pop(), st.peek()
	y.Sub(&x, y)
	return nil, nil
}

func opMul(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	x, y := st.pop(), st.peek()
	y.Mul(&x, y)
	return nil, nil
}

func opDiv(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	x, y := st.pop(), st.peek()
	y.Div(&x, y)
	return nil, nil
}

func opSdiv(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	x, y := st.pop(), st.peek()
	y.SDiv(&x, y)
	return nil, nil
}

func opMod(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	x, y := st.pop(), st.peek()
	y.Mod(&x, y)
	return nil, nil
}

func opSmod(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	x, y := st.pop(), st.peek()
	y.SMod(&x, y)
	return nil, nil
}

func opAddmod(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	x, y, z := st.pop(), st.pop(), st.peek()
	z.AddMod(&x, &y, z)
	return nil, nil
}

func opMulmod(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	x, y, z := st.pop(), st.pop(), st.peek()
	z.MulMod(&x, &y, z)
	return nil, nil
}

func opExp(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	base, exponent := st.pop(), st.peek()
	exponent.Exp(&base, exponent)
	return nil, nil
}

func opSignExtend(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	back, num := st.pop(), st.peek()
	num.ExtendSign(num, &back)
	return nil, nil
}

func opLt(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	x, y := st.pop(), st.peek()
	if x.Lt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil, nil
}

func opGt(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	x, y := st.pop(), st.peek()
	if x.Gt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil, nil
}

func opSlt(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	x, y := st.pop(), st.peek()
	if x.Slt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil, nil
}

func opSgt(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	x, y := st.pop(), st.peek()
	if x.Sgt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil, nil
}

func opEq(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	x, y := st.pop(), st.peek()
	if x.Eq(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil, nil
}

func opIszero(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	x := st.peek()
	if x.IsZero() {
		x.SetOne()
	} else {
		x.Clear()
	}
	return nil, nil
}

func opAnd(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	x, y := st.pop(), st.peek()
	y.And(&x, y)
	return nil, nil
}

func opOr(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	x, y := st.pop(), st.peek()
	y.Or(&x, y)
	return nil, nil
}

func opXor(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	x, y := st.pop(), st.peek()
	y.Xor(&x, y)
	return nil, nil
}

func opNot(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	x := st.peek()
	x.Not(x)
	return nil, nil
}

func opByte(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	th, val := st.pop(), st.peek()
	val.Byte(&th)
	return nil, nil
}

func opShl(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	shift, value := st.pop(), st.peek()
	if shift.LtUint64(256) {
		value.Lsh(value, uint(shift.Uint64()))
	} else {
		value.Clear()
	}
	return nil, nil
}

func opShr(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	shift, value := st.pop(), st.peek()
	if shift.LtUint64(256) {
		value.Rsh(value, uint(shift.Uint64()))
	} else {
		value.Clear()
	}
	return nil, nil
}

func opSar(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	shift, value := st.pop(), st.peek()
	result := sar(&shift, value)
	value.Set(result)
	return nil, nil
}

func opKeccak256(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
	offset, size := st.pop(), st.peek()
	data := mem.GetPtr(int64(offset.Uint64()), int64(size.Uint64()))
	hash := interp.hasher(data)
	size.SetBytes(hash)
	return nil, nil
}

func makePush(size uint64) executionFunc {
	return func(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
		codeLen := uint64(len(frame.Code()))
		startMin := *pc + 1
		if startMin >= codeLen {
			startMin = codeLen
		}
		endMin := startMin + size
		if endMin > codeLen {
			endMin = codeLen
		}
		var b [32]byte
		copy(b[32-size:], frame.Code()[startMin:endMin])
		st.push(new(uint256.Int).SetBytes(b[:]))
		*pc += size
		return nil, nil
	}
}

func makeDup(n int) executionFunc {
	return func(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
		st.dup(n)
		return nil, nil
	}
}

func makeSwap(n int) executionFunc {
	return func(pc *uint64, interp *Interpreter, frame *Frame, mem *memory, st *stack) ([]byte, error) {
		st.swap(n)
		return nil, nil
	}
}
