package vm

import "errors"

// Interpreter drives one Frame's bytecode from pc 0 until it halts, reverts
// or errors. It is created fresh for every Call/Create-family invocation
// (see EVM's NewInterpreter), holding only what's scoped to that single
// frame's execution: the EVM it runs against and the return data left
// behind by the frame's own last nested call.
type Interpreter struct {
	evm        *EVM
	returnData []byte
}

// Run executes frame's code against input (nil for CREATE, since a frame
// under construction has no calldata of its own — CREATE's "input" is the
// init code already stored as frame.code). Gas is charged in the order
// constant -> memory expansion -> opcode-specific dynamic -> resize -> and
// only then is the opcode's own handler invoked, so an opcode never sees
// memory it hasn't paid to grow.
func (in *Interpreter) Run(frame *Frame, input []byte) ([]byte, error) {
	frame.Input = input

	if isEOF(frame.code) {
		container, err := parseEOF(frame.code)
		if err != nil {
			return nil, err
		}
		frame.container = container
		frame.setCodeSection(0)
	}

	var (
		pc  uint64
		st  = newStack()
		mem = newMemory()
	)
	defer returnStack(st)

	tracer := in.evm.Config.Tracer
	debug := tracer != nil

	for {
		op := frame.GetOp(pc)
		operation := in.evm.jumpTable[op]
		if operation == nil || operation.execute == nil {
			return nil, ErrInvalidOpCode
		}

		sLen := st.Len()
		if sLen < operation.minStack {
			return nil, ErrStackUnderflow
		}
		if sLen > operation.maxStack {
			return nil, ErrStackOverflow
		}

		gasBefore := frame.Gas

		if operation.constantGas > 0 {
			if !frame.UseGas(operation.constantGas) {
				return nil, ErrOutOfGas
			}
		}

		var memSize uint64
		if operation.memorySize != nil {
			size, overflow := operation.memorySize(st)
			if overflow {
				return nil, ErrGasUintOverflow
			}
			if size > 0 {
				memSize = toWordSize(size) * 32
			}
		}

		if memSize > 0 {
			cost, err := memoryExpansionGas(mem, memSize)
			if err != nil {
				return nil, err
			}
			if !frame.UseGas(cost) {
				return nil, ErrOutOfGas
			}
		}

		if operation.dynamicGas != nil {
			cost, err := operation.dynamicGas(in, frame, st, mem, memSize)
			if err != nil {
				return nil, err
			}
			if !frame.UseGas(cost) {
				return nil, ErrOutOfGas
			}
		}

		if memSize > uint64(mem.Len()) {
			mem.Resize(memSize)
		}

		if debug {
			tracer.CaptureState(pc, op, gasBefore, gasBefore-frame.Gas, st, mem, in.evm.depth, nil)
		}

		ret, err := operation.execute(&pc, in, frame, mem, st)
		if err != nil {
			if errors.Is(err, errStopToken) {
				return ret, nil
			}
			if errors.Is(err, errJumpHandled) {
				continue
			}
			if errors.Is(err, ErrExecutionReverted) {
				return ret, ErrExecutionReverted
			}
			return nil, err
		}

		pc++
	}
}
