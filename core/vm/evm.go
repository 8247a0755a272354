package vm

import (
	"errors"
	"math/big"

	"github.com/holiman/uint256"

	"github.com/ethforge/corevm/crypto"
	"github.com/ethforge/corevm/rlp"
	"github.com/ethforge/corevm/types"
)

// PrecompiledContract is a native contract hard-coded at a low address: no
// EVM bytecode runs for it, only Go. RequiredGas is consulted before Run so
// a caller can fail fast on insufficient gas without executing anything.
type PrecompiledContract interface {
	RequiredGas(input []byte) uint64
	Run(input []byte) ([]byte, error)
}

// EVMLogger is the tracing hook surface the interpreter calls into when a
// Config.Tracer is set; StructLogTracer and the JS-scripted tracer both
// satisfy it. A nil Tracer disables tracing entirely with no overhead beyond
// the nil check.
type EVMLogger interface {
	CaptureStart(from, to types.Address, create bool, input []byte, gas uint64, value *big.Int)
	CaptureEnd(output []byte, gasUsed uint64, err error)
	CaptureState(pc uint64, op OpCode, gas, cost uint64, st *stack, mem *memory, depth int, err error)
	CaptureSelfDestruct(addr, beneficiary types.Address, balance *big.Int)
}

// EVM is the call-level execution environment: the block/transaction
// context it was invoked with, the World it reads and mutates, the active
// fork's gas table and precompile set, and the call-depth/read-only state
// that Call/Create and their variants thread through nested invocations.
type EVM struct {
	Context   BlockContext
	TxContext TxContext
	Config    Config
	World     World

	chainID *uint256.Int
	rules   ForkRules
	depth   int

	jumpTable   *JumpTable
	precompiles map[types.Address]PrecompiledContract
}

// NewEVM builds an EVM for a single block's worth of transactions: rules
// selects the gas table and precompile set once, up front, the way a real
// chain only changes fork rules between blocks, never mid-block.
func NewEVM(blockCtx BlockContext, txCtx TxContext, world World, chainID *big.Int, rules ForkRules, config Config) *EVM {
	cid := new(uint256.Int)
	if chainID != nil {
		cid.SetFromBig(chainID)
	}
	return &EVM{
		Context:     blockCtx,
		TxContext:   txCtx,
		Config:      config,
		World:       world,
		chainID:     cid,
		rules:       rules,
		jumpTable:   SelectJumpTable(rules),
		precompiles: SelectPrecompiles(rules),
	}
}

// NewInterpreter returns a fresh Interpreter bound to this EVM, with an empty
// return-data buffer of its own.
func (evm *EVM) NewInterpreter() *Interpreter {
	return &Interpreter{evm: evm}
}

func (evm *EVM) precompile(addr types.Address) (PrecompiledContract, bool) {
	p, ok := evm.precompiles[addr]
	return p, ok
}

func runPrecompile(p PrecompiledContract, input []byte, gas uint64) ([]byte, uint64, error) {
	gasCost := p.RequiredGas(input)
	if gas < gasCost {
		return nil, 0, ErrOutOfGas
	}
	output, err := p.Run(input)
	if err != nil {
		return nil, gas - gasCost, err
	}
	return output, gas - gasCost, nil
}

// PreWarmAccessList applies the EIP-2929 pre-warming a transaction's sender,
// recipient (if any) and every precompile address receive before its first
// opcode runs.
func (evm *EVM) PreWarmAccessList(sender types.Address, to *types.Address) {
	evm.World.AddAddressToAccessList(sender)
	if to != nil {
		evm.World.AddAddressToAccessList(*to)
	}
	for addr := range evm.precompiles {
		evm.World.AddAddressToAccessList(addr)
	}
}

// Finalize runs end-of-transaction self-destruct pruning (EIP-6780 from
// Cancun on, unconditional removal before it) and clears transient storage,
// which never survives a transaction boundary.
func (evm *EVM) Finalize() []types.Address {
	removed := evm.World.Finalize(!evm.rules.IsCancun)
	evm.World.ClearTransientStorage()
	return removed
}

func depthExceeded(depth int) bool { return depth > MaxCallDepth }

// Call executes a message call against addr: a precompile, a plain value
// transfer to an account with no code, or a contract invocation.
func (evm *EVM) Call(caller, addr types.Address, input []byte, gas uint64, value *big.Int) ([]byte, uint64, error) {
	if depthExceeded(evm.depth) {
		return nil, gas, ErrMaxCallDepthExceeded
	}
	tracer := evm.Config.Tracer
	top := evm.depth == 0
	if tracer != nil && top {
		tracer.CaptureStart(caller, addr, false, input, gas, value)
	}

	transfersValue := value != nil && value.Sign() > 0
	if transfersValue {
		if evm.World.GetBalance(caller).Cmp(value) < 0 {
			if tracer != nil && top {
				tracer.CaptureEnd(nil, 0, ErrInsufficientBalance)
			}
			return nil, gas, ErrInsufficientBalance
		}
	}

	snapshot := evm.World.Snapshot()
	p, isPrecompile := evm.precompile(addr)

	if !evm.World.Exist(addr) {
		if !isPrecompile && evm.rules.IsEIP158 && !transfersValue {
			if tracer != nil && top {
				tracer.CaptureEnd(nil, 0, nil)
			}
			return nil, gas, nil
		}
		evm.World.CreateAccount(addr)
	}

	if transfersValue {
		evm.World.SubBalance(caller, value)
		evm.World.AddBalance(addr, value)
	}

	if isPrecompile {
		ret, gasLeft, err := runPrecompile(p, input, gas)
		if err != nil {
			evm.World.RevertToSnapshot(snapshot)
		}
		if tracer != nil && top {
			tracer.CaptureEnd(ret, gas-gasLeft, err)
		}
		return ret, gasLeft, err
	}

	code := evm.World.GetCode(addr)
	if len(code) == 0 {
		if tracer != nil && top {
			tracer.CaptureEnd(nil, 0, nil)
		}
		return nil, gas, nil
	}

	frame := newFrame(caller, addr, code, evm.World.GetCodeHash(addr), newWordFromBig(value), gas)
	evm.depth++
	ret, err := evm.NewInterpreter().Run(frame, input)
	evm.depth--

	gasLeft := frame.Gas
	if err != nil && !errors.Is(err, ErrExecutionReverted) {
		evm.World.RevertToSnapshot(snapshot)
		gasLeft = 0
	} else if errors.Is(err, ErrExecutionReverted) {
		evm.World.RevertToSnapshot(snapshot)
	}

	if tracer != nil && top {
		tracer.CaptureEnd(ret, gas-gasLeft, err)
	}
	return ret, gasLeft, err
}

// CallCode runs addr's code in the caller's own storage/address context: a
// predecessor of DELEGATECALL that still adopts the call's own value.
func (evm *EVM) CallCode(caller, addr types.Address, input []byte, gas uint64, value *big.Int) ([]byte, uint64, error) {
	if depthExceeded(evm.depth) {
		return nil, gas, ErrMaxCallDepthExceeded
	}
	if p, ok := evm.precompile(addr); ok {
		return runPrecompile(p, input, gas)
	}
	code := evm.World.GetCode(addr)
	if len(code) == 0 {
		return nil, gas, nil
	}
	snapshot := evm.World.Snapshot()
	frame := newFrame(caller, caller, code, evm.World.GetCodeHash(addr), newWordFromBig(value), gas)
	evm.depth++
	ret, err := evm.NewInterpreter().Run(frame, input)
	evm.depth--

	gasLeft := frame.Gas
	if err != nil && !errors.Is(err, ErrExecutionReverted) {
		evm.World.RevertToSnapshot(snapshot)
		gasLeft = 0
	} else if errors.Is(err, ErrExecutionReverted) {
		evm.World.RevertToSnapshot(snapshot)
	}
	return ret, gasLeft, err
}

// DelegateCall runs addr's code with the calling frame's own address,
// caller and value all preserved, so storage, msg.sender and msg.value all
// stay the parent frame's.
func (evm *EVM) DelegateCall(parent *Frame, addr types.Address, input []byte, gas uint64) ([]byte, uint64, error) {
	if depthExceeded(evm.depth) {
		return nil, gas, ErrMaxCallDepthExceeded
	}
	if p, ok := evm.precompile(addr); ok {
		return runPrecompile(p, input, gas)
	}
	code := evm.World.GetCode(addr)
	if len(code) == 0 {
		return nil, gas, nil
	}
	snapshot := evm.World.Snapshot()
	frame := newFrame(parent.CallerAddress, parent.Address, code, evm.World.GetCodeHash(addr), parent.value, gas)
	frame.ReadOnly = parent.ReadOnly
	evm.depth++
	ret, err := evm.NewInterpreter().Run(frame, input)
	evm.depth--

	gasLeft := frame.Gas
	if err != nil && !errors.Is(err, ErrExecutionReverted) {
		evm.World.RevertToSnapshot(snapshot)
		gasLeft = 0
	} else if errors.Is(err, ErrExecutionReverted) {
		evm.World.RevertToSnapshot(snapshot)
	}
	return ret, gasLeft, err
}

// StaticCall runs addr's code with writes forbidden for the whole subtree:
// SSTORE, LOG, CREATE/CREATE2, SELFDESTRUCT and value-bearing CALL all fail
// with ErrWriteProtection for the duration, restored afterward even on panic
// recovery paths one level up.
func (evm *EVM) StaticCall(caller, addr types.Address, input []byte, gas uint64) ([]byte, uint64, error) {
	if depthExceeded(evm.depth) {
		return nil, gas, ErrMaxCallDepthExceeded
	}
	snapshot := evm.World.Snapshot()
	if p, ok := evm.precompile(addr); ok {
		ret, gasLeft, err := runPrecompile(p, input, gas)
		if err != nil {
			evm.World.RevertToSnapshot(snapshot)
		}
		return ret, gasLeft, err
	}
	code := evm.World.GetCode(addr)
	if len(code) == 0 {
		return nil, gas, nil
	}
	frame := newFrame(caller, addr, code, evm.World.GetCodeHash(addr), newWord(), gas)
	frame.ReadOnly = true
	evm.depth++
	ret, err := evm.NewInterpreter().Run(frame, input)
	evm.depth--

	gasLeft := frame.Gas
	if err != nil && !errors.Is(err, ErrExecutionReverted) {
		evm.World.RevertToSnapshot(snapshot)
		gasLeft = 0
	} else if errors.Is(err, ErrExecutionReverted) {
		evm.World.RevertToSnapshot(snapshot)
	}
	return ret, gasLeft, err
}

// createAddress derives the CREATE address: keccak256(rlp([sender, nonce]))[12:],
// using the module's own RLP encoder rather than hand-rolling the encoding.
func createAddress(caller types.Address, nonce uint64) types.Address {
	enc, err := rlp.EncodeToBytes([]interface{}{caller[:], nonce})
	if err != nil {
		panic(err)
	}
	hash := crypto.Keccak256(enc)
	return types.BytesToAddress(hash[12:])
}

// create2Address derives the CREATE2 address: keccak256(0xff ++ sender ++
// salt ++ keccak256(initcode))[12:] (EIP-1014), not RLP-encoded at all.
func create2Address(caller types.Address, salt *Word, initCodeHash []byte) types.Address {
	saltBytes := salt.Bytes32()
	data := make([]byte, 0, 1+types.AddressLength+32+32)
	data = append(data, 0xff)
	data = append(data, caller[:]...)
	data = append(data, saltBytes[:]...)
	data = append(data, initCodeHash...)
	hash := crypto.Keccak256(data)
	return types.BytesToAddress(hash[12:])
}

// Create deploys code as a CREATE contract, deriving its address from the
// caller's current nonce.
func (evm *EVM) Create(caller types.Address, code []byte, gas uint64, value *big.Int) ([]byte, types.Address, uint64, error) {
	nonce := evm.World.GetNonce(caller)
	evm.World.SetNonce(caller, nonce+1)
	addr := createAddress(caller, nonce)
	return evm.create(caller, code, gas, value, addr)
}

// Create2 deploys code as a CREATE2 contract, deriving its address from an
// explicit salt so the deployer can predict it ahead of time.
func (evm *EVM) Create2(caller types.Address, code []byte, gas uint64, value *big.Int, salt *Word) ([]byte, types.Address, uint64, error) {
	initCodeHash := crypto.Keccak256(code)
	addr := create2Address(caller, salt, initCodeHash)
	return evm.create(caller, code, gas, value, addr)
}

// create is the shared CREATE/CREATE2 implementation: collision checking,
// value transfer, init code execution under the EIP-150 63/64ths rule, and
// EIP-3541/EIP-170 deposit-time validation of the returned code.
func (evm *EVM) create(caller types.Address, code []byte, gas uint64, value *big.Int, addr types.Address) ([]byte, types.Address, uint64, error) {
	if depthExceeded(evm.depth) {
		return nil, types.Address{}, gas, ErrMaxCallDepthExceeded
	}

	maxInit := MaxInitCodeSize
	if !evm.rules.IsShanghai {
		maxInit = ^uint64(0)
	}
	if uint64(len(code)) > maxInit {
		return nil, types.Address{}, gas, ErrMaxInitCodeSizeExceeded
	}

	codeHash := evm.World.GetCodeHash(addr)
	if evm.World.GetNonce(addr) != 0 || (!codeHash.IsZero() && codeHash != types.EmptyCodeHash) {
		return nil, types.Address{}, 0, ErrContractAddressCollision
	}

	// Warm the new address before the snapshot: an EIP-2929 access-list
	// change is not undone even when the creation itself reverts.
	evm.World.AddAddressToAccessList(addr)

	snapshot := evm.World.Snapshot()
	if !evm.World.Exist(addr) {
		evm.World.CreateAccount(addr)
	}
	evm.World.SetNonce(addr, 1)
	evm.World.MarkCreated(addr)

	if value != nil && value.Sign() > 0 {
		if evm.World.GetBalance(caller).Cmp(value) < 0 {
			evm.World.RevertToSnapshot(snapshot)
			return nil, types.Address{}, gas, ErrInsufficientBalance
		}
		evm.World.SubBalance(caller, value)
		evm.World.AddBalance(addr, value)
	}

	callGas := gas - gas/64
	gas -= callGas

	frame := newFrame(caller, addr, code, types.Hash{}, newWordFromBig(value), callGas)
	frame.IsCreate = true
	evm.depth++
	ret, err := evm.NewInterpreter().Run(frame, nil)
	evm.depth--

	if err != nil {
		evm.World.RevertToSnapshot(snapshot)
		if !errors.Is(err, ErrExecutionReverted) {
			return nil, types.Address{}, gas, err
		}
		gas += frame.Gas
		return ret, types.Address{}, gas, err
	}
	gas += frame.Gas

	if len(ret) > 0 {
		// EIP-3541: deployed code beginning with the EOF magic byte is only
		// legal when it is actually a well-formed EOF container.
		if ret[0] == 0xEF {
			if _, eofErr := parseEOF(ret); eofErr != nil {
				evm.World.RevertToSnapshot(snapshot)
				return nil, types.Address{}, 0, eofErr
			}
		}
		if uint64(len(ret)) > MaxCodeSize {
			evm.World.RevertToSnapshot(snapshot)
			return nil, types.Address{}, 0, ErrMaxCodeSizeExceeded
		}
		depositCost := uint64(len(ret)) * CreateDataGas
		if gas < depositCost {
			evm.World.RevertToSnapshot(snapshot)
			return nil, types.Address{}, 0, ErrOutOfGas
		}
		gas -= depositCost
		evm.World.SetCode(addr, ret)
	}

	return ret, addr, gas, nil
}
