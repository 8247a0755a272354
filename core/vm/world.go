package vm

import (
	"math/big"

	"github.com/ethforge/corevm/types"
)

// World is the host-state contract the interpreter needs from whatever
// backs account and storage data. It is declared here, in the vm package,
// rather than imported from core/state, so that core/state can implement
// it without the two packages importing one another; core/state.MemoryStateDB
// satisfies this interface.
type World interface {
	CreateAccount(types.Address)

	SubBalance(types.Address, *big.Int)
	AddBalance(types.Address, *big.Int)
	GetBalance(types.Address) *big.Int

	GetNonce(types.Address) uint64
	SetNonce(types.Address, uint64)

	GetCodeHash(types.Address) types.Hash
	GetCode(types.Address) []byte
	SetCode(types.Address, []byte)
	GetCodeSize(types.Address) int

	AddRefund(uint64)
	SubRefund(uint64)
	GetRefund() uint64

	GetState(types.Address, types.Hash) types.Hash
	SetState(types.Address, types.Hash, types.Hash)
	GetCommittedState(types.Address, types.Hash) types.Hash

	GetTransientState(types.Address, types.Hash) types.Hash
	SetTransientState(types.Address, types.Hash, types.Hash)

	SelfDestruct(types.Address)
	HasSelfDestructed(types.Address) bool

	// MarkCreated records that addr was created by the transaction currently
	// executing, the fact EIP-6780 needs to decide whether a later
	// SELFDESTRUCT against addr may remove it outright or may only clear its
	// balance.
	MarkCreated(types.Address)
	CreatedThisTx(types.Address) bool

	// Finalize runs end-of-transaction account pruning: accounts marked
	// self-destructed are deleted outright when deleteAll is set (pre-Cancun
	// semantics) or only when they were also created earlier in the same
	// transaction (EIP-6780, Cancun onward). It returns the addresses removed.
	Finalize(deleteAll bool) []types.Address

	// ClearTransientStorage wipes all EIP-1153 transient storage; called once
	// per transaction boundary, since transient storage never outlives a tx.
	ClearTransientStorage()

	Exist(types.Address) bool
	Empty(types.Address) bool

	AddressInAccessList(types.Address) bool
	SlotInAccessList(types.Address, types.Hash) (addressOk, slotOk bool)
	AddAddressToAccessList(types.Address)
	AddSlotToAccessList(types.Address, types.Hash)

	Snapshot() int
	RevertToSnapshot(int)

	AddLog(*types.Log)
}

// GetHashFunc returns the hash of the ancestor block n levels behind the
// current one, backing the BLOCKHASH opcode; it returns the zero hash for
// out-of-range lookups (more than 256 blocks back, or a future block).
type GetHashFunc func(n uint64) types.Hash

// BlockContext groups the block-scoped values the interpreter reads that
// are not block-specific enough to come from the State; it does not change
// across the transactions of a single block.
type BlockContext struct {
	GetHash GetHashFunc

	Coinbase    types.Address
	GasLimit    uint64
	BlockNumber *big.Int
	Time        uint64
	Difficulty  *big.Int // PREVRANDAO on post-merge forks
	BaseFee     *big.Int
	BlobBaseFee *big.Int
	Random      *types.Hash // post-merge PREVRANDAO value, nil pre-merge
}

// TxContext groups the transaction-scoped values that do change between
// transactions within the same block.
type TxContext struct {
	Origin     types.Address
	GasPrice   *big.Int
	BlobHashes []types.Hash
}

// ForkRules selects which EIP behaviors are active for a given call; each
// field corresponds to a named hard fork, and later forks imply all earlier
// ones are also set, mirroring the teacher's flattened rule-set struct
// rather than an ordered enum so callers can test individual EIPs directly.
type ForkRules struct {
	IsHomestead bool
	IsEIP150    bool
	IsEIP158    bool // EIP-161 empty account cleanup
	IsByzantium bool
	IsConstantinople bool
	IsPetersburg bool
	IsIstanbul  bool
	IsBerlin    bool // EIP-2929/2930
	IsLondon    bool // EIP-1559/3529/3541
	IsMerge     bool
	IsShanghai  bool // EIP-3855 PUSH0, EIP-3860 init code metering
	IsCancun    bool // EIP-1153/4844/5656/6780
	IsPrague    bool // EIP-2537/7702, EOF
	IsGlamsterdam bool
}

// Config bundles the options the interpreter needs beyond chain rules:
// debug/tracing hooks and limits that a host may want to override for
// testing.
type Config struct {
	Tracer                  EVMLogger
	NoBaseFee               bool
	EnablePreimageRecording bool
}
