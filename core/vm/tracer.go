package vm

import (
	"math/big"

	"github.com/ethforge/corevm/types"
)

// StructLogEntry is a single step recorded by StructLogTracer: the pc, the
// opcode, gas before and cost of the step, call depth, a snapshot of the
// stack taken at that point, and any error the step produced.
type StructLogEntry struct {
	Pc      uint64
	Op      OpCode
	Gas     uint64
	GasCost uint64
	Depth   int
	Stack   []*big.Int
	Err     error
}

// StructLogTracer is the reference EVMLogger: it collects one StructLogEntry
// per opcode step, the way go-ethereum's own struct-logger does for
// debug_traceTransaction, so cmd/t8n can emit go-ethereum-shaped structlogs
// without a second tracing implementation.
type StructLogTracer struct {
	Logs    []StructLogEntry
	output  []byte
	err     error
	gasUsed uint64
}

// NewStructLogTracer returns an empty StructLogTracer ready to attach to a
// Config.Tracer for a single top-level call.
func NewStructLogTracer() *StructLogTracer {
	return &StructLogTracer{}
}

func (t *StructLogTracer) CaptureStart(from, to types.Address, create bool, input []byte, gas uint64, value *big.Int) {
}

// CaptureState copies the stack's live *Word pointers into owned *big.Int
// values before recording, since the interpreter mutates the stack's
// backing array in place on every subsequent step.
func (t *StructLogTracer) CaptureState(pc uint64, op OpCode, gas, cost uint64, st *stack, mem *memory, depth int, err error) {
	data := st.Data()
	stackCopy := make([]*big.Int, len(data))
	for i, v := range data {
		stackCopy[i] = v.ToBig()
	}
	t.Logs = append(t.Logs, StructLogEntry{
		Pc:      pc,
		Op:      op,
		Gas:     gas,
		GasCost: cost,
		Depth:   depth,
		Stack:   stackCopy,
		Err:     err,
	})
}

func (t *StructLogTracer) CaptureEnd(output []byte, gasUsed uint64, err error) {
	t.output = output
	t.gasUsed = gasUsed
	t.err = err
}

func (t *StructLogTracer) CaptureSelfDestruct(addr, beneficiary types.Address, balance *big.Int) {}

// Output returns the return data of the traced top-level call.
func (t *StructLogTracer) Output() []byte { return t.output }

// GasUsed returns the total gas consumed by the traced top-level call.
func (t *StructLogTracer) GasUsed() uint64 { return t.gasUsed }

// Err returns the error the traced call halted with, if any.
func (t *StructLogTracer) Err() error { return t.err }
