package vm

import (
	"math/big"

	"github.com/dop251/goja"

	"github.com/ethforge/corevm/types"
)

// JSTracer runs a user-supplied JavaScript tracer against each step/frame
// callback the interpreter produces, the idiomatic Go answer this ecosystem
// reaches for when it wants a tracer that isn't hard-coded into the binary
// (go-ethereum's own `debug_traceTransaction` with a `tracer` string does
// the same thing against its own JS VM). The script must define three
// top-level functions — step(log), fault(log) and result() — mirroring
// go-ethereum's JS tracer contract; step/fault are invoked for every
// CaptureState call, result is called by Result.
type JSTracer struct {
	vm       *goja.Runtime
	step     goja.Callable
	fault    goja.Callable
	resultFn goja.Callable

	err error
}

// NewJSTracer compiles script and binds its step/fault/result functions.
// The script runs in its own goja.Runtime; no state is shared with Go
// beyond what each callback is explicitly handed.
func NewJSTracer(script string) (*JSTracer, error) {
	vm := goja.New()
	if _, err := vm.RunString(script); err != nil {
		return nil, err
	}

	t := &JSTracer{vm: vm}
	for name, slot := range map[string]*goja.Callable{
		"step":   &t.step,
		"fault":  &t.fault,
		"result": &t.resultFn,
	} {
		fn, ok := goja.AssertFunction(vm.Get(name))
		if !ok {
			return nil, errJSTracerMissingFn(name)
		}
		*slot = fn
	}
	return t, nil
}

type errJSTracerMissingFn string

func (e errJSTracerMissingFn) Error() string {
	return "js tracer: script does not define function " + string(e)
}

// jsStepLog is the object passed to the script's step/fault functions, a
// narrow read-only view of the step analogous to go-ethereum's `log`
// object in its native JS tracer.
type jsStepLog struct {
	Pc      uint64   `json:"pc"`
	Op      string   `json:"op"`
	Gas     uint64   `json:"gas"`
	Cost    uint64   `json:"cost"`
	Depth   int      `json:"depth"`
	Stack   []string `json:"stack"`
	Err     string   `json:"error,omitempty"`
}

func (t *JSTracer) CaptureStart(from, to types.Address, create bool, input []byte, gas uint64, value *big.Int) {
}

func (t *JSTracer) CaptureState(pc uint64, op OpCode, gas, cost uint64, st *stack, mem *memory, depth int, err error) {
	if t.err != nil {
		return
	}
	data := st.Data()
	stackHex := make([]string, len(data))
	for i, v := range data {
		stackHex[i] = v.Hex()
	}
	log := jsStepLog{Pc: pc, Op: op.String(), Gas: gas, Cost: cost, Depth: depth, Stack: stackHex}
	fn := t.step
	if err != nil {
		log.Err = err.Error()
		fn = t.fault
	}
	if _, callErr := fn(goja.Undefined(), t.vm.ToValue(log)); callErr != nil {
		t.err = callErr
	}
}

func (t *JSTracer) CaptureEnd(output []byte, gasUsed uint64, err error) {}

func (t *JSTracer) CaptureSelfDestruct(addr, beneficiary types.Address, balance *big.Int) {}

// Result invokes the script's result() function and returns its JSON-able
// return value, analogous to go-ethereum's tracer Result() RPC method.
func (t *JSTracer) Result() (goja.Value, error) {
	if t.err != nil {
		return nil, t.err
	}
	return t.resultFn(goja.Undefined())
}
