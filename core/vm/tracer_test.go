package vm

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethforge/corevm/types"
)

func TestStructLogTracerCaptureStateSnapshotsStack(t *testing.T) {
	tr := NewStructLogTracer()
	st := newStack()
	defer returnStack(st)
	st.push(newWordFromBig(big.NewInt(1)))
	st.push(newWordFromBig(big.NewInt(2)))

	tr.CaptureState(10, ADD, 100, 3, st, nil, 0, nil)

	// Mutate the stack after capture: the recorded snapshot must not change.
	st.pop()
	st.push(newWordFromBig(big.NewInt(99)))

	if len(tr.Logs) != 1 {
		t.Fatalf("Logs len = %d, want 1", len(tr.Logs))
	}
	entry := tr.Logs[0]
	if entry.Pc != 10 || entry.Op != ADD || entry.Gas != 100 || entry.GasCost != 3 {
		t.Errorf("entry fields mismatch: %+v", entry)
	}
	if len(entry.Stack) != 2 || entry.Stack[0].Int64() != 1 || entry.Stack[1].Int64() != 2 {
		t.Errorf("entry.Stack = %v, want [1 2] (captured before the later mutation)", entry.Stack)
	}
}

func TestStructLogTracerCaptureEnd(t *testing.T) {
	tr := NewStructLogTracer()
	wantErr := errors.New("boom")
	tr.CaptureEnd([]byte{0x01}, 21000, wantErr)

	if tr.GasUsed() != 21000 {
		t.Errorf("GasUsed() = %d, want 21000", tr.GasUsed())
	}
	if string(tr.Output()) != "\x01" {
		t.Errorf("Output() = %x, want 01", tr.Output())
	}
	if !errors.Is(tr.Err(), wantErr) {
		t.Errorf("Err() = %v, want %v", tr.Err(), wantErr)
	}
}

func TestStructLogTracerAccumulatesMultipleSteps(t *testing.T) {
	tr := NewStructLogTracer()
	st := newStack()
	defer returnStack(st)

	tr.CaptureState(0, PUSH1, 100, 3, st, nil, 0, nil)
	tr.CaptureState(2, STOP, 97, 0, st, nil, 0, nil)

	if len(tr.Logs) != 2 {
		t.Fatalf("Logs len = %d, want 2", len(tr.Logs))
	}
	if tr.Logs[0].Op != PUSH1 || tr.Logs[1].Op != STOP {
		t.Errorf("unexpected op sequence: %v, %v", tr.Logs[0].Op, tr.Logs[1].Op)
	}
}

func TestStructLogTracerCaptureStartNoPanic(t *testing.T) {
	tr := NewStructLogTracer()
	from := types.BytesToAddress([]byte{0x01})
	to := types.BytesToAddress([]byte{0x02})
	tr.CaptureStart(from, to, false, nil, 21000, big.NewInt(0))
	tr.CaptureSelfDestruct(to, from, big.NewInt(0))
}
