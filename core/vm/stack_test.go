package vm

import (
	"math/big"
	"testing"
)

func TestStackPushPop(t *testing.T) {
	st := newStack()
	defer returnStack(st)

	st.push(newWordFromBig(big.NewInt(1)))
	st.push(newWordFromBig(big.NewInt(2)))
	st.push(newWordFromBig(big.NewInt(3)))

	if st.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", st.Len())
	}
	top := st.pop()
	if top.Uint64() != 3 {
		t.Errorf("pop() = %d, want 3 (LIFO)", top.Uint64())
	}
	if st.Len() != 2 {
		t.Fatalf("Len() after pop = %d, want 2", st.Len())
	}
}

func TestStackPeekAndBack(t *testing.T) {
	st := newStack()
	defer returnStack(st)

	st.push(newWordFromBig(big.NewInt(10)))
	st.push(newWordFromBig(big.NewInt(20)))
	st.push(newWordFromBig(big.NewInt(30)))

	if st.peek().Uint64() != 30 {
		t.Errorf("peek() = %d, want 30", st.peek().Uint64())
	}
	if st.Back(0).Uint64() != 30 {
		t.Errorf("Back(0) = %d, want 30", st.Back(0).Uint64())
	}
	if st.Back(2).Uint64() != 10 {
		t.Errorf("Back(2) = %d, want 10", st.Back(2).Uint64())
	}
}

func TestStackSwap(t *testing.T) {
	st := newStack()
	defer returnStack(st)

	st.push(newWordFromBig(big.NewInt(1)))
	st.push(newWordFromBig(big.NewInt(2)))
	st.push(newWordFromBig(big.NewInt(3)))

	st.swap(2) // SWAP2: exchange top with third-from-top
	if st.Back(0).Uint64() != 1 || st.Back(2).Uint64() != 3 {
		t.Errorf("swap(2): top=%d bottom=%d, want top=1 bottom=3", st.Back(0).Uint64(), st.Back(2).Uint64())
	}
}

func TestStackDup(t *testing.T) {
	st := newStack()
	defer returnStack(st)

	st.push(newWordFromBig(big.NewInt(1)))
	st.push(newWordFromBig(big.NewInt(2)))

	st.dup(1) // DUP1: duplicate the top
	if st.Len() != 3 {
		t.Fatalf("Len() after dup = %d, want 3", st.Len())
	}
	if st.Back(0).Uint64() != 2 || st.Back(1).Uint64() != 2 {
		t.Errorf("dup(1): top two = %d,%d, want 2,2", st.Back(0).Uint64(), st.Back(1).Uint64())
	}
}

func TestStackDataOrderBottomFirst(t *testing.T) {
	st := newStack()
	defer returnStack(st)

	st.push(newWordFromBig(big.NewInt(1)))
	st.push(newWordFromBig(big.NewInt(2)))

	data := st.Data()
	if len(data) != 2 || data[0].Uint64() != 1 || data[1].Uint64() != 2 {
		t.Errorf("Data() = %v, want bottom-first [1, 2]", data)
	}
}

func TestStackPoolReuseIsClean(t *testing.T) {
	st := newStack()
	st.push(newWordFromBig(big.NewInt(99)))
	returnStack(st)

	reused := newStack()
	defer returnStack(reused)
	if reused.Len() != 0 {
		t.Errorf("stack from pool after return: Len() = %d, want 0", reused.Len())
	}
}
