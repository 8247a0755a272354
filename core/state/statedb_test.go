package state

import (
	"math/big"
	"testing"

	"github.com/ethforge/corevm/types"
)

func TestFinalizeDeletesSelfDestructedPreCancun(t *testing.T) {
	db := NewMemoryStateDB()
	addr := types.BytesToAddress([]byte{0x01})
	db.CreateAccount(addr)
	db.SelfDestruct(addr)

	removed := db.Finalize(true)
	if len(removed) != 1 || removed[0] != addr {
		t.Fatalf("Finalize(true) removed = %v, want [%x]", removed, addr)
	}
	if db.Exist(addr) {
		t.Error("account should no longer exist after Finalize(true)")
	}
}

func TestFinalizeEIP6780OnlyDeletesCreatedThisTx(t *testing.T) {
	db := NewMemoryStateDB()
	created := types.BytesToAddress([]byte{0x02})
	preexisting := types.BytesToAddress([]byte{0x03})

	db.CreateAccount(created)
	db.MarkCreated(created)
	db.SelfDestruct(created)

	db.CreateAccount(preexisting)
	db.SelfDestruct(preexisting) // not created this tx

	removed := db.Finalize(false)
	if len(removed) != 1 || removed[0] != created {
		t.Fatalf("Finalize(false) removed = %v, want only [%x]", removed, created)
	}
	if db.Exist(created) {
		t.Error("account created this tx should be removed")
	}
	if !db.Exist(preexisting) {
		t.Error("pre-existing self-destructed account must survive under EIP-6780")
	}
	if !db.HasSelfDestructed(preexisting) {
		t.Error("pre-existing account should still carry its self-destruct flag")
	}
}

func TestFinalizeClearsCreatedThisTxBookkeeping(t *testing.T) {
	db := NewMemoryStateDB()
	addr := types.BytesToAddress([]byte{0x04})
	db.MarkCreated(addr)
	db.Finalize(false)
	if db.CreatedThisTx(addr) {
		t.Error("created-this-tx bookkeeping must not survive Finalize")
	}
}

func TestEmptyAccount(t *testing.T) {
	db := NewMemoryStateDB()
	addr := types.BytesToAddress([]byte{0x05})

	if !db.Empty(addr) {
		t.Error("nonexistent account should be Empty")
	}

	db.CreateAccount(addr)
	if !db.Empty(addr) {
		t.Error("freshly created account with zero nonce/balance/code should be Empty")
	}

	db.SetNonce(addr, 1)
	if db.Empty(addr) {
		t.Error("account with nonzero nonce must not be Empty")
	}
}

func TestSetCodeUpdatesCodeHash(t *testing.T) {
	db := NewMemoryStateDB()
	addr := types.BytesToAddress([]byte{0x06})
	db.CreateAccount(addr)

	if db.GetCodeHash(addr) != types.EmptyCodeHash {
		t.Fatalf("fresh account code hash should be EmptyCodeHash, got %x", db.GetCodeHash(addr))
	}

	db.SetCode(addr, []byte{0x60, 0x00})
	if db.GetCodeHash(addr) == (types.Hash{}) {
		t.Error("code hash should be set after SetCode")
	}
	if db.GetCodeSize(addr) != 2 {
		t.Errorf("code size = %d, want 2", db.GetCodeSize(addr))
	}
}

func TestFinalizePreStateSeedsCommittedStorage(t *testing.T) {
	db := NewMemoryStateDB()
	addr := types.BytesToAddress([]byte{0x07})
	key := types.BytesToHash([]byte{0x01})
	value := types.BytesToHash([]byte{0x99})

	db.SetState(addr, key, value)
	db.FinalizePreState()

	if got := db.GetCommittedState(addr, key); got != value {
		t.Errorf("committed state after FinalizePreState = %x, want %x", got, value)
	}
}

func TestPrefetchCreatesStateObjects(t *testing.T) {
	db := NewMemoryStateDB()
	addr := types.BytesToAddress([]byte{0x08})
	db.Prefetch([]types.Address{addr})
	if !db.Exist(addr) {
		t.Error("Prefetch should create an empty state object for the address")
	}
}

func TestCopyIsIndependent(t *testing.T) {
	db := NewMemoryStateDB()
	addr := types.BytesToAddress([]byte{0x09})
	db.CreateAccount(addr)
	db.AddBalance(addr, big.NewInt(10))
	db.SetState(addr, types.BytesToHash([]byte{0x01}), types.BytesToHash([]byte{0x02}))

	cp := db.Copy()
	cp.AddBalance(addr, big.NewInt(5))
	cp.SetState(addr, types.BytesToHash([]byte{0x01}), types.BytesToHash([]byte{0xff}))

	if db.GetBalance(addr).Cmp(big.NewInt(10)) != 0 {
		t.Errorf("original balance mutated by copy: %s", db.GetBalance(addr))
	}
	if got := db.GetState(addr, types.BytesToHash([]byte{0x01})); got != types.BytesToHash([]byte{0x02}) {
		t.Errorf("original storage mutated by copy: %x", got)
	}
	if cp.GetBalance(addr).Cmp(big.NewInt(15)) != 0 {
		t.Errorf("copy balance = %s, want 15", cp.GetBalance(addr))
	}
}

func TestMergeFoldsBalanceAndStorage(t *testing.T) {
	db := NewMemoryStateDB()
	addr := types.BytesToAddress([]byte{0x0a})
	db.CreateAccount(addr)
	db.AddBalance(addr, big.NewInt(1))

	branch := db.Copy()
	branch.AddBalance(addr, big.NewInt(99))
	branch.SetState(addr, types.BytesToHash([]byte{0x01}), types.BytesToHash([]byte{0x02}))
	branch.AddRefund(10)

	db.Merge(branch)

	if db.GetBalance(addr).Cmp(big.NewInt(100)) != 0 {
		t.Errorf("merged balance = %s, want 100", db.GetBalance(addr))
	}
	if got := db.GetState(addr, types.BytesToHash([]byte{0x01})); got != types.BytesToHash([]byte{0x02}) {
		t.Errorf("merged storage = %x, want 02", got)
	}
	if db.GetRefund() != 10 {
		t.Errorf("merged refund = %d, want 10", db.GetRefund())
	}
}

func TestClearTransientStorageWipesEverything(t *testing.T) {
	db := NewMemoryStateDB()
	addr := types.BytesToAddress([]byte{0x0b})
	key := types.BytesToHash([]byte{0x01})
	db.SetTransientState(addr, key, types.BytesToHash([]byte{0x01}))

	db.ClearTransientStorage()
	if got := db.GetTransientState(addr, key); got != (types.Hash{}) {
		t.Errorf("transient state after clear = %x, want zero", got)
	}
}
