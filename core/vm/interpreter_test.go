package vm

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethforge/corevm/core/state"
	"github.com/ethforge/corevm/crypto"
	"github.com/ethforge/corevm/types"
)

// newIntegrationEVM builds an EVM against a real MemoryStateDB, the way a
// production caller would, rather than against a stub World.
func newIntegrationEVM(rules ForkRules) (*EVM, *state.MemoryStateDB) {
	world := state.NewMemoryStateDB()
	evm := NewEVM(
		BlockContext{
			BlockNumber: big.NewInt(100),
			Time:        1700000000,
			GasLimit:    30_000_000,
			BaseFee:     big.NewInt(1_000_000_000),
		},
		TxContext{GasPrice: big.NewInt(2_000_000_000)},
		world,
		big.NewInt(1),
		rules,
		Config{},
	)
	return evm, world
}

var cancunRules = ForkRules{
	IsHomestead: true, IsEIP150: true, IsEIP158: true, IsByzantium: true,
	IsConstantinople: true, IsPetersburg: true, IsIstanbul: true, IsBerlin: true,
	IsLondon: true, IsMerge: true, IsShanghai: true, IsCancun: true,
}

// TestAddAndReturn exercises the simplest possible program: push two words,
// add them, return the 32-byte result, and checks the resulting gas spend
// against the jump table's own constants (GasFastestStep for ADD plus two
// PUSH1 at GasFastestStep each, GasZero for RETURN's own constant gas, plus
// the one-word memory expansion MSTORE forces).
func TestAddAndReturn(t *testing.T) {
	evm, world := newIntegrationEVM(cancunRules)
	caller := types.BytesToAddress([]byte{0x01})
	contract := types.BytesToAddress([]byte{0xaa})
	world.CreateAccount(caller)
	world.CreateAccount(contract)

	code := []byte{
		byte(PUSH1), 0x02,
		byte(PUSH1), 0x03,
		byte(ADD),
		byte(PUSH1), 0x00,
		byte(MSTORE),
		byte(PUSH1), 0x20,
		byte(PUSH1), 0x00,
		byte(RETURN),
	}
	world.SetCode(contract, code)
	world.AddAddressToAccessList(contract)

	const initialGas = 100_000
	ret, gasLeft, err := evm.Call(caller, contract, nil, initialGas, big.NewInt(0))
	if err != nil {
		t.Fatalf("call failed: %v", err)
	}
	if len(ret) != 32 || ret[31] != 5 {
		t.Fatalf("return value = %x, want 5", ret)
	}

	gasUsed := initialGas - gasLeft
	wantGas := 2*GasFastestStep /* two PUSH1 */ + GasFastestStep /* ADD */ +
		GasFastestStep /* PUSH1 0 */ + GasFastestStep /* MSTORE const */ + memoryGasCost(32) +
		GasFastestStep + GasFastestStep /* PUSH1 0x20, PUSH1 0x00 */ + GasZero /* RETURN const, no extra expansion */
	if gasUsed != wantGas {
		t.Errorf("gas used = %d, want %d", gasUsed, wantGas)
	}
}

// TestSignedComparisonAtIntMin exercises SGT/SLT around uint256's
// representation of int256 min, where naive unsigned comparison would give
// the wrong answer.
func TestSignedComparisonAtIntMin(t *testing.T) {
	evm, world := newIntegrationEVM(cancunRules)
	caller := types.BytesToAddress([]byte{0x01})
	contract := types.BytesToAddress([]byte{0xaa})
	world.CreateAccount(caller)
	world.CreateAccount(contract)

	// INT256_MIN = 0x8000...0000. Any negative number (high bit set) is,
	// unsigned, "greater" than a small positive number, but signed it must
	// compare as smaller. SLT(INT256_MIN, 1) should be 1 (true).
	intMin := make([]byte, 32)
	intMin[0] = 0x80

	// SLT computes a < b where a is the top of stack (pushed last): push b=1
	// first, then a=INT256_MIN on top, so SLT evaluates INT256_MIN < 1.
	code := []byte{byte(PUSH1), 0x01, byte(PUSH32)}
	code = append(code, intMin...)
	code = append(code,
		byte(SLT),
		byte(PUSH1), 0x00,
		byte(MSTORE),
		byte(PUSH1), 0x20,
		byte(PUSH1), 0x00,
		byte(RETURN),
	)
	world.SetCode(contract, code)
	world.AddAddressToAccessList(contract)

	ret, _, err := evm.Call(caller, contract, nil, 100_000, big.NewInt(0))
	if err != nil {
		t.Fatalf("call failed: %v", err)
	}
	if ret[31] != 1 {
		t.Errorf("SLT(INT256_MIN, 1) = %d, want 1 (INT256_MIN is signed-less-than 1)", ret[31])
	}
}

// TestDivisionByZeroNoFault checks the EVM convention that DIV/MOD by zero
// return zero rather than faulting, unlike ordinary machine division.
func TestDivisionByZeroNoFault(t *testing.T) {
	evm, world := newIntegrationEVM(cancunRules)
	caller := types.BytesToAddress([]byte{0x01})
	contract := types.BytesToAddress([]byte{0xaa})
	world.CreateAccount(caller)
	world.CreateAccount(contract)

	code := []byte{
		byte(PUSH1), 0x00, // divisor
		byte(PUSH1), 0x0a, // dividend
		byte(DIV),
		byte(PUSH1), 0x00,
		byte(MSTORE),
		byte(PUSH1), 0x20,
		byte(PUSH1), 0x00,
		byte(RETURN),
	}
	world.SetCode(contract, code)
	world.AddAddressToAccessList(contract)

	ret, _, err := evm.Call(caller, contract, nil, 100_000, big.NewInt(0))
	if err != nil {
		t.Fatalf("call faulted on division by zero: %v", err)
	}
	for _, b := range ret {
		if b != 0 {
			t.Fatalf("10 / 0 = %x, want all-zero", ret)
		}
	}
}

// TestStaticCallRejectsWrite verifies SSTORE inside a STATICCALL fails with
// ErrWriteProtection and never reaches the world state.
func TestStaticCallRejectsWrite(t *testing.T) {
	evm, world := newIntegrationEVM(cancunRules)
	caller := types.BytesToAddress([]byte{0x01})
	contract := types.BytesToAddress([]byte{0xaa})
	world.CreateAccount(caller)
	world.CreateAccount(contract)

	code := []byte{
		byte(PUSH1), 0x42,
		byte(PUSH1), 0x00,
		byte(SSTORE),
		byte(STOP),
	}
	world.SetCode(contract, code)
	world.AddAddressToAccessList(contract)

	_, _, err := evm.StaticCall(caller, contract, nil, 100_000)
	if !errors.Is(err, ErrWriteProtection) {
		t.Errorf("STATICCALL + SSTORE: err = %v, want ErrWriteProtection", err)
	}
	if v := world.GetState(contract, types.Hash{}); v != (types.Hash{}) {
		t.Errorf("SSTORE leaked through STATICCALL: slot 0 = %x", v)
	}
}

// TestNestedSstoreRevertRollsBack mirrors spec's nested-SSTORE revert
// scenario: an inner call writes a slot then reverts, and the parent's
// pre-existing slot value must survive while the inner write vanishes.
func TestNestedSstoreRevertRollsBack(t *testing.T) {
	evm, world := newIntegrationEVM(cancunRules)
	caller := types.BytesToAddress([]byte{0x01})
	parent := types.BytesToAddress([]byte{0xaa})
	child := types.BytesToAddress([]byte{0xbb})
	world.CreateAccount(caller)
	world.CreateAccount(parent)
	world.CreateAccount(child)
	world.SetState(parent, types.BytesToHash([]byte{0x00}), types.BytesToHash([]byte{0x08}))

	// Child: SSTORE(0, 99), then REVERT.
	childCode := []byte{
		byte(PUSH1), 0x63,
		byte(PUSH1), 0x00,
		byte(SSTORE),
		byte(PUSH1), 0x00,
		byte(PUSH1), 0x00,
		byte(REVERT),
	}
	world.SetCode(child, childCode)
	world.AddAddressToAccessList(child)

	// Parent: CALL child (ignore result), then STOP without touching slot 0
	// again, so its pre-existing value of 8 must remain.
	parentCode := []byte{
		byte(PUSH1), 0x00, byte(PUSH1), 0x00, byte(PUSH1), 0x00, byte(PUSH1), 0x00, byte(PUSH1), 0x00,
		byte(PUSH20),
	}
	parentCode = append(parentCode, child[:]...)
	parentCode = append(parentCode, byte(GAS), byte(CALL), byte(POP), byte(STOP))
	world.SetCode(parent, parentCode)
	world.AddAddressToAccessList(parent)

	_, _, err := evm.Call(caller, parent, nil, 1_000_000, big.NewInt(0))
	if err != nil {
		t.Fatalf("call failed: %v", err)
	}

	val := world.GetState(parent, types.BytesToHash([]byte{0x00}))
	if val[31] != 8 {
		t.Errorf("parent slot 0 = %d after child revert, want 8 (unchanged)", val[31])
	}
	childVal := world.GetState(child, types.BytesToHash([]byte{0x00}))
	if childVal != (types.Hash{}) {
		t.Errorf("child slot 0 = %x, want zero (write reverted)", childVal)
	}
}

// TestTransientStorageRevertSemantics checks EIP-1153's two scopes: a TSTORE
// is journaled like any other state change, so the REVERT of the frame that
// wrote it rolls it back, and transient storage is also cleared at the
// transaction boundary by EVM.Finalize.
func TestTransientStorageRevertSemantics(t *testing.T) {
	evm, world := newIntegrationEVM(cancunRules)
	caller := types.BytesToAddress([]byte{0x01})
	contract := types.BytesToAddress([]byte{0xaa})
	world.CreateAccount(caller)
	world.CreateAccount(contract)

	// TSTORE(1, 0xaa) then REVERT.
	code := []byte{
		byte(PUSH1), 0xaa,
		byte(PUSH1), 0x01,
		byte(TSTORE),
		byte(PUSH1), 0x00,
		byte(PUSH1), 0x00,
		byte(REVERT),
	}
	world.SetCode(contract, code)
	world.AddAddressToAccessList(contract)

	_, _, err := evm.Call(caller, contract, nil, 100_000, big.NewInt(0))
	if !errors.Is(err, ErrExecutionReverted) {
		t.Fatalf("expected ErrExecutionReverted, got %v", err)
	}

	// SetTransientState records a journal entry, so reverting the frame's
	// snapshot undoes the TSTORE that preceded the REVERT.
	got := world.GetTransientState(contract, types.BytesToHash([]byte{0x01}))
	if got != (types.Hash{}) {
		t.Errorf("transient slot after revert = %x, want zero (the TSTORE is rolled back with the frame)", got)
	}

	evm.Finalize()
	cleared := world.GetTransientState(contract, types.BytesToHash([]byte{0x01}))
	if cleared != (types.Hash{}) {
		t.Errorf("transient slot after Finalize = %x, want zero", cleared)
	}
}

// TestCreate2AddressDeterministic checks EIP-1014's address derivation is a
// pure function of sender, salt and init code hash.
func TestCreate2AddressDeterministic(t *testing.T) {
	caller := types.BytesToAddress([]byte{0x01})
	initCode := []byte{byte(PUSH1), 0x00, byte(PUSH1), 0x00, byte(RETURN)}
	salt := newWordFromBig(big.NewInt(42))
	hash := crypto.Keccak256(initCode)

	addr1 := create2Address(caller, salt, hash)
	addr2 := create2Address(caller, salt, hash)
	if addr1 != addr2 {
		t.Error("CREATE2 address derivation is not deterministic")
	}

	otherSalt := newWordFromBig(big.NewInt(43))
	addr3 := create2Address(caller, otherSalt, hash)
	if addr1 == addr3 {
		t.Error("different salts produced the same CREATE2 address")
	}
}

// TestOutOfGasOnMemoryExpansion checks that a program requesting memory
// larger than its gas budget allows fails with ErrOutOfGas rather than
// silently truncating or panicking.
func TestOutOfGasOnMemoryExpansion(t *testing.T) {
	evm, world := newIntegrationEVM(cancunRules)
	caller := types.BytesToAddress([]byte{0x01})
	contract := types.BytesToAddress([]byte{0xaa})
	world.CreateAccount(caller)
	world.CreateAccount(contract)

	// MLOAD at a huge offset forces a huge memory expansion.
	code := []byte{
		byte(PUSH4), 0x7f, 0xff, 0xff, 0xff,
		byte(MLOAD),
		byte(STOP),
	}
	world.SetCode(contract, code)
	world.AddAddressToAccessList(contract)

	_, _, err := evm.Call(caller, contract, nil, 100_000, big.NewInt(0))
	if !errors.Is(err, ErrOutOfGas) {
		t.Errorf("huge memory expansion: err = %v, want ErrOutOfGas", err)
	}
}

// TestDelegateCallPreservesStorageContext checks DELEGATECALL writes land in
// the caller's own storage, not the callee's.
func TestDelegateCallPreservesStorageContext(t *testing.T) {
	evm, world := newIntegrationEVM(cancunRules)
	caller := types.BytesToAddress([]byte{0x01})
	lib := types.BytesToAddress([]byte{0xbb})
	world.CreateAccount(caller)
	world.CreateAccount(lib)

	libCode := []byte{
		byte(PUSH1), 0x42,
		byte(PUSH1), 0x00,
		byte(SSTORE),
		byte(STOP),
	}
	world.SetCode(lib, libCode)
	world.AddAddressToAccessList(lib)

	// Top-level caller code: DELEGATECALL(gas, lib, 0, 0, 0, 0), STOP.
	code := []byte{
		byte(PUSH1), 0x00, byte(PUSH1), 0x00, byte(PUSH1), 0x00, byte(PUSH1), 0x00,
		byte(PUSH20),
	}
	code = append(code, lib[:]...)
	code = append(code, byte(GAS), byte(DELEGATECALL), byte(POP), byte(STOP))
	caller2 := types.BytesToAddress([]byte{0xcc})
	world.CreateAccount(caller2)
	world.SetCode(caller2, code)
	world.AddAddressToAccessList(caller2)

	_, _, err := evm.Call(caller, caller2, nil, 1_000_000, big.NewInt(0))
	if err != nil {
		t.Fatalf("call failed: %v", err)
	}

	gotCaller := world.GetState(caller2, types.BytesToHash([]byte{0x00}))
	if gotCaller[31] != 0x42 {
		t.Errorf("DELEGATECALL wrote to wrong storage: caller2 slot 0 = %x, want 0x42", gotCaller)
	}
	gotLib := world.GetState(lib, types.BytesToHash([]byte{0x00}))
	if gotLib != (types.Hash{}) {
		t.Errorf("DELEGATECALL wrote to library's own storage: %x, want zero", gotLib)
	}
}
