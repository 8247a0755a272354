package vm

import (
	"bytes"
	"crypto/sha256"
	"testing"

	"github.com/ethforge/corevm/types"
)

func TestSelectPrecompilesBaseFive(t *testing.T) {
	p := SelectPrecompiles(ForkRules{})
	for i := byte(1); i <= 5; i++ {
		if _, ok := p[precompileAddr(i)]; !ok {
			t.Errorf("precompile 0x%02x missing under Frontier rules", i)
		}
	}
	if len(p) != 5 {
		t.Errorf("Frontier precompile set size = %d, want 5", len(p))
	}
}

func TestSelectPrecompilesIstanbulAddsBlake2fAndRepricesBn256(t *testing.T) {
	p := SelectPrecompiles(ForkRules{IsIstanbul: true})
	if _, ok := p[precompileAddr(9)]; !ok {
		t.Error("blake2f (0x09) should be present from Istanbul onward")
	}
	add := p[precompileAddr(6)].(*bn256AddContract)
	if add.gas != 150 {
		t.Errorf("Istanbul bn256Add gas = %d, want 150 (EIP-1108 repricing)", add.gas)
	}
}

func TestSelectPrecompilesByzantiumBn256Pricing(t *testing.T) {
	p := SelectPrecompiles(ForkRules{IsByzantium: true})
	add := p[precompileAddr(6)].(*bn256AddContract)
	if add.gas != 500 {
		t.Errorf("pre-Istanbul bn256Add gas = %d, want 500", add.gas)
	}
	if _, ok := p[precompileAddr(9)]; ok {
		t.Error("blake2f must not be present before Istanbul")
	}
}

func TestSelectPrecompilesCancunAddsKZG(t *testing.T) {
	p := SelectPrecompiles(ForkRules{IsCancun: true})
	if _, ok := p[precompileAddr(0x0a)]; !ok {
		t.Error("KZG point evaluation (0x0a) should be present from Cancun onward")
	}
}

func TestSelectPrecompilesPragueAddsBLS(t *testing.T) {
	p := SelectPrecompiles(ForkRules{IsPrague: true})
	for _, b := range []byte{0x0b, 0x0c, 0x0d, 0x0e, 0x0f, 0x10, 0x11} {
		if _, ok := p[precompileAddr(b)]; !ok {
			t.Errorf("BLS precompile 0x%02x missing under Prague rules", b)
		}
	}
}

func TestModExpBerlinRepricing(t *testing.T) {
	c := &bigModExpContract{eip2565: true}
	old := &bigModExpContract{eip2565: false}

	// base=1 byte, exp=1 byte, mod=8 bytes; exponent value 2 (adjExpLen=1).
	input := make([]byte, 96+1+1+8)
	big32 := func(v uint64) []byte {
		b := make([]byte, 32)
		b[31] = byte(v)
		return b
	}
	copy(input[0:32], big32(1))
	copy(input[32:64], big32(1))
	copy(input[64:96], big32(8))
	input[96] = 3    // base
	input[97] = 2    // exponent
	input[98+7] = 1  // modulus low byte

	if c.RequiredGas(input) == 0 {
		t.Error("EIP-2565 modexp gas should never be zero for nonempty input")
	}
	if old.RequiredGas(input) == 0 {
		t.Error("pre-Berlin modexp gas should never be zero for nonempty input")
	}
}

func TestModExpZeroModulusReturnsZeroes(t *testing.T) {
	c := &bigModExpContract{eip2565: true}
	input := make([]byte, 96+1+1+1)
	input[31] = 1 // baseLen = 1
	input[63] = 1 // expLen = 1
	input[95] = 1 // modLen = 1
	input[96] = 5 // base
	input[97] = 2 // exponent
	input[98] = 0 // modulus = 0

	out, err := c.Run(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(out, []byte{0}) {
		t.Errorf("modexp with zero modulus = %x, want [0]", out)
	}
}

func TestSha256Precompile(t *testing.T) {
	c := &sha256hashContract{}
	input := []byte("ethereum")
	out, err := c.Run(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := sha256.Sum256(input)
	if !bytes.Equal(out, want[:]) {
		t.Errorf("sha256 precompile output mismatch")
	}
	if c.RequiredGas(input) != 60+12 {
		t.Errorf("sha256 gas for 1 word = %d, want %d", c.RequiredGas(input), 60+12)
	}
}

func TestIdentityPrecompile(t *testing.T) {
	c := &identityContract{}
	input := []byte{1, 2, 3, 4, 5}
	out, err := c.Run(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(out, input) {
		t.Errorf("identity precompile output = %x, want %x", out, input)
	}
	out[0] = 0xff
	if input[0] == 0xff {
		t.Error("identity precompile must return a copy, not the input slice itself")
	}
}

func TestEcrecoverRejectsMalformedV(t *testing.T) {
	c := &ecrecoverContract{}
	input := make([]byte, 128)
	input[63] = 29 // v must be 27 or 28
	out, err := c.Run(input)
	if err != nil {
		t.Fatalf("ecrecover should fail soft (nil, nil), not hard-error: %v", err)
	}
	if out != nil {
		t.Errorf("ecrecover with invalid v should return nil, got %x", out)
	}
}

func TestPrecompileAddrMatchesTypesAddress(t *testing.T) {
	got := precompileAddr(4)
	want := types.BytesToAddress([]byte{4})
	if got != want {
		t.Errorf("precompileAddr(4) = %x, want %x", got, want)
	}
}
