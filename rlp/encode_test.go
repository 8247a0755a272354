package rlp

import (
	"bytes"
	"math/big"
	"testing"
)

func TestEncodeString(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []byte
	}{
		{"empty string", "", []byte{0x80}},
		{"single char 'a'", "a", []byte{0x61}},
		{"dog", "dog", []byte{0x83, 0x64, 0x6f, 0x67}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeToBytes(tt.input)
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Fatalf("got %x, want %x", got, tt.want)
			}
		})
	}
}

func TestEncodeUint(t *testing.T) {
	tests := []struct {
		name  string
		input uint64
		want  []byte
	}{
		{"uint(0)", 0, []byte{0x80}},
		{"uint(1)", 1, []byte{0x01}},
		{"uint(127)", 127, []byte{0x7f}},
		{"uint(128)", 128, []byte{0x81, 0x80}},
		{"uint(1024)", 1024, []byte{0x82, 0x04, 0x00}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EncodeToBytes(tt.input)
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(got, tt.want) {
				t.Fatalf("got %x, want %x", got, tt.want)
			}
		})
	}
}

func TestEncodeBigInt(t *testing.T) {
	got, err := EncodeToBytes(big.NewInt(0))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, []byte{0x80}) {
		t.Fatalf("zero big.Int = %x, want 80", got)
	}

	got, err = EncodeToBytes(big.NewInt(1024))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, []byte{0x82, 0x04, 0x00}) {
		t.Fatalf("big.Int(1024) = %x, want 8204 00", got)
	}
}

func TestEncodeLongString(t *testing.T) {
	data := bytes.Repeat([]byte{'x'}, 56)
	got, err := EncodeToBytes(string(data))
	if err != nil {
		t.Fatal(err)
	}
	// 56 bytes needs the long-string form: 0xb7+1 length-of-length byte.
	if got[0] != 0xb8 || got[1] != 56 {
		t.Fatalf("long string header = %x, want b8 38 ...", got[:2])
	}
}

func TestEncodeEmptyList(t *testing.T) {
	got, err := EncodeToBytes([]uint64{})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, []byte{0xc0}) {
		t.Fatalf("empty list = %x, want c0", got)
	}
}

func TestEncodeListOfStrings(t *testing.T) {
	// The canonical RLP spec example: ["cat", "dog"].
	got, err := EncodeToBytes([]string{"cat", "dog"})
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0xc8, 0x83, 'c', 'a', 't', 0x83, 'd', 'o', 'g'}
	if !bytes.Equal(got, want) {
		t.Fatalf("got %x, want %x", got, want)
	}
}

func TestEncodeStructSkipsUnexportedFields(t *testing.T) {
	type pair struct {
		A uint64
		b uint64 // unexported: must be skipped
	}
	got, err := EncodeToBytes(pair{A: 1, b: 2})
	if err != nil {
		t.Fatal(err)
	}
	// Only field A is encoded, so the list payload is a single byte (0x01).
	want := []byte{0xc1, 0x01}
	if !bytes.Equal(got, want) {
		t.Fatalf("got %x, want %x", got, want)
	}
}

func TestEncodeNilPointerIsEmptyString(t *testing.T) {
	var p *big.Int
	got, err := EncodeToBytes(p)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, []byte{0x80}) {
		t.Fatalf("nil pointer = %x, want 80", got)
	}
}

func TestWrapListLongPayload(t *testing.T) {
	payload := bytes.Repeat([]byte{0x01}, 56)
	got := WrapList(payload)
	if got[0] != 0xf8 || got[1] != 56 {
		t.Fatalf("long list header = %x, want f8 38 ...", got[:2])
	}
}
