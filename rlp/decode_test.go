package rlp

import (
	"errors"
	"math/big"
	"testing"
)

func TestDecodeString(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  string
	}{
		{"empty string", []byte{0x80}, ""},
		{"single char 'a'", []byte{0x61}, "a"},
		{"dog", []byte{0x83, 0x64, 0x6f, 0x67}, "dog"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			if err := DecodeBytes(tt.input, &got); err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeUint64(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  uint64
	}{
		{"uint(0)", []byte{0x80}, 0},
		{"uint(1)", []byte{0x01}, 1},
		{"uint(127)", []byte{0x7f}, 127},
		{"uint(128)", []byte{0x81, 0x80}, 128},
		{"uint(1024)", []byte{0x82, 0x04, 0x00}, 1024},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got uint64
			if err := DecodeBytes(tt.input, &got); err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Fatalf("got %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDecodeBigInt(t *testing.T) {
	var got big.Int
	if err := DecodeBytes([]byte{0x82, 0x04, 0x00}, &got); err != nil {
		t.Fatal(err)
	}
	if got.Cmp(big.NewInt(1024)) != 0 {
		t.Fatalf("got %s, want 1024", got.String())
	}
}

func TestDecodeListOfStrings(t *testing.T) {
	input := []byte{0xc8, 0x83, 'c', 'a', 't', 0x83, 'd', 'o', 'g'}
	var got []string
	if err := DecodeBytes(input, &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0] != "cat" || got[1] != "dog" {
		t.Fatalf("got %v, want [cat dog]", got)
	}
}

func TestDecodeStructRoundTrip(t *testing.T) {
	type pair struct {
		A uint64
		B string
	}
	encoded, err := EncodeToBytes(pair{A: 7, B: "hi"})
	if err != nil {
		t.Fatal(err)
	}
	var decoded pair
	if err := DecodeBytes(encoded, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.A != 7 || decoded.B != "hi" {
		t.Fatalf("got %+v, want {7 hi}", decoded)
	}
}

func TestDecodeNonCanonicalSizeRejected(t *testing.T) {
	// A long-string header (0xb8) declaring a size of 5, which should have
	// used the short-string form (0x80+5) instead.
	input := []byte{0xb8, 0x05, 1, 2, 3, 4, 5}
	var got []byte
	err := DecodeBytes(input, &got)
	if !errors.Is(err, ErrNonCanonicalSize) {
		t.Fatalf("err = %v, want ErrNonCanonicalSize", err)
	}
}

func TestDecodeCanonicalIntLeadingZeroRejected(t *testing.T) {
	// A two-byte string payload with a leading zero byte is a non-canonical
	// integer encoding.
	input := []byte{0x82, 0x00, 0x01}
	var got uint64
	err := DecodeBytes(input, &got)
	if !errors.Is(err, ErrCanonInt) {
		t.Fatalf("err = %v, want ErrCanonInt", err)
	}
}

func TestDecodeUint64OverflowRejected(t *testing.T) {
	input := []byte{0x89, 1, 2, 3, 4, 5, 6, 7, 8, 9} // 9-byte string, too wide for uint64
	var got uint64
	err := DecodeBytes(input, &got)
	if !errors.Is(err, ErrUint64Range) {
		t.Fatalf("err = %v, want ErrUint64Range", err)
	}
}

func TestStreamListAndListEnd(t *testing.T) {
	input := []byte{0xc8, 0x83, 'c', 'a', 't', 0x83, 'd', 'o', 'g'}
	s := newByteStream(input)
	size, err := s.List()
	if err != nil {
		t.Fatal(err)
	}
	if size != 8 {
		t.Fatalf("List() size = %d, want 8", size)
	}
	first, err := s.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != "cat" {
		t.Fatalf("first = %q, want cat", first)
	}
	second, err := s.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	if string(second) != "dog" {
		t.Fatalf("second = %q, want dog", second)
	}
	if err := s.ListEnd(); err != nil {
		t.Fatalf("ListEnd: %v", err)
	}
}

func TestStreamListEndFailsOnPartialRead(t *testing.T) {
	input := []byte{0xc8, 0x83, 'c', 'a', 't', 0x83, 'd', 'o', 'g'}
	s := newByteStream(input)
	if _, err := s.List(); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Bytes(); err != nil {
		t.Fatal(err)
	}
	if err := s.ListEnd(); !errors.Is(err, ErrEOL) {
		t.Fatalf("ListEnd after partial read = %v, want ErrEOL", err)
	}
}
