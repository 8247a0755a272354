package main

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// hexUint64, hexBig and hexBytes round-trip the 0x-prefixed hex encodings
// go-ethereum's own `evm t8n` env/alloc/txs JSON uses for integers and
// byte strings, so this tool's input/output files are drop-in compatible
// with that format rather than inventing a new one.

type hexUint64 uint64

func (h hexUint64) MarshalText() ([]byte, error) {
	return []byte(fmt.Sprintf("0x%x", uint64(h))), nil
}

func (h *hexUint64) UnmarshalText(text []byte) error {
	s := strings.TrimPrefix(string(text), "0x")
	if s == "" {
		s = "0"
	}
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return fmt.Errorf("hex uint64 %q: %w", text, err)
	}
	*h = hexUint64(v)
	return nil
}

type hexBig big.Int

func (h *hexBig) MarshalText() ([]byte, error) {
	if h == nil {
		return []byte("0x0"), nil
	}
	return []byte("0x" + (*big.Int)(h).Text(16)), nil
}

func (h *hexBig) UnmarshalText(text []byte) error {
	s := strings.TrimPrefix(string(text), "0x")
	if s == "" {
		s = "0"
	}
	v, ok := new(big.Int).SetString(s, 16)
	if !ok {
		return fmt.Errorf("hex big.Int %q: invalid", text)
	}
	*(*big.Int)(h) = *v
	return nil
}

type hexBytes []byte

func (h hexBytes) MarshalText() ([]byte, error) {
	return []byte("0x" + hex.EncodeToString(h)), nil
}

func (h *hexBytes) UnmarshalText(text []byte) error {
	s := strings.TrimPrefix(string(text), "0x")
	if len(s)%2 == 1 {
		s = "0" + s
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("hex bytes %q: %w", text, err)
	}
	*h = b
	return nil
}
