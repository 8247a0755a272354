// Package types defines the wire-level identifiers shared by the EVM core:
// addresses, hashes, accounts, logs and access lists. It intentionally knows
// nothing about trie commitment or RLP block/transaction structure — those
// are external collaborators per the core's scope.
package types

import (
	"encoding/hex"
	"fmt"
	"math/big"
)

const (
	HashLength    = 32
	AddressLength = 20
	BloomLength   = 256
)

// Hash represents the 32-byte Keccak256 hash of data.
type Hash [HashLength]byte

// Address represents the 20-byte address of an Ethereum account.
type Address [AddressLength]byte

// Bloom represents a 2048-bit bloom filter over log addresses and topics.
type Bloom [BloomLength]byte

// BytesToHash converts bytes to Hash, left-padding if shorter than 32 bytes.
func BytesToHash(b []byte) Hash {
	var h Hash
	h.SetBytes(b)
	return h
}

// HexToHash converts a hex string to Hash.
func HexToHash(s string) Hash {
	return BytesToHash(fromHex(s))
}

// IntToHash converts a uint64 to a Hash (big-endian, left-padded).
func IntToHash(v uint64) Hash {
	return BytesToHash(new(big.Int).SetUint64(v).Bytes())
}

func (h Hash) Bytes() []byte { return h[:] }
func (h Hash) Hex() string   { return fmt.Sprintf("0x%x", h[:]) }
func (h Hash) String() string { return h.Hex() }
func (h Hash) IsZero() bool  { return h == Hash{} }

// MarshalText renders h as a 0x-prefixed hex string, letting Hash serve
// directly as a JSON object value or, since encoding/json consults
// TextMarshaler for map keys, as a JSON object key (e.g. alloc storage
// maps keyed by slot).
func (h Hash) MarshalText() ([]byte, error) {
	return []byte(h.Hex()), nil
}

// UnmarshalText parses a 0x-prefixed (or bare) hex string into h.
func (h *Hash) UnmarshalText(text []byte) error {
	h.SetBytes(fromHex(string(text)))
	return nil
}

// SetBytes sets the hash from a byte slice, left-padding if necessary.
func (h *Hash) SetBytes(b []byte) {
	if len(b) > HashLength {
		b = b[len(b)-HashLength:]
	}
	copy(h[HashLength-len(b):], b)
}

// BytesToAddress converts bytes to Address, left-padding if shorter than 20 bytes.
func BytesToAddress(b []byte) Address {
	var a Address
	a.SetBytes(b)
	return a
}

// HexToAddress converts a hex string to Address.
func HexToAddress(s string) Address {
	return BytesToAddress(fromHex(s))
}

func (a Address) Bytes() []byte  { return a[:] }
func (a Address) Hex() string    { return fmt.Sprintf("0x%x", a[:]) }
func (a Address) String() string { return a.Hex() }
func (a Address) IsZero() bool   { return a == Address{} }

// MarshalText renders a as a 0x-prefixed hex string, letting Address serve
// directly as a JSON object value or JSON object key (e.g. alloc.json's
// address-keyed account map).
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.Hex()), nil
}

// UnmarshalText parses a 0x-prefixed (or bare) hex string into a.
func (a *Address) UnmarshalText(text []byte) error {
	a.SetBytes(fromHex(string(text)))
	return nil
}

// SetBytes sets the address from a byte slice, left-padding if necessary.
func (a *Address) SetBytes(b []byte) {
	if len(b) > AddressLength {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
}

// Account is the abstract per-address state named in spec §3: nonce,
// balance, code identity and the two storage maps (persisted and
// transient). Storage and transient storage live in core/state, keyed by
// address, rather than embedded here, so that journaling can diff them
// independently of account metadata.
type Account struct {
	Nonce    uint64
	Balance  *big.Int
	CodeHash Hash
}

// NewAccount returns a freshly created, empty account (zero balance, zero
// nonce, empty code hash) — the state of an address the first time it is
// touched.
func NewAccount() Account {
	return Account{Balance: new(big.Int), CodeHash: EmptyCodeHash}
}

// Empty reports whether the account meets the EIP-161 emptiness test:
// nonce=0, balance=0, and no code.
func (a Account) Empty() bool {
	return a.Nonce == 0 && a.Balance.Sign() == 0 && (a.CodeHash == Hash{} || a.CodeHash == EmptyCodeHash)
}

var (
	// EmptyCodeHash is keccak256(""), the code hash of an externally owned
	// account or a contract with no code.
	EmptyCodeHash = HexToHash("c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470")
)

// Log represents a contract log event emitted by LOG0..LOG4.
type Log struct {
	Address Address
	Topics  []Hash
	Data    []byte

	// Execution-context fields filled in by the host once the log is
	// attached to a transaction/block; the interpreter itself only ever
	// sets Address, Topics and Data.
	BlockNumber uint64
	TxHash      Hash
	TxIndex     uint
	BlockHash   Hash
	Index       uint
	Removed     bool
}

// AccessTuple is one entry of an EIP-2930 access list: an address plus the
// storage keys within it that should be pre-warmed.
type AccessTuple struct {
	Address     Address `json:"address"`
	StorageKeys []Hash  `json:"storageKeys"`
}

// AccessList is the full pre-declared access list of a transaction.
type AccessList []AccessTuple

func fromHex(s string) []byte {
	if has0xPrefix(s) {
		s = s[2:]
	}
	if len(s)%2 == 1 {
		s = "0" + s
	}
	b, _ := hex.DecodeString(s)
	return b
}

func has0xPrefix(s string) bool {
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}
