package main

import (
	"math/big"

	"github.com/ethforge/corevm/types"
)

// txInfo is one entry of txs.json: a minimal, legacy-shaped transaction —
// full typed-transaction (2930/1559/4844) envelope decoding is out of
// scope for this reference CLI, which exists to exercise the EVM core, not
// to be a production transaction pool.
type txInfo struct {
	From       types.Address     `json:"from"`
	To         *types.Address    `json:"to,omitempty"`
	Nonce      hexUint64         `json:"nonce"`
	Value      *hexBig           `json:"value,omitempty"`
	GasLimit   hexUint64         `json:"gasLimit"`
	GasPrice   *hexBig           `json:"gasPrice,omitempty"`
	Input      hexBytes          `json:"input,omitempty"`
	AccessList types.AccessList  `json:"accessList,omitempty"`
}

// intrinsicGas computes the pre-execution gas charge for a transaction:
// the flat per-transaction base, the EIP-2028/Istanbul zero/nonzero
// calldata byte costs, a CREATE surcharge plus EIP-3860 init code word
// gas when To is nil, and the EIP-2930 access list surcharge.
func intrinsicGas(tx *txInfo, isIstanbul, isShanghai, isHomestead bool) uint64 {
	var gas uint64 = 21000
	if tx.To == nil {
		gas = 53000
		if isHomestead {
			gas = 53000
		} else {
			gas = 21000 + 32000
		}
	}

	zeroGas, nonZeroGas := uint64(4), uint64(68)
	if isIstanbul {
		nonZeroGas = 16
	}
	var zero, nonZero uint64
	for _, b := range tx.Input {
		if b == 0 {
			zero++
		} else {
			nonZero++
		}
	}
	gas += zero*zeroGas + nonZero*nonZeroGas

	if tx.To == nil && isShanghai {
		gas += ((uint64(len(tx.Input)) + 31) / 32) * 2
	}

	for _, tuple := range tx.AccessList {
		gas += 2400
		gas += uint64(len(tuple.StorageKeys)) * 1900
	}
	return gas
}

func (tx *txInfo) value() *big.Int {
	if tx.Value == nil {
		return new(big.Int)
	}
	return (*big.Int)(tx.Value)
}

func (tx *txInfo) gasPrice() *big.Int {
	if tx.GasPrice == nil {
		return new(big.Int)
	}
	return (*big.Int)(tx.GasPrice)
}
