package main

import (
	"math/big"

	"github.com/ethforge/corevm/core/vm"
	"github.com/ethforge/corevm/types"
)

// env is the env.json input (spec §6): the block context a batch of
// transactions executes against, plus the chain id. The fork is chosen by
// the --state.fork flag rather than read from env.json, and no other
// configuration keys are read.
type env struct {
	CurrentCoinbase   types.Address `json:"currentCoinbase"`
	CurrentGasLimit   hexUint64     `json:"currentGasLimit"`
	CurrentNumber     hexUint64     `json:"currentNumber"`
	CurrentTimestamp  hexUint64     `json:"currentTimestamp"`
	CurrentDifficulty *hexBig       `json:"currentDifficulty,omitempty"`
	CurrentRandom     *types.Hash   `json:"currentRandom,omitempty"`
	CurrentBaseFee    *hexBig       `json:"currentBaseFee,omitempty"`
	CurrentBlobBaseFee *hexBig      `json:"currentBlobBaseFee,omitempty"`
	ChainID           hexUint64     `json:"chainId"`
	BlockHashes       map[hexUint64]types.Hash `json:"blockHashes,omitempty"`
}

func (e *env) blockContext() vm.BlockContext {
	hashes := e.BlockHashes
	bc := vm.BlockContext{
		GetHash: func(n uint64) types.Hash {
			if hashes == nil {
				return types.Hash{}
			}
			return hashes[hexUint64(n)]
		},
		Coinbase:    e.CurrentCoinbase,
		GasLimit:    uint64(e.CurrentGasLimit),
		BlockNumber: new(big.Int).SetUint64(uint64(e.CurrentNumber)),
		Time:        uint64(e.CurrentTimestamp),
		Difficulty:  new(big.Int),
	}
	if e.CurrentDifficulty != nil {
		bc.Difficulty = (*big.Int)(e.CurrentDifficulty)
	}
	if e.CurrentRandom != nil {
		bc.Random = e.CurrentRandom
	}
	if e.CurrentBaseFee != nil {
		bc.BaseFee = (*big.Int)(e.CurrentBaseFee)
	}
	if e.CurrentBlobBaseFee != nil {
		bc.BlobBaseFee = (*big.Int)(e.CurrentBlobBaseFee)
	}
	return bc
}
