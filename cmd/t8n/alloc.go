package main

import (
	"math/big"

	"github.com/ethforge/corevm/core/state"
	"github.com/ethforge/corevm/types"
)

// allocAccount is one entry of the alloc.json input/output (spec §6
// CLI boundary): the genesis/pre-state (or post-state, on output) of a
// single account, keyed by address in the surrounding map.
type allocAccount struct {
	Nonce   hexUint64             `json:"nonce"`
	Balance *hexBig               `json:"balance"`
	Code    hexBytes              `json:"code,omitempty"`
	Storage map[types.Hash]types.Hash `json:"storage,omitempty"`
}

type alloc map[types.Address]allocAccount

// loadAlloc seeds world with the accounts described by a, returning the
// world populated and ready for FinalizePreState so SSTORE gas accounting
// sees the seeded values as each slot's transaction-start original.
func loadAlloc(a alloc) *state.MemoryStateDB {
	world := state.NewMemoryStateDB()
	for addr, acc := range a {
		world.CreateAccount(addr)
		world.SetNonce(addr, uint64(acc.Nonce))
		if acc.Balance != nil {
			world.AddBalance(addr, (*big.Int)(acc.Balance))
		}
		if len(acc.Code) > 0 {
			world.SetCode(addr, acc.Code)
		}
		for k, v := range acc.Storage {
			world.SetState(addr, k, v)
		}
	}
	world.FinalizePreState()
	return world
}

// dumpAlloc reads back every account world knows about into the alloc.json
// output shape. MemoryStateDB does not track which addresses it has ever
// seen directly, so the caller must supply the universe of addresses to
// dump (every input alloc address plus every address touched by a
// transaction).
func dumpAlloc(world *state.MemoryStateDB, addrs []types.Address, storageKeys map[types.Address][]types.Hash) alloc {
	out := make(alloc)
	for _, addr := range addrs {
		if !world.Exist(addr) {
			continue
		}
		acc := allocAccount{
			Nonce:   hexUint64(world.GetNonce(addr)),
			Balance: (*hexBig)(world.GetBalance(addr)),
			Code:    world.GetCode(addr),
		}
		if keys := storageKeys[addr]; len(keys) > 0 {
			acc.Storage = make(map[types.Hash]types.Hash, len(keys))
			for _, k := range keys {
				if v := world.GetState(addr, k); !v.IsZero() {
					acc.Storage[k] = v
				}
			}
		}
		out[addr] = acc
	}
	return out
}
