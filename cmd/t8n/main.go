// Command t8n is the reference "apply a batch of transactions to a
// pre-state" CLI named in spec §6: non-normative for the EVM core itself,
// but the shape go-ethereum's own `evm t8n` sub-command uses, so this tool
// accepts the same env.json/alloc.json/txs.json triple and emits the same
// result.json/alloc.json/body.json shape.
package main

import (
	"encoding/json"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/urfave/cli/v2"

	"github.com/ethforge/corevm/core/vm"
	"github.com/ethforge/corevm/rlp"
	"github.com/ethforge/corevm/types"
)

func main() {
	app := &cli.App{
		Name:  "t8n",
		Usage: "apply a batch of transactions to a pre-state world and report the post-state",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "input.alloc", Value: "alloc.json"},
			&cli.StringFlag{Name: "input.env", Value: "env.json"},
			&cli.StringFlag{Name: "input.txs", Value: "txs.json"},
			&cli.StringFlag{Name: "output.result", Value: "result.json"},
			&cli.StringFlag{Name: "output.alloc", Value: "alloc.json"},
			&cli.StringFlag{Name: "output.body", Value: ""},
			&cli.StringFlag{Name: "state.fork", Value: "Prague"},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		_, _ = os.Stderr.WriteString(errors.Wrap(err, "t8n").Error() + "\n")
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	var a alloc
	if err := readJSON(c.String("input.alloc"), &a); err != nil {
		return errors.Wrap(err, "reading alloc")
	}
	var e env
	if err := readJSON(c.String("input.env"), &e); err != nil {
		return errors.Wrap(err, "reading env")
	}
	var txs []txInfo
	if err := readJSON(c.String("input.txs"), &txs); err != nil {
		return errors.Wrap(err, "reading txs")
	}

	rules, err := vm.RulesForFork(c.String("state.fork"))
	if err != nil {
		return errors.Wrap(err, "resolving fork")
	}

	world := loadAlloc(a)
	bctx := e.blockContext()

	receipts, touched, err := applyTransactions(world, bctx, rules, uint64(e.ChainID), txs)
	if err != nil {
		return errors.Wrap(err, "applying transactions")
	}

	var totalGas uint64
	for _, r := range receipts {
		totalGas += uint64(r.GasUsed)
	}

	res := result{GasUsed: hexUint64(totalGas), Receipts: receipts}
	if err := writeJSON(c.String("output.result"), res); err != nil {
		return errors.Wrap(err, "writing result")
	}

	storageKeys := make(map[types.Address][]types.Hash, len(a))
	addrs := append([]types.Address(nil), touched...)
	for addr, acc := range a {
		addrs = append(addrs, addr)
		for k := range acc.Storage {
			storageKeys[addr] = append(storageKeys[addr], k)
		}
	}
	out := dumpAlloc(world, addrs, storageKeys)
	if err := writeJSON(c.String("output.alloc"), out); err != nil {
		return errors.Wrap(err, "writing alloc")
	}

	if body := c.String("output.body"); body != "" {
		encoded, err := rlp.EncodeToBytes(toRLPList(txs))
		if err != nil {
			return errors.Wrap(err, "rlp-encoding body")
		}
		if err := os.WriteFile(body, []byte(hexBytes(encoded).mustText()), 0o644); err != nil {
			return errors.Wrap(err, "writing body")
		}
	}
	return nil
}

// toRLPList converts txs to the nested-list shape the module's reflective
// RLP encoder accepts: one list per transaction, legacy-transaction field
// order (nonce, gasPrice, gasLimit, to, value, data).
func toRLPList(txs []txInfo) []interface{} {
	out := make([]interface{}, len(txs))
	for i, tx := range txs {
		to := []byte{}
		if tx.To != nil {
			to = tx.To[:]
		}
		out[i] = []interface{}{
			uint64(tx.Nonce), tx.gasPrice(), uint64(tx.GasLimit), to, tx.value(), []byte(tx.Input),
		}
	}
	return out
}

func (h hexBytes) mustText() string {
	text, _ := h.MarshalText()
	return string(text)
}

func readJSON(path string, v interface{}) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewDecoder(f).Decode(v)
}

func writeJSON(path string, v interface{}) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
