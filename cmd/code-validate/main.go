// Command code-validate is the reference per-line bytecode validator named
// in spec §6: it reads hex-encoded bytecode, one contract per line, from
// stdin (or a file given as its sole argument) and prints "OK <terminator>"
// for code that parses and reaches a halting opcode, or "err: <reason>"
// otherwise, exiting 0 regardless so a caller can validate many lines in
// one invocation.
package main

import (
	"bufio"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/ethforge/corevm/core/vm"
)

func main() {
	app := &cli.App{
		Name:   "code-validate",
		Usage:  "validate hex-encoded EVM bytecode, one per line",
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	in := os.Stdin
	if c.Args().Len() > 0 {
		f, err := os.Open(c.Args().First())
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		code, err := decodeHex(line)
		if err != nil {
			fmt.Printf("err: %s\n", err)
			continue
		}
		res := vm.ValidateCode(code)
		if res.Err != nil {
			fmt.Printf("err: %s\n", res.Err)
			continue
		}
		fmt.Printf("OK %s\n", res.Terminator)
	}
	return scanner.Err()
}

func decodeHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(s, "0x")
	if len(s)%2 == 1 {
		s = "0" + s
	}
	return hex.DecodeString(s)
}
