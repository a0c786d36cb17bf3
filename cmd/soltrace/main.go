// Copyright 2026 The soltrace Authors
// This file is part of soltrace.
//
// soltrace is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// soltrace is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with soltrace. If not, see <http://www.gnu.org/licenses/>.

// soltrace replays a mined transaction and prints its annotated
// instruction trace.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/urfave/cli/v2"

	"github.com/evm-tools/soltrace"
)

var (
	rpcFlag = &cli.StringFlag{
		Name:  "rpc",
		Usage: "RPC endpoint of a node with the debug API enabled",
		Value: "http://127.0.0.1:8545",
	}
	txFlag = &cli.StringFlag{
		Name:     "tx",
		Usage:    "Hash of the mined transaction to trace",
		Required: true,
	}
	toFlag = &cli.StringFlag{
		Name:  "to",
		Usage: "Destination address of the transaction (omit for a contract creation)",
	}
	opFlag = &cli.StringSliceFlag{
		Name:  "op",
		Usage: "Keep only the named opcodes (repeatable)",
	}
	maxDepthFlag = &cli.IntFlag{
		Name:  "max-depth",
		Usage: "Drop steps deeper than this call depth",
	}
	jsonFlag = &cli.BoolFlag{
		Name:  "json",
		Usage: "Emit the final step sequence as JSON",
	}
	verbosityFlag = &cli.IntFlag{
		Name:  "verbosity",
		Usage: "Logging verbosity: 0=crit, 1=error, 2=warn, 3=info, 4=debug, 5=trace",
		Value: 3,
	}
)

var app = &cli.App{
	Name:   "soltrace",
	Usage:  "replay a mined transaction as an annotated instruction trace",
	Flags:  []cli.Flag{rpcFlag, txFlag, toFlag, opFlag, maxDepthFlag, jsonFlag, verbosityFlag},
	Action: trace,
}

func main() {
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func trace(ctx *cli.Context) error {
	handler := log.LvlFilterHandler(log.Lvl(ctx.Int(verbosityFlag.Name)), log.StreamHandler(os.Stderr, log.TerminalFormat(true)))
	log.Root().SetHandler(handler)

	client, err := rpc.DialContext(ctx.Context, ctx.String(rpcFlag.Name))
	if err != nil {
		return fmt.Errorf("dial %s: %w", ctx.String(rpcFlag.Name), err)
	}
	defer client.Close()

	tracer, err := soltrace.New(ctx.Context, soltrace.Config{Client: client})
	if err != nil {
		return err
	}

	receipt := &soltrace.Receipt{TxHash: common.HexToHash(ctx.String(txFlag.Name))}
	if to := ctx.String(toFlag.Name); to != "" {
		addr := common.HexToAddress(to)
		receipt.To = &addr
	}

	opts := new(soltrace.TraceOptions)
	if ops := ctx.StringSlice(opFlag.Name); len(ops) > 0 {
		opts.PreFilter = soltrace.OpFilter(ops...)
	}
	if ctx.IsSet(maxDepthFlag.Name) {
		opts.PostFilter = soltrace.DepthFilter(ctx.Int(maxDepthFlag.Name))
	}

	steps, err := tracer.Trace(ctx.Context, receipt, opts)
	if err != nil {
		return err
	}
	if ctx.Bool(jsonFlag.Name) {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(steps)
	}
	soltrace.WriteTrace(os.Stdout, steps)
	return nil
}
