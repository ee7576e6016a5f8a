// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btclog"
	"github.com/davecgh/go-spew/spew"
	flags "github.com/jessevdk/go-flags"

	"github.com/btcsuite/btctx/wire"
)

type config struct {
	InFile   string `short:"i" long:"infile" description:"Read the hex encoded transaction from this file instead of the command line"`
	NoStrict bool   `long:"nostrict" description:"Tolerate trailing bytes after the serialized transaction"`
	Verbose  bool   `short:"v" long:"verbose" description:"Also dump the decoded transaction structure"`
}

var log btclog.Logger

// loadTxHex returns the hex encoded transaction either from the input file
// given in the config or from the remaining command line arguments.
func loadTxHex(cfg *config, remainingArgs []string) (string, error) {
	if cfg.InFile != "" {
		serialized, err := os.ReadFile(cfg.InFile)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(serialized)), nil
	}

	if len(remainingArgs) != 1 {
		return "", fmt.Errorf("a single hex encoded transaction is " +
			"required when no input file is given")
	}
	return remainingArgs[0], nil
}

// decodeTx parses the passed hex encoded transaction honoring the strictness
// requested in the config.
func decodeTx(cfg *config, txHex string) (*wire.MsgTx, error) {
	serializedTx, err := hex.DecodeString(txHex)
	if err != nil {
		return nil, fmt.Errorf("invalid transaction hex: %v", err)
	}

	if cfg.NoStrict {
		return wire.NewTxFromReader(bytes.NewReader(serializedTx))
	}
	return wire.NewTxFromBytes(serializedTx)
}

// dumpTx writes a human readable rendering of the transaction along with its
// derived size, weight, and fee accounting values to stdout.
func dumpTx(cfg *config, tx *wire.MsgTx) {
	fmt.Printf("txid: %s\n", tx.TxID())
	wtxid := tx.WitnessHash()
	fmt.Printf("wtxid: %s\n", wtxid.String())
	fmt.Printf("version: %d\n", tx.Version)
	fmt.Printf("locktime: %d\n", tx.LockTime)
	fmt.Printf("coinbase: %v\n", wire.IsCoinBaseTx(tx))
	fmt.Printf("size: %d bytes (stripped %d)\n", tx.SerializeSize(),
		tx.SerializeSizeStripped())
	fmt.Printf("weight: %d (virtual size %d)\n",
		wire.GetTransactionWeight(tx), wire.GetTxVirtualSize(tx))

	fmt.Printf("inputs (%d):\n", len(tx.TxIn))
	for i, txIn := range tx.TxIn {
		fmt.Printf("  %d: %s\n", i, txIn.PreviousOutPoint.String())
		fmt.Printf("     sigscript: %x\n", txIn.SignatureScript)
		fmt.Printf("     sequence: %#08x\n", txIn.Sequence)
		for j, item := range txIn.Witness {
			fmt.Printf("     witness %d: %x\n", j, item)
		}
	}

	fmt.Printf("outputs (%d):\n", len(tx.TxOut))
	for i, txOut := range tx.TxOut {
		fmt.Printf("  %d: %s\n", i, btcutil.Amount(txOut.Value))
		fmt.Printf("     pkscript: %x\n", txOut.PkScript)
	}

	if cfg.Verbose {
		fmt.Print(spew.Sdump(tx))
	}
}

func main() {
	cfg := config{}
	parser := flags.NewParser(&cfg, flags.Default)
	remainingArgs, err := parser.Parse()
	if err != nil {
		if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	backendLogger := btclog.NewBackend(os.Stderr)
	log = backendLogger.Logger("MAIN")

	txHex, err := loadTxHex(&cfg, remainingArgs)
	if err != nil {
		log.Errorf("Unable to load transaction: %v", err)
		os.Exit(1)
	}

	tx, err := decodeTx(&cfg, txHex)
	if err != nil {
		log.Errorf("Unable to decode transaction: %v", err)
		os.Exit(1)
	}

	dumpTx(&cfg, tx)
}
