// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// zeroHash is the zero value for a chainhash.Hash and is defined as
// a package level variable to avoid the need to create a new instance
// every time a check is needed.
var zeroHash chainhash.Hash

// IsCoinBaseTx determines whether or not a transaction is a coinbase.  A
// coinbase is a special transaction created by miners that has no inputs.
// This is represented in the block chain by a transaction with a single input
// that references the zero hash.
//
// Note that the previous output index is intentionally not part of this
// check: by convention a coinbase input uses MaxPrevOutIndex, but deployed
// implementations classify on the hash alone, so a transaction spending the
// all-zero hash at some other index is (mis)classified the same way here.
func IsCoinBaseTx(msgTx *MsgTx) bool {
	// A coin base must only have one transaction input.
	if len(msgTx.TxIn) != 1 {
		return false
	}

	// The previous output of a coin base must reference the zero hash.
	prevOut := &msgTx.TxIn[0].PreviousOutPoint
	if prevOut.Hash != zeroHash {
		return false
	}

	return true
}

// CheckOutput returns an error when the passed output carries a value which
// can never appear in a valid transaction.  In particular the sighash
// machinery reserves negative values for internal blanked outputs, so they
// must never enter a transaction through the construction path.
func CheckOutput(txOut *TxOut) error {
	if txOut.Value < 0 {
		str := fmt.Sprintf("transaction output has negative value %d",
			txOut.Value)
		return messageError("CheckOutput", str)
	}
	return nil
}
