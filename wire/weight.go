// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

const (
	// WitnessScaleFactor determines the level of "discount" witness data
	// receives compared to "base" data.  A scale factor of 4 effectively
	// makes witness data 1/4 as expensive as regular non-witness data.
	WitnessScaleFactor = 4
)

// GetTransactionWeight computes the value of the weight metric for a given
// transaction.  Currently the weight metric is simply the sum of the
// transaction's serialized size without any witness data scaled proportionally
// by the WitnessScaleFactor, and the transaction's serialized size including
// any witness data.
func GetTransactionWeight(msgTx *MsgTx) int64 {
	baseSize := msgTx.SerializeSizeStripped()
	totalSize := msgTx.SerializeSize()

	// (baseSize * 3) + totalSize
	return int64((baseSize * (WitnessScaleFactor - 1)) + totalSize)
}

// GetTxVirtualSize computes the virtual size of a given transaction.  A
// transaction's virtual size is based off its weight, creating a discount for
// any witness data it contains, proportional to the current
// WitnessScaleFactor value.
func GetTxVirtualSize(msgTx *MsgTx) int64 {
	// vSize := (weight(tx) + 3) / 4
	//       := (((baseSize * 3) + totalSize) + 3) / 4
	// We add 3 here as a way to compute the ceiling of the prior arithmetic
	// to 4.  The division by 4 creates a discount for wit witness data.
	return (GetTransactionWeight(msgTx) + (WitnessScaleFactor - 1)) /
		WitnessScaleFactor
}
