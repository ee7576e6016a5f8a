// Copyright (c) 2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/stretchr/testify/require"

	"github.com/btcsuite/btctx/wire"
)

// TestTxSigHashesMidstates ensures each of the cached BIP0143 sub-digests is
// the double sha256 of the expected serialization.
func TestTxSigHashesMidstates(t *testing.T) {
	tx := testSpendTx()
	sigHashes := NewTxSigHashes(tx)

	var prevOuts bytes.Buffer
	var seqs bytes.Buffer
	for _, in := range tx.TxIn {
		prevOuts.Write(in.PreviousOutPoint.Hash[:])
		require.NoError(t, binary.Write(&prevOuts, binary.LittleEndian,
			in.PreviousOutPoint.Index))
		require.NoError(t, binary.Write(&seqs, binary.LittleEndian,
			in.Sequence))
	}
	require.Equal(t, chainhash.DoubleHashH(prevOuts.Bytes()),
		sigHashes.HashPrevOuts)
	require.Equal(t, chainhash.DoubleHashH(seqs.Bytes()),
		sigHashes.HashSequence)

	var outs bytes.Buffer
	for _, out := range tx.TxOut {
		require.NoError(t, wire.WriteTxOut(&outs, 0, 0, out))
	}
	require.Equal(t, chainhash.DoubleHashH(outs.Bytes()),
		sigHashes.HashOutputs)
}

// TestHashCacheAddContainsHashes tests that transactions are properly added
// to, retrieved from, and removed from the hash cache.
func TestHashCacheAddContainsHashes(t *testing.T) {
	cache := NewHashCache(10)

	tx := testSpendTx()
	txid := tx.TxHash()

	// An unknown transaction is reported as absent.
	require.False(t, cache.ContainsHashes(&txid))
	_, found := cache.GetSigHashes(&txid)
	require.False(t, found)

	// Once added, the cached midstates must match a fresh computation.
	cache.AddSigHashes(tx)
	require.True(t, cache.ContainsHashes(&txid))

	cached, found := cache.GetSigHashes(&txid)
	require.True(t, found)
	require.Equal(t, NewTxSigHashes(tx), cached)

	// Purging removes the entry again.
	cache.PurgeSigHashes(&txid)
	require.False(t, cache.ContainsHashes(&txid))
	_, found = cache.GetSigHashes(&txid)
	require.False(t, found)
}
