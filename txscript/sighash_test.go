// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/stretchr/testify/require"

	"github.com/btcsuite/btctx/wire"
)

// testPrevScript is a previous output script containing an OP_CODESEPARATOR,
// and testStrippedScript is the same script with the separator removed, which
// is what the legacy algorithm must commit to.
var (
	testPrevScript = []byte{OP_DUP, OP_HASH160, 0x02, 0xaa, 0xbb,
		OP_CODESEPARATOR, OP_EQUALVERIFY, OP_CHECKSIG}
	testStrippedScript = []byte{OP_DUP, OP_HASH160, 0x02, 0xaa, 0xbb,
		OP_EQUALVERIFY, OP_CHECKSIG}
)

// testSpendTx returns a transaction with two inputs and three outputs used
// throughout the signature hash tests.
func testSpendTx() *wire.MsgTx {
	var prevHash1, prevHash2 chainhash.Hash
	for i := range prevHash1 {
		prevHash1[i] = 0x01
		prevHash2[i] = 0x02
	}

	tx := wire.NewMsgTx(1)
	tx.AddTxIn(&wire.TxIn{
		PreviousOutPoint: wire.OutPoint{Hash: prevHash1, Index: 0},
		SignatureScript:  []byte{OP_1},
		Sequence:         0xffffffff,
	})
	tx.AddTxIn(&wire.TxIn{
		PreviousOutPoint: wire.OutPoint{Hash: prevHash2, Index: 3},
		Sequence:         0xfffffffe,
	})
	tx.TxOut = []*wire.TxOut{
		wire.NewTxOut(100000000, []byte{OP_DUP, OP_HASH160}),
		wire.NewTxOut(200000000, []byte{OP_EQUAL}),
		wire.NewTxOut(299999000, []byte{OP_RETURN}),
	}
	tx.LockTime = 1400000
	return tx
}

// legacyDigest serializes the passed pre-mutated transaction without witness
// data, appends the hash type, and double hashes the result.  It provides an
// independent rendering of the final step of the legacy algorithm so tests
// can build the expected mutated transaction by hand.
func legacyDigest(t *testing.T, tx *wire.MsgTx, hashType SigHashType) []byte {
	t.Helper()

	var wbuf bytes.Buffer
	require.NoError(t, tx.SerializeNoWitness(&wbuf))
	require.NoError(t, binary.Write(&wbuf, binary.LittleEndian,
		uint32(hashType)))
	return chainhash.DoubleHashB(wbuf.Bytes())
}

// TestCalcSignatureHashSentinels verifies the historical "one hash" returns
// for the invalid index combinations.  These are sentinels, not errors.
func TestCalcSignatureHashSentinels(t *testing.T) {
	wantOne := make([]byte, 32)
	wantOne[0] = 0x01

	// An out of range input index hashes to one for any hash type.
	tx := testSpendTx()
	for _, hashType := range []SigHashType{SigHashAll, SigHashNone,
		SigHashSingle, SigHashAll | SigHashAnyOneCanPay} {

		hash, err := CalcSignatureHash(testPrevScript, hashType, tx, 99)
		require.NoError(t, err)
		require.Equal(t, wantOne, hash)
	}

	// SigHashSingle with no output at the input's index hashes to one as
	// well.
	shortTx := testSpendTx()
	shortTx.TxOut = shortTx.TxOut[:1]
	hash, err := CalcSignatureHash(testPrevScript, SigHashSingle, shortTx, 1)
	require.NoError(t, err)
	require.Equal(t, wantOne, hash)

	// A well formed index pair must not produce the sentinel.
	hash, err = CalcSignatureHash(testPrevScript, SigHashSingle, shortTx, 0)
	require.NoError(t, err)
	require.NotEqual(t, wantOne, hash)
}

// TestCalcSignatureHashAll builds the expected mutated transaction by hand
// and ensures the digest matches, including OP_CODESEPARATOR removal.
func TestCalcSignatureHashAll(t *testing.T) {
	tx := testSpendTx()

	expected := testSpendTx()
	expected.TxIn[0].SignatureScript = testStrippedScript
	expected.TxIn[1].SignatureScript = nil

	want := legacyDigest(t, expected, SigHashAll)
	got, err := CalcSignatureHash(testPrevScript, SigHashAll, tx, 0)
	require.NoError(t, err)
	require.Equal(t, want, got)

	// An undefined base hash type behaves like SigHashAll except for the
	// trailing hash type bytes.
	wantOdd := legacyDigest(t, expected, SigHashType(0x04))
	gotOdd, err := CalcSignatureHash(testPrevScript, SigHashType(0x04), tx, 0)
	require.NoError(t, err)
	require.Equal(t, wantOdd, gotOdd)

	// The input transaction itself must remain untouched.
	require.Equal(t, []byte{OP_1}, tx.TxIn[0].SignatureScript)
	require.Len(t, tx.TxOut, 3)
}

// TestCalcSignatureHashNone ensures SigHashNone commits to no outputs and
// zeroes the sequence numbers of all other inputs.
func TestCalcSignatureHashNone(t *testing.T) {
	tx := testSpendTx()

	expected := testSpendTx()
	expected.TxIn[0].SignatureScript = nil
	expected.TxIn[0].Sequence = 0
	expected.TxIn[1].SignatureScript = testStrippedScript
	expected.TxOut = nil

	want := legacyDigest(t, expected, SigHashNone)
	got, err := CalcSignatureHash(testPrevScript, SigHashNone, tx, 1)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

// TestCalcSignatureHashSingle ensures SigHashSingle truncates the outputs to
// the signed index, blanks every output before it, and zeroes the other
// inputs' sequence numbers.
func TestCalcSignatureHashSingle(t *testing.T) {
	tx := testSpendTx()

	expected := testSpendTx()
	expected.TxIn[0].SignatureScript = nil
	expected.TxIn[0].Sequence = 0
	expected.TxIn[1].SignatureScript = testStrippedScript

	// Outputs past the signed index are dropped and prior outputs are
	// replaced with the blanked output whose value serializes as eight
	// 0xff bytes.
	expected.TxOut = []*wire.TxOut{
		{Value: -1, PkScript: nil},
		tx.TxOut[1],
	}

	want := legacyDigest(t, expected, SigHashSingle)
	got, err := CalcSignatureHash(testPrevScript, SigHashSingle, tx, 1)
	require.NoError(t, err)
	require.Equal(t, want, got)

	// The untouched original must still have all three outputs.
	require.Len(t, tx.TxOut, 3)
	require.Equal(t, int64(100000000), tx.TxOut[0].Value)
}

// TestCalcSignatureHashAnyOneCanPay ensures the anyone-can-pay flag isolates
// the signed input: the digest must be independent of every other input.
func TestCalcSignatureHashAnyOneCanPay(t *testing.T) {
	hashType := SigHashAll | SigHashAnyOneCanPay

	tx := testSpendTx()
	got, err := CalcSignatureHash(testPrevScript, hashType, tx, 1)
	require.NoError(t, err)

	// Mutating the other input must not change the digest.
	mutated := testSpendTx()
	mutated.TxIn[0].PreviousOutPoint.Index = 42
	mutated.TxIn[0].Sequence = 0
	mutated.TxIn[0].SignatureScript = []byte{OP_RETURN}
	gotMutated, err := CalcSignatureHash(testPrevScript, hashType, mutated, 1)
	require.NoError(t, err)
	require.Equal(t, got, gotMutated)

	// The digest equals the one over a hand built transaction holding only
	// the signed input.
	expected := testSpendTx()
	expected.TxIn = []*wire.TxIn{{
		PreviousOutPoint: tx.TxIn[1].PreviousOutPoint,
		SignatureScript:  testStrippedScript,
		Sequence:         tx.TxIn[1].Sequence,
	}}
	want := legacyDigest(t, expected, hashType)
	require.Equal(t, want, got)
}

// witnessDigest builds the BIP0143 pre-image by hand from the provided
// sub-digests and hashes it, providing an independent check of the optimized
// buffer based implementation.
func witnessDigest(t *testing.T, tx *wire.MsgTx, idx int, scriptCode []byte,
	amt int64, hashType SigHashType, hashPrevOuts, hashSequence,
	hashOutputs chainhash.Hash) []byte {

	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian,
		uint32(tx.Version)))
	buf.Write(hashPrevOuts[:])
	buf.Write(hashSequence[:])
	buf.Write(tx.TxIn[idx].PreviousOutPoint.Hash[:])
	require.NoError(t, binary.Write(&buf, binary.LittleEndian,
		tx.TxIn[idx].PreviousOutPoint.Index))
	require.NoError(t, wire.WriteVarBytes(&buf, 0, scriptCode))
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint64(amt)))
	require.NoError(t, binary.Write(&buf, binary.LittleEndian,
		tx.TxIn[idx].Sequence))
	buf.Write(hashOutputs[:])
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, tx.LockTime))
	require.NoError(t, binary.Write(&buf, binary.LittleEndian,
		uint32(hashType)))
	return chainhash.DoubleHashB(buf.Bytes())
}

// TestCalcWitnessSigHash exercises the BIP0143 digest for each hash type,
// verifying which sub-digests are committed to and which are zeroed.
func TestCalcWitnessSigHash(t *testing.T) {
	tx := testSpendTx()
	sigHashes := NewTxSigHashes(tx)
	scriptCode := testStrippedScript
	const amt = int64(300000000)

	// Compute the three sub-digests by hand.
	var prevOuts bytes.Buffer
	var seqs bytes.Buffer
	for _, in := range tx.TxIn {
		prevOuts.Write(in.PreviousOutPoint.Hash[:])
		require.NoError(t, binary.Write(&prevOuts, binary.LittleEndian,
			in.PreviousOutPoint.Index))
		require.NoError(t, binary.Write(&seqs, binary.LittleEndian,
			in.Sequence))
	}
	hashPrevOuts := chainhash.DoubleHashH(prevOuts.Bytes())
	hashSequence := chainhash.DoubleHashH(seqs.Bytes())

	var outs bytes.Buffer
	for _, out := range tx.TxOut {
		require.NoError(t, wire.WriteTxOut(&outs, 0, 0, out))
	}
	hashOutputs := chainhash.DoubleHashH(outs.Bytes())

	var singleOut bytes.Buffer
	require.NoError(t, wire.WriteTxOut(&singleOut, 0, 0, tx.TxOut[1]))
	hashOutput1 := chainhash.DoubleHashH(singleOut.Bytes())

	var zeroHash chainhash.Hash

	tests := []struct {
		name         string
		hashType     SigHashType
		idx          int
		hashPrevOuts chainhash.Hash
		hashSequence chainhash.Hash
		hashOutputs  chainhash.Hash
	}{{
		name:         "all",
		hashType:     SigHashAll,
		idx:          1,
		hashPrevOuts: hashPrevOuts,
		hashSequence: hashSequence,
		hashOutputs:  hashOutputs,
	}, {
		name:         "all|anyonecanpay zeroes prevouts and sequence",
		hashType:     SigHashAll | SigHashAnyOneCanPay,
		idx:          1,
		hashPrevOuts: zeroHash,
		hashSequence: zeroHash,
		hashOutputs:  hashOutputs,
	}, {
		name:         "none zeroes sequence and outputs",
		hashType:     SigHashNone,
		idx:          0,
		hashPrevOuts: hashPrevOuts,
		hashSequence: zeroHash,
		hashOutputs:  zeroHash,
	}, {
		name:         "single commits to the matching output only",
		hashType:     SigHashSingle,
		idx:          1,
		hashPrevOuts: hashPrevOuts,
		hashSequence: zeroHash,
		hashOutputs:  hashOutput1,
	}}

	for _, test := range tests {
		want := witnessDigest(t, tx, test.idx, scriptCode, amt,
			test.hashType, test.hashPrevOuts, test.hashSequence,
			test.hashOutputs)
		got, err := CalcWitnessSigHash(scriptCode, sigHashes,
			test.hashType, tx, test.idx, amt)
		require.NoError(t, err, test.name)
		require.Equal(t, want, got, test.name)
	}

	// SigHashSingle with no matching output commits to a zeroed outputs
	// hash rather than producing the legacy sentinel.
	truncated := testSpendTx()
	truncated.TxOut = truncated.TxOut[:1]
	truncatedHashes := NewTxSigHashes(truncated)
	want := witnessDigest(t, truncated, 1, scriptCode, amt, SigHashSingle,
		hashPrevOuts, zeroHash, zeroHash)
	got, err := CalcWitnessSigHash(scriptCode, truncatedHashes,
		SigHashSingle, truncated, 1, amt)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

// TestCalcWitnessSigHashErrors ensures invalid indices and unparseable
// scripts are rejected with typed errors.
func TestCalcWitnessSigHashErrors(t *testing.T) {
	tx := testSpendTx()
	sigHashes := NewTxSigHashes(tx)

	_, err := CalcWitnessSigHash(testStrippedScript, sigHashes, SigHashAll,
		tx, 5, 0)
	require.True(t, IsErrorCode(err, ErrInvalidIndex))

	malformed := []byte{OP_PUSHDATA1}
	_, err = CalcWitnessSigHash(malformed, sigHashes, SigHashAll, tx, 0, 0)
	require.True(t, IsErrorCode(err, ErrMalformedPush))

	_, err = CalcSignatureHash(malformed, SigHashAll, tx, 0)
	require.True(t, IsErrorCode(err, ErrMalformedPush))
}

// TestSigHashSignable proves that both engines produce 32-byte digests an
// ECDSA signer consumes directly: signatures over the digests verify under
// the corresponding public key.
func TestSigHashSignable(t *testing.T) {
	privKeyBytes := bytes.Repeat([]byte{0x2b}, 32)
	privKey, pubKey := btcec.PrivKeyFromBytes(privKeyBytes)

	tx := testSpendTx()

	legacyHash, err := CalcSignatureHash(testPrevScript, SigHashAll, tx, 0)
	require.NoError(t, err)
	require.Len(t, legacyHash, 32)

	sig := ecdsa.Sign(privKey, legacyHash)
	require.True(t, sig.Verify(legacyHash, pubKey))

	witnessHash, err := CalcWitnessSigHash(testStrippedScript,
		NewTxSigHashes(tx), SigHashAll, tx, 0, 300000000)
	require.NoError(t, err)
	require.Len(t, witnessHash, 32)

	sig = ecdsa.Sign(privKey, witnessHash)
	require.True(t, sig.Verify(witnessHash, pubKey))

	// The two constructions never collide for the same transaction.
	require.NotEqual(t, legacyHash, witnessHash)
}
