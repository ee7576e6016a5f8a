// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/btcsuite/btctx/wire"
)

// SigHashType represents hash type bits at the end of a signature.
type SigHashType uint32

// Hash type bits from the end of a signature.
const (
	SigHashAll          SigHashType = 0x1
	SigHashNone         SigHashType = 0x2
	SigHashSingle       SigHashType = 0x3
	SigHashAnyOneCanPay SigHashType = 0x80

	// sigHashMask defines the number of bits of the hash type which is
	// used to identify which outputs are signed.
	sigHashMask = 0x1f
)

// blankedOutputValue is the value committed to by every cleared output
// preceding the signed one under SigHashSingle.  Its unsigned little-endian
// serialization is eight 0xff bytes, a historical artifact which is locked
// into consensus.
const blankedOutputValue int64 = -1

// signatureHashOne returns the "one hash" produced by the legacy signature
// hash algorithm for the historically invalid index combinations: the
// 32-byte little-endian encoding of the number 1.  A fresh slice is returned
// so callers cannot corrupt a shared instance.
func signatureHashOne() []byte {
	var hash chainhash.Hash
	hash[0] = 0x01
	return hash[:]
}

// putUint32LE writes the provided uint32 as little endian to the provided
// slice and returns 4 to signify the number of bytes written.  The target
// byte slice must be at least large enough to handle the write or it will
// panic.
func putUint32LE(buf []byte, val uint32) int {
	binary.LittleEndian.PutUint32(buf, val)
	return 4
}

// putUint64LE writes the provided uint64 as little endian to the provided
// slice and returns 8 to signify the number of bytes written.  The target
// byte slice must be at least large enough to handle the write or it will
// panic.
func putUint64LE(buf []byte, val uint64) int {
	binary.LittleEndian.PutUint64(buf, val)
	return 8
}

// putVarInt serializes the provided number as a variable-length integer and
// returns the number of bytes of the encoded value.  The result is placed
// directly into the passed byte slice which must be at least large enough to
// handle the number of bytes returned by the wire.VarIntSerializeSize
// function or it will panic.
func putVarInt(buf []byte, val uint64) int {
	if val < 0xfd {
		buf[0] = uint8(val)
		return 1
	}

	if val <= 0xffff {
		buf[0] = 0xfd
		binary.LittleEndian.PutUint16(buf[1:], uint16(val))
		return 3
	}

	if val <= 0xffffffff {
		buf[0] = 0xfe
		binary.LittleEndian.PutUint32(buf[1:], uint32(val))
		return 5
	}

	buf[0] = 0xff
	binary.LittleEndian.PutUint64(buf[1:], val)
	return 9
}

// shallowCopyTx creates a shallow copy of the transaction for use when
// calculating the signature hash.  It is used over the Copy method on the
// transaction itself since that is a deep copy and therefore does more work
// and allocates much more space than needed.  The copied inputs and outputs
// are independent records, but they alias the original script and witness
// byte slices, which is safe because the signature hash algorithms replace
// scripts wholesale and never write into them.
func shallowCopyTx(tx *wire.MsgTx) wire.MsgTx {
	// As an additional memory optimization, use contiguous backing arrays
	// for the copied inputs and outputs and point the final slice of
	// pointers into the contiguous arrays.  This avoids a lot of small
	// allocations.
	txCopy := wire.MsgTx{
		Version:  tx.Version,
		TxIn:     make([]*wire.TxIn, len(tx.TxIn)),
		TxOut:    make([]*wire.TxOut, len(tx.TxOut)),
		LockTime: tx.LockTime,
	}
	txIns := make([]wire.TxIn, len(tx.TxIn))
	for i, oldTxIn := range tx.TxIn {
		txIns[i] = *oldTxIn
		txCopy.TxIn[i] = &txIns[i]
	}
	txOuts := make([]wire.TxOut, len(tx.TxOut))
	for i, oldTxOut := range tx.TxOut {
		txOuts[i] = *oldTxOut
		txCopy.TxOut[i] = &txOuts[i]
	}
	return txCopy
}

// CalcSignatureHash computes the legacy signature hash for the specified
// input of the target transaction observing the desired signature hash type.
// The passed script is the public key script of the output being spent, from
// which every OP_CODESEPARATOR is removed before hashing.
//
// NOTE: This function is only valid for version 0 scripts.  Since the
// function does not accept a script version, the results are undefined for
// other script versions.
func CalcSignatureHash(script []byte, hashType SigHashType, tx *wire.MsgTx, idx int) ([]byte, error) {
	const scriptVersion = 0
	if err := checkScriptParses(scriptVersion, script); err != nil {
		return nil, err
	}

	return calcSignatureHash(script, hashType, tx, idx), nil
}

// calcSignatureHash computes the signature hash for the specified input of
// the target transaction observing the desired signature hash type.
//
// A bug in the original Satoshi client implementation means specifying an
// index that is out of range results in a signature hash of 1 (as a uint256
// little endian).  The original intent appeared to be to indicate failure,
// but unfortunately, it was never checked and thus is treated as the actual
// signature hash.  This buggy behavior is now part of the consensus and a
// hard fork would be required to fix it.
//
// The same hash of 1 is produced when SigHashSingle is specified for an
// input index that does not have a corresponding output.  Since transactions
// can have more inputs than outputs, care must be taken by software that
// creates transactions using SigHashSingle because it can lead to an
// extremely dangerous situation where the invalid inputs will end up signing
// a hash of 1.  This in turn presents an opportunity for attackers to
// cleverly construct transactions which can steal those coins provided they
// can reuse signatures.
func calcSignatureHash(sigScript []byte, hashType SigHashType, tx *wire.MsgTx, idx int) []byte {
	if idx >= len(tx.TxIn) {
		return signatureHashOne()
	}
	if hashType&sigHashMask == SigHashSingle && idx >= len(tx.TxOut) {
		return signatureHashOne()
	}

	// Remove all instances of OP_CODESEPARATOR from the script.
	sigScript = removeOpcodeRaw(sigScript, OP_CODESEPARATOR)

	// Make a shallow copy of the transaction, zeroing out the script for
	// all inputs that are not currently being processed.
	txCopy := shallowCopyTx(tx)
	for i := range txCopy.TxIn {
		if i == idx {
			txCopy.TxIn[idx].SignatureScript = sigScript
		} else {
			txCopy.TxIn[i].SignatureScript = nil
		}
	}

	switch hashType & sigHashMask {
	case SigHashNone:
		txCopy.TxOut = txCopy.TxOut[0:0] // Empty slice.
		for i := range txCopy.TxIn {
			if i != idx {
				txCopy.TxIn[i].Sequence = 0
			}
		}

	case SigHashSingle:
		// Resize output array to up to and including requested index.
		txCopy.TxOut = txCopy.TxOut[:idx+1]

		// All but current output get zeroed out.
		for i := 0; i < idx; i++ {
			txCopy.TxOut[i].Value = blankedOutputValue
			txCopy.TxOut[i].PkScript = nil
		}

		// Sequence on all other inputs is 0, too.
		for i := range txCopy.TxIn {
			if i != idx {
				txCopy.TxIn[i].Sequence = 0
			}
		}

	default:
		// Consensus treats undefined hashtypes like normal SigHashAll
		// for purposes of hash generation.
		fallthrough
	case SigHashAll:
		// Nothing special here.
	}
	if hashType&SigHashAnyOneCanPay != 0 {
		txCopy.TxIn = txCopy.TxIn[idx : idx+1]
	}

	// The final hash is the double sha256 of both the serialized modified
	// transaction and the hash type (encoded as a 4-byte little-endian
	// value) appended.
	wbuf := bytes.NewBuffer(make([]byte, 0, txCopy.SerializeSizeStripped()+4))
	_ = txCopy.SerializeNoWitness(wbuf)
	_ = binary.Write(wbuf, binary.LittleEndian, uint32(hashType))
	return chainhash.DoubleHashB(wbuf.Bytes())
}

// calcWitnessSignatureHash computes the sighash digest of a transaction's
// segwit input using the new, optimized digest calculation algorithm defined
// in BIP0143: https://github.com/bitcoin/bips/blob/master/bip-0143.mediawiki.
// This function makes use of pre-calculated sighash fragments stored within
// the passed TxSigHashes to eliminate duplicate hashing computations when
// calculating the final digest, reducing the complexity from O(N^2) to O(N).
// Additionally, signatures now cover the input value of the referenced
// unspent output.  This allows offline, or hardware wallets to compute the
// exact amount being spent, in addition to the final transaction fee.  In
// the case the wallet is fed an invalid input amount, the real sighash will
// differ causing the produced signature to be invalid.
func calcWitnessSignatureHash(scriptCode []byte, sigHashes *TxSigHashes,
	hashType SigHashType, tx *wire.MsgTx, idx int, amt int64) ([]byte, error) {

	// As a sanity check, ensure the passed input index for the transaction
	// is valid.
	if idx > len(tx.TxIn)-1 {
		str := fmt.Sprintf("idx %d but %d txins", idx, len(tx.TxIn))
		return nil, scriptError(ErrInvalidIndex, str)
	}
	txIn := tx.TxIn[idx]

	// The pre-image has a fixed layout aside from the script code, so size
	// the buffer exactly up front:
	// 4 bytes version + 32 bytes each for the prevouts, sequence, and
	// outputs sub-hashes + 32 bytes outpoint hash + 4 bytes outpoint
	// index + varslice script code + 8 bytes amount + 4 bytes sequence +
	// 4 bytes lock time + 4 bytes hash type.
	size := 156 + wire.VarIntSerializeSize(uint64(len(scriptCode))) +
		len(scriptCode)
	sigHash := make([]byte, size)

	// First write out, then encode the transaction's version number.
	offset := putUint32LE(sigHash, uint32(tx.Version))

	// Next write out the possibly pre-calculated hashes for the sequence
	// numbers of all inputs, and the hashes of the previous outs for all
	// outputs.
	var zeroHash chainhash.Hash

	// If anyone can pay isn't active, then we can use the cached
	// hashPrevOuts, otherwise we just write zeroes for the prev outs.
	if hashType&SigHashAnyOneCanPay == 0 {
		offset += copy(sigHash[offset:], sigHashes.HashPrevOuts[:])
	} else {
		offset += copy(sigHash[offset:], zeroHash[:])
	}

	// If the sighash isn't anyone can pay, single, or none, then use the
	// cached hash sequences, otherwise write all zeroes for the
	// hashSequence.
	if hashType&SigHashAnyOneCanPay == 0 &&
		hashType&sigHashMask != SigHashSingle &&
		hashType&sigHashMask != SigHashNone {

		offset += copy(sigHash[offset:], sigHashes.HashSequence[:])
	} else {
		offset += copy(sigHash[offset:], zeroHash[:])
	}

	// Next, write the outpoint being spent.
	offset += copy(sigHash[offset:], txIn.PreviousOutPoint.Hash[:])
	offset += putUint32LE(sigHash[offset:], txIn.PreviousOutPoint.Index)

	// Write the script code being signed with a var int length prefix.
	// For p2wsh outputs, and future outputs, the script code is the
	// original script, with all code separators removed, serialized with a
	// var int length prefix.  The caller is responsible for deriving it.
	offset += putVarInt(sigHash[offset:], uint64(len(scriptCode)))
	offset += copy(sigHash[offset:], scriptCode)

	// Next, add the input amount, and sequence number of the input being
	// signed.
	offset += putUint64LE(sigHash[offset:], uint64(amt))
	offset += putUint32LE(sigHash[offset:], txIn.Sequence)

	// If the current signature mode isn't single, or none, then we can
	// re-use the pre-generated hashoutputs sighash fragment.  Otherwise,
	// we'll serialize and add only the target output index to the
	// signature pre-image.
	if hashType&sigHashMask != SigHashSingle &&
		hashType&sigHashMask != SigHashNone {

		offset += copy(sigHash[offset:], sigHashes.HashOutputs[:])
	} else if hashType&sigHashMask == SigHashSingle && idx < len(tx.TxOut) {
		var b bytes.Buffer
		_ = wire.WriteTxOut(&b, 0, 0, tx.TxOut[idx])
		offset += copy(sigHash[offset:], chainhash.DoubleHashB(b.Bytes()))
	} else {
		offset += copy(sigHash[offset:], zeroHash[:])
	}

	// Finally, write out the transaction's locktime, and the sig hash
	// type.
	offset += putUint32LE(sigHash[offset:], tx.LockTime)
	putUint32LE(sigHash[offset:], uint32(hashType))

	return chainhash.DoubleHashB(sigHash), nil
}

// CalcWitnessSigHash computes the sighash digest for the specified input of
// the target transaction observing the desired sig hash type.  The passed
// script is the script code committed to by the input per BIP0143; amt is the
// value in satoshis of the output being spent.
func CalcWitnessSigHash(script []byte, sigHashes *TxSigHashes, hType SigHashType,
	tx *wire.MsgTx, idx int, amt int64) ([]byte, error) {

	const scriptVersion = 0
	if err := checkScriptParses(scriptVersion, script); err != nil {
		return nil, err
	}

	return calcWitnessSignatureHash(script, sigHashes, hType, tx, idx, amt)
}
