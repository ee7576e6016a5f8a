// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package txscript implements the Bitcoin transaction signature hash
algorithms.

Two constructions are provided: the legacy algorithm used by pre-segwit
inputs (CalcSignatureHash) and the BIP0143 algorithm for version 0 witness
programs (CalcWitnessSigHash), along with the TxSigHashes midstate type and
HashCache which allow the BIP0143 sub-digests to be shared across the inputs
of a transaction.

The package also carries the minimal script-analysis surface the sighash
machinery requires: a zero-allocation ScriptTokenizer and the
OP_CODESEPARATOR stripping it enables.

# Historical Quirks

The legacy algorithm reproduces the original Satoshi client behavior
bit-for-bit, including returning the "one hash" (the 32-byte little-endian
encoding of 1) instead of an error when the input index is out of range or
when SigHashSingle is used without a matching output.  These are consensus
rules and must not be "fixed"; see the calcSignatureHash documentation for
the details and the resulting signing hazards.
*/
package txscript
