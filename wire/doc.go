// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package wire implements the Bitcoin transaction wire format.

It provides the in-memory transaction model (MsgTx, TxIn, TxOut, OutPoint,
TxWitness) together with its canonical binary serialization in both the
legacy form and the extended segregated witness form defined by BIP0144.
Exact serialized sizes are computable up front via SerializeSize and
SerializeSizeStripped, from which the weight and virtual size fee metrics
derive.

# Bitcoin Transaction Encoding

All multi-byte integers are encoded little endian.  Variable length integers
use the compact-size encoding (1, 3, 5, or 9 bytes depending on magnitude)
and are always written in their minimal form; non-canonical encodings are
rejected while decoding.  When a transaction carries witness data and the
witness encoding is requested, the serialization is extended with a 0x00
marker byte and 0x01 flag byte directly after the version, followed later by
one witness stack per input.

# Errors

Malformed or non-canonical input is reported via *MessageError.  Truncated
input surfaces the underlying io error (typically io.EOF or
io.ErrUnexpectedEOF) unwrapped so it can be inspected directly.
*/
package wire
