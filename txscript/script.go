// Copyright (c) 2013-2017 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"
	"fmt"
)

// checkScriptParses returns an error if the provided script fails to parse.
func checkScriptParses(scriptVersion uint16, script []byte) error {
	if scriptVersion != 0 {
		str := fmt.Sprintf("script version %d is not supported",
			scriptVersion)
		return scriptError(ErrUnsupportedScriptVersion, str)
	}

	tokenizer := MakeScriptTokenizer(scriptVersion, script)
	for tokenizer.Next() {
		// Nothing to do.
	}
	return tokenizer.Err()
}

// removeOpcodeRaw returns the script after removing any opcodes that match
// `opcode`.  An opcode byte that appears inside a data push payload is part
// of the pushed data, not an opcode, and is left untouched.
//
// NOTE: This function is only valid for version 0 scripts.  Since the
// function does not accept a script version, the results are undefined for
// other script versions.
func removeOpcodeRaw(script []byte, opcode byte) []byte {
	// Avoid work when possible.
	if !bytes.Contains(script, []byte{opcode}) {
		return script
	}

	const scriptVersion = 0
	var result []byte
	var prevOffset int32

	tokenizer := MakeScriptTokenizer(scriptVersion, script)
	for tokenizer.Next() {
		if tokenizer.Opcode() != opcode {
			result = append(result, script[prevOffset:tokenizer.ByteIndex()]...)
		}
		prevOffset = tokenizer.ByteIndex()
	}
	if tokenizer.Err() != nil {
		return script
	}
	return result
}

// IsPushOnlyScript returns whether or not the passed script only pushes data
// according to the consensus definition of pushing data.
//
// WARNING: This function always treats the passed script as version 0.  Great
// care must be taken if introducing a new script version because it is used
// in consensus which, unfortunately as of the time of this writing, does not
// check script versions before checking if it is a push only script which
// means nodes on existing rules will treat new version scripts as if they
// were version 0.
func IsPushOnlyScript(script []byte) bool {
	const scriptVersion = 0
	tokenizer := MakeScriptTokenizer(scriptVersion, script)
	for tokenizer.Next() {
		// All opcodes up to OP_16 are data push instructions.
		// NOTE: This does consider OP_RESERVED to be a data push
		// instruction, but execution of OP_RESERVED will fail anyway
		// and matches the behavior required by consensus.
		if tokenizer.Opcode() > OP_16 {
			return false
		}
	}
	return tokenizer.Err() == nil
}
