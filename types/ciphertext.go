// SPDX-License-Identifier: BUSL-1.1
//
// Copyright (C) 2026, LendShield Labs. All rights reserved.

package types

import "context"

// Ciphertext is an opaque encrypted 32-bit unsigned integer. The
// ledger never inspects its contents; it can only combine ciphertexts
// through the CiphertextKeeper capability and export them as handles.
// A nil or empty Ciphertext is uninitialized and must never enter the
// ledger.
type Ciphertext []byte

// Initialized reports whether the ciphertext carries any payload at
// all. The backend's IsInitialized performs the authoritative check;
// this is only the cheap structural guard.
func (c Ciphertext) Initialized() bool {
	return len(c) > 0
}

// HandleSize is the fixed size of an exported ciphertext handle.
const HandleSize = 32

// Handle is the fixed-size opaque export of a Ciphertext, suitable
// for hashing and transport to the decryption oracle.
type Handle [HandleSize]byte

// Bytes returns the handle as a freshly allocated slice.
func (h Handle) Bytes() []byte {
	bz := make([]byte, HandleSize)
	copy(bz, h[:])
	return bz
}

// CiphertextKeeper is the homomorphic encryption capability consumed
// by the ledger. Implementations must be deterministic: adding the
// same ciphertexts in the same order must reproduce identical bytes,
// because the oracle bridge re-derives aggregate fingerprints by
// re-running the fold.
type CiphertextKeeper interface {
	// EncodeZero returns the ciphertext encoding of zero, the
	// starting value of every aggregation fold.
	EncodeZero() Ciphertext

	// Add homomorphically adds two ciphertexts.
	Add(a, b Ciphertext) (Ciphertext, error)

	// IsInitialized reports whether the ciphertext is a well-formed
	// encryption produced by this backend.
	IsInitialized(c Ciphertext) bool

	// ExportHandle derives the fixed-size transport handle for a
	// ciphertext.
	ExportHandle(c Ciphertext) Handle
}

// DecryptionOracle is the external decryption capability. Requests
// are answered out of band; the ledger only learns the result when
// the oracle (or anyone relaying for it) invokes the result callback
// with a verifiable proof.
type DecryptionOracle interface {
	// RequestDecryption registers the exported aggregate handles for
	// asynchronous decryption and returns the oracle-issued request
	// identifier.
	RequestDecryption(ctx context.Context, handles []Handle) (uint64, error)

	// VerifyProof checks the oracle's proof over a delivered
	// cleartext. Opaque pass/fail; the ledger attaches no meaning to
	// the proof bytes themselves.
	VerifyProof(requestID uint64, cleartext, proof []byte) bool
}
