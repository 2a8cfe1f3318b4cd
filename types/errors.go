// SPDX-License-Identifier: BUSL-1.1
//
// Copyright (C) 2026, LendShield Labs. All rights reserved.

package types

import "cosmossdk.io/errors"

var (
	// Authorization failures.
	ErrNotOwner    = errors.Register(ModuleName, 2, "caller is not the ledger owner")
	ErrNotProvider = errors.Register(ModuleName, 3, "caller is not an authorized provider")

	// Lifecycle failures.
	ErrPaused      = errors.Register(ModuleName, 4, "ledger is paused")
	ErrBatchClosed = errors.Register(ModuleName, 5, "no batch is currently open")

	// Rate limiting.
	ErrCooldownActive = errors.Register(ModuleName, 6, "cooldown interval has not elapsed")

	// Input validity.
	ErrInvalidParameter = errors.Register(ModuleName, 7, "invalid parameter")
	ErrNotInitialized   = errors.Register(ModuleName, 8, "ciphertext is not initialized")

	// Oracle protocol integrity.
	ErrReplayAttempt = errors.Register(ModuleName, 9, "decryption result unknown or already consumed")
	ErrStateMismatch = errors.Register(ModuleName, 10, "aggregate state diverged from the requested fingerprint")
	ErrInvalidProof  = errors.Register(ModuleName, 11, "decryption proof verification failed")
)
