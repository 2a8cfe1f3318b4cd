// SPDX-License-Identifier: BUSL-1.1
//
// Copyright (C) 2026, LendShield Labs. All rights reserved.

package types

import (
	sdk "github.com/cosmos/cosmos-sdk/types"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
)

const ModuleName = "lendshield"

// ModuleAddress is the ledger's own identity. It is bound into every
// aggregate fingerprint so a decryption result can never be replayed
// against a different ledger instance.
var ModuleAddress = authtypes.NewModuleAddress(ModuleName)

// DefaultCooldownSeconds applies until the owner configures an
// explicit interval. SetCooldown rejects zero, so rate limiting is
// never disabled.
const DefaultCooldownSeconds = int64(60)

var (
	PausedKey                 = []byte("lendshield/paused")
	ProviderPrefix            = []byte("lendshield/provider/")
	CooldownSecondsKey        = []byte("lendshield/cooldown_seconds")
	LastSubmissionPrefix      = []byte("lendshield/last_submission/")
	LastDecryptRequestPrefix  = []byte("lendshield/last_decrypt_request/")
	CurrentBatchIDKey         = []byte("lendshield/current_batch_id")
	BatchOpenKey              = []byte("lendshield/batch_open")
	BatchPositionCountPrefix  = []byte("lendshield/batch_position_count/")
	BatchPositionPrefix       = []byte("lendshield/batch_position/")
	DecryptionContextPrefix   = []byte("lendshield/decryption_context/")
)

// GetBatchPositionKey creates the composite key for a position within
// a batch. The index is the position's zero-based submission order.
func GetBatchPositionKey(batchID, index uint64) []byte {
	return append(append(BatchPositionPrefix, sdk.Uint64ToBigEndian(batchID)...), sdk.Uint64ToBigEndian(index)...)
}

// ParseBatchPositionKey extracts batch id and submission index from a
// composite position key.
func ParseBatchPositionKey(key []byte) (batchID, index uint64) {
	keyWithoutPrefix := key[len(BatchPositionPrefix):]
	batchID = sdk.BigEndianToUint64(keyWithoutPrefix[:8])
	index = sdk.BigEndianToUint64(keyWithoutPrefix[8:16])
	return
}
