// SPDX-License-Identifier: BUSL-1.1
//
// Copyright (C) 2026, LendShield Labs. All rights reserved.

package types

// Event types. One per state transition; attributes carry enough to
// reconstruct the transition without re-reading ledger state.
const (
	EventTypeProviderAdded       = "provider_added"
	EventTypeProviderRemoved     = "provider_removed"
	EventTypeCooldownUpdated     = "cooldown_updated"
	EventTypeLedgerPaused        = "ledger_paused"
	EventTypeLedgerUnpaused      = "ledger_unpaused"
	EventTypeBatchOpened         = "batch_opened"
	EventTypeBatchClosed         = "batch_closed"
	EventTypePositionSubmitted   = "position_submitted"
	EventTypeDecryptionRequested = "decryption_requested"
	EventTypeDecryptionCompleted = "decryption_completed"
)

// Event attribute keys.
const (
	AttributeKeyOwner            = "owner"
	AttributeKeyProvider         = "provider"
	AttributeKeyCooldownSeconds  = "cooldown_seconds"
	AttributeKeyBatchId          = "batch_id"
	AttributeKeyPositionIndex    = "position_index"
	AttributeKeyPositionDigest   = "position_digest"
	AttributeKeyRequestId        = "request_id"
	AttributeKeyFingerprint      = "fingerprint"
	AttributeKeyTotalLoan        = "total_loan"
	AttributeKeyTotalCollateral  = "total_collateral"
)
