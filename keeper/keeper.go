// SPDX-License-Identifier: BUSL-1.1
//
// Copyright (C) 2026, LendShield Labs. All rights reserved.

package keeper

import (
	"cosmossdk.io/collections"
	"cosmossdk.io/core/address"
	"cosmossdk.io/core/event"
	"cosmossdk.io/core/header"
	"cosmossdk.io/core/store"
	"cosmossdk.io/log"

	"lendshield.dev/types"
)

// Keeper owns the ledger's entire mutable state: the provider set,
// the batch list, cooldown timestamps, and outstanding decryption
// contexts. No component outside the keeper writes any of it.
type Keeper struct {
	owner string

	store store.KVStoreService

	logger  log.Logger
	header  header.Service
	event   event.Service
	address address.Codec

	fhe    types.CiphertextKeeper
	oracle types.DecryptionOracle

	Paused             collections.Item[bool]
	Providers          collections.Map[[]byte, bool]
	CooldownSeconds    collections.Item[int64]
	LastSubmission     collections.Map[[]byte, int64]
	LastDecryptRequest collections.Map[[]byte, int64]

	CurrentBatchID     collections.Item[uint64]
	BatchOpen          collections.Item[bool]
	BatchPositionCount collections.Map[uint64, uint64]
	BatchPositions     collections.Map[collections.Pair[uint64, uint64], types.Position]

	DecryptionContexts collections.Map[uint64, types.DecryptionContext]
}

func NewKeeper(
	owner string,
	store store.KVStoreService,
	logger log.Logger,
	header header.Service,
	event event.Service,
	address address.Codec,
	fhe types.CiphertextKeeper,
	oracle types.DecryptionOracle,
) *Keeper {
	builder := collections.NewSchemaBuilder(store)

	keeper := &Keeper{
		owner: owner,

		store: store,

		logger:  logger.With("module", types.ModuleName),
		header:  header,
		event:   event,
		address: address,

		fhe:    fhe,
		oracle: oracle,

		Paused:             collections.NewItem(builder, types.PausedKey, "paused", collections.BoolValue),
		Providers:          collections.NewMap(builder, types.ProviderPrefix, "providers", collections.BytesKey, collections.BoolValue),
		CooldownSeconds:    collections.NewItem(builder, types.CooldownSecondsKey, "cooldown_seconds", collections.Int64Value),
		LastSubmission:     collections.NewMap(builder, types.LastSubmissionPrefix, "last_submission", collections.BytesKey, collections.Int64Value),
		LastDecryptRequest: collections.NewMap(builder, types.LastDecryptRequestPrefix, "last_decrypt_request", collections.BytesKey, collections.Int64Value),

		CurrentBatchID:     collections.NewItem(builder, types.CurrentBatchIDKey, "current_batch_id", collections.Uint64Value),
		BatchOpen:          collections.NewItem(builder, types.BatchOpenKey, "batch_open", collections.BoolValue),
		BatchPositionCount: collections.NewMap(builder, types.BatchPositionCountPrefix, "batch_position_count", collections.Uint64Key, collections.Uint64Value),
		BatchPositions:     collections.NewMap(builder, types.BatchPositionPrefix, "batch_positions", collections.PairKeyCodec(collections.Uint64Key, collections.Uint64Key), types.PositionValue),

		DecryptionContexts: collections.NewMap(builder, types.DecryptionContextPrefix, "decryption_contexts", collections.Uint64Key, types.DecryptionContextValue),
	}

	_, err := builder.Build()
	if err != nil {
		panic(err)
	}

	return keeper
}

// GetOwner returns the configured ledger owner address.
func (k *Keeper) GetOwner() string {
	return k.owner
}

// SetCiphertextKeeper overwrites the homomorphic encryption backend
// used by this ledger. This exists so tests can swap backends without
// rebuilding the keeper.
func (k *Keeper) SetCiphertextKeeper(fhe types.CiphertextKeeper) {
	k.fhe = fhe
}

// SetDecryptionOracle overwrites the decryption oracle capability.
func (k *Keeper) SetDecryptionOracle(oracle types.DecryptionOracle) {
	k.oracle = oracle
}
