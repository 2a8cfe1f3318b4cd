// SPDX-License-Identifier: BUSL-1.1
//
// Copyright (C) 2026, LendShield Labs. All rights reserved.

package mocks

import (
	"context"
	"time"

	"cosmossdk.io/core/header"
	"cosmossdk.io/log"

	"lendshield.dev/keeper"
	"lendshield.dev/types"
)

// Owner is the ledger owner identity used across tests.
const Owner = "authority"

// LedgerKeeper builds a keeper wired to the fast mock backends and
// returns it together with the fulfilling oracle, the event recorder,
// and a context carrying an initial block time.
func LedgerKeeper() (*keeper.Keeper, *DecryptionOracle, *EventService, context.Context) {
	fhe := NewCiphertextKeeper()
	oracle := NewDecryptionOracle(fhe)
	k, events, ctx := LedgerKeeperWithBackends(fhe, oracle)
	return k, oracle, events, ctx
}

// LedgerKeeperWithBackends builds a keeper against the supplied
// ciphertext and oracle capabilities; integration tests pass the real
// BGV backend here.
func LedgerKeeperWithBackends(fhe types.CiphertextKeeper, oracle types.DecryptionOracle) (*keeper.Keeper, *EventService, context.Context) {
	events := NewEventService()

	k := keeper.NewKeeper(
		Owner,
		NewMemKVStoreService(),
		log.NewNopLogger(),
		HeaderService{},
		events,
		AddressCodec{},
		fhe,
		oracle,
	)

	ctx := WithHeaderInfo(context.Background(), header.Info{
		Time: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	})

	return k, events, ctx
}
