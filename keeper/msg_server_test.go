// SPDX-License-Identifier: BUSL-1.1
//
// Copyright (C) 2026, LendShield Labs. All rights reserved.

package keeper_test

import (
	"context"
	"encoding/hex"
	"testing"
	"time"

	"cosmossdk.io/core/header"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lendshield.dev/keeper"
	"lendshield.dev/types"
	"lendshield.dev/utils"
	"lendshield.dev/utils/mocks"
)

var testStart = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func setupLedgerTest(t *testing.T) (*keeper.Keeper, types.MsgServer, *mocks.CiphertextKeeper, *mocks.DecryptionOracle, *mocks.EventService, context.Context) {
	t.Helper()

	fhe := mocks.NewCiphertextKeeper()
	oracle := mocks.NewDecryptionOracle(fhe)
	k, events, ctx := mocks.LedgerKeeperWithBackends(fhe, oracle)

	return k, keeper.NewMsgServer(k), fhe, oracle, events, ctx
}

// at returns the context rebased to testStart plus the given offset.
func at(ctx context.Context, offset time.Duration) context.Context {
	return mocks.WithHeaderInfo(ctx, header.Info{Time: testStart.Add(offset)})
}

func authorizeProvider(t *testing.T, server types.MsgServer, ctx context.Context) utils.Account {
	t.Helper()

	provider := utils.TestAccount()
	_, err := server.AddProvider(ctx, &types.MsgAddProvider{
		Authority: mocks.Owner,
		Provider:  provider.Address,
	})
	require.NoError(t, err)

	return provider
}

func openBatch(t *testing.T, server types.MsgServer, ctx context.Context) uint64 {
	t.Helper()

	res, err := server.OpenBatch(ctx, &types.MsgOpenBatch{Authority: mocks.Owner})
	require.NoError(t, err)

	return res.BatchId
}

func TestAddProvider(t *testing.T) {
	k, server, _, _, events, ctx := setupLedgerTest(t)
	provider := utils.TestAccount()

	// ACT: Attempt to add a provider with an invalid signer.
	_, err := server.AddProvider(ctx, &types.MsgAddProvider{
		Authority: provider.Address,
		Provider:  provider.Address,
	})
	// ASSERT: The action should've failed due to invalid signer.
	assert.ErrorIs(t, err, types.ErrNotOwner)

	// ACT: Attempt to add a provider with an empty identity.
	_, err = server.AddProvider(ctx, &types.MsgAddProvider{
		Authority: mocks.Owner,
		Provider:  "",
	})
	// ASSERT: The action should've failed due to empty identity.
	assert.ErrorIs(t, err, types.ErrInvalidParameter)

	// ACT: Attempt to add a provider with a malformed identity.
	_, err = server.AddProvider(ctx, &types.MsgAddProvider{
		Authority: mocks.Owner,
		Provider:  "not-an-address",
	})
	// ASSERT: The action should've failed due to malformed identity.
	assert.ErrorIs(t, err, types.ErrInvalidParameter)

	// ACT: Attempt to add a provider with the zero identity.
	_, err = server.AddProvider(ctx, &types.MsgAddProvider{
		Authority: mocks.Owner,
		Provider:  hex.EncodeToString(make([]byte, 20)),
	})
	// ASSERT: The action should've failed due to the zero identity.
	assert.ErrorIs(t, err, types.ErrInvalidParameter)

	// ACT: Add a valid provider.
	_, err = server.AddProvider(ctx, &types.MsgAddProvider{
		Authority: mocks.Owner,
		Provider:  provider.Address,
	})
	// ASSERT: The action should've succeeded.
	require.NoError(t, err)
	authorized, err := k.IsProvider(ctx, provider.Bytes)
	require.NoError(t, err)
	assert.True(t, authorized)
	assert.Len(t, events.EventsOfType(types.EventTypeProviderAdded), 1)

	// ACT: Add the same provider a second time.
	_, err = server.AddProvider(ctx, &types.MsgAddProvider{
		Authority: mocks.Owner,
		Provider:  provider.Address,
	})
	// ASSERT: Re-adding is idempotent, not an error.
	require.NoError(t, err)
	authorized, err = k.IsProvider(ctx, provider.Bytes)
	require.NoError(t, err)
	assert.True(t, authorized)
}

func TestRemoveProvider(t *testing.T) {
	k, server, _, _, events, ctx := setupLedgerTest(t)
	provider := authorizeProvider(t, server, ctx)
	stranger := utils.TestAccount()

	// ACT: Attempt to remove a provider with an invalid signer.
	_, err := server.RemoveProvider(ctx, &types.MsgRemoveProvider{
		Authority: stranger.Address,
		Provider:  provider.Address,
	})
	// ASSERT: The action should've failed due to invalid signer.
	assert.ErrorIs(t, err, types.ErrNotOwner)

	// ACT: Attempt to remove an identity that was never authorized.
	_, err = server.RemoveProvider(ctx, &types.MsgRemoveProvider{
		Authority: mocks.Owner,
		Provider:  stranger.Address,
	})
	// ASSERT: The action should've failed, removal is not idempotent.
	assert.ErrorIs(t, err, types.ErrNotProvider)

	// ACT: Remove the authorized provider.
	_, err = server.RemoveProvider(ctx, &types.MsgRemoveProvider{
		Authority: mocks.Owner,
		Provider:  provider.Address,
	})
	// ASSERT: The action should've succeeded.
	require.NoError(t, err)
	authorized, err := k.IsProvider(ctx, provider.Bytes)
	require.NoError(t, err)
	assert.False(t, authorized)
	assert.Len(t, events.EventsOfType(types.EventTypeProviderRemoved), 1)

	// ACT: Remove the same provider a second time.
	_, err = server.RemoveProvider(ctx, &types.MsgRemoveProvider{
		Authority: mocks.Owner,
		Provider:  provider.Address,
	})
	// ASSERT: The action should've failed, the authorization is gone.
	assert.ErrorIs(t, err, types.ErrNotProvider)
}

func TestSetCooldown(t *testing.T) {
	_, server, _, _, events, ctx := setupLedgerTest(t)
	provider := utils.TestAccount()

	// ACT: Attempt to set the cooldown with an invalid signer.
	_, err := server.SetCooldown(ctx, &types.MsgSetCooldown{
		Authority:       provider.Address,
		CooldownSeconds: 30,
	})
	// ASSERT: The action should've failed due to invalid signer.
	assert.ErrorIs(t, err, types.ErrNotOwner)

	// ACT: Attempt to set a zero cooldown.
	_, err = server.SetCooldown(ctx, &types.MsgSetCooldown{
		Authority:       mocks.Owner,
		CooldownSeconds: 0,
	})
	// ASSERT: The action should've failed, zero disables rate limiting.
	assert.ErrorIs(t, err, types.ErrInvalidParameter)

	// ACT: Attempt to set a negative cooldown.
	_, err = server.SetCooldown(ctx, &types.MsgSetCooldown{
		Authority:       mocks.Owner,
		CooldownSeconds: -1,
	})
	// ASSERT: The action should've failed due to the negative interval.
	assert.ErrorIs(t, err, types.ErrInvalidParameter)

	// ACT: Set a valid cooldown.
	res, err := server.SetCooldown(ctx, &types.MsgSetCooldown{
		Authority:       mocks.Owner,
		CooldownSeconds: 30,
	})
	// ASSERT: The action should've succeeded, returning the default.
	require.NoError(t, err)
	assert.Equal(t, types.DefaultCooldownSeconds, res.PreviousCooldownSeconds)
	assert.Len(t, events.EventsOfType(types.EventTypeCooldownUpdated), 1)

	// ACT: Update the cooldown again.
	res, err = server.SetCooldown(ctx, &types.MsgSetCooldown{
		Authority:       mocks.Owner,
		CooldownSeconds: 90,
	})
	// ASSERT: The previous interval is echoed back.
	require.NoError(t, err)
	assert.Equal(t, int64(30), res.PreviousCooldownSeconds)
}

func TestPauseAndUnpause(t *testing.T) {
	_, server, fhe, _, events, ctx := setupLedgerTest(t)
	provider := authorizeProvider(t, server, ctx)
	openBatch(t, server, ctx)

	// ACT: Attempt to pause with an invalid signer.
	_, err := server.Pause(ctx, &types.MsgPause{Authority: provider.Address})
	// ASSERT: The action should've failed due to invalid signer.
	assert.ErrorIs(t, err, types.ErrNotOwner)

	// ACT: Attempt to unpause a ledger that is not paused.
	_, err = server.Unpause(ctx, &types.MsgUnpause{Authority: mocks.Owner})
	// ASSERT: The action should've failed, there is nothing to resume.
	assert.ErrorIs(t, err, types.ErrInvalidParameter)

	// ACT: Pause the ledger.
	_, err = server.Pause(ctx, &types.MsgPause{Authority: mocks.Owner})
	// ASSERT: The action should've succeeded.
	require.NoError(t, err)
	assert.Len(t, events.EventsOfType(types.EventTypeLedgerPaused), 1)

	// ACT: Attempt every mutating operation while paused.
	_, err = server.Pause(ctx, &types.MsgPause{Authority: mocks.Owner})
	assert.ErrorIs(t, err, types.ErrPaused)
	_, err = server.AddProvider(ctx, &types.MsgAddProvider{
		Authority: mocks.Owner,
		Provider:  provider.Address,
	})
	assert.ErrorIs(t, err, types.ErrPaused)
	_, err = server.RemoveProvider(ctx, &types.MsgRemoveProvider{
		Authority: mocks.Owner,
		Provider:  provider.Address,
	})
	assert.ErrorIs(t, err, types.ErrPaused)
	_, err = server.SetCooldown(ctx, &types.MsgSetCooldown{
		Authority:       mocks.Owner,
		CooldownSeconds: 30,
	})
	assert.ErrorIs(t, err, types.ErrPaused)
	_, err = server.OpenBatch(ctx, &types.MsgOpenBatch{Authority: mocks.Owner})
	assert.ErrorIs(t, err, types.ErrPaused)
	_, err = server.CloseBatch(ctx, &types.MsgCloseBatch{Authority: mocks.Owner})
	assert.ErrorIs(t, err, types.ErrPaused)
	_, err = server.SubmitPosition(ctx, &types.MsgSubmitPosition{
		Provider:         provider.Address,
		LoanAmount:       fhe.EncryptUint32(100),
		CollateralAmount: fhe.EncryptUint32(150),
	})
	assert.ErrorIs(t, err, types.ErrPaused)
	_, err = server.RequestAggregation(ctx, &types.MsgRequestAggregation{
		Provider: provider.Address,
		BatchId:  1,
	})
	assert.ErrorIs(t, err, types.ErrPaused)

	// ACT: Attempt to unpause with an invalid signer.
	_, err = server.Unpause(ctx, &types.MsgUnpause{Authority: provider.Address})
	// ASSERT: The action should've failed due to invalid signer.
	assert.ErrorIs(t, err, types.ErrNotOwner)

	// ACT: Unpause the ledger.
	_, err = server.Unpause(ctx, &types.MsgUnpause{Authority: mocks.Owner})
	// ASSERT: The action should've succeeded and operations resume.
	require.NoError(t, err)
	assert.Len(t, events.EventsOfType(types.EventTypeLedgerUnpaused), 1)
	_, err = server.SubmitPosition(ctx, &types.MsgSubmitPosition{
		Provider:         provider.Address,
		LoanAmount:       fhe.EncryptUint32(100),
		CollateralAmount: fhe.EncryptUint32(150),
	})
	require.NoError(t, err)
}

func TestBatchLifecycle(t *testing.T) {
	k, server, _, _, events, ctx := setupLedgerTest(t)
	queries := keeper.NewQueryServer(k)
	provider := utils.TestAccount()

	// ACT: Attempt to open a batch with an invalid signer.
	_, err := server.OpenBatch(ctx, &types.MsgOpenBatch{Authority: provider.Address})
	// ASSERT: The action should've failed due to invalid signer.
	assert.ErrorIs(t, err, types.ErrNotOwner)

	// ACT: Attempt to close before any batch was opened.
	_, err = server.CloseBatch(ctx, &types.MsgCloseBatch{Authority: mocks.Owner})
	// ASSERT: The action should've failed, nothing is open.
	assert.ErrorIs(t, err, types.ErrBatchClosed)

	// ACT: Open the first batch.
	res, err := server.OpenBatch(ctx, &types.MsgOpenBatch{Authority: mocks.Owner})
	// ASSERT: Identifiers start at one.
	require.NoError(t, err)
	assert.Equal(t, uint64(1), res.BatchId)
	current, err := queries.CurrentBatch(ctx, &types.QueryCurrentBatchRequest{})
	require.NoError(t, err)
	assert.True(t, current.Open)
	assert.Equal(t, uint64(1), current.BatchId)

	// ACT: Open again while batch one is still open.
	res, err = server.OpenBatch(ctx, &types.MsgOpenBatch{Authority: mocks.Owner})
	// ASSERT: A fresh identifier is assigned, close-then-open in one step.
	require.NoError(t, err)
	assert.Equal(t, uint64(2), res.BatchId)
	assert.Len(t, events.EventsOfType(types.EventTypeBatchOpened), 2)

	// ACT: Close batch two.
	closeRes, err := server.CloseBatch(ctx, &types.MsgCloseBatch{Authority: mocks.Owner})
	// ASSERT: The close reports the batch it sealed.
	require.NoError(t, err)
	assert.Equal(t, uint64(2), closeRes.BatchId)
	assert.Equal(t, uint64(0), closeRes.Positions)
	current, err = queries.CurrentBatch(ctx, &types.QueryCurrentBatchRequest{})
	require.NoError(t, err)
	assert.False(t, current.Open)

	// ACT: Close again.
	_, err = server.CloseBatch(ctx, &types.MsgCloseBatch{Authority: mocks.Owner})
	// ASSERT: The action should've failed, the batch is already closed.
	assert.ErrorIs(t, err, types.ErrBatchClosed)

	// ACT: Reopen after the close.
	res, err = server.OpenBatch(ctx, &types.MsgOpenBatch{Authority: mocks.Owner})
	// ASSERT: Identifier two is never reused.
	require.NoError(t, err)
	assert.Equal(t, uint64(3), res.BatchId)
}

func TestSubmitPosition(t *testing.T) {
	k, server, fhe, _, events, ctx := setupLedgerTest(t)
	queries := keeper.NewQueryServer(k)
	provider := authorizeProvider(t, server, ctx)
	stranger := utils.TestAccount()

	loan := fhe.EncryptUint32(100)
	collateral := fhe.EncryptUint32(150)

	// ACT: Attempt to submit as an unauthorized identity.
	_, err := server.SubmitPosition(ctx, &types.MsgSubmitPosition{
		Provider:         stranger.Address,
		LoanAmount:       loan,
		CollateralAmount: collateral,
	})
	// ASSERT: The action should've failed due to missing authorization.
	assert.ErrorIs(t, err, types.ErrNotProvider)

	// ACT: Attempt to submit while no batch is open.
	_, err = server.SubmitPosition(ctx, &types.MsgSubmitPosition{
		Provider:         provider.Address,
		LoanAmount:       loan,
		CollateralAmount: collateral,
	})
	// ASSERT: The action should've failed due to the closed batch.
	assert.ErrorIs(t, err, types.ErrBatchClosed)

	batchID := openBatch(t, server, ctx)

	// ACT: Attempt to submit an uninitialized loan ciphertext.
	_, err = server.SubmitPosition(ctx, &types.MsgSubmitPosition{
		Provider:         provider.Address,
		LoanAmount:       types.Ciphertext("garbage"),
		CollateralAmount: collateral,
	})
	// ASSERT: The action should've failed due to the malformed input.
	assert.ErrorIs(t, err, types.ErrNotInitialized)

	// ACT: Attempt to submit an uninitialized collateral ciphertext.
	_, err = server.SubmitPosition(ctx, &types.MsgSubmitPosition{
		Provider:         provider.Address,
		LoanAmount:       loan,
		CollateralAmount: nil,
	})
	// ASSERT: The action should've failed due to the malformed input.
	assert.ErrorIs(t, err, types.ErrNotInitialized)

	// ACT: Submit a well-formed position.
	res, err := server.SubmitPosition(ctx, &types.MsgSubmitPosition{
		Provider:         provider.Address,
		LoanAmount:       loan,
		CollateralAmount: collateral,
	})
	// ASSERT: The action should've succeeded at index zero.
	require.NoError(t, err)
	assert.Equal(t, batchID, res.BatchId)
	assert.Equal(t, uint64(0), res.Index)
	batch, err := queries.Batch(ctx, &types.QueryBatchRequest{BatchId: batchID})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), batch.Positions)

	// ASSERT: The submission event never leaks the amounts.
	submitted := events.EventsOfType(types.EventTypePositionSubmitted)
	require.Len(t, submitted, 1)
	for _, attribute := range submitted[0].Attributes {
		assert.NotEqual(t, "100", attribute.Value)
		assert.NotEqual(t, "150", attribute.Value)
	}

	// ACT: Submit a second position from a second provider.
	other := authorizeProvider(t, server, ctx)
	res, err = server.SubmitPosition(ctx, &types.MsgSubmitPosition{
		Provider:         other.Address,
		LoanAmount:       fhe.EncryptUint32(50),
		CollateralAmount: fhe.EncryptUint32(80),
	})
	// ASSERT: Indices grow densely in submission order.
	require.NoError(t, err)
	assert.Equal(t, uint64(1), res.Index)
}

func TestSubmissionCooldown(t *testing.T) {
	_, server, fhe, _, _, ctx := setupLedgerTest(t)
	provider := authorizeProvider(t, server, ctx)
	openBatch(t, server, ctx)

	submit := func(ctx context.Context, loan, collateral uint32) error {
		_, err := server.SubmitPosition(ctx, &types.MsgSubmitPosition{
			Provider:         provider.Address,
			LoanAmount:       fhe.EncryptUint32(loan),
			CollateralAmount: fhe.EncryptUint32(collateral),
		})
		return err
	}

	// ACT: Submit twice within the default 60 second interval.
	require.NoError(t, submit(ctx, 100, 150))
	err := submit(at(ctx, 59*time.Second), 50, 80)
	// ASSERT: The second submission should've been rate limited.
	assert.ErrorIs(t, err, types.ErrCooldownActive)

	// ACT: Submit again exactly at the interval boundary.
	// ASSERT: The boundary itself is allowed.
	require.NoError(t, submit(at(ctx, 60*time.Second), 50, 80))

	// ACT: Submit from a different provider within the interval.
	other := authorizeProvider(t, server, ctx)
	_, err = server.SubmitPosition(at(ctx, 61*time.Second), &types.MsgSubmitPosition{
		Provider:         other.Address,
		LoanAmount:       fhe.EncryptUint32(10),
		CollateralAmount: fhe.EncryptUint32(20),
	})
	// ASSERT: Cooldowns are tracked per actor.
	require.NoError(t, err)
}

func TestFailedSubmissionKeepsCooldown(t *testing.T) {
	_, server, fhe, _, _, ctx := setupLedgerTest(t)
	provider := authorizeProvider(t, server, ctx)
	openBatch(t, server, ctx)

	// ARRANGE: A successful submission at the start of the window.
	_, err := server.SubmitPosition(ctx, &types.MsgSubmitPosition{
		Provider:         provider.Address,
		LoanAmount:       fhe.EncryptUint32(100),
		CollateralAmount: fhe.EncryptUint32(150),
	})
	require.NoError(t, err)

	// ARRANGE: The owner closes the batch underneath the provider.
	_, err = server.CloseBatch(ctx, &types.MsgCloseBatch{Authority: mocks.Owner})
	require.NoError(t, err)

	// ACT: Submit after the interval, against the closed batch.
	later := at(ctx, 2*time.Minute)
	_, err = server.SubmitPosition(later, &types.MsgSubmitPosition{
		Provider:         provider.Address,
		LoanAmount:       fhe.EncryptUint32(50),
		CollateralAmount: fhe.EncryptUint32(80),
	})
	// ASSERT: The submission fails on the closed batch.
	assert.ErrorIs(t, err, types.ErrBatchClosed)

	// ACT: Reopen and submit again at the very same time.
	openBatch(t, server, later)
	_, err = server.SubmitPosition(later, &types.MsgSubmitPosition{
		Provider:         provider.Address,
		LoanAmount:       fhe.EncryptUint32(50),
		CollateralAmount: fhe.EncryptUint32(80),
	})
	// ASSERT: The failed attempt consumed no cooldown.
	require.NoError(t, err)
}

func TestQueries(t *testing.T) {
	k, server, _, _, _, ctx := setupLedgerTest(t)
	queries := keeper.NewQueryServer(k)
	provider := authorizeProvider(t, server, ctx)

	// ACT: Query the ledger parameters.
	params, err := queries.Params(ctx, &types.QueryParamsRequest{})
	// ASSERT: Defaults are reported before any configuration.
	require.NoError(t, err)
	assert.Equal(t, mocks.Owner, params.Owner)
	assert.False(t, params.Paused)
	assert.Equal(t, types.DefaultCooldownSeconds, params.CooldownSeconds)

	// ACT: Query both a known and an unknown provider.
	known, err := queries.Provider(ctx, &types.QueryProviderRequest{Address: provider.Address})
	require.NoError(t, err)
	unknown, err := queries.Provider(ctx, &types.QueryProviderRequest{Address: utils.TestAccount().Address})
	require.NoError(t, err)
	// ASSERT: Only the authorized identity is reported as such.
	assert.True(t, known.Authorized)
	assert.False(t, unknown.Authorized)

	// ACT: Query a decryption context that does not exist.
	_, err = queries.DecryptionContext(ctx, &types.QueryDecryptionContextRequest{RequestId: 7})
	// ASSERT: The query should've failed.
	require.Error(t, err)

	// ACT: Query with nil requests.
	// ASSERT: Every nil request is rejected.
	_, err = queries.Params(ctx, nil)
	assert.Error(t, err)
	_, err = queries.Provider(ctx, nil)
	assert.Error(t, err)
	_, err = queries.CurrentBatch(ctx, nil)
	assert.Error(t, err)
	_, err = queries.Batch(ctx, nil)
	assert.Error(t, err)
	_, err = queries.DecryptionContext(ctx, nil)
	assert.Error(t, err)
}
