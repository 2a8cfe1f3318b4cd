// SPDX-License-Identifier: BUSL-1.1
//
// Copyright (C) 2026, LendShield Labs. All rights reserved.

package keeper

import (
	"bytes"
	"context"
	"encoding/hex"
	"strconv"

	"cosmossdk.io/core/event"
	"cosmossdk.io/errors"

	"lendshield.dev/types"
)

var _ types.MsgServer = &msgServer{}

type msgServer struct {
	*Keeper
}

func NewMsgServer(keeper *Keeper) types.MsgServer {
	return &msgServer{Keeper: keeper}
}

// requireOwner gates owner-only operations.
func (m msgServer) requireOwner(authority string) error {
	if authority != m.owner {
		return errors.Wrapf(types.ErrNotOwner, "expected %s, got %s", m.owner, authority)
	}
	return nil
}

// requireNotPaused gates every mutating operation except Unpause.
func (m msgServer) requireNotPaused(ctx context.Context) error {
	paused, err := m.GetPaused(ctx)
	if err != nil {
		return errors.Wrap(err, "unable to get pause flag from state")
	}
	if paused {
		return types.ErrPaused
	}
	return nil
}

// decodeActor converts a bech-encoded actor identity to raw bytes. A
// malformed or empty identity is an input error, not an authorization
// error.
func (m msgServer) decodeActor(actor string) ([]byte, error) {
	if actor == "" {
		return nil, errors.Wrap(types.ErrInvalidParameter, "actor identity cannot be empty")
	}

	bz, err := m.address.StringToBytes(actor)
	if err != nil {
		return nil, errors.Wrapf(types.ErrInvalidParameter, "invalid actor identity %s", actor)
	}
	if len(bz) == 0 || bytes.Equal(bz, make([]byte, len(bz))) {
		return nil, errors.Wrap(types.ErrInvalidParameter, "actor identity cannot be the zero identity")
	}

	return bz, nil
}

// requireProvider gates provider-only operations and returns the
// decoded actor identity.
func (m msgServer) requireProvider(ctx context.Context, actor string) ([]byte, error) {
	bz, err := m.decodeActor(actor)
	if err != nil {
		return nil, err
	}

	authorized, err := m.IsProvider(ctx, bz)
	if err != nil {
		return nil, errors.Wrap(err, "unable to get provider flag from state")
	}
	if !authorized {
		return nil, errors.Wrapf(types.ErrNotProvider, "%s is not authorized", actor)
	}

	return bz, nil
}

// checkCooldown enforces the minimum inter-call interval for one
// action class. The caller records the new timestamp only after the
// guarded operation fully succeeds.
func (m msgServer) checkCooldown(ctx context.Context, last, now int64) error {
	seconds, err := m.GetCooldownSeconds(ctx)
	if err != nil {
		return errors.Wrap(err, "unable to get cooldown interval from state")
	}
	if last > 0 && now < last+seconds {
		return errors.Wrapf(types.ErrCooldownActive, "next call allowed at %d, now %d", last+seconds, now)
	}
	return nil
}

func (m msgServer) AddProvider(ctx context.Context, msg *types.MsgAddProvider) (*types.MsgAddProviderResponse, error) {
	if msg == nil {
		return nil, errors.Wrap(types.ErrInvalidParameter, "message cannot be nil")
	}
	if err := m.requireOwner(msg.Authority); err != nil {
		return nil, err
	}
	if err := m.requireNotPaused(ctx); err != nil {
		return nil, err
	}

	bz, err := m.decodeActor(msg.Provider)
	if err != nil {
		return nil, err
	}

	// Re-adding an already authorized provider is a silent no-op
	// write, not an error.
	if err := m.SetProvider(ctx, bz, true); err != nil {
		return nil, errors.Wrap(err, "unable to set provider flag to state")
	}

	if err := m.event.EventManager(ctx).EmitKV(ctx, types.EventTypeProviderAdded,
		event.Attribute{Key: types.AttributeKeyProvider, Value: msg.Provider},
	); err != nil {
		return nil, errors.Wrap(err, "unable to emit provider added event")
	}

	return &types.MsgAddProviderResponse{}, nil
}

func (m msgServer) RemoveProvider(ctx context.Context, msg *types.MsgRemoveProvider) (*types.MsgRemoveProviderResponse, error) {
	if msg == nil {
		return nil, errors.Wrap(types.ErrInvalidParameter, "message cannot be nil")
	}
	if err := m.requireOwner(msg.Authority); err != nil {
		return nil, err
	}
	if err := m.requireNotPaused(ctx); err != nil {
		return nil, err
	}

	bz, err := m.decodeActor(msg.Provider)
	if err != nil {
		return nil, err
	}

	// Unlike AddProvider, removing an actor that was never authorized
	// is an error.
	authorized, err := m.IsProvider(ctx, bz)
	if err != nil {
		return nil, errors.Wrap(err, "unable to get provider flag from state")
	}
	if !authorized {
		return nil, errors.Wrapf(types.ErrNotProvider, "%s is not authorized", msg.Provider)
	}

	if err := m.DeleteProvider(ctx, bz); err != nil {
		return nil, errors.Wrap(err, "unable to remove provider flag from state")
	}

	if err := m.event.EventManager(ctx).EmitKV(ctx, types.EventTypeProviderRemoved,
		event.Attribute{Key: types.AttributeKeyProvider, Value: msg.Provider},
	); err != nil {
		return nil, errors.Wrap(err, "unable to emit provider removed event")
	}

	return &types.MsgRemoveProviderResponse{}, nil
}

func (m msgServer) SetCooldown(ctx context.Context, msg *types.MsgSetCooldown) (*types.MsgSetCooldownResponse, error) {
	if msg == nil {
		return nil, errors.Wrap(types.ErrInvalidParameter, "message cannot be nil")
	}
	if err := m.requireOwner(msg.Authority); err != nil {
		return nil, err
	}
	if err := m.requireNotPaused(ctx); err != nil {
		return nil, err
	}

	// Zero would disable rate limiting entirely.
	if msg.CooldownSeconds <= 0 {
		return nil, errors.Wrap(types.ErrInvalidParameter, "cooldown interval must be positive")
	}

	previous, err := m.GetCooldownSeconds(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "unable to get cooldown interval from state")
	}

	if err := m.SetCooldownSeconds(ctx, msg.CooldownSeconds); err != nil {
		return nil, errors.Wrap(err, "unable to set cooldown interval to state")
	}

	if err := m.event.EventManager(ctx).EmitKV(ctx, types.EventTypeCooldownUpdated,
		event.Attribute{Key: types.AttributeKeyCooldownSeconds, Value: strconv.FormatInt(msg.CooldownSeconds, 10)},
	); err != nil {
		return nil, errors.Wrap(err, "unable to emit cooldown updated event")
	}

	return &types.MsgSetCooldownResponse{PreviousCooldownSeconds: previous}, nil
}

func (m msgServer) Pause(ctx context.Context, msg *types.MsgPause) (*types.MsgPauseResponse, error) {
	if msg == nil {
		return nil, errors.Wrap(types.ErrInvalidParameter, "message cannot be nil")
	}
	if err := m.requireOwner(msg.Authority); err != nil {
		return nil, err
	}
	if err := m.requireNotPaused(ctx); err != nil {
		return nil, err
	}

	if err := m.SetPaused(ctx, true); err != nil {
		return nil, errors.Wrap(err, "unable to set pause flag to state")
	}

	if err := m.event.EventManager(ctx).EmitKV(ctx, types.EventTypeLedgerPaused,
		event.Attribute{Key: types.AttributeKeyOwner, Value: msg.Authority},
	); err != nil {
		return nil, errors.Wrap(err, "unable to emit paused event")
	}

	return &types.MsgPauseResponse{}, nil
}

// Unpause is the sole operation allowed while paused, otherwise a
// paused ledger could never recover.
func (m msgServer) Unpause(ctx context.Context, msg *types.MsgUnpause) (*types.MsgUnpauseResponse, error) {
	if msg == nil {
		return nil, errors.Wrap(types.ErrInvalidParameter, "message cannot be nil")
	}
	if err := m.requireOwner(msg.Authority); err != nil {
		return nil, err
	}

	paused, err := m.GetPaused(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "unable to get pause flag from state")
	}
	if !paused {
		return nil, errors.Wrap(types.ErrInvalidParameter, "ledger is not paused")
	}

	if err := m.SetPaused(ctx, false); err != nil {
		return nil, errors.Wrap(err, "unable to set pause flag to state")
	}

	if err := m.event.EventManager(ctx).EmitKV(ctx, types.EventTypeLedgerUnpaused,
		event.Attribute{Key: types.AttributeKeyOwner, Value: msg.Authority},
	); err != nil {
		return nil, errors.Wrap(err, "unable to emit unpaused event")
	}

	return &types.MsgUnpauseResponse{}, nil
}

func (m msgServer) OpenBatch(ctx context.Context, msg *types.MsgOpenBatch) (*types.MsgOpenBatchResponse, error) {
	if msg == nil {
		return nil, errors.Wrap(types.ErrInvalidParameter, "message cannot be nil")
	}
	if err := m.requireOwner(msg.Authority); err != nil {
		return nil, err
	}
	if err := m.requireNotPaused(ctx); err != nil {
		return nil, err
	}

	id, err := m.GetCurrentBatchID(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "unable to get current batch id from state")
	}

	open, err := m.GetBatchOpen(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "unable to get batch open flag from state")
	}

	// Opening while a batch is already open advances to a fresh id,
	// close-then-open in a single step. Ids are never reused.
	if open {
		id++
	}

	if err := m.SetCurrentBatchID(ctx, id); err != nil {
		return nil, errors.Wrap(err, "unable to set current batch id to state")
	}
	if err := m.SetBatchOpen(ctx, true); err != nil {
		return nil, errors.Wrap(err, "unable to set batch open flag to state")
	}

	if err := m.event.EventManager(ctx).EmitKV(ctx, types.EventTypeBatchOpened,
		event.Attribute{Key: types.AttributeKeyBatchId, Value: strconv.FormatUint(id, 10)},
	); err != nil {
		return nil, errors.Wrap(err, "unable to emit batch opened event")
	}

	return &types.MsgOpenBatchResponse{BatchId: id}, nil
}

func (m msgServer) CloseBatch(ctx context.Context, msg *types.MsgCloseBatch) (*types.MsgCloseBatchResponse, error) {
	if msg == nil {
		return nil, errors.Wrap(types.ErrInvalidParameter, "message cannot be nil")
	}
	if err := m.requireOwner(msg.Authority); err != nil {
		return nil, err
	}
	if err := m.requireNotPaused(ctx); err != nil {
		return nil, err
	}

	open, err := m.GetBatchOpen(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "unable to get batch open flag from state")
	}
	if !open {
		return nil, types.ErrBatchClosed
	}

	id, err := m.GetCurrentBatchID(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "unable to get current batch id from state")
	}
	count, err := m.GetBatchPositionCount(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "unable to get batch position count from state")
	}

	// Closing retains every submitted position and pre-advances the
	// counter so the next open gets a fresh id. Ids are never reused.
	if err := m.SetBatchOpen(ctx, false); err != nil {
		return nil, errors.Wrap(err, "unable to set batch open flag to state")
	}
	if err := m.SetCurrentBatchID(ctx, id+1); err != nil {
		return nil, errors.Wrap(err, "unable to advance current batch id")
	}

	if err := m.event.EventManager(ctx).EmitKV(ctx, types.EventTypeBatchClosed,
		event.Attribute{Key: types.AttributeKeyBatchId, Value: strconv.FormatUint(id, 10)},
		event.Attribute{Key: types.AttributeKeyPositionIndex, Value: strconv.FormatUint(count, 10)},
	); err != nil {
		return nil, errors.Wrap(err, "unable to emit batch closed event")
	}

	return &types.MsgCloseBatchResponse{BatchId: id, Positions: count}, nil
}

func (m msgServer) SubmitPosition(ctx context.Context, msg *types.MsgSubmitPosition) (*types.MsgSubmitPositionResponse, error) {
	if msg == nil {
		return nil, errors.Wrap(types.ErrInvalidParameter, "message cannot be nil")
	}
	if err := m.requireNotPaused(ctx); err != nil {
		return nil, err
	}

	actor, err := m.requireProvider(ctx, msg.Provider)
	if err != nil {
		return nil, err
	}

	now := m.header.GetHeaderInfo(ctx).Time.Unix()
	last, err := m.GetLastSubmission(ctx, actor)
	if err != nil {
		return nil, errors.Wrap(err, "unable to get last submission time from state")
	}
	if err := m.checkCooldown(ctx, last, now); err != nil {
		return nil, err
	}

	open, err := m.GetBatchOpen(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "unable to get batch open flag from state")
	}
	if !open {
		return nil, types.ErrBatchClosed
	}

	if !m.fhe.IsInitialized(msg.LoanAmount) {
		return nil, errors.Wrap(types.ErrNotInitialized, "loan amount")
	}
	if !m.fhe.IsInitialized(msg.CollateralAmount) {
		return nil, errors.Wrap(types.ErrNotInitialized, "collateral amount")
	}

	batchID, err := m.GetCurrentBatchID(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "unable to get current batch id from state")
	}

	index, err := m.AppendBatchPosition(ctx, batchID, types.Position{
		LoanAmount:       msg.LoanAmount,
		CollateralAmount: msg.CollateralAmount,
	})
	if err != nil {
		return nil, errors.Wrap(err, "unable to append position to state")
	}

	if err := m.SetLastSubmission(ctx, actor, now); err != nil {
		return nil, errors.Wrap(err, "unable to record submission time to state")
	}

	// The event carries a digest of the two ciphertext handles for
	// off-chain correlation, never the plaintext.
	digest := positionDigest(m.fhe, msg.LoanAmount, msg.CollateralAmount)
	if err := m.event.EventManager(ctx).EmitKV(ctx, types.EventTypePositionSubmitted,
		event.Attribute{Key: types.AttributeKeyProvider, Value: msg.Provider},
		event.Attribute{Key: types.AttributeKeyBatchId, Value: strconv.FormatUint(batchID, 10)},
		event.Attribute{Key: types.AttributeKeyPositionIndex, Value: strconv.FormatUint(index, 10)},
		event.Attribute{Key: types.AttributeKeyPositionDigest, Value: hex.EncodeToString(digest)},
	); err != nil {
		return nil, errors.Wrap(err, "unable to emit position submitted event")
	}

	return &types.MsgSubmitPositionResponse{BatchId: batchID, Index: index}, nil
}

func (m msgServer) RequestAggregation(ctx context.Context, msg *types.MsgRequestAggregation) (*types.MsgRequestAggregationResponse, error) {
	if msg == nil {
		return nil, errors.Wrap(types.ErrInvalidParameter, "message cannot be nil")
	}
	if err := m.requireNotPaused(ctx); err != nil {
		return nil, err
	}

	actor, err := m.requireProvider(ctx, msg.Provider)
	if err != nil {
		return nil, err
	}

	now := m.header.GetHeaderInfo(ctx).Time.Unix()
	last, err := m.GetLastDecryptRequest(ctx, actor)
	if err != nil {
		return nil, errors.Wrap(err, "unable to get last aggregation request time from state")
	}
	if err := m.checkCooldown(ctx, last, now); err != nil {
		return nil, err
	}

	requestID, fingerprint, err := m.Keeper.requestAggregation(ctx, msg.BatchId)
	if err != nil {
		return nil, err
	}

	if err := m.SetLastDecryptRequest(ctx, actor, now); err != nil {
		return nil, errors.Wrap(err, "unable to record aggregation request time to state")
	}

	if err := m.event.EventManager(ctx).EmitKV(ctx, types.EventTypeDecryptionRequested,
		event.Attribute{Key: types.AttributeKeyRequestId, Value: strconv.FormatUint(requestID, 10)},
		event.Attribute{Key: types.AttributeKeyBatchId, Value: strconv.FormatUint(msg.BatchId, 10)},
		event.Attribute{Key: types.AttributeKeyFingerprint, Value: hex.EncodeToString(fingerprint)},
	); err != nil {
		return nil, errors.Wrap(err, "unable to emit decryption requested event")
	}

	return &types.MsgRequestAggregationResponse{RequestId: requestID, Fingerprint: fingerprint}, nil
}

func (m msgServer) SubmitDecryptionResult(ctx context.Context, msg *types.MsgSubmitDecryptionResult) (*types.MsgSubmitDecryptionResultResponse, error) {
	if msg == nil {
		return nil, errors.Wrap(types.ErrInvalidParameter, "message cannot be nil")
	}

	return m.Keeper.OnDecryptionResult(ctx, msg.RequestId, msg.Cleartext, msg.Proof)
}
