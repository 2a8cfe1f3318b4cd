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
	"github.com/bcp-innovations/hyperlane-cosmos/util"

	"lendshield.dev/types"
)

// OnDecryptionResult reconciles an out-of-band decryption result
// against the exact ciphertext state that produced the request. The
// caller's identity carries no authority here; correctness rests
// entirely on the stored context, the fingerprint re-derivation, and
// the oracle proof.
//
// Check order is fixed: replay, then state drift, then proof. Every
// failure is a terminal rejection of this one delivery with no state
// change; the context stays pending so a well-formed delivery can be
// retried later, except after a replay, where the result was already
// consumed.
func (k *Keeper) OnDecryptionResult(ctx context.Context, requestID uint64, cleartext, proof []byte) (*types.MsgSubmitDecryptionResultResponse, error) {
	decryptionContext, found, err := k.GetDecryptionContext(ctx, requestID)
	if err != nil {
		return nil, errors.Wrap(err, "unable to get decryption context from state")
	}
	if !found {
		return nil, errors.Wrapf(types.ErrReplayAttempt, "unknown request %d", requestID)
	}
	if decryptionContext.Processed {
		return nil, errors.Wrapf(types.ErrReplayAttempt, "request %d already consumed", requestID)
	}

	// Re-derive the fingerprint from the batch as it stands now. Any
	// position appended since the request changes the aggregate and
	// therefore the fingerprint, rejecting the stale delivery.
	current, err := k.deriveBatchFingerprint(ctx, decryptionContext.BatchId)
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(current, decryptionContext.Fingerprint) {
		k.logger.Warn("rejecting stale decryption result",
			"request_id", requestID,
			"batch_id", decryptionContext.BatchId,
			"stored_fingerprint", hex.EncodeToString(decryptionContext.Fingerprint),
			"current_fingerprint", hex.EncodeToString(current),
		)
		return nil, errors.Wrapf(types.ErrStateMismatch, "batch %d moved underneath request %d", decryptionContext.BatchId, requestID)
	}

	if !k.oracle.VerifyProof(requestID, cleartext, proof) {
		return nil, errors.Wrapf(types.ErrInvalidProof, "request %d", requestID)
	}

	totalLoan, totalCollateral, err := types.DecodeCleartext(cleartext)
	if err != nil {
		return nil, errors.Wrap(types.ErrInvalidParameter, err.Error())
	}

	decryptionContext.Processed = true
	if err := k.SetDecryptionContext(ctx, requestID, decryptionContext); err != nil {
		return nil, errors.Wrap(err, "unable to mark decryption context processed")
	}

	if err := k.event.EventManager(ctx).EmitKV(ctx, types.EventTypeDecryptionCompleted,
		event.Attribute{Key: types.AttributeKeyRequestId, Value: strconv.FormatUint(requestID, 10)},
		event.Attribute{Key: types.AttributeKeyBatchId, Value: strconv.FormatUint(decryptionContext.BatchId, 10)},
		event.Attribute{Key: types.AttributeKeyTotalLoan, Value: totalLoan.String()},
		event.Attribute{Key: types.AttributeKeyTotalCollateral, Value: totalCollateral.String()},
	); err != nil {
		return nil, errors.Wrap(err, "unable to emit decryption completed event")
	}

	return &types.MsgSubmitDecryptionResultResponse{
		BatchId:         decryptionContext.BatchId,
		TotalLoan:       totalLoan,
		TotalCollateral: totalCollateral,
	}, nil
}

// OracleResultHandler adapts decryption results delivered as
// cross-chain messages into the ledger's result callback.
type OracleResultHandler struct {
	keeper *Keeper
}

// NewOracleResultHandler creates the message handler for
// oracle-delivered decryption results.
func NewOracleResultHandler(k *Keeper) *OracleResultHandler {
	return &OracleResultHandler{keeper: k}
}

// Handle processes an incoming message carrying a decryption result.
// The sender is logged for audit but grants no authority; a forged
// message fails the proof check like any other bad delivery.
func (h *OracleResultHandler) Handle(ctx context.Context, origin uint32, sender util.HexAddress, message []byte) error {
	payload, err := types.ParseDecryptionResultPayload(message)
	if err != nil {
		return errors.Wrap(types.ErrInvalidParameter, err.Error())
	}

	h.keeper.logger.Info("delivering decryption result",
		"request_id", payload.RequestId,
		"origin", origin,
		"sender", sender.String(),
	)

	_, err = h.keeper.OnDecryptionResult(ctx, payload.RequestId, payload.Cleartext, payload.Proof)
	return err
}
