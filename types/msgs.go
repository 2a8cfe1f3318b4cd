// SPDX-License-Identifier: BUSL-1.1
//
// Copyright (C) 2026, LendShield Labs. All rights reserved.

package types

import (
	"context"

	"cosmossdk.io/math"
)

// MsgServer is the ledger's transactional surface. Every method is
// applied as one indivisible step against the shared state: all
// preconditions are checked before any write, so a failed call leaves
// no partial state behind.
type MsgServer interface {
	// Owner-only access control.
	AddProvider(ctx context.Context, msg *MsgAddProvider) (*MsgAddProviderResponse, error)
	RemoveProvider(ctx context.Context, msg *MsgRemoveProvider) (*MsgRemoveProviderResponse, error)
	SetCooldown(ctx context.Context, msg *MsgSetCooldown) (*MsgSetCooldownResponse, error)
	Pause(ctx context.Context, msg *MsgPause) (*MsgPauseResponse, error)
	Unpause(ctx context.Context, msg *MsgUnpause) (*MsgUnpauseResponse, error)

	// Owner-only batch lifecycle.
	OpenBatch(ctx context.Context, msg *MsgOpenBatch) (*MsgOpenBatchResponse, error)
	CloseBatch(ctx context.Context, msg *MsgCloseBatch) (*MsgCloseBatchResponse, error)

	// Provider operations.
	SubmitPosition(ctx context.Context, msg *MsgSubmitPosition) (*MsgSubmitPositionResponse, error)
	RequestAggregation(ctx context.Context, msg *MsgRequestAggregation) (*MsgRequestAggregationResponse, error)

	// Oracle callback. Callable by anyone; authority is carried by
	// the proof, not the caller identity.
	SubmitDecryptionResult(ctx context.Context, msg *MsgSubmitDecryptionResult) (*MsgSubmitDecryptionResultResponse, error)
}

type MsgAddProvider struct {
	Authority string
	Provider  string
}

type MsgAddProviderResponse struct{}

type MsgRemoveProvider struct {
	Authority string
	Provider  string
}

type MsgRemoveProviderResponse struct{}

type MsgSetCooldown struct {
	Authority       string
	CooldownSeconds int64
}

type MsgSetCooldownResponse struct {
	PreviousCooldownSeconds int64
}

type MsgPause struct {
	Authority string
}

type MsgPauseResponse struct{}

type MsgUnpause struct {
	Authority string
}

type MsgUnpauseResponse struct{}

type MsgOpenBatch struct {
	Authority string
}

type MsgOpenBatchResponse struct {
	BatchId uint64
}

type MsgCloseBatch struct {
	Authority string
}

type MsgCloseBatchResponse struct {
	BatchId   uint64
	Positions uint64
}

type MsgSubmitPosition struct {
	Provider         string
	LoanAmount       Ciphertext
	CollateralAmount Ciphertext
}

type MsgSubmitPositionResponse struct {
	BatchId uint64
	Index   uint64
}

type MsgRequestAggregation struct {
	Provider string
	BatchId  uint64
}

type MsgRequestAggregationResponse struct {
	RequestId   uint64
	Fingerprint []byte
}

type MsgSubmitDecryptionResult struct {
	RequestId uint64
	Cleartext []byte
	Proof     []byte
}

type MsgSubmitDecryptionResultResponse struct {
	BatchId         uint64
	TotalLoan       math.Int
	TotalCollateral math.Int
}
