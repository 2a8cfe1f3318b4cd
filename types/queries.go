// SPDX-License-Identifier: BUSL-1.1
//
// Copyright (C) 2026, LendShield Labs. All rights reserved.

package types

import "context"

// QueryServer exposes read-only views of the ledger. Responses carry
// enough fields to reconstruct the queried state without further
// reads.
type QueryServer interface {
	Params(ctx context.Context, req *QueryParamsRequest) (*QueryParamsResponse, error)
	Provider(ctx context.Context, req *QueryProviderRequest) (*QueryProviderResponse, error)
	CurrentBatch(ctx context.Context, req *QueryCurrentBatchRequest) (*QueryCurrentBatchResponse, error)
	Batch(ctx context.Context, req *QueryBatchRequest) (*QueryBatchResponse, error)
	DecryptionContext(ctx context.Context, req *QueryDecryptionContextRequest) (*QueryDecryptionContextResponse, error)
}

type QueryParamsRequest struct{}

type QueryParamsResponse struct {
	Owner           string
	Paused          bool
	CooldownSeconds int64
}

type QueryProviderRequest struct {
	Address string
}

type QueryProviderResponse struct {
	Authorized bool
}

type QueryCurrentBatchRequest struct{}

type QueryCurrentBatchResponse struct {
	BatchId   uint64
	Open      bool
	Positions uint64
}

type QueryBatchRequest struct {
	BatchId uint64
}

type QueryBatchResponse struct {
	BatchId   uint64
	Positions uint64
}

type QueryDecryptionContextRequest struct {
	RequestId uint64
}

type QueryDecryptionContextResponse struct {
	BatchId     uint64
	Fingerprint []byte
	Processed   bool
}
