// SPDX-License-Identifier: BUSL-1.1
//
// Copyright (C) 2026, LendShield Labs. All rights reserved.

package keeper

import (
	"context"

	"cosmossdk.io/errors"

	"lendshield.dev/types"
)

var _ types.QueryServer = &queryServer{}

type queryServer struct {
	*Keeper
}

func NewQueryServer(keeper *Keeper) types.QueryServer {
	return &queryServer{Keeper: keeper}
}

func (q queryServer) Params(ctx context.Context, req *types.QueryParamsRequest) (*types.QueryParamsResponse, error) {
	if req == nil {
		return nil, errors.Wrap(types.ErrInvalidParameter, "request cannot be nil")
	}

	paused, err := q.GetPaused(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "unable to get pause flag from state")
	}
	seconds, err := q.GetCooldownSeconds(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "unable to get cooldown interval from state")
	}

	return &types.QueryParamsResponse{
		Owner:           q.owner,
		Paused:          paused,
		CooldownSeconds: seconds,
	}, nil
}

func (q queryServer) Provider(ctx context.Context, req *types.QueryProviderRequest) (*types.QueryProviderResponse, error) {
	if req == nil {
		return nil, errors.Wrap(types.ErrInvalidParameter, "request cannot be nil")
	}

	bz, err := q.address.StringToBytes(req.Address)
	if err != nil {
		return nil, errors.Wrapf(types.ErrInvalidParameter, "invalid address %s", req.Address)
	}

	authorized, err := q.IsProvider(ctx, bz)
	if err != nil {
		return nil, errors.Wrap(err, "unable to get provider flag from state")
	}

	return &types.QueryProviderResponse{Authorized: authorized}, nil
}

func (q queryServer) CurrentBatch(ctx context.Context, req *types.QueryCurrentBatchRequest) (*types.QueryCurrentBatchResponse, error) {
	if req == nil {
		return nil, errors.Wrap(types.ErrInvalidParameter, "request cannot be nil")
	}

	id, err := q.GetCurrentBatchID(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "unable to get current batch id from state")
	}
	open, err := q.GetBatchOpen(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "unable to get batch open flag from state")
	}
	count, err := q.GetBatchPositionCount(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "unable to get batch position count from state")
	}

	return &types.QueryCurrentBatchResponse{
		BatchId:   id,
		Open:      open,
		Positions: count,
	}, nil
}

func (q queryServer) Batch(ctx context.Context, req *types.QueryBatchRequest) (*types.QueryBatchResponse, error) {
	if req == nil {
		return nil, errors.Wrap(types.ErrInvalidParameter, "request cannot be nil")
	}

	count, err := q.GetBatchPositionCount(ctx, req.BatchId)
	if err != nil {
		return nil, errors.Wrap(err, "unable to get batch position count from state")
	}

	return &types.QueryBatchResponse{BatchId: req.BatchId, Positions: count}, nil
}

func (q queryServer) DecryptionContext(ctx context.Context, req *types.QueryDecryptionContextRequest) (*types.QueryDecryptionContextResponse, error) {
	if req == nil {
		return nil, errors.Wrap(types.ErrInvalidParameter, "request cannot be nil")
	}

	decryptionContext, found, err := q.GetDecryptionContext(ctx, req.RequestId)
	if err != nil {
		return nil, errors.Wrap(err, "unable to get decryption context from state")
	}
	if !found {
		return nil, errors.Wrapf(types.ErrInvalidParameter, "unknown request %d", req.RequestId)
	}

	return &types.QueryDecryptionContextResponse{
		BatchId:     decryptionContext.BatchId,
		Fingerprint: decryptionContext.Fingerprint,
		Processed:   decryptionContext.Processed,
	}, nil
}
