// SPDX-License-Identifier: BUSL-1.1
//
// Copyright (C) 2026, LendShield Labs. All rights reserved.

package keeper

import (
	"context"

	"cosmossdk.io/errors"
	"golang.org/x/crypto/sha3"

	"lendshield.dev/types"
)

// foldBatch folds every position of a batch into the two running
// ciphertext sums, in submission order. Addition is commutative so
// the result is order independent, but the deterministic iteration
// keeps the fold byte-for-byte reproducible, which is what the oracle
// bridge relies on when it re-derives fingerprints.
func (k *Keeper) foldBatch(ctx context.Context, batchID uint64) (loanSum, collateralSum types.Ciphertext, err error) {
	loanSum = k.fhe.EncodeZero()
	collateralSum = k.fhe.EncodeZero()

	err = k.IterateBatchPositions(ctx, batchID, func(index uint64, position types.Position) (bool, error) {
		// Submission already guarantees this; re-check so a corrupted
		// entry aborts the whole fold instead of poisoning the sums.
		if !k.fhe.IsInitialized(position.LoanAmount) || !k.fhe.IsInitialized(position.CollateralAmount) {
			return true, errors.Wrapf(types.ErrNotInitialized, "position %d of batch %d", index, batchID)
		}

		loanSum, err = k.fhe.Add(loanSum, position.LoanAmount)
		if err != nil {
			return true, errors.Wrapf(err, "unable to add loan amount of position %d", index)
		}
		collateralSum, err = k.fhe.Add(collateralSum, position.CollateralAmount)
		if err != nil {
			return true, errors.Wrapf(err, "unable to add collateral amount of position %d", index)
		}

		return false, nil
	})
	if err != nil {
		return nil, nil, err
	}

	return loanSum, collateralSum, nil
}

// aggregateFingerprint binds the exported aggregate handles to this
// ledger instance.
func aggregateFingerprint(loanHandle, collateralHandle types.Handle) []byte {
	return keccak256(loanHandle[:], collateralHandle[:], types.ModuleAddress.Bytes())
}

// deriveBatchFingerprint folds the batch as it stands right now and
// returns the fingerprint of the resulting aggregate.
func (k *Keeper) deriveBatchFingerprint(ctx context.Context, batchID uint64) ([]byte, error) {
	loanSum, collateralSum, err := k.foldBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}

	return aggregateFingerprint(k.fhe.ExportHandle(loanSum), k.fhe.ExportHandle(collateralSum)), nil
}

// requestAggregation folds the batch, submits the aggregate handles
// to the decryption oracle, and stores a fresh pending context under
// the oracle-issued request identifier. The batch itself is left
// untouched, so aggregation may be requested any number of times for
// the same batch, each producing an independent context.
func (k *Keeper) requestAggregation(ctx context.Context, batchID uint64) (uint64, []byte, error) {
	count, err := k.GetBatchPositionCount(ctx, batchID)
	if err != nil {
		return 0, nil, errors.Wrap(err, "unable to get batch position count from state")
	}
	if count == 0 {
		return 0, nil, errors.Wrapf(types.ErrInvalidParameter, "batch %d has no positions", batchID)
	}

	loanSum, collateralSum, err := k.foldBatch(ctx, batchID)
	if err != nil {
		return 0, nil, err
	}

	loanHandle := k.fhe.ExportHandle(loanSum)
	collateralHandle := k.fhe.ExportHandle(collateralSum)
	fingerprint := aggregateFingerprint(loanHandle, collateralHandle)

	requestID, err := k.oracle.RequestDecryption(ctx, []types.Handle{loanHandle, collateralHandle})
	if err != nil {
		return 0, nil, errors.Wrap(err, "unable to submit decryption request to oracle")
	}

	if err := k.SetDecryptionContext(ctx, requestID, types.DecryptionContext{
		BatchId:     batchID,
		Fingerprint: fingerprint,
		Processed:   false,
	}); err != nil {
		return 0, nil, errors.Wrap(err, "unable to store decryption context to state")
	}

	return requestID, fingerprint, nil
}

// positionDigest hashes the two ciphertext handles of a position for
// off-chain correlation.
func positionDigest(fhe types.CiphertextKeeper, loan, collateral types.Ciphertext) []byte {
	loanHandle := fhe.ExportHandle(loan)
	collateralHandle := fhe.ExportHandle(collateral)
	return keccak256(loanHandle[:], collateralHandle[:])
}

func keccak256(chunks ...[]byte) []byte {
	hash := sha3.NewLegacyKeccak256()
	for _, chunk := range chunks {
		hash.Write(chunk)
	}
	return hash.Sum(nil)
}
