// SPDX-License-Identifier: BUSL-1.1
//
// Copyright (C) 2026, LendShield Labs. All rights reserved.

package keeper

import (
	"context"
	"errors"

	"cosmossdk.io/collections"

	"lendshield.dev/types"
)

// GetPaused returns the pause flag. An unset flag means the ledger is
// running.
func (k *Keeper) GetPaused(ctx context.Context) (bool, error) {
	paused, err := k.Paused.Get(ctx)
	if err != nil {
		if errors.Is(err, collections.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	return paused, nil
}

// SetPaused persists the pause flag.
func (k *Keeper) SetPaused(ctx context.Context, paused bool) error {
	return k.Paused.Set(ctx, paused)
}

// IsProvider reports whether the given actor is currently authorized
// to submit positions.
func (k *Keeper) IsProvider(ctx context.Context, actor []byte) (bool, error) {
	authorized, err := k.Providers.Get(ctx, actor)
	if err != nil {
		if errors.Is(err, collections.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	return authorized, nil
}

// SetProvider writes the provider authorization flag for an actor.
func (k *Keeper) SetProvider(ctx context.Context, actor []byte, authorized bool) error {
	return k.Providers.Set(ctx, actor, authorized)
}

// DeleteProvider deletes the provider entry for an actor.
func (k *Keeper) DeleteProvider(ctx context.Context, actor []byte) error {
	return k.Providers.Remove(ctx, actor)
}

// GetCooldownSeconds returns the configured minimum inter-call
// interval, falling back to the default when the owner has not set
// one yet.
func (k *Keeper) GetCooldownSeconds(ctx context.Context) (int64, error) {
	seconds, err := k.CooldownSeconds.Get(ctx)
	if err != nil {
		if errors.Is(err, collections.ErrNotFound) {
			return types.DefaultCooldownSeconds, nil
		}
		return 0, err
	}

	return seconds, nil
}

// SetCooldownSeconds persists the cooldown interval.
func (k *Keeper) SetCooldownSeconds(ctx context.Context, seconds int64) error {
	return k.CooldownSeconds.Set(ctx, seconds)
}

// GetLastSubmission returns the actor's last successful submission
// time as a unix timestamp, zero when the actor has never submitted.
func (k *Keeper) GetLastSubmission(ctx context.Context, actor []byte) (int64, error) {
	last, err := k.LastSubmission.Get(ctx, actor)
	if err != nil {
		if errors.Is(err, collections.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}

	return last, nil
}

// SetLastSubmission records the actor's submission timestamp. Called
// only after the guarded operation fully succeeds, so a failed
// submission never consumes the cooldown window.
func (k *Keeper) SetLastSubmission(ctx context.Context, actor []byte, at int64) error {
	return k.LastSubmission.Set(ctx, actor, at)
}

// GetLastDecryptRequest returns the actor's last successful
// aggregation request time, zero when the actor has never requested.
func (k *Keeper) GetLastDecryptRequest(ctx context.Context, actor []byte) (int64, error) {
	last, err := k.LastDecryptRequest.Get(ctx, actor)
	if err != nil {
		if errors.Is(err, collections.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}

	return last, nil
}

// SetLastDecryptRequest records the actor's aggregation request
// timestamp.
func (k *Keeper) SetLastDecryptRequest(ctx context.Context, actor []byte, at int64) error {
	return k.LastDecryptRequest.Set(ctx, actor, at)
}

// GetCurrentBatchID returns the current batch identifier. Identifiers
// start at one for readability when exposed to providers.
func (k *Keeper) GetCurrentBatchID(ctx context.Context) (uint64, error) {
	id, err := k.CurrentBatchID.Get(ctx)
	if err != nil {
		if errors.Is(err, collections.ErrNotFound) {
			return 1, nil
		}
		return 0, err
	}

	return id, nil
}

// SetCurrentBatchID persists the current batch identifier.
func (k *Keeper) SetCurrentBatchID(ctx context.Context, id uint64) error {
	return k.CurrentBatchID.Set(ctx, id)
}

// GetBatchOpen reports whether a batch is currently accepting
// submissions. At most one batch is open at any time.
func (k *Keeper) GetBatchOpen(ctx context.Context) (bool, error) {
	open, err := k.BatchOpen.Get(ctx)
	if err != nil {
		if errors.Is(err, collections.ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	return open, nil
}

// SetBatchOpen persists the open flag of the current batch.
func (k *Keeper) SetBatchOpen(ctx context.Context, open bool) error {
	return k.BatchOpen.Set(ctx, open)
}

// GetBatchPositionCount returns the number of positions submitted to
// the given batch. Zero for batches that never existed; the ledger
// does not distinguish an empty batch from an unknown id.
func (k *Keeper) GetBatchPositionCount(ctx context.Context, batchID uint64) (uint64, error) {
	count, err := k.BatchPositionCount.Get(ctx, batchID)
	if err != nil {
		if errors.Is(err, collections.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}

	return count, nil
}

// AppendBatchPosition appends a position to a batch's ordered list
// and returns its zero-based submission index. Positions are
// append-only; nothing ever removes or rewrites an entry.
func (k *Keeper) AppendBatchPosition(ctx context.Context, batchID uint64, position types.Position) (uint64, error) {
	count, err := k.GetBatchPositionCount(ctx, batchID)
	if err != nil {
		return 0, err
	}

	if err := k.BatchPositions.Set(ctx, collections.Join(batchID, count), position); err != nil {
		return 0, err
	}
	if err := k.BatchPositionCount.Set(ctx, batchID, count+1); err != nil {
		return 0, err
	}

	return count, nil
}

// IterateBatchPositions walks every position of a batch in submission
// order and invokes the supplied callback. Returning true from the
// callback stops the iteration early.
func (k *Keeper) IterateBatchPositions(ctx context.Context, batchID uint64, fn func(index uint64, position types.Position) (bool, error)) error {
	ranger := collections.NewPrefixedPairRange[uint64, uint64](batchID)
	return k.BatchPositions.Walk(ctx, ranger, func(key collections.Pair[uint64, uint64], position types.Position) (bool, error) {
		return fn(key.K2(), position)
	})
}

// GetDecryptionContext returns the stored context for a request
// identifier. The boolean flag indicates whether the context existed.
func (k *Keeper) GetDecryptionContext(ctx context.Context, requestID uint64) (types.DecryptionContext, bool, error) {
	decryptionContext, err := k.DecryptionContexts.Get(ctx, requestID)
	if err != nil {
		if errors.Is(err, collections.ErrNotFound) {
			return types.DecryptionContext{}, false, nil
		}
		return types.DecryptionContext{}, false, err
	}

	return decryptionContext, true, nil
}

// SetDecryptionContext writes the context for a request identifier.
func (k *Keeper) SetDecryptionContext(ctx context.Context, requestID uint64, decryptionContext types.DecryptionContext) error {
	return k.DecryptionContexts.Set(ctx, requestID, decryptionContext)
}
