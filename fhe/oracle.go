// SPDX-License-Identifier: BUSL-1.1
//
// Copyright (C) 2026, LendShield Labs. All rights reserved.

package fhe

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"sync"

	"cosmossdk.io/math"
	"github.com/tuneinsight/lattigo/v5/core/rlwe"
	"github.com/tuneinsight/lattigo/v5/schemes/bgv"
	"golang.org/x/crypto/sha3"

	"lendshield.dev/types"
)

// Oracle implements types.DecryptionOracle against an in-process
// coprocessor. It holds the decryption key and an Ed25519 signing key;
// a result proof is the signature over keccak(requestID || cleartext),
// so anyone can relay a fulfilled result but nobody can forge one.
type Oracle struct {
	coprocessor *Coprocessor
	decryptor   *rlwe.Decryptor
	encoder     *bgv.Encoder

	signingKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey

	mu       sync.Mutex
	nextID   uint64
	requests map[uint64][]types.Handle
}

// NewOracle creates an oracle bound to the given coprocessor's keys.
func NewOracle(coprocessor *Coprocessor) (*Oracle, error) {
	publicKey, signingKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("unable to generate oracle signing key: %w", err)
	}

	return &Oracle{
		coprocessor: coprocessor,
		decryptor:   rlwe.NewDecryptor(coprocessor.params, coprocessor.sk),
		encoder:     bgv.NewEncoder(coprocessor.params),
		signingKey:  signingKey,
		publicKey:   publicKey,
		nextID:      1,
		requests:    make(map[uint64][]types.Handle),
	}, nil
}

var _ types.DecryptionOracle = &Oracle{}

// RequestDecryption registers the handles for asynchronous decryption
// and returns the issued request identifier. The handles must resolve
// against the coprocessor, otherwise the request is malformed.
func (o *Oracle) RequestDecryption(_ context.Context, handles []types.Handle) (uint64, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	for _, handle := range handles {
		if _, ok := o.coprocessor.Resolve(handle); !ok {
			return 0, fmt.Errorf("unknown ciphertext handle %x", handle)
		}
	}

	id := o.nextID
	o.nextID++
	o.requests[id] = append([]types.Handle(nil), handles...)
	return id, nil
}

// Fulfill decrypts the two aggregate handles of a pending request and
// returns the canonical cleartext together with its proof. Tests call
// this to simulate the oracle answering at an arbitrary later time;
// the request stays fulfillable so replay handling can be exercised.
func (o *Oracle) Fulfill(requestID uint64) (cleartext, proof []byte, err error) {
	o.mu.Lock()
	handles, ok := o.requests[requestID]
	o.mu.Unlock()
	if !ok {
		return nil, nil, fmt.Errorf("unknown request %d", requestID)
	}
	if len(handles) != 2 {
		return nil, nil, fmt.Errorf("request %d carries %d handles, expected 2", requestID, len(handles))
	}

	totalLoan, err := o.decryptHandle(handles[0])
	if err != nil {
		return nil, nil, err
	}
	totalCollateral, err := o.decryptHandle(handles[1])
	if err != nil {
		return nil, nil, err
	}

	cleartext, err = types.EncodeCleartext(math.NewIntFromUint64(totalLoan), math.NewIntFromUint64(totalCollateral))
	if err != nil {
		return nil, nil, err
	}

	return cleartext, ed25519.Sign(o.signingKey, resultDigest(requestID, cleartext)), nil
}

// VerifyProof checks an Ed25519 result proof.
func (o *Oracle) VerifyProof(requestID uint64, cleartext, proof []byte) bool {
	if len(proof) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(o.publicKey, resultDigest(requestID, cleartext), proof)
}

func (o *Oracle) decryptHandle(handle types.Handle) (uint64, error) {
	ct, ok := o.coprocessor.Resolve(handle)
	if !ok {
		return 0, fmt.Errorf("unknown ciphertext handle %x", handle)
	}

	decoded, err := decode(ct)
	if err != nil {
		return 0, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	pt := o.decryptor.DecryptNew(decoded)
	values := make([]uint64, 1)
	if err := o.encoder.Decode(pt, values); err != nil {
		return 0, fmt.Errorf("unable to decode plaintext: %w", err)
	}

	return values[0], nil
}

func resultDigest(requestID uint64, cleartext []byte) []byte {
	hash := sha3.NewLegacyKeccak256()
	hash.Write(binary.BigEndian.AppendUint64(nil, requestID))
	hash.Write(cleartext)
	return hash.Sum(nil)
}
