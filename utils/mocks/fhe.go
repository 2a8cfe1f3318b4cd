// SPDX-License-Identifier: BUSL-1.1
//
// Copyright (C) 2026, LendShield Labs. All rights reserved.

package mocks

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"sync"

	"cosmossdk.io/math"
	"golang.org/x/crypto/sha3"

	"lendshield.dev/types"
)

var fakeCiphertextPrefix = []byte{0xec, 0x01}

// CiphertextKeeper is a fast deterministic stand-in for the real
// homomorphic backend: a "ciphertext" is a tagged big-endian value.
// It satisfies the same determinism contract as the BGV backend, so
// fingerprint re-derivation behaves identically in unit tests.
type CiphertextKeeper struct {
	mu       sync.Mutex
	registry map[types.Handle]uint64
}

func NewCiphertextKeeper() *CiphertextKeeper {
	return &CiphertextKeeper{registry: make(map[types.Handle]uint64)}
}

var _ types.CiphertextKeeper = &CiphertextKeeper{}

// EncryptUint32 produces the fake encryption of a contribution.
func (f *CiphertextKeeper) EncryptUint32(value uint32) types.Ciphertext {
	return f.encode(uint64(value))
}

func (f *CiphertextKeeper) EncodeZero() types.Ciphertext {
	return f.encode(0)
}

func (f *CiphertextKeeper) Add(a, b types.Ciphertext) (types.Ciphertext, error) {
	left, err := f.decode(a)
	if err != nil {
		return nil, err
	}
	right, err := f.decode(b)
	if err != nil {
		return nil, err
	}

	return f.encode(left + right), nil
}

func (f *CiphertextKeeper) IsInitialized(ct types.Ciphertext) bool {
	_, err := f.decode(ct)
	return err == nil
}

func (f *CiphertextKeeper) ExportHandle(ct types.Ciphertext) types.Handle {
	var handle types.Handle
	hash := sha3.NewLegacyKeccak256()
	hash.Write(ct)
	copy(handle[:], hash.Sum(nil))
	return handle
}

// Resolve returns the plaintext value registered under a handle.
func (f *CiphertextKeeper) Resolve(handle types.Handle) (uint64, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	value, ok := f.registry[handle]
	return value, ok
}

func (f *CiphertextKeeper) encode(value uint64) types.Ciphertext {
	ct := make(types.Ciphertext, 0, 10)
	ct = append(ct, fakeCiphertextPrefix...)
	ct = binary.BigEndian.AppendUint64(ct, value)

	f.mu.Lock()
	f.registry[f.ExportHandle(ct)] = value
	f.mu.Unlock()

	return ct
}

func (f *CiphertextKeeper) decode(ct types.Ciphertext) (uint64, error) {
	if len(ct) != 10 || !bytes.HasPrefix(ct, fakeCiphertextPrefix) {
		return 0, fmt.Errorf("not a mock ciphertext")
	}
	return binary.BigEndian.Uint64(ct[2:]), nil
}

// DecryptionOracle is the in-memory oracle paired with the mock
// ciphertext keeper. Proofs are Ed25519 signatures over
// keccak(requestID || cleartext), same binding as the real oracle.
type DecryptionOracle struct {
	fhe *CiphertextKeeper

	signingKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey

	mu       sync.Mutex
	nextID   uint64
	requests map[uint64][]types.Handle
}

func NewDecryptionOracle(fhe *CiphertextKeeper) *DecryptionOracle {
	publicKey, signingKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		panic(err)
	}

	return &DecryptionOracle{
		fhe:        fhe,
		signingKey: signingKey,
		publicKey:  publicKey,
		nextID:     1,
		requests:   make(map[uint64][]types.Handle),
	}
}

var _ types.DecryptionOracle = &DecryptionOracle{}

func (o *DecryptionOracle) RequestDecryption(_ context.Context, handles []types.Handle) (uint64, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	for _, handle := range handles {
		if _, ok := o.fhe.Resolve(handle); !ok {
			return 0, fmt.Errorf("unknown ciphertext handle %x", handle)
		}
	}

	id := o.nextID
	o.nextID++
	o.requests[id] = append([]types.Handle(nil), handles...)
	return id, nil
}

// Fulfill resolves a pending request into its cleartext and proof.
func (o *DecryptionOracle) Fulfill(requestID uint64) (cleartext, proof []byte, err error) {
	o.mu.Lock()
	handles, ok := o.requests[requestID]
	o.mu.Unlock()
	if !ok {
		return nil, nil, fmt.Errorf("unknown request %d", requestID)
	}
	if len(handles) != 2 {
		return nil, nil, fmt.Errorf("request %d carries %d handles, expected 2", requestID, len(handles))
	}

	totalLoan, ok := o.fhe.Resolve(handles[0])
	if !ok {
		return nil, nil, fmt.Errorf("unknown ciphertext handle %x", handles[0])
	}
	totalCollateral, ok := o.fhe.Resolve(handles[1])
	if !ok {
		return nil, nil, fmt.Errorf("unknown ciphertext handle %x", handles[1])
	}

	cleartext, err = types.EncodeCleartext(math.NewIntFromUint64(totalLoan), math.NewIntFromUint64(totalCollateral))
	if err != nil {
		return nil, nil, err
	}

	return cleartext, ed25519.Sign(o.signingKey, resultDigest(requestID, cleartext)), nil
}

func (o *DecryptionOracle) VerifyProof(requestID uint64, cleartext, proof []byte) bool {
	if len(proof) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(o.publicKey, resultDigest(requestID, cleartext), proof)
}

func resultDigest(requestID uint64, cleartext []byte) []byte {
	hash := sha3.NewLegacyKeccak256()
	hash.Write(binary.BigEndian.AppendUint64(nil, requestID))
	hash.Write(cleartext)
	return hash.Sum(nil)
}
