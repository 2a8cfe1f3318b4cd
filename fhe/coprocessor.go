// SPDX-License-Identifier: BUSL-1.1
//
// Copyright (C) 2026, LendShield Labs. All rights reserved.

// Package fhe provides the concrete homomorphic encryption backend
// behind the ledger's opaque ciphertext capability, built on the
// lattigo BGV scheme. The backend is deliberately swappable: the
// ledger only ever sees the capability interfaces in types.
package fhe

import (
	"fmt"
	"sync"

	"github.com/tuneinsight/lattigo/v5/core/rlwe"
	"github.com/tuneinsight/lattigo/v5/schemes/bgv"
	"golang.org/x/crypto/sha3"

	"lendshield.dev/types"
)

// PlaintextModulus bounds every plaintext value and every aggregate
// sum. Contributions are 32-bit values; callers must keep batch sums
// below this modulus or decryption wraps.
const PlaintextModulus = 0x3ee30001

// Coprocessor implements types.CiphertextKeeper with BGV ciphertexts.
// All operations are deterministic in their inputs: EncodeZero is the
// trivial all-zero ciphertext and homomorphic addition introduces no
// fresh randomness, so re-running a fold reproduces identical bytes.
//
// The coprocessor registers every ciphertext it produces under its
// exported handle so the decryption oracle can resolve handles back
// to ciphertexts.
type Coprocessor struct {
	params    bgv.Parameters
	sk        *rlwe.SecretKey
	encoder   *bgv.Encoder
	encryptor *rlwe.Encryptor
	evaluator *bgv.Evaluator

	mu       sync.Mutex
	registry map[types.Handle][]byte
}

// NewCoprocessor generates a fresh key pair and returns a ready
// backend.
func NewCoprocessor() (*Coprocessor, error) {
	params, err := bgv.NewParametersFromLiteral(bgv.ParametersLiteral{
		LogN:             13,
		LogQ:             []int{54, 54},
		LogP:             []int{55},
		PlaintextModulus: PlaintextModulus,
	})
	if err != nil {
		return nil, fmt.Errorf("unable to build BGV parameters: %w", err)
	}

	kgen := rlwe.NewKeyGenerator(params)
	sk := kgen.GenSecretKeyNew()
	pk := kgen.GenPublicKeyNew(sk)

	return &Coprocessor{
		params:    params,
		sk:        sk,
		encoder:   bgv.NewEncoder(params),
		encryptor: rlwe.NewEncryptor(params, pk),
		evaluator: bgv.NewEvaluator(params, nil),
		registry:  make(map[types.Handle][]byte),
	}, nil
}

var _ types.CiphertextKeeper = &Coprocessor{}

// EncryptUint32 encrypts a single 32-bit contribution. This is the
// provider-side entry point; the ledger itself never encrypts.
func (c *Coprocessor) EncryptUint32(value uint32) (types.Ciphertext, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	pt := bgv.NewPlaintext(c.params, c.params.MaxLevel())
	if err := c.encoder.Encode([]uint64{uint64(value)}, pt); err != nil {
		return nil, fmt.Errorf("unable to encode value: %w", err)
	}

	ct, err := c.encryptor.EncryptNew(pt)
	if err != nil {
		return nil, fmt.Errorf("unable to encrypt value: %w", err)
	}

	return c.register(ct)
}

// EncodeZero returns the deterministic trivial encryption of zero.
func (c *Coprocessor) EncodeZero() types.Ciphertext {
	c.mu.Lock()
	defer c.mu.Unlock()

	ct := rlwe.NewCiphertext(c.params, 1, c.params.MaxLevel())
	bz, err := c.register(ct)
	if err != nil {
		// The zero ciphertext always serializes; a failure here means
		// the backend itself is broken.
		panic(err)
	}
	return bz
}

// Add homomorphically adds two ciphertexts.
func (c *Coprocessor) Add(a, b types.Ciphertext) (types.Ciphertext, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ctA, err := decode(a)
	if err != nil {
		return nil, err
	}
	ctB, err := decode(b)
	if err != nil {
		return nil, err
	}

	sum, err := c.evaluator.AddNew(ctA, ctB)
	if err != nil {
		return nil, fmt.Errorf("unable to add ciphertexts: %w", err)
	}

	return c.register(sum)
}

// IsInitialized reports whether the bytes deserialize into a
// well-formed ciphertext of this backend.
func (c *Coprocessor) IsInitialized(ct types.Ciphertext) bool {
	if !ct.Initialized() {
		return false
	}
	_, err := decode(ct)
	return err == nil
}

// ExportHandle derives the fixed-size transport handle of a
// ciphertext: the Keccak-256 digest of its serialized form.
func (c *Coprocessor) ExportHandle(ct types.Ciphertext) types.Handle {
	var handle types.Handle
	hash := sha3.NewLegacyKeccak256()
	hash.Write(ct)
	copy(handle[:], hash.Sum(nil))
	return handle
}

// Resolve returns the ciphertext previously registered under a
// handle. Used by the decryption oracle; unknown handles are those of
// ciphertexts this coprocessor never produced.
func (c *Coprocessor) Resolve(handle types.Handle) (types.Ciphertext, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	bz, ok := c.registry[handle]
	if !ok {
		return nil, false
	}
	ct := make(types.Ciphertext, len(bz))
	copy(ct, bz)
	return ct, true
}

// register serializes a ciphertext and records it under its handle.
// Callers must hold c.mu.
func (c *Coprocessor) register(ct *rlwe.Ciphertext) (types.Ciphertext, error) {
	bz, err := ct.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("unable to serialize ciphertext: %w", err)
	}

	var handle types.Handle
	hash := sha3.NewLegacyKeccak256()
	hash.Write(bz)
	copy(handle[:], hash.Sum(nil))
	c.registry[handle] = bz

	return types.Ciphertext(bz), nil
}

func decode(ct types.Ciphertext) (*rlwe.Ciphertext, error) {
	out := new(rlwe.Ciphertext)
	if err := out.UnmarshalBinary(ct); err != nil {
		return nil, fmt.Errorf("malformed ciphertext: %w", err)
	}
	if out.Degree() < 1 {
		return nil, fmt.Errorf("ciphertext has degree %d", out.Degree())
	}
	return out, nil
}
