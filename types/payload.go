// SPDX-License-Identifier: BUSL-1.1
//
// Copyright (C) 2026, LendShield Labs. All rights reserved.

package types

import (
	"encoding/binary"
	"fmt"
	"math/big"

	"cosmossdk.io/math"
)

const (
	resultPayloadSize        = 137
	resultMessageType        = 0x02
	resultProofSize          = 64
	CleartextSize            = 64
)

// DecryptionResultPayload is the decoded oracle result carried inside
// a delivered message body. Cleartext is the canonical 64-byte
// encoding of the two totals, preserved verbatim because the proof is
// bound to those exact bytes.
type DecryptionResultPayload struct {
	MessageType     uint8
	RequestId       uint64
	TotalLoan       math.Int
	TotalCollateral math.Int
	Cleartext       []byte
	Proof           []byte
}

// ParseDecryptionResultPayload decodes the fixed-length oracle result
// payload. All numeric values are expected to be big-endian encoded.
func ParseDecryptionResultPayload(body []byte) (DecryptionResultPayload, error) {
	if len(body) != resultPayloadSize {
		return DecryptionResultPayload{}, fmt.Errorf("invalid result payload size: expected %d, got %d", resultPayloadSize, len(body))
	}

	if body[0] != resultMessageType {
		return DecryptionResultPayload{}, fmt.Errorf("invalid result payload message type 0x%02x", body[0])
	}

	cleartext := make([]byte, CleartextSize)
	copy(cleartext, body[9:73])

	loan, collateral, err := DecodeCleartext(cleartext)
	if err != nil {
		return DecryptionResultPayload{}, err
	}

	proof := make([]byte, resultProofSize)
	copy(proof, body[73:137])

	return DecryptionResultPayload{
		MessageType:     body[0],
		RequestId:       binary.BigEndian.Uint64(body[1:9]),
		TotalLoan:       loan,
		TotalCollateral: collateral,
		Cleartext:       cleartext,
		Proof:           proof,
	}, nil
}

// EncodeDecryptionResultPayload builds the wire form of an oracle
// result for delivery through a message transport.
func EncodeDecryptionResultPayload(requestID uint64, cleartext, proof []byte) ([]byte, error) {
	if len(cleartext) != CleartextSize {
		return nil, fmt.Errorf("invalid cleartext size: expected %d, got %d", CleartextSize, len(cleartext))
	}
	if len(proof) != resultProofSize {
		return nil, fmt.Errorf("invalid proof size: expected %d, got %d", resultProofSize, len(proof))
	}

	body := make([]byte, 0, resultPayloadSize)
	body = append(body, resultMessageType)
	body = binary.BigEndian.AppendUint64(body, requestID)
	body = append(body, cleartext...)
	body = append(body, proof...)
	return body, nil
}

// DecodeCleartext splits the canonical cleartext into the two
// plaintext totals: a 32-byte big-endian loan total followed by a
// 32-byte big-endian collateral total.
func DecodeCleartext(cleartext []byte) (loan, collateral math.Int, err error) {
	if len(cleartext) != CleartextSize {
		return math.ZeroInt(), math.ZeroInt(), fmt.Errorf("invalid cleartext size: expected %d, got %d", CleartextSize, len(cleartext))
	}

	loan = math.NewIntFromBigInt(new(big.Int).SetBytes(cleartext[:32]))
	collateral = math.NewIntFromBigInt(new(big.Int).SetBytes(cleartext[32:]))
	return loan, collateral, nil
}

// EncodeCleartext is the inverse of DecodeCleartext. Totals that do
// not fit 32 bytes are rejected; sums of 32-bit contributions never
// approach that bound.
func EncodeCleartext(loan, collateral math.Int) ([]byte, error) {
	if loan.IsNegative() || collateral.IsNegative() {
		return nil, fmt.Errorf("totals cannot be negative")
	}

	loanBytes := loan.BigInt().Bytes()
	collateralBytes := collateral.BigInt().Bytes()
	if len(loanBytes) > 32 || len(collateralBytes) > 32 {
		return nil, fmt.Errorf("total exceeds 32-byte encoding")
	}

	cleartext := make([]byte, CleartextSize)
	copy(cleartext[32-len(loanBytes):32], loanBytes)
	copy(cleartext[64-len(collateralBytes):], collateralBytes)
	return cleartext, nil
}
