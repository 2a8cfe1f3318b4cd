// SPDX-License-Identifier: BUSL-1.1
//
// Copyright (C) 2026, LendShield Labs. All rights reserved.

package types

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	collcodec "cosmossdk.io/collections/codec"
)

// Position is an immutable pair of encrypted contributions appended
// to the batch that was open at submission time. Positions are never
// mutated or removed.
type Position struct {
	LoanAmount       Ciphertext `json:"loan_amount"`
	CollateralAmount Ciphertext `json:"collateral_amount"`
}

// DecryptionContext records an outstanding decryption request. It is
// keyed by the oracle-issued request identifier and transitions
// exactly once, from Processed=false to Processed=true.
type DecryptionContext struct {
	BatchId     uint64 `json:"batch_id"`
	Fingerprint []byte `json:"fingerprint"`
	Processed   bool   `json:"processed"`
}

// PositionValue is the collections value codec for stored positions.
// The records are plain structs rather than protobuf types, so the
// codec frames the two ciphertexts with length prefixes by hand.
var PositionValue collcodec.ValueCodec[Position] = positionValueCodec{}

// DecryptionContextValue is the collections value codec for stored
// decryption contexts.
var DecryptionContextValue collcodec.ValueCodec[DecryptionContext] = decryptionContextValueCodec{}

type positionValueCodec struct{}

func (positionValueCodec) Encode(value Position) ([]byte, error) {
	bz := make([]byte, 0, 8+len(value.LoanAmount)+len(value.CollateralAmount))
	bz = binary.BigEndian.AppendUint32(bz, uint32(len(value.LoanAmount)))
	bz = append(bz, value.LoanAmount...)
	bz = binary.BigEndian.AppendUint32(bz, uint32(len(value.CollateralAmount)))
	bz = append(bz, value.CollateralAmount...)
	return bz, nil
}

func (positionValueCodec) Decode(b []byte) (Position, error) {
	if len(b) < 4 {
		return Position{}, fmt.Errorf("position value too short: %d bytes", len(b))
	}
	loanLen := binary.BigEndian.Uint32(b[:4])
	b = b[4:]
	if uint32(len(b)) < loanLen+4 {
		return Position{}, fmt.Errorf("position value truncated inside loan ciphertext")
	}
	loan := make(Ciphertext, loanLen)
	copy(loan, b[:loanLen])
	b = b[loanLen:]

	collateralLen := binary.BigEndian.Uint32(b[:4])
	b = b[4:]
	if uint32(len(b)) != collateralLen {
		return Position{}, fmt.Errorf("position value truncated inside collateral ciphertext")
	}
	collateral := make(Ciphertext, collateralLen)
	copy(collateral, b)

	return Position{LoanAmount: loan, CollateralAmount: collateral}, nil
}

func (positionValueCodec) EncodeJSON(value Position) ([]byte, error) {
	return json.Marshal(value)
}

func (positionValueCodec) DecodeJSON(b []byte) (Position, error) {
	var value Position
	err := json.Unmarshal(b, &value)
	return value, err
}

func (positionValueCodec) Stringify(value Position) string {
	return fmt.Sprintf("Position{loan: %d bytes, collateral: %d bytes}", len(value.LoanAmount), len(value.CollateralAmount))
}

func (positionValueCodec) ValueType() string {
	return "lendshield.Position"
}

type decryptionContextValueCodec struct{}

func (decryptionContextValueCodec) Encode(value DecryptionContext) ([]byte, error) {
	bz := make([]byte, 0, 9+4+len(value.Fingerprint))
	bz = binary.BigEndian.AppendUint64(bz, value.BatchId)
	if value.Processed {
		bz = append(bz, 1)
	} else {
		bz = append(bz, 0)
	}
	bz = binary.BigEndian.AppendUint32(bz, uint32(len(value.Fingerprint)))
	bz = append(bz, value.Fingerprint...)
	return bz, nil
}

func (decryptionContextValueCodec) Decode(b []byte) (DecryptionContext, error) {
	if len(b) < 13 {
		return DecryptionContext{}, fmt.Errorf("decryption context value too short: %d bytes", len(b))
	}
	value := DecryptionContext{
		BatchId:   binary.BigEndian.Uint64(b[:8]),
		Processed: b[8] == 1,
	}
	fingerprintLen := binary.BigEndian.Uint32(b[9:13])
	if uint32(len(b[13:])) != fingerprintLen {
		return DecryptionContext{}, fmt.Errorf("decryption context value truncated inside fingerprint")
	}
	value.Fingerprint = make([]byte, fingerprintLen)
	copy(value.Fingerprint, b[13:])
	return value, nil
}

func (decryptionContextValueCodec) EncodeJSON(value DecryptionContext) ([]byte, error) {
	return json.Marshal(value)
}

func (decryptionContextValueCodec) DecodeJSON(b []byte) (DecryptionContext, error) {
	var value DecryptionContext
	err := json.Unmarshal(b, &value)
	return value, err
}

func (decryptionContextValueCodec) Stringify(value DecryptionContext) string {
	return fmt.Sprintf("DecryptionContext{batch: %d, processed: %t}", value.BatchId, value.Processed)
}

func (decryptionContextValueCodec) ValueType() string {
	return "lendshield.DecryptionContext"
}
