// SPDX-License-Identifier: BUSL-1.1
//
// Copyright (C) 2026, LendShield Labs. All rights reserved.

package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// Account is a test identity. Address is the string form understood
// by the mock address codec; Bytes is the raw identity.
type Account struct {
	Address string
	Bytes   []byte
}

// TestAccount generates a random account for tests.
func TestAccount() Account {
	bz := make([]byte, 20)
	if _, err := rand.Read(bz); err != nil {
		panic(err)
	}

	return Account{
		Address: hex.EncodeToString(bz),
		Bytes:   bz,
	}
}
