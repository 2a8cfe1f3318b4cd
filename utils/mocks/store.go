// SPDX-License-Identifier: BUSL-1.1
//
// Copyright (C) 2026, LendShield Labs. All rights reserved.

// Package mocks provides the in-memory service implementations the
// ledger keeper is tested against: a KV store, header and event
// services, an address codec, and fake ciphertext backends.
package mocks

import (
	"bytes"
	"context"
	"sort"
	"sync"

	"cosmossdk.io/core/store"
)

// MemKVStoreService is an in-memory store.KVStoreService backed by a
// single shared map.
type MemKVStoreService struct {
	kv *memKVStore
}

func NewMemKVStoreService() *MemKVStoreService {
	return &MemKVStoreService{kv: &memKVStore{entries: make(map[string][]byte)}}
}

func (s *MemKVStoreService) OpenKVStore(_ context.Context) store.KVStore {
	return s.kv
}

type memKVStore struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

func (s *memKVStore) Get(key []byte) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.entries[string(key)]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (s *memKVStore) Has(key []byte) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.entries[string(key)]
	return ok, nil
}

func (s *memKVStore) Set(key, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)
	s.entries[string(key)] = stored
	return nil
}

func (s *memKVStore) Delete(key []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, string(key))
	return nil
}

func (s *memKVStore) Iterator(start, end []byte) (store.Iterator, error) {
	return s.iterator(start, end, false), nil
}

func (s *memKVStore) ReverseIterator(start, end []byte) (store.Iterator, error) {
	return s.iterator(start, end, true), nil
}

// iterator snapshots the keys in [start, end) so the caller may write
// while iterating.
func (s *memKVStore) iterator(start, end []byte, reverse bool) store.Iterator {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var keys []string
	for key := range s.entries {
		bz := []byte(key)
		if start != nil && bytes.Compare(bz, start) < 0 {
			continue
		}
		if end != nil && bytes.Compare(bz, end) >= 0 {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	if reverse {
		for i, j := 0, len(keys)-1; i < j; i, j = i+1, j-1 {
			keys[i], keys[j] = keys[j], keys[i]
		}
	}

	values := make([][]byte, len(keys))
	for i, key := range keys {
		value := s.entries[key]
		values[i] = make([]byte, len(value))
		copy(values[i], value)
	}

	return &memIterator{start: start, end: end, keys: keys, values: values}
}

type memIterator struct {
	start, end []byte
	keys       []string
	values     [][]byte
	index      int
}

func (it *memIterator) Domain() ([]byte, []byte) { return it.start, it.end }

func (it *memIterator) Valid() bool { return it.index < len(it.keys) }

func (it *memIterator) Next() { it.index++ }

func (it *memIterator) Key() []byte { return []byte(it.keys[it.index]) }

func (it *memIterator) Value() []byte { return it.values[it.index] }

func (it *memIterator) Error() error { return nil }

func (it *memIterator) Close() error { return nil }
