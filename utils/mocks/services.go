// SPDX-License-Identifier: BUSL-1.1
//
// Copyright (C) 2026, LendShield Labs. All rights reserved.

package mocks

import (
	"context"
	"encoding/hex"
	"fmt"
	"sync"

	"cosmossdk.io/core/event"
	"cosmossdk.io/core/header"
	"google.golang.org/protobuf/runtime/protoiface"
)

type headerInfoKey struct{}

// WithHeaderInfo attaches block header info to a context, the mock
// analogue of sdk.Context.WithHeaderInfo.
func WithHeaderInfo(ctx context.Context, info header.Info) context.Context {
	return context.WithValue(ctx, headerInfoKey{}, info)
}

// HeaderService reads header info from the context values written by
// WithHeaderInfo.
type HeaderService struct{}

func (HeaderService) GetHeaderInfo(ctx context.Context) header.Info {
	if info, ok := ctx.Value(headerInfoKey{}).(header.Info); ok {
		return info
	}
	return header.Info{}
}

// Event is one recorded attribute-style event.
type Event struct {
	Type       string
	Attributes []event.Attribute
}

// EventService records every emitted KV event so tests can assert the
// audit trail.
type EventService struct {
	mu     sync.Mutex
	events []Event
}

func NewEventService() *EventService {
	return &EventService{}
}

func (s *EventService) EventManager(_ context.Context) event.Manager {
	return &eventManager{service: s}
}

// Events returns a snapshot of everything recorded so far.
func (s *EventService) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// EventsOfType returns the recorded events with the given type.
func (s *EventService) EventsOfType(eventType string) []Event {
	var out []Event
	for _, recorded := range s.Events() {
		if recorded.Type == eventType {
			out = append(out, recorded)
		}
	}
	return out
}

type eventManager struct {
	service *EventService
}

func (m *eventManager) Emit(_ context.Context, _ protoiface.MessageV1) error {
	return nil
}

func (m *eventManager) EmitKV(_ context.Context, eventType string, attrs ...event.Attribute) error {
	m.service.mu.Lock()
	defer m.service.mu.Unlock()

	m.service.events = append(m.service.events, Event{Type: eventType, Attributes: attrs})
	return nil
}

func (m *eventManager) EmitNonConsensus(_ context.Context, _ protoiface.MessageV1) error {
	return nil
}

// AddressCodec is a hex address codec for tests.
type AddressCodec struct{}

func (AddressCodec) StringToBytes(text string) ([]byte, error) {
	bz, err := hex.DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("invalid hex address %q: %w", text, err)
	}
	return bz, nil
}

func (AddressCodec) BytesToString(bz []byte) (string, error) {
	return hex.EncodeToString(bz), nil
}
