// SPDX-License-Identifier: MIT
//
// Copyright (C) 2026 the SilentMatch contributors. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package engine

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrSessionBusy is returned when a phase is started on a session that is not
// idle.
var ErrSessionBusy = errors.New("session is not idle")

// SessionState is the orchestrator's per-session phase.
type SessionState byte

const (
	// Idle means no phase is running.
	Idle SessionState = iota

	// Ingesting means an ingestion batch is in flight.
	Ingesting

	// Verifying means a verification batch is in flight.
	Verifying
)

// String implements the Stringer() interface for the SessionState.
func (s SessionState) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Ingesting:
		return "Ingesting"
	case Verifying:
		return "Verifying"
	default:
		return ""
	}
}

// Session serializes protocol phases for one partner: a session runs one
// phase at a time and always returns to Idle when the phase completes,
// whether it succeeded or not.
type Session struct {
	ID     string
	APIKey string
	mu     sync.Mutex
	state  SessionState
}

// NewSession returns an idle session for the partner identified by apiKey.
func NewSession(apiKey string) *Session {
	return &Session{
		ID:     uuid.NewString(),
		APIKey: apiKey,
	}
}

// State returns the session's current phase.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

func (s *Session) begin(next SessionState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Idle {
		return ErrSessionBusy
	}

	s.state = next

	return nil
}

func (s *Session) end() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = Idle
}
