// SPDX-License-Identifier: MIT
//
// Copyright (C) 2026 the SilentMatch contributors. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package engine

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Partner is an institution authorized to run the protocol. LastSyncVersion
// tracks the key version its last ingestion completed under, so the engine
// can warn a partner whose registered data predates a rotation.
type Partner struct {
	CreatedAt       time.Time
	APIKey          string
	Name            string
	LastSyncVersion uint64
}

// Registry maps API keys to partners.
type Registry struct {
	partners map[string]*Partner
	mu       sync.RWMutex
}

// NewRegistry returns an empty partner registry.
func NewRegistry() *Registry {
	return &Registry{partners: make(map[string]*Partner)}
}

// Create registers a partner under a fresh API key.
func (r *Registry) Create(name string) Partner {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := &Partner{
		CreatedAt: time.Now(),
		APIKey:    uuid.NewString(),
		Name:      name,
	}
	r.partners[p.APIKey] = p

	return *p
}

// Get returns a copy of the partner for the API key.
func (r *Registry) Get(apiKey string) (Partner, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.partners[apiKey]
	if !ok {
		return Partner{}, false
	}

	return *p, true
}

// UpdateSync records that the partner completed an ingestion under the given
// key version.
func (r *Registry) UpdateSync(apiKey string, version uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.partners[apiKey]; ok {
		p.LastSyncVersion = version
	}
}

// HealthStatus is the outcome of a partner health check.
type HealthStatus byte

const (
	// HealthUnknown means the API key is not registered.
	HealthUnknown HealthStatus = iota

	// HealthOK means the partner's data is synchronized with the active key.
	HealthOK

	// HealthOutdated means the partner last ingested under a retired key and
	// should re-ingest; its verification results may be incomplete.
	HealthOutdated
)

// String implements the Stringer() interface for the HealthStatus.
func (h HealthStatus) String() string {
	switch h {
	case HealthOK:
		return "OK"
	case HealthOutdated:
		return "Outdated"
	default:
		return "Unknown"
	}
}

// Health reports whether the partner's last ingestion is current with respect
// to the active key version.
func (e *Engine) Health(apiKey string) HealthStatus {
	partner, ok := e.registry.Get(apiKey)
	if !ok {
		return HealthUnknown
	}

	if partner.LastSyncVersion < e.keys.ActiveVersion() {
		return HealthOutdated
	}

	return HealthOK
}
