// SPDX-License-Identifier: MIT
//
// Copyright (C) 2026 the SilentMatch contributors. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package keyring manages the versioned OPRF signing keys: exactly one key is
// Active at any time, retired keys stay resident until every ledger entry
// referencing them has been re-derived, and purging is irreversible.
package keyring

import (
	"errors"
	"sync"
	"time"

	"github.com/bytemare/ecc"
	"go.uber.org/zap"

	"github.com/silentmatch/silentmatch/internal"
)

var (
	// ErrUnknownKeyVersion is returned when the requested key version was
	// never created or has been purged.
	ErrUnknownKeyVersion = errors.New("unknown key version")

	// ErrRetiredKeyInUse is returned when purging a key that ledger entries
	// still depend on for re-verification.
	ErrRetiredKeyInUse = errors.New("retired key still referenced by unreconciled ledger entries")

	// ErrPurgeActiveKey is returned when purging the active key.
	ErrPurgeActiveKey = errors.New("cannot purge the active signing key")
)

// State tags a signing key as the current signer or as retired.
type State byte

const (
	// Active marks the single key new signatures are issued under.
	Active State = iota + 1

	// Retired marks keys kept only for re-derivation and re-verification.
	Retired
)

// String implements the Stringer() interface for the State.
func (s State) String() string {
	switch s {
	case Active:
		return "Active"
	case Retired:
		return "Retired"
	default:
		return ""
	}
}

// A SigningKey holds one versioned secret exponent. The key material is
// immutable once created; its Active/Retired state is derived from the
// manager's single mutable active pointer.
type SigningKey struct {
	createdAt time.Time
	scalar    *ecc.Scalar
	public    *ecc.Element
	version   uint64
}

// Version returns the key's strictly increasing version number.
func (k *SigningKey) Version() uint64 {
	return k.version
}

// CreatedAt returns the key's creation time.
func (k *SigningKey) CreatedAt() time.Time {
	return k.createdAt
}

// Scalar returns the secret signing exponent.
func (k *SigningKey) Scalar() *ecc.Scalar {
	return k.scalar
}

// Public returns the public key of the signing exponent, used by clients
// verifying signing proofs.
func (k *SigningKey) Public() *ecc.Element {
	return k.public
}

// LedgerIndex reports how many ledger entries under a key version still lack
// a re-derived counterpart. Implemented by the ledger store.
type LedgerIndex interface {
	Unreconciled(version uint64) int
}

// Manager owns the signing keys. Reads vastly outnumber rotations, so lookups
// take a shared lock and return a consistent snapshot: a signature in flight
// keeps using the key it captured even if a rotation lands mid-call.
type Manager struct {
	log    *zap.Logger
	core   *internal.Core
	keys   map[uint64]*SigningKey
	purged []uint64
	active uint64
	next   uint64
	mu     sync.RWMutex
}

// NewManager returns a Manager for the given group with an initial active key
// at version 1.
func NewManager(g ecc.Group, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}

	m := &Manager{
		log:  log,
		core: internal.LoadConfiguration(g),
		keys: make(map[uint64]*SigningKey),
	}
	m.Rotate()

	return m
}

func (m *Manager) install(scalar *ecc.Scalar) uint64 {
	m.next++
	version := m.next

	m.keys[version] = &SigningKey{
		createdAt: time.Now(),
		scalar:    scalar,
		public:    m.core.Group.Base().Multiply(scalar),
		version:   version,
	}

	previous := m.active
	m.active = version

	m.log.Info("signing key rotated",
		zap.Uint64("version", version),
		zap.Uint64("retired_version", previous),
	)

	return version
}

// Rotate generates a fresh signing key, marks it Active, and retires the
// previous Active key. It returns the new version.
func (m *Manager) Rotate() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.install(m.core.Group.NewScalar().Random())
}

// RotateFromSeed derives the next signing key deterministically from a secret
// seed and instance specific info, for deployments provisioning keys from an
// external KMS.
func (m *Manager) RotateFromSeed(seed, info []byte) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.install(m.core.DeriveKey(seed, info))
}

// Active returns the current active signing key.
func (m *Manager) Active() *SigningKey {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.keys[m.active]
}

// ActiveVersion returns the version of the current active signing key.
func (m *Manager) ActiveVersion() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.active
}

// Get returns the signing key at the given version, or ErrUnknownKeyVersion
// if it was never created or has been purged.
func (m *Manager) Get(version uint64) (*SigningKey, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	key, ok := m.keys[version]
	if !ok {
		return nil, ErrUnknownKeyVersion
	}

	return key, nil
}

// State returns the lifecycle state of the key at the given version.
func (m *Manager) State(version uint64) (State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.keys[version]; !ok {
		return 0, ErrUnknownKeyVersion
	}

	if version == m.active {
		return Active, nil
	}

	return Retired, nil
}

// Versions returns all live (non-purged) key versions in ascending order.
func (m *Manager) Versions() []uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	versions := make([]uint64, 0, len(m.keys))
	for v := uint64(1); v <= m.next; v++ {
		if _, ok := m.keys[v]; ok {
			versions = append(versions, v)
		}
	}

	return versions
}

// PurgedVersions returns the versions removed by Purge, in purge order.
func (m *Manager) PurgedVersions() []uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]uint64, len(m.purged))
	copy(out, m.purged)

	return out
}

// Purge irreversibly deletes a retired key. It fails with ErrRetiredKeyInUse
// while any ledger entry at that version lacks a re-derived counterpart under
// a newer key.
func (m *Manager) Purge(version uint64, index LedgerIndex) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.keys[version]; !ok {
		return ErrUnknownKeyVersion
	}

	if version == m.active {
		return ErrPurgeActiveKey
	}

	if pending := index.Unreconciled(version); pending > 0 {
		m.log.Warn("purge refused",
			zap.Uint64("version", version),
			zap.Int("unreconciled_entries", pending),
		)

		return ErrRetiredKeyInUse
	}

	delete(m.keys, version)
	m.purged = append(m.purged, version)

	m.log.Warn("signing key purged", zap.Uint64("version", version))

	return nil
}
