// SPDX-License-Identifier: MIT
//
// Copyright (C) 2026 the SilentMatch contributors. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package ledger implements the versioned, append-only tag ledger and its
// matcher. Entries are keyed by the (tag, key version) composite: one logical
// attribute may exist under several key-version epochs until re-derivation
// reconciles them.
package ledger

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/silentmatch/silentmatch"
)

// Entry is one immutable ledger record. Element retains the evaluated group
// element encoding so the entry can be re-derived under future key versions;
// Metadata is an uninterpreted payload compared only for equality.
type Entry struct {
	InsertedAt    time.Time
	Tag           silentmatch.Tag
	Element       []byte
	Metadata      []byte
	KeyVersion    uint64
	AttributeType silentmatch.AttributeType
	Reconciled    bool
}

// clone returns a copy that shares no backing arrays with the stored entry,
// so callers can never mutate the ledger through a returned Entry.
func (e *Entry) clone() Entry {
	out := *e
	out.Tag = append(silentmatch.Tag(nil), e.Tag...)
	out.Element = append([]byte(nil), e.Element...)
	out.Metadata = append([]byte(nil), e.Metadata...)

	return out
}

type compositeKey struct {
	tag     string
	version uint64
}

// Store is the hot ledger. A single mutex serializes inserts so the
// idempotent-versus-conflicting check on the composite key is atomic; the
// store itself never blocks on I/O, and every operation honors the caller's
// context at its boundary.
type Store struct {
	log     *zap.Logger
	entries map[compositeKey]*Entry
	order   []*Entry
	mu      sync.Mutex
}

// NewStore returns an empty ledger store.
func NewStore(log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}

	return &Store{
		log:     log,
		entries: make(map[compositeKey]*Entry),
	}
}

// Insert appends an entry. Inserting an identical (tag, key version,
// metadata) triple again is a no-op; the same composite key with different
// metadata fails with ErrConflictingMetadata and the ledger is left
// untouched, surfacing the conflict for manual reconciliation.
func (s *Store) Insert(ctx context.Context, e Entry) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("ledger insert: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := compositeKey{tag: string(e.Tag), version: e.KeyVersion}

	if existing, ok := s.entries[key]; ok {
		if !bytes.Equal(existing.Metadata, e.Metadata) {
			s.log.Error("conflicting metadata on ledger insert",
				zap.String("tag", e.Tag.String()),
				zap.Uint64("key_version", e.KeyVersion),
			)

			return silentmatch.ErrConflictingMetadata
		}

		return nil
	}

	stored := &Entry{
		InsertedAt:    time.Now(),
		Tag:           append(silentmatch.Tag(nil), e.Tag...),
		Element:       append([]byte(nil), e.Element...),
		Metadata:      append([]byte(nil), e.Metadata...),
		KeyVersion:    e.KeyVersion,
		AttributeType: e.AttributeType,
	}

	s.entries[key] = stored
	s.order = append(s.order, stored)

	return nil
}

// Lookup returns copies of all entries matching the tag across the given key
// versions. Callers pass the currently live (non-purged) versions from the
// keyring; purged epochs are thereby excluded from matching.
func (s *Store) Lookup(ctx context.Context, tag silentmatch.Tag, versions ...uint64) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("ledger lookup: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var matches []Entry

	for _, v := range versions {
		if e, ok := s.entries[compositeKey{tag: string(tag), version: v}]; ok {
			matches = append(matches, e.clone())
		}
	}

	return matches, nil
}

// Version returns copies of all entries at the given key version, in
// insertion order. Re-derivation iterates this snapshot.
func (s *Store) Version(version uint64) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Entry

	for _, e := range s.order {
		if e.KeyVersion == version {
			out = append(out, e.clone())
		}
	}

	return out
}

// MarkReconciled records that the entry at (tag, version) has a re-derived
// counterpart under a newer key version and is eligible for archival.
func (s *Store) MarkReconciled(tag silentmatch.Tag, version uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[compositeKey{tag: string(tag), version: version}]; ok {
		e.Reconciled = true
	}
}

// Unreconciled returns the number of entries at the given key version that
// still lack a re-derived counterpart. It implements keyring.LedgerIndex.
func (s *Store) Unreconciled(version uint64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0

	for _, e := range s.order {
		if e.KeyVersion == version && !e.Reconciled {
			n++
		}
	}

	return n
}

// Len returns the number of entries in the hot ledger.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.order)
}
