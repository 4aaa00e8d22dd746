// SPDX-License-Identifier: MIT
//
// Copyright (C) 2026 the SilentMatch contributors. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package ledger

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ColdStorage receives entries evicted from the hot ledger. It is an external
// collaborator: durability and retrieval of archived entries are its concern.
type ColdStorage interface {
	Store(ctx context.Context, entries []Entry) error
}

// Discard is a ColdStorage that drops archived entries.
type Discard struct{}

// Store implements ColdStorage.
func (Discard) Store(context.Context, []Entry) error { return nil }

// CutoffPolicy selects entries for archival: entries inserted before MaxAge
// ago (zero disables the age cutoff), and entries belonging to purged key
// versions.
type CutoffPolicy struct {
	MaxAge         time.Duration
	PurgedVersions []uint64
}

func (p CutoffPolicy) matches(e *Entry, now time.Time) bool {
	if p.MaxAge > 0 && now.Sub(e.InsertedAt) > p.MaxAge {
		return true
	}

	for _, v := range p.PurgedVersions {
		if e.KeyVersion == v {
			return true
		}
	}

	return false
}

// Archive moves entries matching the policy to cold storage and removes them
// from hot lookup. The cold write happens before removal, so a failing
// collaborator leaves the hot ledger intact.
func (s *Store) Archive(ctx context.Context, policy CutoffPolicy, cold ColdStorage) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, fmt.Errorf("ledger archive: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()

	var evicted []Entry

	kept := make([]*Entry, 0, len(s.order))

	for _, e := range s.order {
		if policy.matches(e, now) {
			evicted = append(evicted, *e)
		} else {
			kept = append(kept, e)
		}
	}

	if len(evicted) == 0 {
		return 0, nil
	}

	if err := cold.Store(ctx, evicted); err != nil {
		return 0, fmt.Errorf("ledger archive: %w", err)
	}

	s.order = kept
	for _, e := range evicted {
		delete(s.entries, compositeKey{tag: string(e.Tag), version: e.KeyVersion})
	}

	s.log.Info("ledger entries archived",
		zap.Int("count", len(evicted)),
		zap.Int("remaining", len(s.order)),
	)

	return len(evicted), nil
}
