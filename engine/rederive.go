// SPDX-License-Identifier: MIT
//
// Copyright (C) 2026 the SilentMatch contributors. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package engine

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/silentmatch/silentmatch"
	"github.com/silentmatch/silentmatch/keyring"
	"github.com/silentmatch/silentmatch/ledger"
)

var errRederiveActive = errors.New("cannot re-derive entries under the key they already belong to")

// Rederivation is a handle on a background re-derivation batch job. The job
// walks the insertion-ordered snapshot of one retired key's entries,
// transforms each evaluated element under the active key, inserts the new
// entry, and marks the old one archival-eligible. It is cancellable, and safe
// to re-run after partial completion: inserts are idempotent and reconciled
// entries are skipped.
type Rederivation struct {
	err        error
	cancel     context.CancelFunc
	done       chan struct{}
	OldVersion uint64
	NewVersion uint64
	processed  int
	mu         sync.Mutex
}

// Done is closed when the job has stopped, successfully or not.
func (j *Rederivation) Done() <-chan struct{} { return j.done }

// Err returns the job's terminal error, if any. Only meaningful after Done is
// closed.
func (j *Rederivation) Err() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	return j.err
}

// Processed returns the job's high-water mark: the number of snapshot entries
// handled so far.
func (j *Rederivation) Processed() int {
	j.mu.Lock()
	defer j.mu.Unlock()

	return j.processed
}

// Cancel stops the job. Entries already re-derived stay in the ledger; a
// later run resumes past them.
func (j *Rederivation) Cancel() { j.cancel() }

func (j *Rederivation) bump() {
	j.mu.Lock()
	j.processed++
	j.mu.Unlock()
}

// fail records the job's first error; later failures keep the original cause.
func (j *Rederivation) fail(err error) {
	j.mu.Lock()
	if j.err == nil {
		j.err = err
	}
	j.mu.Unlock()
}

// ScheduleRederivation starts re-deriving all ledger entries at oldVersion
// under the current active key, as a background job bound to ctx.
func (e *Engine) ScheduleRederivation(ctx context.Context, oldVersion uint64) (*Rederivation, error) {
	oldKey, err := e.keys.Get(oldVersion)
	if err != nil {
		return nil, err
	}

	newKey := e.keys.Active()
	if newKey.Version() == oldVersion {
		return nil, errRederiveActive
	}

	jobCtx, cancel := context.WithCancel(ctx)

	job := &Rederivation{
		cancel:     cancel,
		done:       make(chan struct{}),
		OldVersion: oldVersion,
		NewVersion: newKey.Version(),
	}

	go e.rederive(jobCtx, job, oldKey, newKey)

	return job, nil
}

func (e *Engine) rederive(ctx context.Context, job *Rederivation, oldKey, newKey *keyring.SigningKey) {
	defer close(job.done)
	defer job.cancel()

	log := e.log.With(
		zap.Uint64("old_version", job.OldVersion),
		zap.Uint64("new_version", job.NewVersion),
	)

	entries := e.store.Version(job.OldVersion)
	log.Info("re-derivation started", zap.Int("entries", len(entries)))

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			job.fail(err)
			log.Warn("re-derivation interrupted", zap.Int("processed", job.Processed()))

			return
		}

		if entry.Reconciled {
			job.bump()
			continue
		}

		tag, element, err := e.suite.Rederive(entry.Element, entry.AttributeType, oldKey.Scalar(), newKey.Scalar())
		if err != nil {
			// A malformed stored element is a ledger integrity defect; skip
			// the entry and surface the first such error on the job.
			job.fail(err)
			job.bump()
			log.Error("re-derivation skipped entry", zap.String("tag", entry.Tag.String()), zap.Error(err))

			continue
		}

		err = e.store.Insert(ctx, ledgerEntryFrom(entry, tag, element, newKey.Version()))
		if err != nil {
			job.fail(err)
			job.bump()
			log.Error("re-derived entry not inserted", zap.String("tag", tag.String()), zap.Error(err))

			continue
		}

		e.store.MarkReconciled(entry.Tag, entry.KeyVersion)
		e.metrics.RederivedEntries.Inc()
		job.bump()
	}

	log.Info("re-derivation finished", zap.Int("processed", job.Processed()))
}

func ledgerEntryFrom(old ledger.Entry, tag silentmatch.Tag, element []byte, version uint64) ledger.Entry {
	return ledger.Entry{
		Tag:           tag,
		Element:       element,
		Metadata:      old.Metadata,
		KeyVersion:    version,
		AttributeType: old.AttributeType,
	}
}
