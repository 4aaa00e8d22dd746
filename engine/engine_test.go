// SPDX-License-Identifier: MIT
//
// Copyright (C) 2026 the SilentMatch contributors. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package engine_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silentmatch/silentmatch"
	"github.com/silentmatch/silentmatch/engine"
	"github.com/silentmatch/silentmatch/ledger"
)

func newEngine(t *testing.T, cfg *engine.Config) (*engine.Engine, *engine.Session) {
	t.Helper()

	e, err := engine.New(cfg, nil, nil)
	require.NoError(t, err)

	partner := e.Registry().Create("First National Bank")

	return e, engine.NewSession(partner.APIKey)
}

func TestEndToEndScenario(t *testing.T) {
	ctx := context.Background()
	e, sess := newEngine(t, nil)

	// The incident list is registered under the canonical attribute form.
	canonical := engine.Normalize("Alice@Example.com ", silentmatch.Email)
	require.Equal(t, "alice@example.com", canonical)

	results, err := e.Ingest(ctx, sess, []engine.Record{
		{Attribute: canonical, Type: silentmatch.Email, Metadata: []byte(`{"risk":"high"}`)},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)

	ingestedTag := results[0].Tag

	// A later applicant with equivalent raw input must hit the same entry.
	verification, err := e.Verify(ctx, sess, []engine.Query{
		{Attribute: engine.Normalize("alice@example.com", silentmatch.Email), Type: silentmatch.Email},
		{Attribute: engine.Normalize("carol@example.net", silentmatch.Email), Type: silentmatch.Email},
	})
	require.NoError(t, err)
	require.Len(t, verification, 2)

	require.NoError(t, verification[0].Err)
	assert.True(t, verification[0].Tag.Equal(ingestedTag))
	require.Len(t, verification[0].Matches, 1)
	assert.Equal(t, []byte(`{"risk":"high"}`), verification[0].Matches[0].Metadata)
	assert.Equal(t, uint64(1), verification[0].Matches[0].KeyVersion)

	require.NoError(t, verification[1].Err)
	assert.Empty(t, verification[1].Matches)
}

func TestPartialBatchFailure(t *testing.T) {
	ctx := context.Background()
	e, sess := newEngine(t, nil)

	results, err := e.Ingest(ctx, sess, []engine.Record{
		{Attribute: "alice@example.com", Type: silentmatch.Email, Metadata: []byte("a")},
		{Attribute: "bogus", Type: silentmatch.AttributeType(0), Metadata: []byte("b")},
		{Attribute: "bob@example.com", Type: silentmatch.Email, Metadata: []byte("c")},
	})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.NoError(t, results[0].Err)
	assert.ErrorIs(t, results[1].Err, silentmatch.ErrInvalidAttributeType)
	assert.NoError(t, results[2].Err)

	// The failing sibling left no half-registered record.
	assert.Equal(t, 2, e.Ledger().Len())
}

func TestConflictingMetadataSurfaced(t *testing.T) {
	ctx := context.Background()
	e, sess := newEngine(t, nil)

	first, err := e.Ingest(ctx, sess, []engine.Record{
		{Attribute: "alice@example.com", Type: silentmatch.Email, Metadata: []byte(`{"risk":"high"}`)},
	})
	require.NoError(t, err)
	require.NoError(t, first[0].Err)

	second, err := e.Ingest(ctx, sess, []engine.Record{
		{Attribute: "alice@example.com", Type: silentmatch.Email, Metadata: []byte(`{"risk":"low"}`)},
	})
	require.NoError(t, err)
	assert.ErrorIs(t, second[0].Err, silentmatch.ErrConflictingMetadata)

	assert.Equal(t, 1, e.Ledger().Len())
}

func TestVerifyIsReadOnly(t *testing.T) {
	ctx := context.Background()
	e, sess := newEngine(t, nil)

	_, err := e.Ingest(ctx, sess, []engine.Record{
		{Attribute: "alice@example.com", Type: silentmatch.Email, Metadata: []byte("a")},
	})
	require.NoError(t, err)

	before := e.Ledger().Len()

	_, err = e.Verify(ctx, sess, []engine.Query{
		{Attribute: "alice@example.com", Type: silentmatch.Email},
		{Attribute: "carol@example.net", Type: silentmatch.Email},
	})
	require.NoError(t, err)

	assert.Equal(t, before, e.Ledger().Len())
	assert.Equal(t, engine.Idle, sess.State())
}

func TestUnknownPartnerRejected(t *testing.T) {
	ctx := context.Background()

	e, err := engine.New(nil, nil, nil)
	require.NoError(t, err)

	sess := engine.NewSession("not-an-api-key")

	_, err = e.Ingest(ctx, sess, nil)
	assert.Error(t, err)

	_, err = e.Verify(ctx, sess, nil)
	assert.Error(t, err)
}

func TestRotationRederivationPurge(t *testing.T) {
	ctx := context.Background()
	e, sess := newEngine(t, nil)

	ingested, err := e.Ingest(ctx, sess, []engine.Record{
		{Attribute: "alice@example.com", Type: silentmatch.Email, Metadata: []byte(`{"risk":"high"}`)},
		{Attribute: "bob@example.com", Type: silentmatch.Email, Metadata: []byte(`{"risk":"low"}`)},
	})
	require.NoError(t, err)

	for _, r := range ingested {
		require.NoError(t, r.Err)
	}

	oldVersion := e.Keys().ActiveVersion()
	newVersion := e.Rotate()

	// Purging before re-derivation completes must be refused.
	assert.ErrorIs(t, e.Purge(oldVersion), silentmatch.ErrRetiredKeyInUse)

	job, err := e.ScheduleRederivation(ctx, oldVersion)
	require.NoError(t, err)

	<-job.Done()
	require.NoError(t, job.Err())
	assert.Equal(t, 2, job.Processed())

	// The re-derived entry must equal a fresh computation under the new key.
	verification, err := e.Verify(ctx, sess, []engine.Query{
		{Attribute: "alice@example.com", Type: silentmatch.Email},
	})
	require.NoError(t, err)
	require.NoError(t, verification[0].Err)

	var versions []uint64
	for _, m := range verification[0].Matches {
		versions = append(versions, m.KeyVersion)
	}
	assert.Contains(t, versions, newVersion)

	require.NoError(t, e.Purge(oldVersion))

	// After archival of the purged epoch, only the new entries remain hot.
	moved, err := e.Archive(ctx, ledger.CutoffPolicy{})
	require.NoError(t, err)
	assert.Equal(t, 2, moved)
	assert.Equal(t, 2, e.Ledger().Len())

	verification, err = e.Verify(ctx, sess, []engine.Query{
		{Attribute: "alice@example.com", Type: silentmatch.Email},
	})
	require.NoError(t, err)
	require.Len(t, verification[0].Matches, 1)
	assert.Equal(t, newVersion, verification[0].Matches[0].KeyVersion)
}

func TestRederivationHonorsCancellation(t *testing.T) {
	e, sess := newEngine(t, nil)

	_, err := e.Ingest(context.Background(), sess, []engine.Record{
		{Attribute: "alice@example.com", Type: silentmatch.Email, Metadata: []byte("a")},
	})
	require.NoError(t, err)

	oldVersion := e.Keys().ActiveVersion()
	e.Rotate()

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	job, err := e.ScheduleRederivation(cancelled, oldVersion)
	require.NoError(t, err)

	<-job.Done()
	assert.ErrorIs(t, job.Err(), context.Canceled)
	assert.Equal(t, 0, job.Processed())

	// A re-run after the interruption completes the work.
	job, err = e.ScheduleRederivation(context.Background(), oldVersion)
	require.NoError(t, err)

	<-job.Done()
	require.NoError(t, job.Err())
	require.NoError(t, e.Purge(oldVersion))
}

func TestRederivationIsIdempotent(t *testing.T) {
	ctx := context.Background()
	e, sess := newEngine(t, nil)

	_, err := e.Ingest(ctx, sess, []engine.Record{
		{Attribute: "alice@example.com", Type: silentmatch.Email, Metadata: []byte("a")},
	})
	require.NoError(t, err)

	oldVersion := e.Keys().ActiveVersion()
	e.Rotate()

	for i := 0; i < 2; i++ {
		job, err := e.ScheduleRederivation(ctx, oldVersion)
		require.NoError(t, err)
		<-job.Done()
		require.NoError(t, job.Err())
	}

	// One original entry, one re-derived entry; the second run added nothing.
	assert.Equal(t, 2, e.Ledger().Len())
}

func TestHealth(t *testing.T) {
	ctx := context.Background()
	e, sess := newEngine(t, nil)

	assert.Equal(t, engine.HealthUnknown, e.Health("missing"))

	_, err := e.Ingest(ctx, sess, []engine.Record{
		{Attribute: "alice@example.com", Type: silentmatch.Email, Metadata: []byte("a")},
	})
	require.NoError(t, err)
	assert.Equal(t, engine.HealthOK, e.Health(sess.APIKey))

	e.Rotate()
	assert.Equal(t, engine.HealthOutdated, e.Health(sess.APIKey))
}

func TestZeroValueParallelism(t *testing.T) {
	ctx := context.Background()

	// A hand-built Config without Parallelism must still process batches.
	e, sess := newEngine(t, &engine.Config{Ciphersuite: "ristretto255-SHA512"})

	results, err := e.Ingest(ctx, sess, []engine.Record{
		{Attribute: "alice@example.com", Type: silentmatch.Email, Metadata: []byte("a")},
		{Attribute: "bob@example.com", Type: silentmatch.Email, Metadata: []byte("b")},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)

	for _, r := range results {
		require.NoError(t, r.Err)
	}
}

func TestRegisterAcceptsDecodedRegistration(t *testing.T) {
	ctx := context.Background()
	e, sess := newEngine(t, nil)

	results, err := e.Ingest(ctx, sess, []engine.Record{
		{Attribute: "alice@example.com", Type: silentmatch.Email, Metadata: []byte("a")},
	})
	require.NoError(t, err)
	require.NoError(t, results[0].Err)

	entries := e.Ledger().Version(e.Keys().ActiveVersion())
	require.Len(t, entries, 1)

	// Re-registering the entry as a wire message round-trip stays idempotent.
	registration := &silentmatch.Registration{
		Tag:           entries[0].Tag,
		Element:       entries[0].Element,
		Metadata:      entries[0].Metadata,
		KeyVersion:    entries[0].KeyVersion,
		AttributeType: entries[0].AttributeType,
	}

	encoded, err := registration.Serialize()
	require.NoError(t, err)

	decoded, err := silentmatch.DecodeRegistration(silentmatch.Ristretto255Sha512, encoded)
	require.NoError(t, err)

	require.NoError(t, e.Register(ctx, decoded))
	assert.Equal(t, 1, e.Ledger().Len())
}

func TestVerifiableEngine(t *testing.T) {
	ctx := context.Background()

	cfg := engine.DefaultConfig()
	cfg.VerifiableSigning = true

	e, sess := newEngine(t, cfg)

	results, err := e.Ingest(ctx, sess, []engine.Record{
		{Attribute: "alice@example.com", Type: silentmatch.Email, Metadata: []byte("a")},
	})
	require.NoError(t, err)
	require.NoError(t, results[0].Err)

	verification, err := e.Verify(ctx, sess, []engine.Query{
		{Attribute: "alice@example.com", Type: silentmatch.Email},
	})
	require.NoError(t, err)
	require.Len(t, verification[0].Matches, 1)
}
