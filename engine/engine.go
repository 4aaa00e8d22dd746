// SPDX-License-Identifier: MIT
//
// Copyright (C) 2026 the SilentMatch contributors. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package engine sequences the SilentMatch protocol phases. It owns the
// keyring, the signing engine, and the ledger, and drives the blind → sign →
// unblind → register pipeline per attribute during ingestion, or the
// read-only matching pipeline during verification.
package engine

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/silentmatch/silentmatch"
	"github.com/silentmatch/silentmatch/keyring"
	"github.com/silentmatch/silentmatch/ledger"
)

var errUnknownPartner = errors.New("unknown partner api key")

// Record is one attribute to ingest, in the canonical form produced by the
// normalization collaborator, with its opaque risk metadata.
type Record struct {
	Attribute string
	Metadata  []byte
	Type      silentmatch.AttributeType
}

// Query is one attribute to verify against the ledger.
type Query struct {
	Attribute string
	Type      silentmatch.AttributeType
}

// ItemResult reports the outcome for a single attribute of a batch. Batches
// succeed partially: one failing attribute never aborts its siblings.
type ItemResult struct {
	Err     error
	Tag     silentmatch.Tag
	Matches []ledger.Entry
	Index   int
}

// Engine wires both protocol roles for an in-process deployment. The
// transport between the roles is the wire-message boundary in the root
// package; deployments splitting the roles across processes substitute their
// own carrier.
type Engine struct {
	log      *zap.Logger
	keys     *keyring.Manager
	signer   *silentmatch.Signer
	store    *ledger.Store
	registry *Registry
	metrics  *Metrics
	cold     ledger.ColdStorage
	suite    silentmatch.Ciphersuite
	workers  int
	verified bool
}

// New assembles an Engine from the configuration.
func New(cfg *Config, log *zap.Logger, metrics *Metrics) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if log == nil {
		log = zap.NewNop()
	}

	if metrics == nil {
		metrics = NewMetrics(nil)
	}

	suite, err := cfg.Suite()
	if err != nil {
		return nil, err
	}

	keys := keyring.NewManager(suite.Group(), log.Named("keyring"))

	var signer *silentmatch.Signer
	if cfg.VerifiableSigning {
		signer, err = silentmatch.NewVerifiableSigner(suite, keys)
	} else {
		signer, err = silentmatch.NewSigner(suite, keys)
	}

	if err != nil {
		return nil, err
	}

	// errgroup blocks forever on SetLimit(0), so a zero-value Parallelism in
	// a hand-built Config must not reach the batch loops.
	workers := cfg.Parallelism
	if workers < 1 {
		workers = 1
	}

	return &Engine{
		log:      log,
		keys:     keys,
		signer:   signer,
		store:    ledger.NewStore(log.Named("ledger")),
		registry: NewRegistry(),
		metrics:  metrics,
		cold:     ledger.Discard{},
		suite:    suite,
		workers:  workers,
		verified: cfg.VerifiableSigning,
	}, nil
}

// Keys exposes the key version manager.
func (e *Engine) Keys() *keyring.Manager { return e.keys }

// Ledger exposes the hot ledger store.
func (e *Engine) Ledger() *ledger.Store { return e.store }

// Registry exposes the partner registry.
func (e *Engine) Registry() *Registry { return e.registry }

// SetColdStorage installs the archival collaborator.
func (e *Engine) SetColdStorage(cold ledger.ColdStorage) { e.cold = cold }

// run executes one full OPRF round for a single attribute: encode, blind,
// sign under the active key, unblind, finalize.
func (e *Engine) run(attribute string, t silentmatch.AttributeType) (*silentmatch.Output, error) {
	var (
		client *silentmatch.Client
		err    error
	)

	if e.verified {
		client, err = silentmatch.NewVerifiableClient(e.suite, t, e.signer.PublicKey())
	} else {
		client, err = silentmatch.NewClient(e.suite, t)
	}

	if err != nil {
		return nil, err
	}

	blinded, err := client.Blind(attribute)
	if err != nil {
		return nil, err
	}

	evaluation, err := e.signer.Sign(blinded)
	if err != nil {
		if errors.Is(err, silentmatch.ErrInvalidGroupElement) {
			e.metrics.RejectedInputs.Inc()
			e.log.Warn("blinded element rejected", zap.String("attribute_type", t.String()))
		}

		return nil, err
	}

	e.metrics.SignaturesIssued.Inc()

	return client.Finalize(evaluation)
}

// Ingest runs the ingestion phase for a batch of records. Each attribute's
// blind → sign → unblind → register sequence is atomic: any per-attribute
// failure leaves no ledger entry for it. Results are per-item; the returned
// error reflects only session or cancellation failures.
func (e *Engine) Ingest(ctx context.Context, sess *Session, records []Record) ([]ItemResult, error) {
	partner, ok := e.registry.Get(sess.APIKey)
	if !ok {
		return nil, errUnknownPartner
	}

	if err := sess.begin(Ingesting); err != nil {
		return nil, err
	}
	defer sess.end()

	e.log.Info("ingestion started",
		zap.String("session", sess.ID),
		zap.String("partner", partner.Name),
		zap.Int("records", len(records)),
	)

	results := make([]ItemResult, len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i, record := range records {
		g.Go(func() error {
			results[i] = e.ingestOne(gctx, record)
			results[i].Index = i

			return nil
		})
	}

	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return results, fmt.Errorf("ingestion interrupted: %w", err)
	}

	e.registry.UpdateSync(sess.APIKey, e.keys.ActiveVersion())

	return results, nil
}

func (e *Engine) ingestOne(ctx context.Context, record Record) ItemResult {
	output, err := e.run(record.Attribute, record.Type)
	if err != nil {
		return ItemResult{Err: err}
	}

	registration := &silentmatch.Registration{
		Tag:           output.Tag,
		Element:       output.Element,
		Metadata:      record.Metadata,
		KeyVersion:    output.KeyVersion,
		AttributeType: output.AttributeType,
	}

	if err := e.Register(ctx, registration); err != nil {
		return ItemResult{Tag: output.Tag, Err: err}
	}

	return ItemResult{Tag: output.Tag}
}

// Register appends a client's registration message to the ledger. Ingest
// routes every record through it; deployments splitting the roles across
// processes feed decoded Registration messages here directly.
func (e *Engine) Register(ctx context.Context, registration *silentmatch.Registration) error {
	err := e.store.Insert(ctx, ledger.Entry{
		Tag:           registration.Tag,
		Element:       registration.Element,
		Metadata:      registration.Metadata,
		KeyVersion:    registration.KeyVersion,
		AttributeType: registration.AttributeType,
	})
	if err != nil {
		return err
	}

	e.metrics.TagsRegistered.Inc()

	return nil
}

// Verify runs the verification phase for a batch of queries. It is strictly
// read-only with respect to the ledger; matches cover all live key versions.
func (e *Engine) Verify(ctx context.Context, sess *Session, queries []Query) ([]ItemResult, error) {
	if _, ok := e.registry.Get(sess.APIKey); !ok {
		return nil, errUnknownPartner
	}

	if err := sess.begin(Verifying); err != nil {
		return nil, err
	}
	defer sess.end()

	results := make([]ItemResult, len(queries))
	live := e.keys.Versions()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i, query := range queries {
		g.Go(func() error {
			results[i] = e.verifyOne(gctx, query, live)
			results[i].Index = i

			return nil
		})
	}

	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return results, fmt.Errorf("verification interrupted: %w", err)
	}

	return results, nil
}

func (e *Engine) verifyOne(ctx context.Context, query Query, live []uint64) ItemResult {
	output, err := e.run(query.Attribute, query.Type)
	if err != nil {
		return ItemResult{Err: err}
	}

	matches, err := e.store.Lookup(ctx, output.Tag, live...)
	if err != nil {
		return ItemResult{Tag: output.Tag, Err: err}
	}

	if len(matches) > 0 {
		e.metrics.Matches.Inc()
	} else {
		e.metrics.Misses.Inc()
	}

	return ItemResult{Tag: output.Tag, Matches: matches}
}

// Rotate generates a fresh signing key and retires the previous one.
func (e *Engine) Rotate() uint64 {
	version := e.keys.Rotate()
	e.metrics.Rotations.Inc()

	return version
}

// Purge irreversibly deletes a retired key once all its ledger entries have
// been reconciled.
func (e *Engine) Purge(version uint64) error {
	return e.keys.Purge(version, e.store)
}

// Archive applies the configured age cutoff and evicts entries of purged key
// versions to the cold storage collaborator.
func (e *Engine) Archive(ctx context.Context, policy ledger.CutoffPolicy) (int, error) {
	policy.PurgedVersions = append(policy.PurgedVersions, e.keys.PurgedVersions()...)

	return e.store.Archive(ctx, policy, e.cold)
}
