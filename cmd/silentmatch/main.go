// SPDX-License-Identifier: MIT
//
// Copyright (C) 2026 the SilentMatch contributors. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Command silentmatch runs both protocol roles in-process against an
// in-memory ledger: ingest a fraud batch, verify applicants, rotate the
// signing key, re-derive the ledger, and purge the retired key.
package main

import (
	"context"
	"flag"
	"os"

	"go.uber.org/zap"

	"github.com/silentmatch/silentmatch"
	"github.com/silentmatch/silentmatch/engine"
	"github.com/silentmatch/silentmatch/ledger"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML configuration file")
	flag.Parse()

	cfg := engine.DefaultConfig()

	if *configPath != "" {
		loaded, err := engine.LoadConfig(*configPath)
		if err != nil {
			zap.NewExample().Fatal("loading configuration", zap.Error(err))
		}

		cfg = loaded
	}

	log := engine.NewLogger(cfg.LogEnv, cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Error("run failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *engine.Config, log *zap.Logger) error {
	ctx := context.Background()

	e, err := engine.New(cfg, log, nil)
	if err != nil {
		return err
	}

	partner := e.Registry().Create("First National Bank")
	sess := engine.NewSession(partner.APIKey)

	incidents := []engine.Record{
		{
			Attribute: engine.Normalize("Alice@Example.com ", silentmatch.Email),
			Type:      silentmatch.Email,
			Metadata:  riskPayload(engine.IdentityTheft, engine.Perpetrator),
		},
		{
			Attribute: engine.Normalize("+1 (416) 555-0199", silentmatch.Phone),
			Type:      silentmatch.Phone,
			Metadata:  riskPayload(engine.MoneyLaundering, engine.Perpetrator),
		},
		{
			Attribute: engine.Normalize("Bob Tremblay", silentmatch.Name),
			Type:      silentmatch.Name,
			Metadata:  riskPayload(engine.CreditDefault, engine.Victim),
		},
	}

	results, err := e.Ingest(ctx, sess, incidents)
	if err != nil {
		return err
	}

	for _, r := range results {
		if r.Err != nil {
			log.Warn("record not registered", zap.Int("index", r.Index), zap.Error(r.Err))
		}
	}

	log.Info("ingestion finished", zap.Int("ledger_entries", e.Ledger().Len()))

	applicants := []engine.Query{
		{Attribute: engine.Normalize("alice@example.com", silentmatch.Email), Type: silentmatch.Email},
		{Attribute: engine.Normalize("carol@example.net", silentmatch.Email), Type: silentmatch.Email},
	}

	report(ctx, log, e, sess, applicants)

	// Rotate, re-derive the old epoch under the new key, then retire it for
	// good and re-check the applicants.
	oldVersion := e.Keys().ActiveVersion()
	newVersion := e.Rotate()
	log.Info("rotated signing key", zap.Uint64("version", newVersion))

	job, err := e.ScheduleRederivation(ctx, oldVersion)
	if err != nil {
		return err
	}
	<-job.Done()

	if err := job.Err(); err != nil {
		return err
	}

	if err := e.Purge(oldVersion); err != nil {
		return err
	}

	if _, err := e.Archive(ctx, ledger.CutoffPolicy{MaxAge: cfg.ArchiveMaxAge}); err != nil {
		return err
	}

	report(ctx, log, e, sess, applicants)

	return nil
}

func riskPayload(risk engine.RiskType, role engine.ActorRole) []byte {
	payload, err := engine.RiskMetadata{Risk: risk, Role: role}.Encode()
	if err != nil {
		panic(err)
	}

	return payload
}

func report(ctx context.Context, log *zap.Logger, e *engine.Engine, sess *engine.Session, applicants []engine.Query) {
	results, err := e.Verify(ctx, sess, applicants)
	if err != nil {
		log.Error("verification failed", zap.Error(err))
		return
	}

	for _, r := range results {
		switch {
		case r.Err != nil:
			log.Warn("applicant not verified", zap.Int("index", r.Index), zap.Error(r.Err))
		case len(r.Matches) > 0:
			fields := []zap.Field{
				zap.Int("index", r.Index),
				zap.Uint64("key_version", r.Matches[0].KeyVersion),
			}

			if risk, err := engine.DecodeRiskMetadata(r.Matches[0].Metadata); err == nil {
				fields = append(fields,
					zap.String("risk", string(risk.Risk)),
					zap.String("role", string(risk.Role)),
				)
			} else {
				fields = append(fields, zap.ByteString("metadata", r.Matches[0].Metadata))
			}

			log.Info("ALERT: applicant matched ledger", fields...)
		default:
			log.Info("applicant clean", zap.Int("index", r.Index))
		}
	}
}
