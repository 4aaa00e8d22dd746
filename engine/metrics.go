// SPDX-License-Identifier: MIT
//
// Copyright (C) 2026 the SilentMatch contributors. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package engine

import (
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "silentmatch"

// Metrics holds the engine's counters. Only protocol-level events are
// counted; nothing attribute-identifying ever reaches a label.
type Metrics struct {
	SignaturesIssued prometheus.Counter
	TagsRegistered   prometheus.Counter
	Matches          prometheus.Counter
	Misses           prometheus.Counter
	RejectedInputs   prometheus.Counter
	Rotations        prometheus.Counter
	RederivedEntries prometheus.Counter
}

// NewMetrics builds the counter set and registers it on reg. A nil registerer
// leaves the counters unregistered, which is what tests want.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      name,
			Help:      help,
		})
	}

	m := &Metrics{
		SignaturesIssued: counter("signatures_issued_total", "Blinded elements signed."),
		TagsRegistered:   counter("tags_registered_total", "Ledger entries inserted during ingestion."),
		Matches:          counter("matches_total", "Verification queries that matched a ledger entry."),
		Misses:           counter("misses_total", "Verification queries with no ledger match."),
		RejectedInputs:   counter("rejected_inputs_total", "Inputs rejected as invalid group elements."),
		Rotations:        counter("key_rotations_total", "Signing key rotations."),
		RederivedEntries: counter("rederived_entries_total", "Ledger entries re-derived across key versions."),
	}

	if reg != nil {
		reg.MustRegister(
			m.SignaturesIssued,
			m.TagsRegistered,
			m.Matches,
			m.Misses,
			m.RejectedInputs,
			m.Rotations,
			m.RederivedEntries,
		)
	}

	return m
}
