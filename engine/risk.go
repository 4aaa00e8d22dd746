// SPDX-License-Identifier: MIT
//
// Copyright (C) 2026 the SilentMatch contributors. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package engine

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidRiskMetadata is returned when a risk metadata payload carries a
// risk type or actor role outside the taxonomy.
var ErrInvalidRiskMetadata = errors.New("invalid risk metadata")

// RiskType classifies the fraud risk a ledger entry reports.
type RiskType string

const (
	// CreditDefault flags a defaulted credit obligation.
	CreditDefault RiskType = "CREDIT_DEFAULT"

	// IdentityTheft flags a stolen or impersonated identity.
	IdentityTheft RiskType = "IDENTITY_THEFT"

	// MoneyLaundering flags involvement in laundering activity.
	MoneyLaundering RiskType = "MONEY_LAUNDERING"
)

// Valid returns whether r is a member of the taxonomy.
func (r RiskType) Valid() bool {
	switch r {
	case CreditDefault, IdentityTheft, MoneyLaundering:
		return true
	default:
		return false
	}
}

// ActorRole states which side of the incident the attribute's holder was on.
type ActorRole string

const (
	// Perpetrator marks the attribute holder as the offending party.
	Perpetrator ActorRole = "PERPETRATOR"

	// Victim marks the attribute holder as the harmed party.
	Victim ActorRole = "VICTIM"
)

// Valid returns whether a is a member of the taxonomy.
func (a ActorRole) Valid() bool {
	switch a {
	case Perpetrator, Victim:
		return true
	default:
		return false
	}
}

// RiskMetadata is the conventional payload partners attach to a registration.
// It only exists on the partner side: the ledger stores metadata as
// uninterpreted bytes and compares it for equality alone, so partners using a
// different payload scheme lose nothing.
type RiskMetadata struct {
	Risk RiskType  `json:"risk"`
	Role ActorRole `json:"role"`
}

// Encode returns the JSON payload to attach to a Record.
func (m RiskMetadata) Encode() ([]byte, error) {
	if !m.Risk.Valid() || !m.Role.Valid() {
		return nil, fmt.Errorf("%w: risk %q, role %q", ErrInvalidRiskMetadata, m.Risk, m.Role)
	}

	return json.Marshal(m)
}

// DecodeRiskMetadata parses a metadata payload produced by Encode.
func DecodeRiskMetadata(data []byte) (RiskMetadata, error) {
	var m RiskMetadata
	if err := json.Unmarshal(data, &m); err != nil {
		return RiskMetadata{}, fmt.Errorf("%w: %v", ErrInvalidRiskMetadata, err)
	}

	if !m.Risk.Valid() || !m.Role.Valid() {
		return RiskMetadata{}, fmt.Errorf("%w: risk %q, role %q", ErrInvalidRiskMetadata, m.Risk, m.Role)
	}

	return m, nil
}
