// SPDX-License-Identifier: MIT
//
// Copyright (C) 2026 the SilentMatch contributors. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package silentmatch

import (
	"errors"

	"github.com/silentmatch/silentmatch/keyring"
)

var (
	// ErrInvalidGroupElement is returned on input that is not a valid member
	// of the group: malformed encodings, the identity element, or elements of
	// a foreign group. Such input is rejected before any secret touches it.
	ErrInvalidGroupElement = errors.New("invalid group element")

	// ErrUnblindMismatch is returned when an evaluation cannot have been
	// produced from the corresponding blinded element under the announced key.
	// Only detectable when the signer provides a proof.
	ErrUnblindMismatch = errors.New("evaluation does not match the blinded element")

	// ErrConflictingMetadata is returned by the ledger when an entry with the
	// same tag and key version exists with different risk metadata.
	ErrConflictingMetadata = errors.New("conflicting risk metadata for existing ledger entry")

	// ErrInvalidAttributeType is returned for a type outside the closed
	// attribute enumeration.
	ErrInvalidAttributeType = errors.New("unknown attribute type")

	// ErrInvalidCiphersuite is returned for an unsupported ciphersuite
	// identifier.
	ErrInvalidCiphersuite = errors.New("invalid ciphersuite identifier")
)

// Key lifecycle violations are raised by the keyring package; they are
// re-exported here to complete the error taxonomy.
var (
	// ErrUnknownKeyVersion is returned when a requested key version was never
	// created or has been purged.
	ErrUnknownKeyVersion = keyring.ErrUnknownKeyVersion

	// ErrRetiredKeyInUse is returned when purging a key that ledger entries
	// still depend on.
	ErrRetiredKeyInUse = keyring.ErrRetiredKeyInUse
)
