// SPDX-License-Identifier: MIT
//
// Copyright (C) 2026 the SilentMatch contributors. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package silentmatch

import (
	"github.com/bytemare/ecc"

	"github.com/silentmatch/silentmatch/internal"
)

// Ciphersuite identifies the elliptic curve prime-order group and hash
// function the protocol runs on.
type Ciphersuite byte

const (
	// Ristretto255Sha512 identifies the Ristretto255 group and SHA-512.
	Ristretto255Sha512 = Ciphersuite(ecc.Ristretto255Sha512)

	// P256Sha256 identifies the NIST P-256 group and SHA-256.
	P256Sha256 = Ciphersuite(ecc.P256Sha256)

	// P384Sha384 identifies the NIST P-384 group and SHA-384.
	P384Sha384 = Ciphersuite(ecc.P384Sha384)

	// P521Sha512 identifies the NIST P-521 group and SHA-512.
	P521Sha512 = Ciphersuite(ecc.P521Sha512)

	// Secp256k1Sha256 identifies the SECp256k1 group and SHA-256.
	Secp256k1Sha256 = Ciphersuite(ecc.Secp256k1Sha256)
)

// FromGroup returns a Ciphersuite given a Group.
func FromGroup(g ecc.Group) Ciphersuite {
	return Ciphersuite(g)
}

// Available returns whether the ciphersuite is supported.
func (c Ciphersuite) Available() bool {
	switch c {
	case Ristretto255Sha512, P256Sha256, P384Sha384, P521Sha512, Secp256k1Sha256:
		return true
	default:
		return false
	}
}

// Group returns the elliptic curve prime-order group of the ciphersuite.
func (c Ciphersuite) Group() ecc.Group {
	return ecc.Group(c)
}

// Name returns the RFC 9497 compliant identifier of the ciphersuite.
func (c Ciphersuite) Name() string {
	return internal.GroupIdentifier[ecc.Group(c)]
}

func (c Ciphersuite) core() *internal.Core {
	return internal.LoadConfiguration(ecc.Group(c))
}
