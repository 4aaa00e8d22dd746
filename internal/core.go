// SPDX-License-Identifier: MIT
//
// Copyright (C) 2026 the SilentMatch contributors. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package internal holds the cryptographic core shared by the SilentMatch
// client, signer, and re-derivation paths.
package internal

import (
	"fmt"

	"github.com/bytemare/ecc"
	"github.com/bytemare/hash"
)

const (
	// Version is the protocol version string baked into every domain
	// separation tag. Bumping it invalidates all previously derived tags.
	Version = "SilentMatchV1"

	contextStringPrefix  = Version + "-"
	hash2groupDSTPrefix  = "HashToGroup-"
	hash2scalarDSTPrefix = "HashToScalar-"
	dstSeed              = "Seed-"
	dstFinalize          = "Finalize"
	deriveKeyDST         = "DeriveKey"
)

// GroupIdentifier maps a group to the identifier used in domain separation
// tags, following the RFC 9497 naming.
var GroupIdentifier = map[ecc.Group]string{
	ecc.Ristretto255Sha512: "ristretto255-SHA512",
	ecc.P256Sha256:         "P256-SHA256",
	ecc.P384Sha384:         "P384-SHA384",
	ecc.P521Sha512:         "P521-SHA512",
	ecc.Secp256k1Sha256:    "secp256k1-SHA256",
}

// A Core holds the group, hash function, and precomputed domain separation
// tags for one ciphersuite.
type Core struct {
	Hash   hash.Hasher
	h2gDST []byte
	h2sDST []byte
	Group  ecc.Group
}

// ContextString builds the constant protocol string prefixing all domain
// separation tags for the given group.
func ContextString(name string) []byte {
	return []byte(contextStringPrefix + name)
}

func makeCore(g ecc.Group, h hash.Hash) *Core {
	ctx := ContextString(GroupIdentifier[g])

	return &Core{
		Group:  g,
		Hash:   h.New(),
		h2gDST: Dst(hash2groupDSTPrefix, ctx),
		h2sDST: Dst(hash2scalarDSTPrefix, ctx),
	}
}

// LoadConfiguration returns the core configuration for the given group.
func LoadConfiguration(g ecc.Group) *Core {
	switch g {
	case ecc.Ristretto255Sha512:
		return makeCore(ecc.Ristretto255Sha512, hash.SHA512)
	case ecc.P256Sha256:
		return makeCore(ecc.P256Sha256, hash.SHA256)
	case ecc.P384Sha384:
		return makeCore(ecc.P384Sha384, hash.SHA384)
	case ecc.P521Sha512:
		return makeCore(ecc.P521Sha512, hash.SHA512)
	case ecc.Secp256k1Sha256:
		return makeCore(ecc.Secp256k1Sha256, hash.SHA256)
	default:
		panic(fmt.Sprintf("invalid group: %v", g))
	}
}

// HashToGroup maps input to a group element within the attribute domain dom.
// Distinct domains yield disjoint element spaces for identical inputs.
func (c *Core) HashToGroup(input, dom []byte) *ecc.Element {
	return c.Group.HashToGroup(input, concatenate(c.h2gDST, dom))
}

// HashToScalar maps the input data to a scalar.
func (c *Core) HashToScalar(data []byte) *ecc.Scalar {
	return c.Group.HashToScalar(data, c.h2sDST)
}

// Finalize derives the fixed-length protocol output from an evaluated
// element's encoding, framed with the attribute domain. The raw attribute is
// deliberately not part of the transcript, so that the holder of the signing
// keys can re-derive tags across key epochs from the element alone.
func (c *Core) Finalize(dom, evaluated []byte) []byte {
	return c.Hash.Hash(0,
		lengthPrefixEncode(dom),
		lengthPrefixEncode(evaluated),
		[]byte(dstFinalize),
	)
}

// DeriveKey deterministically derives a non-zero signing scalar from a secret
// seed and instance specific info.
func (c *Core) DeriveKey(seed, info []byte) *ecc.Scalar {
	dst := concatenate([]byte(deriveKeyDST), ContextString(GroupIdentifier[c.Group]))
	deriveInput := concatenate(seed, lengthPrefixEncode(info))

	var counter uint8
	var sk *ecc.Scalar

	for sk == nil || sk.IsZero() {
		if counter > 254 {
			panic("impossible to generate non-zero scalar")
		}

		sk = c.Group.HashToScalar(concatenate(deriveInput, []byte{counter}), dst)
		counter++
	}

	return sk
}
