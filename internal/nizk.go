// SPDX-License-Identifier: MIT
//
// Copyright (C) 2026 the SilentMatch contributors. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package internal

import (
	"errors"

	"github.com/bytemare/ecc"
)

const (
	dstComposite = "Composite"
	dstChallenge = "Challenge"
)

// ErrProofFailed is returned when a signer's proof of correct exponentiation
// does not verify.
var ErrProofFailed = errors.New("invalid proof")

// Verifiable adds a non-interactive zero-knowledge proof of correct
// exponentiation on top of the base signing operation, so that a client can
// detect a signer using a key other than the announced one.
type Verifiable struct {
	*Core
	seedDST []byte
}

// NewVerifiable returns the proof configuration for the core's ciphersuite.
func NewVerifiable(c *Core) *Verifiable {
	ctx := ContextString(GroupIdentifier[c.Group])

	return &Verifiable{
		Core:    c,
		seedDST: Dst(dstSeed, ctx),
	}
}

func (v *Verifiable) challenge(encPk []byte, a0, a1, a2, a3 *ecc.Element) *ecc.Scalar {
	encA0 := lengthPrefixEncode(a0.Encode())
	encA1 := lengthPrefixEncode(a1.Encode())
	encA2 := lengthPrefixEncode(a2.Encode())
	encA3 := lengthPrefixEncode(a3.Encode())
	encDST := []byte(dstChallenge)
	input := concatenate(encPk, encA0, encA1, encA2, encA3, encDST)

	return v.HashToScalar(input)
}

// GenerateProof produces a NIZK proof binding the evaluated elements to the
// public key of the signing exponent.
func (v *Verifiable) GenerateProof(
	random, k *ecc.Scalar,
	pk *ecc.Element,
	blinded, evaluated []*ecc.Element,
) (*ecc.Scalar, *ecc.Scalar) {
	encPk := lengthPrefixEncode(pk.Encode())
	a0, a1 := v.computeComposites(k, encPk, blinded, evaluated)

	a2 := v.Group.Base().Multiply(random)
	a3 := a0.Copy().Multiply(random)

	proofC := v.challenge(encPk, a0, a1, a2, a3)
	proofS := random.Subtract(proofC.Copy().Multiply(k))

	return proofC, proofS
}

// VerifyProof verifies a proof produced by GenerateProof.
func (v *Verifiable) VerifyProof(
	proofC, proofS *ecc.Scalar,
	pk *ecc.Element,
	blinded, evaluated []*ecc.Element,
) error {
	encPk := lengthPrefixEncode(pk.Encode())
	a0, a1 := v.computeComposites(nil, encPk, blinded, evaluated)

	ap := pk.Copy().Multiply(proofC)
	a2 := v.Group.Base().Multiply(proofS).Add(ap)

	bm := a0.Copy().Multiply(proofS)
	bz := a1.Copy().Multiply(proofC)
	a3 := bm.Add(bz)
	expectedC := v.challenge(encPk, a0, a1, a2, a3)

	if !CtEqual(expectedC.Encode(), proofC.Encode()) {
		return ErrProofFailed
	}

	return nil
}

func (v *Verifiable) ccScalar(encSeed []byte, index int, ci, di *ecc.Element) *ecc.Scalar {
	input := concatenate(encSeed, I2osp2(index),
		lengthPrefixEncode(ci.Encode()),
		lengthPrefixEncode(di.Encode()),
		[]byte(dstComposite))

	return v.HashToScalar(input)
}

func (v *Verifiable) computeCompositesFast(
	k *ecc.Scalar,
	encSeed []byte,
	cs, ds []*ecc.Element,
) (*ecc.Element, *ecc.Element) {
	m := v.Group.NewElement().Identity()

	for i, ci := range cs {
		di := v.ccScalar(encSeed, i, ci, ds[i])
		m = ci.Copy().Multiply(di).Add(m)
	}

	return m, m.Copy().Multiply(k)
}

func (v *Verifiable) computeCompositesClient(
	encSeed []byte,
	cs, ds []*ecc.Element,
) (*ecc.Element, *ecc.Element) {
	m := v.Group.NewElement().Identity()
	z := v.Group.NewElement().Identity()

	for i, ci := range cs {
		di := v.ccScalar(encSeed, i, ci, ds[i])
		m = ci.Copy().Multiply(di).Add(m)
		z = ds[i].Copy().Multiply(di).Add(z)
	}

	return m, z
}

func (v *Verifiable) computeComposites(
	k *ecc.Scalar,
	encPk []byte,
	cs, ds []*ecc.Element,
) (*ecc.Element, *ecc.Element) {
	encSeedDST := lengthPrefixEncode(v.seedDST)

	seed := v.Hash.Hash(0, encPk, encSeedDST)
	encSeed := lengthPrefixEncode(seed)

	// The server knows the key and can compute Z directly, since Zi = k * Mi.
	if k != nil {
		return v.computeCompositesFast(k, encSeed, cs, ds)
	}

	return v.computeCompositesClient(encSeed, cs, ds)
}
