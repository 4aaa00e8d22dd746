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
	"github.com/silentmatch/silentmatch/keyring"
)

// Evaluate exponentiates a blinded element under the signing scalar. The
// caller is responsible for having validated group membership of the input.
func Evaluate(key *ecc.Scalar, blinded *ecc.Element) *ecc.Element {
	return blinded.Copy().Multiply(key)
}

// Evaluation is the signer's response for one blinded element: the element
// exponentiated under the key at KeyVersion, and an optional proof of correct
// exponentiation.
type Evaluation struct {
	Element    *ecc.Element
	ProofC     *ecc.Scalar
	ProofS     *ecc.Scalar
	KeyVersion uint64
}

// Signer is the signing engine. It never holds key material itself: every
// call captures a consistent snapshot of the requested key from the keyring,
// so in-flight signatures complete under the key they started with even when
// a rotation lands concurrently.
type Signer struct {
	core     *internal.Core
	verifier *internal.Verifiable
	keys     *keyring.Manager
	proofs   bool
}

// NewSigner returns a signing engine backed by the keyring.
func NewSigner(c Ciphersuite, keys *keyring.Manager) (*Signer, error) {
	if !c.Available() {
		return nil, ErrInvalidCiphersuite
	}

	return &Signer{
		core: c.core(),
		keys: keys,
	}, nil
}

// NewVerifiableSigner returns a signing engine that attaches a proof of
// correct exponentiation to every evaluation.
func NewVerifiableSigner(c Ciphersuite, keys *keyring.Manager) (*Signer, error) {
	signer, err := NewSigner(c, keys)
	if err != nil {
		return nil, err
	}

	signer.verifier = internal.NewVerifiable(signer.core)
	signer.proofs = true

	return signer, nil
}

// PublicKey returns the public key of the active signing key, to hand to
// verifiable clients.
func (s *Signer) PublicKey() *ecc.Element {
	return s.keys.Active().Public()
}

// Sign evaluates the blinded element under the requested key version, or
// under the current active key if no version is given. The element must have
// passed group membership on decoding; the identity element is rejected with
// ErrInvalidGroupElement, since a crafted input could otherwise leak bits of
// the signing exponent.
func (s *Signer) Sign(blinded *ecc.Element, version ...uint64) (*Evaluation, error) {
	if blinded == nil || blinded.IsIdentity() {
		return nil, ErrInvalidGroupElement
	}

	var key *keyring.SigningKey

	if len(version) != 0 && version[0] != 0 {
		k, err := s.keys.Get(version[0])
		if err != nil {
			return nil, err
		}

		key = k
	} else {
		key = s.keys.Active()
	}

	evaluated := Evaluate(key.Scalar(), blinded)

	evaluation := &Evaluation{
		Element:    evaluated,
		KeyVersion: key.Version(),
	}

	if s.proofs {
		random := s.core.Group.NewScalar().Random()
		evaluation.ProofC, evaluation.ProofS = s.verifier.GenerateProof(
			random, key.Scalar(), key.Public(),
			[]*ecc.Element{blinded},
			[]*ecc.Element{evaluated},
		)
	}

	return evaluation, nil
}
