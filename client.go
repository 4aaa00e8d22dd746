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

	"github.com/bytemare/ecc"

	"github.com/silentmatch/silentmatch/internal"
)

var (
	errRunSpent      = errors.New("client already blinded an attribute for this run")
	errRunNotBlinded = errors.New("no blinded attribute awaiting an evaluation")
)

type runState byte

const (
	stateStart runState = iota
	stateAwaitingSignature
	stateTagged
)

// Client is the blinding engine for one attribute and one protocol run. The
// blinding factor is sampled fresh in Blind, held only in memory, and
// discarded once Finalize has produced the tag. The signer only ever observes
// the blinded element, which is indistinguishable from random without the
// blinding factor.
type Client struct {
	core            *internal.Core
	verifier        *internal.Verifiable
	serverPublicKey *ecc.Element
	blind           *ecc.Scalar
	blinded         *ecc.Element
	suite           Ciphersuite
	attrType        AttributeType
	state           runState
}

// NewClient returns a blinding client for one run over the given attribute
// type.
func NewClient(c Ciphersuite, t AttributeType) (*Client, error) {
	if !c.Available() {
		return nil, ErrInvalidCiphersuite
	}

	if !t.Valid() {
		return nil, ErrInvalidAttributeType
	}

	return &Client{
		core:     c.core(),
		suite:    c,
		attrType: t,
	}, nil
}

// NewVerifiableClient returns a blinding client that demands a proof of
// correct exponentiation under serverPublicKey with every evaluation, closing
// the unverified trust assumption of the base mode.
func NewVerifiableClient(c Ciphersuite, t AttributeType, serverPublicKey *ecc.Element) (*Client, error) {
	client, err := NewClient(c, t)
	if err != nil {
		return nil, err
	}

	if serverPublicKey == nil || serverPublicKey.IsIdentity() {
		return nil, ErrInvalidGroupElement
	}

	client.verifier = internal.NewVerifiable(client.core)
	client.serverPublicKey = serverPublicKey

	return client, nil
}

// Blind samples a fresh blinding factor r and returns the blinded element
// encode(attribute)^r for the signer. A client blinds exactly one attribute
// per run.
func (c *Client) Blind(normalizedAttribute string) (*ecc.Element, error) {
	if c.state != stateStart {
		return nil, errRunSpent
	}

	element, err := c.suite.Encode(normalizedAttribute, c.attrType)
	if err != nil {
		return nil, err
	}

	c.blind = c.core.Group.NewScalar().Random()
	c.blinded = element.Multiply(c.blind)
	c.state = stateAwaitingSignature

	return c.blinded.Copy(), nil
}

// Output is the client's result of one protocol run. The evaluated element
// accompanies the tag at registration time so the ledger can re-derive the
// entry under future key versions without ever learning the attribute.
type Output struct {
	Tag           Tag
	Element       []byte
	KeyVersion    uint64
	AttributeType AttributeType
}

// Finalize unblinds the evaluation and derives the protocol output. If the
// client is verifiable and the proof is missing or does not verify, it fails
// with ErrUnblindMismatch and the attribute's flow must be aborted.
func (c *Client) Finalize(evaluation *Evaluation) (*Output, error) {
	if c.state != stateAwaitingSignature {
		return nil, errRunNotBlinded
	}

	if evaluation == nil || evaluation.Element == nil || evaluation.Element.IsIdentity() {
		return nil, ErrInvalidGroupElement
	}

	if c.verifier != nil {
		if evaluation.ProofC == nil || evaluation.ProofS == nil {
			return nil, ErrUnblindMismatch
		}

		err := c.verifier.VerifyProof(
			evaluation.ProofC, evaluation.ProofS,
			c.serverPublicKey,
			[]*ecc.Element{c.blinded},
			[]*ecc.Element{evaluation.Element},
		)
		if err != nil {
			return nil, ErrUnblindMismatch
		}
	}

	inverted := c.blind.Copy().Invert()
	unblinded := evaluation.Element.Copy().Multiply(inverted)

	if unblinded.IsIdentity() {
		return nil, ErrInvalidGroupElement
	}

	encoded := unblinded.Encode()
	tag := Tag(c.core.Finalize(c.attrType.DomainTag(), encoded))

	// The blinding factor is single-use: discard it with the run.
	c.blind = nil
	c.blinded = nil
	c.state = stateTagged

	return &Output{
		Tag:           tag,
		Element:       encoded,
		KeyVersion:    evaluation.KeyVersion,
		AttributeType: c.attrType,
	}, nil
}
