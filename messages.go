// SPDX-License-Identifier: MIT
//
// Copyright (C) 2026 the SilentMatch contributors. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package silentmatch

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bytemare/ecc"
)

// The wire messages are transport-agnostic: the same compact encodings work
// over RPC, HTTP, or a message queue. Decoding is where group membership is
// enforced, so a signer or client never operates on foreign group input.

var (
	errDecodeShort      = errors.New("decoding error: insufficient data length")
	errDecodeProofFlags = errors.New("decoding error: invalid proof flag")
)

const evaluationFlagProof = 0x01

// SignRequest carries a blinded element from client to signer, with an
// optional key version hint. A zero hint requests the current active key.
type SignRequest struct {
	Element        *ecc.Element
	KeyVersionHint uint64
}

// Serialize returns the compact byte encoding of the SignRequest.
func (r *SignRequest) Serialize() []byte {
	element := r.Element.Encode()

	out := make([]byte, 8, 8+len(element))
	binary.BigEndian.PutUint64(out, r.KeyVersionHint)

	return append(out, element...)
}

// DecodeSignRequest decodes a SignRequest for the given ciphersuite,
// validating group membership of the element.
func DecodeSignRequest(c Ciphersuite, data []byte) (*SignRequest, error) {
	if !c.Available() {
		return nil, ErrInvalidCiphersuite
	}

	if len(data) != 8+c.Group().ElementLength() {
		return nil, errDecodeShort
	}

	element, err := decodeElement(c.Group(), data[8:])
	if err != nil {
		return nil, err
	}

	return &SignRequest{
		Element:        element,
		KeyVersionHint: binary.BigEndian.Uint64(data[:8]),
	}, nil
}

// Serialize returns the compact byte encoding of the Evaluation: the key
// version, a proof flag, the evaluated element, and the proof scalars when
// present.
func (e *Evaluation) Serialize() []byte {
	element := e.Element.Encode()

	var flags byte
	if e.ProofC != nil && e.ProofS != nil {
		flags |= evaluationFlagProof
	}

	out := make([]byte, 8, 9+len(element)+2*len(element))
	binary.BigEndian.PutUint64(out, e.KeyVersion)
	out = append(out, flags)
	out = append(out, element...)

	if flags&evaluationFlagProof != 0 {
		out = append(out, e.ProofC.Encode()...)
		out = append(out, e.ProofS.Encode()...)
	}

	return out
}

// DecodeEvaluation decodes an Evaluation for the given ciphersuite,
// validating group membership of the element.
func DecodeEvaluation(c Ciphersuite, data []byte) (*Evaluation, error) {
	if !c.Available() {
		return nil, ErrInvalidCiphersuite
	}

	eLen := c.Group().ElementLength()
	sLen := c.Group().ScalarLength()

	if len(data) < 9+eLen {
		return nil, errDecodeShort
	}

	flags := data[8]
	if flags&^byte(evaluationFlagProof) != 0 {
		return nil, errDecodeProofFlags
	}

	expected := 9 + eLen
	if flags&evaluationFlagProof != 0 {
		expected += 2 * sLen
	}

	if len(data) != expected {
		return nil, errDecodeShort
	}

	element, err := decodeElement(c.Group(), data[9:9+eLen])
	if err != nil {
		return nil, err
	}

	evaluation := &Evaluation{
		Element:    element,
		KeyVersion: binary.BigEndian.Uint64(data[:8]),
	}

	if flags&evaluationFlagProof != 0 {
		proofC := c.Group().NewScalar()
		if err := proofC.Decode(data[9+eLen : 9+eLen+sLen]); err != nil {
			return nil, fmt.Errorf("invalid c proof encoding: %w", err)
		}

		proofS := c.Group().NewScalar()
		if err := proofS.Decode(data[9+eLen+sLen:]); err != nil {
			return nil, fmt.Errorf("invalid s proof encoding: %w", err)
		}

		evaluation.ProofC = proofC
		evaluation.ProofS = proofS
	}

	return evaluation, nil
}

// Registration carries a client's final output to the ledger: the tag, the
// evaluated element backing future re-derivations, and the opaque risk
// metadata.
type Registration struct {
	Tag           Tag           `json:"tag"`
	Element       []byte        `json:"element"`
	Metadata      []byte        `json:"metadata,omitempty"`
	KeyVersion    uint64        `json:"key_version"`
	AttributeType AttributeType `json:"attribute_type"`
}

// Serialize returns the JSON encoding of the Registration.
func (r *Registration) Serialize() ([]byte, error) {
	return json.Marshal(r)
}

// DecodeRegistration decodes a Registration for the given ciphersuite,
// validating the attribute type and group membership of the element.
func DecodeRegistration(c Ciphersuite, data []byte) (*Registration, error) {
	if !c.Available() {
		return nil, ErrInvalidCiphersuite
	}

	registration := new(Registration)
	if err := json.Unmarshal(data, registration); err != nil {
		return nil, fmt.Errorf("decoding registration: %w", err)
	}

	if len(registration.Tag) == 0 {
		return nil, errDecodeShort
	}

	if !registration.AttributeType.Valid() {
		return nil, ErrInvalidAttributeType
	}

	if _, err := decodeElement(c.Group(), registration.Element); err != nil {
		return nil, err
	}

	return registration, nil
}

func decodeElement(g ecc.Group, data []byte) (*ecc.Element, error) {
	element := g.NewElement()
	if err := element.Decode(data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGroupElement, err)
	}

	if element.IsIdentity() {
		return nil, ErrInvalidGroupElement
	}

	return element, nil
}
