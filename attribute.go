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
)

// AttributeType enumerates the identity attribute classes the system matches
// on. The enumeration is closed: each type carries its own domain separation
// tag, so identical strings of different types can never produce colliding
// group elements or tags.
type AttributeType byte

const (
	// Email is a canonical e-mail address.
	Email AttributeType = iota + 1

	// Phone is a canonical phone number.
	Phone

	// SIN is a canonical social insurance number.
	SIN

	// Name is a canonical full name.
	Name
)

var attributeIdentifier = map[AttributeType]string{
	Email: "Email",
	Phone: "Phone",
	SIN:   "SIN",
	Name:  "Name",
}

// Valid returns whether t is a member of the closed enumeration.
func (t AttributeType) Valid() bool {
	_, ok := attributeIdentifier[t]
	return ok
}

// String implements the Stringer() interface for the AttributeType.
func (t AttributeType) String() string {
	return attributeIdentifier[t]
}

// DomainTag returns the domain separation tag mixed into hash-to-group and
// tag finalization for this attribute type.
func (t AttributeType) DomainTag() []byte {
	return []byte("Attribute-" + attributeIdentifier[t])
}

// Encode deterministically maps a canonical attribute string to a group
// element, domain-separated by attribute type. The input is expected to be in
// the canonical form produced by the normalization collaborator.
func (c Ciphersuite) Encode(normalized string, t AttributeType) (*ecc.Element, error) {
	if !c.Available() {
		return nil, ErrInvalidCiphersuite
	}

	if !t.Valid() {
		return nil, ErrInvalidAttributeType
	}

	element := c.core().HashToGroup([]byte(normalized), t.DomainTag())
	if element.IsIdentity() {
		// Hash-to-group mapping an input to the identity is a ciphersuite
		// breakage, not a caller mistake.
		return nil, ErrInvalidGroupElement
	}

	return element, nil
}
