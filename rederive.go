// SPDX-License-Identifier: MIT
//
// Copyright (C) 2026 the SilentMatch contributors. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package silentmatch

import (
	"fmt"

	"github.com/bytemare/ecc"
)

// Rederive transforms an evaluated element recorded under oldKey into its
// counterpart under newKey, and returns the tag and element encoding of the
// transformed entry. Because the finalization transcript covers only the
// attribute domain and the element, the result equals a fresh protocol run
// for the same attribute under newKey:
//
//	(H(x)^kOld)^(kOld⁻¹·kNew) = H(x)^kNew
//
// The attribute itself is never needed.
func (c Ciphersuite) Rederive(encodedElement []byte, t AttributeType, oldKey, newKey *ecc.Scalar) (Tag, []byte, error) {
	if !c.Available() {
		return nil, nil, ErrInvalidCiphersuite
	}

	if !t.Valid() {
		return nil, nil, ErrInvalidAttributeType
	}

	core := c.core()

	element := core.Group.NewElement()
	if err := element.Decode(encodedElement); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidGroupElement, err)
	}

	if element.IsIdentity() {
		return nil, nil, ErrInvalidGroupElement
	}

	delta := oldKey.Copy().Invert().Multiply(newKey)
	encoded := element.Multiply(delta).Encode()

	return Tag(core.Finalize(t.DomainTag(), encoded)), encoded, nil
}
