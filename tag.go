// SPDX-License-Identifier: MIT
//
// Copyright (C) 2026 the SilentMatch contributors. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package silentmatch

import (
	"encoding/hex"

	"github.com/silentmatch/silentmatch/internal"
)

// Tag is the fixed-length deterministic output of one protocol run. It is
// pseudorandom under the signer's key: equal attributes signed under the same
// key version always yield equal tags, and nothing else does.
type Tag []byte

// Equal compares two tags in constant time.
func (t Tag) Equal(other Tag) bool {
	return internal.CtEqual(t, other)
}

// String returns the hexadecimal representation of the tag.
func (t Tag) String() string {
	return hex.EncodeToString(t)
}
