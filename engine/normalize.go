// SPDX-License-Identifier: MIT
//
// Copyright (C) 2026 the SilentMatch contributors. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package engine

import (
	"strings"
	"unicode"

	"github.com/silentmatch/silentmatch"
)

// Normalize applies the default canonicalization per attribute class. It is
// a stand-in for the full ETL collaborator: the protocol core trusts whatever
// canonical form it is handed, and match accuracy is only as good as the
// normalization both parties agree on.
func Normalize(raw string, t silentmatch.AttributeType) string {
	switch t {
	case silentmatch.Email:
		return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), " ", "")
	case silentmatch.Phone, silentmatch.SIN:
		return digitsOnly(raw)
	case silentmatch.Name:
		return strings.Join(strings.Fields(strings.ToLower(raw)), " ")
	default:
		return strings.TrimSpace(raw)
	}
}

func digitsOnly(s string) string {
	var b strings.Builder

	for _, r := range s {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}

	return b.String()
}
