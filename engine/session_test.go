// SPDX-License-Identifier: MIT
//
// Copyright (C) 2026 the SilentMatch contributors. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silentmatch/silentmatch"
)

func TestSessionPhaseExclusion(t *testing.T) {
	sess := NewSession("key")
	require.Equal(t, Idle, sess.State())

	require.NoError(t, sess.begin(Ingesting))
	assert.Equal(t, Ingesting, sess.State())

	// A second phase on a busy session is refused regardless of its kind.
	assert.ErrorIs(t, sess.begin(Verifying), ErrSessionBusy)
	assert.ErrorIs(t, sess.begin(Ingesting), ErrSessionBusy)

	sess.end()
	assert.Equal(t, Idle, sess.State())

	require.NoError(t, sess.begin(Verifying))
	sess.end()
	assert.Equal(t, Idle, sess.State())
}

func TestSessionIdentifiersAreUnique(t *testing.T) {
	a := NewSession("key")
	b := NewSession("key")

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestSessionStateString(t *testing.T) {
	assert.Equal(t, "Idle", Idle.String())
	assert.Equal(t, "Ingesting", Ingesting.String())
	assert.Equal(t, "Verifying", Verifying.String())
	assert.Empty(t, SessionState(99).String())
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
		attrType silentmatch.AttributeType
	}{
		{"email case and spaces", " Alice@Example.COM ", "alice@example.com", silentmatch.Email},
		{"email inner space", "a lice@example.com", "alice@example.com", silentmatch.Email},
		{"phone punctuation", "+1 (416) 555-0199", "14165550199", silentmatch.Phone},
		{"sin separators", "046-454-286", "046454286", silentmatch.SIN},
		{"name whitespace", "  Alice   Van  Der Berg ", "alice van der berg", silentmatch.Name},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Normalize(tt.raw, tt.attrType))
		})
	}
}
