// SPDX-License-Identifier: MIT
//
// Copyright (C) 2026 the SilentMatch contributors. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package silentmatch_test

import (
	"testing"

	"github.com/bytemare/ecc"

	"github.com/silentmatch/silentmatch"
	"github.com/silentmatch/silentmatch/keyring"
)

type configuration struct {
	name        string
	ciphersuite silentmatch.Ciphersuite
	group       ecc.Group
}

var configurationTable = []configuration{
	{
		name:        "Ristretto255",
		ciphersuite: silentmatch.Ristretto255Sha512,
		group:       ecc.Ristretto255Sha512,
	},
	{
		name:        "P256Sha256",
		ciphersuite: silentmatch.P256Sha256,
		group:       ecc.P256Sha256,
	},
	{
		name:        "P384Sha384",
		ciphersuite: silentmatch.P384Sha384,
		group:       ecc.P384Sha384,
	},
	{
		name:        "P521Sha512",
		ciphersuite: silentmatch.P521Sha512,
		group:       ecc.P521Sha512,
	},
	{
		name:        "Secp256k1",
		ciphersuite: silentmatch.Secp256k1Sha256,
		group:       ecc.Secp256k1Sha256,
	},
}

func testAll(t *testing.T, f func(*configuration)) {
	for _, test := range configurationTable {
		t.Run(test.name, func(_ *testing.T) {
			f(&test)
		})
	}
}

func newKeyring(c *configuration) *keyring.Manager {
	return keyring.NewManager(c.group, nil)
}

func makeSigner(t *testing.T, c *configuration) (*silentmatch.Signer, *keyring.Manager) {
	t.Helper()

	keys := keyring.NewManager(c.group, nil)

	signer, err := silentmatch.NewSigner(c.ciphersuite, keys)
	if err != nil {
		t.Fatal(err)
	}

	return signer, keys
}

// runPipeline executes one full blind-sign-finalize round for the attribute.
func runPipeline(
	t *testing.T,
	c *configuration,
	signer *silentmatch.Signer,
	attribute string,
	attrType silentmatch.AttributeType,
) *silentmatch.Output {
	t.Helper()

	client, err := silentmatch.NewClient(c.ciphersuite, attrType)
	if err != nil {
		t.Fatal(err)
	}

	blinded, err := client.Blind(attribute)
	if err != nil {
		t.Fatal(err)
	}

	evaluation, err := signer.Sign(blinded)
	if err != nil {
		t.Fatal(err)
	}

	output, err := client.Finalize(evaluation)
	if err != nil {
		t.Fatal(err)
	}

	return output
}
