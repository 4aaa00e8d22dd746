// SPDX-License-Identifier: MIT
//
// Copyright (C) 2026 the SilentMatch contributors. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

// Package silentmatch implements the cryptographic core of a two-party
// Private Set Intersection system for privacy-preserving fraud-risk matching
// between financial institutions.
//
// The protocol is an Oblivious Pseudorandom Function (OPRF) over an elliptic
// curve prime-order group: a client blinds a canonical identity attribute, a
// server exponentiates the blinded element under a versioned secret key
// without learning the attribute, and the client unblinds the response to
// obtain a deterministic pseudorandom tag. Tags are matched against a
// versioned ledger (package ledger) without the server ever observing
// plaintext attributes. Key rotation and retirement live in package keyring,
// and package engine sequences the ingestion and verification phases.
//
// The group and hash function are explicit, security-relevant configuration:
// see Ciphersuite. All group arithmetic is delegated to github.com/bytemare/ecc,
// which provides constant-time scalar operations and RFC 9380 hash-to-group.
package silentmatch
