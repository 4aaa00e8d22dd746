// SPDX-License-Identifier: MIT
//
// Copyright (C) 2026 the SilentMatch contributors. All Rights Reserved.
//
// This source code is licensed under the MIT license found in the
// LICENSE file in the root directory of this source tree or at
// https://spdx.org/licenses/MIT.html

package engine

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/silentmatch/silentmatch"
)

// Config is the engine's deployment configuration. The ciphersuite is
// security-relevant and explicit: there is no hidden default group in the
// protocol code itself.
type Config struct {
	// Ciphersuite names the group and hash the protocol runs on. One of
	// "ristretto255-SHA512", "P256-SHA256", "P384-SHA384", "P521-SHA512",
	// "secp256k1-SHA256".
	Ciphersuite string `yaml:"ciphersuite"`

	// LogEnv selects the logger encoding: "dev" (console) or "prod" (JSON).
	LogEnv string `yaml:"log_env"`

	// LogLevel is the minimum level: "debug", "info", "warn", "error".
	LogLevel string `yaml:"log_level"`

	// Parallelism bounds concurrent per-attribute pipelines in a batch.
	Parallelism int `yaml:"parallelism"`

	// VerifiableSigning makes the signer attach a proof of correct
	// exponentiation to every evaluation, and clients verify it.
	VerifiableSigning bool `yaml:"verifiable_signing"`

	// ArchiveMaxAge is the age cutoff for ledger archival. Zero disables the
	// age-based policy.
	ArchiveMaxAge time.Duration `yaml:"archive_max_age"`
}

// DefaultConfig returns the configuration used when none is supplied:
// Ristretto255/SHA-512, eight workers, base (non-verifiable) signing.
func DefaultConfig() *Config {
	return &Config{
		Ciphersuite: "ristretto255-SHA512",
		LogEnv:      "dev",
		LogLevel:    "info",
		Parallelism: 8,
	}
}

// LoadConfig reads a YAML configuration file, applying defaults for absent
// fields.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.Parallelism < 1 {
		cfg.Parallelism = 1
	}

	if _, err := cfg.Suite(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Suite resolves the configured ciphersuite name.
func (c *Config) Suite() (silentmatch.Ciphersuite, error) {
	for _, suite := range []silentmatch.Ciphersuite{
		silentmatch.Ristretto255Sha512,
		silentmatch.P256Sha256,
		silentmatch.P384Sha384,
		silentmatch.P521Sha512,
		silentmatch.Secp256k1Sha256,
	} {
		if suite.Name() == c.Ciphersuite {
			return suite, nil
		}
	}

	return 0, fmt.Errorf("%w: %q", silentmatch.ErrInvalidCiphersuite, c.Ciphersuite)
}
