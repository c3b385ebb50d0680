// Package config aggregates the deployment-time choices a magma
// installation must agree on, the way the teacher's
// cmd/opera/launcher.Config aggregates per-subsystem configuration
// structs. It selects the digest family only; there is no semigroup
// setting.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rony4d/magma/digest"
)

// DigestFamilyName identifies a digest.Family by name for config files
// and CLI flags.
type DigestFamilyName string

const (
	Keccak256 DigestFamilyName = "keccak256"
)

// Config is the full set of deployment-time parameters cmd/magma needs.
type Config struct {
	DigestFamily DigestFamilyName `json:"digest_family"`
}

// Default returns the default configuration: Keccak256 digests.
func Default() Config {
	return Config{DigestFamily: Keccak256}
}

// Family resolves the configured digest family name to a digest.Family.
func (c Config) Family() (digest.Family, error) {
	switch c.DigestFamily {
	case Keccak256, "":
		return digest.Keccak256, nil
	default:
		return nil, fmt.Errorf("config: unknown digest family %q", c.DigestFamily)
	}
}

// Load reads a JSON config file, falling back to Default if path is
// empty.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}
	cfg := Default()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}
