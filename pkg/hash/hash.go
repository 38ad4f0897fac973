// Package hash is the password-hashing subsystem. It is configured at
// startup but not exercised by the delegated-auth flow; the future
// password login path is its only consumer.
package hash

import (
	"github.com/alexedwards/argon2id"
	"github.com/vaulth/vaulth/pkg/config"
)

type Hasher struct {
	params *argon2id.Params
	secret string
}

// New builds a Hasher from the hash config block; unset knobs fall back to
// the argon2id defaults.
func New(cfg config.HashConfig) *Hasher {
	params := *argon2id.DefaultParams

	if cfg.HashLen != nil {
		params.KeyLength = *cfg.HashLen
	}
	if cfg.SaltLen != nil {
		params.SaltLength = *cfg.SaltLen
	}
	if cfg.Lanes != nil {
		params.Parallelism = *cfg.Lanes
	}
	if cfg.MemCost != nil {
		params.Memory = *cfg.MemCost
	}
	if cfg.TimeCost != nil {
		params.Iterations = *cfg.TimeCost
	}

	return &Hasher{params: &params, secret: cfg.Secret}
}

// Hash derives an encoded argon2id hash for the password. The configured
// secret acts as a pepper mixed into the input.
func (h *Hasher) Hash(password string) (string, error) {
	return argon2id.CreateHash(h.secret+password, h.params)
}

// Verify reports whether the password matches the encoded hash.
func (h *Hasher) Verify(password, encoded string) (bool, error) {
	return argon2id.ComparePasswordAndHash(h.secret+password, encoded)
}
