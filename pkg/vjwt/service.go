// Package vjwt signs and verifies the three JWT shapes Vaulth uses: the
// opaque OAuth state, the authorization code, and the access token. All
// three are ES384-signed with a process-lifetime keypair loaded from PEM
// files at startup.
package vjwt

import (
	"crypto/ecdsa"
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/vaulth/vaulth/pkg/config"
)

// MaxTokenLen bounds the work spent parsing untrusted tokens.
const MaxTokenLen = 4096

// Service holds the signing keypair and token lifetime. A malformed key
// file is a configuration error and fails construction; it is never treated
// like an invalid token.
type Service struct {
	private *ecdsa.PrivateKey
	public  *ecdsa.PublicKey

	publicPEM []byte
	duration  time.Duration
}

// New reads and parses both PEM keys. Any failure here must abort startup.
func New(cfg config.TokenConfig) (*Service, error) {
	privPEM, err := os.ReadFile(cfg.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key %q: %w", cfg.PrivateKey, err)
	}
	private, err := jwt.ParseECPrivateKeyFromPEM(privPEM)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key %q: %w", cfg.PrivateKey, err)
	}

	pubPEM, err := os.ReadFile(cfg.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read public key %q: %w", cfg.PublicKey, err)
	}
	public, err := jwt.ParseECPublicKeyFromPEM(pubPEM)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key %q: %w", cfg.PublicKey, err)
	}

	return &Service{
		private:   private,
		public:    public,
		publicPEM: pubPEM,
		duration:  time.Duration(cfg.Duration) * time.Minute,
	}, nil
}

// PublicPEM returns the verification key exactly as read from disk, for the
// /key endpoint.
func (s *Service) PublicPEM() []byte {
	return s.publicPEM
}

// Duration returns the configured token lifetime.
func (s *Service) Duration() time.Duration {
	return s.duration
}

// Encode stamps iat=now, exp=now+duration and returns the signed compact
// JWT for the payload.
func (s *Service) Encode(payload Payload) (string, error) {
	now := time.Now()
	payload.stamp(now.Unix(), now.Add(s.duration).Unix())

	token := jwt.NewWithClaims(jwt.SigningMethodES384, payload)
	signed, err := token.SignedString(s.private)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Decode verifies the signature and expiry of a compact JWT and fills
// claims with the embedded payload. It reports false for anything wrong
// with the token itself: bad format, wrong algorithm, bad signature,
// expired. Those are user input, not errors.
func (s *Service) Decode(token string, claims jwt.Claims) bool {
	if len(token) > MaxTokenLen {
		return false
	}

	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodES384.Alg()}))
	parsed, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.public, nil
	})
	if err != nil {
		return false
	}
	return parsed.Valid
}
