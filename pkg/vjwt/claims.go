package vjwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Envelope is the common claim envelope shared by every token shape Vaulth
// issues. exp and iat are raw Unix seconds serialized as integers, not RFC
// 3339 strings, so third parties verifying tokens against /key see plain
// numeric timestamps.
type Envelope struct {
	Exp int64 `json:"exp"`
	Iat int64 `json:"iat"`
}

func (e Envelope) GetExpirationTime() (*jwt.NumericDate, error) {
	return jwt.NewNumericDate(time.Unix(e.Exp, 0)), nil
}

func (e Envelope) GetIssuedAt() (*jwt.NumericDate, error) {
	return jwt.NewNumericDate(time.Unix(e.Iat, 0)), nil
}

func (e Envelope) GetNotBefore() (*jwt.NumericDate, error) { return nil, nil }
func (e Envelope) GetIssuer() (string, error)              { return "", nil }
func (e Envelope) GetSubject() (string, error)             { return "", nil }
func (e Envelope) GetAudience() (jwt.ClaimStrings, error)  { return nil, nil }

func (e *Envelope) stamp(iat, exp int64) {
	e.Iat = iat
	e.Exp = exp
}

// Payload is any claim shape the service can sign. The envelope timestamps
// are stamped by Encode; callers only fill the shape-specific fields.
type Payload interface {
	jwt.Claims
	stamp(iat, exp int64)
}

// StateClaims is the opaque state carried through the provider during the
// redirect round-trip. It is the only memory the server keeps between the
// two legs.
type StateClaims struct {
	ClientID    string  `json:"client_id"`
	RedirectURI string  `json:"redirect_uri"`
	State       *string `json:"state,omitempty"`
	User        *string `json:"user,omitempty"`

	Envelope
}

// CodeClaims is the authorization code handed back to the client, exchanged
// at POST /token.
type CodeClaims struct {
	ProviderName string `json:"provider_name"`
	ProviderID   string `json:"provider_id"`
	ClientID     string `json:"client_id"`

	Envelope
}

// AccessClaims is the bearer token issued to clients for user API calls.
type AccessClaims struct {
	Sub string `json:"sub"`

	Envelope
}
