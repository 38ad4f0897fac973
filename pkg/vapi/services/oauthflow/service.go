// Package oauthflow is the provider-agnostic engine behind the two redirect
// legs of the authorization-code dance. The signed state JWT is the only
// memory the server keeps between the legs; there is no session store,
// which is why an undecodable state fails closed before any redirect.
package oauthflow

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/vaulth/vaulth/pkg/config"
	"github.com/vaulth/vaulth/pkg/providers"
	"github.com/vaulth/vaulth/pkg/store"
	"github.com/vaulth/vaulth/pkg/vjwt"
	"github.com/vaulth/vaulth/pkg/vlog"
)

// ErrBadState means the state returned by the provider failed to decode.
// The redirect URI inside it cannot be trusted, so the caller must answer
// with an opaque 500 instead of redirecting anywhere.
var ErrBadState = errors.New("oauthflow: undecodable state")

// UserFinder is the one store operation the flow needs: resolving a
// provider identity to a local user id.
type UserFinder interface {
	SelectByProvider(ctx context.Context, name, providerID string) (string, error)
}

type Service struct {
	cfg    *config.Config
	jwt    *vjwt.Service
	users  UserFinder
	client *http.Client
	log    *vlog.Logger
}

func New(cfg *config.Config, jwtSvc *vjwt.Service, users UserFinder, client *http.Client, log *vlog.Logger) *Service {
	return &Service{
		cfg:    cfg,
		jwt:    jwtSvc,
		users:  users,
		client: client,
		log:    log,
	}
}

const defaultUserAgent = "vaulth/1.0.0"

// NewHTTPClient builds the shared outbound client used for provider calls:
// connection-pooled, bounded total timeout, configured User-Agent.
func NewHTTPClient(userAgent string) *http.Client {
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &http.Client{
		Timeout: 10 * time.Second,
		Transport: &userAgentTransport{
			agent: userAgent,
			base:  http.DefaultTransport,
		},
	}
}

type userAgentTransport struct {
	agent string
	base  http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", t.agent)
	}
	return t.base.RoundTrip(req)
}

// FirstLeg validates the client and mints the redirect to the provider.
// Bad client_id or redirect_uri turns into an error redirect back to the
// client; only JWT signing failures surface as errors.
func (s *Service) FirstLeg(ctx context.Context, p *providers.Provider, params *vjwt.StateClaims) (string, error) {
	client, ok := s.cfg.Clients[params.ClientID]
	if !ok {
		return errorRedirect(params, "invalid client_id"), nil
	}

	allowed := false
	for _, prefix := range client.RedirectURLs {
		if strings.HasPrefix(params.RedirectURI, prefix) {
			allowed = true
			break
		}
	}
	if !allowed {
		return errorRedirect(params, "invalid redirect_uri"), nil
	}

	// The full incoming query becomes the signed state sent through the
	// provider, so the second leg can reconstruct where to forward the
	// result without any server-side session.
	state, err := s.jwt.Encode(params)
	if err != nil {
		return "", fmt.Errorf("failed to encode state: %w", err)
	}

	return s.oauth2Config(p).AuthCodeURL(state, p.AuthParams...), nil
}

// Callback handles the provider's success redirect: it exchanges the code,
// extracts the provider user ID, resolves it to a local user, and mints the
// authorization code the client will exchange at /token.
func (s *Service) Callback(ctx context.Context, p *providers.Provider, code, state string) (string, error) {
	params := new(vjwt.StateClaims)
	if !s.jwt.Decode(state, params) {
		return "", ErrBadState
	}

	token, err := s.exchange(ctx, p, code)
	if err != nil {
		s.log.Error("provider code exchange failed", "provider", p.Name, "error", err)
		return errorRedirect(params, "internal server error"), nil
	}

	providerID, err := p.ExtractID(ctx, s.client, token)
	if err != nil {
		s.log.Error("provider identity lookup failed", "provider", p.Name, "error", err)
		return errorRedirect(params, "couldn't obtain id from provider"), nil
	}

	userID, err := s.users.SelectByProvider(ctx, p.Name, providerID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		s.log.Error("user lookup failed", "provider", p.Name, "error", err)
		return errorRedirect(params, "internal server error"), nil
	}

	codeJWT, err := s.jwt.Encode(&vjwt.CodeClaims{
		ProviderName: p.Name,
		ProviderID:   providerID,
		ClientID:     params.ClientID,
	})
	if err != nil {
		s.log.Error("failed to encode code", "provider", p.Name, "error", err)
		return errorRedirect(params, "internal server error"), nil
	}

	return successRedirect(params, codeJWT, userID), nil
}

// CallbackError forwards a provider error back to the client, provided the
// state still decodes. An undecodable state can only come from a malicious
// request and is not forwarded.
func (s *Service) CallbackError(ctx context.Context, providerErr, state string) (string, error) {
	params := new(vjwt.StateClaims)
	if !s.jwt.Decode(state, params) {
		return "", ErrBadState
	}
	return errorRedirect(params, providerErr), nil
}

func (s *Service) oauth2Config(p *providers.Provider) *oauth2.Config {
	creds := s.cfg.Provider(p.Name)
	return &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		RedirectURL:  fmt.Sprintf("%s/%s-r", s.cfg.RootURI, p.Name),
		Scopes:       p.Scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  p.AuthURL,
			TokenURL: p.TokenURL,
			// Credentials go in the form body, not a basic-auth header
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// exchange posts the authorization code to the provider's token endpoint
// and returns the granted access token.
func (s *Service) exchange(ctx context.Context, p *providers.Provider, code string) (string, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.client)

	var opts []oauth2.AuthCodeOption
	if len(p.Scopes) > 0 {
		opts = append(opts, oauth2.SetAuthURLParam("scope", strings.Join(p.Scopes, " ")))
	}

	token, err := s.oauth2Config(p).Exchange(ctx, code, opts...)
	if err != nil {
		return "", err
	}
	return token.AccessToken, nil
}

// escapeQuery percent-encodes a query value with %20 for spaces, matching
// the encoding clients expect in redirect URIs.
func escapeQuery(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func errorRedirect(params *vjwt.StateClaims, msg string) string {
	uri := fmt.Sprintf("%s?error=%s", params.RedirectURI, escapeQuery(msg))
	if params.State != nil {
		uri += "&state=" + escapeQuery(*params.State)
	}
	return uri
}

func successRedirect(params *vjwt.StateClaims, code, userID string) string {
	uri := fmt.Sprintf("%s?code=%s", params.RedirectURI, code)
	if params.State != nil {
		uri += "&state=" + escapeQuery(*params.State)
	}
	if userID != "" {
		uri += "&user=" + escapeQuery(userID)
	}
	return uri
}
