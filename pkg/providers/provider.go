// Package providers holds one small adapter per supported OAuth2 identity
// provider: its authorization and token endpoints, scopes, and how to turn
// a granted access token into the provider's stable user ID. The generic
// redirect machinery lives in the oauthflow service; adapters only describe
// what differs between providers.
package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
)

// Provider describes a single OAuth2 identity provider.
type Provider struct {
	// Name is the column-suffix literal ("discord", "github", ...).
	Name string

	AuthURL  string
	TokenURL string

	// Scopes are joined with single spaces on the wire.
	Scopes []string

	// AuthParams are extra query parameters for the authorization URL.
	// Most providers take prompt=none; GitHub takes none at all.
	AuthParams []oauth2.AuthCodeOption

	// ExtractID calls the provider's identity endpoint with the granted
	// access token and returns the stable provider user ID as a string.
	ExtractID func(ctx context.Context, client *http.Client, accessToken string) (string, error)
}

// promptNone is the standard extra authorize parameter shared by every
// provider that supports it.
var promptNone = oauth2.SetAuthURLParam("prompt", "none")

// All returns every known provider adapter.
func All() []*Provider {
	return []*Provider{
		Google(),
		Microsoft(),
		Facebook(),
		Twitter(),
		GitHub(),
		Discord(),
	}
}

// fetchIdentity GETs an identity endpoint with the token as a bearer
// credential and decodes the JSON body into out.
func fetchIdentity(ctx context.Context, client *http.Client, url, accept, token string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("identity endpoint %s returned status %d", url, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
