package providers

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"
)

const facebookUserURL = "https://graph.facebook.com/me"

func Facebook() *Provider {
	return &Provider{
		Name:       "facebook",
		AuthURL:    "https://www.facebook.com/v8.0/dialog/oauth",
		TokenURL:   "https://graph.facebook.com/v8.0/oauth/access_token",
		Scopes:     []string{"public_profile"},
		AuthParams: []oauth2.AuthCodeOption{promptNone},
		ExtractID: func(ctx context.Context, client *http.Client, accessToken string) (string, error) {
			return facebookID(ctx, client, facebookUserURL, accessToken)
		},
	}
}

func facebookID(ctx context.Context, client *http.Client, url, token string) (string, error) {
	var user struct {
		ID string `json:"id"`
	}
	if err := fetchIdentity(ctx, client, url, "", token, &user); err != nil {
		return "", err
	}
	return user.ID, nil
}
