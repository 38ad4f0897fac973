package providers

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"
)

const twitterUserURL = "https://api.twitter.com/2/users/me"

func Twitter() *Provider {
	return &Provider{
		Name:       "twitter",
		AuthURL:    "https://twitter.com/i/oauth2/authorize",
		TokenURL:   "https://api.twitter.com/2/oauth2/token",
		Scopes:     []string{"users.read", "tweet.read"},
		AuthParams: []oauth2.AuthCodeOption{promptNone},
		ExtractID: func(ctx context.Context, client *http.Client, accessToken string) (string, error) {
			return twitterID(ctx, client, twitterUserURL, accessToken)
		},
	}
}

func twitterID(ctx context.Context, client *http.Client, url, token string) (string, error) {
	var user struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := fetchIdentity(ctx, client, url, "", token, &user); err != nil {
		return "", err
	}
	return user.Data.ID, nil
}
