package providers

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"
)

const discordUserURL = "https://discord.com/api/v6/users/@me"

func Discord() *Provider {
	return &Provider{
		Name:       "discord",
		AuthURL:    "https://discord.com/api/oauth2/authorize",
		TokenURL:   "https://discord.com/api/v6/oauth2/token",
		Scopes:     []string{"identify"},
		AuthParams: []oauth2.AuthCodeOption{promptNone},
		ExtractID: func(ctx context.Context, client *http.Client, accessToken string) (string, error) {
			return discordID(ctx, client, discordUserURL, accessToken)
		},
	}
}

func discordID(ctx context.Context, client *http.Client, url, token string) (string, error) {
	var user struct {
		ID string `json:"id"`
	}
	if err := fetchIdentity(ctx, client, url, "", token, &user); err != nil {
		return "", err
	}
	return user.ID, nil
}
