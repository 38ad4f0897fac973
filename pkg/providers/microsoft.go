package providers

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"
)

const microsoftUserURL = "https://graph.microsoft.com/v1.0/me"

func Microsoft() *Provider {
	return &Provider{
		Name:       "microsoft",
		AuthURL:    "https://login.microsoftonline.com/common/oauth2/v2.0/authorize",
		TokenURL:   "https://login.microsoftonline.com/common/oauth2/v2.0/token",
		Scopes:     []string{"User.Read"},
		AuthParams: []oauth2.AuthCodeOption{promptNone},
		ExtractID: func(ctx context.Context, client *http.Client, accessToken string) (string, error) {
			return microsoftID(ctx, client, microsoftUserURL, accessToken)
		},
	}
}

func microsoftID(ctx context.Context, client *http.Client, url, token string) (string, error) {
	var user struct {
		ID string `json:"id"`
	}
	if err := fetchIdentity(ctx, client, url, "", token, &user); err != nil {
		return "", err
	}
	return user.ID, nil
}
