package providers

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"
)

const googleUserURL = "https://openidconnect.googleapis.com/v1/userinfo"

func Google() *Provider {
	return &Provider{
		Name:     "google",
		AuthURL:  "https://accounts.google.com/o/oauth2/v2/auth",
		TokenURL: "https://oauth2.googleapis.com/token",
		Scopes:   []string{"profile", "openid"},
		AuthParams: []oauth2.AuthCodeOption{
			promptNone,
			oauth2.SetAuthURLParam("access_type", "online"),
		},
		ExtractID: func(ctx context.Context, client *http.Client, accessToken string) (string, error) {
			return googleID(ctx, client, googleUserURL, accessToken)
		},
	}
}

func googleID(ctx context.Context, client *http.Client, url, token string) (string, error) {
	var user struct {
		Sub string `json:"sub"`
	}
	if err := fetchIdentity(ctx, client, url, "", token, &user); err != nil {
		return "", err
	}
	return user.Sub, nil
}
