package providers

import (
	"context"
	"net/http"
	"strconv"
)

const githubUserURL = "https://api.github.com/user"

// GitHub's authorization endpoint takes neither prompt=none nor a scope
// parameter, so the adapter carries no scopes and no extra auth params.
func GitHub() *Provider {
	return &Provider{
		Name:     "github",
		AuthURL:  "https://github.com/login/oauth/authorize",
		TokenURL: "https://github.com/login/oauth/access_token",
		ExtractID: func(ctx context.Context, client *http.Client, accessToken string) (string, error) {
			return githubID(ctx, client, githubUserURL, accessToken)
		},
	}
}

func githubID(ctx context.Context, client *http.Client, url, token string) (string, error) {
	var user struct {
		ID int64 `json:"id"`
	}
	if err := fetchIdentity(ctx, client, url, "application/vnd.github.v3+json", token, &user); err != nil {
		return "", err
	}
	// GitHub user IDs are numeric; the stored form is the decimal string
	return strconv.FormatInt(user.ID, 10), nil
}
