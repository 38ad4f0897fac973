package schemas

// TokenRequest is the body of the server-to-server code exchange.
type TokenRequest struct {
	ClientID     string `json:"client_id" doc:"First-party client identifier"`
	ClientSecret string `json:"client_secret" doc:"Shared secret for the client"`
	Code         string `json:"code" doc:"Authorization code from the OAuth redirect"`
}

// TokenResponse echoes the configured duration, in minutes, as expires_in.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}
