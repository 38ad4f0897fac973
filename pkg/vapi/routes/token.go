package routes

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/vaulth/vaulth/pkg/store"
	"github.com/vaulth/vaulth/pkg/vapi/schemas"
	"github.com/vaulth/vaulth/pkg/vapi/services"
	"github.com/vaulth/vaulth/pkg/vjwt"
)

type TokenInput struct {
	Body schemas.TokenRequest
}

type TokenUserInput struct {
	User string `path:"user" doc:"Local user id to log in or register"`
	Body schemas.TokenRequest
}

type TokenOutput struct {
	Status int
	Body   schemas.TokenResponse
}

func RegisterToken(api huma.API, svcs *services.Services) {
	huma.Register(api, huma.Operation{
		OperationID: "token-login",
		Method:      http.MethodPost,
		Path:        "/token",
		Summary:     "Exchange an authorization code for an access token",
		Description: "Logs in the user already linked to the code's provider identity.",
		Tags:        []string{TagToken.String()},
	}, func(ctx context.Context, input *TokenInput) (*TokenOutput, error) {
		code, err := verify(svcs, &input.Body)
		if err != nil {
			return nil, err
		}

		userID, err := svcs.Users.SelectByProvider(ctx, code.ProviderName, code.ProviderID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, huma.Error400BadRequest("no matching user")
		}
		if err != nil {
			return nil, serverError(svcs, err)
		}

		return login(ctx, svcs, userID)
	})

	huma.Register(api, huma.Operation{
		OperationID: "token-register",
		Method:      http.MethodPost,
		Path:        "/token/{user}",
		Summary:     "Exchange an authorization code, registering the user if needed",
		Description: "Logs in the linked user, or registers the given local id for a previously unseen provider identity.",
		Tags:        []string{TagToken.String()},
	}, func(ctx context.Context, input *TokenUserInput) (*TokenOutput, error) {
		code, err := verify(svcs, &input.Body)
		if err != nil {
			return nil, err
		}

		userID, err := svcs.Users.SelectByProvider(ctx, code.ProviderName, code.ProviderID)
		switch {
		case err == nil:
			if userID != input.User {
				return nil, huma.Error400BadRequest("mismatched users")
			}
			return login(ctx, svcs, userID)

		case errors.Is(err, store.ErrNotFound):
			return register(ctx, svcs, input.User, code)

		default:
			return nil, serverError(svcs, err)
		}
	})
}

// verify is the shared prefix of both exchanges: decode the code, find the
// client it names, authenticate the client. An unknown client_id answers
// exactly like an undecodable code so the endpoint cannot be used to probe
// for client ids.
func verify(svcs *services.Services, body *schemas.TokenRequest) (*vjwt.CodeClaims, error) {
	code := new(vjwt.CodeClaims)
	if !svcs.JWT.Decode(body.Code, code) {
		return nil, huma.Error400BadRequest("invalid code")
	}

	// The code is bound to the client that started the flow
	if body.ClientID != code.ClientID {
		return nil, huma.Error400BadRequest("invalid code")
	}

	client, ok := svcs.Cfg.Clients[code.ClientID]
	if !ok {
		return nil, huma.Error400BadRequest("invalid code")
	}

	if subtle.ConstantTimeCompare([]byte(body.ClientSecret), []byte(client.ClientSecret)) != 1 {
		return nil, huma.Error400BadRequest("invalid client_secret")
	}

	return code, nil
}

func login(ctx context.Context, svcs *services.Services, userID string) (*TokenOutput, error) {
	if err := svcs.Users.Login(ctx, userID); err != nil {
		return nil, serverError(svcs, err)
	}
	return issue(svcs, userID, http.StatusOK)
}

func register(ctx context.Context, svcs *services.Services, userID string, code *vjwt.CodeClaims) (*TokenOutput, error) {
	_, err := svcs.Users.RegisterByProvider(ctx, userID, code.ProviderName, code.ProviderID)
	switch {
	case err == nil:
		return issue(svcs, userID, http.StatusCreated)

	case errors.Is(err, store.ErrIDTaken):
		return nil, huma.Error400BadRequest("user id taken")

	case errors.Is(err, store.ErrProviderTaken):
		// Lost a registration race on the provider identity; whoever won
		// owns it now.
		existing, serr := svcs.Users.SelectByProvider(ctx, code.ProviderName, code.ProviderID)
		if serr != nil {
			return nil, serverError(svcs, serr)
		}
		if existing != userID {
			return nil, huma.Error400BadRequest("mismatched users")
		}
		return login(ctx, svcs, existing)

	default:
		return nil, serverError(svcs, err)
	}
}

func issue(svcs *services.Services, userID string, status int) (*TokenOutput, error) {
	token, err := svcs.JWT.Encode(&vjwt.AccessClaims{Sub: userID})
	if err != nil {
		return nil, serverError(svcs, err)
	}
	return &TokenOutput{
		Status: status,
		Body: schemas.TokenResponse{
			AccessToken: token,
			ExpiresIn:   svcs.Cfg.Token.Duration,
		},
	}, nil
}

func serverError(svcs *services.Services, err error) error {
	svcs.Log.Error("request failed", "error", err)
	return huma.Error500InternalServerError("internal server error")
}
