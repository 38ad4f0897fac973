package routes

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/vaulth/vaulth/pkg/store"
	"github.com/vaulth/vaulth/pkg/vapi/schemas"
	"github.com/vaulth/vaulth/pkg/vapi/services"
	"github.com/vaulth/vaulth/pkg/vjwt"
)

type UserOutput struct {
	Body schemas.User
}

func RegisterUsers(api huma.API, svcs *services.Services) {
	huma.Register(api, huma.Operation{
		OperationID: "get-user",
		Method:      http.MethodGet,
		Path:        "/users/{id}",
		Summary:     "Get a user's public profile",
		Tags:        []string{TagUsers.String()},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id" doc:"Local user id"`
	}) (*UserOutput, error) {
		user, err := svcs.Users.Select(ctx, input.ID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, huma.Error404NotFound("user not found")
		}
		if err != nil {
			return nil, serverError(svcs, err)
		}
		return &UserOutput{Body: *schemas.UserFromModel(user)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-me",
		Method:      http.MethodGet,
		Path:        "/me",
		Summary:     "Get the authenticated caller's profile",
		Tags:        []string{TagUsers.String()},
		Security:    BearerAuth,
	}, func(ctx context.Context, input *struct {
		Authorization string `header:"Authorization" doc:"Bearer access token"`
	}) (*UserOutput, error) {
		if !strings.HasPrefix(input.Authorization, "Bearer ") {
			return nil, huma.Error400BadRequest("invalid authorization header")
		}

		claims := new(vjwt.AccessClaims)
		if !svcs.JWT.Decode(strings.TrimPrefix(input.Authorization, "Bearer "), claims) {
			return nil, huma.Error401Unauthorized("invalid token")
		}

		user, err := svcs.Users.Select(ctx, claims.Sub)
		if errors.Is(err, store.ErrNotFound) {
			return nil, huma.Error404NotFound("user not found")
		}
		if err != nil {
			return nil, serverError(svcs, err)
		}
		return &UserOutput{Body: *schemas.UserFromModel(user)}, nil
	})
}
