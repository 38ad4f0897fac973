package vapi

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/vaulth/vaulth/pkg/vapi/schemas"
)

type Api struct {
	Api    huma.API
	Router *chi.Mux
}

func NewApi() *Api {
	router := chi.NewMux()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	// All JSON errors use the {"error": "..."} body
	huma.NewError = schemas.NewError

	config := huma.DefaultConfig("Vaulth", "1.0.0")

	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "JWT",
			Description:  "Access token from POST /token, verifiable against GET /key",
		},
	}

	api := humachi.New(router, config)

	return &Api{Api: api, Router: router}
}
