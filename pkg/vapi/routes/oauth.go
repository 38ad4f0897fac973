package routes

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vaulth/vaulth/pkg/providers"
	"github.com/vaulth/vaulth/pkg/vapi/services"
	"github.com/vaulth/vaulth/pkg/vapi/services/oauthflow"
	"github.com/vaulth/vaulth/pkg/vjwt"
)

// RegisterOAuth mounts the two redirect legs for every provider that has
// credentials configured: GET /<name> and GET /<name>-r.
func RegisterOAuth(router chi.Router, svcs *services.Services) {
	RegisterOAuthProviders(router, svcs, providers.All())
}

// RegisterOAuthProviders mounts the redirect legs for an explicit provider
// list.
func RegisterOAuthProviders(router chi.Router, svcs *services.Services, provs []*providers.Provider) {
	for _, p := range provs {
		if svcs.Cfg.Provider(p.Name) == nil {
			continue
		}
		router.Get("/"+p.Name, firstLeg(svcs, p))
		router.Get("/"+p.Name+"-r", secondLeg(svcs, p))
	}
}

// firstLeg is where the client redirects the user-agent to start the flow.
func firstLeg(svcs *services.Services, p *providers.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		params := &vjwt.StateClaims{
			ClientID:    q.Get("client_id"),
			RedirectURI: q.Get("redirect_uri"),
		}
		if s := q.Get("state"); s != "" {
			params.State = &s
		}
		if u := q.Get("user"); u != "" {
			params.User = &u
		}

		if params.ClientID == "" || params.RedirectURI == "" {
			http.Error(w, "missing client_id or redirect_uri", http.StatusBadRequest)
			return
		}

		location, err := svcs.Flow.FirstLeg(r.Context(), p, params)
		if err != nil {
			internalError(w, svcs, err)
			return
		}
		http.Redirect(w, r, location, http.StatusFound)
	}
}

// secondLeg is where the provider redirects the user-agent back. The query
// is an untagged union: {code, state} on success, {error, state} on
// provider error. The success shape is tried first.
func secondLeg(svcs *services.Services, p *providers.Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		state := q.Get("state")

		var location string
		var err error
		switch {
		case q.Get("code") != "" && state != "":
			location, err = svcs.Flow.Callback(r.Context(), p, q.Get("code"), state)
		case q.Get("error") != "" && state != "":
			location, err = svcs.Flow.CallbackError(r.Context(), q.Get("error"), state)
		default:
			http.Error(w, "invalid query", http.StatusBadRequest)
			return
		}
		if err != nil {
			if errors.Is(err, oauthflow.ErrBadState) {
				svcs.Log.Error("rejected undecodable state", "provider", p.Name)
			}
			internalError(w, svcs, err)
			return
		}
		http.Redirect(w, r, location, http.StatusFound)
	}
}

// internalError answers with an opaque 500. The cause is logged, never sent.
func internalError(w http.ResponseWriter, svcs *services.Services, err error) {
	svcs.Log.Error("request failed", "error", err)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}
