package routes

import (
	"github.com/vaulth/vaulth/pkg/vapi"
	"github.com/vaulth/vaulth/pkg/vapi/services"
)

// RegisterAPI wires every route. The JSON-shaped endpoints go through huma;
// the redirect legs and the raw PEM key endpoint sit directly on the mux.
func RegisterAPI(api *vapi.Api, svcs *services.Services) {
	RegisterToken(api.Api, svcs)
	RegisterUsers(api.Api, svcs)

	RegisterOAuth(api.Router, svcs)
	RegisterKey(api.Router, svcs.JWT)
}
