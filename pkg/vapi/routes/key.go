package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/vaulth/vaulth/pkg/vjwt"
)

// RegisterKey mounts GET /key, serving the PEM verification key verbatim so
// clients can check access tokens offline.
func RegisterKey(router chi.Router, jwtSvc *vjwt.Service) {
	router.Get("/key", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-pem-file")
		_, _ = w.Write(jwtSvc.PublicPEM())
	})
}
