package routes

import (
	"net/http"
	"net/url"

	"lingo/lingo/config"
	"lingo/lingo/controllers"
	"lingo/lingo/middlewares"
	"lingo/lingo/services/languages"
	"lingo/lingo/signaling"

	"github.com/go-chi/chi/v5"
)

func HealthRoutes(ctrl *controllers.HealthController) chi.Router {
	r := chi.NewRouter()
	r.Get("/", ctrl.HealthCheck)
	return r
}

func LanguageRoutes(catalog *languages.Catalog) chi.Router {
	r := chi.NewRouter()
	r.Get("/", handleJSON(func(r *http.Request) (any, int, error) {
		return catalog.All(), http.StatusOK, nil
	}))
	return r
}

// SocketRoutes serves the signaling socket. Browsers cannot set headers on
// a websocket, so the token comes from the jwt cookie or ?token=.
func SocketRoutes(hub *signaling.Hub, cfg config.Config) chi.Router {
	var origins []string
	if u, err := url.Parse(cfg.ClientURL); err == nil && u.Host != "" {
		origins = []string{u.Host}
	}

	r := chi.NewRouter()
	r.With(middlewares.AuthMiddleware(cfg)).Get("/", hub.Handler(origins))
	return r
}
