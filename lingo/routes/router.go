package routes

import (
	"time"

	"lingo/lingo/config"
	"lingo/lingo/controllers"
	"lingo/lingo/middlewares"
	"lingo/lingo/services/languages"
	"lingo/lingo/signaling"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Handlers struct {
	Auth      *controllers.AuthController
	Users     *controllers.UserController
	Chat      *controllers.ChatController
	Health    *controllers.HealthController
	Languages *languages.Catalog
	Hub       *signaling.Hub
}

// NewRouter builds the full HTTP surface. The socket route sits outside the
// request timeout since its connection lives as long as the client.
func NewRouter(h Handlers, cfg config.Config) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewares.RequestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middlewares.CORS(cfg.ClientURL))

	r.Mount("/socket", SocketRoutes(h.Hub, cfg))

	r.Group(func(api chi.Router) {
		api.Use(middleware.Timeout(60 * time.Second))
		api.Mount("/health", HealthRoutes(h.Health))
		api.Mount("/api/auth", AuthRoutes(h.Auth, cfg))
		api.Mount("/api/users", UserRoutes(h.Users, cfg))
		api.Mount("/api/chat", ChatRoutes(h.Chat, cfg))
		api.Mount("/api/languages", LanguageRoutes(h.Languages))
	})
	return r
}
