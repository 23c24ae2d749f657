// lingo/routes/auth.go
package routes

import (
	"net/http"
	"time"

	"lingo/lingo/config"
	"lingo/lingo/controllers"
	"lingo/lingo/middlewares"
	"lingo/lingo/utils/types"

	"github.com/go-chi/chi/v5"
)

func setTokenCookie(w http.ResponseWriter, r *http.Request, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     middlewares.TokenCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   r.TLS != nil,
	})
}

func AuthRoutes(ctrl *controllers.AuthController, cfg config.Config) chi.Router {
	r := chi.NewRouter()

	r.Post("/signup", func(w http.ResponseWriter, r *http.Request) {
		var req types.SignupRequest
		if err := decodeBody(r, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		res, err := ctrl.Signup(r.Context(), req)
		if err != nil {
			writeError(w, r, 0, err)
			return
		}
		setTokenCookie(w, r, res.Token, cfg.JWTTTL)
		writeJSON(w, http.StatusCreated, res)
	})

	r.Post("/login", func(w http.ResponseWriter, r *http.Request) {
		var req types.LoginRequest
		if err := decodeBody(r, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		res, err := ctrl.Login(r.Context(), req)
		if err != nil {
			writeError(w, r, 0, err)
			return
		}
		setTokenCookie(w, r, res.Token, cfg.JWTTTL)
		writeJSON(w, http.StatusOK, res)
	})

	r.Post("/logout", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{
			Name:     middlewares.TokenCookie,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteStrictMode,
		})
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Logout successful"})
	})

	r.Group(func(gr chi.Router) {
		gr.Use(middlewares.AuthMiddleware(cfg))

		gr.Get("/me", handleJSON(func(r *http.Request) (any, int, error) {
			userID, err := currentUser(r)
			if err != nil {
				return nil, 0, err
			}
			user, err := ctrl.Me(r.Context(), userID)
			if err != nil {
				return nil, 0, err
			}
			return map[string]any{"success": true, "user": user}, http.StatusOK, nil
		}))

		gr.Post("/onboarding", handleJSON(func(r *http.Request) (any, int, error) {
			userID, err := currentUser(r)
			if err != nil {
				return nil, 0, err
			}
			var req types.OnboardingRequest
			if err := decodeBody(r, &req); err != nil {
				return nil, http.StatusBadRequest, err
			}
			user, err := ctrl.Onboard(r.Context(), userID, req)
			if err != nil {
				return nil, 0, err
			}
			return map[string]any{"success": true, "user": user}, http.StatusOK, nil
		}))
	})

	return r
}
