package routes

import (
	"io"
	"net/http"

	"lingo/lingo/config"
	"lingo/lingo/controllers"
	"lingo/lingo/middlewares"

	"github.com/go-chi/chi/v5"
)

func UserRoutes(ctrl *controllers.UserController, cfg config.Config) chi.Router {
	r := chi.NewRouter()

	r.Group(func(gr chi.Router) {
		gr.Use(middlewares.AuthMiddleware(cfg))

		gr.Get("/", handleJSON(func(r *http.Request) (any, int, error) {
			userID, err := currentUser(r)
			if err != nil {
				return nil, 0, err
			}
			users, err := ctrl.RecommendedUsers(r.Context(), userID)
			if err != nil {
				return nil, 0, err
			}
			return users, http.StatusOK, nil
		}))

		gr.Get("/friends", handleJSON(func(r *http.Request) (any, int, error) {
			userID, err := currentUser(r)
			if err != nil {
				return nil, 0, err
			}
			friends, err := ctrl.Friends(r.Context(), userID)
			if err != nil {
				return nil, 0, err
			}
			return friends, http.StatusOK, nil
		}))

		gr.Get("/friends/{id}", handleJSON(func(r *http.Request) (any, int, error) {
			friendID, err := intParam(r, "id")
			if err != nil {
				return nil, http.StatusBadRequest, err
			}
			profile, err := ctrl.FriendProfile(r.Context(), friendID)
			if err != nil {
				return nil, 0, err
			}
			return profile, http.StatusOK, nil
		}))

		gr.Post("/friend-request/{id}", handleJSON(func(r *http.Request) (any, int, error) {
			userID, err := currentUser(r)
			if err != nil {
				return nil, 0, err
			}
			recipientID, err := intParam(r, "id")
			if err != nil {
				return nil, http.StatusBadRequest, err
			}
			req, err := ctrl.SendFriendRequest(r.Context(), userID, recipientID)
			if err != nil {
				return nil, 0, err
			}
			return req, http.StatusCreated, nil
		}))

		gr.Put("/friend-request/{id}/accept", handleJSON(func(r *http.Request) (any, int, error) {
			userID, err := currentUser(r)
			if err != nil {
				return nil, 0, err
			}
			requestID, err := intParam(r, "id")
			if err != nil {
				return nil, http.StatusBadRequest, err
			}
			if _, err := ctrl.AcceptFriendRequest(r.Context(), userID, requestID); err != nil {
				return nil, 0, err
			}
			return map[string]string{"message": "Friend request accepted"}, http.StatusOK, nil
		}))

		gr.Get("/friend-requests", handleJSON(func(r *http.Request) (any, int, error) {
			userID, err := currentUser(r)
			if err != nil {
				return nil, 0, err
			}
			reqs, err := ctrl.FriendRequests(r.Context(), userID)
			if err != nil {
				return nil, 0, err
			}
			return reqs, http.StatusOK, nil
		}))

		gr.Get("/outgoing-friend-requests", handleJSON(func(r *http.Request) (any, int, error) {
			userID, err := currentUser(r)
			if err != nil {
				return nil, 0, err
			}
			reqs, err := ctrl.OutgoingFriendRequests(r.Context(), userID)
			if err != nil {
				return nil, 0, err
			}
			return reqs, http.StatusOK, nil
		}))

		gr.Put("/me/avatar", handleJSON(func(r *http.Request) (any, int, error) {
			userID, err := currentUser(r)
			if err != nil {
				return nil, 0, err
			}
			// one byte over the limit is enough for the controller to reject it
			data, err := io.ReadAll(io.LimitReader(r.Body, controllers.MaxAvatarBytes+1))
			if err != nil {
				return nil, http.StatusBadRequest, err
			}
			user, err := ctrl.UpdateAvatar(r.Context(), userID, r.Header.Get("Content-Type"), data)
			if err != nil {
				return nil, 0, err
			}
			return user, http.StatusOK, nil
		}))

		gr.Get("/{id}/avatar", func(w http.ResponseWriter, r *http.Request) {
			userID, err := intParam(r, "id")
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			body, contentType, err := ctrl.Avatar(r.Context(), userID)
			if err != nil {
				writeError(w, r, 0, err)
				return
			}
			defer body.Close()
			w.Header().Set("Content-Type", contentType)
			w.Header().Set("Cache-Control", "private, max-age=300")
			io.Copy(w, body)
		})
	})

	return r
}
