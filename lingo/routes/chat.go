package routes

import (
	"net/http"

	"lingo/lingo/config"
	"lingo/lingo/controllers"
	"lingo/lingo/middlewares"
	"lingo/lingo/utils/types"

	"github.com/go-chi/chi/v5"
)

func ChatRoutes(ctrl *controllers.ChatController, cfg config.Config) chi.Router {
	r := chi.NewRouter()
	r.Group(func(gr chi.Router) {
		gr.Use(middlewares.AuthMiddleware(cfg))

		gr.Post("/conversations", handleJSON(func(r *http.Request) (any, int, error) {
			userID, err := currentUser(r)
			if err != nil {
				return nil, 0, err
			}
			var req types.CreateConversationRequest
			if err := decodeBody(r, &req); err != nil {
				return nil, http.StatusBadRequest, err
			}
			conv, err := ctrl.CreateConversation(r.Context(), userID, req)
			if err != nil {
				return nil, 0, err
			}
			return conv, http.StatusOK, nil
		}))

		gr.Get("/conversations", handleJSON(func(r *http.Request) (any, int, error) {
			userID, err := currentUser(r)
			if err != nil {
				return nil, 0, err
			}
			convs, err := ctrl.Conversations(r.Context(), userID)
			if err != nil {
				return nil, 0, err
			}
			return convs, http.StatusOK, nil
		}))

		gr.Get("/conversations/{conversationId}", handleJSON(func(r *http.Request) (any, int, error) {
			userID, err := currentUser(r)
			if err != nil {
				return nil, 0, err
			}
			conv, err := ctrl.Conversation(r.Context(), userID, chi.URLParam(r, "conversationId"))
			if err != nil {
				return nil, 0, err
			}
			return conv, http.StatusOK, nil
		}))

		gr.Post("/message", handleJSON(func(r *http.Request) (any, int, error) {
			userID, err := currentUser(r)
			if err != nil {
				return nil, 0, err
			}
			var req types.SendMessageRequest
			if err := decodeBody(r, &req); err != nil {
				return nil, http.StatusBadRequest, err
			}
			msg, err := ctrl.SendMessage(r.Context(), userID, req)
			if err != nil {
				return nil, 0, err
			}
			return msg, http.StatusCreated, nil
		}))

		gr.Post("/translate", handleJSON(func(r *http.Request) (any, int, error) {
			var req types.TranslateRequest
			if err := decodeBody(r, &req); err != nil {
				return nil, http.StatusBadRequest, err
			}
			res, err := ctrl.Translate(r.Context(), req)
			if err != nil {
				return nil, 0, err
			}
			return res, http.StatusOK, nil
		}))

		gr.Get("/link-preview", handleJSON(func(r *http.Request) (any, int, error) {
			preview, err := ctrl.LinkPreview(r.Context(), r.URL.Query().Get("url"))
			if err != nil {
				return nil, 0, err
			}
			return preview, http.StatusOK, nil
		}))

		gr.Get("/{conversationId}", handleJSON(func(r *http.Request) (any, int, error) {
			userID, err := currentUser(r)
			if err != nil {
				return nil, 0, err
			}
			msgs, err := ctrl.Messages(r.Context(), userID, chi.URLParam(r, "conversationId"))
			if err != nil {
				return nil, 0, err
			}
			return msgs, http.StatusOK, nil
		}))
	})
	return r
}
