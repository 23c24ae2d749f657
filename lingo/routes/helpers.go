package routes

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"lingo/lingo/controllers"
	"lingo/lingo/middlewares"
	"lingo/lingo/utils/logging"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

var errUnauthenticated = errors.New("unauthorized")

// generic wrapper to reduce boilerplate
func handleJSON(handler func(r *http.Request) (any, int, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, status, err := handler(r)
		if err != nil {
			writeError(w, r, status, err)
			return
		}
		writeJSON(w, status, res)
	}
}

func writeJSON(w http.ResponseWriter, status int, res any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(res)
}

// writeError hides unexpected errors behind a generic 500 body.
func writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	if status == 0 {
		status = statusFor(err)
	}
	var cerr *controllers.Error
	if status >= http.StatusInternalServerError && !errors.As(err, &cerr) {
		logging.ErrorLogger.Error("request failed",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		http.Error(w, "internal server error", status)
		return
	}
	http.Error(w, err.Error(), status)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, controllers.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, controllers.ErrUnauthorized), errors.Is(err, errUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, controllers.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, controllers.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, controllers.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func currentUser(r *http.Request) (int, error) {
	id, ok := middlewares.UserIDFrom(r.Context())
	if !ok {
		return 0, errUnauthenticated
	}
	return id, nil
}

func intParam(r *http.Request, name string) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, name))
	if err != nil || id <= 0 {
		return 0, errors.New("invalid " + name)
	}
	return id, nil
}

func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.New("invalid JSON body")
	}
	return nil
}
