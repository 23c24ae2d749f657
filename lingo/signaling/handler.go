package signaling

import (
	"net/http"

	"lingo/lingo/middlewares"
	"lingo/lingo/utils/logging"

	"github.com/coder/websocket"
	"go.uber.org/zap"
)

// Handler upgrades an authenticated request. originPatterns are host
// patterns allowed for cross-origin browsers; empty skips the origin check.
func (h *Hub) Handler(originPatterns []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middlewares.UserIDFrom(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		opts := &websocket.AcceptOptions{OriginPatterns: originPatterns}
		if len(originPatterns) == 0 {
			opts.InsecureSkipVerify = true
		}
		conn, err := websocket.Accept(w, r, opts)
		if err != nil {
			logging.ErrorLogger.Warn("websocket accept failed", zap.Int("user_id", userID), zap.Error(err))
			return
		}
		h.Serve(r.Context(), conn, userID)
	}
}
