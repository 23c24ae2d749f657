package middlewares

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"lingo/lingo/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func protected() http.Handler {
	cfg := config.Config{JWTSecret: testSecret}
	return AuthMiddleware(cfg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := UserIDFrom(r.Context())
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(strconv.Itoa(id)))
	}))
}

func TestSignAndParseToken(t *testing.T) {
	tok, err := SignToken(testSecret, 42, time.Hour)
	require.NoError(t, err)

	id, err := ParseToken(testSecret, tok)
	require.NoError(t, err)
	assert.Equal(t, 42, id)

	_, err = ParseToken("other-secret", tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenExpired(t *testing.T) {
	tok, err := SignToken(testSecret, 1, -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(testSecret, tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthMiddlewareSources(t *testing.T) {
	tok, err := SignToken(testSecret, 7, time.Hour)
	require.NoError(t, err)

	tests := []struct {
		name   string
		build  func(r *http.Request)
		status int
	}{
		{"missing", func(r *http.Request) {}, http.StatusUnauthorized},
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+tok) }, http.StatusOK},
		{"malformed header", func(r *http.Request) { r.Header.Set("Authorization", "Token "+tok) }, http.StatusUnauthorized},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: TokenCookie, Value: tok}) }, http.StatusOK},
		{"query", func(r *http.Request) {
			q := r.URL.Query()
			q.Set("token", tok)
			r.URL.RawQuery = q.Encode()
		}, http.StatusOK},
		{"garbage", func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.build(req)
			rr := httptest.NewRecorder()
			protected().ServeHTTP(rr, req)
			assert.Equal(t, tt.status, rr.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, "7", rr.Body.String())
			}
		})
	}
}

func TestCORS(t *testing.T) {
	h := CORS("http://localhost:5173")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, "http://localhost:5173", rr.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rr.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "http://evil.example")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusTeapot, rr.Code)
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}
