package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"lingo/lingo/config"
	"lingo/lingo/controllers"
	"lingo/lingo/middlewares"
	"lingo/lingo/services/languages"
	"lingo/lingo/services/linkpreview"
	"lingo/lingo/signaling"
	"lingo/lingo/sources/mongo"
	"lingo/lingo/sources/presence"
	"lingo/lingo/sources/psql"
	"lingo/lingo/sources/psql/dao"
	"lingo/lingo/sources/storage"
	"lingo/lingo/utils/logging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type memMessages struct{ msgs []mongo.Message }

func (m *memMessages) SaveMessage(_ context.Context, msg *mongo.Message) error {
	msg.ID = primitive.NewObjectID()
	msg.CreatedAt = time.Now().UTC()
	m.msgs = append(m.msgs, *msg)
	return nil
}

func (m *memMessages) ListMessages(_ context.Context, id string) ([]mongo.Message, error) {
	var out []mongo.Message
	for _, msg := range m.msgs {
		if msg.ConversationID == id {
			out = append(out, msg)
		}
	}
	return out, nil
}

type stubTranslator struct{ err error }

func (s stubTranslator) Translate(_ context.Context, text, lang string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "[" + lang + "] " + text, nil
}

type stubPreviewer struct{}

func (stubPreviewer) Fetch(_ context.Context, raw string) (linkpreview.Preview, error) {
	if !strings.HasPrefix(raw, "http") {
		return linkpreview.Preview{}, linkpreview.ErrInvalidURL
	}
	return linkpreview.Preview{URL: raw, Title: "A page"}, nil
}

type memAvatars struct {
	data        map[int][]byte
	contentType map[int]string
}

func (m *memAvatars) PutAvatar(_ context.Context, id int, ct string, data []byte) (string, error) {
	m.data[id] = data
	m.contentType[id] = ct
	return "", nil
}

func (m *memAvatars) GetAvatar(_ context.Context, id int) (io.ReadCloser, string, error) {
	d, ok := m.data[id]
	if !ok {
		return nil, "", storage.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(d)), m.contentType[id], nil
}

type testAPI struct {
	t       *testing.T
	handler http.Handler
}

func newTestAPI(t *testing.T, translator controllers.Translator) *testAPI {
	t.Helper()
	logging.InitNop()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, psql.Migrate(context.Background(), db))

	cfg := config.Config{JWTSecret: "routes-secret", JWTTTL: time.Hour, ClientURL: "http://localhost:5173", MaxRoomPeers: 2}
	userDAO := dao.NewUserDAO(db)
	tracker := presence.NewMemory()
	avatars := &memAvatars{data: map[int][]byte{}, contentType: map[int]string{}}

	r := NewRouter(Handlers{
		Auth:      controllers.NewAuthController(userDAO, languages.Default(), cfg),
		Users:     controllers.NewUserController(userDAO, dao.NewFriendRequestDAO(db), tracker, avatars),
		Chat:      controllers.NewChatController(dao.NewConversationDAO(db), &memMessages{}, translator, stubPreviewer{}),
		Health:    controllers.NewHealthController(nil),
		Languages: languages.Default(),
		Hub:       signaling.NewHub(cfg.MaxRoomPeers, tracker),
	}, cfg)
	return &testAPI{t: t, handler: r}
}

func (a *testAPI) do(method, path, token string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case []byte:
		reader = bytes.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	a.handler.ServeHTTP(rr, req)
	return rr
}

type authBody struct {
	User struct {
		ID          int    `json:"_id"`
		Email       string `json:"email"`
		IsOnboarded bool   `json:"isOnboarded"`
	} `json:"user"`
	Token string `json:"token"`
}

func (a *testAPI) signup(email, name string) authBody {
	a.t.Helper()
	rr := a.do("POST", "/api/auth/signup", "", map[string]string{"email": email, "password": "secret1", "fullName": name})
	require.Equal(a.t, http.StatusCreated, rr.Code, rr.Body.String())
	var res authBody
	require.NoError(a.t, json.Unmarshal(rr.Body.Bytes(), &res))
	return res
}

func TestAuthFlow(t *testing.T) {
	api := newTestAPI(t, stubTranslator{})

	rr := api.do("POST", "/api/auth/signup", "", map[string]string{"email": "ana@example.com", "password": "secret1", "fullName": "Ana"})
	require.Equal(t, http.StatusCreated, rr.Code)
	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, middlewares.TokenCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.NotContains(t, rr.Body.String(), "passwordHash")

	rr = api.do("POST", "/api/auth/signup", "", map[string]string{"email": "ana@example.com", "password": "secret1", "fullName": "Ana"})
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = api.do("POST", "/api/auth/signup", "", map[string]string{"email": "x@example.com", "password": "123", "fullName": "X"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Password must be at least 6 characters\n", rr.Body.String())

	rr = api.do("POST", "/api/auth/login", "", map[string]string{"email": "ana@example.com", "password": "nope!!"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = api.do("POST", "/api/auth/login", "", map[string]string{"email": "ana@example.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, rr.Code)
	var login authBody
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &login))

	rr = api.do("GET", "/api/auth/me", login.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"email":"ana@example.com"`)

	// the cookie authenticates too
	req := httptest.NewRequest("GET", "/api/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: middlewares.TokenCookie, Value: login.Token})
	cookieRR := httptest.NewRecorder()
	api.handler.ServeHTTP(cookieRR, req)
	assert.Equal(t, http.StatusOK, cookieRR.Code)

	rr = api.do("GET", "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = api.do("POST", "/api/auth/onboarding", login.Token, map[string]string{
		"fullName": "Ana", "bio": "hola", "nativeLanguage": "Spanish", "learningLanguage": "English", "location": "Lima",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), `"isOnboarded":true`)

	rr = api.do("POST", "/api/auth/logout", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, -1, rr.Result().Cookies()[0].MaxAge)
}

func TestFriendRoutes(t *testing.T) {
	api := newTestAPI(t, stubTranslator{})
	ana := api.signup("ana@example.com", "Ana")
	bo := api.signup("bo@example.com", "Bo")
	cy := api.signup("cy@example.com", "Cy")

	rr := api.do("POST", "/api/users/friend-request/"+itoa(bo.User.ID), ana.Token, nil)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var req struct {
		ID int `json:"_id"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &req))

	rr = api.do("POST", "/api/users/friend-request/"+itoa(ana.User.ID), ana.Token, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	rr = api.do("POST", "/api/users/friend-request/abc", ana.Token, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = api.do("PUT", "/api/users/friend-request/"+itoa(req.ID)+"/accept", cy.Token, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = api.do("GET", "/api/users/friend-requests", bo.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"incomingReqs":[{`)
	assert.Contains(t, rr.Body.String(), `"acceptedReqs":[]`)

	rr = api.do("PUT", "/api/users/friend-request/"+itoa(req.ID)+"/accept", bo.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = api.do("GET", "/api/users/friends", ana.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var friends []struct {
		ID     int  `json:"_id"`
		Online bool `json:"online"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &friends))
	require.Len(t, friends, 1)
	assert.Equal(t, bo.User.ID, friends[0].ID)

	rr = api.do("GET", "/api/users/friends/"+itoa(bo.User.ID), ana.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.NotContains(t, rr.Body.String(), "email")

	rr = api.do("GET", "/api/users/friends/9999", ana.Token, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAvatarRoutes(t *testing.T) {
	api := newTestAPI(t, stubTranslator{})
	ana := api.signup("ana@example.com", "Ana")
	path := "/api/users/" + itoa(ana.User.ID) + "/avatar"

	rr := api.do("GET", path, ana.Token, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	req := httptest.NewRequest("PUT", "/api/users/me/avatar", bytes.NewReader([]byte("\x89PNG")))
	req.Header.Set("Authorization", "Bearer "+ana.Token)
	req.Header.Set("Content-Type", "image/png")
	put := httptest.NewRecorder()
	api.handler.ServeHTTP(put, req)
	require.Equal(t, http.StatusOK, put.Code, put.Body.String())
	assert.Contains(t, put.Body.String(), path)

	rr = api.do("GET", path, ana.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))
	assert.Equal(t, "\x89PNG", rr.Body.String())
}

func TestChatRoutes(t *testing.T) {
	api := newTestAPI(t, stubTranslator{})
	ana := api.signup("ana@example.com", "Ana")
	bo := api.signup("bo@example.com", "Bo")
	cy := api.signup("cy@example.com", "Cy")

	rr := api.do("POST", "/api/chat/conversations", ana.Token, map[string]int{"userId1": bo.User.ID, "userId2": ana.User.ID})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var conv struct {
		ID string `json:"_id"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &conv))
	assert.True(t, strings.HasPrefix(conv.ID, "pair-"))

	rr = api.do("POST", "/api/chat/conversations", cy.Token, map[string]int{"userId1": bo.User.ID, "userId2": ana.User.ID})
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = api.do("GET", "/api/chat/conversations", bo.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var listed []struct {
		ID     string `json:"_id"`
		PeerID int    `json:"peerId"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, conv.ID, listed[0].ID)
	assert.Equal(t, ana.User.ID, listed[0].PeerID)

	rr = api.do("GET", "/api/chat/conversations/"+conv.ID, cy.Token, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	rr = api.do("GET", "/api/chat/conversations/pair-998-and-999", ana.Token, nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = api.do("POST", "/api/chat/message", ana.Token, map[string]any{"conversationId": conv.ID, "text": "hola", "receiverId": bo.User.ID})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), `"senderId":`+itoa(ana.User.ID))

	rr = api.do("POST", "/api/chat/message", ana.Token, map[string]any{"conversationId": conv.ID, "text": ""})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = api.do("GET", "/api/chat/"+conv.ID, bo.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"text":"hola"`)

	rr = api.do("GET", "/api/chat/"+conv.ID, cy.Token, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = api.do("GET", "/api/chat/link-preview?url=https://example.com", ana.Token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"title":"A page"`)

	rr = api.do("GET", "/api/chat/link-preview?url=ftp://example.com", ana.Token, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = api.do("POST", "/api/chat/message", ana.Token, []byte("{"))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestTranslateRoute(t *testing.T) {
	api := newTestAPI(t, stubTranslator{})
	ana := api.signup("ana@example.com", "Ana")

	rr := api.do("POST", "/api/chat/translate", ana.Token, map[string]string{"text": "hi", "targetLang": "Spanish"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"translatedText":"[Spanish] hi"}`, rr.Body.String())

	rr = api.do("POST", "/api/chat/translate", ana.Token, map[string]string{"text": "hi"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Text and target language are required.\n", rr.Body.String())

	failing := newTestAPI(t, stubTranslator{err: errors.New("quota")})
	bo := failing.signup("bo@example.com", "Bo")
	rr = failing.do("POST", "/api/chat/translate", bo.Token, map[string]string{"text": "hi", "targetLang": "Spanish"})
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "Failed to translate text.\n", rr.Body.String())
}

func TestPublicRoutes(t *testing.T) {
	api := newTestAPI(t, stubTranslator{})

	rr := api.do("GET", "/health", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())

	rr = api.do("GET", "/api/languages", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `{"name":"Spanish","flag":"es"}`)

	rr = api.do("GET", "/socket", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req := httptest.NewRequest("OPTIONS", "/api/users", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	pre := httptest.NewRecorder()
	api.handler.ServeHTTP(pre, req)
	assert.Equal(t, http.StatusNoContent, pre.Code)
	assert.Equal(t, "http://localhost:5173", pre.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", pre.Header().Get("Access-Control-Allow-Credentials"))
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("db down")))
	assert.Equal(t, http.StatusConflict, statusFor(&controllers.Error{Kind: controllers.ErrConflict, Message: "x"}))

	rr := httptest.NewRecorder()
	r := httptest.NewRequest("GET", "/", nil)
	writeError(rr, r, 0, errors.New("pq: connection refused"))
	assert.Equal(t, "internal server error\n", rr.Body.String())
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
