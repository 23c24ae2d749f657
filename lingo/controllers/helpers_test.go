package controllers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"lingo/lingo/config"
	"lingo/lingo/services/languages"
	"lingo/lingo/services/linkpreview"
	"lingo/lingo/sources/mongo"
	"lingo/lingo/sources/presence"
	"lingo/lingo/sources/psql"
	"lingo/lingo/sources/psql/dao"
	"lingo/lingo/sources/storage"
	"lingo/lingo/utils/logging"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	logging.InitNop()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, psql.Migrate(context.Background(), db))
	return db
}

type fakeMessages struct {
	mu   sync.Mutex
	msgs []mongo.Message
	err  error
}

func (f *fakeMessages) SaveMessage(_ context.Context, msg *mongo.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	msg.ID = primitive.NewObjectID()
	f.msgs = append(f.msgs, *msg)
	return nil
}

func (f *fakeMessages) ListMessages(_ context.Context, conversationID string) ([]mongo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []mongo.Message
	for _, m := range f.msgs {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	return out, f.err
}

type fakeTranslator struct {
	out string
	err error
}

func (f fakeTranslator) Translate(_ context.Context, text, targetLang string) (string, error) {
	return f.out, f.err
}

type fakePreviewer struct {
	preview linkpreview.Preview
	err     error
}

func (f fakePreviewer) Fetch(_ context.Context, rawURL string) (linkpreview.Preview, error) {
	if f.err != nil {
		return linkpreview.Preview{}, f.err
	}
	p := f.preview
	p.URL = rawURL
	return p, nil
}

type fakeAvatars struct {
	objects map[int][]byte
	types   map[int]string
	putErr  error
}

func newFakeAvatars() *fakeAvatars {
	return &fakeAvatars{objects: map[int][]byte{}, types: map[int]string{}}
}

func (f *fakeAvatars) PutAvatar(_ context.Context, userID int, contentType string, data []byte) (string, error) {
	if f.putErr != nil {
		return "", f.putErr
	}
	f.objects[userID] = data
	f.types[userID] = contentType
	return "avatars/x", nil
}

func (f *fakeAvatars) GetAvatar(_ context.Context, userID int) (io.ReadCloser, string, error) {
	data, ok := f.objects[userID]
	if !ok {
		return nil, "", storage.ErrObjectNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), f.types[userID], nil
}

type fixture struct {
	auth     *AuthController
	users    *UserController
	chat     *ChatController
	messages *fakeMessages
	avatars  *fakeAvatars
	presence *presence.Memory
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := setupTestDB(t)
	userDAO := dao.NewUserDAO(db)
	cfg := config.Config{JWTSecret: "controller-secret", JWTTTL: time.Hour}

	auth := NewAuthController(userDAO, languages.Default(), cfg)
	auth.passwordCost = bcrypt.MinCost

	f := &fixture{
		auth:     auth,
		messages: &fakeMessages{},
		avatars:  newFakeAvatars(),
		presence: presence.NewMemory(),
	}
	f.users = NewUserController(userDAO, dao.NewFriendRequestDAO(db), f.presence, f.avatars)
	f.chat = NewChatController(dao.NewConversationDAO(db), f.messages, fakeTranslator{out: "Hola"}, fakePreviewer{})
	return f
}

var errBoom = errors.New("boom")
