package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lingo/lingo/config"
	"lingo/lingo/controllers"
	"lingo/lingo/routes"
	"lingo/lingo/services/languages"
	"lingo/lingo/services/linkpreview"
	"lingo/lingo/services/llm"
	"lingo/lingo/signaling"
	"lingo/lingo/sources/mongo"
	"lingo/lingo/sources/presence"
	"lingo/lingo/sources/psql"
	"lingo/lingo/sources/psql/dao"
	"lingo/lingo/sources/storage"
	"lingo/lingo/utils/logging"

	"go.uber.org/zap"
)

func fatal(msg string, err error) {
	logging.ErrorLogger.Error(msg, zap.Error(err))
	logging.AppLogger.Error(msg, zap.Error(err))
	logging.Sync()
	os.Exit(1)
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logging.InitLogger("./logs")
		fatal("config error", err)
	}
	logging.InitLogger(cfg.LogDir)
	defer logging.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := psql.NewDatabase(ctx, cfg)
	if err != nil {
		fatal("database connection error", err)
	}
	defer db.Close()

	mongoDB, err := mongo.NewDB(ctx, cfg.MongoURL, cfg.MongoDB)
	if err != nil {
		fatal("mongo connection error", err)
	}
	messages := mongo.NewMessageStore(mongoDB)
	defer messages.Close(context.Background())

	minioClient, err := storage.NewMinIOClient(ctx, cfg)
	if err != nil {
		fatal("minio connection error", err)
	}

	checks := map[string]controllers.Check{
		"postgres": db.Ping,
		"mongo":    messages.Ping,
		"minio":    minioClient.Ping,
	}

	var tracker presence.Tracker = presence.NewMemory()
	if cfg.RedisURL != "" {
		redisTracker, err := presence.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			fatal("redis connection error", err)
		}
		defer redisTracker.Close()
		tracker = redisTracker
		checks["redis"] = redisTracker.Ping
	}

	model, err := llm.NewModel(ctx, cfg)
	if err != nil {
		fatal("llm setup error", err)
	}
	translator := llm.NewTranslator(model, minioClient)

	userDAO := dao.NewUserDAO(db.DB)
	catalog := languages.Default()
	hub := signaling.NewHub(cfg.MaxRoomPeers, tracker)

	r := routes.NewRouter(routes.Handlers{
		Auth:      controllers.NewAuthController(userDAO, catalog, cfg),
		Users:     controllers.NewUserController(userDAO, dao.NewFriendRequestDAO(db.DB), tracker, minioClient),
		Chat:      controllers.NewChatController(dao.NewConversationDAO(db.DB), messages, translator, linkpreview.NewPreviewer()),
		Health:    controllers.NewHealthController(checks),
		Languages: catalog,
		Hub:       hub,
	}, cfg)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logging.AppLogger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.ErrorLogger.Error("server listen error", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	// sockets are hijacked, so Shutdown does not wait for them
	hub.Close()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.ErrorLogger.Error("server shutdown error", zap.Error(err))
	}
	logging.AppLogger.Info("server shutdown complete")
}
