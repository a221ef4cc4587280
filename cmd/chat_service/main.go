package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"medical_chat_service/internal/chat/app"
	chatrepo "medical_chat_service/internal/chat/repository"
	"medical_chat_service/internal/chat/router"
	identityrepo "medical_chat_service/internal/identity/repository"
	"medical_chat_service/pkg/config"
	"medical_chat_service/pkg/database"
	"medical_chat_service/pkg/logger"

	"github.com/gofiber/fiber/v2"
	fiber_log "github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"
)

func main() {
	logger.Log = logger.Initialize(config.EnvConfig.ChatService, config.EnvConfig.ChatServiceLogPath)
	cfg := config.LoadConfig[config.Chat](config.EnvConfig.ChatService, config.EnvConfig.ChatServiceYAMLPath)

	// mongo holds rooms, the embedded message logs and the identity
	// collections the connection check reads
	ctx := context.Background()
	uri := fmt.Sprintf("mongodb://%s:%s@%s:%d", cfg.Mongo.User, cfg.Mongo.Password, cfg.Mongo.Host, cfg.Mongo.Port)
	mongo, err := database.NewMongoDB(ctx,
		database.Connection{
			ConnectStr:    uri,
			RetryCount:    cfg.Mongo.RetryCount,
			RetryInterval: time.Duration(cfg.Mongo.RetryInterval),
		},
		cfg.Mongo.Database)
	if err != nil {
		logger.Log.Fatal(
			"Unable to connect to mongoDB database after retries",
			zap.String("address", fmt.Sprintf("[%s]", uri)),
			zap.Error(err),
		)
	}
	defer mongo.Close(ctx)

	// redis carries the live pub/sub channels and the read-path cache
	masterName, sentinel := config.GetRedisSetting()
	redisClient, err := database.NewRedisClient(masterName, sentinel, cfg.Redis.RedisDB)
	if err != nil {
		logger.Log.Fatal(fmt.Sprintf("connect redis err : %v", err))
	}

	// minio stores message attachments; the chat core only sees URLs
	minioClient, err := database.NewMinIOConnection(database.MinIOConnection{
		Endpoint:      cfg.MinIO.Endpoint,
		User:          cfg.MinIO.User,
		Password:      cfg.MinIO.Password,
		BucketName:    cfg.MinIO.Bucket,
		UseSSL:        cfg.MinIO.UseSSL,
		RetryCount:    cfg.MinIO.RetryCount,
		RetryInterval: time.Duration(cfg.MinIO.RetryInterval),
	})
	if err != nil {
		logger.Log.Fatal(fmt.Sprintf("connect minio err : %v", err))
	}

	roomRepo := chatrepo.NewMongoRoomRepository(mongo.Database)
	msgRepo := chatrepo.NewMongoMessageRepository(mongo.Database)
	identity := identityrepo.NewMongoIdentityRepository(mongo.Database)
	pubsub := chatrepo.NewRedisPubSub(redisClient)
	cache := chatrepo.NewChatCache(redisClient, cfg.Redis.RoomListTTL, cfg.Redis.MessageListTTL)
	attachments := chatrepo.NewMinioAttachmentStore(minioClient)

	if err := roomRepo.EnsureIndexes(ctx); err != nil {
		logger.Log.Fatal(fmt.Sprintf("ensure indexes err : %v", err))
	}

	roomUC := app.NewRoomUseCase(roomRepo, identity, cache, cfg.StoreTimeout, cfg.VerifyTimeout)
	messageUC := app.NewMessageUseCase(roomRepo, msgRepo, pubsub, cache, cfg.StoreTimeout)

	hub := app.NewHub()
	defer hub.Shutdown()

	r := fiber.New()
	file, err := os.OpenFile(fmt.Sprintf("%s/access.log", config.EnvConfig.ChatServiceLogPath), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer file.Close()

	r.Use(fiber_log.New(fiber_log.Config{
		Output: file,
	}))

	router.RegisterRoutes(r,
		app.NewChatRestHandler(roomUC, messageUC, hub, attachments),
		app.NewChatWebsocketHandler(roomUC, messageUC, hub, pubsub),
	)

	port := ":" + cfg.Port
	log.Printf("Chat Service listening on %s", port)
	if err := r.Listen(port); err != nil {
		log.Fatalf("Failed to start Fiber: %v", err)
	}
}
