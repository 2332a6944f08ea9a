package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	_ "videoboard/cmd/videoboard/docs" // 引入生成的 Swagger 文件
	"videoboard/internal/api/handlers"
	"videoboard/internal/api/router"
	userapp "videoboard/internal/user/app"
	userrepo "videoboard/internal/user/repository"
	videoapp "videoboard/internal/video/app"
	videorepo "videoboard/internal/video/repository"
	"videoboard/pkg/config"
	"videoboard/pkg/database"
	"videoboard/pkg/encrypt"
	"videoboard/pkg/logger"
	"videoboard/pkg/mailer"
	"videoboard/pkg/token"

	"github.com/gofiber/fiber/v2"
	fiber_log "github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"
)

func main() {
	logger.Log = logger.Initialize(config.EnvConfig.VideoBoard, config.EnvConfig.VideoBoardLogPath)
	cfg := config.LoadConfig[config.VideoBoard](config.EnvConfig.VideoBoard, config.EnvConfig.VideoBoardYAMLPath)

	// signing secrets come from config, one per token kind
	if cfg.JWT.SessionSecret != "" {
		token.SessionSecret = []byte(cfg.JWT.SessionSecret)
	}
	if cfg.JWT.ResetSecret != "" {
		token.ResetSecret = []byte(cfg.JWT.ResetSecret)
	}

	ctx := context.Background()

	// 1. 連線 MongoDB
	mongoURI := fmt.Sprintf("mongodb://%s:%s@%s:%d",
		cfg.Mongo.User, cfg.Mongo.Password, cfg.Mongo.Host, cfg.Mongo.Port)
	mongoDB, err := database.NewMongoDB(ctx, database.Connection{
		ConnectStr:    mongoURI,
		RetryCount:    cfg.Mongo.RetryCount,
		RetryInterval: time.Duration(cfg.Mongo.RetryInterval) * time.Second,
	}, cfg.Mongo.Database)
	if err != nil {
		logger.Log.Fatal(
			"Unable to connect to mongo database after retries",
			zap.String("address", fmt.Sprintf("[%s:%d]", cfg.Mongo.Host, cfg.Mongo.Port)),
			zap.Error(err),
		)
	}
	defer func() {
		if err := mongoDB.Close(ctx); err != nil {
			logger.Log.Errorf("close mongo err :", err)
		}
	}()

	userRepo := userrepo.NewUserRepository(mongoDB.Database)
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		logger.Log.Fatal("ensure user indexes", zap.Error(err))
	}
	videoRepo := videorepo.NewVideoRepo(mongoDB.Database)

	// 2. 初始化 MinIO 客戶端
	minioClient, err := database.NewMinIOConnection(database.MinIOConnection{
		Endpoint:   cfg.MinIO.Endpoint,
		User:       cfg.MinIO.User,
		Password:   cfg.MinIO.Password,
		BucketName: cfg.MinIO.Bucket,
		UseSSL:     cfg.MinIO.UseSSL,

		RetryCount:    cfg.MinIO.RetryCount,
		RetryInterval: time.Duration(cfg.MinIO.RetryInterval) * time.Second,
	})
	if err != nil {
		logger.Log.Fatal(
			"Unable to connect to minio after retries",
			zap.String("address", fmt.Sprintf("[%s]", cfg.MinIO.Endpoint)),
			zap.Error(err),
		)
	}

	resetMailer := mailer.NewSMTPMailer(cfg.SMTP, cfg.FrontendURL)

	authUseCase := userapp.NewAuthUseCase(userRepo, resetMailer, config.EnvConfig.VideoBoard, encrypt.HashPassword)
	videoUseCase := videoapp.NewVideoUseCase(minioClient, videoRepo, authUseCase)

	authHandler := handlers.NewAuthHandler(authUseCase)
	userHandler := handlers.NewUserHandler(authUseCase)
	videoHandler := handlers.NewVideoHandler(videoUseCase, authUseCase)

	// 建立 Fiber 應用
	r := fiber.New()
	// 掛上存取日誌 middleware
	file, err := os.OpenFile(fmt.Sprintf("%s/access.log", config.EnvConfig.VideoBoardLogPath), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer file.Close()

	r.Use(fiber_log.New(fiber_log.Config{
		Output: file,
	}))

	// 註冊路由
	router.RegisterRoutes(r, authHandler, userHandler, videoHandler)

	// 啟動伺服器
	if err := r.Listen(":" + cfg.Port); err != nil {
		logger.Log.Fatal("Server failed to start", zap.Error(err))
	}
}
