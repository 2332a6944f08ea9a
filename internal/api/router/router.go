package router

import (
	"videoboard/internal/api/handlers"
	"videoboard/pkg/middlewares"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
)

// RegisterRoutes 註冊所有路由
// @title VideoBoard API
// @version 1.0
// @description API documentation for VideoBoard
// @host localhost:8080
// @BasePath /
func RegisterRoutes(app *fiber.App,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	videoHandler *handlers.VideoHandler,
) {
	app.Get("/swagger/*", swagger.HandlerDefault)
	app.Get("/", handlers.ConnectCheck)
	app.Post("/debug", handlers.DebugLogFlag)

	authRoutes := app.Group("/auth")
	authRoutes.Post("/sign-up", authHandler.SignUp)
	authRoutes.Post("/sign-in", authHandler.SignIn)
	authRoutes.Post("/reset-password", authHandler.ResetPassword)
	authRoutes.Post("/update-password/:token", authHandler.UpdatePassword)

	userRoutes := app.Group("/user")
	userRoutes.Use(middlewares.JWTMiddleware(authHandler.Auth))
	userRoutes.Get("/profile", userHandler.Profile)
	userRoutes.Post("/update", userHandler.Update)

	// the list route decides by itself between the public feed and the
	// caller's own library
	app.Get("/videos", videoHandler.FetchVideos)
	app.Get("/video/:id", videoHandler.FetchVideoByID)
	app.Get("/video/:id/download", videoHandler.Download)
	app.Get("/video/:id/stream-url", videoHandler.StreamVideo)
	app.Post("/video/:id/track-view", videoHandler.TrackView)
	app.Post("/video/:id/track-download", videoHandler.TrackDownload)

	videoRoutes := app.Group("/videos")
	videoRoutes.Use(middlewares.JWTMiddleware(authHandler.Auth))
	videoRoutes.Post("/", videoHandler.Upload)

	videoEdit := app.Group("/video")
	videoEdit.Use(middlewares.JWTMiddleware(authHandler.Auth))
	videoEdit.Put("/:id", videoHandler.UpdateVideo)
	videoEdit.Delete("/:id", videoHandler.DeleteVideo)

	uploadRoutes := app.Group("/upload")
	uploadRoutes.Use(middlewares.JWTMiddleware(authHandler.Auth))
	uploadRoutes.Get("/presign", videoHandler.Presign)
}
