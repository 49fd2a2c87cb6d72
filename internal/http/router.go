package http

import (
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"github.com/spacebabiez/backend/internal/config"
	"github.com/spacebabiez/backend/internal/http/handlers"
	"github.com/spacebabiez/backend/internal/middleware"
	"go.uber.org/zap"
)

func SetupRouter(
	app *fiber.App,
	cfg *config.Config,
	log *zap.Logger,
	rdb *redis.Client,
	authHandler *handlers.AuthHandler,
	sessionHandler *handlers.SessionHandler,
	userHandler *handlers.UserHandler,
	metaHandler *handlers.MetaHandler,
	wsHub *handlers.WSHub,
) {
	// Global middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))
	app.Use(middleware.RequestIDMiddleware())
	app.Use(middleware.LoggerMiddleware(log))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1")

	// Rate-limited public endpoints
	api.Use(middleware.RateLimitMiddleware(rdb, 100, time.Minute))

	// Connect flow (public: auth happens here)
	api.Post("/auth/nonce", authHandler.Nonce)
	api.Post("/auth/connect", authHandler.Connect)
	api.Post("/auth/auto-connect", authHandler.AutoConnect)

	// Meta (public)
	api.Get("/meta/wallets", metaHandler.GetWallets)

	// Protected endpoints
	protected := api.Group("", middleware.AuthMiddleware(cfg, log))

	// Profile
	protected.Get("/me", userHandler.GetMe)
	protected.Patch("/me", userHandler.UpdateMe)
	protected.Post("/me/ping", userHandler.Ping)
	protected.Get("/me/wallets", userHandler.ListWallets)
	protected.Get("/me/activity", userHandler.GetActivity)

	// Session
	protected.Get("/me/session", sessionHandler.GetSession)
	protected.Delete("/me/session", sessionHandler.Logout)
	protected.Post("/me/session/account-changed", sessionHandler.AccountChanged)

	// WebSocket
	app.Use("/ws", handlers.WSUpgradeMiddleware())
	app.Get("/ws", websocket.New(wsHub.HandleWS))
}
