package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/spacebabiez/backend/internal/auth"
	"github.com/spacebabiez/backend/internal/config"
	"github.com/spacebabiez/backend/internal/db"
	"github.com/spacebabiez/backend/internal/events"
	apphttp "github.com/spacebabiez/backend/internal/http"
	"github.com/spacebabiez/backend/internal/http/handlers"
	"github.com/spacebabiez/backend/internal/repositories"
	"github.com/spacebabiez/backend/internal/services"
	"github.com/spacebabiez/backend/internal/session"
	"github.com/spacebabiez/backend/internal/wallet"
	"go.uber.org/zap"
)

func main() {
	log, _ := zap.NewProduction()
	defer log.Sync()

	cfg := config.Load()
	cfg.Validate(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database
	pool, err := db.NewPostgresPool(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer pool.Close()

	// Run migrations
	if err := db.RunMigrations(ctx, pool, "migrations", log); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	// Redis
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL, log)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	defer rdb.Close()

	// Repositories
	profileRepo := repositories.NewProfileRepo(pool)
	walletRepo := repositories.NewWalletRepo(pool)
	auditRepo := repositories.NewAuditRepo(pool)

	// Wallet providers
	registry := wallet.NewRegistry(
		wallet.NewPhantomProvider(cfg.ChallengeDomain, cfg.SolanaNetwork),
		wallet.NewMetaMaskProvider(cfg.ChallengeDomain, cfg.EthereumNetwork),
	)

	// Session state
	sessionManager := session.NewManager(session.NewRedisStore(rdb), log)
	grantStore := auth.NewGrantStore(rdb, cfg.GrantTTL)

	// Events
	publisher := events.NewRedisPublisher(rdb, log)
	subscriber := events.NewRedisSubscriber(rdb, log)

	// Fan session-state changes out to other instances and WS clients. The
	// profile ID is what lets the hub route the event to its owner only.
	sessionManager.Subscribe(func(ev session.Event) {
		payload := map[string]any{
			"device_id": ev.DeviceID,
			"address":   ev.Address,
			"kind":      string(ev.Kind),
		}
		if ev.ProfileID != uuid.Nil {
			payload["profile_id"] = ev.ProfileID.String()
		}
		_ = publisher.Publish(ctx, events.StreamSession, events.Event{
			Type:    string(ev.Type),
			Payload: payload,
		})
	})

	// Services
	issueToken := func(profileID uuid.UUID, deviceID, address, kind string) (string, error) {
		return auth.GenerateJWT(cfg.JWTSecret, profileID, deviceID, address, kind, cfg.JWTExpiration)
	}
	sessionService := services.NewSessionService(
		registry, sessionManager, profileRepo, walletRepo, grantStore, auditRepo,
		issueToken, cfg, log,
	)

	// Handlers
	authHandler := handlers.NewAuthHandler(sessionService, log)
	sessionHandler := handlers.NewSessionHandler(sessionService, sessionManager, log)
	userHandler := handlers.NewUserHandler(profileRepo, walletRepo, auditRepo, log)
	metaHandler := handlers.NewMetaHandler(registry)
	wsHub := handlers.NewWSHub(cfg, subscriber, log)

	// Start WS hub
	wsHub.Start(ctx)

	// Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{"error": err.Error()})
		},
	})

	apphttp.SetupRouter(app, cfg, log, rdb, authHandler, sessionHandler, userHandler, metaHandler, wsHub)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")
		cancel()
		_ = app.Shutdown()
	}()

	addr := fmt.Sprintf(":%s", cfg.APIPort)
	log.Info("starting API server", zap.String("addr", addr))
	if err := app.Listen(addr); err != nil {
		log.Fatal("server error", zap.Error(err))
	}
}
