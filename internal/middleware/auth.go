package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/spacebabiez/backend/internal/auth"
	"github.com/spacebabiez/backend/internal/config"
	"go.uber.org/zap"
)

const (
	CtxProfileID     = "profile_id"
	CtxDeviceID      = "device_id"
	CtxWalletAddress = "wallet_address"
	CtxWalletKind    = "wallet_kind"
)

func AuthMiddleware(cfg *config.Config, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing authorization header"})
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenStr == authHeader {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid authorization format"})
		}

		claims, err := auth.ParseJWT(cfg.JWTSecret, tokenStr)
		if err != nil {
			log.Debug("jwt parse error", zap.Error(err))
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid or expired token"})
		}

		c.Locals(CtxProfileID, claims.ProfileID)
		c.Locals(CtxDeviceID, claims.DeviceID)
		c.Locals(CtxWalletAddress, claims.WalletAddress)
		c.Locals(CtxWalletKind, claims.WalletKind)

		return c.Next()
	}
}

func GetProfileID(c *fiber.Ctx) uuid.UUID {
	id, _ := c.Locals(CtxProfileID).(uuid.UUID)
	return id
}

func GetDeviceID(c *fiber.Ctx) string {
	id, _ := c.Locals(CtxDeviceID).(string)
	return id
}

func GetWalletAddress(c *fiber.Ctx) string {
	addr, _ := c.Locals(CtxWalletAddress).(string)
	return addr
}

func GetWalletKind(c *fiber.Ctx) string {
	kind, _ := c.Locals(CtxWalletKind).(string)
	return kind
}
