package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/spacebabiez/backend/internal/http/dto"
	"github.com/spacebabiez/backend/internal/middleware"
	"github.com/spacebabiez/backend/internal/repositories"
	"go.uber.org/zap"
)

type UserHandler struct {
	profileRepo *repositories.ProfileRepo
	walletRepo  *repositories.WalletRepo
	auditRepo   *repositories.AuditRepo
	log         *zap.Logger
}

func NewUserHandler(profileRepo *repositories.ProfileRepo, walletRepo *repositories.WalletRepo, auditRepo *repositories.AuditRepo, log *zap.Logger) *UserHandler {
	return &UserHandler{profileRepo: profileRepo, walletRepo: walletRepo, auditRepo: auditRepo, log: log}
}

// GetMe returns the connected wallet's profile.
// GET /me
func (h *UserHandler) GetMe(c *fiber.Ctx) error {
	profileID := middleware.GetProfileID(c)
	profile, err := h.profileRepo.GetByID(c.Context(), profileID)
	if err != nil {
		// Wallet-only sessions (profile sync degraded at connect time) land here.
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "profile not found"})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: profile})
}

// UpdateMe changes the display name.
// PATCH /me
func (h *UserHandler) UpdateMe(c *fiber.Ctx) error {
	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}

	username := strings.TrimSpace(req.Username)
	if username == "" || len(username) > 32 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "username must be 1-32 characters"})
	}

	profileID := middleware.GetProfileID(c)
	if err := h.profileRepo.UpdateUsername(c.Context(), profileID, username); err != nil {
		h.log.Error("failed to update username", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}

	profile, err := h.profileRepo.GetByID(c.Context(), profileID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "profile not found"})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: profile})
}

// Ping refreshes last_seen_at.
// POST /me/ping
func (h *UserHandler) Ping(c *fiber.Ctx) error {
	profileID := middleware.GetProfileID(c)
	if err := h.profileRepo.UpdateLastSeen(c.Context(), profileID); err != nil {
		h.log.Error("failed to update last_seen", zap.Error(err))
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}

// ListWallets returns the profile's connection history across devices, with
// the session's own wallet flagged.
// GET /me/wallets
func (h *UserHandler) ListWallets(c *fiber.Ctx) error {
	profileID := middleware.GetProfileID(c)
	current := middleware.GetWalletAddress(c)

	conns, err := h.walletRepo.ListByProfile(c.Context(), profileID)
	if err != nil {
		h.log.Error("failed to list wallet connections", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}

	out := make([]dto.WalletConnectionInfo, 0, len(conns))
	for _, w := range conns {
		out = append(out, dto.WalletConnectionInfo{
			Address:        w.Address,
			Kind:           w.Kind,
			Network:        w.Network,
			Verified:       w.Verified,
			IsActive:       w.IsActive,
			Current:        strings.EqualFold(w.Address, current),
			ConnectedAt:    w.ConnectedAt,
			DisconnectedAt: w.DisconnectedAt,
		})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: out})
}

// GetActivity lists the profile's recent session events.
// GET /me/activity
func (h *UserHandler) GetActivity(c *fiber.Ctx) error {
	profileID := middleware.GetProfileID(c)
	limit := c.QueryInt("limit", 50)

	entries, err := h.auditRepo.ListByActor(c.Context(), profileID, limit)
	if err != nil {
		h.log.Error("failed to list activity", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: entries})
}
