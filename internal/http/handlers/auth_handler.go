package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/spacebabiez/backend/internal/http/dto"
	"github.com/spacebabiez/backend/internal/services"
	"github.com/spacebabiez/backend/internal/wallet"
	"go.uber.org/zap"
)

type AuthHandler struct {
	sessions *services.SessionService
	log      *zap.Logger
}

func NewAuthHandler(sessions *services.SessionService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{sessions: sessions, log: log}
}

// Nonce issues the one-time challenge the wallet signs.
// POST /auth/nonce
func (h *AuthHandler) Nonce(c *fiber.Ctx) error {
	var req dto.NonceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}
	if req.Kind == "" || req.Address == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "kind and address are required"})
	}

	kind, err := wallet.ParseKind(req.Kind)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: walletErrorMessage(err)})
	}

	n, err := h.sessions.Nonce(c.Context(), kind, req.Address)
	if err != nil {
		return h.mapError(c, err)
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: dto.NonceResponse{Nonce: n.Payload, ExpiresAt: n.ExpiresAt}})
}

// Connect runs the explicit connect flow against a signed challenge.
// POST /auth/connect
func (h *AuthHandler) Connect(c *fiber.Ctx) error {
	var req dto.ConnectRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}
	if req.DeviceID == "" || req.Kind == "" || req.Address == "" || req.Signature == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "device_id, kind, address, and signature are required"})
	}

	kind, err := wallet.ParseKind(req.Kind)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: walletErrorMessage(err)})
	}

	sess, err := h.sessions.Connect(c.Context(), services.ConnectRequest{
		DeviceID:  req.DeviceID,
		Kind:      kind,
		Address:   req.Address,
		Nonce:     req.Nonce,
		Signature: req.Signature,
	})
	if err != nil {
		h.log.Debug("connect failed", zap.String("device_id", req.DeviceID), zap.Error(err))
		return h.mapError(c, err)
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: sess})
}

// AutoConnect resumes silently from a trust grant. Always answers 200; a
// missing or dead grant comes back as data:null so page loads stay quiet.
// POST /auth/auto-connect
func (h *AuthHandler) AutoConnect(c *fiber.Ctx) error {
	var req dto.AutoConnectRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}
	if req.DeviceID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "device_id is required"})
	}

	sess, _ := h.sessions.AutoConnect(c.Context(), req.DeviceID, req.Grant)
	if sess == nil {
		return c.JSON(dto.SuccessResponse{OK: true, Data: nil})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: sess})
}

func (h *AuthHandler) mapError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, wallet.ErrWalletNotSupported),
		errors.Is(err, wallet.ErrInvalidAddress),
		errors.Is(err, services.ErrChallengeInvalid):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: walletErrorMessage(err)})
	case errors.Is(err, wallet.ErrOwnershipRejected):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: walletErrorMessage(err)})
	default:
		h.log.Error("connect flow internal error", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}
}

// walletErrorMessage turns sentinel errors into the instructive text the
// frontend shows next to the connect button.
func walletErrorMessage(err error) string {
	switch {
	case errors.Is(err, wallet.ErrWalletNotSupported):
		return "this wallet is not supported. Connect with Phantom or MetaMask"
	case errors.Is(err, wallet.ErrInvalidAddress):
		return "the wallet address is not valid for the selected network"
	case errors.Is(err, wallet.ErrOwnershipRejected):
		return "wallet signature check failed. Approve the connection request and try again"
	case errors.Is(err, services.ErrChallengeInvalid):
		return "the connection challenge expired. Try connecting again"
	default:
		return err.Error()
	}
}
