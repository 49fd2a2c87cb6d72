package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/spacebabiez/backend/internal/http/dto"
	"github.com/spacebabiez/backend/internal/middleware"
	"github.com/spacebabiez/backend/internal/services"
	"github.com/spacebabiez/backend/internal/session"
	"github.com/spacebabiez/backend/internal/wallet"
	"go.uber.org/zap"
)

type SessionHandler struct {
	sessions *services.SessionService
	manager  *session.Manager
	log      *zap.Logger
}

func NewSessionHandler(sessions *services.SessionService, manager *session.Manager, log *zap.Logger) *SessionHandler {
	return &SessionHandler{sessions: sessions, manager: manager, log: log}
}

// GetSession reports the device's persisted connection state.
// GET /me/session
func (h *SessionHandler) GetSession(c *fiber.Ctx) error {
	deviceID := middleware.GetDeviceID(c)

	st, err := h.manager.State(c.Context(), deviceID)
	if err != nil {
		h.log.Error("failed to load session state", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "internal error"})
	}

	// Same rule as Manager.IsConnected, applied to the state already in hand.
	resp := dto.SessionStateResponse{}
	if st.Connected && st.Address != "" && !st.ExplicitlyDisconnected {
		resp.Connected = true
		resp.Address = st.Address
		resp.Kind = string(st.Kind)
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: resp})
}

// Logout clears the device's session. Local state always clears, even when
// backend-side cleanup fails; the handler only errors if the clear itself does.
// DELETE /me/session
func (h *SessionHandler) Logout(c *fiber.Ctx) error {
	deviceID := middleware.GetDeviceID(c)
	profileID := middleware.GetProfileID(c)

	if err := h.sessions.Logout(c.Context(), deviceID, profileID); err != nil {
		h.log.Error("logout failed", zap.String("device_id", deviceID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: "failed to clear session"})
	}
	return c.JSON(dto.SuccessResponse{OK: true})
}

// AccountChanged mirrors a wallet-side account switch. The new account proves
// ownership with a fresh signed challenge.
// POST /me/session/account-changed
func (h *SessionHandler) AccountChanged(c *fiber.Ctx) error {
	var req dto.AccountChangedRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}
	if req.Address == "" || req.Signature == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "address and signature are required"})
	}

	deviceID := middleware.GetDeviceID(c)
	kind := wallet.Kind(middleware.GetWalletKind(c))

	sess, err := h.sessions.AccountChanged(c.Context(), services.ConnectRequest{
		DeviceID:  deviceID,
		Kind:      kind,
		Address:   req.Address,
		Nonce:     req.Nonce,
		Signature: req.Signature,
	})
	if err != nil {
		h.log.Debug("account change failed", zap.String("device_id", deviceID), zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: walletErrorMessage(err)})
	}

	return c.JSON(dto.SuccessResponse{OK: true, Data: sess})
}
