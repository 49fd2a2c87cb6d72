package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/spacebabiez/backend/internal/http/dto"
	"github.com/spacebabiez/backend/internal/wallet"
)

type MetaHandler struct {
	registry *wallet.Registry
}

func NewMetaHandler(registry *wallet.Registry) *MetaHandler {
	return &MetaHandler{registry: registry}
}

// GetWallets lists the wallet kinds this deployment accepts.
// GET /meta/wallets
func (h *MetaHandler) GetWallets(c *fiber.Ctx) error {
	providers := h.registry.All()
	out := make([]dto.WalletInfo, 0, len(providers))
	for _, p := range providers {
		out = append(out, dto.WalletInfo{Kind: string(p.Kind()), Network: p.Network()})
	}
	return c.JSON(dto.SuccessResponse{OK: true, Data: out})
}
