package models

import (
	"time"

	"github.com/google/uuid"
)

// WalletConnection is one verified wallet-to-profile link. A profile keeps its
// connection history; at most one row per device is active at a time.
type WalletConnection struct {
	ID             uuid.UUID  `json:"id"`
	ProfileID      uuid.UUID  `json:"profile_id"`
	DeviceID       string     `json:"device_id"`
	Address        string     `json:"address"`
	Kind           string     `json:"kind"` // phantom / metamask
	Network        string     `json:"network"`
	Verified       bool       `json:"verified"`
	ConnectedAt    time.Time  `json:"connected_at"`
	DisconnectedAt *time.Time `json:"disconnected_at,omitempty"`
	IsActive       bool       `json:"is_active"`
}

// ChallengeNonce is a one-time payload the wallet must sign to prove
// ownership. Consumed exactly once, expires quickly.
type ChallengeNonce struct {
	ID        uuid.UUID `json:"id"`
	Payload   string    `json:"payload"`
	Address   string    `json:"-"`
	Kind      string    `json:"-"`
	CreatedAt time.Time `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
	Used      bool      `json:"-"`
}
