package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the application identity behind a wallet address. One profile per
// address, created lazily on first connect. The game counters are written by
// other services; this one only reads them back.
type Profile struct {
	ID               uuid.UUID `json:"id"`
	WalletAddress    string    `json:"wallet_address"`
	WalletKind       string    `json:"wallet_kind"`
	Username         string    `json:"username"`
	CommunityPoints  int64     `json:"community_points"`
	CitizenshipLevel int       `json:"citizenship_level"`
	StakingRewards   int64     `json:"staking_rewards"`
	CreatedAt        time.Time `json:"created_at"`
	LastSeenAt       time.Time `json:"last_seen_at"`
}
