package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/spacebabiez/backend/internal/wallet"
)

// State is the persisted wallet-connection record for one device. It survives
// restarts: the record is only ever overwritten, never deleted, so the
// explicit-disconnect flag keeps suppressing silent reconnects after a reload.
// ProfileID is uuid.Nil for wallet-only sessions (profile sync degraded).
type State struct {
	Connected              bool        `json:"connected"`
	Address                string      `json:"address,omitempty"`
	Kind                   wallet.Kind `json:"kind,omitempty"`
	ProfileID              uuid.UUID   `json:"profile_id"`
	ExplicitlyDisconnected bool        `json:"explicitly_disconnected"`
	UpdatedAt              time.Time   `json:"updated_at"`
}

// Store is the durable key-value home of per-device session state.
// MemoryStore backs tests, RedisStore backs production.
type Store interface {
	Load(ctx context.Context, deviceID string) (State, error)
	Save(ctx context.Context, deviceID string, st State) error
	Delete(ctx context.Context, deviceID string) error
}

var ErrEmptyAddress = errors.New("address must not be empty")
