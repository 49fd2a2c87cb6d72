package models

import (
	"time"

	"github.com/google/uuid"
)

type AuditLog struct {
	ID             uuid.UUID  `json:"id"`
	ActorProfileID *uuid.UUID `json:"actor_profile_id,omitempty"`
	ActorType      string     `json:"actor_type"` // user/system
	Action         string     `json:"action"`
	EntityType     string     `json:"entity_type"`
	EntityID       *uuid.UUID `json:"entity_id,omitempty"`
	Meta           any        `json:"meta,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}
