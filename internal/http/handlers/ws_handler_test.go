package handlers

import (
	"testing"

	"github.com/google/uuid"
	"github.com/spacebabiez/backend/internal/events"
)

// Session events carry device IDs and wallet addresses, so the hub must only
// ever deliver them to the profile they belong to. An event without a usable
// profile_id has no owner and must not be routed anywhere.
func TestEventProfileID(t *testing.T) {
	owner := uuid.New()

	cases := []struct {
		name    string
		payload map[string]any
		want    uuid.UUID
		routed  bool
	}{
		{"owned event", map[string]any{"profile_id": owner.String(), "address": "addr-1"}, owner, true},
		{"no profile_id", map[string]any{"device_id": "dev-1", "address": "addr-1"}, uuid.Nil, false},
		{"garbage profile_id", map[string]any{"profile_id": "not-a-uuid"}, uuid.Nil, false},
		{"nil profile_id", map[string]any{"profile_id": uuid.Nil.String()}, uuid.Nil, false},
		{"non-string profile_id", map[string]any{"profile_id": 42}, uuid.Nil, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, routed := eventProfileID(events.Event{Type: "wallet_connected", Payload: tc.payload})
			if routed != tc.routed {
				t.Fatalf("routed = %v, want %v", routed, tc.routed)
			}
			if got != tc.want {
				t.Fatalf("profile = %s, want %s", got, tc.want)
			}
		})
	}
}
