package events

import "context"

// Event types
const (
	EventWalletConnected    = "wallet_connected"
	EventWalletDisconnected = "wallet_disconnected"
	EventAccountChanged     = "account_changed"
)

// StreamSession carries all wallet-session events.
const StreamSession = "events:session"

type Event struct {
	Type    string         `json:"type"`
	Payload map[string]any `json:"payload"`
}

type Publisher interface {
	Publish(ctx context.Context, stream string, event Event) error
}

type Subscriber interface {
	Subscribe(ctx context.Context, stream string, handler func(Event)) error
}
