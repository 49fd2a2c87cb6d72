package handlers

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/spacebabiez/backend/internal/auth"
	"github.com/spacebabiez/backend/internal/config"
	"github.com/spacebabiez/backend/internal/events"
	"go.uber.org/zap"
)

// WSHub pushes wallet-session events to connected clients, so a second tab
// learns about a connect or disconnect made in the first one.
type WSHub struct {
	cfg         *config.Config
	subscriber  events.Subscriber
	log         *zap.Logger
	mu          sync.RWMutex
	connections map[uuid.UUID][]*websocket.Conn
}

func NewWSHub(cfg *config.Config, subscriber events.Subscriber, log *zap.Logger) *WSHub {
	return &WSHub{
		cfg:         cfg,
		subscriber:  subscriber,
		log:         log,
		connections: make(map[uuid.UUID][]*websocket.Conn),
	}
}

func (h *WSHub) Start(ctx context.Context) {
	_ = h.subscriber.Subscribe(ctx, events.StreamSession, func(event events.Event) {
		h.dispatch(event)
	})
}

// dispatch routes an event to the profile it concerns. Events without an
// owning profile (wallet-only sessions) are dropped rather than broadcast:
// they carry another device's address and must not leak to other clients.
func (h *WSHub) dispatch(event events.Event) {
	profileID, ok := eventProfileID(event)
	if !ok {
		return
	}
	h.SendToProfile(profileID, event)
}

// eventProfileID extracts the owning profile from the event payload.
func eventProfileID(event events.Event) (uuid.UUID, bool) {
	raw, ok := event.Payload["profile_id"].(string)
	if !ok {
		return uuid.Nil, false
	}
	profileID, err := uuid.Parse(raw)
	if err != nil || profileID == uuid.Nil {
		return uuid.Nil, false
	}
	return profileID, true
}

func (h *WSHub) SendToProfile(profileID uuid.UUID, event events.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, conn := range h.connections[profileID] {
		_ = conn.WriteMessage(websocket.TextMessage, data)
	}
}

// WSUpgradeMiddleware checks for websocket upgrade
func WSUpgradeMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}
}

func (h *WSHub) HandleWS(conn *websocket.Conn) {
	// Extract token from query
	tokenStr := conn.Query("token")
	if tokenStr == "" {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"missing token"}`))
		conn.Close()
		return
	}

	claims, err := auth.ParseJWT(h.cfg.JWTSecret, tokenStr)
	if err != nil {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"invalid token"}`))
		conn.Close()
		return
	}

	profileID := claims.ProfileID

	// Register
	h.mu.Lock()
	h.connections[profileID] = append(h.connections[profileID], conn)
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		conns := h.connections[profileID]
		for i, c := range conns {
			if c == conn {
				h.connections[profileID] = append(conns[:i], conns[i+1:]...)
				break
			}
		}
		if len(h.connections[profileID]) == 0 {
			delete(h.connections, profileID)
		}
		h.mu.Unlock()
		conn.Close()
	}()

	// Read loop (keep alive / pings)
	for {
		_, _, err := conn.ReadMessage()
		if err != nil {
			break
		}
	}
}
