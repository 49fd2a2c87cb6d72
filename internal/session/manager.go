package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spacebabiez/backend/internal/wallet"
	"go.uber.org/zap"
)

type EventType string

const (
	EventConnected    EventType = "wallet_connected"
	EventDisconnected EventType = "wallet_disconnected"
)

// Event is delivered to subscribers on every connection change, so parts of
// the system that don't share call paths (the WS hub, audit, metrics) can
// react without being threaded through the connect flow. ProfileID is
// uuid.Nil for wallet-only sessions.
type Event struct {
	Type      EventType
	DeviceID  string
	Address   string
	Kind      wallet.Kind
	ProfileID uuid.UUID
}

// Manager is the single source of truth for "is this device's wallet
// connected, and to what address". It owns an explicit subscriber list instead
// of a global event bus.
type Manager struct {
	store Store
	log   *zap.Logger

	mu     sync.RWMutex
	subs   map[int]func(Event)
	nextID int
}

func NewManager(store Store, log *zap.Logger) *Manager {
	return &Manager{
		store: store,
		log:   log,
		subs:  make(map[int]func(Event)),
	}
}

// Subscribe registers an observer and returns its unsubscribe func.
// Observers run synchronously on the mutating goroutine and must not block.
func (m *Manager) Subscribe(fn func(Event)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs, id)
	}
}

func (m *Manager) notify(ev Event) {
	m.mu.RLock()
	fns := make([]func(Event), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.mu.RUnlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// State returns the raw persisted record.
func (m *Manager) State(ctx context.Context, deviceID string) (State, error) {
	return m.store.Load(ctx, deviceID)
}

// IsConnected reports whether the device has an active wallet. The explicit
// disconnect flag wins over everything else; store errors read as "not
// connected" rather than failing the caller.
func (m *Manager) IsConnected(ctx context.Context, deviceID string) bool {
	st, err := m.store.Load(ctx, deviceID)
	if err != nil {
		m.log.Warn("session load failed", zap.String("device_id", deviceID), zap.Error(err))
		return false
	}
	if st.ExplicitlyDisconnected {
		return false
	}
	return st.Connected && st.Address != ""
}

// Address returns the connected address, or "" when not connected.
func (m *Manager) Address(ctx context.Context, deviceID string) string {
	if !m.IsConnected(ctx, deviceID) {
		return ""
	}
	st, err := m.store.Load(ctx, deviceID)
	if err != nil {
		return ""
	}
	return st.Address
}

// SaveConnection records a successful connect and clears the explicit
// disconnect flag. Idempotent: saving the same address twice leaves the same
// state, and each call notifies subscribers.
func (m *Manager) SaveConnection(ctx context.Context, deviceID string, kind wallet.Kind, address string, profileID uuid.UUID) error {
	if address == "" {
		return ErrEmptyAddress
	}

	st := State{
		Connected:              true,
		Address:                address,
		Kind:                   kind,
		ProfileID:              profileID,
		ExplicitlyDisconnected: false,
		UpdatedAt:              time.Now().UTC(),
	}
	if err := m.store.Save(ctx, deviceID, st); err != nil {
		return err
	}

	m.notify(Event{Type: EventConnected, DeviceID: deviceID, Address: address, Kind: kind, ProfileID: profileID})
	return nil
}

// ClearConnection records a user-initiated disconnect. The explicit flag stays
// set until the next SaveConnection, which is what suppresses auto-reconnect.
func (m *Manager) ClearConnection(ctx context.Context, deviceID string) error {
	prev, err := m.store.Load(ctx, deviceID)
	if err != nil {
		m.log.Warn("session load before clear failed", zap.String("device_id", deviceID), zap.Error(err))
	}

	st := State{
		Connected:              false,
		Address:                "",
		Kind:                   prev.Kind,
		ExplicitlyDisconnected: true,
		UpdatedAt:              time.Now().UTC(),
	}
	if err := m.store.Save(ctx, deviceID, st); err != nil {
		return err
	}

	m.notify(Event{Type: EventDisconnected, DeviceID: deviceID, Address: prev.Address, Kind: prev.Kind, ProfileID: prev.ProfileID})
	return nil
}
