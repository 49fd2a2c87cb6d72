package session

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/spacebabiez/backend/internal/wallet"
	"go.uber.org/zap"
)

func newTestManager() (*Manager, *MemoryStore) {
	store := NewMemoryStore()
	return NewManager(store, zap.NewNop()), store
}

func TestSaveConnectionThenIsConnected(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	if err := m.SaveConnection(ctx, "dev-1", wallet.KindMetaMask, "0xABC123", uuid.Nil); err != nil {
		t.Fatal(err)
	}

	if !m.IsConnected(ctx, "dev-1") {
		t.Fatal("expected connected after SaveConnection")
	}
	if got := m.Address(ctx, "dev-1"); got != "0xABC123" {
		t.Fatalf("Address = %q, want %q", got, "0xABC123")
	}
}

func TestSaveConnection_EmptyAddress(t *testing.T) {
	m, _ := newTestManager()

	if err := m.SaveConnection(context.Background(), "dev-1", wallet.KindPhantom, "", uuid.Nil); !errors.Is(err, ErrEmptyAddress) {
		t.Fatalf("err = %v, want ErrEmptyAddress", err)
	}
}

func TestSaveConnection_Idempotent(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	var events []Event
	m.Subscribe(func(ev Event) { events = append(events, ev) })

	if err := m.SaveConnection(ctx, "dev-1", wallet.KindPhantom, "Babie111", uuid.Nil); err != nil {
		t.Fatal(err)
	}
	if err := m.SaveConnection(ctx, "dev-1", wallet.KindPhantom, "Babie111", uuid.Nil); err != nil {
		t.Fatal(err)
	}

	if !m.IsConnected(ctx, "dev-1") || m.Address(ctx, "dev-1") != "Babie111" {
		t.Fatal("state changed between identical saves")
	}
	if len(events) != 2 {
		t.Fatalf("notifications = %d, want 2 (one per save)", len(events))
	}
	for _, ev := range events {
		if ev.Type != EventConnected || ev.Address != "Babie111" {
			t.Fatalf("unexpected event: %+v", ev)
		}
	}
}

func TestClearConnection(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	var events []Event
	m.Subscribe(func(ev Event) { events = append(events, ev) })

	_ = m.SaveConnection(ctx, "dev-1", wallet.KindMetaMask, "0xABC123", uuid.Nil)
	if err := m.ClearConnection(ctx, "dev-1"); err != nil {
		t.Fatal(err)
	}

	if m.IsConnected(ctx, "dev-1") {
		t.Fatal("expected disconnected after ClearConnection")
	}
	if got := m.Address(ctx, "dev-1"); got != "" {
		t.Fatalf("Address = %q, want empty", got)
	}

	st, _ := m.State(ctx, "dev-1")
	if !st.ExplicitlyDisconnected {
		t.Fatal("explicit disconnect flag not set")
	}

	last := events[len(events)-1]
	if last.Type != EventDisconnected || last.Address != "0xABC123" {
		t.Fatalf("unexpected disconnect event: %+v", last)
	}
}

func TestReconnectClearsExplicitFlag(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	_ = m.SaveConnection(ctx, "dev-1", wallet.KindPhantom, "addr-1", uuid.Nil)
	_ = m.ClearConnection(ctx, "dev-1")
	_ = m.SaveConnection(ctx, "dev-1", wallet.KindPhantom, "addr-2", uuid.Nil)

	st, _ := m.State(ctx, "dev-1")
	if st.ExplicitlyDisconnected {
		t.Fatal("explicit flag must clear on a new explicit connect")
	}
	if got := m.Address(ctx, "dev-1"); got != "addr-2" {
		t.Fatalf("Address = %q, want addr-2", got)
	}
}

// Reopening a manager over the same store simulates a page reload: the
// connection must survive.
func TestStateSurvivesReload(t *testing.T) {
	m, store := newTestManager()
	ctx := context.Background()

	_ = m.SaveConnection(ctx, "dev-1", wallet.KindMetaMask, "0xABC123", uuid.Nil)

	reloaded := NewManager(store, zap.NewNop())
	if !reloaded.IsConnected(ctx, "dev-1") {
		t.Fatal("connection lost across reload")
	}
	if got := reloaded.Address(ctx, "dev-1"); got != "0xABC123" {
		t.Fatalf("Address = %q, want 0xABC123", got)
	}
}

func TestExplicitDisconnectSurvivesReload(t *testing.T) {
	m, store := newTestManager()
	ctx := context.Background()

	_ = m.SaveConnection(ctx, "dev-1", wallet.KindPhantom, "addr-1", uuid.Nil)
	_ = m.ClearConnection(ctx, "dev-1")

	reloaded := NewManager(store, zap.NewNop())
	st, _ := reloaded.State(ctx, "dev-1")
	if !st.ExplicitlyDisconnected {
		t.Fatal("explicit flag lost across reload")
	}
	if reloaded.IsConnected(ctx, "dev-1") {
		t.Fatal("expected disconnected after reload")
	}
}

func TestUnsubscribe(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()

	calls := 0
	unsub := m.Subscribe(func(Event) { calls++ })

	_ = m.SaveConnection(ctx, "dev-1", wallet.KindPhantom, "addr-1", uuid.Nil)
	unsub()
	_ = m.SaveConnection(ctx, "dev-1", wallet.KindPhantom, "addr-1", uuid.Nil)

	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

// Events must carry the owning profile so downstream consumers (the WS hub)
// can route them to that profile's connections instead of broadcasting.
func TestEventsCarryProfileID(t *testing.T) {
	m, _ := newTestManager()
	ctx := context.Background()
	profileID := uuid.New()

	var events []Event
	m.Subscribe(func(ev Event) { events = append(events, ev) })

	if err := m.SaveConnection(ctx, "dev-1", wallet.KindPhantom, "addr-1", profileID); err != nil {
		t.Fatal(err)
	}
	if err := m.ClearConnection(ctx, "dev-1"); err != nil {
		t.Fatal(err)
	}

	if len(events) != 2 {
		t.Fatalf("events = %d, want 2", len(events))
	}
	if events[0].ProfileID != profileID {
		t.Fatalf("connect event ProfileID = %s, want %s", events[0].ProfileID, profileID)
	}
	if events[1].ProfileID != profileID {
		t.Fatalf("disconnect event ProfileID = %s, want %s", events[1].ProfileID, profileID)
	}

	st, _ := m.State(ctx, "dev-1")
	if st.ProfileID != uuid.Nil {
		t.Fatal("cleared state must not keep the profile binding")
	}
}

func TestIsConnected_UnknownDevice(t *testing.T) {
	m, _ := newTestManager()

	if m.IsConnected(context.Background(), "never-seen") {
		t.Fatal("unknown device must read as disconnected")
	}
	if got := m.Address(context.Background(), "never-seen"); got != "" {
		t.Fatalf("Address = %q, want empty", got)
	}
}
