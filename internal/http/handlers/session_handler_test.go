package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/spacebabiez/backend/internal/middleware"
	"github.com/spacebabiez/backend/internal/session"
	"github.com/spacebabiez/backend/internal/wallet"
	"go.uber.org/zap"
)

type countingStore struct {
	session.Store
	loads int
}

func (s *countingStore) Load(ctx context.Context, deviceID string) (session.State, error) {
	s.loads++
	return s.Store.Load(ctx, deviceID)
}

func newSessionApp(manager *session.Manager) *fiber.App {
	h := NewSessionHandler(nil, manager, zap.NewNop())

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(middleware.CtxDeviceID, "dev-1")
		c.Locals(middleware.CtxProfileID, uuid.New())
		return c.Next()
	})
	app.Get("/me/session", h.GetSession)
	return app
}

func getSessionState(t *testing.T, app *fiber.App) map[string]any {
	t.Helper()

	resp, err := app.Test(httptest.NewRequest("GET", "/me/session", nil))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	body, _ := io.ReadAll(resp.Body)
	var out struct {
		OK   bool           `json:"ok"`
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatal(err)
	}
	return out.Data
}

func TestGetSession_SingleStoreRead(t *testing.T) {
	store := &countingStore{Store: session.NewMemoryStore()}
	manager := session.NewManager(store, zap.NewNop())
	_ = manager.SaveConnection(context.Background(), "dev-1", wallet.KindPhantom, "addr-1", uuid.Nil)

	app := newSessionApp(manager)

	store.loads = 0
	data := getSessionState(t, app)

	if data["connected"] != true || data["address"] != "addr-1" {
		t.Fatalf("unexpected state: %+v", data)
	}
	if store.loads != 1 {
		t.Fatalf("store loads per request = %d, want 1", store.loads)
	}
}

func TestGetSession_ExplicitDisconnectReadsDisconnected(t *testing.T) {
	manager := session.NewManager(session.NewMemoryStore(), zap.NewNop())
	ctx := context.Background()
	_ = manager.SaveConnection(ctx, "dev-1", wallet.KindMetaMask, "0xABC123", uuid.Nil)
	_ = manager.ClearConnection(ctx, "dev-1")

	data := getSessionState(t, newSessionApp(manager))

	if data["connected"] != false {
		t.Fatalf("expected disconnected, got: %+v", data)
	}
	if _, ok := data["address"]; ok {
		t.Fatal("cleared session must not expose an address")
	}
}
