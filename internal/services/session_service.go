package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spacebabiez/backend/internal/auth"
	"github.com/spacebabiez/backend/internal/config"
	"github.com/spacebabiez/backend/internal/models"
	"github.com/spacebabiez/backend/internal/session"
	"github.com/spacebabiez/backend/internal/wallet"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ErrChallengeInvalid covers unknown, expired and already-consumed nonces.
var ErrChallengeInvalid = errors.New("challenge invalid or expired")

// ProfileStore is the backend profile table as the session layer sees it.
type ProfileStore interface {
	UpsertByAddress(ctx context.Context, address, kind, defaultUsername string) (*models.Profile, error)
	GetByAddress(ctx context.Context, address string) (*models.Profile, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
}

// WalletStore persists challenge nonces and connection history.
type WalletStore interface {
	CreateNonce(ctx context.Context, address, kind string, ttl time.Duration) (*models.ChallengeNonce, error)
	ConsumeNonce(ctx context.Context, payload, address string) (*models.ChallengeNonce, error)
	SaveConnection(ctx context.Context, w *models.WalletConnection) error
	DeactivateByDevice(ctx context.Context, deviceID string) error
}

// GrantStore holds trust grants for silent reconnects.
type GrantStore interface {
	Issue(ctx context.Context, deviceID, address, kind string) (string, error)
	Redeem(ctx context.Context, deviceID, token string) (*auth.Grant, error)
	Revoke(ctx context.Context, deviceID string) error
}

// Auditor records session activity.
type Auditor interface {
	Log(ctx context.Context, entry models.AuditLog) error
}

// TokenIssuer mints the session JWT returned to clients.
type TokenIssuer func(profileID uuid.UUID, deviceID, walletAddress, walletKind string) (string, error)

// Session is what a successful connect or auto-connect resolves to.
type Session struct {
	Token    string          `json:"token"`
	Grant    string          `json:"grant,omitempty"` // only set on explicit connect
	DeviceID string          `json:"device_id"`
	Address  string          `json:"address"`
	Kind     wallet.Kind     `json:"kind"`
	Network  string          `json:"network"`
	Profile  *models.Profile `json:"profile"` // nil when profile sync degraded
}

type ConnectRequest struct {
	DeviceID  string
	Kind      wallet.Kind
	Address   string
	Nonce     string
	Signature string
}

// SessionService bridges wallet ownership verification to application
// identity: one connect/auto-connect/logout surface for the HTTP layer.
type SessionService struct {
	registry   *wallet.Registry
	manager    *session.Manager
	profiles   ProfileStore
	wallets    WalletStore
	grants     GrantStore
	audit      Auditor
	issueToken TokenIssuer
	cfg        *config.Config
	log        *zap.Logger

	// collapses concurrent auto-connects for one device into one attempt
	autoGroup singleflight.Group
}

func NewSessionService(
	registry *wallet.Registry,
	manager *session.Manager,
	profiles ProfileStore,
	wallets WalletStore,
	grants GrantStore,
	audit Auditor,
	issueToken TokenIssuer,
	cfg *config.Config,
	log *zap.Logger,
) *SessionService {
	return &SessionService{
		registry:   registry,
		manager:    manager,
		profiles:   profiles,
		wallets:    wallets,
		grants:     grants,
		audit:      audit,
		issueToken: issueToken,
		cfg:        cfg,
		log:        log,
	}
}

// Nonce issues a one-time challenge the wallet must sign. The returned payload
// goes into wallet.ChallengeMessage on the client.
func (s *SessionService) Nonce(ctx context.Context, kind wallet.Kind, address string) (*models.ChallengeNonce, error) {
	provider, err := s.registry.Get(kind)
	if err != nil {
		return nil, err
	}
	if err := provider.ValidateAddress(address); err != nil {
		return nil, err
	}

	n, err := s.wallets.CreateNonce(ctx, address, string(kind), s.cfg.ChallengeTTL)
	if err != nil {
		return nil, fmt.Errorf("create challenge nonce: %w", err)
	}
	return n, nil
}

// Connect runs the explicit connect flow: verify ownership, persist the
// connection, resolve the profile, mint token + trust grant. Profile-store
// failures degrade to a wallet-only session instead of failing the connect.
func (s *SessionService) Connect(ctx context.Context, req ConnectRequest) (*Session, error) {
	provider, err := s.registry.Get(req.Kind)
	if err != nil {
		return nil, err
	}
	if err := provider.ValidateAddress(req.Address); err != nil {
		return nil, err
	}

	if _, err := s.wallets.ConsumeNonce(ctx, req.Nonce, req.Address); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrChallengeInvalid, err)
	}

	if err := provider.VerifyOwnership(req.Address, req.Nonce, req.Signature); err != nil {
		return nil, err
	}

	// Profile first, so the saved state and its event carry the profile ID.
	profile := s.resolveProfile(ctx, req.Address, req.Kind)

	if err := s.manager.SaveConnection(ctx, req.DeviceID, req.Kind, req.Address, profileIDOf(profile)); err != nil {
		return nil, fmt.Errorf("save session state: %w", err)
	}

	if profile != nil {
		conn := &models.WalletConnection{
			ProfileID: profile.ID,
			DeviceID:  req.DeviceID,
			Address:   req.Address,
			Kind:      string(req.Kind),
			Network:   provider.Network(),
			Verified:  true,
		}
		if err := s.wallets.SaveConnection(ctx, conn); err != nil {
			s.log.Warn("failed to save wallet connection row", zap.Error(err))
		}
	}

	grant, err := s.grants.Issue(ctx, req.DeviceID, req.Address, string(req.Kind))
	if err != nil {
		// Only costs the silent reconnect; the explicit connect still stands.
		s.log.Warn("failed to issue trust grant", zap.Error(err))
		grant = ""
	}

	sess, err := s.buildSession(req.DeviceID, req.Address, req.Kind, provider.Network(), profile)
	if err != nil {
		return nil, err
	}
	sess.Grant = grant

	s.auditConnect(ctx, profile, req.DeviceID, req.Address, req.Kind)

	s.log.Info("wallet connected",
		zap.String("device_id", req.DeviceID),
		zap.String("address", req.Address),
		zap.String("kind", string(req.Kind)),
	)
	return sess, nil
}

// AutoConnect attempts a silent resume from a trust grant. It never prompts
// and never surfaces failures: any problem reads as "no prior authorization"
// and returns (nil, nil). Concurrent attempts for one device collapse into a
// single flight.
func (s *SessionService) AutoConnect(ctx context.Context, deviceID, grantToken string) (*Session, error) {
	v, err, _ := s.autoGroup.Do(deviceID, func() (any, error) {
		return s.autoConnect(ctx, deviceID, grantToken), nil
	})
	if err != nil {
		return nil, nil
	}
	sess, _ := v.(*Session)
	return sess, nil
}

func (s *SessionService) autoConnect(ctx context.Context, deviceID, grantToken string) *Session {
	st, err := s.manager.State(ctx, deviceID)
	if err != nil {
		s.log.Debug("auto-connect: state load failed", zap.Error(err))
		return nil
	}
	if st.ExplicitlyDisconnected {
		return nil
	}

	grant, err := s.grants.Redeem(ctx, deviceID, grantToken)
	if err != nil {
		s.log.Debug("auto-connect: no usable grant", zap.String("device_id", deviceID), zap.Error(err))
		return nil
	}

	kind := wallet.Kind(grant.Kind)
	provider, err := s.registry.Get(kind)
	if err != nil {
		return nil
	}

	// Read-only lookup: a silent resume must never create profiles.
	profile := s.lookupProfile(ctx, grant.Address)

	if err := s.manager.SaveConnection(ctx, deviceID, kind, grant.Address, profileIDOf(profile)); err != nil {
		s.log.Debug("auto-connect: save failed", zap.Error(err))
		return nil
	}

	sess, err := s.buildSession(deviceID, grant.Address, kind, provider.Network(), profile)
	if err != nil {
		s.log.Debug("auto-connect: token mint failed", zap.Error(err))
		return nil
	}
	return sess
}

// Logout clears everything local regardless of how the side calls go: grant
// revocation and connection-row updates are best-effort, the state clear is
// not.
func (s *SessionService) Logout(ctx context.Context, deviceID string, profileID uuid.UUID) error {
	if err := s.grants.Revoke(ctx, deviceID); err != nil {
		s.log.Warn("failed to revoke trust grant", zap.Error(err))
	}
	if err := s.wallets.DeactivateByDevice(ctx, deviceID); err != nil {
		s.log.Warn("failed to deactivate wallet connections", zap.Error(err))
	}

	if err := s.manager.ClearConnection(ctx, deviceID); err != nil {
		return fmt.Errorf("clear session state: %w", err)
	}

	if profileID != uuid.Nil {
		_ = s.audit.Log(ctx, models.AuditLog{
			ActorProfileID: &profileID,
			ActorType:      "user",
			Action:         "wallet_disconnected",
			EntityType:     "session",
		})
	}
	return nil
}

// AccountChanged mirrors an account switch made inside the extension UI. The
// new address still has to prove ownership, so the request carries a fresh
// signed challenge.
func (s *SessionService) AccountChanged(ctx context.Context, req ConnectRequest) (*Session, error) {
	st, err := s.manager.State(ctx, req.DeviceID)
	if err == nil && st.Kind != "" && req.Kind == "" {
		req.Kind = st.Kind
	}

	// Old grant is for the old address.
	if err := s.grants.Revoke(ctx, req.DeviceID); err != nil {
		s.log.Warn("failed to revoke grant on account change", zap.Error(err))
	}

	return s.Connect(ctx, req)
}

func (s *SessionService) resolveProfile(ctx context.Context, address string, kind wallet.Kind) *models.Profile {
	profile, err := s.profiles.UpsertByAddress(ctx, address, string(kind), defaultUsername(address))
	if err != nil {
		s.log.Error("profile sync failed, continuing with wallet-only session",
			zap.String("address", address), zap.Error(err))
		return nil
	}
	return profile
}

func (s *SessionService) lookupProfile(ctx context.Context, address string) *models.Profile {
	profile, err := s.profiles.GetByAddress(ctx, address)
	if err != nil {
		s.log.Debug("profile lookup failed, continuing with wallet-only session",
			zap.String("address", address), zap.Error(err))
		return nil
	}
	return profile
}

func profileIDOf(profile *models.Profile) uuid.UUID {
	if profile == nil {
		return uuid.Nil
	}
	return profile.ID
}

func (s *SessionService) buildSession(deviceID, address string, kind wallet.Kind, network string, profile *models.Profile) (*Session, error) {
	token, err := s.issueToken(profileIDOf(profile), deviceID, address, string(kind))
	if err != nil {
		return nil, fmt.Errorf("issue session token: %w", err)
	}

	return &Session{
		Token:    token,
		DeviceID: deviceID,
		Address:  address,
		Kind:     kind,
		Network:  network,
		Profile:  profile,
	}, nil
}

func (s *SessionService) auditConnect(ctx context.Context, profile *models.Profile, deviceID, address string, kind wallet.Kind) {
	entry := models.AuditLog{
		ActorType:  "user",
		Action:     "wallet_connected",
		EntityType: "session",
		Meta:       map[string]any{"device_id": deviceID, "address": address, "kind": string(kind)},
	}
	if profile != nil {
		entry.ActorProfileID = &profile.ID
	}
	if err := s.audit.Log(ctx, entry); err != nil {
		s.log.Warn("audit log failed", zap.Error(err))
	}
}

// defaultUsername derives the lazily-created profile's display name from the
// address: fixed prefix plus a slice.
func defaultUsername(address string) string {
	short := address
	if len(short) > 6 {
		short = short[:6]
	}
	return "Babie-" + short
}
