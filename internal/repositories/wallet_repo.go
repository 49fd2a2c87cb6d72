package repositories

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spacebabiez/backend/internal/models"
)

type WalletRepo struct {
	pool *pgxpool.Pool
}

func NewWalletRepo(pool *pgxpool.Pool) *WalletRepo {
	return &WalletRepo{pool: pool}
}

// --- Challenge nonces ---

func (r *WalletRepo) CreateNonce(ctx context.Context, address, kind string, ttl time.Duration) (*models.ChallengeNonce, error) {
	n := &models.ChallengeNonce{
		Payload: generateNonce(32),
		Address: address,
		Kind:    kind,
	}

	err := r.pool.QueryRow(ctx, `
		INSERT INTO challenge_nonces (payload, address, kind, expires_at)
		VALUES ($1, $2, $3, now() + $4::interval)
		RETURNING id, created_at, expires_at
	`, n.Payload, address, kind, ttl.String()).Scan(&n.ID, &n.CreatedAt, &n.ExpiresAt)
	if err != nil {
		return nil, err
	}
	return n, nil
}

// ConsumeNonce marks the nonce used in the same statement that checks it, so
// a replayed challenge can never be consumed twice.
func (r *WalletRepo) ConsumeNonce(ctx context.Context, payload, address string) (*models.ChallengeNonce, error) {
	var n models.ChallengeNonce
	err := r.pool.QueryRow(ctx, `
		UPDATE challenge_nonces
		SET used = true
		WHERE payload = $1 AND address = $2 AND used = false AND expires_at > now()
		RETURNING id, payload, address, kind, created_at, expires_at, used
	`, payload, address).Scan(&n.ID, &n.Payload, &n.Address, &n.Kind, &n.CreatedAt, &n.ExpiresAt, &n.Used)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *WalletRepo) PruneExpiredNonces(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM challenge_nonces WHERE expires_at < now() - interval '1 hour'`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// --- Wallet connections ---

func (r *WalletRepo) SaveConnection(ctx context.Context, w *models.WalletConnection) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO wallet_connections (
			profile_id, device_id, address, kind, network, verified, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, true)
		ON CONFLICT (device_id, address) DO UPDATE SET
			profile_id = EXCLUDED.profile_id,
			kind = EXCLUDED.kind,
			network = EXCLUDED.network,
			verified = EXCLUDED.verified,
			is_active = true,
			disconnected_at = NULL,
			connected_at = now()
		RETURNING id, connected_at
	`, w.ProfileID, w.DeviceID, w.Address, w.Kind, w.Network, w.Verified,
	).Scan(&w.ID, &w.ConnectedAt)
}

func (r *WalletRepo) DeactivateByDevice(ctx context.Context, deviceID string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE wallet_connections SET is_active = false, disconnected_at = now()
		WHERE device_id = $1 AND is_active = true
	`, deviceID)
	return err
}

func (r *WalletRepo) ListByProfile(ctx context.Context, profileID uuid.UUID) ([]models.WalletConnection, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, profile_id, device_id, address, kind, network,
		       verified, connected_at, disconnected_at, is_active
		FROM wallet_connections
		WHERE profile_id = $1
		ORDER BY connected_at DESC
	`, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.WalletConnection
	for rows.Next() {
		var w models.WalletConnection
		if err := rows.Scan(
			&w.ID, &w.ProfileID, &w.DeviceID, &w.Address, &w.Kind, &w.Network,
			&w.Verified, &w.ConnectedAt, &w.DisconnectedAt, &w.IsActive,
		); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// DeactivateIdle closes connections whose device hasn't connected since the
// cutoff. Run by the worker.
func (r *WalletRepo) DeactivateIdle(ctx context.Context, idleFor time.Duration) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE wallet_connections SET is_active = false, disconnected_at = now()
		WHERE is_active = true AND connected_at < now() - $1::interval
	`, idleFor.String())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func generateNonce(bytes int) string {
	b := make([]byte, bytes)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
