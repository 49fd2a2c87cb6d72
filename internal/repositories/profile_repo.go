package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spacebabiez/backend/internal/models"
)

type ProfileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

// UpsertByAddress creates the profile on first connect and refreshes
// last_seen_at on every later one. The unique index on wallet_address makes
// this safe against two first-connects racing from different tabs: both land
// on the same row.
func (r *ProfileRepo) UpsertByAddress(ctx context.Context, address, kind, defaultUsername string) (*models.Profile, error) {
	var p models.Profile
	err := r.pool.QueryRow(ctx, `
		INSERT INTO profiles (wallet_address, wallet_kind, username)
		VALUES ($1, $2, $3)
		ON CONFLICT (wallet_address) DO UPDATE SET
			wallet_kind = EXCLUDED.wallet_kind,
			last_seen_at = now()
		RETURNING id, wallet_address, wallet_kind, username,
		          community_points, citizenship_level, staking_rewards,
		          created_at, last_seen_at
	`, address, kind, defaultUsername).Scan(
		&p.ID, &p.WalletAddress, &p.WalletKind, &p.Username,
		&p.CommunityPoints, &p.CitizenshipLevel, &p.StakingRewards,
		&p.CreatedAt, &p.LastSeenAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProfileRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	var p models.Profile
	err := r.pool.QueryRow(ctx, `
		SELECT id, wallet_address, wallet_kind, username,
		       community_points, citizenship_level, staking_rewards,
		       created_at, last_seen_at
		FROM profiles WHERE id = $1
	`, id).Scan(
		&p.ID, &p.WalletAddress, &p.WalletKind, &p.Username,
		&p.CommunityPoints, &p.CitizenshipLevel, &p.StakingRewards,
		&p.CreatedAt, &p.LastSeenAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProfileRepo) GetByAddress(ctx context.Context, address string) (*models.Profile, error) {
	var p models.Profile
	err := r.pool.QueryRow(ctx, `
		SELECT id, wallet_address, wallet_kind, username,
		       community_points, citizenship_level, staking_rewards,
		       created_at, last_seen_at
		FROM profiles WHERE wallet_address = $1
	`, address).Scan(
		&p.ID, &p.WalletAddress, &p.WalletKind, &p.Username,
		&p.CommunityPoints, &p.CitizenshipLevel, &p.StakingRewards,
		&p.CreatedAt, &p.LastSeenAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProfileRepo) UpdateUsername(ctx context.Context, id uuid.UUID, username string) error {
	_, err := r.pool.Exec(ctx, `UPDATE profiles SET username = $1 WHERE id = $2`, username, id)
	return err
}

func (r *ProfileRepo) UpdateLastSeen(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `UPDATE profiles SET last_seen_at = $1 WHERE id = $2`, time.Now(), id)
	return err
}
