package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const grantKeyPrefix = "grant:"

var ErrNoGrant = errors.New("no trust grant for device")

// Grant is the server-side record behind a silent reconnect: issued when the
// user explicitly connects, presented instead of a fresh signature on
// auto-connect, revoked on logout. Expiry rides on the Redis key TTL.
type Grant struct {
	TokenHash string `json:"token_hash"`
	Address   string `json:"address"`
	Kind      string `json:"kind"`
}

// GrantStore keeps at most one trust grant per device in Redis.
type GrantStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewGrantStore(client *redis.Client, ttl time.Duration) *GrantStore {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &GrantStore{client: client, ttl: ttl}
}

// Issue mints an opaque token and stores only its hash.
func (s *GrantStore) Issue(ctx context.Context, deviceID, address, kind string) (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	token := hex.EncodeToString(raw)

	g := Grant{TokenHash: hashToken(token), Address: address, Kind: kind}
	data, err := json.Marshal(g)
	if err != nil {
		return "", err
	}
	if err := s.client.Set(ctx, grantKeyPrefix+deviceID, data, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store grant: %w", err)
	}
	return token, nil
}

// Redeem returns the grant when the presented token matches the stored hash.
func (s *GrantStore) Redeem(ctx context.Context, deviceID, token string) (*Grant, error) {
	data, err := s.client.Get(ctx, grantKeyPrefix+deviceID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoGrant
	}
	if err != nil {
		return nil, err
	}

	var g Grant
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, err
	}
	if subtle.ConstantTimeCompare([]byte(g.TokenHash), []byte(hashToken(token))) != 1 {
		return nil, ErrNoGrant
	}
	return &g, nil
}

func (s *GrantStore) Revoke(ctx context.Context, deviceID string) error {
	return s.client.Del(ctx, grantKeyPrefix+deviceID).Err()
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
