package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type Claims struct {
	ProfileID     uuid.UUID `json:"profile_id"`
	DeviceID      string    `json:"device_id"`
	WalletAddress string    `json:"wallet_address"`
	WalletKind    string    `json:"wallet_kind"`
	jwt.RegisteredClaims
}

// GenerateJWT mints the session token returned by connect and auto-connect.
// expiration <= 0 falls back to 24h.
func GenerateJWT(secret string, profileID uuid.UUID, deviceID, walletAddress, walletKind string, expiration time.Duration) (string, error) {
	if expiration <= 0 {
		expiration = 24 * time.Hour
	}

	claims := Claims{
		ProfileID:     profileID,
		DeviceID:      deviceID,
		WalletAddress: walletAddress,
		WalletKind:    walletKind,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "spacebabiez",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func ParseJWT(secret string, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}
