package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestJWTRoundTrip(t *testing.T) {
	profileID := uuid.New()

	token, err := GenerateJWT("secret", profileID, "dev-1", "0xABC123", "metamask", time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	claims, err := ParseJWT("secret", token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.ProfileID != profileID {
		t.Errorf("ProfileID = %s, want %s", claims.ProfileID, profileID)
	}
	if claims.DeviceID != "dev-1" {
		t.Errorf("DeviceID = %q", claims.DeviceID)
	}
	if claims.WalletAddress != "0xABC123" || claims.WalletKind != "metamask" {
		t.Errorf("wallet claims = %q/%q", claims.WalletAddress, claims.WalletKind)
	}
}

func TestParseJWT_WrongSecret(t *testing.T) {
	token, err := GenerateJWT("secret", uuid.New(), "dev-1", "addr", "phantom", time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := ParseJWT("other-secret", token); err == nil {
		t.Fatal("expected error for wrong secret")
	}
}
