package wallet

import (
	"crypto/ecdsa"
	"encoding/hex"
	"testing"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/crypto"
)

func ethKeypair(t *testing.T) (string, *ecdsa.PrivateKey) {
	t.Helper()
	key, err := crypto.GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	return crypto.PubkeyToAddress(key.PublicKey).Hex(), key
}

// ethSign emulates MetaMask's personal_sign: EIP-191 prefix hash, V as 27/28.
func ethSign(t *testing.T, key *ecdsa.PrivateKey, msg string) string {
	t.Helper()
	sig, err := crypto.Sign(accounts.TextHash([]byte(msg)), key)
	if err != nil {
		t.Fatal(err)
	}
	sig[crypto.RecoveryIDOffset] += 27
	return "0x" + hex.EncodeToString(sig)
}

func TestMetaMaskVerifyOwnership_ValidSignature(t *testing.T) {
	p := NewMetaMaskProvider("spacebabiez.io", "sepolia")
	addr, key := ethKeypair(t)

	sig := ethSign(t, key, ChallengeMessage("spacebabiez.io", addr, "nonce-123"))

	if err := p.VerifyOwnership(addr, "nonce-123", sig); err != nil {
		t.Fatalf("expected valid ownership proof, got: %v", err)
	}
}

func TestMetaMaskVerifyOwnership_LowercaseAddress(t *testing.T) {
	p := NewMetaMaskProvider("spacebabiez.io", "sepolia")
	_, key := ethKeypair(t)

	// Wallets report addresses in mixed EIP-55 case; clients often lowercase them.
	lower := "0x" + hex.EncodeToString(crypto.PubkeyToAddress(key.PublicKey).Bytes())
	sig := ethSign(t, key, ChallengeMessage("spacebabiez.io", lower, "nonce-123"))

	if err := p.VerifyOwnership(lower, "nonce-123", sig); err != nil {
		t.Fatalf("expected case-insensitive match, got: %v", err)
	}
}

func TestMetaMaskVerifyOwnership_WrongSigner(t *testing.T) {
	p := NewMetaMaskProvider("spacebabiez.io", "sepolia")
	addr, _ := ethKeypair(t)
	_, otherKey := ethKeypair(t)

	sig := ethSign(t, otherKey, ChallengeMessage("spacebabiez.io", addr, "nonce-123"))

	if err := p.VerifyOwnership(addr, "nonce-123", sig); err == nil {
		t.Fatal("expected error for signature by a different key")
	}
}

func TestMetaMaskVerifyOwnership_MalformedSignature(t *testing.T) {
	p := NewMetaMaskProvider("spacebabiez.io", "sepolia")
	addr, _ := ethKeypair(t)

	if err := p.VerifyOwnership(addr, "nonce-123", "0xdeadbeef"); err == nil {
		t.Fatal("expected error for truncated signature")
	}
	if err := p.VerifyOwnership(addr, "nonce-123", "not-hex"); err == nil {
		t.Fatal("expected error for non-hex signature")
	}
}

func TestMetaMaskValidateAddress(t *testing.T) {
	p := NewMetaMaskProvider("spacebabiez.io", "sepolia")

	if err := p.ValidateAddress("0x8ba1f109551bD432803012645Ac136ddd64DBA72"); err != nil {
		t.Fatalf("expected valid address, got: %v", err)
	}
	if err := p.ValidateAddress("8ba1f109551bD432803012645Ac136ddd64DBA72"); err != nil {
		t.Fatalf("unprefixed hex is still a hex address, got: %v", err)
	}
	if err := p.ValidateAddress("DjVE6JNiYqPL2QXyCUUh8rNjHrbz9hXHNYt99MQ59qw1"); err == nil {
		t.Fatal("expected error for base58 address")
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry(
		NewPhantomProvider("spacebabiez.io", "devnet"),
		NewMetaMaskProvider("spacebabiez.io", "sepolia"),
	)

	if _, err := r.Get(KindPhantom); err != nil {
		t.Fatalf("phantom should be registered: %v", err)
	}
	if _, err := r.Get(KindMetaMask); err != nil {
		t.Fatalf("metamask should be registered: %v", err)
	}
	if _, err := r.Get(Kind("ledger")); err == nil {
		t.Fatal("expected ErrWalletNotSupported for unregistered kind")
	}

	if len(r.Kinds()) != 2 {
		t.Fatalf("kinds = %d, want 2", len(r.Kinds()))
	}
}
