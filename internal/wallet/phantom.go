package wallet

import (
	"crypto/ed25519"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// PhantomProvider verifies Solana wallets. Phantom's signMessage signs the raw
// challenge bytes with the account's ed25519 key, so verification is a plain
// ed25519 check against the address (which IS the public key on Solana).
type PhantomProvider struct {
	domain  string
	network string // mainnet-beta / devnet
}

func NewPhantomProvider(domain, network string) *PhantomProvider {
	if network == "" {
		network = "mainnet-beta"
	}
	return &PhantomProvider{domain: domain, network: network}
}

func (p *PhantomProvider) Kind() Kind      { return KindPhantom }
func (p *PhantomProvider) Network() string { return p.network }

func (p *PhantomProvider) ValidateAddress(address string) error {
	if _, err := solana.PublicKeyFromBase58(address); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	return nil
}

func (p *PhantomProvider) VerifyOwnership(address, nonce, signature string) error {
	pubKey, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}

	sig, err := solana.SignatureFromBase58(signature)
	if err != nil {
		return fmt.Errorf("%w: malformed signature: %v", ErrOwnershipRejected, err)
	}

	msg := []byte(ChallengeMessage(p.domain, address, nonce))
	if !ed25519.Verify(ed25519.PublicKey(pubKey[:]), msg, sig[:]) {
		return ErrOwnershipRejected
	}
	return nil
}
