package wallet

import (
	"errors"
	"fmt"
)

// Kind identifies a supported wallet.
type Kind string

const (
	KindPhantom  Kind = "phantom"
	KindMetaMask Kind = "metamask"
)

var (
	// ErrWalletNotSupported is returned when no provider is registered for the
	// requested kind (the client asked for a wallet we don't handle).
	ErrWalletNotSupported = errors.New("wallet kind not supported")

	// ErrOwnershipRejected is returned when the signed challenge does not prove
	// control of the claimed address.
	ErrOwnershipRejected = errors.New("wallet ownership verification failed")

	// ErrInvalidAddress is returned for addresses that don't parse for the
	// provider's chain.
	ErrInvalidAddress = errors.New("invalid wallet address")
)

// ChallengePrefix is the fixed first line of every challenge message. Versioned
// so old signed messages can never satisfy a future format.
const ChallengePrefix = "spacebabiez-wallet-proof/v1"

// Provider verifies that a client controls an address on one chain.
// Concrete implementations exist per wallet extension the frontend supports.
type Provider interface {
	Kind() Kind
	Network() string
	ValidateAddress(address string) error
	// VerifyOwnership checks the wallet's signature over the challenge message
	// built from address and nonce. Returns ErrOwnershipRejected on mismatch.
	VerifyOwnership(address, nonce, signature string) error
}

// ChallengeMessage builds the exact text the wallet must sign. The domain is
// bound into the message so a signature collected by another site can't be
// replayed here.
func ChallengeMessage(domain, address, nonce string) string {
	return fmt.Sprintf("%s\ndomain: %s\naddress: %s\nnonce: %s", ChallengePrefix, domain, address, nonce)
}

func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindPhantom:
		return KindPhantom, nil
	case KindMetaMask:
		return KindMetaMask, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrWalletNotSupported, s)
	}
}
