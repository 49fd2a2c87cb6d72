package wallet

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// MetaMaskProvider verifies Ethereum wallets. MetaMask signs the challenge via
// personal_sign, which prefixes the message per EIP-191 before hashing; we
// recover the signer from the signature and compare to the claimed address.
type MetaMaskProvider struct {
	domain  string
	network string // mainnet / sepolia
}

func NewMetaMaskProvider(domain, network string) *MetaMaskProvider {
	if network == "" {
		network = "mainnet"
	}
	return &MetaMaskProvider{domain: domain, network: network}
}

func (p *MetaMaskProvider) Kind() Kind      { return KindMetaMask }
func (p *MetaMaskProvider) Network() string { return p.network }

func (p *MetaMaskProvider) ValidateAddress(address string) error {
	if !common.IsHexAddress(address) {
		return fmt.Errorf("%w: %q is not a hex address", ErrInvalidAddress, address)
	}
	return nil
}

func (p *MetaMaskProvider) VerifyOwnership(address, nonce, signature string) error {
	if !common.IsHexAddress(address) {
		return fmt.Errorf("%w: %q is not a hex address", ErrInvalidAddress, address)
	}

	sig, err := hex.DecodeString(strings.TrimPrefix(signature, "0x"))
	if err != nil {
		return fmt.Errorf("%w: malformed signature: %v", ErrOwnershipRejected, err)
	}
	if len(sig) != crypto.SignatureLength {
		return fmt.Errorf("%w: signature must be %d bytes, got %d", ErrOwnershipRejected, crypto.SignatureLength, len(sig))
	}

	// personal_sign returns V as 27/28; go-ethereum expects 0/1.
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig[crypto.RecoveryIDOffset] -= 27
	}

	msg := ChallengeMessage(p.domain, address, nonce)
	hash := accounts.TextHash([]byte(msg))

	pubKey, err := crypto.SigToPub(hash, sig)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOwnershipRejected, err)
	}

	recovered := crypto.PubkeyToAddress(*pubKey)
	if !strings.EqualFold(recovered.Hex(), address) {
		return ErrOwnershipRejected
	}
	return nil
}
