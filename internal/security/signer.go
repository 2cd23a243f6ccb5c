// Package security signs outgoing payloads so receivers can verify where
// they came from
package security

import (
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// Signer produces recoverable secp256k1 signatures over Keccak-256 digests
type Signer struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

// NewSigner loads a hex encoded private key, with or without 0x prefix
func NewSigner(hexKey string) (*Signer, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid signing key: %w", err)
	}
	return &Signer{key: key, address: crypto.PubkeyToAddress(key.PublicKey)}, nil
}

// Address returns the address receivers recover from a valid signature
func (s *Signer) Address() string {
	return s.address.Hex()
}

// Sign returns the 0x-prefixed 65 byte signature of payload
func (s *Signer) Sign(payload []byte) (string, error) {
	sig, err := crypto.Sign(crypto.Keccak256(payload), s.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign payload: %w", err)
	}
	return hexutil.Encode(sig), nil
}

// Verify reports whether signature over payload was made by address
func Verify(payload []byte, signature, address string) (bool, error) {
	sig, err := hexutil.Decode(signature)
	if err != nil {
		return false, fmt.Errorf("invalid signature encoding: %w", err)
	}
	if len(sig) != crypto.SignatureLength {
		return false, fmt.Errorf("invalid signature length %d", len(sig))
	}
	if !common.IsHexAddress(address) {
		return false, fmt.Errorf("invalid signer address %q", address)
	}

	pub, err := crypto.SigToPub(crypto.Keccak256(payload), sig)
	if err != nil {
		return false, fmt.Errorf("failed to recover signer: %w", err)
	}
	return crypto.PubkeyToAddress(*pub) == common.HexToAddress(address), nil
}
