package services

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"golang.org/x/crypto/sha3"
)

// SignInStatement is the human-readable line of the wallet sign-in message
const SignInStatement = "Sign in to Spectra Market"

// WalletService handles Ethereum wallet signatures
type WalletService struct{}

// NewWalletService creates a new WalletService
func NewWalletService() *WalletService {
	return &WalletService{}
}

// GenerateNonce returns a random 16-byte hex nonce
func (s *WalletService) GenerateNonce() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// SignInMessage builds the message a wallet signs to log in. It depends only on
// its inputs so the verifier can rebuild it from the stored nonce.
func (s *WalletService) SignInMessage(domain, uri, address, nonce string) string {
	return strings.Join([]string{
		fmt.Sprintf("%s wants you to sign in with your Ethereum account:", domain),
		address,
		"",
		SignInStatement,
		"",
		"URI: " + uri,
		"Version: 1",
		"Chain ID: 1",
		"Nonce: " + nonce,
	}, "\n")
}

// VerifySignature checks an EIP-191 personal_sign signature of message against a 0x address
func (s *WalletService) VerifySignature(address, message, signature string) (bool, error) {
	recovered, err := s.RecoverAddress(message, signature)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(recovered, address), nil
}

// RecoverAddress returns the 0x address that produced signature over message
func (s *WalletService) RecoverAddress(message, signature string) (string, error) {
	sigBytes, err := hex.DecodeString(strings.TrimPrefix(signature, "0x"))
	if err != nil {
		return "", fmt.Errorf("invalid signature format: %w", err)
	}
	if len(sigBytes) != 65 {
		return "", fmt.Errorf("invalid signature length %d", len(sigBytes))
	}

	// r || s || v with v in {0,1} or {27,28}
	v := sigBytes[64]
	if v >= 27 {
		v -= 27
	}
	if v > 1 {
		return "", fmt.Errorf("invalid signature recovery id %d", sigBytes[64])
	}

	compact := make([]byte, 65)
	compact[0] = 27 + v
	copy(compact[1:], sigBytes[:64])

	pub, _, err := ecdsa.RecoverCompact(compact, personalMessageHash(message))
	if err != nil {
		return "", fmt.Errorf("failed to recover public key: %w", err)
	}
	return PublicKeyAddress(pub), nil
}

// PublicKeyAddress derives the lowercase 0x address of a secp256k1 key
func PublicKeyAddress(pub *btcec.PublicKey) string {
	return "0x" + hex.EncodeToString(keccak256(pub.SerializeUncompressed()[1:])[12:])
}

// personalMessageHash applies the EIP-191 version 0x45 prefix
func personalMessageHash(message string) []byte {
	prefix := fmt.Sprintf("\x19Ethereum Signed Message:\n%d", len(message))
	return keccak256([]byte(prefix), []byte(message))
}

func keccak256(data ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	return h.Sum(nil)
}
