package validation

import (
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
)

// ValidateAddress validates a base58-encoded 32-byte public key.
func ValidateAddress(addr string) error {
	if addr == "" {
		return fmt.Errorf("address cannot be empty")
	}
	if _, err := solana.PublicKeyFromBase58(strings.TrimSpace(addr)); err != nil {
		return fmt.Errorf("invalid base58 address: %w", err)
	}
	return nil
}

// ParseAddress validates an address and returns it as a public key.
func ParseAddress(addr string) (solana.PublicKey, error) {
	key, err := solana.PublicKeyFromBase58(strings.TrimSpace(addr))
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid base58 address %q: %w", addr, err)
	}
	return key, nil
}

// ShortenAddress renders an address as its first and last four
// characters, the usual display form for long base58 keys.
func ShortenAddress(addr string) string {
	if len(addr) <= 8 {
		return addr
	}
	return addr[:4] + ".." + addr[len(addr)-4:]
}
