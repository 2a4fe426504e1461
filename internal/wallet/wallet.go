package wallet

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Keypair is a file-backed wallet implementing models.WalletService.
// The daemon runs read-only when no keypair is configured.
type Keypair struct {
	key solana.PrivateKey
}

// NewFromFile loads a Solana keygen file (the JSON byte-array format
// produced by solana-keygen).
func NewFromFile(path string) (*Keypair, error) {
	key, err := solana.PrivateKeyFromSolanaKeygenFile(path)
	if err != nil {
		return nil, fmt.Errorf("load keypair %q: %w", path, err)
	}
	return &Keypair{key: key}, nil
}

// NewFromKey wraps an in-memory private key. Used in tests.
func NewFromKey(key solana.PrivateKey) *Keypair {
	return &Keypair{key: key}
}

func (k *Keypair) PublicKey() solana.PublicKey {
	return k.key.PublicKey()
}

// SignTransaction signs every signature slot that matches this wallet's
// key.
func (k *Keypair) SignTransaction(tx *solana.Transaction) error {
	_, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if k.key.PublicKey().Equals(key) {
			return &k.key
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("sign transaction: %w", err)
	}
	return nil
}
