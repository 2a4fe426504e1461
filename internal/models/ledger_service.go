package models

import (
	"context"

	"github.com/gagliardetto/solana-go"
)

// LedgerService reads program accounts from the ledger and submits
// signed transactions. Point reads return ErrAccountNotFound when the
// account does not exist yet.
type LedgerService interface {
	FetchMaster(ctx context.Context) (*Master, error)
	FetchLottery(ctx context.Context, address solana.PublicKey) (*Lottery, error)
	FetchTicket(ctx context.Context, address solana.PublicKey) (*Ticket, error)
	FetchStake(ctx context.Context, address solana.PublicKey) (*StakeAccount, error)

	// FetchUserTickets returns every ticket of the given lottery owned by
	// the given wallet. Ticket ids are not known in advance, so this is a
	// filtered scan, not a point lookup.
	FetchUserTickets(ctx context.Context, lotteryID uint32, owner solana.PublicKey) ([]*Ticket, error)

	// FetchMintDecimals reads the decimal exponent of a token mint.
	// Decimals are fetched fresh for every burn; they are not assumed
	// constant across mints.
	FetchMintDecimals(ctx context.Context, mint solana.PublicKey) (uint8, error)

	// Submit builds a transaction from the instructions with a fresh
	// blockhash and the signer as fee payer, signs, sends it, and blocks
	// until the ledger confirms or the context expires.
	Submit(ctx context.Context, instructions []solana.Instruction, signer WalletService) (solana.Signature, error)
}

// WalletService is the wallet boundary: a public address plus a
// transaction-signing capability. A nil WalletService means read-only
// mode; purchase and administration intents are unavailable.
type WalletService interface {
	PublicKey() solana.PublicKey
	SignTransaction(tx *solana.Transaction) error
}

// MintResolver resolves a token field to a mint address. The field may
// be a base58 mint directly or a symbol known to the token registry.
type MintResolver interface {
	ResolveMint(token string) (solana.PublicKey, error)
}
