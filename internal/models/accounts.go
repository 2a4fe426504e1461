package models

import (
	"github.com/gagliardetto/solana-go"
)

// Master is the singleton program account tracking the lottery counter.
// On-chain size: 8 (discriminator) + 4 = 12 bytes.
type Master struct {
	// LastID is the id of the most recently created lottery.
	// Lottery ids are assigned sequentially starting at 1.
	LastID uint32
}

// Lottery is the per-round program account.
// On-chain size: 8 (discriminator) + 54 = 62 bytes.
type Lottery struct {
	ID uint32 // 4 bytes
	// Authority is the address allowed to create lotteries and pick winners.
	Authority solana.PublicKey // 32 bytes
	// PrizePot is the accumulated pot in lamports.
	PrizePot uint64 // 8 bytes
	// LastTicketID is the id of the most recently sold ticket.
	LastTicketID uint32 // 4 bytes
	// WinnerID is the winning ticket id, valid only when WinnerSet is true.
	WinnerID  uint32 // borsh option<u32>: 1 tag byte + 4 bytes
	WinnerSet bool
	Claimed   bool // 1 byte
}

// Finished reports whether a winner has been drawn for this lottery.
// No further tickets can be sold once finished.
func (l *Lottery) Finished() bool {
	return l.WinnerSet
}

// Ticket is a single lottery entry. Immutable once created.
// On-chain size: 8 (discriminator) + 40 = 48 bytes.
type Ticket struct {
	ID        uint32           // 4 bytes, offset 8
	LotteryID uint32           // 4 bytes, offset 12
	Authority solana.PublicKey // 32 bytes, offset 16
}

// StakeAccount is the per (staker, mint) staking position.
type StakeAccount struct {
	Staker    solana.PublicKey
	Mint      solana.PublicKey
	Amount    uint64
	Country   string
	Continent string
	Token     string
}

// HistoryEntry is a client-derived record of a resolved lottery. It is
// reconstructed from the lottery and its winning ticket on every
// synchronization pass, never stored on chain.
type HistoryEntry struct {
	LotteryID     uint32 `json:"lottery_id"`
	WinnerID      uint32 `json:"winner_id"`
	WinnerAddress string `json:"winner_address"`
	// Prize is the pot in lamports as recorded on the lottery account.
	Prize uint64 `json:"prize"`
}

// FormFields holds the transient user inputs backing the next intent.
// Pure UI state: no remote identity, owned by the state store.
type FormFields struct {
	Country     string `json:"country"`
	Continent   string `json:"continent"`
	Token       string `json:"token"`
	EntryMethod string `json:"entry_method"`
	// EntryPrice is in whole SOL; converted to lamports at submission.
	EntryPrice uint64 `json:"entry_price"`
	// BurnAmount is in whole tokens; scaled by the mint's decimals at
	// submission.
	BurnAmount  uint64 `json:"burn_amount"`
	StakeAmount uint64 `json:"stake_amount"`
}

// Snapshot is the last-synchronized application state exposed to the
// presentation boundary. All fields are copies; mutating a snapshot has
// no effect on the store.
type Snapshot struct {
	Initialized bool `json:"initialized"`
	Connected   bool `json:"connected"`
	IsAuthority bool `json:"is_authority"`
	IsFinished  bool `json:"is_finished"`
	CanClaim    bool `json:"can_claim"`

	LotteryID uint32 `json:"lottery_id"`
	// PotLamports is the raw pot; Pot is the presentation value in SOL.
	PotLamports uint64  `json:"pot_lamports"`
	Pot         float64 `json:"pot"`
	// LastTicketID is the number of tickets sold in the current lottery.
	LastTicketID uint32 `json:"last_ticket_id"`
	// UserWinningID is the user's winning ticket id, 0 when the user has
	// not won the current lottery.
	UserWinningID uint32         `json:"user_winning_id"`
	History       []HistoryEntry `json:"history"`
	Form          FormFields     `json:"form"`

	Error   string `json:"error,omitempty"`
	Success string `json:"success,omitempty"`
}
