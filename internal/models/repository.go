package models

// HistoryRecord is the persisted form of a resolved lottery. Drawn
// lotteries are immutable on chain, so cached records never need
// invalidation.
type HistoryRecord struct {
	LotteryID     uint32 `json:"lottery_id" gorm:"column:lottery_id;primaryKey"`
	WinnerID      uint32 `json:"winner_id" gorm:"column:winner_id"`
	WinnerAddress string `json:"winner_address" gorm:"column:winner_address"`
	Prize         uint64 `json:"prize" gorm:"column:prize"`
	// ResolvedAt is the Unix timestamp of the synchronization pass that
	// first resolved this lottery.
	ResolvedAt int64 `json:"resolved_at" gorm:"column:resolved_at"`
}

// Entry converts the cached record back into a history entry.
func (r *HistoryRecord) Entry() HistoryEntry {
	return HistoryEntry{
		LotteryID:     r.LotteryID,
		WinnerID:      r.WinnerID,
		WinnerAddress: r.WinnerAddress,
		Prize:         r.Prize,
	}
}

// HistoryRepository is the local read-through cache for resolved
// lotteries. A nil repository disables caching; reconstruction then
// always goes to the ledger.
type HistoryRepository interface {
	GetRecord(lotteryID uint32) (*HistoryRecord, error)
	SaveRecord(record *HistoryRecord) error
	Close() error
}

// Token is a registry entry mapping a human-facing symbol to its mint.
type Token struct {
	// Mint is the base58 mint address of the token.
	Mint string `json:"mint"`
	// Symbol is the short symbol of the token (e.g. USDC).
	Symbol string `json:"symbol"`
	// Name is the full name of the token.
	Name string `json:"name"`
	// Decimals is the number of decimals the token uses.
	Decimals int `json:"decimals"`
}
