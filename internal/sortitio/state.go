package sortitio

import (
	"github.com/gagliardetto/solana-go"

	"github.com/lottolabs/sortitio/internal/models"
)

// state is the single process-wide mutable snapshot of remote truth.
// It is mutated only by the reconciliation loop and the form setters,
// always under the App mutex; every other reader gets a value copy via
// Snapshot.
type state struct {
	initialized    bool
	lotteryID      uint32
	lotteryAddress solana.PublicKey
	lottery        *models.Lottery
	userWinningID  uint32
	history        []models.HistoryEntry
	form           models.FormFields
	lastError      string
	lastSuccess    string
}

// clearLottery drops every lottery-dependent field. Called when the
// master account is absent (deployment not yet initialized).
func (s *state) clearLottery() {
	s.lotteryID = 0
	s.lotteryAddress = solana.PublicKey{}
	s.lottery = nil
	s.userWinningID = 0
	s.history = nil
}

// clearTransient resets the error/success fields at the start of every
// new intent.
func (s *state) clearTransient() {
	s.lastError = ""
	s.lastSuccess = ""
}

// mergeForm applies non-zero incoming fields onto the stored form.
func (s *state) mergeForm(form models.FormFields) {
	if form.Country != "" {
		s.form.Country = form.Country
	}
	if form.Continent != "" {
		s.form.Continent = form.Continent
	}
	if form.Token != "" {
		s.form.Token = form.Token
	}
	if form.EntryMethod != "" {
		s.form.EntryMethod = form.EntryMethod
	}
	if form.EntryPrice != 0 {
		s.form.EntryPrice = form.EntryPrice
	}
	if form.BurnAmount != 0 {
		s.form.BurnAmount = form.BurnAmount
	}
	if form.StakeAmount != 0 {
		s.form.StakeAmount = form.StakeAmount
	}
}

// snapshot builds the exported view, deriving the gating booleans from
// the raw state. wallet may be nil (read-only mode).
func (s *state) snapshot(wallet models.WalletService) models.Snapshot {
	snap := models.Snapshot{
		Initialized: s.initialized,
		Connected:   wallet != nil,
		LotteryID:   s.lotteryID,
		Form:        s.form,
		Error:       s.lastError,
		Success:     s.lastSuccess,
	}
	snap.History = make([]models.HistoryEntry, len(s.history))
	copy(snap.History, s.history)

	if s.lottery != nil {
		snap.PotLamports = s.lottery.PrizePot
		snap.Pot = float64(s.lottery.PrizePot) / float64(solana.LAMPORTS_PER_SOL)
		snap.LastTicketID = s.lottery.LastTicketID
		snap.IsFinished = s.lottery.Finished()
		snap.UserWinningID = s.userWinningID
		if wallet != nil {
			snap.IsAuthority = wallet.PublicKey().Equals(s.lottery.Authority)
		}
		snap.CanClaim = s.lottery.WinnerSet && !s.lottery.Claimed &&
			s.userWinningID != 0 && s.userWinningID == s.lottery.WinnerID
	}
	return snap
}
