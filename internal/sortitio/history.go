package sortitio

import (
	"context"
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/lottolabs/sortitio/internal/ledger"
	"github.com/lottolabs/sortitio/internal/models"
	"github.com/lottolabs/sortitio/pkg/logger"
)

// HistoryReconstructor rebuilds the ordered result log by walking past
// lottery ids from newest to oldest. Reconstruction is recomputed in
// full on every synchronization pass; the optional repository only
// short-circuits fetches for lotteries already resolved, since a drawn
// lottery never changes again.
type HistoryReconstructor struct {
	logger    *logger.Logger
	ledger    models.LedgerService
	repo      models.HistoryRepository
	programID solana.PublicKey
}

func NewHistoryReconstructor(ledgerSvc models.LedgerService, repo models.HistoryRepository,
	programID solana.PublicKey, log *logger.Logger) *HistoryReconstructor {
	return &HistoryReconstructor{
		logger:    log,
		ledger:    ledgerSvc,
		repo:      repo,
		programID: programID,
	}
}

// Build returns the history entries for ids 1..lastID, newest first.
// Lotteries without a winner are skipped. A failed fetch drops that
// single entry rather than aborting the scan.
func (h *HistoryReconstructor) Build(ctx context.Context, lastID uint32) []models.HistoryEntry {
	history := make([]models.HistoryEntry, 0, lastID)
	for id := lastID; id >= 1; id-- {
		if cached := h.cached(id); cached != nil {
			history = append(history, *cached)
			continue
		}

		entry, drawn, err := h.resolve(ctx, id)
		if err != nil {
			h.logger.Warnw("skipping lottery in history scan", "lottery_id", id, "err", err)
			continue
		}
		if !drawn {
			continue
		}
		history = append(history, entry)
		h.store(entry)
	}
	return history
}

// resolve fetches one lottery and, when drawn, its winning ticket.
func (h *HistoryReconstructor) resolve(ctx context.Context, id uint32) (models.HistoryEntry, bool, error) {
	address, err := ledger.LotteryAddress(h.programID, id)
	if err != nil {
		return models.HistoryEntry{}, false, err
	}
	lottery, err := h.ledger.FetchLottery(ctx, address)
	if err != nil {
		return models.HistoryEntry{}, false, err
	}
	if !lottery.WinnerSet {
		return models.HistoryEntry{}, false, nil
	}

	ticketAddress, err := ledger.TicketAddress(h.programID, address, lottery.WinnerID)
	if err != nil {
		return models.HistoryEntry{}, false, err
	}
	ticket, err := h.ledger.FetchTicket(ctx, ticketAddress)
	if err != nil {
		return models.HistoryEntry{}, false, err
	}

	return models.HistoryEntry{
		LotteryID:     id,
		WinnerID:      lottery.WinnerID,
		WinnerAddress: ticket.Authority.String(),
		Prize:         lottery.PrizePot,
	}, true, nil
}

func (h *HistoryReconstructor) cached(id uint32) *models.HistoryEntry {
	if h.repo == nil {
		return nil
	}
	record, err := h.repo.GetRecord(id)
	if err != nil || record == nil {
		return nil
	}
	entry := record.Entry()
	return &entry
}

func (h *HistoryReconstructor) store(entry models.HistoryEntry) {
	if h.repo == nil {
		return
	}
	record := &models.HistoryRecord{
		LotteryID:     entry.LotteryID,
		WinnerID:      entry.WinnerID,
		WinnerAddress: entry.WinnerAddress,
		Prize:         entry.Prize,
		ResolvedAt:    time.Now().Unix(),
	}
	if err := h.repo.SaveRecord(record); err != nil {
		h.logger.Warnw("failed to cache history entry", "lottery_id", entry.LotteryID, "err", err)
	}
}
