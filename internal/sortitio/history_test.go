package sortitio

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/lottolabs/sortitio/internal/ledger"
	"github.com/lottolabs/sortitio/internal/models"
	"github.com/lottolabs/sortitio/pkg/logger"
)

type fakeRepo struct {
	records map[uint32]*models.HistoryRecord
	saves   int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{records: make(map[uint32]*models.HistoryRecord)}
}

func (r *fakeRepo) GetRecord(lotteryID uint32) (*models.HistoryRecord, error) {
	return r.records[lotteryID], nil
}

func (r *fakeRepo) SaveRecord(record *models.HistoryRecord) error {
	r.saves++
	if _, ok := r.records[record.LotteryID]; !ok {
		r.records[record.LotteryID] = record
	}
	return nil
}

func (r *fakeRepo) Close() error { return nil }

// seedLotteries creates lotteries 1..n, drawing a winner for the given
// ids. Every drawn lottery gets a winning ticket owned by a fresh
// wallet.
func seedLotteries(t *testing.T, fl *fakeLedger, n uint32, drawn map[uint32]uint32) map[uint32]solana.PublicKey {
	t.Helper()
	winners := make(map[uint32]solana.PublicKey)
	for id := uint32(1); id <= n; id++ {
		lottery := openLottery(id, solana.NewWallet().PublicKey(), uint64(id)*1_000_000, id*2)
		if winnerTicket, ok := drawn[id]; ok {
			lottery.WinnerSet = true
			lottery.WinnerID = winnerTicket
			address := fl.setLottery(t, lottery)
			owner := solana.NewWallet().PublicKey()
			fl.setWinningTicket(t, address, &models.Ticket{ID: winnerTicket, LotteryID: id, Authority: owner})
			winners[id] = owner
			continue
		}
		fl.setLottery(t, lottery)
	}
	return winners
}

func TestHistoryNewestFirstSkippingUndrawn(t *testing.T) {
	fl := newFakeLedger()
	winners := seedLotteries(t, fl, 5, map[uint32]uint32{2: 3, 4: 1})
	h := NewHistoryReconstructor(fl, nil, testProgram, logger.NewNop())

	history := h.Build(context.Background(), 5)

	require.Len(t, history, 2)
	require.Equal(t, uint32(4), history[0].LotteryID)
	require.Equal(t, uint32(1), history[0].WinnerID)
	require.Equal(t, winners[4].String(), history[0].WinnerAddress)
	require.Equal(t, uint64(4_000_000), history[0].Prize)
	require.Equal(t, uint32(2), history[1].LotteryID)
	require.Equal(t, winners[2].String(), history[1].WinnerAddress)
}

func TestHistorySkipsFailedFetch(t *testing.T) {
	fl := newFakeLedger()
	seedLotteries(t, fl, 3, map[uint32]uint32{1: 1, 3: 2})
	brokenAddress, err := ledger.LotteryAddress(testProgram, 3)
	require.NoError(t, err)
	fl.lotteryErr[brokenAddress] = context.DeadlineExceeded
	h := NewHistoryReconstructor(fl, nil, testProgram, logger.NewNop())

	history := h.Build(context.Background(), 3)

	// Lottery 3 is dropped for this pass, the rest of the scan survives.
	require.Len(t, history, 1)
	require.Equal(t, uint32(1), history[0].LotteryID)
}

func TestHistoryEmptyWhenNoLotteries(t *testing.T) {
	fl := newFakeLedger()
	h := NewHistoryReconstructor(fl, nil, testProgram, logger.NewNop())

	history := h.Build(context.Background(), 0)
	require.Empty(t, history)
}

func TestHistoryCacheShortCircuitsResolvedLotteries(t *testing.T) {
	fl := newFakeLedger()
	seedLotteries(t, fl, 2, nil)
	repo := newFakeRepo()
	repo.records[2] = &models.HistoryRecord{
		LotteryID:     2,
		WinnerID:      5,
		WinnerAddress: solana.NewWallet().PublicKey().String(),
		Prize:         9_000,
	}
	h := NewHistoryReconstructor(fl, repo, testProgram, logger.NewNop())

	history := h.Build(context.Background(), 2)

	require.Len(t, history, 1)
	require.Equal(t, uint32(2), history[0].LotteryID)
	require.Equal(t, uint64(9_000), history[0].Prize)
	// Only the uncached, undrawn lottery 1 went to the ledger.
	require.Equal(t, 1, fl.lotteryFetches)
}

func TestHistoryStoresResolvedLotteries(t *testing.T) {
	fl := newFakeLedger()
	seedLotteries(t, fl, 3, map[uint32]uint32{2: 4})
	repo := newFakeRepo()
	h := NewHistoryReconstructor(fl, repo, testProgram, logger.NewNop())

	first := h.Build(context.Background(), 3)
	require.Len(t, first, 1)
	require.Equal(t, 1, repo.saves)
	require.Contains(t, repo.records, uint32(2))
	require.NotZero(t, repo.records[2].ResolvedAt)

	// A second pass serves the drawn lottery from the cache.
	fetchesAfterFirst := fl.lotteryFetches
	second := h.Build(context.Background(), 3)
	require.Equal(t, first, second)
	require.Equal(t, fetchesAfterFirst+2, fl.lotteryFetches)
}
