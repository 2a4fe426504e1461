package sortitio

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"

	"github.com/lottolabs/sortitio/internal/ledger"
	"github.com/lottolabs/sortitio/internal/models"
	"github.com/lottolabs/sortitio/pkg/logger"
	"github.com/lottolabs/sortitio/pkg/validation"
)

const (
	// defaultPollInterval is the steady-state refresh period after the
	// initial synchronization.
	defaultPollInterval = 15 * time.Second

	// unstakeAll is the sentinel amount the program interprets as a full
	// unstake. Partial unstaking is not a capability of this client.
	unstakeAll = uint64(1)
)

// App is the transaction orchestrator and the owner of the application
// state store. It translates user intents into program instructions,
// submits them through the ledger service, and re-derives the snapshot
// from remote truth after every outcome.
type App struct {
	logger  *logger.Logger
	ledger  models.LedgerService
	wallet  models.WalletService
	mints   models.MintResolver
	program ledger.Program
	history *HistoryReconstructor

	pollInterval time.Duration

	mu sync.Mutex
	st state
}

// New wires the orchestrator. wallet, repo and mints may be nil: a nil
// wallet runs the client read-only, a nil repo disables the history
// cache, a nil mints resolver restricts token fields to raw base58.
func New(
	ledgerSvc models.LedgerService,
	wallet models.WalletService,
	repo models.HistoryRepository,
	mints models.MintResolver,
	programID solana.PublicKey,
	log *logger.Logger,
) models.ClientService {
	return &App{
		logger:       log,
		ledger:       ledgerSvc,
		wallet:       wallet,
		mints:        mints,
		program:      ledger.Program{ID: programID},
		history:      NewHistoryReconstructor(ledgerSvc, repo, programID, log),
		pollInterval: defaultPollInterval,
	}
}

// Start runs the initial synchronization and then keeps the snapshot
// fresh on a poll ticker until ctx is done.
func (a *App) Start(ctx context.Context) {
	if err := a.Reconcile(ctx); err != nil {
		a.logger.Errorw("initial synchronization failed", "err", err)
	}

	ticker := time.NewTicker(a.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			a.logger.Info("state synchronization stopped")
			return
		case <-ticker.C:
			if err := a.Reconcile(ctx); err != nil {
				a.logger.Errorw("synchronization failed", "err", err)
			}
		}
	}
}

// Snapshot returns a copy of the last-synchronized state.
func (a *App) Snapshot() models.Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.st.snapshot(a.wallet)
}

// SetForm merges incoming form fields into the store.
func (a *App) SetForm(form models.FormFields) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.st.mergeForm(form)
}

// Reconcile re-derives the whole snapshot from remote truth: master,
// current lottery, the user's tickets, and the full history. No partial
// update path exists; redundant reads are the accepted cost.
func (a *App) Reconcile(ctx context.Context) error {
	master, err := a.ledger.FetchMaster(ctx)
	if err != nil {
		if errors.Is(err, models.ErrAccountNotFound) {
			a.mu.Lock()
			a.st.initialized = false
			a.st.clearLottery()
			a.mu.Unlock()
			return nil
		}
		return fmt.Errorf("fetch master: %w", err)
	}

	var (
		lottery        *models.Lottery
		lotteryAddress solana.PublicKey
		userWinningID  uint32
	)
	if master.LastID > 0 {
		lotteryAddress, err = ledger.LotteryAddress(a.program.ID, master.LastID)
		if err != nil {
			return fmt.Errorf("derive lottery address: %w", err)
		}
		lottery, err = a.ledger.FetchLottery(ctx, lotteryAddress)
		if err != nil {
			return fmt.Errorf("fetch lottery %d: %w", master.LastID, err)
		}

		if a.wallet != nil && lottery.WinnerSet {
			tickets, err := a.ledger.FetchUserTickets(ctx, master.LastID, a.wallet.PublicKey())
			if err != nil {
				a.logger.Warnw("fetching user tickets failed", "lottery_id", master.LastID, "err", err)
			} else {
				for _, ticket := range tickets {
					if ticket.ID == lottery.WinnerID {
						userWinningID = lottery.WinnerID
						break
					}
				}
			}
		}
	}

	history := a.history.Build(ctx, master.LastID)

	a.mu.Lock()
	a.st.initialized = true
	a.st.lotteryID = master.LastID
	a.st.lotteryAddress = lotteryAddress
	a.st.lottery = lottery
	a.st.userWinningID = userWinningID
	a.st.history = history
	a.mu.Unlock()
	return nil
}

// Initialize creates the master account. Only meaningful before the
// first synchronization finds one.
func (a *App) Initialize(ctx context.Context) error {
	return a.runIntent(ctx, "initialized master", func() error {
		if err := a.requireWallet(); err != nil {
			return err
		}
		a.mu.Lock()
		initialized := a.st.initialized
		a.mu.Unlock()
		if initialized {
			return fmt.Errorf("%w: master already initialized", models.ErrValidation)
		}

		master, err := ledger.MasterAddress(a.program.ID)
		if err != nil {
			return fmt.Errorf("derive master address: %w", err)
		}
		ix := a.program.InitMaster(master, a.wallet.PublicKey())
		return a.submit(ctx, ix)
	})
}

// CreateLottery opens the round with id lastId+1. The master account is
// re-read first so the intended id reflects current remote truth.
func (a *App) CreateLottery(ctx context.Context) error {
	return a.runIntent(ctx, "lottery created", func() error {
		if err := a.requireWallet(); err != nil {
			return err
		}
		master, err := a.ledger.FetchMaster(ctx)
		if err != nil {
			// Absent master means the deployment still needs Initialize,
			// not that submission failed.
			if errors.Is(err, models.ErrAccountNotFound) {
				return err
			}
			return fmt.Errorf("%w: %v", models.ErrSubmission, err)
		}
		masterAddress, err := ledger.MasterAddress(a.program.ID)
		if err != nil {
			return fmt.Errorf("derive master address: %w", err)
		}
		lotteryAddress, err := ledger.LotteryAddress(a.program.ID, master.LastID+1)
		if err != nil {
			return fmt.Errorf("derive lottery address: %w", err)
		}
		ix := a.program.CreateLottery(lotteryAddress, masterAddress, a.wallet.PublicKey())
		return a.submit(ctx, ix)
	})
}

// BuyTicket purchases the next ticket using the stored form fields.
// All five fields are validated locally; a validation failure never
// reaches the network.
func (a *App) BuyTicket(ctx context.Context) error {
	return a.runIntent(ctx, "bought a ticket", func() error {
		if err := a.requireWallet(); err != nil {
			return err
		}
		a.mu.Lock()
		form := a.st.form
		lotteryID := a.st.lotteryID
		lotteryAddress := a.st.lotteryAddress
		a.mu.Unlock()

		if err := validateBuyForm(form); err != nil {
			return err
		}
		tokenID, err := strconv.ParseUint(form.Token, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: token must be a numeric token id", models.ErrValidation)
		}

		// Read-before-derive: the ticket address depends on the lottery's
		// current lastTicketId. Two concurrent buyers can still derive the
		// same id; the program's account-level atomicity settles that race.
		lottery, err := a.ledger.FetchLottery(ctx, lotteryAddress)
		if err != nil {
			return fmt.Errorf("%w: %v", models.ErrSubmission, err)
		}
		if lottery.Finished() {
			return fmt.Errorf("%w: lottery %d is finished", models.ErrValidation, lotteryID)
		}
		ticketAddress, err := ledger.TicketAddress(a.program.ID, lotteryAddress, lottery.LastTicketID+1)
		if err != nil {
			return fmt.Errorf("derive ticket address: %w", err)
		}

		ix := a.program.BuyTicket(
			lotteryAddress, ticketAddress, a.wallet.PublicKey(),
			lotteryID, form.Country, form.Continent, tokenID,
			form.EntryMethod, form.EntryPrice*solana.LAMPORTS_PER_SOL,
		)
		return a.submit(ctx, ix)
	})
}

// BurnAndBuy burns tokens of the given mint for a ticket. The burn
// amount is scaled by the mint's decimal exponent, fetched fresh.
func (a *App) BurnAndBuy(ctx context.Context, country, continent, token string, burnAmount uint64) error {
	return a.runIntent(ctx, "burned tokens and bought a ticket", func() error {
		if err := a.requireWallet(); err != nil {
			return err
		}
		if err := requireFields(map[string]string{
			"country": country, "continent": continent, "token": token,
		}); err != nil {
			return err
		}
		if burnAmount == 0 {
			return fmt.Errorf("%w: burn amount must be positive", models.ErrValidation)
		}

		mint, err := a.resolveMint(token)
		if err != nil {
			return err
		}
		decimals, err := a.ledger.FetchMintDecimals(ctx, mint)
		if err != nil {
			return fmt.Errorf("%w: %v", models.ErrMintResolution, err)
		}
		baseUnits, err := scaleToBaseUnits(burnAmount, decimals)
		if err != nil {
			return fmt.Errorf("%w: %v", models.ErrValidation, err)
		}

		a.mu.Lock()
		lotteryID := a.st.lotteryID
		lotteryAddress := a.st.lotteryAddress
		a.mu.Unlock()

		lottery, err := a.ledger.FetchLottery(ctx, lotteryAddress)
		if err != nil {
			return fmt.Errorf("%w: %v", models.ErrSubmission, err)
		}
		if lottery.Finished() {
			return fmt.Errorf("%w: lottery %d is finished", models.ErrValidation, lotteryID)
		}
		ticketAddress, err := ledger.TicketAddress(a.program.ID, lotteryAddress, lottery.LastTicketID+1)
		if err != nil {
			return fmt.Errorf("derive ticket address: %w", err)
		}
		tokenAccount, err := ledger.AssociatedTokenAddress(a.wallet.PublicKey(), mint)
		if err != nil {
			return fmt.Errorf("derive token account: %w", err)
		}

		ix := a.program.EnterWithBurn(
			lotteryAddress, ticketAddress, a.wallet.PublicKey(), tokenAccount, mint,
			baseUnits, lotteryID, country, continent,
		)
		return a.submit(ctx, ix)
	})
}

// Stake deposits tokens into the caller's stake account for the given
// mint, creating the account on first use.
func (a *App) Stake(ctx context.Context, country, continent, token string, amount uint64) error {
	return a.runIntent(ctx, "tokens staked", func() error {
		if err := a.requireWallet(); err != nil {
			return err
		}
		if err := requireFields(map[string]string{
			"country": country, "continent": continent, "token": token,
		}); err != nil {
			return err
		}
		if amount == 0 {
			return fmt.Errorf("%w: stake amount must be positive", models.ErrValidation)
		}

		mint, err := a.resolveMint(token)
		if err != nil {
			return err
		}

		a.mu.Lock()
		lotteryAddress := a.st.lotteryAddress
		a.mu.Unlock()

		lottery, err := a.ledger.FetchLottery(ctx, lotteryAddress)
		if err != nil {
			return fmt.Errorf("%w: %v", models.ErrSubmission, err)
		}

		staker := a.wallet.PublicKey()
		stakeAccount, err := ledger.StakeAddress(a.program.ID, staker, mint)
		if err != nil {
			return fmt.Errorf("derive stake address: %w", err)
		}
		tokenAccount, err := ledger.AssociatedTokenAddress(staker, mint)
		if err != nil {
			return fmt.Errorf("derive token account: %w", err)
		}
		ticketAddress, err := ledger.TicketAddress(a.program.ID, lotteryAddress, lottery.LastTicketID)
		if err != nil {
			return fmt.Errorf("derive ticket address: %w", err)
		}

		ix := a.program.Stake(
			lotteryAddress, stakeAccount, tokenAccount, ticketAddress, staker, mint,
			amount, country, continent,
		)
		return a.submit(ctx, ix)
	})
}

// Unstake withdraws the caller's full stake for the given mint. The
// program's unstake takes an amount argument, but this client only
// supports full unstake and always submits the sentinel.
func (a *App) Unstake(ctx context.Context, country, continent, token string) error {
	return a.runIntent(ctx, "tokens unstaked", func() error {
		if err := a.requireWallet(); err != nil {
			return err
		}
		if err := requireFields(map[string]string{
			"country": country, "continent": continent, "token": token,
		}); err != nil {
			return err
		}

		mint, err := a.resolveMint(token)
		if err != nil {
			return err
		}

		a.mu.Lock()
		lotteryAddress := a.st.lotteryAddress
		a.mu.Unlock()

		lottery, err := a.ledger.FetchLottery(ctx, lotteryAddress)
		if err != nil {
			return fmt.Errorf("%w: %v", models.ErrSubmission, err)
		}

		staker := a.wallet.PublicKey()
		tokenAccount, err := ledger.AssociatedTokenAddress(staker, mint)
		if err != nil {
			return fmt.Errorf("derive token account: %w", err)
		}
		ticketAddress, err := ledger.TicketAddress(a.program.ID, lotteryAddress, lottery.LastTicketID)
		if err != nil {
			return fmt.Errorf("derive ticket address: %w", err)
		}

		ix := a.program.Unstake(
			lotteryAddress, ticketAddress, staker, tokenAccount, mint,
			unstakeAll, country, continent,
		)
		return a.submit(ctx, ix)
	})
}

// PickWinner asks the program to draw the current lottery. Only the
// lottery authority may do this; the selection itself is the program's.
func (a *App) PickWinner(ctx context.Context) error {
	return a.runIntent(ctx, "winner picked", func() error {
		if err := a.requireWallet(); err != nil {
			return err
		}
		a.mu.Lock()
		lotteryID := a.st.lotteryID
		lotteryAddress := a.st.lotteryAddress
		a.mu.Unlock()

		lottery, err := a.ledger.FetchLottery(ctx, lotteryAddress)
		if err != nil {
			return fmt.Errorf("%w: %v", models.ErrSubmission, err)
		}
		if !a.wallet.PublicKey().Equals(lottery.Authority) {
			return fmt.Errorf("%w: only the lottery authority can pick a winner", models.ErrAuthorization)
		}
		if lottery.Finished() {
			return fmt.Errorf("%w: lottery %d already has a winner", models.ErrValidation, lotteryID)
		}

		ix := a.program.PickWinner(lotteryAddress, a.wallet.PublicKey(), lotteryID)
		return a.submit(ctx, ix)
	})
}

// ClaimPrize transfers the pot to the caller, who must hold the winning
// ticket of the current lottery.
func (a *App) ClaimPrize(ctx context.Context) error {
	return a.runIntent(ctx, "prize claimed", func() error {
		if err := a.requireWallet(); err != nil {
			return err
		}
		a.mu.Lock()
		lotteryID := a.st.lotteryID
		lotteryAddress := a.st.lotteryAddress
		winningID := a.st.userWinningID
		a.mu.Unlock()

		if winningID == 0 {
			return fmt.Errorf("%w: no winning ticket for this wallet", models.ErrNotEligible)
		}
		lottery, err := a.ledger.FetchLottery(ctx, lotteryAddress)
		if err != nil {
			return fmt.Errorf("%w: %v", models.ErrSubmission, err)
		}
		if lottery.Claimed {
			return fmt.Errorf("%w: prize already claimed", models.ErrNotEligible)
		}

		ticketAddress, err := ledger.TicketAddress(a.program.ID, lotteryAddress, winningID)
		if err != nil {
			return fmt.Errorf("derive ticket address: %w", err)
		}
		ix := a.program.ClaimPrize(lotteryAddress, ticketAddress, a.wallet.PublicKey(), lotteryID, winningID)
		return a.submit(ctx, ix)
	})
}

// runIntent is the shared intent wrapper: clear transient fields, run
// the intent, record the outcome, and reconcile against remote truth
// regardless of success or failure.
func (a *App) runIntent(ctx context.Context, successMsg string, fn func() error) error {
	a.mu.Lock()
	a.st.clearTransient()
	a.mu.Unlock()

	err := fn()

	a.mu.Lock()
	if err != nil {
		a.st.lastError = err.Error()
	} else {
		a.st.lastSuccess = successMsg
	}
	a.mu.Unlock()

	if recErr := a.Reconcile(ctx); recErr != nil {
		a.logger.Errorw("post-intent synchronization failed", "err", recErr)
	}
	return err
}

func (a *App) submit(ctx context.Context, instructions ...solana.Instruction) error {
	sig, err := a.ledger.Submit(ctx, instructions, a.wallet)
	if err != nil {
		return fmt.Errorf("%w: %v", models.ErrSubmission, err)
	}
	a.logger.Infow("transaction confirmed", "signature", sig)
	return nil
}

func (a *App) requireWallet() error {
	if a.wallet == nil {
		return fmt.Errorf("%w: no wallet connected", models.ErrAuthorization)
	}
	return nil
}

// resolveMint accepts either a base58 mint address or a registry
// symbol.
func (a *App) resolveMint(token string) (solana.PublicKey, error) {
	if key, err := validation.ParseAddress(token); err == nil {
		return key, nil
	}
	if a.mints == nil {
		return solana.PublicKey{}, fmt.Errorf("%w: %q is not a valid mint address", models.ErrMintResolution, token)
	}
	key, err := a.mints.ResolveMint(token)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%w: %v", models.ErrMintResolution, err)
	}
	return key, nil
}

func validateBuyForm(form models.FormFields) error {
	if err := requireFields(map[string]string{
		"country":      form.Country,
		"continent":    form.Continent,
		"token":        form.Token,
		"entry method": form.EntryMethod,
	}); err != nil {
		return err
	}
	if form.EntryPrice == 0 {
		return fmt.Errorf("%w: entry price is required", models.ErrValidation)
	}
	return nil
}

func requireFields(fields map[string]string) error {
	for name, value := range fields {
		if value == "" {
			return fmt.Errorf("%w: %s is required", models.ErrValidation, name)
		}
	}
	return nil
}

// scaleToBaseUnits converts a whole-token amount into base units using
// the mint's decimal exponent. big.Int guards the multiplication; a
// result outside uint64 is rejected rather than truncated.
func scaleToBaseUnits(amount uint64, decimals uint8) (uint64, error) {
	scaled := new(big.Int).Mul(
		new(big.Int).SetUint64(amount),
		new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil),
	)
	if !scaled.IsUint64() {
		return 0, fmt.Errorf("amount %d with %d decimals overflows", amount, decimals)
	}
	return scaled.Uint64(), nil
}
