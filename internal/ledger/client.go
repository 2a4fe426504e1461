package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"github.com/lottolabs/sortitio/internal/models"
	"github.com/lottolabs/sortitio/pkg/logger"
)

const (
	// confirmPollInterval is how often the signature status is polled
	// while waiting for confirmation.
	confirmPollInterval = 700 * time.Millisecond
)

// Client implements models.LedgerService over a Solana JSON-RPC
// endpoint. It is stateless beyond the connection handle and the
// program id it serves.
type Client struct {
	logger     *logger.Logger
	rpc        *rpc.Client
	programID  solana.PublicKey
	commitment rpc.CommitmentType
}

// NewClient connects to the RPC endpoint. commitment may be empty, in
// which case confirmed is used.
func NewClient(rpcURL string, programID solana.PublicKey, commitment rpc.CommitmentType, log *logger.Logger) *Client {
	if commitment == "" {
		commitment = rpc.CommitmentConfirmed
	}
	return &Client{
		logger:     log,
		rpc:        rpc.New(rpcURL),
		programID:  programID,
		commitment: commitment,
	}
}

// ProgramID returns the lottery program id this client serves.
func (c *Client) ProgramID() solana.PublicKey {
	return c.programID
}

// fetchAccountData reads a single account's raw payload. Absent
// accounts surface as models.ErrAccountNotFound so callers can
// distinguish "not yet initialized" from real failures.
func (c *Client) fetchAccountData(ctx context.Context, address solana.PublicKey) ([]byte, error) {
	resp, err := c.rpc.GetAccountInfoWithOpts(ctx, address, &rpc.GetAccountInfoOpts{Commitment: c.commitment})
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return nil, fmt.Errorf("account %s: %w", address, models.ErrAccountNotFound)
		}
		return nil, fmt.Errorf("fetch account %s: %w", address, err)
	}
	if resp == nil || resp.Value == nil {
		return nil, fmt.Errorf("account %s: %w", address, models.ErrAccountNotFound)
	}
	return resp.Value.Data.GetBinary(), nil
}

// FetchMaster reads and parses the singleton master account.
func (c *Client) FetchMaster(ctx context.Context) (*models.Master, error) {
	address, err := MasterAddress(c.programID)
	if err != nil {
		return nil, fmt.Errorf("derive master address: %w", err)
	}
	data, err := c.fetchAccountData(ctx, address)
	if err != nil {
		return nil, err
	}
	return decodeMaster(data)
}

// FetchLottery reads and parses a lottery account.
func (c *Client) FetchLottery(ctx context.Context, address solana.PublicKey) (*models.Lottery, error) {
	data, err := c.fetchAccountData(ctx, address)
	if err != nil {
		return nil, err
	}
	return decodeLottery(data)
}

// FetchTicket reads and parses a ticket account.
func (c *Client) FetchTicket(ctx context.Context, address solana.PublicKey) (*models.Ticket, error) {
	data, err := c.fetchAccountData(ctx, address)
	if err != nil {
		return nil, err
	}
	return decodeTicket(data)
}

// FetchStake reads and parses a staking account.
func (c *Client) FetchStake(ctx context.Context, address solana.PublicKey) (*models.StakeAccount, error) {
	data, err := c.fetchAccountData(ctx, address)
	if err != nil {
		return nil, err
	}
	return decodeStake(data)
}

// FetchUserTickets scans the program's ticket accounts for the given
// lottery and owner. The memcmp filters narrow the scan server-side;
// the typed predicate after decoding is what actually decides
// membership.
func (c *Client) FetchUserTickets(ctx context.Context, lotteryID uint32, owner solana.PublicKey) ([]*models.Ticket, error) {
	accounts, err := c.rpc.GetProgramAccountsWithOpts(ctx, c.programID, &rpc.GetProgramAccountsOpts{
		Commitment: c.commitment,
		Filters: []rpc.RPCFilter{
			{Memcmp: &rpc.RPCFilterMemcmp{Offset: 0, Bytes: solana.Base58(discTicket[:])}},
			{Memcmp: &rpc.RPCFilterMemcmp{Offset: ticketLotteryIDOffset, Bytes: solana.Base58(uint32LE(lotteryID))}},
			{Memcmp: &rpc.RPCFilterMemcmp{Offset: ticketAuthorityOffset, Bytes: solana.Base58(owner.Bytes())}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("getProgramAccounts tickets: %w", err)
	}

	tickets := make([]*models.Ticket, 0, len(accounts))
	for _, item := range accounts {
		if item == nil || item.Account == nil {
			continue
		}
		ticket, err := decodeTicket(item.Account.Data.GetBinary())
		if err != nil {
			c.logger.Warnw("skipping undecodable ticket account", "pubkey", item.Pubkey, "err", err)
			continue
		}
		if ticket.LotteryID != lotteryID || !ticket.Authority.Equals(owner) {
			continue
		}
		tickets = append(tickets, ticket)
	}
	return tickets, nil
}

// FetchMintDecimals reads the decimal exponent of an SPL token mint.
// The owner check guards against arbitrary accounts being passed off as
// mints.
func (c *Client) FetchMintDecimals(ctx context.Context, mint solana.PublicKey) (uint8, error) {
	resp, err := c.rpc.GetAccountInfoWithOpts(ctx, mint, &rpc.GetAccountInfoOpts{Commitment: c.commitment})
	if err != nil {
		if errors.Is(err, rpc.ErrNotFound) {
			return 0, fmt.Errorf("mint %s: %w", mint, models.ErrAccountNotFound)
		}
		return 0, fmt.Errorf("fetch mint %s: %w", mint, err)
	}
	if resp == nil || resp.Value == nil {
		return 0, fmt.Errorf("mint %s: %w", mint, models.ErrAccountNotFound)
	}
	if !resp.Value.Owner.Equals(solana.TokenProgramID) {
		return 0, fmt.Errorf("mint %s: owner is not the token program", mint)
	}
	return decodeMintDecimals(resp.Value.Data.GetBinary())
}

// Submit builds, signs, sends and confirms a transaction carrying the
// given instructions. A fresh blockhash is fetched and the signer is
// assigned as fee payer before signing. Blocks until the ledger
// confirms or ctx expires.
func (c *Client) Submit(ctx context.Context, instructions []solana.Instruction, signer models.WalletService) (solana.Signature, error) {
	recent, err := c.rpc.GetLatestBlockhash(ctx, c.commitment)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("get latest blockhash: %w", err)
	}

	tx, err := solana.NewTransaction(
		instructions,
		recent.Value.Blockhash,
		solana.TransactionPayer(signer.PublicKey()),
	)
	if err != nil {
		return solana.Signature{}, fmt.Errorf("build transaction: %w", err)
	}

	if err := signer.SignTransaction(tx); err != nil {
		return solana.Signature{}, fmt.Errorf("sign transaction: %w", err)
	}

	sig, err := c.rpc.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		PreflightCommitment: c.commitment,
	})
	if err != nil {
		return solana.Signature{}, fmt.Errorf("send transaction: %w", err)
	}

	c.logger.Debugw("transaction sent", "signature", sig)
	if err := c.waitForConfirmation(ctx, sig); err != nil {
		return sig, err
	}
	return sig, nil
}

func (c *Client) waitForConfirmation(ctx context.Context, sig solana.Signature) error {
	ticker := time.NewTicker(confirmPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("confirmation wait: %w", ctx.Err())
		case <-ticker.C:
			result, err := c.rpc.GetSignatureStatuses(ctx, true, sig)
			if err != nil {
				continue
			}
			if len(result.Value) == 0 || result.Value[0] == nil {
				continue
			}
			status := result.Value[0]
			if status.Err != nil {
				return fmt.Errorf("transaction %s failed: %v", sig, status.Err)
			}
			if status.ConfirmationStatus == rpc.ConfirmationStatusConfirmed ||
				status.ConfirmationStatus == rpc.ConfirmationStatusFinalized {
				return nil
			}
		}
	}
}
