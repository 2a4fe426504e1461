package ledger

import (
	"github.com/gagliardetto/solana-go"
)

// Program builds instructions for the lottery/staking program. All
// addresses passed in are expected to be derived via this package's PDA
// helpers; the account order is fixed by the on-chain program.
type Program struct {
	ID solana.PublicKey
}

// InitMaster creates the singleton master account.
func (p Program) InitMaster(master, payer solana.PublicKey) solana.Instruction {
	data := newInstructionData("init_master").bytes()
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(master, true, false),
		solana.NewAccountMeta(payer, true, true),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
	}
	return solana.NewInstruction(p.ID, accounts, data)
}

// CreateLottery opens the next lottery round; the master's lastId
// advances on success.
func (p Program) CreateLottery(lottery, master, authority solana.PublicKey) solana.Instruction {
	data := newInstructionData("create_lottery").bytes()
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(lottery, true, false),
		solana.NewAccountMeta(master, true, false),
		solana.NewAccountMeta(authority, true, true),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
	}
	return solana.NewInstruction(p.ID, accounts, data)
}

// BuyTicket purchases the next ticket of the lottery. priceLamports is
// in the ledger's smallest unit.
func (p Program) BuyTicket(lottery, ticket, buyer solana.PublicKey,
	lotteryID uint32, country, continent string, tokenID uint64,
	entryMethod string, priceLamports uint64) solana.Instruction {
	data := newInstructionData("buy_ticket").
		u32(lotteryID).
		str(country).
		str(continent).
		u64(tokenID).
		str(entryMethod).
		u64(priceLamports).
		bytes()
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(lottery, true, false),
		solana.NewAccountMeta(ticket, true, false),
		solana.NewAccountMeta(buyer, true, true),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
	}
	return solana.NewInstruction(p.ID, accounts, data)
}

// EnterWithBurn burns tokens for a ticket. burnBaseUnits is already
// scaled by the mint's decimal exponent.
func (p Program) EnterWithBurn(lottery, ticket, buyer, buyerTokenAccount, mint solana.PublicKey,
	burnBaseUnits uint64, lotteryID uint32, country, continent string) solana.Instruction {
	data := newInstructionData("enter_with_burn").
		u64(burnBaseUnits).
		u32(lotteryID).
		str(country).
		str(continent).
		str(mint.String()).
		bytes()
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(lottery, true, false),
		solana.NewAccountMeta(ticket, true, false),
		solana.NewAccountMeta(buyer, true, true),
		solana.NewAccountMeta(buyerTokenAccount, true, false),
		solana.NewAccountMeta(mint, true, false),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
		solana.NewAccountMeta(solana.TokenProgramID, false, false),
	}
	return solana.NewInstruction(p.ID, accounts, data)
}

// Stake deposits tokens into the staker's stake account, creating it on
// first use.
func (p Program) Stake(lottery, stakeAccount, stakerTokenAccount, ticket, staker, mint solana.PublicKey,
	amount uint64, country, continent string) solana.Instruction {
	data := newInstructionData("stake").
		u64(amount).
		str(country).
		str(continent).
		str(mint.String()).
		bytes()
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(lottery, true, false),
		solana.NewAccountMeta(stakeAccount, true, false),
		solana.NewAccountMeta(stakerTokenAccount, true, false),
		solana.NewAccountMeta(ticket, true, false),
		solana.NewAccountMeta(staker, true, true),
		solana.NewAccountMeta(mint, false, false),
		solana.NewAccountMeta(solana.TokenProgramID, false, false),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
	}
	return solana.NewInstruction(p.ID, accounts, data)
}

// Unstake withdraws the staker's position. The program interprets the
// amount argument itself; see the orchestrator for the sentinel used.
func (p Program) Unstake(lottery, ticket, staker, stakerTokenAccount, mint solana.PublicKey,
	amount uint64, country, continent string) solana.Instruction {
	data := newInstructionData("unstake").
		u64(amount).
		str(country).
		str(continent).
		str(mint.String()).
		bytes()
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(lottery, true, false),
		solana.NewAccountMeta(ticket, true, false),
		solana.NewAccountMeta(staker, true, true),
		solana.NewAccountMeta(stakerTokenAccount, true, false),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
		solana.NewAccountMeta(solana.TokenProgramID, false, false),
	}
	return solana.NewInstruction(p.ID, accounts, data)
}

// PickWinner asks the program to draw a winner; only the lottery
// authority may sign this. The selection algorithm is the program's.
func (p Program) PickWinner(lottery, authority solana.PublicKey, lotteryID uint32) solana.Instruction {
	data := newInstructionData("pick_winner").u32(lotteryID).bytes()
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(lottery, true, false),
		solana.NewAccountMeta(authority, false, true),
	}
	return solana.NewInstruction(p.ID, accounts, data)
}

// ClaimPrize transfers the pot to the holder of the winning ticket.
func (p Program) ClaimPrize(lottery, ticket, authority solana.PublicKey,
	lotteryID, ticketID uint32) solana.Instruction {
	data := newInstructionData("claim_prize").u32(lotteryID).u32(ticketID).bytes()
	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(lottery, true, false),
		solana.NewAccountMeta(ticket, false, false),
		solana.NewAccountMeta(authority, true, true),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
	}
	return solana.NewInstruction(p.ID, accounts, data)
}
