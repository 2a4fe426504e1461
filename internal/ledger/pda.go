package ledger

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"
)

// PDA namespace seeds fixed by the on-chain program.
var (
	SeedMaster  = []byte("master")
	SeedLottery = []byte("lottery")
	SeedTicket  = []byte("ticket")
	SeedStake   = []byte("user_stake")
)

// MasterAddress derives the singleton master account address.
func MasterAddress(programID solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress([][]byte{SeedMaster}, programID)
	return addr, err
}

// LotteryAddress derives the lottery account address for the given id.
// Ids are encoded as 4-byte little-endian, matching the program's seeds.
func LotteryAddress(programID solana.PublicKey, lotteryID uint32) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{SeedLottery, uint32LE(lotteryID)}, programID)
	return addr, err
}

// TicketAddress derives the ticket account address. Tickets are scoped
// under their lottery's address, so the lottery address is part of the
// seeds.
func TicketAddress(programID, lotteryAddress solana.PublicKey, ticketID uint32) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{SeedTicket, lotteryAddress.Bytes(), uint32LE(ticketID)}, programID)
	return addr, err
}

// StakeAddress derives the staking account address for a (staker, mint)
// pair. Stake accounts are keyed by identity, not sequentially.
func StakeAddress(programID, staker, mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{SeedStake, staker.Bytes(), mint.Bytes()}, programID)
	return addr, err
}

// AssociatedTokenAddress derives the ATA holding the owner's balance of
// the given mint. Used by the burn, stake and unstake instructions.
func AssociatedTokenAddress(owner, mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	return addr, err
}

func uint32LE(v uint32) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, v)
	return buf
}
