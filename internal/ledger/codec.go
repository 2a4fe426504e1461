package ledger

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/lottolabs/sortitio/internal/models"
)

// Anchor-style 8-byte discriminators identifying account and
// instruction types on the wire.
var (
	discMaster = accountDiscriminator("Master")
	discLottry = accountDiscriminator("Lottery")
	discTicket = accountDiscriminator("Ticket")
	discStake  = accountDiscriminator("UserStake")
)

// Byte offsets inside the serialized ticket record, used for the
// getProgramAccounts memcmp filters. An artifact of the program's
// binary layout; nothing outside this package depends on them.
const (
	ticketLotteryIDOffset = 12
	ticketAuthorityOffset = 16
)

// SPL mint layout: the decimal exponent sits at offset 44, after the
// 36-byte mint-authority option and the 8-byte supply.
const (
	mintDecimalsOffset = 44
	mintAccountSize    = 82
)

var errTruncated = fmt.Errorf("truncated account data")

func accountDiscriminator(name string) [8]byte {
	hash := sha256.Sum256([]byte("account:" + name))
	var out [8]byte
	copy(out[:], hash[:8])
	return out
}

func instructionDiscriminator(name string) [8]byte {
	hash := sha256.Sum256([]byte("global:" + name))
	var out [8]byte
	copy(out[:], hash[:8])
	return out
}

func checkDiscriminator(data []byte, want [8]byte, kind string) error {
	if len(data) < 8 {
		return fmt.Errorf("%s: %w", kind, errTruncated)
	}
	if !bytes.Equal(data[:8], want[:]) {
		return fmt.Errorf("%s: discriminator mismatch", kind)
	}
	return nil
}

// decodeMaster parses the master account payload.
func decodeMaster(data []byte) (*models.Master, error) {
	if err := checkDiscriminator(data, discMaster, "master"); err != nil {
		return nil, err
	}
	lastID, _, err := readU32(data, 8)
	if err != nil {
		return nil, fmt.Errorf("master: %w", err)
	}
	return &models.Master{LastID: lastID}, nil
}

// decodeLottery parses a lottery account payload.
func decodeLottery(data []byte) (*models.Lottery, error) {
	if err := checkDiscriminator(data, discLottry, "lottery"); err != nil {
		return nil, err
	}
	offset := 8
	id, offset, err := readU32(data, offset)
	if err != nil {
		return nil, fmt.Errorf("lottery id: %w", err)
	}
	authority, offset, err := readPubkey(data, offset)
	if err != nil {
		return nil, fmt.Errorf("lottery authority: %w", err)
	}
	pot, offset, err := readU64(data, offset)
	if err != nil {
		return nil, fmt.Errorf("lottery pot: %w", err)
	}
	lastTicketID, offset, err := readU32(data, offset)
	if err != nil {
		return nil, fmt.Errorf("lottery last ticket id: %w", err)
	}
	winnerID, winnerSet, offset, err := readOptionU32(data, offset)
	if err != nil {
		return nil, fmt.Errorf("lottery winner id: %w", err)
	}
	claimed, _, err := readBool(data, offset)
	if err != nil {
		return nil, fmt.Errorf("lottery claimed: %w", err)
	}
	return &models.Lottery{
		ID:           id,
		Authority:    authority,
		PrizePot:     pot,
		LastTicketID: lastTicketID,
		WinnerID:     winnerID,
		WinnerSet:    winnerSet,
		Claimed:      claimed,
	}, nil
}

// decodeTicket parses a ticket account payload.
func decodeTicket(data []byte) (*models.Ticket, error) {
	if err := checkDiscriminator(data, discTicket, "ticket"); err != nil {
		return nil, err
	}
	offset := 8
	id, offset, err := readU32(data, offset)
	if err != nil {
		return nil, fmt.Errorf("ticket id: %w", err)
	}
	lotteryID, offset, err := readU32(data, offset)
	if err != nil {
		return nil, fmt.Errorf("ticket lottery id: %w", err)
	}
	authority, _, err := readPubkey(data, offset)
	if err != nil {
		return nil, fmt.Errorf("ticket authority: %w", err)
	}
	return &models.Ticket{ID: id, LotteryID: lotteryID, Authority: authority}, nil
}

// decodeStake parses a staking account payload.
func decodeStake(data []byte) (*models.StakeAccount, error) {
	if err := checkDiscriminator(data, discStake, "stake"); err != nil {
		return nil, err
	}
	offset := 8
	staker, offset, err := readPubkey(data, offset)
	if err != nil {
		return nil, fmt.Errorf("stake staker: %w", err)
	}
	mint, offset, err := readPubkey(data, offset)
	if err != nil {
		return nil, fmt.Errorf("stake mint: %w", err)
	}
	amount, offset, err := readU64(data, offset)
	if err != nil {
		return nil, fmt.Errorf("stake amount: %w", err)
	}
	country, offset, err := readString(data, offset)
	if err != nil {
		return nil, fmt.Errorf("stake country: %w", err)
	}
	continent, offset, err := readString(data, offset)
	if err != nil {
		return nil, fmt.Errorf("stake continent: %w", err)
	}
	token, _, err := readString(data, offset)
	if err != nil {
		return nil, fmt.Errorf("stake token: %w", err)
	}
	return &models.StakeAccount{
		Staker:    staker,
		Mint:      mint,
		Amount:    amount,
		Country:   country,
		Continent: continent,
		Token:     token,
	}, nil
}

// decodeMintDecimals extracts the decimal exponent from a raw SPL mint
// account payload.
func decodeMintDecimals(data []byte) (uint8, error) {
	if len(data) < mintAccountSize {
		return 0, fmt.Errorf("mint: %w", errTruncated)
	}
	return data[mintDecimalsOffset], nil
}

func readU32(data []byte, offset int) (uint32, int, error) {
	if len(data) < offset+4 {
		return 0, offset, errTruncated
	}
	return binary.LittleEndian.Uint32(data[offset : offset+4]), offset + 4, nil
}

func readU64(data []byte, offset int) (uint64, int, error) {
	if len(data) < offset+8 {
		return 0, offset, errTruncated
	}
	return binary.LittleEndian.Uint64(data[offset : offset+8]), offset + 8, nil
}

func readBool(data []byte, offset int) (bool, int, error) {
	if len(data) < offset+1 {
		return false, offset, errTruncated
	}
	return data[offset] != 0, offset + 1, nil
}

// readOptionU32 reads a borsh option<u32>: a one-byte tag followed by
// the value when the tag is 1.
func readOptionU32(data []byte, offset int) (uint32, bool, int, error) {
	if len(data) < offset+1 {
		return 0, false, offset, errTruncated
	}
	tag := data[offset]
	offset++
	if tag == 0 {
		return 0, false, offset, nil
	}
	value, offset, err := readU32(data, offset)
	if err != nil {
		return 0, false, offset, err
	}
	return value, true, offset, nil
}

func readPubkey(data []byte, offset int) (solana.PublicKey, int, error) {
	if len(data) < offset+32 {
		return solana.PublicKey{}, offset, errTruncated
	}
	return solana.PublicKeyFromBytes(data[offset : offset+32]), offset + 32, nil
}

// readString reads a borsh string: u32 length prefix plus raw bytes.
func readString(data []byte, offset int) (string, int, error) {
	length, offset, err := readU32(data, offset)
	if err != nil {
		return "", offset, err
	}
	if len(data) < offset+int(length) {
		return "", offset, errTruncated
	}
	return string(data[offset : offset+int(length)]), offset + int(length), nil
}

// instructionData assembles instruction payloads: the 8-byte
// discriminator followed by borsh-encoded arguments.
type instructionData struct {
	buf []byte
}

func newInstructionData(name string) *instructionData {
	disc := instructionDiscriminator(name)
	return &instructionData{buf: append([]byte{}, disc[:]...)}
}

func (d *instructionData) u32(v uint32) *instructionData {
	d.buf = binary.LittleEndian.AppendUint32(d.buf, v)
	return d
}

func (d *instructionData) u64(v uint64) *instructionData {
	d.buf = binary.LittleEndian.AppendUint64(d.buf, v)
	return d
}

func (d *instructionData) str(s string) *instructionData {
	d.buf = binary.LittleEndian.AppendUint32(d.buf, uint32(len(s)))
	d.buf = append(d.buf, s...)
	return d
}

func (d *instructionData) bytes() []byte {
	return d.buf
}
