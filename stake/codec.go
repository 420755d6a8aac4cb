package stake

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/DADBSLabs/DADBS-TESTNET/types"

	"github.com/blockberries/cramberry/pkg/cramberry"
)

// InstructionKind is the one-byte discriminant selecting a ledger
// operation. Values are wire-stable.
type InstructionKind uint8

const (
	InstrCreateStake InstructionKind = 0
	InstrWithdraw    InstructionKind = 1
)

// Wire sizes: discriminant plus little-endian fixed-width fields in
// declared order. External encoders depend on these byte-for-byte.
const (
	createStakeWireSize = 1 + 8 + 8
	withdrawWireSize    = 1 + 8
)

// ErrBadInstruction reports an instruction buffer that failed
// structural validation.
var ErrBadInstruction = errors.New("stake: malformed instruction")

// Instruction is a decoded ledger instruction. LockPeriod is only
// meaningful for InstrCreateStake.
type Instruction struct {
	Kind       InstructionKind
	Amount     uint64
	LockPeriod int64
}

// EncodeInstruction renders an instruction in its wire form.
func EncodeInstruction(in Instruction) ([]byte, error) {
	switch in.Kind {
	case InstrCreateStake:
		buf := make([]byte, createStakeWireSize)
		buf[0] = byte(InstrCreateStake)
		binary.LittleEndian.PutUint64(buf[1:9], in.Amount)
		binary.LittleEndian.PutUint64(buf[9:17], uint64(in.LockPeriod))
		return buf, nil
	case InstrWithdraw:
		buf := make([]byte, withdrawWireSize)
		buf[0] = byte(InstrWithdraw)
		binary.LittleEndian.PutUint64(buf[1:9], in.Amount)
		return buf, nil
	default:
		return nil, fmt.Errorf("%w: unknown kind %d", ErrBadInstruction, in.Kind)
	}
}

// DecodeInstruction validates length and discriminant before
// reading any field. Trailing bytes are rejected.
func DecodeInstruction(data []byte) (Instruction, error) {
	if len(data) == 0 {
		return Instruction{}, fmt.Errorf("%w: empty buffer", ErrBadInstruction)
	}
	switch InstructionKind(data[0]) {
	case InstrCreateStake:
		if len(data) != createStakeWireSize {
			return Instruction{}, fmt.Errorf("%w: CreateStake needs %d bytes, got %d",
				ErrBadInstruction, createStakeWireSize, len(data))
		}
		return Instruction{
			Kind:       InstrCreateStake,
			Amount:     binary.LittleEndian.Uint64(data[1:9]),
			LockPeriod: int64(binary.LittleEndian.Uint64(data[9:17])),
		}, nil
	case InstrWithdraw:
		if len(data) != withdrawWireSize {
			return Instruction{}, fmt.Errorf("%w: Withdraw needs %d bytes, got %d",
				ErrBadInstruction, withdrawWireSize, len(data))
		}
		return Instruction{
			Kind:   InstrWithdraw,
			Amount: binary.LittleEndian.Uint64(data[1:9]),
		}, nil
	default:
		return Instruction{}, fmt.Errorf("%w: unknown discriminant %d", ErrBadInstruction, data[0])
	}
}

// recordVersion frames every persisted stake record so the layout
// can evolve without guessing.
const recordVersion byte = 1

// ErrBadRecord reports stored account data that is not a valid
// stake record.
var ErrBadRecord = errors.New("stake: malformed record")

// EncodeRecord renders a stake record as versioned account data.
func EncodeRecord(rec types.StakeRecord) ([]byte, error) {
	body, err := cramberry.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("stake: encode record: %w", err)
	}
	return append([]byte{recordVersion}, body...), nil
}

// DecodeRecord validates the version byte before trusting any
// field.
func DecodeRecord(data []byte) (types.StakeRecord, error) {
	if len(data) == 0 {
		return types.StakeRecord{}, fmt.Errorf("%w: empty data", ErrBadRecord)
	}
	if data[0] != recordVersion {
		return types.StakeRecord{}, fmt.Errorf("%w: unknown version %d", ErrBadRecord, data[0])
	}
	var rec types.StakeRecord
	if err := cramberry.Unmarshal(data[1:], &rec); err != nil {
		return types.StakeRecord{}, fmt.Errorf("%w: %v", ErrBadRecord, err)
	}
	return rec, nil
}
