package stake_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/DADBSLabs/DADBS-TESTNET/stake"
	"github.com/DADBSLabs/DADBS-TESTNET/types"
)

func TestEncodeInstruction_CreateStakeWire(t *testing.T) {
	got, err := stake.EncodeInstruction(stake.Instruction{
		Kind:       stake.InstrCreateStake,
		Amount:     10_000_000_000,
		LockPeriod: 86400,
	})
	if err != nil {
		t.Fatalf("EncodeInstruction failed: %v", err)
	}
	// Discriminant 0, then amount and lock period little-endian.
	want := []byte{
		0x00,
		0x00, 0xE4, 0x0B, 0x54, 0x02, 0x00, 0x00, 0x00,
		0x80, 0x51, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00,
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("CreateStake wire bytes\n got %x\nwant %x", got, want)
	}
}

func TestEncodeInstruction_WithdrawWire(t *testing.T) {
	got, err := stake.EncodeInstruction(stake.Instruction{
		Kind:   stake.InstrWithdraw,
		Amount: 3_000_000_000,
	})
	if err != nil {
		t.Fatalf("EncodeInstruction failed: %v", err)
	}
	want := []byte{
		0x01,
		0x00, 0x5E, 0xD0, 0xB2, 0x00, 0x00, 0x00, 0x00,
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("Withdraw wire bytes\n got %x\nwant %x", got, want)
	}
}

func TestInstruction_RoundTrip(t *testing.T) {
	cases := []stake.Instruction{
		{Kind: stake.InstrCreateStake, Amount: 10_000_000_000, LockPeriod: 0},
		{Kind: stake.InstrCreateStake, Amount: 1, LockPeriod: -1},
		{Kind: stake.InstrWithdraw, Amount: 42},
	}
	for _, in := range cases {
		data, err := stake.EncodeInstruction(in)
		if err != nil {
			t.Fatalf("EncodeInstruction(%+v) failed: %v", in, err)
		}
		got, err := stake.DecodeInstruction(data)
		if err != nil {
			t.Fatalf("DecodeInstruction(%+v) failed: %v", in, err)
		}
		if got != in {
			t.Fatalf("round trip changed instruction: got %+v, want %+v", got, in)
		}
	}
}

func TestDecodeInstruction_Invalid(t *testing.T) {
	create := []byte{
		0x00,
		0x00, 0xE4, 0x0B, 0x54, 0x02, 0x00, 0x00, 0x00,
		0x80, 0x51, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00,
	}
	cases := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"unknown discriminant", []byte{0x02, 0x00}},
		{"truncated CreateStake", create[:16]},
		{"trailing bytes", append(append([]byte{}, create...), 0x00)},
		{"short Withdraw", []byte{0x01, 0x00}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := stake.DecodeInstruction(tc.data)
			if !errors.Is(err, stake.ErrBadInstruction) {
				t.Fatalf("error = %v, want ErrBadInstruction", err)
			}
		})
	}
}

func TestRecord_RoundTrip(t *testing.T) {
	rec := types.StakeRecord{
		Owner:       "DYw8jCTfwHNRJhhmFcbXvVDTqWMEVFBX6ZKUmG5CNSKK",
		Amount:      10_000_000_000,
		LockedUntil: 86400,
		Active:      true,
	}
	data, err := stake.EncodeRecord(rec)
	if err != nil {
		t.Fatalf("EncodeRecord failed: %v", err)
	}
	got, err := stake.DecodeRecord(data)
	if err != nil {
		t.Fatalf("DecodeRecord failed: %v", err)
	}
	if got != rec {
		t.Fatalf("round trip changed record: got %+v, want %+v", got, rec)
	}
}

func TestDecodeRecord_Invalid(t *testing.T) {
	if _, err := stake.DecodeRecord(nil); !errors.Is(err, stake.ErrBadRecord) {
		t.Fatalf("empty data error = %v, want ErrBadRecord", err)
	}
	data, err := stake.EncodeRecord(types.StakeRecord{Owner: "x", Amount: 1, Active: true})
	if err != nil {
		t.Fatal(err)
	}
	data[0] = 0x09
	if _, err := stake.DecodeRecord(data); !errors.Is(err, stake.ErrBadRecord) {
		t.Fatalf("unknown version error = %v, want ErrBadRecord", err)
	}
}
