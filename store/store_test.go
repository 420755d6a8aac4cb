package store_test

import (
	"errors"
	"testing"

	"github.com/DADBSLabs/DADBS-TESTNET/address"
	"github.com/DADBSLabs/DADBS-TESTNET/stake"
	"github.com/DADBSLabs/DADBS-TESTNET/store"
	"github.com/DADBSLabs/DADBS-TESTNET/types"
)

const (
	alice = types.ExternalAddress("DYw8jCTfwHNRJhhmFcbXvVDTqWMEVFBX6ZKUmG5CNSKK")
	bob   = types.ExternalAddress("BobW8jCTfwHNRJhhmFcbXvVDTqWMEVFBX6ZKUmG5CNSK")
)

func mustAccount(t *testing.T, owner types.ExternalAddress) types.InternalAddress {
	t.Helper()
	addr, err := address.Derive(owner)
	if err != nil {
		t.Fatalf("Derive(%s) failed: %v", owner, err)
	}
	return addr
}

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	})
	return s
}

func TestCreditAndSpendable(t *testing.T) {
	s := openStore(t)

	if bal, err := s.Spendable(alice); err != nil || bal != 0 {
		t.Fatalf("fresh balance = %d, %v; want 0, nil", bal, err)
	}
	if err := s.Credit(alice, 12_345); err != nil {
		t.Fatalf("Credit failed: %v", err)
	}
	if err := s.Credit(alice, 55); err != nil {
		t.Fatalf("Credit failed: %v", err)
	}
	if bal, _ := s.Spendable(alice); bal != 12_400 {
		t.Fatalf("balance = %d, want 12400", bal)
	}
	// Other owners are untouched.
	if bal, _ := s.Spendable(bob); bal != 0 {
		t.Fatalf("bob's balance = %d, want 0", bal)
	}
}

func TestDebit_Insufficient(t *testing.T) {
	s := openStore(t)
	if err := s.Credit(alice, 100); err != nil {
		t.Fatal(err)
	}

	err := s.Update(func(tx stake.Txn) error {
		return tx.Debit(alice, 101)
	})
	if !errors.Is(err, stake.ErrInsufficientFunds) {
		t.Fatalf("error = %v, want ErrInsufficientFunds", err)
	}
	if bal, _ := s.Spendable(alice); bal != 100 {
		t.Fatalf("balance = %d after failed debit, want 100", bal)
	}
}

func TestUpdate_RollsBack(t *testing.T) {
	s := openStore(t)
	boom := errors.New("boom")

	err := s.Update(func(tx stake.Txn) error {
		if err := tx.Credit(alice, 500); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("error = %v, want boom", err)
	}
	if bal, _ := s.Spendable(alice); bal != 0 {
		t.Fatalf("balance = %d after rolled-back update, want 0", bal)
	}
}

func TestAccounts(t *testing.T) {
	s := openStore(t)
	addr := mustAccount(t, alice)
	acct := types.Account{Module: "stake", Balance: 77, Data: []byte{0x01, 0x02}}

	err := s.Update(func(tx stake.Txn) error {
		return tx.CreateAccount(addr, acct)
	})
	if err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	err = s.Update(func(tx stake.Txn) error {
		return tx.CreateAccount(addr, acct)
	})
	if !errors.Is(err, stake.ErrAccountExists) {
		t.Fatalf("duplicate create error = %v, want ErrAccountExists", err)
	}

	err = s.View(func(tx stake.Txn) error {
		got, err := tx.Account(addr)
		if err != nil {
			return err
		}
		if got.Module != acct.Module || got.Balance != acct.Balance || len(got.Data) != 2 {
			t.Errorf("account = %+v, want %+v", got, acct)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Account failed: %v", err)
	}

	err = s.View(func(tx stake.Txn) error {
		_, err := tx.Account("dadbsmissing")
		return err
	})
	if !errors.Is(err, stake.ErrNoAccount) {
		t.Fatalf("missing account error = %v, want ErrNoAccount", err)
	}

	err = s.Update(func(tx stake.Txn) error {
		return tx.SetAccount("dadbsmissing", acct)
	})
	if !errors.Is(err, stake.ErrNoAccount) {
		t.Fatalf("SetAccount on missing error = %v, want ErrNoAccount", err)
	}
}

func TestMinimumBalance(t *testing.T) {
	s := openStore(t)
	small := s.MinimumBalance(0)
	if small == 0 {
		t.Fatal("MinimumBalance(0) = 0, want the fixed overhead priced in")
	}
	if big := s.MinimumBalance(1024); big <= small {
		t.Fatalf("MinimumBalance(1024) = %d, want more than %d", big, small)
	}
}

// TestLedgerOnStore runs the full stake lifecycle against badger
// instead of an in-memory fake.
func TestLedgerOnStore(t *testing.T) {
	s := openStore(t)
	ledger := stake.NewLedger(s, nil)

	if err := s.Credit(alice, 100*stake.MinimumStake); err != nil {
		t.Fatal(err)
	}
	funded, _ := s.Spendable(alice)

	rec, err := ledger.CreateStake(alice, 3*stake.MinimumStake, 0)
	if err != nil {
		t.Fatalf("CreateStake failed: %v", err)
	}
	if rec.Amount != 3*stake.MinimumStake || !rec.Active {
		t.Fatalf("unexpected record: %+v", rec)
	}

	afterCreate, _ := s.Spendable(alice)
	if afterCreate >= funded-3*stake.MinimumStake {
		t.Fatalf("debit %d too small, surcharge missing", funded-afterCreate)
	}

	got, found, err := ledger.Stake(alice)
	if err != nil || !found {
		t.Fatalf("Stake lookup: found=%v err=%v", found, err)
	}
	if got != rec {
		t.Fatalf("stored record %+v, want %+v", got, rec)
	}

	// Partial withdraw, then drain.
	acctAddr := mustAccount(t, alice)
	if err := ledger.Withdraw(acctAddr, alice, stake.MinimumStake); err != nil {
		t.Fatalf("Withdraw failed: %v", err)
	}
	if err := ledger.Withdraw(acctAddr, alice, 2*stake.MinimumStake); err != nil {
		t.Fatalf("second Withdraw failed: %v", err)
	}
	got, _, err = ledger.Stake(alice)
	if err != nil {
		t.Fatal(err)
	}
	if got.Amount != 0 || !got.Active {
		t.Fatalf("drained record = %+v, want amount 0 and still active", got)
	}
	if bal, _ := s.Spendable(alice); bal != afterCreate+3*stake.MinimumStake {
		t.Fatalf("balance = %d, want %d", bal, afterCreate+3*stake.MinimumStake)
	}
}

func TestCreateStake_AtomicOnStore(t *testing.T) {
	s := openStore(t)
	ledger := stake.NewLedger(s, nil)

	// Enough for the stake but not the surcharge.
	if err := s.Credit(alice, stake.MinimumStake); err != nil {
		t.Fatal(err)
	}
	_, err := ledger.CreateStake(alice, stake.MinimumStake, 0)
	if !errors.Is(err, stake.ErrInsufficientFunds) {
		t.Fatalf("error = %v, want ErrInsufficientFunds", err)
	}
	if bal, _ := s.Spendable(alice); bal != stake.MinimumStake {
		t.Fatalf("balance = %d after failed create, want %d", bal, stake.MinimumStake)
	}
	if _, found, _ := ledger.Stake(alice); found {
		t.Fatal("record exists after failed create")
	}
}
