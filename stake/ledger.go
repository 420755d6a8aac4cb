// Package stake implements the collateral ledger that backs
// validator weight: creating stake accounts against a storage host
// and withdrawing from them under lock, ownership, and balance
// rules.
package stake

import (
	"errors"
	"fmt"
	"math"

	"github.com/DADBSLabs/DADBS-TESTNET/address"
	"github.com/DADBSLabs/DADBS-TESTNET/types"

	"go.uber.org/zap"
)

// MinimumStake is the smallest amount CreateStake accepts, in base
// units.
const MinimumStake uint64 = 10_000_000_000

// ModuleName marks accounts owned by this ledger.
const ModuleName types.ModuleID = "stake"

var (
	// ErrStakeTooSmall rejects a CreateStake below MinimumStake.
	ErrStakeTooSmall = errors.New("stake: amount below minimum stake")
	// ErrNotStakeAccount rejects operations on accounts not owned
	// by the stake module.
	ErrNotStakeAccount = errors.New("stake: account not owned by stake module")
	// ErrNotOwner rejects withdrawals by anyone but the record
	// owner.
	ErrNotOwner = errors.New("stake: requester is not the stake owner")
	// ErrStillLocked rejects withdrawals while the lock period is
	// set.
	ErrStillLocked = errors.New("stake: lock period has not expired")
	// ErrInsufficientFunds rejects debits exceeding the available
	// balance.
	ErrInsufficientFunds = errors.New("stake: insufficient funds")
	// ErrAccountExists rejects creating a second stake for the
	// same owner.
	ErrAccountExists = errors.New("stake: stake account already exists")
	// ErrNoAccount reports a lookup of an address with no account.
	ErrNoAccount = errors.New("stake: no such account")
)

// Ledger executes stake instructions against a Host. Each owner
// has at most one stake account, stored under the internal address
// derived from the owner's external address.
type Ledger struct {
	host Host
	log  *zap.Logger
}

// NewLedger creates a ledger over host. A nil logger disables
// logging.
func NewLedger(host Host, logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ledger{host: host, log: logger}
}

// CreateStake opens a stake account for staker, locking amount
// plus a storage surcharge sized to the record under the host's
// minimum-balance rule. The debit and the account creation apply
// in one host transaction, so no partially funded record can
// survive a failure.
func (l *Ledger) CreateStake(staker types.ExternalAddress, amount uint64, lockPeriod int64) (types.StakeRecord, error) {
	if amount < MinimumStake {
		return types.StakeRecord{}, fmt.Errorf("%w: %d < %d", ErrStakeTooSmall, amount, MinimumStake)
	}

	rec := types.StakeRecord{
		Owner:       staker,
		Amount:      amount,
		LockedUntil: lockPeriod,
		Active:      true,
	}
	data, err := EncodeRecord(rec)
	if err != nil {
		return types.StakeRecord{}, err
	}
	addr, err := address.Derive(staker)
	if err != nil {
		return types.StakeRecord{}, err
	}

	surcharge := l.host.MinimumBalance(len(data))
	if amount > math.MaxUint64-surcharge {
		return types.StakeRecord{}, fmt.Errorf("%w: amount plus surcharge overflows", ErrInsufficientFunds)
	}
	total := amount + surcharge

	err = l.host.Update(func(tx Txn) error {
		if err := tx.Debit(staker, total); err != nil {
			return err
		}
		return tx.CreateAccount(addr, types.Account{
			Module:  ModuleName,
			Balance: total,
			Data:    data,
		})
	})
	if err != nil {
		return types.StakeRecord{}, err
	}

	l.log.Info("stake account created",
		zap.String("owner", string(staker)),
		zap.String("account", string(addr)),
		zap.Uint64("amount", amount),
		zap.Uint64("surcharge", surcharge))
	return rec, nil
}

// Withdraw moves amount from the stake account back to the
// requester's spendable balance. The checks run in order: module
// ownership of the account storage, record ownership by the
// requester, lock period, then balance. The record update and the
// credit apply in one host transaction.
func (l *Ledger) Withdraw(account types.InternalAddress, requester types.ExternalAddress, amount uint64) error {
	err := l.host.Update(func(tx Txn) error {
		acct, err := tx.Account(account)
		if err != nil {
			return err
		}
		if acct.Module != ModuleName {
			return fmt.Errorf("%w: owned by %q", ErrNotStakeAccount, acct.Module)
		}
		rec, err := DecodeRecord(acct.Data)
		if err != nil {
			return err
		}
		if rec.Owner != requester {
			return ErrNotOwner
		}
		if rec.LockedUntil > 0 {
			return fmt.Errorf("%w: locked until %d", ErrStillLocked, rec.LockedUntil)
		}
		if amount > rec.Amount {
			return fmt.Errorf("%w: requested %d, staked %d", ErrInsufficientFunds, amount, rec.Amount)
		}

		// Guarded by the checks above, neither subtraction can
		// underflow. The record stays active at zero balance.
		rec.Amount -= amount
		acct.Balance -= amount
		acct.Data, err = EncodeRecord(rec)
		if err != nil {
			return err
		}
		if err := tx.SetAccount(account, acct); err != nil {
			return err
		}
		return tx.Credit(requester, amount)
	})
	if err != nil {
		return err
	}

	l.log.Info("withdrew from stake account",
		zap.String("account", string(account)),
		zap.String("requester", string(requester)),
		zap.Uint64("amount", amount))
	return nil
}

// Stake returns the stake record owned by owner. The second return
// is false when the owner has no stake account.
func (l *Ledger) Stake(owner types.ExternalAddress) (types.StakeRecord, bool, error) {
	addr, err := address.Derive(owner)
	if err != nil {
		return types.StakeRecord{}, false, err
	}
	var (
		rec   types.StakeRecord
		found bool
	)
	err = l.host.View(func(tx Txn) error {
		acct, err := tx.Account(addr)
		if errors.Is(err, ErrNoAccount) {
			return nil
		}
		if err != nil {
			return err
		}
		if acct.Module != ModuleName {
			return fmt.Errorf("%w: owned by %q", ErrNotStakeAccount, acct.Module)
		}
		rec, err = DecodeRecord(acct.Data)
		if err != nil {
			return err
		}
		found = true
		return nil
	})
	return rec, found, err
}

// Execute decodes an instruction buffer and applies it on behalf
// of requester. Withdraw instructions target account; CreateStake
// ignores it, since the new account's address is derived from the
// requester.
func (l *Ledger) Execute(requester types.ExternalAddress, account types.InternalAddress, data []byte) error {
	in, err := DecodeInstruction(data)
	if err != nil {
		return err
	}
	switch in.Kind {
	case InstrWithdraw:
		return l.Withdraw(account, requester, in.Amount)
	default:
		_, err := l.CreateStake(requester, in.Amount, in.LockPeriod)
		return err
	}
}
