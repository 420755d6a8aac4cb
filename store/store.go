// Package store persists spendable balances and module accounts
// in badger and implements the stake ledger's storage host.
package store

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/DADBSLabs/DADBS-TESTNET/stake"
	"github.com/DADBSLabs/DADBS-TESTNET/types"

	"github.com/dgraph-io/badger"
	"go.uber.org/zap"
)

// Key prefixes. Owner and account addresses are appended verbatim.
const (
	spendPrefix = "spend-"
	acctPrefix  = "acct-"
	dirPrefix   = "vdir-"
)

// Rent parameters for the minimum-balance rule: two years of
// per-byte rent over the record plus a fixed per-account overhead.
const (
	accountOverhead = 128
	rentPerByteYear = 3480
	rentExemptYears = 2
)

// accountVersion frames every stored account row.
const accountVersion byte = 1

// Store is a badger-backed account host.
type Store struct {
	db  *badger.DB
	log *zap.Logger
}

// Open opens or creates the store under dir. A nil logger disables
// logging.
func Open(dir string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", dir, err)
	}
	logger.Info("store opened", zap.String("dir", dir))
	return &Store{db: db, log: logger}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// MinimumBalance implements stake.Host.
func (s *Store) MinimumBalance(dataLen int) uint64 {
	return uint64(accountOverhead+dataLen) * rentPerByteYear * rentExemptYears
}

// Update implements stake.Host. Badger gives the all-or-nothing
// semantics: the closure's writes commit together or not at all.
func (s *Store) Update(fn func(stake.Txn) error) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return fn(&storeTxn{txn: txn})
	})
}

// View implements stake.Host.
func (s *Store) View(fn func(stake.Txn) error) error {
	return s.db.View(func(txn *badger.Txn) error {
		return fn(&storeTxn{txn: txn})
	})
}

// Credit adds amount to an owner's spendable balance outside any
// instruction, e.g. when seeding a test network.
func (s *Store) Credit(owner types.ExternalAddress, amount uint64) error {
	return s.Update(func(tx stake.Txn) error {
		return tx.Credit(owner, amount)
	})
}

// Spendable reads an owner's free balance.
func (s *Store) Spendable(owner types.ExternalAddress) (uint64, error) {
	var bal uint64
	err := s.View(func(tx stake.Txn) error {
		var err error
		bal, err = tx.Spendable(owner)
		return err
	})
	return bal, err
}

var _ stake.Host = (*Store)(nil)

// storeTxn adapts one badger transaction to the stake.Txn surface.
type storeTxn struct {
	txn *badger.Txn
}

func spendKey(owner types.ExternalAddress) []byte {
	return []byte(spendPrefix + string(owner))
}

func acctKey(addr types.InternalAddress) []byte {
	return []byte(acctPrefix + string(addr))
}

func (t *storeTxn) Spendable(owner types.ExternalAddress) (uint64, error) {
	item, err := t.txn.Get(spendKey(owner))
	if err == badger.ErrKeyNotFound {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	var bal uint64
	err = item.Value(func(val []byte) error {
		if len(val) != 8 {
			return fmt.Errorf("store: balance row is %d bytes, want 8", len(val))
		}
		bal = binary.BigEndian.Uint64(val)
		return nil
	})
	return bal, err
}

func (t *storeTxn) setSpendable(owner types.ExternalAddress, bal uint64) error {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, bal)
	return t.txn.Set(spendKey(owner), buf)
}

func (t *storeTxn) Debit(owner types.ExternalAddress, amount uint64) error {
	bal, err := t.Spendable(owner)
	if err != nil {
		return err
	}
	if bal < amount {
		return fmt.Errorf("%w: balance %d, debit %d", stake.ErrInsufficientFunds, bal, amount)
	}
	return t.setSpendable(owner, bal-amount)
}

func (t *storeTxn) Credit(owner types.ExternalAddress, amount uint64) error {
	bal, err := t.Spendable(owner)
	if err != nil {
		return err
	}
	if amount > math.MaxUint64-bal {
		return fmt.Errorf("store: credit overflows balance of %s", owner)
	}
	return t.setSpendable(owner, bal+amount)
}

func (t *storeTxn) CreateAccount(addr types.InternalAddress, acct types.Account) error {
	_, err := t.txn.Get(acctKey(addr))
	if err == nil {
		return fmt.Errorf("%w: %s", stake.ErrAccountExists, addr)
	}
	if err != badger.ErrKeyNotFound {
		return err
	}
	data, err := encodeAccount(acct)
	if err != nil {
		return err
	}
	return t.txn.Set(acctKey(addr), data)
}

func (t *storeTxn) Account(addr types.InternalAddress) (types.Account, error) {
	item, err := t.txn.Get(acctKey(addr))
	if err == badger.ErrKeyNotFound {
		return types.Account{}, fmt.Errorf("%w: %s", stake.ErrNoAccount, addr)
	}
	if err != nil {
		return types.Account{}, err
	}
	var acct types.Account
	err = item.Value(func(val []byte) error {
		acct, err = decodeAccount(val)
		return err
	})
	return acct, err
}

func (t *storeTxn) SetAccount(addr types.InternalAddress, acct types.Account) error {
	if _, err := t.txn.Get(acctKey(addr)); err != nil {
		if err == badger.ErrKeyNotFound {
			return fmt.Errorf("%w: %s", stake.ErrNoAccount, addr)
		}
		return err
	}
	data, err := encodeAccount(acct)
	if err != nil {
		return err
	}
	return t.txn.Set(acctKey(addr), data)
}

var _ stake.Txn = (*storeTxn)(nil)
