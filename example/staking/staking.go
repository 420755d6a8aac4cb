// Package staking demonstrates the collateral lifecycle against the
// on-disk host: fund a spendable balance, lock a stake, register an
// endpoint, and withdraw back out. It is the smallest end-to-end
// user of the store and ledger together.
package staking

import (
	"github.com/DADBSLabs/DADBS-TESTNET/address"
	"github.com/DADBSLabs/DADBS-TESTNET/stake"
	"github.com/DADBSLabs/DADBS-TESTNET/store"
	"github.com/DADBSLabs/DADBS-TESTNET/types"

	"go.uber.org/zap"
)

// Desk is a staking counter: one storage directory, one ledger.
type Desk struct {
	store  *store.Store
	ledger *stake.Ledger
}

// Open opens the desk over the badger directory at dir.
func Open(dir string, logger *zap.Logger) (*Desk, error) {
	s, err := store.Open(dir, logger)
	if err != nil {
		return nil, err
	}
	return &Desk{store: s, ledger: stake.NewLedger(s, logger)}, nil
}

// Close releases the underlying store.
func (d *Desk) Close() error {
	return d.store.Close()
}

// Fund credits owner's spendable balance, faucet style.
func (d *Desk) Fund(owner types.ExternalAddress, amount uint64) error {
	return d.store.Credit(owner, amount)
}

// Balance returns owner's spendable balance.
func (d *Desk) Balance(owner types.ExternalAddress) (uint64, error) {
	return d.store.Spendable(owner)
}

// Stake locks amount of owner's balance for lockPeriod, creating
// the stake account.
func (d *Desk) Stake(owner types.ExternalAddress, amount uint64, lockPeriod int64) (types.StakeRecord, error) {
	return d.ledger.CreateStake(owner, amount, lockPeriod)
}

// Record returns owner's stake record, if any.
func (d *Desk) Record(owner types.ExternalAddress) (types.StakeRecord, bool, error) {
	return d.ledger.Stake(owner)
}

// Withdraw moves amount from owner's stake back to the spendable
// balance.
func (d *Desk) Withdraw(owner types.ExternalAddress, amount uint64) error {
	account, err := address.Derive(owner)
	if err != nil {
		return err
	}
	return d.ledger.Withdraw(account, owner, amount)
}

// Apply executes a wire-encoded ledger instruction on behalf of
// owner, the path a transaction payload takes.
func (d *Desk) Apply(owner types.ExternalAddress, data []byte) error {
	account, err := address.Derive(owner)
	if err != nil {
		return err
	}
	return d.ledger.Execute(owner, account, data)
}

// Announce records the endpoint owner serves on, making it visible
// to Validators once the stake clears the minimum.
func (d *Desk) Announce(owner types.ExternalAddress, endpoint string) error {
	return d.store.RegisterEndpoint(owner, endpoint)
}

// Validators lists the currently seated validator set.
func (d *Desk) Validators() ([]types.ValidatorInfo, error) {
	return d.store.ActiveValidators()
}
