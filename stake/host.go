package stake

import "github.com/DADBSLabs/DADBS-TESTNET/types"

// Host is the account-storage host the ledger executes against.
// The host owns balances and account records; the ledger only
// describes mutations. Update runs the mutation inside a single
// transaction: if fn returns an error nothing it did is applied,
// so a crash or failure between steps cannot leave a partially
// funded or partially debited record.
type Host interface {
	// MinimumBalance returns the funding surcharge for an account
	// holding dataLen bytes of record data.
	MinimumBalance(dataLen int) uint64

	// Update runs fn in a read-write transaction. All mutations
	// apply atomically when fn returns nil and are discarded when
	// it returns an error.
	Update(fn func(Txn) error) error

	// View runs fn in a read-only transaction over a consistent
	// snapshot.
	View(fn func(Txn) error) error
}

// Txn is the set of operations available inside a host transaction.
type Txn interface {
	// Spendable returns the owner's free balance.
	Spendable(owner types.ExternalAddress) (uint64, error)

	// Debit removes amount from the owner's free balance. Fails
	// with ErrInsufficientFunds when the balance does not cover
	// amount.
	Debit(owner types.ExternalAddress, amount uint64) error

	// Credit adds amount to the owner's free balance.
	Credit(owner types.ExternalAddress, amount uint64) error

	// CreateAccount persists a new account under addr. Fails with
	// ErrAccountExists when an account already exists there.
	CreateAccount(addr types.InternalAddress, acct types.Account) error

	// Account loads the account stored under addr. Fails with
	// ErrNoAccount when nothing is stored there.
	Account(addr types.InternalAddress) (types.Account, error)

	// SetAccount overwrites an existing account.
	SetAccount(addr types.InternalAddress, acct types.Account) error
}
