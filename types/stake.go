package types

// StakeRecord is the serialized state of one stake account.
type StakeRecord struct {
	// Owner is the external address that created the stake and
	// may withdraw from it.
	Owner ExternalAddress `cramberry:"1"`
	// Amount currently staked.
	Amount uint64 `cramberry:"2"`
	// Lock period as Unix seconds. Any positive value blocks
	// withdrawals; zero means unlocked.
	LockedUntil int64 `cramberry:"3"`
	// Active stakes count toward validator membership. A record
	// stays active even when withdrawn to zero.
	Active bool `cramberry:"4"`
}

// RequestStake asks a validator for its view of a stake account.
type RequestStake struct {
	Owner ExternalAddress `cramberry:"1"`
}

// ResponseStake carries the stake record, if one exists.
type ResponseStake struct {
	// Found is false when the owner has no stake account.
	Found  bool        `cramberry:"1"`
	Record StakeRecord `cramberry:"2"`
}

// Account is a host ledger account: a balance plus arbitrary
// module-owned data. Accounts holding a StakeRecord are owned by
// the staking module and keyed by the derived internal address.
type Account struct {
	// Module that owns Data and is allowed to mutate it.
	Module ModuleID `cramberry:"1"`
	// Balance in base units.
	Balance uint64 `cramberry:"2"`
	// Data is opaque to the host.
	Data []byte `cramberry:"3"`
}
