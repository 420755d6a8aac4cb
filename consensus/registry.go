package consensus

import (
	"context"
	"sync"

	dadbs "github.com/DADBSLabs/DADBS-TESTNET"
)

// Member is one validator in the current set: a name for logs and
// a live connection for confirmation queries.
type Member struct {
	ID   string
	Conn dadbs.Connection
}

// Registry supplies the current validator set. Membership is
// expected to track stake-ledger state, so the manager asks for a
// fresh listing at the start of every round instead of caching one.
type Registry interface {
	// Members returns a snapshot of the current set. The caller
	// owns the returned slice.
	Members(ctx context.Context) ([]Member, error)
}

// StaticRegistry is a Registry with explicitly managed membership.
// It serves tests and fixed topologies; production nodes derive
// membership from active stakes.
type StaticRegistry struct {
	mu      sync.RWMutex
	members []Member
}

// NewStaticRegistry creates a registry holding the given members.
func NewStaticRegistry(members ...Member) *StaticRegistry {
	r := &StaticRegistry{}
	r.Set(members...)
	return r
}

// Set replaces the membership.
func (r *StaticRegistry) Set(members ...Member) {
	cp := make([]Member, len(members))
	copy(cp, members)
	r.mu.Lock()
	r.members = cp
	r.mu.Unlock()
}

// Members implements Registry.
func (r *StaticRegistry) Members(ctx context.Context) ([]Member, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cp := make([]Member, len(r.members))
	copy(cp, r.members)
	return cp, nil
}

var _ Registry = (*StaticRegistry)(nil)
