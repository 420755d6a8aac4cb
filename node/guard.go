// Package node implements the validator side of the DADBS boundary:
// the policy that answers confirmation polls, and the service
// wrapper that enforces the call-order state machine around any
// Validator implementation.
package node

import (
	"fmt"
	"sync/atomic"
)

// lifecycleState is a state in the validator call-order machine.
type lifecycleState uint32

const (
	// stateInit: waiting for the first Info. No other calls allowed.
	stateInit lifecycleState = iota
	// stateAnnouncing: the first Info is in flight.
	stateAnnouncing
	// stateServing: Info completed. ConfirmTransaction, Generate and
	// QueryStake may now be called concurrently; repeated Info calls
	// are allowed and do not transition.
	stateServing
)

func (s lifecycleState) String() string {
	switch s {
	case stateInit:
		return "Init"
	case stateAnnouncing:
		return "Announcing"
	case stateServing:
		return "Serving"
	default:
		return fmt.Sprintf("unknown(%d)", s)
	}
}

// Guard enforces the call-order guarantee of the boundary: Info
// completes before anything else is served. Both the service wrapper
// and the gRPC client wrap calls with it.
type Guard struct {
	state atomic.Uint32
}

// NewGuard creates a guard in the Init state.
func NewGuard() *Guard {
	g := &Guard{}
	g.state.Store(uint32(stateInit))
	return g
}

// State returns the current state name, for diagnostics.
func (g *Guard) State() string {
	return lifecycleState(g.state.Load()).String()
}

// AcquireInfo transitions Init -> Announcing and reports whether
// this is the first announcement. Re-announcing from Serving is
// allowed and returns false; callers skip CompleteInfo/FailInfo
// then. Panics on a concurrent first Info.
func (g *Guard) AcquireInfo() bool {
	if g.state.CompareAndSwap(uint32(stateInit), uint32(stateAnnouncing)) {
		return true
	}
	if state := lifecycleState(g.state.Load()); state != stateServing {
		panic(fmt.Sprintf("github.com/DADBSLabs/DADBS-TESTNET: Info called in state %s (expected Init or Serving)", state))
	}
	return false
}

// CompleteInfo transitions Announcing -> Serving.
func (g *Guard) CompleteInfo() {
	g.state.Store(uint32(stateServing))
}

// FailInfo rolls back to Init so the announcement can be retried.
func (g *Guard) FailInfo() {
	g.state.Store(uint32(stateInit))
}

// CheckServing verifies that serving calls are allowed. Panics when
// Info has not completed.
func (g *Guard) CheckServing() {
	if state := lifecycleState(g.state.Load()); state != stateServing {
		panic(fmt.Sprintf("github.com/DADBSLabs/DADBS-TESTNET: serving call in state %s (Info must complete first)", state))
	}
}

// IsServing returns true once Info has completed.
func (g *Guard) IsServing() bool {
	return lifecycleState(g.state.Load()) == stateServing
}
