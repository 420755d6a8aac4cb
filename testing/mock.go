// Package dadbstest provides test utilities for validator
// development: a configurable mock validator, a harness for driving
// connections, and a conformance suite any Connection-backed
// validator can be run against.
package dadbstest

import (
	"context"
	"sync/atomic"

	dadbs "github.com/DADBSLabs/DADBS-TESTNET"
	"github.com/DADBSLabs/DADBS-TESTNET/types"
)

// Compile-time check that MockValidator satisfies all interfaces.
var (
	_ dadbs.Validator     = (*MockValidator)(nil)
	_ dadbs.Generator     = (*MockValidator)(nil)
	_ dadbs.StakeQuerier  = (*MockValidator)(nil)
	_ dadbs.FullValidator = (*MockValidator)(nil)
)

// MockValidator is a configurable validator for boundary testing.
// All methods are configurable via function fields. Unconfigured
// methods return sensible defaults: transactions are confirmed,
// generation echoes the prompt, stake lookups miss.
//
// MockValidator implements every optional interface so it can drive
// capability-discovery tests. Control which capabilities are
// declared via the DeclaredCapabilities field.
type MockValidator struct {
	// NodeID is reported at announce time. Empty means "mock".
	NodeID string

	// DeclaredCapabilities controls the bitfield returned by Info.
	DeclaredCapabilities types.Capabilities

	// Configurable handlers. If nil, defaults are used.
	InfoFn       func(context.Context, types.RequestInfo) (types.ResponseInfo, error)
	ConfirmFn    func(context.Context, types.RequestConfirm) (types.ResponseConfirm, error)
	GenerateFn   func(context.Context, types.RequestGenerate) (types.ResponseGenerate, error)
	QueryStakeFn func(context.Context, types.RequestStake) (types.ResponseStake, error)

	// Call counters (atomic for concurrent access).
	InfoCalls       atomic.Int64
	ConfirmCalls    atomic.Int64
	GenerateCalls   atomic.Int64
	QueryStakeCalls atomic.Int64
}

func (m *MockValidator) id() string {
	if m.NodeID == "" {
		return "mock"
	}
	return m.NodeID
}

func (m *MockValidator) Info(ctx context.Context, req types.RequestInfo) (types.ResponseInfo, error) {
	m.InfoCalls.Add(1)
	if m.InfoFn != nil {
		return m.InfoFn(ctx, req)
	}
	return types.ResponseInfo{
		NodeID:       m.id(),
		Capabilities: m.DeclaredCapabilities,
	}, nil
}

func (m *MockValidator) ConfirmTransaction(ctx context.Context, req types.RequestConfirm) (types.ResponseConfirm, error) {
	m.ConfirmCalls.Add(1)
	if m.ConfirmFn != nil {
		return m.ConfirmFn(ctx, req)
	}
	return types.ResponseConfirm{Confirmed: true, NodeID: m.id()}, nil
}

func (m *MockValidator) Generate(ctx context.Context, req types.RequestGenerate) (types.ResponseGenerate, error) {
	m.GenerateCalls.Add(1)
	if m.GenerateFn != nil {
		return m.GenerateFn(ctx, req)
	}
	return types.ResponseGenerate{Text: req.Prompt, ModelVersion: "0.0.0-mock"}, nil
}

func (m *MockValidator) QueryStake(ctx context.Context, req types.RequestStake) (types.ResponseStake, error) {
	m.QueryStakeCalls.Add(1)
	if m.QueryStakeFn != nil {
		return m.QueryStakeFn(ctx, req)
	}
	return types.ResponseStake{Found: false}, nil
}
