// Package dadbs defines the boundary between the DADBS consensus
// manager and the validators it polls for transaction confirmation.
//
// The core [Validator] interface is required. All other interfaces
// are optional capabilities discovered via Go type assertion when
// the manager first calls Info.
package dadbs

import (
	"context"

	"github.com/DADBSLabs/DADBS-TESTNET/types"
)

// ProtocolVersion is the boundary protocol version this library
// speaks, carried in RequestInfo.
const ProtocolVersion uint32 = 1

// Validator is the core interface every DADBS validator must
// implement. The consensus manager guarantees the following call
// order:
//  1. Info is called first and completes before anything else.
//     Repeat announcements are allowed.
//  2. ConfirmTransaction may be called concurrently at any time
//     after the first Info completes.
type Validator interface {
	// Info is called once when the manager connects.
	//
	// The validator reports its identity, the parameters it applies
	// when confirming, and the optional capabilities it supports.
	Info(ctx context.Context, req types.RequestInfo) (types.ResponseInfo, error)

	// ConfirmTransaction asks the validator for its verdict on a
	// transaction. A rejection is a normal outcome carried in the
	// response, not an error; errors mean the validator could not
	// produce a verdict at all.
	//
	// This method MUST be safe for concurrent use.
	ConfirmTransaction(ctx context.Context, req types.RequestConfirm) (types.ResponseConfirm, error)
}

// Generator produces text from a prompt using the validator's local
// language model. Validators without a model omit this.
//
// Declared via: types.CapGeneration in ResponseInfo.Capabilities
type Generator interface {
	// Generate runs the model on the prompt. Implementations bound
	// the prompt to the model's context window; oversized prompts
	// are rejected, not truncated.
	Generate(ctx context.Context, req types.RequestGenerate) (types.ResponseGenerate, error)
}

// StakeQuerier exposes the validator's view of a stake account.
//
// Declared via: types.CapStakeQuery in ResponseInfo.Capabilities
type StakeQuerier interface {
	// QueryStake looks up the stake owned by an external address.
	//
	// This method MUST be safe for concurrent use.
	QueryStake(ctx context.Context, req types.RequestStake) (types.ResponseStake, error)
}

// FullValidator embeds every DADBS interface. Most validators
// should implement only Validator plus the optional interfaces
// they need.
type FullValidator interface {
	Validator
	Generator
	StakeQuerier
}

// Connection represents a transport-agnostic connection to a
// validator. Both gRPC clients and in-process adapters implement
// this.
type Connection interface {
	Validator

	// Capabilities returns the capabilities discovered via Info.
	// Must only be called after Info completes.
	Capabilities() types.Capabilities

	// AsGenerator returns the Generator interface if available, or
	// nil if the validator does not support it.
	AsGenerator() Generator

	// AsStakeQuerier returns the StakeQuerier interface if available.
	AsStakeQuerier() StakeQuerier

	// Close terminates the connection.
	Close() error
}
