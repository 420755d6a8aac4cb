// Package local provides a zero-copy, in-process validator
// connection.
//
// For validators compiled into the same binary as the consensus
// manager, this adapter wraps the validator with call-order
// enforcement and capability discovery, with no serialization
// overhead.
package local

import (
	"context"

	dadbs "github.com/DADBSLabs/DADBS-TESTNET"
	"github.com/DADBSLabs/DADBS-TESTNET/node"
	"github.com/DADBSLabs/DADBS-TESTNET/types"

	"go.uber.org/zap"
)

// Compile-time interface check.
var _ dadbs.Connection = (*Connection)(nil)

// Connection wraps a local validator with call-order enforcement
// and capability discovery.
type Connection struct {
	svc *node.Service
}

// NewConnection creates an in-process connection to the given
// validator. A nil logger disables logging.
func NewConnection(v dadbs.Validator, logger *zap.Logger) *Connection {
	return &Connection{svc: node.NewService(v, logger)}
}

func (c *Connection) Info(ctx context.Context, req types.RequestInfo) (types.ResponseInfo, error) {
	return c.svc.Info(ctx, req)
}

func (c *Connection) ConfirmTransaction(ctx context.Context, req types.RequestConfirm) (types.ResponseConfirm, error) {
	return c.svc.ConfirmTransaction(ctx, req)
}

func (c *Connection) Capabilities() types.Capabilities {
	return c.svc.Capabilities()
}

func (c *Connection) AsGenerator() dadbs.Generator {
	return c.svc.AsGenerator()
}

func (c *Connection) AsStakeQuerier() dadbs.StakeQuerier {
	return c.svc.AsStakeQuerier()
}

func (c *Connection) Close() error { return nil }

// Service returns the underlying service wrapper for advanced use
// cases.
func (c *Connection) Service() *node.Service {
	return c.svc
}
