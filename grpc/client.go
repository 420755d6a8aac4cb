package dadbsgrpc

import (
	"context"
	"fmt"

	dadbs "github.com/DADBSLabs/DADBS-TESTNET"
	"github.com/DADBSLabs/DADBS-TESTNET/node"
	"github.com/DADBSLabs/DADBS-TESTNET/types"

	"google.golang.org/grpc"
)

// Compile-time interface check.
var _ dadbs.Connection = (*Client)(nil)

// Client implements dadbs.Connection for remote validators over
// gRPC using cramberry serialization. No protobuf types or
// conversion layer required.
type Client struct {
	cc    *grpc.ClientConn
	caps  types.Capabilities
	guard *node.Guard
}

// Dial connects to a remote validator.
func Dial(ctx context.Context, addr string, opts ...grpc.DialOption) (*Client, error) {
	opts = append(opts, grpc.WithDefaultCallOptions(
		grpc.ForceCodec(CramberryCodec{}),
	))
	cc, err := grpc.DialContext(ctx, addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("dadbs client: dial %s: %w", addr, err)
	}
	return &Client{
		cc:    cc,
		guard: node.NewGuard(),
	}, nil
}

func (c *Client) Close() error {
	return c.cc.Close()
}

// --- Validator ---

func (c *Client) Info(ctx context.Context, req types.RequestInfo) (types.ResponseInfo, error) {
	first := c.guard.AcquireInfo()

	resp := new(types.ResponseInfo)
	if err := c.cc.Invoke(ctx, fullMethod("Info"), &req, resp); err != nil {
		if first {
			c.guard.FailInfo()
		}
		return types.ResponseInfo{}, err
	}

	if first {
		c.caps = resp.Capabilities
		c.guard.CompleteInfo()
	}
	return *resp, nil
}

func (c *Client) ConfirmTransaction(ctx context.Context, req types.RequestConfirm) (types.ResponseConfirm, error) {
	c.guard.CheckServing()

	resp := new(types.ResponseConfirm)
	if err := c.cc.Invoke(ctx, fullMethod("ConfirmTransaction"), &req, resp); err != nil {
		return types.ResponseConfirm{}, err
	}
	return *resp, nil
}

// --- Capability accessors ---

func (c *Client) Capabilities() types.Capabilities { return c.caps }

func (c *Client) AsGenerator() dadbs.Generator {
	if c.caps.Has(types.CapGeneration) {
		return &clientGenerator{c}
	}
	return nil
}

func (c *Client) AsStakeQuerier() dadbs.StakeQuerier {
	if c.caps.Has(types.CapStakeQuery) {
		return &clientStakeQuerier{c}
	}
	return nil
}

// --- Generator wrapper ---

type clientGenerator struct{ c *Client }

func (w *clientGenerator) Generate(ctx context.Context, req types.RequestGenerate) (types.ResponseGenerate, error) {
	w.c.guard.CheckServing()

	resp := new(types.ResponseGenerate)
	if err := w.c.cc.Invoke(ctx, fullMethod("Generate"), &req, resp); err != nil {
		return types.ResponseGenerate{}, err
	}
	return *resp, nil
}

// --- StakeQuerier wrapper ---

type clientStakeQuerier struct{ c *Client }

func (w *clientStakeQuerier) QueryStake(ctx context.Context, req types.RequestStake) (types.ResponseStake, error) {
	w.c.guard.CheckServing()

	resp := new(types.ResponseStake)
	if err := w.c.cc.Invoke(ctx, fullMethod("QueryStake"), &req, resp); err != nil {
		return types.ResponseStake{}, err
	}
	return *resp, nil
}
