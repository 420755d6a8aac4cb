// Package quorum wires a complete in-process confirmation pipeline:
// several validators behind local connections, a static registry,
// and a consensus manager polling them. It demonstrates the
// two-thirds admission rule without any network.
package quorum

import (
	"context"
	"fmt"
	"time"

	dadbs "github.com/DADBSLabs/DADBS-TESTNET"
	"github.com/DADBSLabs/DADBS-TESTNET/consensus"
	"github.com/DADBSLabs/DADBS-TESTNET/local"
	"github.com/DADBSLabs/DADBS-TESTNET/node"
	"github.com/DADBSLabs/DADBS-TESTNET/types"

	"go.uber.org/zap"
)

// Config sizes a cluster. Dissenters are validators that decline
// every transaction; they hold quorum seats without contributing
// confirmations, which is how a cluster fails to reach agreement.
type Config struct {
	Validators int
	Dissenters int
	Timeout    time.Duration
	Logger     *zap.Logger
}

// Cluster is a self-contained validator set with a manager in
// front of it.
type Cluster struct {
	manager *consensus.Manager
	conns   []dadbs.Connection
}

// New builds the cluster and announces every member so the
// connections are ready to confirm.
func New(cfg Config) (*Cluster, error) {
	total := cfg.Validators + cfg.Dissenters
	members := make([]consensus.Member, 0, total)
	conns := make([]dadbs.Connection, 0, total)

	for i := 0; i < total; i++ {
		opts := node.Options{
			ID:      fmt.Sprintf("validator-%d", i),
			Timeout: cfg.Timeout,
			Logger:  cfg.Logger,
		}
		if i >= cfg.Validators {
			// A stake gate over an empty ledger declines everything.
			opts.Stakes = noStakes{}
		}
		conn := local.NewConnection(node.New(opts), cfg.Logger)
		if _, err := conn.Info(context.Background(), types.RequestInfo{
			ProtocolVersion: dadbs.ProtocolVersion,
		}); err != nil {
			return nil, fmt.Errorf("quorum: announcing %s: %w", opts.ID, err)
		}
		conns = append(conns, conn)
		members = append(members, consensus.Member{ID: opts.ID, Conn: conn})
	}

	manager, err := consensus.NewManager(consensus.NewStaticRegistry(members...), consensus.Options{
		Timeout: cfg.Timeout,
		Logger:  cfg.Logger,
	})
	if err != nil {
		return nil, err
	}
	return &Cluster{manager: manager, conns: conns}, nil
}

// Validate runs one admission round over the whole cluster.
func (c *Cluster) Validate(ctx context.Context, tx *types.Transaction) bool {
	return c.manager.ValidateTransaction(ctx, tx)
}

// Manager exposes the consensus manager for state inspection.
func (c *Cluster) Manager() *consensus.Manager {
	return c.manager
}

// Size returns the number of seated validators.
func (c *Cluster) Size() int {
	return len(c.conns)
}

// Close releases every member connection.
func (c *Cluster) Close() error {
	for _, conn := range c.conns {
		conn.Close()
	}
	return nil
}

// noStakes is an empty stake ledger: every lookup misses.
type noStakes struct{}

func (noStakes) Stake(types.ExternalAddress) (types.StakeRecord, bool, error) {
	return types.StakeRecord{}, false, nil
}
