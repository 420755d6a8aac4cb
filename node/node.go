package node

import (
	"context"
	"fmt"
	"time"

	dadbs "github.com/DADBSLabs/DADBS-TESTNET"
	"github.com/DADBSLabs/DADBS-TESTNET/address"
	"github.com/DADBSLabs/DADBS-TESTNET/stake"
	"github.com/DADBSLabs/DADBS-TESTNET/types"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Version is the software version a node reports in Info.
const Version = "0.1.0"

// DefaultTimeout bounds transaction age when no timeout is
// configured.
const DefaultTimeout = 5 * time.Second

// Confirmation rejection reasons carried in ResponseConfirm.Reason.
const (
	ReasonInvalidSignature  = "invalid signature"
	ReasonStaleTimestamp    = "stale timestamp"
	ReasonInsufficientStake = "insufficient stake"
)

// StakeReader is the node's read-only view of the stake ledger.
// *stake.Ledger implements it.
type StakeReader interface {
	Stake(owner types.ExternalAddress) (types.StakeRecord, bool, error)
}

// Options configures a Node. The zero value of each field selects
// a default.
type Options struct {
	// ID is the stable node identifier. Defaults to a fresh UUID.
	ID string
	// Clock supplies the node's current time. Defaults to time.Now.
	Clock func() time.Time
	// Timeout bounds how old a transaction timestamp may be.
	// Defaults to DefaultTimeout.
	Timeout time.Duration
	// MinimumStake a sender must hold when Stakes is set. Defaults
	// to stake.MinimumStake.
	MinimumStake uint64
	// Stakes enables the stake admission check and the CapStakeQuery
	// capability. Nil skips both.
	Stakes StakeReader
	// Generator enables the CapGeneration capability. Nil omits it.
	Generator dadbs.Generator
	// Logger for confirmation outcomes. Nil disables logging.
	Logger *zap.Logger
}

// Node answers validator polls: it reports its identity via Info and
// applies the confirmation policy (signature, freshness, and
// optionally sender stake) in ConfirmTransaction.
type Node struct {
	id       string
	clock    func() time.Time
	timeout  time.Duration
	minStake uint64
	stakes   StakeReader
	caps     types.Capabilities
	log      *zap.Logger
}

// New builds a validator from opts. The returned value implements
// exactly the optional interfaces that are backed by configuration,
// so capability discovery by type assertion stays truthful: a node
// without a Generator does not have a Generate method.
func New(opts Options) dadbs.Validator {
	n := &Node{
		id:       opts.ID,
		clock:    opts.Clock,
		timeout:  opts.Timeout,
		minStake: opts.MinimumStake,
		stakes:   opts.Stakes,
		log:      opts.Logger,
	}
	if n.id == "" {
		n.id = uuid.NewString()
	}
	if n.clock == nil {
		n.clock = time.Now
	}
	if n.timeout <= 0 {
		n.timeout = DefaultTimeout
	}
	if n.minStake == 0 {
		n.minStake = stake.MinimumStake
	}
	if n.log == nil {
		n.log = zap.NewNop()
	}
	if opts.Stakes != nil {
		n.caps |= types.CapStakeQuery
	}
	if opts.Generator != nil {
		n.caps |= types.CapGeneration
	}

	switch {
	case opts.Generator != nil && opts.Stakes != nil:
		return &fullNode{Node: n, Generator: opts.Generator, StakeQuerier: stakeQuerier{stakes: opts.Stakes}}
	case opts.Generator != nil:
		return &generatingNode{Node: n, Generator: opts.Generator}
	case opts.Stakes != nil:
		return &queryingNode{Node: n, StakeQuerier: stakeQuerier{stakes: opts.Stakes}}
	default:
		return n
	}
}

// Info reports the node's identity, declared capabilities, and the
// parameters it applies when confirming.
func (n *Node) Info(ctx context.Context, req types.RequestInfo) (types.ResponseInfo, error) {
	if req.ProtocolVersion > dadbs.ProtocolVersion {
		return types.ResponseInfo{}, fmt.Errorf("node: peer speaks protocol %d, this node speaks %d",
			req.ProtocolVersion, dadbs.ProtocolVersion)
	}
	return types.ResponseInfo{
		NodeID:          n.id,
		SoftwareVersion: Version,
		Capabilities:    n.caps,
		Params: types.NodeParams{
			ConsensusTimeout: types.DurationFromGo(n.timeout),
			MinimumStake:     n.minStake,
		},
	}, nil
}

// ConfirmTransaction applies the confirmation policy. Rejections are
// verdicts, not errors: the checks run in order signature, freshness
// against the node's own clock, then sender stake when a StakeReader
// is configured. Safe for concurrent use.
func (n *Node) ConfirmTransaction(ctx context.Context, req types.RequestConfirm) (types.ResponseConfirm, error) {
	tx := req.Tx
	if !tx.Verify() {
		return n.decline(ReasonInvalidSignature), nil
	}
	if tx.Timestamp.Age(n.clock()) >= n.timeout {
		return n.decline(ReasonStaleTimestamp), nil
	}
	if n.stakes != nil {
		// A sender whose key has no chain address cannot hold a
		// stake either; only infrastructure failures are errors.
		sender, err := address.FromPublicKey(tx.Sender)
		if err != nil {
			return n.decline(ReasonInsufficientStake), nil
		}
		rec, found, err := n.stakes.Stake(sender)
		if err != nil {
			return types.ResponseConfirm{}, fmt.Errorf("node: stake lookup for %s: %w", sender, err)
		}
		if !found || !rec.Active || rec.Amount < n.minStake {
			return n.decline(ReasonInsufficientStake), nil
		}
	}
	n.log.Debug("confirmed transaction")
	return types.ResponseConfirm{Confirmed: true, NodeID: n.id}, nil
}

func (n *Node) decline(reason string) types.ResponseConfirm {
	n.log.Debug("declined transaction", zap.String("reason", reason))
	return types.ResponseConfirm{Confirmed: false, Reason: reason, NodeID: n.id}
}

// stakeQuerier serves remote stake lookups over a StakeReader.
type stakeQuerier struct {
	stakes StakeReader
}

func (q stakeQuerier) QueryStake(ctx context.Context, req types.RequestStake) (types.ResponseStake, error) {
	rec, found, err := q.stakes.Stake(req.Owner)
	if err != nil {
		return types.ResponseStake{}, err
	}
	return types.ResponseStake{Found: found, Record: rec}, nil
}

// Capability composites assembled by New.

type generatingNode struct {
	*Node
	dadbs.Generator
}

type queryingNode struct {
	*Node
	dadbs.StakeQuerier
}

type fullNode struct {
	*Node
	dadbs.Generator
	dadbs.StakeQuerier
}

var (
	_ dadbs.Validator     = (*Node)(nil)
	_ dadbs.Generator     = (*generatingNode)(nil)
	_ dadbs.StakeQuerier  = (*queryingNode)(nil)
	_ dadbs.FullValidator = (*fullNode)(nil)
)
