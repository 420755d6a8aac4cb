// Package consensus implements the per-transaction admission
// check: signature verification, timestamp freshness, and a quorum
// of validator confirmations gathered concurrently under a
// deadline.
package consensus

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/DADBSLabs/DADBS-TESTNET/types"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

const (
	// DefaultTimeout bounds a confirmation round and doubles as
	// the transaction freshness window.
	DefaultTimeout = 5 * time.Second
	// DefaultMaxInFlight caps concurrent confirmation queries.
	DefaultMaxInFlight = 50
)

// QuorumSize returns the smallest confirmation count that clears
// the two-thirds threshold for n validators: the least k with
// k > floor(2n/3).
func QuorumSize(n int) int {
	return 2*n/3 + 1
}

// Options configures a Manager. Zero values fall back to the
// defaults above.
type Options struct {
	// Timeout bounds each confirmation round and the freshness
	// window.
	Timeout time.Duration
	// MaxInFlight caps concurrent confirmation queries.
	MaxInFlight int
	// Clock overrides the time source, for tests.
	Clock func() time.Time
	// Logger receives per-round diagnostics. Nil disables logging.
	Logger *zap.Logger
	// Registerer receives the manager's metrics. Nil skips
	// registration.
	Registerer prometheus.Registerer
}

// State is a consistent snapshot of the manager's bookkeeping.
type State struct {
	// LastBlockHash is the digest of the last accepted
	// transaction.
	LastBlockHash types.Hash
	// LastConsensus is when that acceptance happened.
	LastConsensus time.Time
	// Validators lists the current member IDs.
	Validators []string
	// Timeout is the configured round bound.
	Timeout time.Duration
}

// Manager decides whether transactions are admitted. It owns the
// last-accepted bookkeeping; all other state lives behind the
// Registry.
type Manager struct {
	registry    Registry
	timeout     time.Duration
	maxInFlight int64
	clock       func() time.Time
	log         *zap.Logger
	metrics     *metrics

	mu            sync.RWMutex
	lastBlockHash types.Hash
	lastConsensus time.Time
}

// NewManager creates a manager polling the given registry.
func NewManager(registry Registry, opts Options) (*Manager, error) {
	if registry == nil {
		return nil, errors.New("consensus: nil registry")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxInFlight <= 0 {
		opts.MaxInFlight = DefaultMaxInFlight
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	m, err := newMetrics(opts.Registerer)
	if err != nil {
		return nil, err
	}
	return &Manager{
		registry:    registry,
		timeout:     opts.Timeout,
		maxInFlight: int64(opts.MaxInFlight),
		clock:       opts.Clock,
		log:         opts.Logger,
		metrics:     m,
	}, nil
}

// ValidateTransaction reports whether tx is admissible: the
// signature must verify, the timestamp must be younger than the
// round timeout, and more than two thirds of the validator set
// must confirm. Every failure mode collapses to false. A caller
// cannot tell a policy rejection from validator unavailability
// through the return value; the logs and metrics carry that
// distinction.
//
// Confirmations are not retried. A validator that errors or misses
// the deadline counts as not confirming for this round.
func (m *Manager) ValidateTransaction(ctx context.Context, tx *types.Transaction) bool {
	if tx == nil || !tx.Verify() {
		m.metrics.reject(reasonSignature)
		m.log.Debug("transaction rejected: bad signature")
		return false
	}

	now := m.clock()
	if age := tx.Timestamp.Age(now); age >= m.timeout {
		m.metrics.reject(reasonTimestamp)
		m.log.Debug("transaction rejected: stale timestamp",
			zap.Duration("age", age),
			zap.Duration("timeout", m.timeout))
		return false
	}

	members, err := m.registry.Members(ctx)
	if err != nil {
		m.metrics.reject(reasonRegistry)
		m.log.Warn("validator registry unavailable", zap.Error(err))
		return false
	}
	n := len(members)
	m.metrics.validators.Set(float64(n))
	if n == 0 {
		// The threshold for an empty set can never be cleared.
		m.metrics.reject(reasonQuorum)
		m.log.Debug("transaction rejected: empty validator set")
		return false
	}

	need := QuorumSize(n)
	start := time.Now()
	yes := m.gatherConfirmations(ctx, members, tx, need)
	m.metrics.roundDuration.Observe(time.Since(start).Seconds())

	if yes < need {
		m.metrics.reject(reasonQuorum)
		m.log.Info("transaction rejected: quorum not reached",
			zap.Int("confirmations", yes),
			zap.Int("needed", need),
			zap.Int("validators", n))
		return false
	}

	m.mu.Lock()
	m.lastBlockHash = tx.Digest()
	m.lastConsensus = now
	m.mu.Unlock()

	m.metrics.accepted.Inc()
	m.log.Info("transaction accepted",
		zap.Int("confirmations", yes),
		zap.Int("validators", n))
	return true
}

// gatherConfirmations fans a confirmation query out to every
// member and counts affirmative verdicts. It returns as soon as
// the count reaches need, the deadline passes, or enough members
// have declined that need is out of reach; outstanding queries are
// canceled and counted as non-confirmations.
func (m *Manager) gatherConfirmations(ctx context.Context, members []Member, tx *types.Transaction, need int) int {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	sem := semaphore.NewWeighted(m.maxInFlight)
	// Buffered so abandoned queries can still send and exit.
	results := make(chan bool, len(members))
	req := types.RequestConfirm{Tx: *tx}

	for _, mem := range members {
		mem := mem
		go func() {
			if err := sem.Acquire(ctx, 1); err != nil {
				results <- false
				return
			}
			defer sem.Release(1)
			resp, err := mem.Conn.ConfirmTransaction(ctx, req)
			if err != nil {
				m.log.Debug("confirmation query failed",
					zap.String("validator", mem.ID),
					zap.Error(err))
				results <- false
				return
			}
			if !resp.Confirmed {
				m.log.Debug("validator declined",
					zap.String("validator", mem.ID),
					zap.String("reason", resp.Reason))
			}
			results <- resp.Confirmed
		}()
	}

	yes, done := 0, 0
	for done < len(members) {
		select {
		case confirmed := <-results:
			done++
			if confirmed {
				yes++
			}
			if yes >= need {
				return yes
			}
			if yes+(len(members)-done) < need {
				return yes
			}
		case <-ctx.Done():
			return yes
		}
	}
	return yes
}

// State returns a snapshot of the manager's bookkeeping plus the
// current membership. The hash and instant are read together, so a
// reader never sees one updated without the other.
func (m *Manager) State(ctx context.Context) (State, error) {
	members, err := m.registry.Members(ctx)
	if err != nil {
		return State{}, err
	}
	ids := make([]string, len(members))
	for i, mem := range members {
		ids[i] = mem.ID
	}

	m.mu.RLock()
	st := State{
		LastBlockHash: m.lastBlockHash,
		LastConsensus: m.lastConsensus,
		Validators:    ids,
		Timeout:       m.timeout,
	}
	m.mu.RUnlock()
	return st, nil
}
