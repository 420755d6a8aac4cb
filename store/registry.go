package store

import (
	"context"
	"fmt"
	"sync"

	dadbs "github.com/DADBSLabs/DADBS-TESTNET"
	"github.com/DADBSLabs/DADBS-TESTNET/address"
	"github.com/DADBSLabs/DADBS-TESTNET/consensus"
	"github.com/DADBSLabs/DADBS-TESTNET/stake"
	"github.com/DADBSLabs/DADBS-TESTNET/types"

	"github.com/dgraph-io/badger"
	lru "github.com/hashicorp/golang-lru"
	"go.uber.org/zap"
)

// RegisterEndpoint records where a stake owner's validator
// listens. The entry only yields consensus membership while the
// owner holds an active stake meeting the minimum.
func (s *Store) RegisterEndpoint(owner types.ExternalAddress, endpoint string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(dirPrefix+string(owner)), []byte(endpoint))
	})
}

// DeregisterEndpoint removes a validator directory entry.
func (s *Store) DeregisterEndpoint(owner types.ExternalAddress) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(dirPrefix + string(owner)))
	})
}

// ActiveValidators lists directory entries backed by an active
// stake meeting the minimum, weighted by the staked amount.
// Entries with corrupt or missing stake state are skipped, not
// fatal.
func (s *Store) ActiveValidators() ([]types.ValidatorInfo, error) {
	var out []types.ValidatorInfo
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(dirPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		st := &storeTxn{txn: txn}
		for it.Rewind(); it.ValidForPrefix(opts.Prefix); it.Next() {
			item := it.Item()
			owner := types.ExternalAddress(item.KeyCopy(nil)[len(dirPrefix):])
			endpoint, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}

			rec, ok := s.stakeFor(st, owner)
			if !ok || !rec.Active || rec.Amount < stake.MinimumStake {
				continue
			}
			out = append(out, types.ValidatorInfo{
				Address:  owner,
				Weight:   rec.Amount,
				Endpoint: string(endpoint),
				Active:   true,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// stakeFor resolves a directory owner to its stake record inside
// an open transaction.
func (s *Store) stakeFor(st stake.Txn, owner types.ExternalAddress) (types.StakeRecord, bool) {
	addr, err := address.Derive(owner)
	if err != nil {
		s.log.Warn("directory entry with bad owner address",
			zap.String("owner", string(owner)), zap.Error(err))
		return types.StakeRecord{}, false
	}
	acct, err := st.Account(addr)
	if err != nil {
		return types.StakeRecord{}, false
	}
	if acct.Module != stake.ModuleName {
		return types.StakeRecord{}, false
	}
	rec, err := stake.DecodeRecord(acct.Data)
	if err != nil {
		s.log.Warn("stake account with corrupt record",
			zap.String("account", string(addr)), zap.Error(err))
		return types.StakeRecord{}, false
	}
	return rec, true
}

// Dialer opens a validator connection for an endpoint.
type Dialer func(ctx context.Context, endpoint string) (dadbs.Connection, error)

// LedgerRegistry derives consensus membership from the stake
// ledger: every directory entry with a sufficient active stake is
// a member. Connections are dialed lazily and pooled, so an
// unreachable validator still counts toward the set size and shows
// up as a non-confirmation rather than shrinking the quorum
// threshold.
type LedgerRegistry struct {
	store *Store
	dial  Dialer
	log   *zap.Logger

	mu    sync.Mutex
	conns *lru.Cache
}

// NewLedgerRegistry creates a registry over the store. maxConns
// bounds the pooled connections; the least recently used one is
// closed on overflow.
func NewLedgerRegistry(st *Store, dial Dialer, maxConns int, logger *zap.Logger) (*LedgerRegistry, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &LedgerRegistry{store: st, dial: dial, log: logger}
	cache, err := lru.NewWithEvict(maxConns, func(key, value interface{}) {
		if conn, ok := value.(dadbs.Connection); ok {
			if err := conn.Close(); err != nil {
				logger.Warn("closing evicted validator connection",
					zap.String("endpoint", key.(string)), zap.Error(err))
			}
		}
	})
	if err != nil {
		return nil, fmt.Errorf("store: connection cache: %w", err)
	}
	r.conns = cache
	return r, nil
}

// Members implements consensus.Registry.
func (r *LedgerRegistry) Members(ctx context.Context) ([]consensus.Member, error) {
	infos, err := r.store.ActiveValidators()
	if err != nil {
		return nil, err
	}
	members := make([]consensus.Member, len(infos))
	for i, info := range infos {
		members[i] = consensus.Member{
			ID:   string(info.Address),
			Conn: &pooledConn{registry: r, endpoint: info.Endpoint},
		}
	}
	return members, nil
}

// connect returns the pooled connection for endpoint, dialing on
// first use. A fresh connection is announced with Info before it is
// pooled, honoring the boundary's call-order guarantee and making
// the peer's capabilities known.
func (r *LedgerRegistry) connect(ctx context.Context, endpoint string) (dadbs.Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cached, ok := r.conns.Get(endpoint); ok {
		return cached.(dadbs.Connection), nil
	}
	conn, err := r.dial(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("store: dial %s: %w", endpoint, err)
	}
	info, err := conn.Info(ctx, types.RequestInfo{ProtocolVersion: dadbs.ProtocolVersion})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("store: announce to %s: %w", endpoint, err)
	}
	r.log.Debug("validator connected",
		zap.String("endpoint", endpoint),
		zap.String("node_id", info.NodeID))
	r.conns.Add(endpoint, conn)
	return conn, nil
}

// cached returns the pooled connection if one is already open.
func (r *LedgerRegistry) cached(endpoint string) (dadbs.Connection, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.conns.Get(endpoint); ok {
		return v.(dadbs.Connection), true
	}
	return nil, false
}

// Close closes every pooled connection.
func (r *LedgerRegistry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns.Purge()
	return nil
}

var _ consensus.Registry = (*LedgerRegistry)(nil)

// pooledConn defers dialing until first use. Query failures,
// including failed dials, surface as errors the consensus manager
// counts as non-confirmations.
type pooledConn struct {
	registry *LedgerRegistry
	endpoint string
}

func (c *pooledConn) Info(ctx context.Context, req types.RequestInfo) (types.ResponseInfo, error) {
	conn, err := c.registry.connect(ctx, c.endpoint)
	if err != nil {
		return types.ResponseInfo{}, err
	}
	return conn.Info(ctx, req)
}

func (c *pooledConn) ConfirmTransaction(ctx context.Context, req types.RequestConfirm) (types.ResponseConfirm, error) {
	conn, err := c.registry.connect(ctx, c.endpoint)
	if err != nil {
		return types.ResponseConfirm{}, err
	}
	return conn.ConfirmTransaction(ctx, req)
}

func (c *pooledConn) Capabilities() types.Capabilities {
	if conn, ok := c.registry.cached(c.endpoint); ok {
		return conn.Capabilities()
	}
	return 0
}

func (c *pooledConn) AsGenerator() dadbs.Generator {
	if conn, ok := c.registry.cached(c.endpoint); ok {
		return conn.AsGenerator()
	}
	return nil
}

func (c *pooledConn) AsStakeQuerier() dadbs.StakeQuerier {
	if conn, ok := c.registry.cached(c.endpoint); ok {
		return conn.AsStakeQuerier()
	}
	return nil
}

// Close is a no-op: the registry owns the pooled connection.
func (c *pooledConn) Close() error { return nil }

var _ dadbs.Connection = (*pooledConn)(nil)
