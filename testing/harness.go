package dadbstest

import (
	"context"
	"crypto/rand"
	"testing"
	"time"

	dadbs "github.com/DADBSLabs/DADBS-TESTNET"
	"github.com/DADBSLabs/DADBS-TESTNET/address"
	"github.com/DADBSLabs/DADBS-TESTNET/local"
	"github.com/DADBSLabs/DADBS-TESTNET/types"

	"github.com/cloudflare/circl/sign/mldsa/mldsa44"
)

// Harness drives a validator connection with fatal-on-error
// wrappers, so tests read as straight-line protocol conversations.
type Harness struct {
	t    *testing.T
	conn dadbs.Connection
}

// NewHarness creates a harness over an in-process connection to v.
func NewHarness(t *testing.T, v dadbs.Validator) *Harness {
	t.Helper()
	return NewConnectionHarness(t, local.NewConnection(v, nil))
}

// NewConnectionHarness creates a harness over an existing
// connection, for driving remote transports. The harness closes the
// connection when the test ends.
func NewConnectionHarness(t *testing.T, conn dadbs.Connection) *Harness {
	t.Helper()
	t.Cleanup(func() { conn.Close() })
	return &Harness{t: t, conn: conn}
}

// Connection returns the underlying connection for direct access.
func (h *Harness) Connection() dadbs.Connection {
	return h.conn
}

// Announce performs the identity handshake.
func (h *Harness) Announce() types.ResponseInfo {
	h.t.Helper()
	resp, err := h.conn.Info(context.Background(), types.RequestInfo{
		ProtocolVersion: dadbs.ProtocolVersion,
	})
	if err != nil {
		h.t.Fatalf("Info failed: %v", err)
	}
	return resp
}

// Confirm submits a transaction for confirmation.
func (h *Harness) Confirm(tx types.Transaction) types.ResponseConfirm {
	h.t.Helper()
	resp, err := h.conn.ConfirmTransaction(context.Background(), types.RequestConfirm{Tx: tx})
	if err != nil {
		h.t.Fatalf("ConfirmTransaction failed: %v", err)
	}
	return resp
}

// MustConfirm asserts that a transaction is confirmed.
func (h *Harness) MustConfirm(tx types.Transaction) {
	h.t.Helper()
	if resp := h.Confirm(tx); !resp.Confirmed {
		h.t.Fatalf("expected confirmation, declined: %s", resp.Reason)
	}
}

// MustDecline asserts that a transaction is declined and returns the
// verdict so the reason can be inspected.
func (h *Harness) MustDecline(tx types.Transaction) types.ResponseConfirm {
	h.t.Helper()
	resp := h.Confirm(tx)
	if resp.Confirmed {
		h.t.Fatal("expected decline, got confirmation")
	}
	if resp.Reason == "" {
		h.t.Error("declined without a reason")
	}
	return resp
}

// Generate runs the text-generation capability.
func (h *Harness) Generate(prompt string, maxTokens uint32) types.ResponseGenerate {
	h.t.Helper()
	gen := h.conn.AsGenerator()
	if gen == nil {
		h.t.Fatal("connection has no generation capability")
	}
	resp, err := gen.Generate(context.Background(), types.RequestGenerate{
		Prompt:    prompt,
		MaxTokens: maxTokens,
	})
	if err != nil {
		h.t.Fatalf("Generate failed: %v", err)
	}
	return resp
}

// QueryStake looks up the stake record for owner.
func (h *Harness) QueryStake(owner types.ExternalAddress) types.ResponseStake {
	h.t.Helper()
	sq := h.conn.AsStakeQuerier()
	if sq == nil {
		h.t.Fatal("connection has no stake-query capability")
	}
	resp, err := sq.QueryStake(context.Background(), types.RequestStake{Owner: owner})
	if err != nil {
		h.t.Fatalf("QueryStake failed: %v", err)
	}
	return resp
}

// --- Fixture Factories ---

// GenerateKey generates a signing key whose public key has a chain
// address. Roughly one key in sixty encodes short, so retry.
func GenerateKey(t *testing.T) (*mldsa44.PrivateKey, types.ExternalAddress) {
	t.Helper()
	for i := 0; i < 64; i++ {
		pub, priv, err := mldsa44.GenerateKey(rand.Reader)
		if err != nil {
			t.Fatalf("GenerateKey failed: %v", err)
		}
		if addr, err := address.FromPublicKey(pub.Bytes()); err == nil {
			return priv, addr
		}
	}
	t.Fatal("no addressable key in 64 attempts")
	return nil, ""
}

// SignedTransaction builds and signs a transaction with the given
// payload and timestamp.
func SignedTransaction(t *testing.T, priv *mldsa44.PrivateKey, payload []byte, ts time.Time) types.Transaction {
	t.Helper()
	tx := types.Transaction{
		Payload:   payload,
		Timestamp: types.TimeToTimestamp(ts),
	}
	if err := tx.Sign(priv); err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	return tx
}

// MakeTransaction builds a freshly-keyed, freshly-timestamped signed
// transaction.
func MakeTransaction(t *testing.T) types.Transaction {
	t.Helper()
	priv, _ := GenerateKey(t)
	return SignedTransaction(t, priv, []byte("transfer 100 to bob"), time.Now())
}

// RandomExternalAddress returns a valid random external address.
func RandomExternalAddress(t *testing.T) types.ExternalAddress {
	t.Helper()
	for i := 0; i < 64; i++ {
		var seed [32]byte
		if _, err := rand.Read(seed[:]); err != nil {
			t.Fatalf("reading randomness: %v", err)
		}
		if addr, err := address.FromBytes(seed[:]); err == nil {
			return addr
		}
	}
	t.Fatal("no valid address in 64 attempts")
	return ""
}
