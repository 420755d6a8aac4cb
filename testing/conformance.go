package dadbstest

import (
	"context"
	"sync"
	"testing"
	"time"

	dadbs "github.com/DADBSLabs/DADBS-TESTNET"
	"github.com/DADBSLabs/DADBS-TESTNET/types"
)

// RunConformanceSuite runs a standard suite against a validator
// connection to verify correct boundary behavior: announce
// semantics, capability truthfulness, and the unconditional
// signature and freshness gates.
//
// The factory function should return a fresh connection for each
// test. It works for any transport; policy rejections must arrive
// as verdicts, not errors.
func RunConformanceSuite(t *testing.T, factory func() dadbs.Connection) {
	t.Helper()

	announce := func(t *testing.T, conn dadbs.Connection) types.ResponseInfo {
		t.Helper()
		resp, err := conn.Info(context.Background(), types.RequestInfo{
			ProtocolVersion: dadbs.ProtocolVersion,
		})
		if err != nil {
			t.Fatalf("Info failed: %v", err)
		}
		return resp
	}

	t.Run("announce_reports_identity", func(t *testing.T) {
		conn := factory()
		defer conn.Close()
		resp := announce(t, conn)
		if resp.NodeID == "" {
			t.Error("announce returned an empty node ID")
		}
	})

	t.Run("announce_is_repeatable", func(t *testing.T) {
		conn := factory()
		defer conn.Close()
		first := announce(t, conn)
		second := announce(t, conn)
		if second.NodeID != first.NodeID {
			t.Errorf("node ID changed across announces: %q then %q", first.NodeID, second.NodeID)
		}
		if second.Capabilities != first.Capabilities {
			t.Errorf("capabilities changed across announces: %s then %s", first.Capabilities, second.Capabilities)
		}
	})

	t.Run("capabilities_match_interfaces", func(t *testing.T) {
		conn := factory()
		defer conn.Close()
		resp := announce(t, conn)

		if got := conn.Capabilities(); got != resp.Capabilities {
			t.Errorf("Capabilities() = %s, announce said %s", got, resp.Capabilities)
		}
		if hasGen := conn.AsGenerator() != nil; hasGen != resp.Capabilities.Has(types.CapGeneration) {
			t.Errorf("AsGenerator nil-ness disagrees with declared capabilities %s", resp.Capabilities)
		}
		if hasSQ := conn.AsStakeQuerier() != nil; hasSQ != resp.Capabilities.Has(types.CapStakeQuery) {
			t.Errorf("AsStakeQuerier nil-ness disagrees with declared capabilities %s", resp.Capabilities)
		}
	})

	t.Run("fresh_transaction_gets_verdict", func(t *testing.T) {
		conn := factory()
		defer conn.Close()
		announce(t, conn)

		resp, err := conn.ConfirmTransaction(context.Background(), types.RequestConfirm{
			Tx: MakeTransaction(t),
		})
		if err != nil {
			t.Fatalf("ConfirmTransaction failed: %v", err)
		}
		if !resp.Confirmed && resp.Reason == "" {
			t.Error("declined without a reason")
		}
	})

	t.Run("declines_tampered_signature", func(t *testing.T) {
		conn := factory()
		defer conn.Close()
		announce(t, conn)

		tx := MakeTransaction(t)
		tx.Payload = append(tx.Payload, '!')
		resp, err := conn.ConfirmTransaction(context.Background(), types.RequestConfirm{Tx: tx})
		if err != nil {
			t.Fatalf("ConfirmTransaction failed: %v", err)
		}
		if resp.Confirmed {
			t.Error("tampered transaction was confirmed")
		}
		if resp.Reason == "" {
			t.Error("declined without a reason")
		}
	})

	t.Run("declines_stale_timestamp", func(t *testing.T) {
		conn := factory()
		defer conn.Close()
		info := announce(t, conn)

		timeout := info.Params.ConsensusTimeout.ToGo()
		if timeout <= 0 {
			timeout = 5 * time.Second
		}
		priv, _ := GenerateKey(t)
		tx := SignedTransaction(t, priv, []byte("late"), time.Now().Add(-timeout-time.Minute))

		resp, err := conn.ConfirmTransaction(context.Background(), types.RequestConfirm{Tx: tx})
		if err != nil {
			t.Fatalf("ConfirmTransaction failed: %v", err)
		}
		if resp.Confirmed {
			t.Error("stale transaction was confirmed")
		}
	})

	t.Run("concurrent_confirmations", func(t *testing.T) {
		conn := factory()
		defer conn.Close()
		announce(t, conn)

		tx := MakeTransaction(t)
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := conn.ConfirmTransaction(context.Background(), types.RequestConfirm{Tx: tx})
				if err != nil {
					t.Errorf("concurrent ConfirmTransaction failed: %v", err)
				}
			}()
		}
		wg.Wait()
	})
}
