package store

import (
	"fmt"

	"github.com/DADBSLabs/DADBS-TESTNET/types"

	"github.com/blockberries/cramberry/pkg/cramberry"
)

// encodeAccount renders an account row with a leading version byte
// so the row layout can evolve independently of module data.
func encodeAccount(acct types.Account) ([]byte, error) {
	body, err := cramberry.Marshal(acct)
	if err != nil {
		return nil, fmt.Errorf("store: encode account: %w", err)
	}
	return append([]byte{accountVersion}, body...), nil
}

func decodeAccount(data []byte) (types.Account, error) {
	if len(data) == 0 {
		return types.Account{}, fmt.Errorf("store: empty account row")
	}
	if data[0] != accountVersion {
		return types.Account{}, fmt.Errorf("store: unknown account row version %d", data[0])
	}
	var acct types.Account
	if err := cramberry.Unmarshal(data[1:], &acct); err != nil {
		return types.Account{}, fmt.Errorf("store: decode account: %w", err)
	}
	return acct, nil
}
