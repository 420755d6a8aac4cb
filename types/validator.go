package types

// ValidatorInfo describes one consensus participant as derived
// from its stake. The validator directory only lists entries whose
// stake meets the minimum, so Weight is always at least that.
type ValidatorInfo struct {
	// Owner address of the backing stake.
	Address ExternalAddress `cramberry:"1"`
	// Staked amount, used as voting weight.
	Weight uint64 `cramberry:"2"`
	// Network endpoint the validator listens on, host:port.
	Endpoint string `cramberry:"3"`
	// Inactive validators are excluded from the quorum set.
	Active bool `cramberry:"4"`
}
