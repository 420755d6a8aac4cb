package types

// NodeParams contains the validation parameters a node applies
// when confirming transactions.
type NodeParams struct {
	// How stale a transaction timestamp may be before the node
	// rejects it.
	ConsensusTimeout Duration `cramberry:"1"`
	// Smallest stake the node accepts as a delegation.
	MinimumStake uint64 `cramberry:"2"`
}
