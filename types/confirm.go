package types

// RequestConfirm asks a validator whether it confirms a
// transaction.
type RequestConfirm struct {
	Tx Transaction `cramberry:"1"`
}

// ResponseConfirm is the validator's verdict on a transaction.
type ResponseConfirm struct {
	Confirmed bool `cramberry:"1"`
	// Why the validator rejected, empty when confirmed.
	Reason string `cramberry:"2"`
	// NodeID of the responding validator, for audit trails.
	NodeID string `cramberry:"3"`
}
