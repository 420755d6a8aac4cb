package types

// RequestInfo is sent by the consensus manager when it first
// connects to a validator.
type RequestInfo struct {
	// Protocol version the manager speaks.
	ProtocolVersion uint32 `cramberry:"1"`
}

// ResponseInfo is the validator's reply, reporting its identity
// and capabilities.
type ResponseInfo struct {
	// Stable identifier of the validator node.
	NodeID string `cramberry:"1"`
	// Software version string, informational only.
	SoftwareVersion string `cramberry:"2"`
	// Capabilities this validator supports. Drives manager behavior.
	Capabilities Capabilities `cramberry:"3"`
	// Parameters the validator applies when confirming.
	Params NodeParams `cramberry:"4"`
}
