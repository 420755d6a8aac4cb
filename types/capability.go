package types

import "strings"

// Capabilities is a bitfield declaring which optional interfaces
// the validator supports.
type Capabilities uint8

const (
	CapGeneration Capabilities = 1 << iota // 0b0001
	CapStakeQuery                          // 0b0010
)

// Has returns true if all bits in cap are set.
func (c Capabilities) Has(cap Capabilities) bool {
	return c&cap == cap
}

// String returns a human-readable representation.
func (c Capabilities) String() string {
	var caps []string
	if c.Has(CapGeneration) {
		caps = append(caps, "Generation")
	}
	if c.Has(CapStakeQuery) {
		caps = append(caps, "StakeQuery")
	}
	if len(caps) == 0 {
		return "none"
	}
	return strings.Join(caps, "|")
}
