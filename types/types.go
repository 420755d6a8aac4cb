// Package types defines the core data types for the DADBS
// transaction validation subsystem.
//
// These are plain Go structs with cramberry struct tags for
// deterministic binary serialization. Transport concerns
// (gRPC codec registration) are handled in the transport packages.
package types

// Hash is a 32-byte cryptographic digest.
type Hash [32]byte

// ExternalAddress is a source-chain account identity: exactly 44
// ASCII alphanumeric characters, issued outside this system.
// Validation and derivation live in the address package.
type ExternalAddress string

// InternalAddress is the DADBS-namespaced identifier derived from an
// ExternalAddress: the "dadbs" prefix followed by 64 lowercase hex
// characters. It doubles as the storage key of module-owned accounts.
type InternalAddress string

// ModuleID identifies the program module that owns an account's
// storage. Modules verify ownership before touching account data.
type ModuleID string
