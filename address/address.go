// Package address converts between the 44-character external
// address form and the internal "dadbs" form used as a storage key.
package address

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/DADBSLabs/DADBS-TESTNET/types"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/blake2b"
)

const (
	// Prefix marks every internal address.
	Prefix = "dadbs"
	// ExternalLength is the pinned width of an external address.
	ExternalLength = 44
	// KeySize is the raw public key length FromBytes encodes.
	KeySize = 32

	rounds     = 4
	bodyLength = 64
)

// FormatError reports a malformed address. Derive and Parse return
// it for every rejection, so callers can branch on the class of
// failure without string matching.
type FormatError struct {
	Address string
	Reason  string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid address %q: %s", e.Address, e.Reason)
}

// IsFormat checks whether an error is a FormatError and returns it.
func IsFormat(err error) (*FormatError, bool) {
	var f *FormatError
	if errors.As(err, &f) {
		return f, true
	}
	return nil, false
}

// Derive converts an external address into its internal form.
//
// The derivation runs four DJB2 rounds. Round 0 hashes the external
// address with "0" appended; each later round hashes the previous
// round's hex output with the round index appended. The four
// 16-digit hex outputs are concatenated and prefixed with "dadbs".
// The same input always yields the same output.
func Derive(ext types.ExternalAddress) (types.InternalAddress, error) {
	s := string(ext)
	if len(s) != ExternalLength || !alphanumeric(s) {
		return "", &FormatError{
			Address: s,
			Reason:  fmt.Sprintf("must be %d alphanumeric characters", ExternalLength),
		}
	}

	var body strings.Builder
	body.Grow(bodyLength)
	prev := s
	for i := 0; i < rounds; i++ {
		sum := djb2(prev + strconv.Itoa(i))
		hex := fmt.Sprintf("%016x", sum)
		body.WriteString(hex)
		prev = hex
	}
	return types.InternalAddress(Prefix + body.String()), nil
}

// Parse validates an internal address string: the "dadbs" prefix
// followed by exactly 64 lowercase hex digits. Uppercase digits are
// rejected so every stored address has one canonical spelling.
func Parse(s string) (types.InternalAddress, error) {
	if !strings.HasPrefix(s, Prefix) {
		return "", &FormatError{Address: s, Reason: "missing dadbs prefix"}
	}
	body := s[len(Prefix):]
	if len(body) != bodyLength {
		return "", &FormatError{
			Address: s,
			Reason:  fmt.Sprintf("must be %d hex digits after prefix", bodyLength),
		}
	}
	for i := 0; i < len(body); i++ {
		if !lowerHex(body[i]) {
			return "", &FormatError{Address: s, Reason: "body must be lowercase hex"}
		}
	}
	return types.InternalAddress(s), nil
}

// FromBytes encodes a raw 32-byte public key as an external
// address. External addresses are pinned at 44 characters and not
// every key encodes to that width in base58, so keys that encode
// shorter are rejected rather than padded.
func FromBytes(key []byte) (types.ExternalAddress, error) {
	if len(key) != KeySize {
		return "", &FormatError{
			Address: fmt.Sprintf("%x", key),
			Reason:  fmt.Sprintf("key must be %d bytes", KeySize),
		}
	}
	enc := base58.Encode(key)
	if len(enc) != ExternalLength {
		return "", &FormatError{
			Address: enc,
			Reason:  fmt.Sprintf("key encodes to %d characters, need %d", len(enc), ExternalLength),
		}
	}
	return types.ExternalAddress(enc), nil
}

// FromPublicKey returns the external address of a signing key: the
// base58 encoding of the key's BLAKE2b-256 digest. Keys whose digest
// does not encode to the pinned width are rejected by FromBytes and
// cannot appear on chain.
func FromPublicKey(pub []byte) (types.ExternalAddress, error) {
	sum := blake2b.Sum256(pub)
	return FromBytes(sum[:])
}

// djb2 computes the DJB2 hash over s with uint64 wraparound. Every
// step is multiply and add, so reducing mod 2^64 at each step changes
// nothing about the final value.
func djb2(s string) uint64 {
	h := uint64(5381)
	for i := 0; i < len(s); i++ {
		h = (h << 5) + h + uint64(s[i])
	}
	return h
}

func alphanumeric(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z') {
			return false
		}
	}
	return true
}

func lowerHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f'
}
