package address_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/DADBSLabs/DADBS-TESTNET/address"
	"github.com/DADBSLabs/DADBS-TESTNET/types"
)

const sampleExternal = "DYw8jCTfwHNRJhhmFcbXvVDTqWMEVFBX6ZKUmG5CNSKK"

func TestDerive(t *testing.T) {
	internal, err := address.Derive(sampleExternal)
	if err != nil {
		t.Fatalf("Derive failed: %v", err)
	}
	s := string(internal)
	if !strings.HasPrefix(s, address.Prefix) {
		t.Errorf("missing prefix: %q", s)
	}
	if len(s) != len(address.Prefix)+64 {
		t.Errorf("length = %d, want %d", len(s), len(address.Prefix)+64)
	}
	for i, c := range s[len(address.Prefix):] {
		if !('0' <= c && c <= '9' || 'a' <= c && c <= 'f') {
			t.Errorf("body[%d] = %q, want lowercase hex", i, c)
		}
	}
}

func TestDerive_Deterministic(t *testing.T) {
	a, err := address.Derive(sampleExternal)
	if err != nil {
		t.Fatal(err)
	}
	b, err := address.Derive(sampleExternal)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Fatalf("Derive not deterministic: %q vs %q", a, b)
	}
}

func TestDerive_Distinct(t *testing.T) {
	other := types.ExternalAddress(sampleExternal[:43] + "L")
	a, err := address.Derive(sampleExternal)
	if err != nil {
		t.Fatal(err)
	}
	b, err := address.Derive(other)
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Fatalf("distinct inputs derived the same address: %q", a)
	}
}

func TestDerive_Invalid(t *testing.T) {
	cases := []struct {
		name string
		in   types.ExternalAddress
	}{
		{"empty", ""},
		{"43 chars", types.ExternalAddress(sampleExternal[:43])},
		{"45 chars", types.ExternalAddress(sampleExternal + "x")},
		{"punctuation", types.ExternalAddress(sampleExternal[:42] + "!@")},
		{"space", types.ExternalAddress(sampleExternal[:43] + " ")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := address.Derive(tc.in)
			if err == nil {
				t.Fatalf("Derive(%q) succeeded, want FormatError", tc.in)
			}
			if _, ok := address.IsFormat(err); !ok {
				t.Fatalf("Derive error is %T, want *FormatError", err)
			}
		})
	}
}

func TestParse(t *testing.T) {
	valid := address.Prefix + "1234567890abcdef1234567890abcdef1234567890abcdef1234567890abcdef"
	got, err := address.Parse(valid)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", valid, err)
	}
	if string(got) != valid {
		t.Errorf("Parse returned %q, want %q", got, valid)
	}
}

func TestParse_Invalid(t *testing.T) {
	body64 := "1234567890abcdef1234567890abcdef1234567890abcdef1234567890abcdef"
	cases := []struct {
		name string
		in   string
	}{
		{"wrong prefix", "xx" + body64},
		{"no prefix", body64},
		{"short body", address.Prefix + "1234567890abcdef1234567890abcdef"},
		{"long body", address.Prefix + body64 + "ab"},
		{"non-hex digit", address.Prefix + body64[:63] + "g"},
		{"uppercase digit", address.Prefix + strings.ToUpper(body64)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := address.Parse(tc.in)
			if err == nil {
				t.Fatalf("Parse(%q) succeeded, want FormatError", tc.in)
			}
			f, ok := address.IsFormat(err)
			if !ok {
				t.Fatalf("Parse error is %T, want *FormatError", err)
			}
			if f.Reason == "" {
				t.Error("FormatError.Reason is empty")
			}
		})
	}
}

func TestDeriveParseRoundTrip(t *testing.T) {
	internal, err := address.Derive(sampleExternal)
	if err != nil {
		t.Fatal(err)
	}
	parsed, err := address.Parse(string(internal))
	if err != nil {
		t.Fatalf("Parse rejected a derived address: %v", err)
	}
	if parsed != internal {
		t.Fatalf("round trip changed address: %q vs %q", parsed, internal)
	}
}

func TestFromBytes(t *testing.T) {
	// 32 bytes of 0xFF always encode to exactly 44 base58 digits.
	ext, err := address.FromBytes(bytes.Repeat([]byte{0xFF}, 32))
	if err != nil {
		t.Fatalf("FromBytes failed: %v", err)
	}
	if len(ext) != address.ExternalLength {
		t.Errorf("length = %d, want %d", len(ext), address.ExternalLength)
	}
	if _, err := address.Derive(ext); err != nil {
		t.Errorf("Derive rejected FromBytes output: %v", err)
	}
}

func TestFromBytes_Invalid(t *testing.T) {
	// Wrong key size.
	if _, err := address.FromBytes(make([]byte, 16)); err == nil {
		t.Error("FromBytes accepted a 16-byte key")
	}
	// All-zero keys encode to 32 '1' digits, far short of 44.
	if _, err := address.FromBytes(make([]byte, 32)); err == nil {
		t.Error("FromBytes accepted a key that encodes short")
	}
}
