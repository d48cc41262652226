package blockchain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Reference vectors from EIP-137.
func TestNamehash(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty name", "", "0x0000000000000000000000000000000000000000000000000000000000000000"},
		{"tld", "eth", "0x93cdeb708b7545dc668eb9280176169d1c33cfd8ed6f04690a0bcc88a93fc4ae"},
		{"second level", "foo.eth", "0xde9b09fd7c5f901e23a3f19fecc54828e9c848539801e86591bd9801b019f84f"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Namehash(tc.input).Hex())
		})
	}
}
