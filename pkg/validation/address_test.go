package validation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const validAddress = "9xQeWvG816bUx9EPjHmaT23yvVM2ZWbrrpZb9PusVFin"

func TestValidateAddress(t *testing.T) {
	require.NoError(t, ValidateAddress(validAddress))
	require.NoError(t, ValidateAddress("  "+validAddress+"  "))
	require.Error(t, ValidateAddress(""))
	require.Error(t, ValidateAddress("not-base58!"))
}

func TestParseAddress(t *testing.T) {
	key, err := ParseAddress(validAddress)
	require.NoError(t, err)
	require.Equal(t, validAddress, key.String())

	_, err = ParseAddress("zzzz")
	require.Error(t, err)
}

func TestShortenAddress(t *testing.T) {
	require.Equal(t, "9xQe..VFin", ShortenAddress(validAddress))
	require.Equal(t, "short", ShortenAddress("short"))
}
