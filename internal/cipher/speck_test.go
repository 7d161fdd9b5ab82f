package cipher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Golden vectors computed with the reference implementation. These pin the
// nonstandard key-word ordering: regressions here mean every previously
// issued token is orphaned.
func TestObfuscateMerchantIDGoldenVectors(t *testing.T) {
	vectors := map[string]string{
		"0000000000000000": "666b82b197ab8c40",
		"0123456789abcdef": "68f51db37e3081be",
		"a3f1c2d4e5b60718": "5317626129e2b865",
		"ffffffffffffffff": "26dab34e313d0919",
		"5e884898da280471": "f4f3c773ee4d7506",
		"8f14e45fceea167a": "798d51bb27c426b2",
	}

	for mid, want := range vectors {
		token, err := ObfuscateMerchantID(mid)
		require.NoError(t, err)
		assert.Equal(t, want, token, "mid %s", mid)
	}
}

func TestObfuscateMerchantIDDeterministic(t *testing.T) {
	first, err := ObfuscateMerchantID("a3f1c2d4e5b60718")
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		again, err := ObfuscateMerchantID("a3f1c2d4e5b60718")
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestObfuscateMerchantIDShape(t *testing.T) {
	token, err := ObfuscateMerchantID("00000000000000ff")
	require.NoError(t, err)
	assert.Len(t, token, 16)
	assert.Regexp(t, "^[0-9a-f]{16}$", token)
}

func TestObfuscateMerchantIDRejectsNonHex(t *testing.T) {
	_, err := ObfuscateMerchantID("not-a-merchant-id")
	assert.Error(t, err)
}

func TestDistinctIDsProduceDistinctTokens(t *testing.T) {
	a, err := ObfuscateMerchantID("0000000000000001")
	require.NoError(t, err)
	b, err := ObfuscateMerchantID("0000000000000002")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
