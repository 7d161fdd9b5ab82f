package directory

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"upi/internal/cipher"
	"upi/internal/registry"
	"upi/pkg/errors"
)

func TestResolveRoundTrip(t *testing.T) {
	reg := registry.New()
	dir := New(reg)

	hdfc := reg.RegisterBank("HDFC")
	icici := reg.RegisterBank("ICICI")

	midHDFC, err := hdfc.RegisterMerchant("Shop", "pw", "HDFC001", decimal.NewFromInt(100))
	require.NoError(t, err)
	require.NoError(t, dir.AddMerchant("HDFC", midHDFC))

	midICICI, err := icici.RegisterMerchant("Store", "pw", "ICICI002", decimal.NewFromInt(100))
	require.NoError(t, err)
	require.NoError(t, dir.AddMerchant("ICICI", midICICI))

	for bankName, mid := range map[string]string{"HDFC": midHDFC, "ICICI": midICICI} {
		token, err := cipher.ObfuscateMerchantID(mid)
		require.NoError(t, err)

		loc, err := dir.Resolve(token)
		require.NoError(t, err)
		assert.Equal(t, bankName, loc.BankName)
		assert.Equal(t, mid, loc.MerchantID)
	}
}

func TestResolveFallbackScan(t *testing.T) {
	reg := registry.New()
	dir := New(reg)

	// Registered directly with the bank, bypassing the index.
	hdfc := reg.RegisterBank("HDFC")
	mid, err := hdfc.RegisterMerchant("Shop", "pw", "HDFC001", decimal.Zero)
	require.NoError(t, err)

	token, err := cipher.ObfuscateMerchantID(mid)
	require.NoError(t, err)

	loc, err := dir.Resolve(token)
	require.NoError(t, err)
	assert.Equal(t, "HDFC", loc.BankName)
	assert.Equal(t, mid, loc.MerchantID)

	// Second resolve hits the backfilled index.
	loc, err = dir.Resolve(token)
	require.NoError(t, err)
	assert.Equal(t, mid, loc.MerchantID)
}

func TestResolveUnknownToken(t *testing.T) {
	reg := registry.New()
	dir := New(reg)
	reg.RegisterBank("HDFC")

	_, err := dir.Resolve("ffffffffffffffff")
	assert.ErrorIs(t, err, errors.ErrUnknownMerchantToken)
}
