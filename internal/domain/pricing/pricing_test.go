package pricing

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stayandpark/service-frontdesk/internal/domain"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestComputeFinalAmount_KnownValues(t *testing.T) {
	tests := []struct {
		name string
		base string
		pct  string
		want string
	}{
		{"hotel ten percent", "250.00", "10", "225.00"},
		{"garage no discount", "35.00", "0", "35.00"},
		{"full discount", "80.00", "100", "0.00"},
		{"fractional percent", "99.99", "12.5", "87.49"},
		{"half cent rounds to even down", "0.50", "1", "0.50"},
		{"half cent rounds to even up", "1.50", "1", "1.48"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeFinalAmount(dec(tt.base), dec(tt.pct))
			require.NoError(t, err)
			assert.True(t, dec(tt.want).Equal(got), "want %s got %s", tt.want, got)
			assert.Equal(t, tt.want, got.StringFixed(Places))
		})
	}
}

func TestComputeFinalAmount_BoundsProperty(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for i := 0; i < 2000; i++ {
		base := decimal.New(r.Int63n(1_000_001), -2) // 0.00 .. 10000.00
		pct := decimal.New(r.Int63n(10_001), -2)     // 0.00 .. 100.00

		got, err := ComputeFinalAmount(base, pct)
		require.NoError(t, err)
		assert.True(t, got.LessThanOrEqual(base), "final %s > base %s", got, base)
		assert.False(t, got.IsNegative(), "final %s < 0", got)

		noDiscount, err := ComputeFinalAmount(base, decimal.Zero)
		require.NoError(t, err)
		assert.True(t, noDiscount.Equal(base))
	}
}

func TestComputeFinalAmount_NegativeBase(t *testing.T) {
	_, err := ComputeFinalAmount(dec("-1"), dec("10"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestComputeFinalAmount_PercentOutOfRange(t *testing.T) {
	for _, pct := range []string{"-0.01", "-20", "100.01", "150"} {
		_, err := ComputeFinalAmount(dec("250"), dec(pct))
		assert.ErrorIs(t, err, domain.ErrValidation, pct)
	}
}

func TestDiscountAmount(t *testing.T) {
	assert.Equal(t, "25.00", DiscountAmount(dec("250"), dec("10")).StringFixed(Places))
}

func TestParseAmount(t *testing.T) {
	d, err := ParseAmount(" 250.00 ")
	require.NoError(t, err)
	assert.True(t, d.Equal(dec("250")))

	for _, raw := range []string{"", "abc", "12,50", "-3"} {
		_, err := ParseAmount(raw)
		assert.ErrorIs(t, err, domain.ErrValidation, raw)
	}
}

func TestParsePercent(t *testing.T) {
	d, err := ParsePercent("")
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	d, err = ParsePercent("7.5")
	require.NoError(t, err)
	assert.True(t, d.Equal(dec("7.5")))

	d, err = ParsePercent("100")
	require.NoError(t, err)
	assert.True(t, d.Equal(dec("100")))

	for _, raw := range []string{"ten", "-20", "150", "999.99"} {
		_, err = ParsePercent(raw)
		assert.ErrorIs(t, err, domain.ErrValidation, raw)
	}
}
