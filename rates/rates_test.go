package rates

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeCap(t *testing.T) {
	tests := []struct {
		name          string
		targetFiat    uint64
		multiplierBps uint64
		rate          Rate
		want          uint64
	}{
		// 1,000,000 fiat at 120% over rate 200,000 = 6.0 settlement units.
		{"reference conversion", 1_000_000, 12000, Rate{FiatPerUnit: 200_000, SettlementDecimals: 8}, 600_000_000},
		{"no decimals", 1_000_000, 12000, Rate{FiatPerUnit: 200_000}, 6},
		{"100 percent multiplier", 500, 10000, Rate{FiatPerUnit: 100, SettlementDecimals: 2}, 500},
		{"floors the quotient", 1000, 10000, Rate{FiatPerUnit: 3}, 333},
		{"tiny target rounds down to zero", 1, 10000, Rate{FiatPerUnit: 1000}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeCap(tt.targetFiat, tt.multiplierBps, tt.rate)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComputeCap_Errors(t *testing.T) {
	_, err := ComputeCap(1000, 12000, Rate{FiatPerUnit: 0})
	assert.ErrorIs(t, err, ErrInvalidRate)

	_, err = ComputeCap(1000, 12000, Rate{FiatPerUnit: 1, SettlementDecimals: 19})
	assert.ErrorIs(t, err, ErrInvalidRate)

	_, err = ComputeCap(1000, 0, Rate{FiatPerUnit: 1})
	assert.ErrorIs(t, err, ErrInvalidMultiplier)

	_, err = ComputeCap(math.MaxUint64, 12000, Rate{FiatPerUnit: 1, SettlementDecimals: 18})
	assert.ErrorIs(t, err, ErrCapOverflow)
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		amount   uint64
		decimals uint32
		want     string
	}{
		{600_000_000, 8, "6"},
		{650_000_000, 8, "6.5"},
		{1, 8, "0.00000001"},
		{123_456_789, 8, "1.23456789"},
		{42, 0, "42"},
		{0, 8, "0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatAmount(tt.amount, tt.decimals), "amount %d", tt.amount)
	}
}
