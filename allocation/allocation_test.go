package allocation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllocate_Proportions(t *testing.T) {
	tests := []struct {
		name          string
		contributions []Contribution
		want          []uint64
	}{
		{"two claimants 60/40", []Contribution{
			{ClaimantID: "a", Amount: 600000},
			{ClaimantID: "b", Amount: 400000},
		}, []uint64{6000, 4000}},
		{"single claimant", []Contribution{
			{ClaimantID: "a", Amount: 1},
		}, []uint64{10000}},
		{"three-way tie gets drift on first", []Contribution{
			{ClaimantID: "a", Amount: 1},
			{ClaimantID: "b", Amount: 1},
			{ClaimantID: "c", Amount: 1},
		}, []uint64{3334, 3333, 3333}},
		{"uneven split", []Contribution{
			{ClaimantID: "a", Amount: 1},
			{ClaimantID: "b", Amount: 2},
			{ClaimantID: "c", Amount: 4},
		}, []uint64{1429, 2857, 5714}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := Allocate(tt.contributions)
			require.NoError(t, err)
			require.Len(t, table, len(tt.want))
			for i, want := range tt.want {
				assert.Equal(t, tt.contributions[i].ClaimantID, table[i].ClaimantID)
				assert.Equal(t, want, table[i].Shares, "claimant %s", table[i].ClaimantID)
			}
			assert.Equal(t, TotalShares, table.Sum())
			assert.NoError(t, table.Validate())
		})
	}
}

func TestAllocate_ConservationAcrossSkews(t *testing.T) {
	// Sum must be exactly 10000 regardless of how rounding falls.
	cases := [][]uint64{
		{1, 1, 1},
		{3, 3, 1},
		{7, 11, 13, 17, 19},
		{999999, 1},
		{1 << 40, 1 << 40, 1},
		{123456789, 987654321, 555555555},
	}
	for _, amounts := range cases {
		contributions := make([]Contribution, len(amounts))
		for i, a := range amounts {
			contributions[i] = Contribution{ClaimantID: string(rune('a' + i)), Amount: a}
		}
		table, err := Allocate(contributions)
		if err != nil {
			assert.ErrorIs(t, err, ErrDegenerateAllocation)
			continue
		}
		assert.Equal(t, TotalShares, table.Sum(), "amounts %v", amounts)
	}
}

func TestAllocate_DriftGoesToLargest(t *testing.T) {
	// 1/3 + 1/3 + 1/3 rounds to 3333 each; the +1 drift must land on the
	// largest contribution only, leaving the others untouched.
	table, err := Allocate([]Contribution{
		{ClaimantID: "small", Amount: 100},
		{ClaimantID: "big", Amount: 101},
		{ClaimantID: "other", Amount: 100},
	})
	require.NoError(t, err)

	small, _ := table.SharesOf("small")
	big, _ := table.SharesOf("big")
	other, _ := table.SharesOf("other")
	assert.Equal(t, small, other)
	assert.Greater(t, big, small)
	assert.Equal(t, TotalShares, small+big+other)
}

func TestAllocate_Errors(t *testing.T) {
	tests := []struct {
		name          string
		contributions []Contribution
		wantErr       error
	}{
		{"empty", nil, ErrNoContributions},
		{"zero amount", []Contribution{{ClaimantID: "a", Amount: 0}}, ErrNonPositiveAmount},
		{"duplicate claimant", []Contribution{
			{ClaimantID: "a", Amount: 1},
			{ClaimantID: "a", Amount: 2},
		}, ErrDuplicateClaimant},
		{"total overflow", []Contribution{
			{ClaimantID: "a", Amount: math.MaxUint64},
			{ClaimantID: "b", Amount: 1},
		}, ErrAmountOverflow},
		{"extreme skew rounds to zero", []Contribution{
			{ClaimantID: "whale", Amount: 10_000_000},
			{ClaimantID: "dust", Amount: 1},
		}, ErrDegenerateAllocation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Allocate(tt.contributions)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestShareTable_Validate(t *testing.T) {
	valid := ShareTable{{ClaimantID: "a", Shares: 6000}, {ClaimantID: "b", Shares: 4000}}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name    string
		table   ShareTable
		wantErr error
	}{
		{"empty", ShareTable{}, ErrNoContributions},
		{"bad sum", ShareTable{{ClaimantID: "a", Shares: 9999}}, ErrShareSumMismatch},
		{"zero share", ShareTable{{ClaimantID: "a", Shares: 10000}, {ClaimantID: "b", Shares: 0}}, ErrDegenerateAllocation},
		{"duplicate", ShareTable{{ClaimantID: "a", Shares: 5000}, {ClaimantID: "a", Shares: 5000}}, ErrDuplicateClaimant},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.table.Validate(), tt.wantErr)
		})
	}
}

func TestShareTable_SharesOf(t *testing.T) {
	table := ShareTable{{ClaimantID: "a", Shares: 6000}, {ClaimantID: "b", Shares: 4000}}

	shares, ok := table.SharesOf("b")
	assert.True(t, ok)
	assert.Equal(t, uint64(4000), shares)

	_, ok = table.SharesOf("missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"a", "b"}, table.ClaimantIDs())
}
