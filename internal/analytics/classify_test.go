package analytics

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func net(months map[int]int64) map[int]decimal.Decimal {
	out := make(map[int]decimal.Decimal, len(months))
	for m, v := range months {
		out[m] = decimal.NewFromInt(v)
	}
	return out
}

func TestMonthlyBalances(t *testing.T) {
	balances := monthlyBalances(decimal.NewFromInt(10), net(map[int]int64{1: 5, 3: -15}))

	assert.True(t, balances[0].Equal(decimal.NewFromInt(15)))
	assert.True(t, balances[1].Equal(decimal.NewFromInt(15)))
	assert.True(t, balances[2].IsZero())
	assert.True(t, balances[11].IsZero())
}

func TestClassifyRotation(t *testing.T) {
	tests := []struct {
		name    string
		preYear int64
		months  map[int]int64
		want    string
	}{
		{"never stocked", 0, nil, "Activo"},
		{"carried stock with no movement", 50, nil, "Obsoleto"},
		{"drained in january then flat at zero", 10, map[int]int64{1: -10}, "Obsoleto"},
		{"flat positive after early movement", 0, map[int]int64{1: 5, 2: 5}, "Estancado"},
		{"movement in the last quarter", 0, map[int]int64{1: 5, 12: -5}, "Activo"},
		{"steady churn", 20, map[int]int64{2: 5, 5: -3, 9: 4, 11: -6}, "Activo"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pre := decimal.NewFromInt(tt.preYear)
			got := classifyRotation(pre, monthlyBalances(pre, net(tt.months)))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyRotation_NegativeFlatYearIsActive(t *testing.T) {
	// A flat negative balance matches neither the obsolete nor the
	// stagnant rules.
	pre := decimal.NewFromInt(-5)
	got := classifyRotation(pre, monthlyBalances(pre, nil))
	assert.Equal(t, "Activo", got)
}

func TestIsHighRotation(t *testing.T) {
	flat := monthlyBalances(decimal.NewFromInt(10), nil)
	assert.False(t, isHighRotation(flat))

	oneChange := monthlyBalances(decimal.Zero, net(map[int]int64{6: 5}))
	assert.False(t, isHighRotation(oneChange))

	twoChanges := monthlyBalances(decimal.Zero, net(map[int]int64{3: 5, 8: -2}))
	assert.True(t, isHighRotation(twoChanges))
}
