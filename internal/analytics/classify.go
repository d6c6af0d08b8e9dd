package analytics

import (
	"github.com/shopspring/decimal"

	"stockledger/internal/models"
)

// monthlyBalances builds the running balance for each month of the current
// calendar year, starting from the balance carried into January.
func monthlyBalances(balancePreYear decimal.Decimal, netByMonth map[int]decimal.Decimal) [12]decimal.Decimal {
	var balances [12]decimal.Decimal
	balance := balancePreYear
	for month := 1; month <= 12; month++ {
		balance = balance.Add(netByMonth[month])
		balances[month-1] = balance
	}
	return balances
}

// classifyRotation maps a year of running balances onto a rotation class.
// Rules are evaluated in order: a fully flat year at zero is active stock
// that never existed, a fully flat year above zero is obsolete, a flat
// last quarter above zero is stagnant, anything else rotates.
func classifyRotation(balancePreYear decimal.Decimal, balances [12]decimal.Decimal) string {
	allZero := true
	allEqual := true
	for i := range balances {
		if !balances[i].IsZero() {
			allZero = false
		}
		if !balances[i].Equal(balances[0]) {
			allEqual = false
		}
	}

	switch {
	case allZero && balancePreYear.IsZero():
		return models.RotationActive
	case allZero && balancePreYear.GreaterThan(decimal.Zero):
		return models.RotationObsolete
	case allEqual && balances[0].GreaterThan(decimal.Zero):
		return models.RotationObsolete
	case balances[11].Equal(balances[10]) && balances[10].Equal(balances[9]) &&
		balances[11].GreaterThan(decimal.Zero):
		return models.RotationStagnant
	default:
		return models.RotationActive
	}
}

// isHighRotation reports whether the running balance changed value at least
// twice across consecutive months.
func isHighRotation(balances [12]decimal.Decimal) bool {
	changes := 0
	for i := 1; i < len(balances); i++ {
		if !balances[i].Equal(balances[i-1]) {
			changes++
			if changes >= 2 {
				return true
			}
		}
	}
	return false
}
