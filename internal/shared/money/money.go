package money

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxAmount is the largest value a NUMERIC(12,2) money column holds.
var MaxAmount = decimal.RequireFromString("9999999999.99")

var ErrInvalidAmount = errors.New("money: invalid amount")

// Parse accepts a positive amount with at most two decimals that fits
// MaxAmount.
func Parse(v string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(v))
	if err != nil {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	if !amount.IsPositive() || !amount.Equal(amount.Round(2)) || amount.GreaterThan(MaxAmount) {
		return decimal.Decimal{}, ErrInvalidAmount
	}
	return amount, nil
}
