package currency

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Convert translates amount between the two currencies named in s.
// Identity conversions always succeed, even when the settings carry no
// usable rate. Any other pair outside base/target fails hard rather than
// passing the amount through untouched.
func Convert(amount decimal.Decimal, from, to string, s Settings) (decimal.Decimal, error) {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))

	if from == to {
		return amount, nil
	}

	if s.ExchangeRate <= 0 {
		return decimal.Zero, pairErr(ErrConversionUnavailable, from, to)
	}
	rate := decimal.NewFromFloat(s.ExchangeRate)

	switch {
	case from == s.BaseCurrency && to == s.TargetCurrency:
		return amount.Mul(rate).Round(2), nil
	case from == s.TargetCurrency && to == s.BaseCurrency:
		return amount.Div(rate).Round(2), nil
	default:
		return decimal.Zero, pairErr(ErrUnsupportedCurrencyPair, from, to)
	}
}

// RoundInvoiceTotal rounds a final invoice total to the cash increment
// customers actually pay in: nearest 100 for JMD, nearest 10 for USD.
// Other currencies are returned unchanged. Non-positive amounts round
// to zero.
func RoundInvoiceTotal(amount decimal.Decimal, code string) decimal.Decimal {
	if amount.Sign() <= 0 {
		return decimal.Zero
	}

	var increment decimal.Decimal
	switch strings.ToUpper(code) {
	case JMD:
		increment = decimal.NewFromInt(100)
	case USD:
		increment = decimal.NewFromInt(10)
	default:
		return amount
	}

	return amount.Div(increment).Round(0).Mul(increment)
}

// RoundToIncrement rounds amount to the nearest multiple of increment.
// A non-positive increment leaves the amount unchanged.
func RoundToIncrement(amount decimal.Decimal, increment float64) decimal.Decimal {
	if increment <= 0 {
		return amount
	}
	inc := decimal.NewFromFloat(increment)
	return amount.Div(inc).Round(0).Mul(inc)
}
