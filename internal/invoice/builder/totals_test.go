package builder

import (
	"testing"

	"github.com/portpak/portpak/internal/currency"
	"github.com/portpak/portpak/internal/invoice/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func usdItem(itemType domain.ItemType, qty, unitPrice float64) domain.LineItem {
	return domain.LineItem{
		Type:      itemType,
		Quantity:  decimal.NewFromFloat(qty),
		UnitPrice: decimal.NewFromFloat(unitPrice),
		Currency:  "USD",
	}
}

func TestComputeTotals(t *testing.T) {
	items := []domain.LineItem{
		usdItem(domain.ItemTypeShipping, 4, 2.50),
		usdItem(domain.ItemTypeTax, 1, 15.00),
	}

	totals, err := ComputeTotals(items, "USD", currency.DefaultSettings())
	require.NoError(t, err)
	assert.Equal(t, "25", totals.Subtotal.String())
	assert.Equal(t, "15", totals.TaxAmount.String())
	assert.Equal(t, "40", totals.Total.String())
}

func TestComputeTotalsTaxIsolation(t *testing.T) {
	base := []domain.LineItem{usdItem(domain.ItemTypeShipping, 1, 10)}

	before, err := ComputeTotals(base, "USD", currency.DefaultSettings())
	require.NoError(t, err)

	withNonTax, err := ComputeTotals(append(base, usdItem(domain.ItemTypeCustom, 1, 50)), "USD", currency.DefaultSettings())
	require.NoError(t, err)
	assert.True(t, withNonTax.TaxAmount.Equal(before.TaxAmount),
		"non-tax item changed tax amount")

	withTax, err := ComputeTotals(append(base, usdItem(domain.ItemTypeTax, 1, 7)), "USD", currency.DefaultSettings())
	require.NoError(t, err)
	assert.Equal(t, "7", withTax.TaxAmount.Sub(before.TaxAmount).String())
}

func TestComputeTotalsConvertsCurrencies(t *testing.T) {
	items := []domain.LineItem{
		usdItem(domain.ItemTypeShipping, 1, 100),
		{
			Type:      domain.ItemTypeDuty,
			Quantity:  decimal.NewFromInt(1),
			UnitPrice: decimal.NewFromInt(15850),
			Currency:  "JMD",
		},
	}

	totals, err := ComputeTotals(items, "USD", currency.DefaultSettings())
	require.NoError(t, err)
	assert.Equal(t, "200", totals.Subtotal.String())
}

func TestComputeTotalsIdempotent(t *testing.T) {
	items := []domain.LineItem{
		usdItem(domain.ItemTypeShipping, 3, 2.33),
		usdItem(domain.ItemTypeTax, 1, 4.56),
	}

	first, err := ComputeTotals(items, "USD", currency.DefaultSettings())
	require.NoError(t, err)
	second, err := ComputeTotals(items, "USD", currency.DefaultSettings())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestComputeTotalsFailsOnMissingRate(t *testing.T) {
	items := []domain.LineItem{
		{
			Type:      domain.ItemTypeDuty,
			Quantity:  decimal.NewFromInt(1),
			UnitPrice: decimal.NewFromInt(1000),
			Currency:  "JMD",
		},
	}

	_, err := ComputeTotals(items, "USD", currency.Settings{BaseCurrency: "USD", TargetCurrency: "JMD"})
	assert.ErrorIs(t, err, currency.ErrConversionUnavailable)
}
