package builder

import (
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/portpak/portpak/internal/currency"
	dutydomain "github.com/portpak/portpak/internal/dutyfee/domain"
	feedomain "github.com/portpak/portpak/internal/fee/domain"
	"github.com/portpak/portpak/internal/invoice/domain"
	parceldomain "github.com/portpak/portpak/internal/parcel/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shippingFee(id snowflake.ID, amount float64, cur string) feedomain.Fee {
	return feedomain.Fee{
		ID:                id,
		Name:              "Shipping per lb",
		Code:              "SHIP_LB",
		FeeType:           feedomain.FeeTypeShipping,
		CalculationMethod: feedomain.MethodPerWeight,
		Amount:            decimal.NewFromFloat(amount),
		Currency:          cur,
		IsActive:          true,
	}
}

func testParcel(id snowflake.ID, weight float64) parceldomain.Parcel {
	return parceldomain.Parcel{
		ID:             id,
		TrackingNumber: "TRK-" + id.String(),
		Status:         parceldomain.StatusProcessed,
		Weight:         decimal.NewFromFloat(weight),
		ItemCount:      1,
	}
}

func TestGeneratePerWeightLineItem(t *testing.T) {
	parcels := []parceldomain.Parcel{testParcel(10, 4.0)}
	fees := []feedomain.Fee{shippingFee(1, 2.50, "USD")}

	items, mismatch, err := GenerateFeesForParcels(parcels, fees, nil, nil, "USD")
	require.NoError(t, err)
	assert.Nil(t, mismatch)
	require.Len(t, items, 1)

	item := items[0]
	assert.Equal(t, "2.5", item.UnitPrice.String())
	assert.Equal(t, "4", item.Quantity.String())
	assert.Equal(t, "10", item.LineTotal.String())
	assert.Equal(t, "USD", item.Currency)
	assert.Equal(t, domain.ItemTypeShipping, item.Type)

	totals, err := ComputeTotals(items, "USD", currency.DefaultSettings())
	require.NoError(t, err)
	assert.Equal(t, "10", totals.Subtotal.String())
}

func TestGenerateMismatchDetection(t *testing.T) {
	parcels := []parceldomain.Parcel{testParcel(10, 1.0), testParcel(20, 1.0)}
	fees := []feedomain.Fee{shippingFee(1, 5.00, "USD")}
	dutyFees := map[snowflake.ID][]dutydomain.DutyFee{
		20: {{ID: 99, ParcelID: 20, FeeType: "Electronics", Amount: decimal.NewFromInt(2000), Currency: "JMD"}},
	}

	items, mismatch, err := GenerateFeesForParcels(parcels, fees, dutyFees, nil, "USD")
	require.NoError(t, err)
	require.NotNil(t, mismatch)
	assert.Equal(t, "USD", mismatch.InvoiceCurrency)
	assert.Equal(t, []string{"JMD"}, mismatch.Currencies)
	assert.Equal(t, 1, mismatch.Count)
	assert.Len(t, items, 3)
}

func TestGenerateAtMostOnce(t *testing.T) {
	parcels := []parceldomain.Parcel{testParcel(10, 2.0)}
	fees := []feedomain.Fee{shippingFee(1, 5.00, "USD")}

	first, _, err := GenerateFeesForParcels(parcels, fees, nil, nil, "USD")
	require.NoError(t, err)
	require.Len(t, first, 1)

	existing := []domain.InvoiceItem{{ParcelID: 10, Type: domain.ItemTypeShipping}}
	second, _, err := GenerateFeesForParcels(parcels, fees, nil, existing, "USD")
	require.NoError(t, err)
	assert.Empty(t, second)
}

func TestGenerateDeterministicOrder(t *testing.T) {
	parcels := []parceldomain.Parcel{testParcel(30, 1.0), testParcel(10, 1.0), testParcel(20, 1.0)}
	fees := []feedomain.Fee{shippingFee(1, 5.00, "USD")}

	items, _, err := GenerateFeesForParcels(parcels, fees, nil, nil, "USD")
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, snowflake.ID(10), items[0].ParcelID)
	assert.Equal(t, snowflake.ID(20), items[1].ParcelID)
	assert.Equal(t, snowflake.ID(30), items[2].ParcelID)
}

func TestGenerateSkipsInactiveFees(t *testing.T) {
	fee := shippingFee(1, 5.00, "USD")
	fee.IsActive = false

	items, _, err := GenerateFeesForParcels([]parceldomain.Parcel{testParcel(10, 2.0)}, []feedomain.Fee{fee}, nil, nil, "USD")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestResolveMismatchChangeCurrency(t *testing.T) {
	items := []domain.LineItem{
		{Currency: "JMD", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(2000), LineTotal: decimal.NewFromInt(2000)},
	}

	resolved, cur, err := ResolveMismatch(items, "USD", domain.StrategyChangeInvoiceCurrency, currency.DefaultSettings())
	require.NoError(t, err)
	assert.Equal(t, "JMD", cur)
	assert.Equal(t, "2000", resolved[0].UnitPrice.String())
}

func TestResolveMismatchChangeCurrencyMixedFails(t *testing.T) {
	items := []domain.LineItem{
		{Currency: "JMD", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(2000)},
		{Currency: "USD", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(10)},
	}

	_, _, err := ResolveMismatch(items, "USD", domain.StrategyChangeInvoiceCurrency, currency.DefaultSettings())
	assert.ErrorIs(t, err, domain.ErrMixedCurrencies)
}

func TestResolveMismatchConvertFees(t *testing.T) {
	items := []domain.LineItem{
		{Currency: "JMD", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(15850)},
		{Currency: "USD", Quantity: decimal.NewFromInt(2), UnitPrice: decimal.NewFromInt(10)},
	}

	resolved, cur, err := ResolveMismatch(items, "USD", domain.StrategyConvertFees, currency.DefaultSettings())
	require.NoError(t, err)
	assert.Equal(t, "USD", cur)
	assert.Equal(t, "100", resolved[0].UnitPrice.String())
	assert.Equal(t, "USD", resolved[0].Currency)
	assert.Equal(t, "20", resolved[1].LineTotal.String())
}

func TestResolveMismatchConvertFeesAllOrNothing(t *testing.T) {
	items := []domain.LineItem{
		{Currency: "USD", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(10)},
		{Currency: "EUR", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(10)},
	}

	resolved, _, err := ResolveMismatch(items, "USD", domain.StrategyConvertFees, currency.DefaultSettings())
	require.Error(t, err)
	assert.ErrorIs(t, err, currency.ErrUnsupportedCurrencyPair)
	assert.Nil(t, resolved)
	// input untouched
	assert.Equal(t, "USD", items[0].Currency)
}

func TestCustomItemOps(t *testing.T) {
	items, err := AddCustomItem(nil, "Storage fee", decimal.NewFromInt(2), decimal.NewFromFloat(7.50), "USD")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "15", items[0].LineTotal.String())
	assert.Equal(t, domain.ItemTypeCustom, items[0].Type)

	_, err = AddCustomItem(items, "bad", decimal.NewFromInt(-1), decimal.NewFromInt(1), "USD")
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	items, err = UpdateItem(items, 0, decimal.NewFromInt(3), decimal.NewFromInt(5))
	require.NoError(t, err)
	assert.Equal(t, "15", items[0].LineTotal.String())

	items, err = RemoveItem(items, 0)
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = RemoveItem(items, 0)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRemoveItemLeavesInputIntact(t *testing.T) {
	items := []domain.LineItem{
		{Description: "first", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(1)},
		{Description: "second", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(2)},
		{Description: "third", Quantity: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(3)},
	}

	remaining, err := RemoveItem(items, 0)
	require.NoError(t, err)
	require.Len(t, remaining, 2)
	assert.Equal(t, "second", remaining[0].Description)
	assert.Equal(t, "third", remaining[1].Description)

	// input untouched
	require.Len(t, items, 3)
	assert.Equal(t, "first", items[0].Description)
	assert.Equal(t, "second", items[1].Description)
	assert.Equal(t, "third", items[2].Description)
}
