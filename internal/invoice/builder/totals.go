package builder

import (
	"github.com/portpak/portpak/internal/currency"
	"github.com/portpak/portpak/internal/invoice/domain"
	"github.com/shopspring/decimal"
)

// ComputeTotals sums line items into the invoice currency. Tax is
// strictly the sum of tax-type items; tax-type fee rules (e.g. GCT)
// already produced those items, so no rate is re-applied here.
func ComputeTotals(items []domain.LineItem, invoiceCurrency string, settings currency.Settings) (domain.Totals, error) {
	subtotal := decimal.Zero
	taxAmount := decimal.Zero

	for _, item := range items {
		line := item.Quantity.Mul(item.UnitPrice)
		converted, err := currency.Convert(line, item.Currency, invoiceCurrency, settings)
		if err != nil {
			return domain.Totals{}, err
		}
		converted = converted.Round(2)

		subtotal = subtotal.Add(converted)
		if item.Type == domain.ItemTypeTax {
			taxAmount = taxAmount.Add(converted)
		}
	}

	return domain.Totals{
		Subtotal:  subtotal.Round(2),
		TaxAmount: taxAmount.Round(2),
		Total:     subtotal.Add(taxAmount).Round(2),
	}, nil
}
