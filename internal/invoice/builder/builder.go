// Package builder generates invoice line items from parcels, fee rules,
// and duty fees. All functions are pure: callers fetch the inputs and
// persist the outputs.
package builder

import (
	"fmt"
	"sort"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/portpak/portpak/internal/currency"
	dutydomain "github.com/portpak/portpak/internal/dutyfee/domain"
	feedomain "github.com/portpak/portpak/internal/fee/domain"
	"github.com/portpak/portpak/internal/fee/evaluator"
	"github.com/portpak/portpak/internal/invoice/domain"
	parceldomain "github.com/portpak/portpak/internal/parcel/domain"
	"github.com/shopspring/decimal"
)

// GenerateFeesForParcels evaluates every applicable fee rule and duty
// fee for the given parcels, one line item per match, each in its
// native currency. Parcels that already have parcel-linked items on the
// invoice are skipped, so generation is at-most-once per parcel per
// invoice. When the generated items disagree with invoiceCurrency a
// mismatch descriptor is returned alongside them; the caller must not
// commit the items until it is resolved.
func GenerateFeesForParcels(
	parcels []parceldomain.Parcel,
	fees []feedomain.Fee,
	dutyFees map[snowflake.ID][]dutydomain.DutyFee,
	existingItems []domain.InvoiceItem,
	invoiceCurrency string,
) ([]domain.LineItem, *domain.CurrencyMismatch, error) {
	seen := make(map[snowflake.ID]bool, len(existingItems))
	for _, item := range existingItems {
		if item.ParcelID != 0 {
			seen[item.ParcelID] = true
		}
	}

	ordered := make([]parceldomain.Parcel, len(parcels))
	copy(ordered, parcels)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	var items []domain.LineItem
	for _, parcel := range ordered {
		if seen[parcel.ID] {
			continue
		}
		seen[parcel.ID] = true

		// Leave Subject.Now zero so time-windowed rules read the clock.
		subject := parcel.Subject(time.Time{})

		for i := range fees {
			fee := &fees[i]
			if !fee.IsActive || !evaluator.Applies(fee, subject) {
				continue
			}
			result, err := evaluator.Evaluate(fee, subject)
			if err != nil {
				return nil, nil, err
			}
			if !result.Applied {
				continue
			}
			if result.Amount.IsZero() && !result.NeedsReview {
				continue
			}
			items = append(items, domain.LineItem{
				Description: feeDescription(fee, parcel),
				Quantity:    result.Quantity,
				UnitPrice:   result.UnitPrice,
				LineTotal:   result.Amount,
				Currency:    result.Currency,
				ParcelID:    parcel.ID,
				Type:        itemTypeForFee(fee.FeeType),
				NeedsReview: result.NeedsReview,
			})
		}

		for _, duty := range dutyFees[parcel.ID] {
			items = append(items, domain.LineItem{
				Description: fmt.Sprintf("Duty: %s (%s)", duty.DisplayType(), parcel.TrackingNumber),
				Quantity:    decimal.NewFromInt(1),
				UnitPrice:   duty.Amount,
				LineTotal:   duty.Amount,
				Currency:    duty.Currency,
				ParcelID:    parcel.ID,
				Type:        domain.ItemTypeDuty,
			})
		}
	}

	return items, detectMismatch(items, invoiceCurrency), nil
}

// ResolveMismatch applies exactly one resolution strategy to a mismatch
// batch. ChangeInvoiceCurrency re-tags the invoice to the items' single
// detected currency and leaves amounts untouched; it fails when the
// batch mixes currencies. ConvertFees converts every item into
// invoiceCurrency; any conversion failure aborts the whole batch.
// The returned currency is the invoice currency after resolution.
func ResolveMismatch(
	items []domain.LineItem,
	invoiceCurrency string,
	strategy domain.ResolveStrategy,
	settings currency.Settings,
) ([]domain.LineItem, string, error) {
	switch strategy {
	case domain.StrategyChangeInvoiceCurrency:
		detected := distinctCurrencies(items)
		if len(detected) > 1 {
			return nil, "", domain.ErrMixedCurrencies
		}
		if len(detected) == 0 {
			return items, invoiceCurrency, nil
		}
		return items, detected[0], nil

	case domain.StrategyConvertFees:
		converted := make([]domain.LineItem, len(items))
		for i, item := range items {
			unitPrice, err := currency.Convert(item.UnitPrice, item.Currency, invoiceCurrency, settings)
			if err != nil {
				return nil, "", err
			}
			item.UnitPrice = unitPrice
			item.LineTotal = item.Quantity.Mul(unitPrice).Round(2)
			item.Currency = invoiceCurrency
			converted[i] = item
		}
		return converted, invoiceCurrency, nil

	default:
		return nil, "", domain.ErrInvalidStrategy
	}
}

// AddCustomItem appends an ad hoc line item. The only constraint is a
// non-negative quantity.
func AddCustomItem(items []domain.LineItem, description string, quantity, unitPrice decimal.Decimal, itemCurrency string) ([]domain.LineItem, error) {
	if quantity.IsNegative() {
		return nil, domain.ErrInvalidQuantity
	}
	return append(items, domain.LineItem{
		Description: description,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		LineTotal:   quantity.Mul(unitPrice).Round(2),
		Currency:    itemCurrency,
		Type:        domain.ItemTypeCustom,
	}), nil
}

// UpdateItem replaces the item at index.
func UpdateItem(items []domain.LineItem, index int, quantity, unitPrice decimal.Decimal) ([]domain.LineItem, error) {
	if index < 0 || index >= len(items) {
		return nil, domain.ErrNotFound
	}
	if quantity.IsNegative() {
		return nil, domain.ErrInvalidQuantity
	}
	items[index].Quantity = quantity
	items[index].UnitPrice = unitPrice
	items[index].LineTotal = quantity.Mul(unitPrice).Round(2)
	return items, nil
}

// RemoveItem drops the item at index. The input slice is left intact so
// callers can keep the pre-removal view.
func RemoveItem(items []domain.LineItem, index int) ([]domain.LineItem, error) {
	if index < 0 || index >= len(items) {
		return nil, domain.ErrNotFound
	}
	remaining := make([]domain.LineItem, 0, len(items)-1)
	remaining = append(remaining, items[:index]...)
	remaining = append(remaining, items[index+1:]...)
	return remaining, nil
}

func detectMismatch(items []domain.LineItem, invoiceCurrency string) *domain.CurrencyMismatch {
	var conflicting []string
	seen := make(map[string]bool)
	count := 0
	for _, item := range items {
		if item.Currency == invoiceCurrency {
			continue
		}
		count++
		if !seen[item.Currency] {
			seen[item.Currency] = true
			conflicting = append(conflicting, item.Currency)
		}
	}
	if count == 0 {
		return nil
	}
	sort.Strings(conflicting)
	return &domain.CurrencyMismatch{
		InvoiceCurrency: invoiceCurrency,
		Currencies:      conflicting,
		Count:           count,
	}
}

func distinctCurrencies(items []domain.LineItem) []string {
	seen := make(map[string]bool)
	var currencies []string
	for _, item := range items {
		if !seen[item.Currency] {
			seen[item.Currency] = true
			currencies = append(currencies, item.Currency)
		}
	}
	sort.Strings(currencies)
	return currencies
}

func itemTypeForFee(feeType feedomain.FeeType) domain.ItemType {
	switch feeType {
	case feedomain.FeeTypeTax:
		return domain.ItemTypeTax
	case feedomain.FeeTypeShipping:
		return domain.ItemTypeShipping
	case feedomain.FeeTypeHandling:
		return domain.ItemTypeHandling
	case feedomain.FeeTypeCustoms:
		return domain.ItemTypeCustoms
	default:
		return domain.ItemTypeFee
	}
}

func feeDescription(fee *feedomain.Fee, parcel parceldomain.Parcel) string {
	return fmt.Sprintf("%s (%s)", fee.Name, parcel.TrackingNumber)
}
