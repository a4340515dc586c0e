// Package evaluator computes fee amounts from a fee definition and a
// subject attribute bag. Evaluation is a pure function with no I/O so
// callers may run it concurrently across parcels.
package evaluator

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/portpak/portpak/internal/fee/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Result is the outcome of evaluating one fee against one subject.
// Amount == Quantity × UnitPrice rounded to 2 dp. Applied is false when
// the rule's conditions exclude the subject (threshold out of bounds,
// timed window closed). NeedsReview marks a tiered fee whose tiers did
// not cover the subject's value; the amount is zero but the result is
// still surfaced so a misconfigured tier table blocks nothing silently.
type Result struct {
	FeeID       snowflake.ID
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Amount      decimal.Decimal
	Currency    string
	Applied     bool
	NeedsReview bool
}

// Applies reports whether the fee's appliesTo list matches the subject.
// Each entry must either name a present subject attribute or match one
// of the subject's tags. An empty list applies to every subject.
func Applies(fee *domain.Fee, subject domain.Subject) bool {
	for _, name := range fee.AppliesToList() {
		if _, ok := subject.Attribute(name); ok {
			continue
		}
		if subject.HasTag(name) {
			continue
		}
		return false
	}
	return true
}

// Evaluate computes the fee amount for a subject.
func Evaluate(fee *domain.Fee, subject domain.Subject) (Result, error) {
	result := Result{
		FeeID:    fee.ID,
		Currency: fee.Currency,
		Applied:  true,
	}

	meta, err := fee.DecodeMetadata()
	if err != nil {
		return Result{}, err
	}

	switch fee.CalculationMethod {
	case domain.MethodFixed:
		result.Quantity = decimal.NewFromInt(1)
		result.UnitPrice = fee.Amount

	case domain.MethodPercentage:
		pm := meta.(*domain.PercentageMeta)
		base, _ := subject.Attribute(pm.BaseAttribute)
		computed := base.Mul(fee.Amount).Div(hundred).Round(2)
		if pm.MinimumThreshold != nil && computed.LessThan(*pm.MinimumThreshold) {
			computed = *pm.MinimumThreshold
		}
		if pm.MaximumCap != nil && computed.GreaterThan(*pm.MaximumCap) {
			computed = *pm.MaximumCap
		}
		result.Quantity = decimal.NewFromInt(1)
		result.UnitPrice = computed

	case domain.MethodPerWeight:
		result.Quantity = subject.Weight
		result.UnitPrice = fee.Amount

	case domain.MethodPerItem:
		count := subject.ItemCount
		if count <= 0 {
			count = 1
		}
		result.Quantity = decimal.NewFromInt(int64(count))
		result.UnitPrice = fee.Amount

	case domain.MethodDimensional:
		dm := meta.(*domain.DimensionalMeta)
		volume := subject.Length.Mul(subject.Width).Mul(subject.Height)
		dimWeight := volume.Div(dm.DimensionalFactor).Round(2)
		result.Quantity = dimWeight
		result.UnitPrice = fee.Amount

	case domain.MethodTiered:
		tm := meta.(*domain.TieredMeta)
		value, _ := subject.Attribute(tm.TierAttribute)
		tier, found := matchTier(tm.Tiers, value)
		if !found {
			result.Quantity = decimal.Zero
			result.UnitPrice = decimal.Zero
			result.NeedsReview = true
			break
		}
		result.Quantity = decimal.NewFromInt(1)
		result.UnitPrice = tier.Rate

	case domain.MethodThreshold:
		tm := meta.(*domain.ThresholdMeta)
		result.Quantity = decimal.NewFromInt(1)
		result.UnitPrice = fee.Amount
		if !thresholdApplies(tm, subject) {
			result.Applied = false
			result.Quantity = decimal.Zero
			result.UnitPrice = decimal.Zero
		}

	case domain.MethodTimed:
		tm := meta.(*domain.TimedMeta)
		result.Quantity = decimal.NewFromInt(1)
		result.UnitPrice = fee.Amount
		if !timedApplies(tm, subject) {
			result.Applied = false
			result.Quantity = decimal.Zero
			result.UnitPrice = decimal.Zero
		}

	default:
		return Result{}, domain.ErrInvalidMethod
	}

	result.Amount = result.Quantity.Mul(result.UnitPrice).Round(2)
	return result, nil
}

// matchTier selects the tier covering value with lower-inclusive,
// upper-exclusive bounds. A nil max is unbounded above.
func matchTier(tiers []domain.Tier, value decimal.Decimal) (domain.Tier, bool) {
	for _, tier := range tiers {
		if value.LessThan(tier.Min) {
			continue
		}
		if tier.Max != nil && value.GreaterThanOrEqual(*tier.Max) {
			continue
		}
		return tier, true
	}
	return domain.Tier{}, false
}

func thresholdApplies(meta *domain.ThresholdMeta, subject domain.Subject) bool {
	value, _ := subject.Attribute(meta.Attribute)
	if meta.Min != nil && value.LessThan(*meta.Min) {
		return false
	}
	if meta.Max != nil && value.GreaterThan(*meta.Max) {
		return false
	}

	if cond := meta.ThresholdConditions; cond != nil {
		now := referenceNow(subject)
		if cond.ValidFrom != "" {
			if from, err := parseDate(cond.ValidFrom); err == nil && now.Before(from) {
				return false
			}
		}
		if cond.ValidUntil != "" {
			if until, err := parseDate(cond.ValidUntil); err == nil && now.After(until) {
				return false
			}
		}
	}
	return true
}

func timedApplies(meta *domain.TimedMeta, subject domain.Subject) bool {
	ref := subject.ReceivedAt
	if ref.IsZero() {
		return false
	}
	elapsed := referenceNow(subject).Sub(ref)
	window := time.Duration(meta.Days) * 24 * time.Hour

	if meta.Application == domain.TimedAfter {
		return elapsed > window
	}
	return elapsed <= window
}

func referenceNow(subject domain.Subject) time.Time {
	if !subject.Now.IsZero() {
		return subject.Now
	}
	return time.Now().UTC()
}

func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}
