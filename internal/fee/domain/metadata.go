package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Metadata variants, one per calculation method. The stored column is a
// free-form JSON object; decoding it into the variant for the fee's
// method happens once at load/validation time, never mid-evaluation.

type PercentageMeta struct {
	BaseAttribute    string           `json:"baseAttribute"`
	MinimumThreshold *decimal.Decimal `json:"minimumThreshold,omitempty"`
	MaximumCap       *decimal.Decimal `json:"maximumCap,omitempty"`
}

type DimensionalMeta struct {
	DimensionalFactor decimal.Decimal `json:"dimensionalFactor"`
}

type Tier struct {
	Min  decimal.Decimal  `json:"min"`
	Max  *decimal.Decimal `json:"max"` // nil = unbounded
	Rate decimal.Decimal  `json:"rate"`
}

type TieredMeta struct {
	TierAttribute string `json:"tierAttribute"`
	Tiers         []Tier `json:"tiers"`
}

type ThresholdConditions struct {
	ValidFrom  string `json:"validFrom,omitempty"`
	ValidUntil string `json:"validUntil,omitempty"`
}

type ThresholdMeta struct {
	Attribute           string               `json:"attribute"`
	Min                 *decimal.Decimal     `json:"min,omitempty"`
	Max                 *decimal.Decimal     `json:"max,omitempty"`
	ThresholdConditions *ThresholdConditions `json:"thresholdConditions,omitempty"`
}

type TimedMeta struct {
	Days        int    `json:"days"`
	Application string `json:"application,omitempty"` // within (default) or after
}

// DecodeMetadata decodes the metadata column into the variant matching
// the fee's calculation method and validates it. Methods without
// metadata (fixed, per_weight, per_item) return nil.
func (f *Fee) DecodeMetadata() (any, error) {
	raw, err := json.Marshal(map[string]any(f.Metadata))
	if err != nil {
		return nil, ErrInvalidMetadata
	}

	switch f.CalculationMethod {
	case MethodPercentage:
		var meta PercentageMeta
		if err := json.Unmarshal(raw, &meta); err != nil {
			return nil, ErrInvalidMetadata
		}
		if meta.BaseAttribute == "" {
			meta.BaseAttribute = AttrDeclaredValue
		}
		return &meta, nil

	case MethodDimensional:
		var meta DimensionalMeta
		if err := json.Unmarshal(raw, &meta); err != nil {
			return nil, ErrInvalidMetadata
		}
		if meta.DimensionalFactor.Sign() <= 0 {
			return nil, ErrInvalidMetadata
		}
		return &meta, nil

	case MethodTiered:
		var meta TieredMeta
		if err := json.Unmarshal(raw, &meta); err != nil {
			return nil, ErrInvalidMetadata
		}
		if len(meta.Tiers) == 0 {
			return nil, ErrInvalidMetadata
		}
		if meta.TierAttribute == "" {
			meta.TierAttribute = AttrWeight
		}
		for _, tier := range meta.Tiers {
			if tier.Max != nil && tier.Max.LessThanOrEqual(tier.Min) {
				return nil, ErrInvalidMetadata
			}
		}
		return &meta, nil

	case MethodThreshold:
		var meta ThresholdMeta
		if err := json.Unmarshal(raw, &meta); err != nil {
			return nil, ErrInvalidMetadata
		}
		if meta.Attribute == "" {
			return nil, ErrInvalidMetadata
		}
		if meta.Min == nil && meta.Max == nil && meta.ThresholdConditions == nil {
			return nil, ErrInvalidMetadata
		}
		return &meta, nil

	case MethodTimed:
		var meta TimedMeta
		if err := json.Unmarshal(raw, &meta); err != nil {
			return nil, ErrInvalidMetadata
		}
		if meta.Days <= 0 {
			return nil, ErrInvalidMetadata
		}
		switch meta.Application {
		case "", TimedWithin, TimedAfter:
		default:
			return nil, ErrInvalidMetadata
		}
		return &meta, nil

	default:
		return nil, nil
	}
}

const (
	TimedWithin = "within"
	TimedAfter  = "after"
)
