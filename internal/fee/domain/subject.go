package domain

import (
	"encoding/json"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Attribute names fee metadata can reference on a subject.
const (
	AttrWeight        = "weight"
	AttrDeclaredValue = "declared_value"
	AttrItemCount     = "item_count"
	AttrSubtotal      = "subtotal"
	AttrDimensions    = "dimensions"
)

// Subject is the attribute bag a fee rule evaluates against, usually
// built from a parcel. Zero decimals mean the attribute is absent.
type Subject struct {
	ParcelID      snowflake.ID
	Weight        decimal.Decimal
	DeclaredValue decimal.Decimal
	ItemCount     int
	Length        decimal.Decimal
	Width         decimal.Decimal
	Height        decimal.Decimal
	Subtotal      decimal.Decimal
	Tags          []string
	ReceivedAt    time.Time
	Now           time.Time
}

// Attribute resolves a named numeric attribute on the subject.
func (s Subject) Attribute(name string) (decimal.Decimal, bool) {
	switch name {
	case AttrWeight:
		return s.Weight, s.Weight.Sign() > 0
	case AttrDeclaredValue:
		return s.DeclaredValue, s.DeclaredValue.Sign() > 0
	case AttrItemCount:
		return decimal.NewFromInt(int64(s.ItemCount)), s.ItemCount > 0
	case AttrSubtotal:
		return s.Subtotal, s.Subtotal.Sign() > 0
	case AttrDimensions:
		ok := s.Length.Sign() > 0 && s.Width.Sign() > 0 && s.Height.Sign() > 0
		return s.Length.Mul(s.Width).Mul(s.Height), ok
	default:
		return decimal.Zero, false
	}
}

// HasTag reports whether the subject carries the given tag.
func (s Subject) HasTag(tag string) bool {
	for _, t := range s.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// AppliesToList decodes the fee's appliesTo column into a string slice.
// An absent or empty list means the fee applies to every subject.
func (f *Fee) AppliesToList() []string {
	if len(f.AppliesTo) == 0 {
		return nil
	}
	var list []string
	if err := json.Unmarshal(f.AppliesTo, &list); err != nil {
		return nil
	}
	return list
}
