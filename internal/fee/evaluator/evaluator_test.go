package evaluator

import (
	"testing"
	"time"

	"github.com/portpak/portpak/internal/fee/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func newFee(method domain.CalculationMethod, amount float64, metadata datatypes.JSONMap) *domain.Fee {
	return &domain.Fee{
		ID:                1,
		Name:              "test fee",
		Code:              "TEST_FEE",
		FeeType:           domain.FeeTypeService,
		CalculationMethod: method,
		Amount:            decimal.NewFromFloat(amount),
		Currency:          "USD",
		Metadata:          metadata,
		IsActive:          true,
	}
}

func TestEvaluateFixed(t *testing.T) {
	fee := newFee(domain.MethodFixed, 5.00, nil)

	result, err := Evaluate(fee, domain.Subject{})
	require.NoError(t, err)
	assert.True(t, result.Applied)
	assert.Equal(t, "5", result.Amount.String())
	assert.Equal(t, "1", result.Quantity.String())
}

func TestEvaluatePerWeight(t *testing.T) {
	fee := newFee(domain.MethodPerWeight, 2.50, nil)

	result, err := Evaluate(fee, domain.Subject{Weight: decimal.NewFromFloat(4.0)})
	require.NoError(t, err)
	assert.Equal(t, "4", result.Quantity.String())
	assert.Equal(t, "2.5", result.UnitPrice.String())
	assert.Equal(t, "10", result.Amount.String())
}

func TestEvaluatePerWeightDefaultsToZero(t *testing.T) {
	fee := newFee(domain.MethodPerWeight, 2.50, nil)

	result, err := Evaluate(fee, domain.Subject{})
	require.NoError(t, err)
	assert.True(t, result.Amount.IsZero())
}

func TestEvaluatePerItemDefaultsToOne(t *testing.T) {
	fee := newFee(domain.MethodPerItem, 3.00, nil)

	result, err := Evaluate(fee, domain.Subject{})
	require.NoError(t, err)
	assert.Equal(t, "3", result.Amount.String())

	result, err = Evaluate(fee, domain.Subject{ItemCount: 4})
	require.NoError(t, err)
	assert.Equal(t, "12", result.Amount.String())
}

func TestEvaluatePercentage(t *testing.T) {
	fee := newFee(domain.MethodPercentage, 15, datatypes.JSONMap{
		"baseAttribute": "declared_value",
	})

	result, err := Evaluate(fee, domain.Subject{DeclaredValue: decimal.NewFromInt(200)})
	require.NoError(t, err)
	assert.Equal(t, "30", result.Amount.String())
}

func TestEvaluatePercentageClamps(t *testing.T) {
	fee := newFee(domain.MethodPercentage, 10, datatypes.JSONMap{
		"baseAttribute":    "declared_value",
		"minimumThreshold": 5,
		"maximumCap":       50,
	})

	low, err := Evaluate(fee, domain.Subject{DeclaredValue: decimal.NewFromInt(10)})
	require.NoError(t, err)
	assert.Equal(t, "5", low.Amount.String())

	high, err := Evaluate(fee, domain.Subject{DeclaredValue: decimal.NewFromInt(10000)})
	require.NoError(t, err)
	assert.Equal(t, "50", high.Amount.String())
}

func TestEvaluateDimensional(t *testing.T) {
	fee := newFee(domain.MethodDimensional, 1.50, datatypes.JSONMap{
		"dimensionalFactor": 139,
	})

	subject := domain.Subject{
		Length: decimal.NewFromInt(20),
		Width:  decimal.NewFromInt(15),
		Height: decimal.NewFromInt(10),
	}
	result, err := Evaluate(fee, subject)
	require.NoError(t, err)
	// 3000 / 139 = 21.58 dim weight, times 1.50
	assert.Equal(t, "21.58", result.Quantity.String())
	assert.Equal(t, "32.37", result.Amount.String())
}

func TestEvaluateDimensionalMissingDimension(t *testing.T) {
	fee := newFee(domain.MethodDimensional, 1.50, datatypes.JSONMap{
		"dimensionalFactor": 139,
	})

	result, err := Evaluate(fee, domain.Subject{Length: decimal.NewFromInt(20)})
	require.NoError(t, err)
	assert.True(t, result.Amount.IsZero())
}

func tieredFee() *domain.Fee {
	return newFee(domain.MethodTiered, 0, datatypes.JSONMap{
		"tierAttribute": "weight",
		"tiers": []any{
			map[string]any{"min": 0, "max": 5, "rate": 10},
			map[string]any{"min": 5, "max": 10, "rate": 15},
			map[string]any{"min": 10, "max": nil, "rate": 20},
		},
	})
}

func TestEvaluateTieredBoundaries(t *testing.T) {
	tests := []struct {
		weight float64
		want   string
	}{
		{0.5, "10"},
		{4.99, "10"},
		{5.0, "15"}, // lower bound inclusive
		{9.99, "15"},
		{10.0, "20"}, // unbounded top tier
		{500, "20"},
	}

	for _, tt := range tests {
		result, err := Evaluate(tieredFee(), domain.Subject{Weight: decimal.NewFromFloat(tt.weight)})
		require.NoError(t, err)
		assert.True(t, result.Applied)
		assert.False(t, result.NeedsReview)
		assert.Equal(t, tt.want, result.Amount.String(), "weight %v", tt.weight)
	}
}

func TestEvaluateTieredNoMatch(t *testing.T) {
	fee := newFee(domain.MethodTiered, 0, datatypes.JSONMap{
		"tierAttribute": "weight",
		"tiers": []any{
			map[string]any{"min": 10, "max": 20, "rate": 15},
		},
	})

	result, err := Evaluate(fee, domain.Subject{Weight: decimal.NewFromInt(5)})
	require.NoError(t, err)
	assert.True(t, result.Applied)
	assert.True(t, result.NeedsReview)
	assert.True(t, result.Amount.IsZero())
}

func TestEvaluateThreshold(t *testing.T) {
	fee := newFee(domain.MethodThreshold, 25, datatypes.JSONMap{
		"attribute": "declared_value",
		"min":       100,
		"max":       500,
	})

	in, err := Evaluate(fee, domain.Subject{DeclaredValue: decimal.NewFromInt(250)})
	require.NoError(t, err)
	assert.True(t, in.Applied)
	assert.Equal(t, "25", in.Amount.String())

	out, err := Evaluate(fee, domain.Subject{DeclaredValue: decimal.NewFromInt(50)})
	require.NoError(t, err)
	assert.False(t, out.Applied)
	assert.True(t, out.Amount.IsZero())
}

func TestEvaluateThresholdDateWindow(t *testing.T) {
	fee := newFee(domain.MethodThreshold, 25, datatypes.JSONMap{
		"attribute": "declared_value",
		"min":       0,
		"thresholdConditions": map[string]any{
			"validFrom":  "2026-01-01",
			"validUntil": "2026-06-30",
		},
	})

	inside := domain.Subject{
		DeclaredValue: decimal.NewFromInt(10),
		Now:           time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
	}
	result, err := Evaluate(fee, inside)
	require.NoError(t, err)
	assert.True(t, result.Applied)

	outside := inside
	outside.Now = time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	result, err = Evaluate(fee, outside)
	require.NoError(t, err)
	assert.False(t, result.Applied)
}

func TestEvaluateTimed(t *testing.T) {
	now := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)

	within := newFee(domain.MethodTimed, 8, datatypes.JSONMap{
		"days":        7,
		"application": "within",
	})
	subject := domain.Subject{
		ReceivedAt: now.AddDate(0, 0, -3),
		Now:        now,
	}
	result, err := Evaluate(within, subject)
	require.NoError(t, err)
	assert.True(t, result.Applied)

	after := newFee(domain.MethodTimed, 8, datatypes.JSONMap{
		"days":        7,
		"application": "after",
	})
	result, err = Evaluate(after, subject)
	require.NoError(t, err)
	assert.False(t, result.Applied)

	subject.ReceivedAt = now.AddDate(0, 0, -14)
	result, err = Evaluate(after, subject)
	require.NoError(t, err)
	assert.True(t, result.Applied)
}

func TestAppliesToFiltering(t *testing.T) {
	fee := newFee(domain.MethodFixed, 5, nil)
	fee.AppliesTo = datatypes.JSON([]byte(`["weight"]`))

	assert.True(t, Applies(fee, domain.Subject{Weight: decimal.NewFromInt(3)}))
	assert.False(t, Applies(fee, domain.Subject{}))

	// tags satisfy entries that are not attributes
	fee.AppliesTo = datatypes.JSON([]byte(`["fragile"]`))
	assert.True(t, Applies(fee, domain.Subject{Tags: []string{"fragile"}}))
	assert.False(t, Applies(fee, domain.Subject{Tags: []string{"oversized"}}))

	// empty list applies to everything
	fee.AppliesTo = nil
	assert.True(t, Applies(fee, domain.Subject{}))
}

func TestEvaluateInvalidMetadata(t *testing.T) {
	fee := newFee(domain.MethodTiered, 0, datatypes.JSONMap{"tiers": []any{}})

	_, err := Evaluate(fee, domain.Subject{})
	assert.ErrorIs(t, err, domain.ErrInvalidMetadata)
}
