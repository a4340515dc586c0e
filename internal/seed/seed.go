// Package seed installs the default fee table for a company so a fresh
// install can invoice immediately.
package seed

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bwmarrin/snowflake"
	feedomain "github.com/portpak/portpak/internal/fee/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type defaultFee struct {
	Name        string
	Code        string
	FeeType     feedomain.FeeType
	Method      feedomain.CalculationMethod
	Amount      string
	AppliesTo   []string
	Description string
}

var defaultFees = []defaultFee{
	{
		Name:        "General Consumption Tax",
		Code:        "GCT",
		FeeType:     feedomain.FeeTypeTax,
		Method:      feedomain.MethodPercentage,
		Amount:      "15.00",
		AppliesTo:   []string{"declared_value"},
		Description: "Standard Jamaica GCT applied to all services",
	},
	{
		Name:        "Customs Duty",
		Code:        "DUTY",
		FeeType:     feedomain.FeeTypeTax,
		Method:      feedomain.MethodPercentage,
		Amount:      "20.00",
		AppliesTo:   []string{"declared_value"},
		Description: "Import duty charged on declared value of packages",
	},
	{
		Name:        "Per Pound Shipping",
		Code:        "SHIP_LB",
		FeeType:     feedomain.FeeTypeShipping,
		Method:      feedomain.MethodPerWeight,
		Amount:      "2.50",
		AppliesTo:   []string{"weight"},
		Description: "Standard shipping rate per pound",
	},
	{
		Name:        "Base Handling",
		Code:        "HANDLE_BASE",
		FeeType:     feedomain.FeeTypeHandling,
		Method:      feedomain.MethodFixed,
		Amount:      "5.00",
		Description: "Flat handling fee per package",
	},
}

// Fees inserts the default fee definitions for a company, skipping any
// code the company already has.
func Fees(ctx context.Context, db *gorm.DB, genID *snowflake.Node, companyID snowflake.ID, log *zap.Logger) error {
	for _, def := range defaultFees {
		var count int64
		err := db.WithContext(ctx).Model(&feedomain.Fee{}).
			Where("company_id = ? AND code = ?", companyID, def.Code).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		amount, err := decimal.NewFromString(def.Amount)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		fee := feedomain.Fee{
			ID:                genID.Generate(),
			CompanyID:         companyID,
			Name:              def.Name,
			Code:              def.Code,
			FeeType:           def.FeeType,
			CalculationMethod: def.Method,
			Amount:            amount,
			Currency:          "USD",
			AppliesTo:         encodeList(def.AppliesTo),
			Metadata:          defaultMetadata(def.Method),
			Description:       def.Description,
			IsActive:          true,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if err := db.WithContext(ctx).Create(&fee).Error; err != nil {
			return err
		}
		log.Info("seeded default fee",
			zap.String("company_id", companyID.String()),
			zap.String("code", def.Code),
		)
	}
	return nil
}

func defaultMetadata(method feedomain.CalculationMethod) datatypes.JSONMap {
	if method == feedomain.MethodPercentage {
		return datatypes.JSONMap{"baseAttribute": feedomain.AttrDeclaredValue}
	}
	return datatypes.JSONMap{}
}

func encodeList(list []string) datatypes.JSON {
	if len(list) == 0 {
		return nil
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}
