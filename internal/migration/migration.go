// Package migration creates the schema on startup so the service is
// usable out of the box for local and self-hosted environments.
package migration

import (
	companydomain "github.com/portpak/portpak/internal/company/domain"
	customerdomain "github.com/portpak/portpak/internal/customer/domain"
	dutydomain "github.com/portpak/portpak/internal/dutyfee/domain"
	feedomain "github.com/portpak/portpak/internal/fee/domain"
	invoicedomain "github.com/portpak/portpak/internal/invoice/domain"
	parceldomain "github.com/portpak/portpak/internal/parcel/domain"
	paymentdomain "github.com/portpak/portpak/internal/payment/domain"
	prealertdomain "github.com/portpak/portpak/internal/prealert/domain"
	settingsdomain "github.com/portpak/portpak/internal/settings/domain"
	"gorm.io/gorm"
)

// AutoMigrate creates or updates every table the service owns.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&companydomain.Company{},
		&customerdomain.Customer{},
		&parceldomain.Parcel{},
		&prealertdomain.PreAlert{},
		&feedomain.Fee{},
		&dutydomain.DutyFee{},
		&invoicedomain.Invoice{},
		&invoicedomain.InvoiceItem{},
		&paymentdomain.Payment{},
		&settingsdomain.CompanySettings{},
	)
}
