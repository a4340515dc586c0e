// Package currency implements the USD/JMD conversion, rounding, and
// formatting rules shared by fee evaluation, invoicing, and statistics.
package currency

import "time"

const (
	USD = "USD"
	JMD = "JMD"
)

// DefaultExchangeRate is the fallback USD to JMD rate applied when a
// company has no stored exchange rate settings.
const DefaultExchangeRate = 158.50

var symbols = map[string]string{
	USD: "$",
	JMD: "J$",
}

// Settings describes a company's exchange rate configuration. ExchangeRate
// is the number of TargetCurrency units per one BaseCurrency unit.
type Settings struct {
	BaseCurrency   string    `json:"base_currency"`
	TargetCurrency string    `json:"target_currency"`
	ExchangeRate   float64   `json:"exchange_rate"`
	LastUpdated    time.Time `json:"last_updated"`
	AutoUpdate     bool      `json:"auto_update"`
}

// DefaultSettings returns the platform defaults used when a company has
// no stored settings.
func DefaultSettings() Settings {
	return Settings{
		BaseCurrency:   USD,
		TargetCurrency: JMD,
		ExchangeRate:   DefaultExchangeRate,
		AutoUpdate:     false,
	}
}

// Symbol returns the display symbol for a currency code, or the empty
// string when the code has no registered symbol.
func Symbol(code string) string {
	return symbols[code]
}
