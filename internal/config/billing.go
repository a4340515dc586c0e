package config

import (
	"errors"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// BillingConfig carries operator-tunable billing behaviour: the cash
// rounding increments applied to invoice totals and the fallback exchange
// rate used when a company has no stored rate.
type BillingConfig struct {
	RoundingIncrements   map[string]float64 `mapstructure:"roundingIncrements"`
	DefaultBaseCurrency  string             `mapstructure:"defaultBaseCurrency"`
	DefaultQuoteCurrency string             `mapstructure:"defaultQuoteCurrency"`
	DefaultExchangeRate  float64            `mapstructure:"defaultExchangeRate"`
	InvoiceDueDays       int                `mapstructure:"invoiceDueDays"`
}

func DefaultBillingConfig() BillingConfig {
	return BillingConfig{
		RoundingIncrements: map[string]float64{
			"JMD": 100,
			"USD": 10,
		},
		DefaultBaseCurrency:  "USD",
		DefaultQuoteCurrency: "JMD",
		DefaultExchangeRate:  158.50,
		InvoiceDueDays:       30,
	}
}

// BillingConfigHolder exposes the current billing config and hot-reloads it
// when the backing file changes.
type BillingConfigHolder struct {
	current atomic.Value // holds BillingConfig
}

func NewBillingConfigHolder(log *zap.Logger) (*BillingConfigHolder, error) {
	logger := log.Named("config.billing")

	v := viper.New()

	v.SetConfigName("billing")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/portpak/config")
	v.AddConfigPath("/etc/portpak")
	v.AddConfigPath(".")

	v.SetEnvPrefix("PORTPAK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultBillingConfig()
		v.SetDefault("billing.roundingIncrements", defaults.RoundingIncrements)
		v.SetDefault("billing.defaultBaseCurrency", defaults.DefaultBaseCurrency)
		v.SetDefault("billing.defaultQuoteCurrency", defaults.DefaultQuoteCurrency)
		v.SetDefault("billing.defaultExchangeRate", defaults.DefaultExchangeRate)
		v.SetDefault("billing.invoiceDueDays", defaults.InvoiceDueDays)
	}

	var cfg BillingConfig
	if err := v.UnmarshalKey("billing", &cfg); err != nil {
		return nil, err
	}
	if err := validateBillingConfig(cfg); err != nil {
		return nil, err
	}

	holder := &BillingConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var next BillingConfig
		if err := v.UnmarshalKey("billing", &next); err != nil {
			logger.Warn("billing config reload failed", zap.Error(err))
			return
		}
		if err := validateBillingConfig(next); err != nil {
			logger.Warn("billing config reload rejected", zap.Error(err))
			return
		}
		holder.current.Store(next)
		logger.Info("billing config reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

// Current returns the active billing config snapshot.
func (h *BillingConfigHolder) Current() BillingConfig {
	cfg, ok := h.current.Load().(BillingConfig)
	if !ok {
		return DefaultBillingConfig()
	}
	return cfg
}

func validateBillingConfig(cfg BillingConfig) error {
	if cfg.DefaultExchangeRate <= 0 {
		return errors.New("defaultExchangeRate must be positive")
	}
	for currency, increment := range cfg.RoundingIncrements {
		if increment <= 0 {
			return errors.New("rounding increment for " + currency + " must be positive")
		}
	}
	if cfg.InvoiceDueDays <= 0 {
		return errors.New("invoiceDueDays must be positive")
	}
	return nil
}
