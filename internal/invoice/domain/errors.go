package domain

import "errors"

var (
	ErrInvalidCompany     = errors.New("invalid_company")
	ErrInvalidCustomer    = errors.New("invalid_customer")
	ErrInvalidID          = errors.New("invalid_id")
	ErrInvalidCurrency    = errors.New("invalid_currency")
	ErrInvalidQuantity    = errors.New("invalid_quantity")
	ErrInvalidStatus      = errors.New("invalid_status")
	ErrInvalidTransition  = errors.New("invalid_status_transition")
	ErrInvalidStrategy    = errors.New("invalid_resolve_strategy")
	ErrMixedCurrencies    = errors.New("mixed_currencies")
	ErrMismatchUnresolved = errors.New("currency_mismatch_unresolved")
	ErrNotDraft           = errors.New("invoice_not_draft")
	ErrNoItems            = errors.New("invoice_has_no_items")
	ErrNotFound           = errors.New("not_found")
)
