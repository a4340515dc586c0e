package currency

import (
	"errors"
	"fmt"
)

var (
	ErrConversionUnavailable   = errors.New("conversion_unavailable")
	ErrUnsupportedCurrencyPair = errors.New("unsupported_currency_pair")
)

// PairError annotates a conversion failure with the requested pair.
type PairError struct {
	From string
	To   string
	Err  error
}

func (e *PairError) Error() string {
	return fmt.Sprintf("%v: %s to %s", e.Err, e.From, e.To)
}

func (e *PairError) Unwrap() error { return e.Err }

func pairErr(sentinel error, from, to string) error {
	return &PairError{From: from, To: to, Err: sentinel}
}
