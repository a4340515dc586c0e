package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	companydomain "github.com/portpak/portpak/internal/company/domain"
	"github.com/portpak/portpak/internal/currency"
	customerdomain "github.com/portpak/portpak/internal/customer/domain"
	dutydomain "github.com/portpak/portpak/internal/dutyfee/domain"
	feedomain "github.com/portpak/portpak/internal/fee/domain"
	invoicedomain "github.com/portpak/portpak/internal/invoice/domain"
	parceldomain "github.com/portpak/portpak/internal/parcel/domain"
	paymentdomain "github.com/portpak/portpak/internal/payment/domain"
	prealertdomain "github.com/portpak/portpak/internal/prealert/domain"
	settingsdomain "github.com/portpak/portpak/internal/settings/domain"
	statsdomain "github.com/portpak/portpak/internal/statistics/domain"
	"gorm.io/gorm"
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInvalidRequest = errors.New("invalid_request")
)

// ErrorHandlingMiddleware converts errors pushed onto the gin context
// into the JSON error envelope.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

var badRequestErrors = []error{
	ErrInvalidRequest,
	companydomain.ErrInvalidName,
	companydomain.ErrInvalidSubdomain,
	customerdomain.ErrInvalidCompany,
	customerdomain.ErrInvalidName,
	customerdomain.ErrInvalidEmail,
	customerdomain.ErrInvalidID,
	feedomain.ErrInvalidCompany,
	feedomain.ErrInvalidID,
	feedomain.ErrInvalidName,
	feedomain.ErrInvalidCode,
	feedomain.ErrInvalidFeeType,
	feedomain.ErrInvalidMethod,
	feedomain.ErrInvalidAmount,
	feedomain.ErrInvalidCurrency,
	feedomain.ErrInvalidMetadata,
	dutydomain.ErrInvalidCompany,
	dutydomain.ErrInvalidParcel,
	dutydomain.ErrInvalidID,
	dutydomain.ErrInvalidFeeType,
	dutydomain.ErrCustomTypeMissing,
	dutydomain.ErrInvalidAmount,
	dutydomain.ErrInvalidCurrency,
	parceldomain.ErrInvalidCompany,
	parceldomain.ErrInvalidCustomer,
	parceldomain.ErrInvalidID,
	parceldomain.ErrInvalidTracking,
	parceldomain.ErrInvalidStatus,
	prealertdomain.ErrInvalidCompany,
	prealertdomain.ErrInvalidCustomer,
	prealertdomain.ErrInvalidID,
	prealertdomain.ErrInvalidTracking,
	prealertdomain.ErrInvalidCourier,
	prealertdomain.ErrInvalidStatus,
	invoicedomain.ErrInvalidCompany,
	invoicedomain.ErrInvalidCustomer,
	invoicedomain.ErrInvalidID,
	invoicedomain.ErrInvalidCurrency,
	invoicedomain.ErrInvalidQuantity,
	invoicedomain.ErrInvalidStatus,
	invoicedomain.ErrInvalidStrategy,
	paymentdomain.ErrInvalidCompany,
	paymentdomain.ErrInvalidInvoice,
	paymentdomain.ErrInvalidAmount,
	paymentdomain.ErrInvalidMethod,
	settingsdomain.ErrInvalidCompany,
	settingsdomain.ErrInvalidRate,
	settingsdomain.ErrInvalidPair,
	statsdomain.ErrInvalidCompany,
	statsdomain.ErrInvalidCustomer,
	statsdomain.ErrInvalidCurrency,
}

var notFoundErrors = []error{
	companydomain.ErrNotFound,
	customerdomain.ErrNotFound,
	feedomain.ErrNotFound,
	dutydomain.ErrNotFound,
	parceldomain.ErrNotFound,
	prealertdomain.ErrNotFound,
	invoicedomain.ErrNotFound,
	paymentdomain.ErrNotFound,
	gorm.ErrRecordNotFound,
}

var conflictErrors = []error{
	companydomain.ErrSubdomainTaken,
	feedomain.ErrDuplicateCode,
	dutydomain.ErrImmutableFeeState,
	parceldomain.ErrInvalidTransition,
	prealertdomain.ErrAlreadyMatched,
	invoicedomain.ErrInvalidTransition,
	invoicedomain.ErrMixedCurrencies,
	invoicedomain.ErrMismatchUnresolved,
	invoicedomain.ErrNotDraft,
	invoicedomain.ErrNoItems,
	paymentdomain.ErrInvoiceState,
}

var unprocessableErrors = []error{
	currency.ErrConversionUnavailable,
	currency.ErrUnsupportedCurrencyPair,
}

func mapError(err error) (int, errorPayload) {
	switch {
	case matchAny(err, notFoundErrors):
		return http.StatusNotFound, payloadFor(err, "not_found")
	case matchAny(err, conflictErrors):
		return http.StatusConflict, payloadFor(err, "conflict")
	case matchAny(err, unprocessableErrors):
		return http.StatusUnprocessableEntity, payloadFor(err, "calculation_error")
	case matchAny(err, badRequestErrors):
		return http.StatusBadRequest, payloadFor(err, "validation_error")
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, errorPayload{Type: "unauthorized", Message: "unauthorized"}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func matchAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func payloadFor(err error, errType string) errorPayload {
	return errorPayload{
		Type:    errType,
		Message: strings.ReplaceAll(rootMessage(err), "_", " "),
	}
}

func rootMessage(err error) string {
	for {
		unwrapped := errors.Unwrap(err)
		if unwrapped == nil {
			return err.Error()
		}
		err = unwrapped
	}
}
