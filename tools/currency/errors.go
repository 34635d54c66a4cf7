package currency

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingAPIKey is returned by New when no exchange rate api key is configured
	ErrMissingAPIKey = errors.New("currency: missing exchange rate api key")
	// ErrServiceUnavailable covers non-200 responses, transport failures and undecodable bodies
	ErrServiceUnavailable = errors.New("currency: exchange rate service unavailable")
	// ErrInvalidCurrency means the rate table has no entry for the target code
	ErrInvalidCurrency = errors.New("currency: invalid currency code")
)

// FailedFetchMessage is the tool result for any upstream failure
const FailedFetchMessage = "Failed to fetch exchange rates."

// InvalidCurrencyMessage is the tool result for an unknown target code
func InvalidCurrencyMessage(code string) string {
	return fmt.Sprintf("Invalid currency code: %s", code)
}

// StatusError carries the http status of a failed rate request
type StatusError struct {
	StatusCode int
	ErrorType  string
}

func (e StatusError) Error() string {
	if e.ErrorType != "" {
		return fmt.Sprintf("exchange rate api status %d: %s", e.StatusCode, e.ErrorType)
	}
	return fmt.Sprintf("exchange rate api status %d", e.StatusCode)
}

func (e StatusError) Unwrap() error {
	return ErrServiceUnavailable
}

// retryable reports whether the status is worth another attempt
func (e StatusError) retryable() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500
}
