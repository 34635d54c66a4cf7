package currency

import (
	"strings"
	"time"
)

// RateTable is the payload of the exchangerate-api latest endpoint
type RateTable struct {
	Result             string             `json:"result,omitempty"`
	ErrorType          string             `json:"error-type,omitempty"`
	BaseCode           string             `json:"base_code,omitempty"`
	TimeLastUpdateUnix int64              `json:"time_last_update_unix,omitempty"`
	TimeNextUpdateUnix int64              `json:"time_next_update_unix,omitempty"`
	ConversionRates    map[string]float64 `json:"conversion_rates,omitempty"`
}

// Rate looks up the conversion factor for code relative to the base code
func (t *RateTable) Rate(code string) (float64, bool) {
	if t == nil || t.ConversionRates == nil {
		return 0, false
	}
	rate, ok := t.ConversionRates[code]
	return rate, ok
}

// expiresIn returns how long the table may be cached, capped by ttl
func (t *RateTable) expiresIn(now time.Time, ttl time.Duration) time.Duration {
	if t.TimeNextUpdateUnix <= 0 {
		return ttl
	}
	until := time.Unix(t.TimeNextUpdateUnix, 0).Sub(now)
	if until <= 0 || until > ttl {
		return ttl
	}
	return until
}

// NormalizeCode upper-cases and trims a currency code
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
