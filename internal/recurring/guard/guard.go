// Package guard holds pure preconditions for recurring-series processing.
package guard

import (
	"errors"

	seriesdomain "github.com/smallbiznis/bookflow/internal/series/domain"
)

var (
	ErrSeriesNotActive = errors.New("series_not_active")
	ErrInvalidInterval = errors.New("invalid_recurrence_interval")
	ErrMissingCustomer = errors.New("series_missing_customer")
)

// EnsureSeriesCanProcess rejects series the engine must never advance.
func EnsureSeriesCanProcess(series *seriesdomain.Series) error {
	if series.Status != seriesdomain.SeriesStatusActive {
		return ErrSeriesNotActive
	}
	if series.Interval <= 0 {
		return ErrInvalidInterval
	}
	if series.CustomerID == 0 {
		return ErrMissingCustomer
	}
	return nil
}
