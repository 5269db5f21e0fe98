/*
errors.go - Failure taxonomy for the adjustment engine

PURPOSE:
  All engine error kinds in one place. Callers branch with errors.Is on
  the sentinels; structured errors carry the offending period and raw
  value so a normalization misdetection can be diagnosed from the error
  alone.

ERROR CATEGORIES:
  1. InvalidAmount   - Non-positive base amount (caller input problem)
  2. DataUnavailable - Empty series after parse-exclusion (upstream problem)
  3. InvalidRate     - Normalized rate <= -1 (format detection or data problem)

USAGE:
  result, err := adjust.Compute(base, s, adjust.Options{})
  if errors.Is(err, adjust.ErrInvalidRate) {
      var rateErr *adjust.InvalidRateError
      errors.As(err, &rateErr)
      // rateErr.Period names the month that failed
  }
*/
package adjust

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/warp/adjustment-engine/series"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidAmount is returned when the base amount is zero or
	// negative. A non-positive rent is not meaningful.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrDataUnavailable is returned when the series holds no usable
	// observations. The engine never retries; fetching is the
	// provider's concern.
	ErrDataUnavailable = errors.New("no index data available")

	// ErrInvalidRate is returned when a normalized rate is -100% or
	// lower, which no price index can publish. It indicates either a
	// threshold misdetection or genuinely invalid upstream data.
	ErrInvalidRate = errors.New("rate outside valid range")
)

// =============================================================================
// STRUCTURED ERRORS - Carry diagnostic context
// =============================================================================

// InvalidAmountError reports the rejected base amount.
type InvalidAmountError struct {
	Amount decimal.Decimal
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("invalid amount %s: must be positive", e.Amount)
}

func (e *InvalidAmountError) Unwrap() error { return ErrInvalidAmount }

// InvalidRateError identifies the month whose value normalized outside
// the physically valid range (-1, +inf).
type InvalidRateError struct {
	Period     series.Month
	Raw        decimal.Decimal
	Normalized decimal.Decimal
}

func (e *InvalidRateError) Error() string {
	return fmt.Sprintf("invalid rate for %s: raw value %s normalized to %s (must be > -1)",
		e.Period, e.Raw, e.Normalized)
}

func (e *InvalidRateError) Unwrap() error { return ErrInvalidRate }
