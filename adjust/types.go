/*
types.go - Engine inputs and outputs

PURPOSE:
  Defines the option and result types for the adjustment computation.
  The Result is the full auditable breakdown: one Contribution per month
  in the selected window, in chronological order, plus the compounded
  totals. Presentation layers format these values; they never recompute.

KEY CONCEPTS:
  - Options:      Window size and the normalization threshold, both explicit
  - Contribution: One month's normalized rate and growth factor
  - Result:       Compounded outcome with coverage disclosure

SEE ALSO:
  - engine.go: Produces Result
  - errors.go: Failure taxonomy
*/
package adjust

import (
	"github.com/shopspring/decimal"

	"github.com/warp/adjustment-engine/series"
)

// =============================================================================
// OPTIONS
// =============================================================================

// DefaultWindowSize is the domain's cuatrimestral review convention:
// the four most recent published months.
const DefaultWindowSize = 4

// DefaultRateThreshold separates raw values published as fractions from
// those published as percentage numbers. A raw value below the threshold
// is taken as a fraction (0.06 = 6%); at or above it, as a percentage
// (6.0 = 6%). Real monthly variations rarely reach 200% as a fraction,
// but the heuristic is exactly that, so it is exposed as an option and
// borderline values are flagged on the Contribution.
var DefaultRateThreshold = decimal.NewFromInt(2)

// borderlineBand flags raw values within ±10% of the threshold, where a
// misclassification is most plausible.
var borderlineBand = decimal.NewFromFloat(0.1)

// Options configures a single computation. The zero value is usable:
// missing fields fall back to the defaults above.
type Options struct {
	// WindowSize is how many trailing months to compound. Defaults to 4.
	WindowSize int

	// RateThreshold overrides the fraction/percentage detection boundary.
	// Defaults to 2.
	RateThreshold decimal.Decimal
}

func (o Options) windowSize() int {
	if o.WindowSize <= 0 {
		return DefaultWindowSize
	}
	return o.WindowSize
}

func (o Options) rateThreshold() decimal.Decimal {
	if o.RateThreshold.IsZero() {
		return DefaultRateThreshold
	}
	return o.RateThreshold
}

// =============================================================================
// CONTRIBUTION - One month of the audit trace
// =============================================================================

// Contribution records how a single month entered the compounding.
type Contribution struct {
	// Period is the published month.
	Period series.Month

	// Raw is the value exactly as published.
	Raw decimal.Decimal

	// NormalizedRate is the monthly variation as a true fraction
	// (0.045 = 4.5%) after threshold detection.
	NormalizedRate decimal.Decimal

	// Factor is 1 + NormalizedRate.
	Factor decimal.Decimal

	// Borderline is set when Raw falls within 10% of the detection
	// threshold, where fraction-vs-percentage detection is least certain.
	Borderline bool
}

// RatePct returns the normalized rate as a percentage number for display.
func (c Contribution) RatePct() decimal.Decimal {
	return c.NormalizedRate.Mul(decimal.NewFromInt(100))
}

// =============================================================================
// RESULT - Compounded outcome
// =============================================================================

// Result is the complete outcome of one adjustment computation.
type Result struct {
	// BaseAmount is the input amount, echoed for the audit trail.
	BaseAmount decimal.Decimal

	// CumulativeFactor is the product of every contribution's Factor.
	CumulativeFactor decimal.Decimal

	// NewAmount is BaseAmount * CumulativeFactor.
	NewAmount decimal.Decimal

	// TotalIncreasePct is (CumulativeFactor - 1) * 100.
	TotalIncreasePct decimal.Decimal

	// WindowSize is the number of months that were requested.
	WindowSize int

	// Coverage is the number of months actually compounded. Coverage <
	// WindowSize means the series was shorter than the window; the
	// computation proceeds but the shortfall is never hidden.
	Coverage int

	// Contributions is the chronological (oldest first) audit trace.
	// Every month in the selected window appears exactly once.
	Contributions []Contribution
}

// Partial reports whether fewer months were available than requested.
func (r Result) Partial() bool { return r.Coverage < r.WindowSize }
