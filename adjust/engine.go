/*
engine.go - Compounded adjustment computation

PURPOSE:
  Computes a new rent amount by compounding the trailing window of monthly
  index variations over a base amount. This is the core of the system and
  the only part with real logic; providers and presentation are thin glue
  around it.

THE COMPUTATION:
  1. Select the N most recent published months (N = window size, default 4)
  2. Re-order the window ascending: the trace must read oldest-to-newest
  3. Normalize each raw value into a true fraction (threshold heuristic)
  4. Compound: cumulative = product of (1 + rate), seeded at 1
  5. NewAmount = base * cumulative

NORMALIZATION:
  The upstream series has drifted between publishing true fractions (0.06
  for 6%) and percentage numbers (6.0 for 6%). Raw values below the
  threshold (default 2) are taken as fractions; the rest are divided by
  100. The threshold is an explicit option, and values near it are flagged
  Borderline on their Contribution rather than silently classified.

PURITY:
  Compute is a pure function: no I/O, no ambient state, no mutation of its
  inputs. Identical inputs produce identical results, and concurrent
  callers need no coordination.

SEE ALSO:
  - types.go:  Options, Contribution, Result
  - errors.go: Failure taxonomy
  - series:    The input data model
*/
package adjust

import (
	"github.com/shopspring/decimal"

	"github.com/warp/adjustment-engine/series"
)

var (
	one     = decimal.NewFromInt(1)
	hundred = decimal.NewFromInt(100)
	negOne  = decimal.NewFromInt(-1)
)

// Compute derives the compounded adjustment of base over the trailing
// window of s.
//
// Fails with ErrInvalidAmount when base <= 0, ErrDataUnavailable when s is
// empty, and ErrInvalidRate (as *InvalidRateError) when any selected
// month's normalized rate is -100% or lower. A series shorter than the
// window is not an error: the result reports the actual Coverage.
func Compute(base decimal.Decimal, s series.Series, opts Options) (Result, error) {
	if !base.IsPositive() {
		return Result{}, &InvalidAmountError{Amount: base}
	}
	if s.IsEmpty() {
		return Result{}, ErrDataUnavailable
	}

	windowSize := opts.windowSize()
	threshold := opts.rateThreshold()

	// Trailing window, re-ordered ascending. Compounding a product of
	// scalars is order-independent, but the chronological order is a hard
	// contract here: the trace is only auditable when each factor reads as
	// growth applied after the prior month's growth.
	window := s.Latest(windowSize)

	cumulative := one
	contributions := make([]Contribution, 0, len(window))

	for _, obs := range window {
		rate := normalizeRate(obs.Raw, threshold)
		if rate.LessThanOrEqual(negOne) {
			return Result{}, &InvalidRateError{
				Period:     obs.Period,
				Raw:        obs.Raw,
				Normalized: rate,
			}
		}

		factor := one.Add(rate)
		cumulative = cumulative.Mul(factor)

		contributions = append(contributions, Contribution{
			Period:         obs.Period,
			Raw:            obs.Raw,
			NormalizedRate: rate,
			Factor:         factor,
			Borderline:     isBorderline(obs.Raw, threshold),
		})
	}

	return Result{
		BaseAmount:       base,
		CumulativeFactor: cumulative,
		NewAmount:        base.Mul(cumulative),
		TotalIncreasePct: cumulative.Sub(one).Mul(hundred),
		WindowSize:       windowSize,
		Coverage:         len(window),
		Contributions:    contributions,
	}, nil
}

// normalizeRate resolves the fraction-vs-percentage ambiguity: raw values
// below the threshold are already fractions, the rest are percentage
// numbers. Exactly at the threshold counts as a percentage.
func normalizeRate(raw, threshold decimal.Decimal) decimal.Decimal {
	if raw.LessThan(threshold) {
		return raw
	}
	return raw.Div(hundred)
}

// isBorderline reports whether raw lies within 10% of the threshold,
// where the detection heuristic is least trustworthy.
func isBorderline(raw, threshold decimal.Decimal) bool {
	band := threshold.Mul(borderlineBand).Abs()
	return raw.Sub(threshold).Abs().LessThanOrEqual(band)
}
