/*
Package series defines the index time-series data model.

PURPOSE:
  Value types for a published monthly index series: a calendar month, a
  single published observation, and an ordered, deduplicated sequence of
  observations. Providers produce a Series; the adjustment engine consumes
  one. Nothing here performs I/O.

KEY CONCEPTS IN THIS FILE:
  - Month:       Calendar month at first-of-month granularity (comparable)
  - Observation: One published (month, raw value) pair, immutable
  - Series:      Ordered ascending by month, unique by month

DESIGN PRINCIPLES:
  1. Immutability: Observations are never modified after construction
  2. Precision: Raw values are decimal.Decimal, never float64
  3. Uniqueness: No two observations share a month; the last published
     value for a month wins (re-publication overrides)

SEE ALSO:
  - adjust/engine.go: Consumes a Series to compute adjustments
  - provider/indec: Builds a Series from the upstream API
*/
package series

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// MONTH - First-of-month calendar granularity
// =============================================================================

// Month identifies a published period. Index observations are monthly;
// finer granularity is deliberately not representable.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf truncates a time to its calendar month.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// NewMonth constructs a Month directly.
func NewMonth(year int, month time.Month) Month {
	return Month{Year: year, Month: month}
}

// ParseMonth accepts "2006-01" or "2006-01-02" (day ignored), the two
// formats the upstream API emits.
func ParseMonth(s string) (Month, error) {
	for _, layout := range []string{"2006-01", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return MonthOf(t), nil
		}
	}
	return Month{}, fmt.Errorf("invalid month %q: want YYYY-MM or YYYY-MM-DD", s)
}

// Comparison
func (m Month) Before(other Month) bool {
	if m.Year != other.Year {
		return m.Year < other.Year
	}
	return m.Month < other.Month
}
func (m Month) After(other Month) bool { return other.Before(m) }
func (m Month) Equal(other Month) bool { return m == other }
func (m Month) IsZero() bool           { return m == Month{} }

// Time returns the first instant of the month in UTC.
func (m Month) Time() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// AddMonths steps the month forward (or back, for negative n).
func (m Month) AddMonths(n int) Month {
	return MonthOf(m.Time().AddDate(0, n, 0))
}

func (m Month) String() string {
	return m.Time().Format("2006-01")
}

// DisplayName renders the month for human-facing traces, e.g. "January 2025".
func (m Month) DisplayName() string {
	return m.Time().Format("January 2006")
}

// =============================================================================
// OBSERVATION - One published index value
// =============================================================================

// Observation is a single published (period, value) pair. Raw carries the
// value exactly as published; whether it is a fraction or a percentage is
// resolved later by the engine's normalization step, not here.
type Observation struct {
	Period Month
	Raw    decimal.Decimal
}

// =============================================================================
// SERIES - Ordered, deduplicated observations
// =============================================================================

// Series is an index series sorted ascending by period, unique by period.
// Construct with New; the methods never mutate the receiver.
type Series []Observation

// New builds a Series from observations in any order. Duplicated months are
// collapsed keeping the observation that appears last in the input, so a
// re-published value overrides the earlier one.
func New(obs []Observation) Series {
	byMonth := make(map[Month]decimal.Decimal, len(obs))
	order := make([]Month, 0, len(obs))
	for _, o := range obs {
		if _, seen := byMonth[o.Period]; !seen {
			order = append(order, o.Period)
		}
		byMonth[o.Period] = o.Raw
	}

	sort.Slice(order, func(i, j int) bool { return order[i].Before(order[j]) })

	s := make(Series, 0, len(order))
	for _, m := range order {
		s = append(s, Observation{Period: m, Raw: byMonth[m]})
	}
	return s
}

// IsEmpty reports whether the series has no observations.
func (s Series) IsEmpty() bool { return len(s) == 0 }

// Ascending returns a copy sorted oldest first.
func (s Series) Ascending() Series {
	out := make(Series, len(s))
	copy(out, s)
	sort.Slice(out, func(i, j int) bool { return out[i].Period.Before(out[j].Period) })
	return out
}

// Descending returns a copy sorted newest first.
func (s Series) Descending() Series {
	out := make(Series, len(s))
	copy(out, s)
	sort.Slice(out, func(i, j int) bool { return out[i].Period.After(out[j].Period) })
	return out
}

// Latest returns the n most recent observations re-ordered ascending, so the
// caller can iterate oldest-to-newest. Returns the whole series (ascending)
// when it holds fewer than n observations.
func (s Series) Latest(n int) Series {
	desc := s.Descending()
	if n < len(desc) {
		desc = desc[:n]
	}
	return desc.Ascending()
}

// LatestPeriod returns the most recent month in the series.
// The zero Month is returned for an empty series.
func (s Series) LatestPeriod() Month {
	var latest Month
	for _, o := range s {
		if o.Period.After(latest) {
			latest = o.Period
		}
	}
	return latest
}
