/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the engine's decimal-typed result from the external contract: every
  monetary and rate value crosses the wire as a string so no client-side
  float ever touches it.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

SEE ALSO:
  - handlers.go: Uses these types
  - adjust/types.go: The Result these DTOs render
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/warp/adjustment-engine/adjust"
	"github.com/warp/adjustment-engine/series"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// AdjustmentRequest asks for a compounded adjustment of Amount.
// decimal.Decimal accepts both JSON numbers and numeric strings, so
// clients may send "amount": 100000 or "amount": "100000".
type AdjustmentRequest struct {
	Amount decimal.Decimal `json:"amount"`

	// WindowSize overrides the configured trailing-window length.
	WindowSize int `json:"window_size,omitempty"`

	// RateThreshold overrides the fraction/percentage detection boundary.
	RateThreshold *decimal.Decimal `json:"rate_threshold,omitempty"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// ContributionDTO is one month of the audit trace.
type ContributionDTO struct {
	Period         string `json:"period"`           // YYYY-MM
	Raw            string `json:"raw"`              // value as published
	NormalizedRate string `json:"normalized_rate"`  // true fraction
	RatePct        string `json:"rate_pct"`         // rate * 100, for display
	Factor         string `json:"factor"`           // 1 + rate
	Borderline     bool   `json:"borderline,omitempty"`
}

// AdjustmentDTO is the full computation result.
type AdjustmentDTO struct {
	BaseAmount       string            `json:"base_amount"`
	CumulativeFactor string            `json:"cumulative_factor"`
	NewAmount        string            `json:"new_amount"`
	TotalIncreasePct string            `json:"total_increase_pct"`
	WindowSize       int               `json:"window_size"`
	Coverage         int               `json:"coverage"`
	Partial          bool              `json:"partial"`
	Contributions    []ContributionDTO `json:"contributions"`
}

// ObservationDTO is one cached/published observation.
type ObservationDTO struct {
	Period string `json:"period"`
	Value  string `json:"value"`
}

// SeriesDTO lists recent observations, oldest first.
type SeriesDTO struct {
	Count        int              `json:"count"`
	Observations []ObservationDTO `json:"observations"`
}

// ErrorDTO carries a machine-readable kind plus a human-readable message.
type ErrorDTO struct {
	Kind  string `json:"kind"`
	Error string `json:"error"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toAdjustmentDTO(r adjust.Result) AdjustmentDTO {
	contributions := make([]ContributionDTO, 0, len(r.Contributions))
	for _, c := range r.Contributions {
		contributions = append(contributions, ContributionDTO{
			Period:         c.Period.String(),
			Raw:            c.Raw.String(),
			NormalizedRate: c.NormalizedRate.String(),
			RatePct:        c.RatePct().StringFixed(4),
			Factor:         c.Factor.String(),
			Borderline:     c.Borderline,
		})
	}
	return AdjustmentDTO{
		BaseAmount:       r.BaseAmount.String(),
		CumulativeFactor: r.CumulativeFactor.String(),
		NewAmount:        r.NewAmount.StringFixed(2),
		TotalIncreasePct: r.TotalIncreasePct.StringFixed(4),
		WindowSize:       r.WindowSize,
		Coverage:         r.Coverage,
		Partial:          r.Partial(),
		Contributions:    contributions,
	}
}

func toSeriesDTO(s series.Series) SeriesDTO {
	obs := make([]ObservationDTO, 0, len(s))
	for _, o := range s {
		obs = append(obs, ObservationDTO{
			Period: o.Period.String(),
			Value:  o.Raw.String(),
		})
	}
	return SeriesDTO{Count: len(obs), Observations: obs}
}
