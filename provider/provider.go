// Package provider defines how index series reach the adjustment engine.
// The engine itself never fetches anything; it consumes a series.Series
// that an implementation of SeriesProvider produced. Retries, timeouts and
// caching all live on this side of the boundary.
package provider

import (
	"context"

	"github.com/warp/adjustment-engine/series"
)

// SeriesProvider supplies the ordered, deduplicated index series for one
// economic indicator. Implementations must exclude observations whose
// values fail to parse rather than substituting zeros; an empty result is
// the engine's signal that no data is available.
type SeriesProvider interface {
	FetchSeries(ctx context.Context) (series.Series, error)
}

// ObservationCache persists fetched observations locally so a calculation
// can still run when the upstream API is unreachable. Implemented by
// store/sqlite.
type ObservationCache interface {
	SaveObservations(ctx context.Context, seriesID string, obs []series.Observation) error
	LoadObservations(ctx context.Context, seriesID string) ([]series.Observation, error)
}

// FetchFunc adapts a function to the SeriesProvider interface.
type FetchFunc func(ctx context.Context) (series.Series, error)

func (f FetchFunc) FetchSeries(ctx context.Context) (series.Series, error) { return f(ctx) }
